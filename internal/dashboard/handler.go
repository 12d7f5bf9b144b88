package dashboard

import (
	"sort"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MethodBucket struct {
	Method string          `json:"method"`
	Color  string          `json:"color"`
	Icon   string          `json:"icon"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type ProductBucket struct {
	Product      string          `json:"product"`
	DisplayOrder int             `json:"display_order"`
	Units        int             `json:"units"`
	Total        decimal.Decimal `json:"total"`
}

type CustomerDetail struct {
	Name       string `json:"name"`
	Garrafones int    `json:"garrafones"`
}

type DriverMethod struct {
	Method      string           `json:"method"`
	Color       string           `json:"color"`
	Icon        string           `json:"icon"`
	CompanyName *string          `json:"company_name"`
	Total       decimal.Decimal  `json:"total"`
	Count       int              `json:"count"`
	Garrafones  int              `json:"garrafones"`
	Customers   []CustomerDetail `json:"customers"`
}

type DriverSummary struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Methods []DriverMethod  `json:"methods"`
	Total   decimal.Decimal `json:"total"`
}

type SeriesPoint struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

type Comparison struct {
	Current  decimal.Decimal  `json:"current"`
	Previous decimal.Decimal  `json:"previous"`
	Pct      *decimal.Decimal `json:"pct"`
}

type DayDashboardResponse struct {
	Date       string          `json:"date"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ByMethod   []MethodBucket  `json:"by_method"`
	ByProduct  []ProductBucket `json:"by_product"`
	ByDriver   []DriverSummary `json:"by_driver"`
	Weekly     []SeriesPoint   `json:"weekly"`
	DoD        Comparison      `json:"dod"`
	WoW        Comparison      `json:"wow"`
	MoM        Comparison      `json:"mom"`
}

// -------------------------------------------------
// GET /api/dashboard?date=YYYY-MM-DD — corte del día (Admin/Visor)
// -------------------------------------------------
func DayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		day := c.Query("date", fechas.Today())
		if !fechas.ValidDay(day) {
			return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
		}
		start, end, _ := fechas.DayBounds(day)

		byMethod, err := methodBuckets(day, start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el corte por método")
		}
		grandTotal := decimal.Zero
		for _, m := range byMethod {
			grandTotal = grandTotal.Add(m.Total)
		}

		byProduct, err := productBuckets(start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el corte por producto")
		}

		byDriver, err := driverSummaries(day, start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el corte por chofer")
		}

		weekly, err := weeklySeries(start, end)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar la serie semanal")
		}

		dod, wow, mom, err := comparisons(start)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron calcular los comparativos")
		}

		return c.JSON(DayDashboardResponse{
			Date:       day,
			GrandTotal: grandTotal,
			ByMethod:   byMethod,
			ByProduct:  byProduct,
			ByDriver:   byDriver,
			Weekly:     weekly,
			DoD:        dod,
			WoW:        wow,
			MoM:        mom,
		})
	}
}

// methodBuckets agrega las ventas del día por método y descuenta las
// incidencias del bucket tipo efectivo, con tope en cero.
func methodBuckets(day string, start, end time.Time) ([]MethodBucket, error) {
	type row struct {
		Method           string
		Color            string
		Icon             string
		IsCashEquivalent bool
		Total            decimal.Decimal
		Count            int
	}
	var rows []row
	err := database.DB.Model(&models.Transaction{}).
		Select("payment_methods.name AS method, payment_methods.color, payment_methods.icon, "+
			"payment_methods.is_cash_equivalent, "+
			"COALESCE(SUM(transactions.total), 0) AS total, COUNT(transactions.id) AS count").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Group("payment_methods.id").
		Order("payment_methods.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var incidencias decimal.Decimal
	err = database.DB.Model(&models.WeeklyIncident{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date = ?", day).
		Scan(&incidencias).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]MethodBucket, 0, len(rows))
	remaining := incidencias
	for _, r := range rows {
		total := r.Total
		if r.IsCashEquivalent && !remaining.IsZero() {
			total = total.Sub(remaining)
			remaining = decimal.Zero
			if total.IsNegative() {
				total = decimal.Zero
			}
		}
		buckets = append(buckets, MethodBucket{
			Method: r.Method,
			Color:  r.Color,
			Icon:   r.Icon,
			Total:  total,
			Count:  r.Count,
		})
	}
	return buckets, nil
}

func productBuckets(start, end time.Time) ([]ProductBucket, error) {
	var buckets []ProductBucket
	err := database.DB.Model(&models.TransactionItem{}).
		Select("products.name AS product, products.display_order, "+
			"COALESCE(SUM(transaction_items.quantity), 0) AS units, "+
			"COALESCE(SUM(transaction_items.subtotal), 0) AS total").
		Joins("JOIN products ON products.id = transaction_items.product_id").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Group("products.id").
		Order("products.display_order").
		Scan(&buckets).Error
	if buckets == nil {
		buckets = []ProductBucket{}
	}
	return buckets, err
}

func driverSummaries(day string, start, end time.Time) ([]DriverSummary, error) {
	type row struct {
		ChoferID         uint
		ChoferName       string
		Method           string
		Color            string
		Icon             string
		IsCashEquivalent bool
		CompanyName      *string
		Total            decimal.Decimal
		Count            int
		Garrafones       int
	}
	var rows []row
	err := database.DB.Model(&models.Transaction{}).
		Select("users.id AS chofer_id, users.name AS chofer_name, "+
			"payment_methods.name AS method, payment_methods.color, payment_methods.icon, "+
			"payment_methods.is_cash_equivalent, companies.name AS company_name, "+
			"COALESCE(SUM(transactions.total), 0) AS total, COUNT(transactions.id) AS count, "+
			"COALESCE(SUM(tq.qty), 0) AS garrafones").
		Joins("JOIN users ON users.id = transactions.user_id").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Joins("LEFT JOIN companies ON companies.id = transactions.company_id").
		Joins("LEFT JOIN (SELECT transaction_id, SUM(quantity) AS qty FROM transaction_items GROUP BY transaction_id) AS tq "+
			"ON tq.transaction_id = transactions.id").
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Where("users.role = ?", models.RoleChofer).
		Group("users.id, payment_methods.id, companies.id").
		Order("users.name, payment_methods.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	customers, err := customersByDriverMethod(start, end)
	if err != nil {
		return nil, err
	}

	type incRow struct {
		ChoferID uint
		Total    decimal.Decimal
	}
	var incRows []incRow
	err = database.DB.Model(&models.WeeklyIncident{}).
		Select("chofer_id, COALESCE(SUM(amount), 0) AS total").
		Where("date = ?", day).
		Group("chofer_id").
		Scan(&incRows).Error
	if err != nil {
		return nil, err
	}
	incByChofer := make(map[uint]decimal.Decimal, len(incRows))
	for _, r := range incRows {
		incByChofer[r.ChoferID] = r.Total
	}

	byID := make(map[uint]*DriverSummary)
	order := make([]uint, 0)
	for _, r := range rows {
		driver, ok := byID[r.ChoferID]
		if !ok {
			driver = &DriverSummary{ID: r.ChoferID, Name: r.ChoferName, Methods: []DriverMethod{}}
			byID[r.ChoferID] = driver
			order = append(order, r.ChoferID)
		}

		total := r.Total
		if r.IsCashEquivalent {
			if inc, ok := incByChofer[r.ChoferID]; ok && !inc.IsZero() {
				total = total.Sub(inc)
				if total.IsNegative() {
					total = decimal.Zero
				}
				delete(incByChofer, r.ChoferID)
			}
		}

		key := customerKey{r.ChoferID, r.Method}
		custs := customers[key]
		if custs == nil {
			custs = []CustomerDetail{}
		}

		driver.Methods = append(driver.Methods, DriverMethod{
			Method:      r.Method,
			Color:       r.Color,
			Icon:        r.Icon,
			CompanyName: r.CompanyName,
			Total:       total,
			Count:       r.Count,
			Garrafones:  r.Garrafones,
			Customers:   custs,
		})
		driver.Total = driver.Total.Add(total)
	}

	result := make([]DriverSummary, 0, len(order))
	for _, id := range order {
		result = append(result, *byID[id])
	}
	return result, nil
}

type customerKey struct {
	ChoferID uint
	Method   string
}

// customersByDriverMethod junta los clientes con nombre de los métodos que no
// son efectivo: el admin los usa para cotejar pagos Link y tarjeta uno a uno.
func customersByDriverMethod(start, end time.Time) (map[customerKey][]CustomerDetail, error) {
	type row struct {
		ChoferID     uint
		Method       string
		CustomerName string
		Garrafones   int
	}
	var rows []row
	err := database.DB.Model(&models.Transaction{}).
		Select("transactions.user_id AS chofer_id, payment_methods.name AS method, "+
			"transactions.customer_name, COALESCE(SUM(transaction_items.quantity), 0) AS garrafones").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Joins("LEFT JOIN transaction_items ON transaction_items.transaction_id = transactions.id").
		Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", start, end).
		Where("NOT payment_methods.is_cash_equivalent").
		Where("transactions.customer_name IS NOT NULL AND transactions.customer_name != ''").
		Group("transactions.id, payment_methods.name").
		Order("MIN(transactions.transaction_date)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[customerKey][]CustomerDetail)
	for _, r := range rows {
		key := customerKey{r.ChoferID, r.Method}
		result[key] = append(result[key], CustomerDetail{Name: r.CustomerName, Garrafones: r.Garrafones})
	}
	return result, nil
}

// weeklySeries regresa los totales de los últimos 7 días terminando en el día
// consultado, con el día calculado en la zona del negocio.
func weeklySeries(start, end time.Time) ([]SeriesPoint, error) {
	type row struct {
		Day   string
		Total decimal.Decimal
	}
	var rows []row
	err := database.DB.Model(&models.Transaction{}).
		Select("to_char(transaction_date AT TIME ZONE ?, 'YYYY-MM-DD') AS day, "+
			"COALESCE(SUM(total), 0) AS total", fechas.Location().String()).
		Where("transaction_date >= ? AND transaction_date < ?", start.AddDate(0, 0, -6), end).
		Group("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	points := make([]SeriesPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, SeriesPoint{Day: r.Day, Total: r.Total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points, nil
}

func rangeTotal(from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(total), 0)").
		Where("transaction_date >= ? AND transaction_date < ?", from, to).
		Scan(&total).Error
	return total, err
}

func growthPct(current, previous decimal.Decimal) *decimal.Decimal {
	if !previous.IsPositive() {
		return nil
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	return &pct
}

// comparisons calcula día contra día, semana contra semana (mismo día hace
// siete días) y mes corriente contra mes anterior completo.
func comparisons(dayStart time.Time) (dod, wow, mom Comparison, err error) {
	dayEnd := dayStart.AddDate(0, 0, 1)

	today, err := rangeTotal(dayStart, dayEnd)
	if err != nil {
		return
	}
	yesterday, err := rangeTotal(dayStart.AddDate(0, 0, -1), dayStart)
	if err != nil {
		return
	}
	lastWeekDay, err := rangeTotal(dayStart.AddDate(0, 0, -7), dayStart.AddDate(0, 0, -6))
	if err != nil {
		return
	}

	loc := fechas.Location()
	monthStart := time.Date(dayStart.Year(), dayStart.Month(), 1, 0, 0, 0, 0, loc)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	thisMonth, err := rangeTotal(monthStart, dayEnd)
	if err != nil {
		return
	}
	lastMonth, err := rangeTotal(lastMonthStart, monthStart)
	if err != nil {
		return
	}

	dod = Comparison{Current: today, Previous: yesterday, Pct: growthPct(today, yesterday)}
	wow = Comparison{Current: today, Previous: lastWeekDay, Pct: growthPct(today, lastWeekDay)}
	mom = Comparison{Current: thisMonth, Previous: lastMonth, Pct: growthPct(thisMonth, lastMonth)}
	return
}
