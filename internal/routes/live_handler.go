package routes

import (
	"time"

	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MethodDetail struct {
	Method     string          `json:"method"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Garrafones int             `json:"garrafones"`
}

type CompanyDetail struct {
	Company    string          `json:"company"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Garrafones int             `json:"garrafones"`
}

type ProductDetail struct {
	Product string          `json:"product"`
	Units   int             `json:"units"`
	Total   decimal.Decimal `json:"total"`
}

type TransactionDetail struct {
	ID              uint            `json:"id"`
	CustomerName    *string         `json:"customer_name"`
	CompanyName     *string         `json:"company_name"`
	CompanyID       *uint           `json:"company_id"`
	PaymentMethodID uint            `json:"payment_method_id"`
	Method          string          `json:"method"`
	Color           string          `json:"color"`
	Total           decimal.Decimal `json:"total"`
	Time            string          `json:"time"`
	Items           []ItemDetail    `json:"items"`
}

type ItemDetail struct {
	ProductID uint            `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
}

type ActiveDriverRoute struct {
	RouteID          uint                `json:"route_id"`
	ChoferID         uint                `json:"chofer_id"`
	ChoferName       string              `json:"chofer_name"`
	Status           models.RouteStatus  `json:"status"`
	StartedAt        string              `json:"started_at"`
	FinishedAt       *string             `json:"finished_at"`
	TotalVentas      decimal.Decimal     `json:"total_ventas"`
	TransactionCount int                 `json:"transaction_count"`
	Products         []ProductDetail     `json:"products"`
	ByMethod         []MethodDetail      `json:"by_method"`
	Companies        []CompanyDetail     `json:"companies"`
	TotalNegocios    decimal.Decimal     `json:"total_negocios"`
	Garrafones       garrafones.Cuenta   `json:"garrafones"`
	Facturas         []FacturaResponse   `json:"facturas"`
	Transactions     []TransactionDetail `json:"transactions"`
}

// -------------------------------------------------
// GET /api/routes/active-all — tablero del admin: rutas activas más las
// finalizadas hoy, con todo el detalle
// -------------------------------------------------
func ActiveAllHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// "Hoy" según el negocio, no según el reloj del servidor
		todayStart, todayEnd, err := fechas.DayBounds(fechas.Today())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el día actual")
		}

		type routeRow struct {
			models.Route
			ChoferName string
			ChoferRole models.UserRole
		}
		var rows []routeRow
		err = database.DB.Model(&models.Route{}).
			Select("routes.*, users.name AS chofer_name, users.role AS chofer_role").
			Joins("JOIN users ON users.id = routes.user_id").
			Where("users.role <> ?", models.RoleSucursal).
			Where("routes.status = ? OR (routes.status = ? AND routes.started_at >= ? AND routes.started_at < ?)",
				models.RouteActive, models.RouteFinished, todayStart, todayEnd).
			Order("CASE routes.status WHEN 'active' THEN 0 ELSE 1 END, users.name, routes.started_at DESC").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las rutas")
		}

		result := make([]ActiveDriverRoute, 0, len(rows))
		for _, row := range rows {
			detail, err := buildRouteDetail(&row.Route, row.ChoferName)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el detalle de la ruta")
			}
			result = append(result, *detail)
		}

		return c.JSON(result)
	}
}

func buildRouteDetail(route *models.Route, choferName string) (*ActiveDriverRoute, error) {
	// Un join directo con items multiplicaría las filas de cada venta, así
	// que los garrafones por método/empresa salen de un subagregado por
	// venta y los montos de transactions.
	byMethod, err := methodDetails(route.ID)
	if err != nil {
		return nil, err
	}
	companies, totalNegocios, err := companyDetails(route.ID)
	if err != nil {
		return nil, err
	}
	products, err := productDetails(route.ID)
	if err != nil {
		return nil, err
	}
	transactions, err := transactionDetails(route.ID)
	if err != nil {
		return nil, err
	}

	var facturas []FacturaResponse
	err = database.DB.Model(&models.RouteFactura{}).
		Select("id, route_id, cantidad, cliente").
		Where("route_id = ?", route.ID).
		Order("id").
		Scan(&facturas).Error
	if err != nil {
		return nil, err
	}
	if facturas == nil {
		facturas = []FacturaResponse{}
	}

	cuenta, err := garrafones.ForRoute(route.ID, route.GarrafonesLoaded)
	if err != nil {
		return nil, err
	}

	totalVentas := decimal.Zero
	txCount := 0
	for _, m := range byMethod {
		totalVentas = totalVentas.Add(m.Total)
		txCount += m.Count
	}

	var finishedAt *string
	if route.FinishedAt != nil {
		s := route.FinishedAt.In(fechas.Location()).Format(time.RFC3339)
		finishedAt = &s
	}

	return &ActiveDriverRoute{
		RouteID:          route.ID,
		ChoferID:         route.UserID,
		ChoferName:       choferName,
		Status:           route.Status,
		StartedAt:        route.StartedAt.In(fechas.Location()).Format(time.RFC3339),
		FinishedAt:       finishedAt,
		TotalVentas:      totalVentas,
		TransactionCount: txCount,
		Products:         products,
		ByMethod:         byMethod,
		Companies:        companies,
		TotalNegocios:    totalNegocios,
		Garrafones:       cuenta,
		Facturas:         facturas,
		Transactions:     transactions,
	}, nil
}

func methodDetails(routeID uint) ([]MethodDetail, error) {
	var details []MethodDetail
	err := database.DB.Model(&models.Transaction{}).
		Select("payment_methods.name AS method, payment_methods.color, payment_methods.icon, "+
			"SUM(transactions.total) AS total, COUNT(transactions.id) AS count, "+
			"COALESCE(SUM(tq.qty), 0) AS garrafones").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Joins("LEFT JOIN (SELECT transaction_id, SUM(quantity) AS qty FROM transaction_items GROUP BY transaction_id) AS tq "+
			"ON tq.transaction_id = transactions.id").
		Where("transactions.route_id = ?", routeID).
		Group("payment_methods.id").
		Order("SUM(transactions.total) DESC").
		Scan(&details).Error
	if details == nil {
		details = []MethodDetail{}
	}
	return details, err
}

func companyDetails(routeID uint) ([]CompanyDetail, decimal.Decimal, error) {
	var details []CompanyDetail
	err := database.DB.Model(&models.Transaction{}).
		Select("companies.name AS company, SUM(transactions.total) AS total, COUNT(transactions.id) AS count, "+
			"COALESCE(SUM(tq.qty), 0) AS garrafones").
		Joins("JOIN companies ON companies.id = transactions.company_id").
		Joins("LEFT JOIN (SELECT transaction_id, SUM(quantity) AS qty FROM transaction_items GROUP BY transaction_id) AS tq "+
			"ON tq.transaction_id = transactions.id").
		Where("transactions.route_id = ? AND transactions.company_id IS NOT NULL", routeID).
		Group("companies.id").
		Order("companies.name").
		Scan(&details).Error
	if err != nil {
		return nil, decimal.Zero, err
	}
	if details == nil {
		details = []CompanyDetail{}
	}
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.Total)
	}
	return details, total, nil
}

func productDetails(routeID uint) ([]ProductDetail, error) {
	var details []ProductDetail
	err := database.DB.Model(&models.TransactionItem{}).
		Select("products.name AS product, SUM(transaction_items.quantity) AS units, SUM(transaction_items.subtotal) AS total").
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Joins("JOIN products ON products.id = transaction_items.product_id").
		Where("transactions.route_id = ?", routeID).
		Group("products.id").
		Order("products.display_order").
		Scan(&details).Error
	if details == nil {
		details = []ProductDetail{}
	}
	return details, err
}

func transactionDetails(routeID uint) ([]TransactionDetail, error) {
	var txs []models.Transaction
	err := database.DB.
		Preload("Items.Product").
		Preload("PaymentMethod").
		Preload("Company").
		Where("route_id = ?", routeID).
		Order("transaction_date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	details := make([]TransactionDetail, 0, len(txs))
	for _, tx := range txs {
		items := make([]ItemDetail, 0, len(tx.Items))
		for _, it := range tx.Items {
			items = append(items, ItemDetail{
				ProductID: it.ProductID,
				UnitPrice: it.UnitPrice,
				Product:   it.Product.Name,
				Quantity:  it.Quantity,
			})
		}
		var companyName *string
		if tx.Company != nil {
			companyName = &tx.Company.Name
		}
		details = append(details, TransactionDetail{
			ID:              tx.ID,
			CustomerName:    tx.CustomerName,
			CompanyName:     companyName,
			CompanyID:       tx.CompanyID,
			PaymentMethodID: tx.PaymentMethodID,
			Method:          tx.PaymentMethod.Name,
			Color:           tx.PaymentMethod.Color,
			Total:           tx.Total,
			Time:            tx.TransactionDate.In(fechas.Location()).Format("15:04"),
			Items:           items,
		})
	}
	return details, nil
}
