package weekly

import (
	"strings"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/audit"
	"watify-backend/internal/auth"
	"watify-backend/internal/cashflow"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IncidentDetail struct {
	ID           uint                `json:"id"`
	Amount       decimal.Decimal     `json:"amount"`
	Description  string              `json:"description"`
	Type         models.IncidentType `json:"type"`
	PrevEfectivo *decimal.Decimal    `json:"prev_efectivo"`
}

// DayCell es una celda chofer-día del tablero. Efectivo es el sobre ya neto
// de facturado e incidencias; EfectivoBruto se expone para auditoría.
type DayCell struct {
	Date            string                     `json:"date"`
	Efectivo        decimal.Decimal            `json:"efectivo"`
	EfectivoBruto   decimal.Decimal            `json:"efectivo_bruto"`
	Incidencias     decimal.Decimal            `json:"incidencias"`
	Incidents       []IncidentDetail           `json:"incidents_list"`
	Facturado       decimal.Decimal            `json:"facturado"`
	Methods         map[string]decimal.Decimal `json:"methods"`
	Nuevos          decimal.Decimal            `json:"nuevos"`
	Total           decimal.Decimal            `json:"total"`
	Confirmed       bool                       `json:"confirmed"`
	ConfirmedByName *string                    `json:"confirmed_by_name"`
}

type DriverWeek struct {
	ID   uint      `json:"id"`
	Name string    `json:"name"`
	Days []DayCell `json:"days"`
}

type WeeklyResponse struct {
	WeekStart string       `json:"week_start"`
	WeekEnd   string       `json:"week_end"`
	Drivers   []DriverWeek `json:"drivers"`
}

type driverDayKey struct {
	UserID uint
	Day    string
}

// -------------------------------------------------
// GET /api/dashboard/weekly?date=YYYY-MM-DD — corte semanal lunes a domingo
// -------------------------------------------------
func WeeklyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		anchor := fechas.Now()
		if q := c.Query("date"); q != "" {
			if !fechas.ValidDay(q) {
				return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
			}
			anchor, _ = fechas.ParseDay(q)
		}
		monday, sunday := fechas.WeekBounds(anchor)
		weekEndExclusive := sunday.AddDate(0, 0, 1)
		tz := fechas.Location().String()

		precioRecarga, err := cashflow.PrecioRecarga()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar el precio de la recarga")
		}

		var choferes []models.User
		if err := database.DB.Where("role = ?", models.RoleChofer).
			Order("name ASC").Find(&choferes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar los choferes")
		}

		// Totales por chofer, día y método. El día se calcula en la zona del
		// negocio, no en la del servidor.
		type methodRow struct {
			UserID           uint
			Day              string
			Method           string
			IsCashEquivalent bool
			InWeeklyTotal    bool
			Total            decimal.Decimal
		}
		var methodRows []methodRow
		err = database.DB.Model(&models.Transaction{}).
			Select("transactions.user_id, "+
				"to_char(transactions.transaction_date AT TIME ZONE ?, 'YYYY-MM-DD') AS day, "+
				"payment_methods.name AS method, "+
				"payment_methods.is_cash_equivalent, "+
				"payment_methods.in_weekly_total, "+
				"COALESCE(SUM(transactions.total), 0) AS total", tz).
			Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
			Joins("JOIN users ON users.id = transactions.user_id").
			Where("users.role = ?", models.RoleChofer).
			Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", monday, weekEndExclusive).
			Group("transactions.user_id, day, payment_methods.id").
			Scan(&methodRows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las ventas de la semana")
		}

		efectivoBruto := make(map[driverDayKey]decimal.Decimal)
		methodTotals := make(map[driverDayKey]map[string]decimal.Decimal)
		for _, r := range methodRows {
			key := driverDayKey{r.UserID, r.Day}
			if r.IsCashEquivalent {
				efectivoBruto[key] = efectivoBruto[key].Add(r.Total)
				continue
			}
			if !r.InWeeklyTotal {
				continue
			}
			if methodTotals[key] == nil {
				methodTotals[key] = make(map[string]decimal.Decimal)
			}
			methodTotals[key][r.Method] = methodTotals[key][r.Method].Add(r.Total)
		}

		// Garrafones facturados por chofer y día de INICIO de ruta. La llave
		// es deliberadamente distinta a la de ventas: la factura pertenece al
		// día en que salió la ruta aunque la venta haya caído después de
		// medianoche.
		type facturaRow struct {
			UserID uint
			Day    string
			Qty    int
		}
		var facturaRows []facturaRow
		err = database.DB.Model(&models.RouteFactura{}).
			Select("routes.user_id, "+
				"to_char(routes.started_at AT TIME ZONE ?, 'YYYY-MM-DD') AS day, "+
				"COALESCE(SUM(route_facturas.cantidad), 0) AS qty", tz).
			Joins("JOIN routes ON routes.id = route_facturas.route_id").
			Where("routes.started_at >= ? AND routes.started_at < ?", monday, weekEndExclusive).
			Group("routes.user_id, day").
			Scan(&facturaRows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las facturas de la semana")
		}
		facturadoQty := make(map[driverDayKey]int)
		for _, r := range facturaRows {
			facturadoQty[driverDayKey{r.UserID, r.Day}] = r.Qty
		}

		// Venta de garrafones nuevos, en dinero
		type nuevosRow struct {
			UserID uint
			Day    string
			Total  decimal.Decimal
		}
		var nuevosRows []nuevosRow
		err = database.DB.Model(&models.TransactionItem{}).
			Select("transactions.user_id, "+
				"to_char(transactions.transaction_date AT TIME ZONE ?, 'YYYY-MM-DD') AS day, "+
				"COALESCE(SUM(transaction_items.subtotal), 0) AS total", tz).
			Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
			Joins("JOIN products ON products.id = transaction_items.product_id").
			Where("products.name = ?", models.ProductNuevo).
			Where("transactions.transaction_date >= ? AND transactions.transaction_date < ?", monday, weekEndExclusive).
			Group("transactions.user_id, day").
			Scan(&nuevosRows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar los garrafones nuevos")
		}
		nuevosTotals := make(map[driverDayKey]decimal.Decimal)
		for _, r := range nuevosRows {
			nuevosTotals[driverDayKey{r.UserID, r.Day}] = r.Total
		}

		// Las columnas date se comparan contra strings YYYY-MM-DD; un time.Time
		// viajaría como timestamptz y el cast correría la fecha seis horas
		var incidents []models.WeeklyIncident
		if err := database.DB.
			Where("date >= ? AND date <= ?", monday.Format(fechas.DayLayout), sunday.Format(fechas.DayLayout)).
			Order("id ASC").Find(&incidents).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las incidencias")
		}
		incidentsByDay := make(map[driverDayKey][]IncidentDetail)
		for _, inc := range incidents {
			key := driverDayKey{inc.ChoferID, inc.Date.UTC().Format(fechas.DayLayout)}
			incidentsByDay[key] = append(incidentsByDay[key], IncidentDetail{
				ID:           inc.ID,
				Amount:       inc.Amount,
				Description:  inc.Description,
				Type:         inc.Type,
				PrevEfectivo: inc.PrevEfectivo,
			})
		}

		type confirmRow struct {
			ChoferID uint
			Day      string
			ByName   string
		}
		var confirmRows []confirmRow
		err = database.DB.Model(&models.WeeklyConfirmation{}).
			Select("weekly_confirmations.chofer_id, "+
				"to_char(weekly_confirmations.date, 'YYYY-MM-DD') AS day, "+
				"users.name AS by_name").
			Joins("JOIN users ON users.id = weekly_confirmations.confirmed_by").
			Where("weekly_confirmations.date >= ? AND weekly_confirmations.date <= ?",
				monday.Format(fechas.DayLayout), sunday.Format(fechas.DayLayout)).
			Scan(&confirmRows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las confirmaciones")
		}
		confirmations := make(map[driverDayKey]string, len(confirmRows))
		for _, r := range confirmRows {
			confirmations[driverDayKey{r.ChoferID, r.Day}] = r.ByName
		}

		drivers := make([]DriverWeek, 0, len(choferes))
		for _, chofer := range choferes {
			days := make([]DayCell, 0, 7)
			for i := 0; i < 7; i++ {
				day := monday.AddDate(0, 0, i).Format(fechas.DayLayout)
				key := driverDayKey{chofer.ID, day}

				incList := incidentsByDay[key]
				if incList == nil {
					incList = []IncidentDetail{}
				}
				incidencias := decimal.Zero
				for _, inc := range incList {
					incidencias = incidencias.Add(inc.Amount)
				}

				split := cashflow.Calcular(efectivoBruto[key], facturadoQty[key], precioRecarga, incidencias)

				methods := methodTotals[key]
				if methods == nil {
					methods = map[string]decimal.Decimal{}
				}
				total := split.SobreDelDia
				for _, amount := range methods {
					total = total.Add(amount)
				}
				total = total.Add(nuevosTotals[key])

				cell := DayCell{
					Date:          day,
					Efectivo:      split.SobreDelDia,
					EfectivoBruto: split.EfectivoBruto,
					Incidencias:   incidencias,
					Incidents:     incList,
					Facturado:     split.Facturado,
					Methods:       methods,
					Nuevos:        nuevosTotals[key],
					Total:         total,
				}
				if byName, ok := confirmations[key]; ok {
					name := byName
					cell.Confirmed = true
					cell.ConfirmedByName = &name
				}
				days = append(days, cell)
			}
			drivers = append(drivers, DriverWeek{ID: chofer.ID, Name: chofer.Name, Days: days})
		}

		return c.JSON(WeeklyResponse{
			WeekStart: monday.Format(fechas.DayLayout),
			WeekEnd:   sunday.Format(fechas.DayLayout),
			Drivers:   drivers,
		})
	}
}

type ConfirmRequest struct {
	ChoferID uint   `json:"chofer_id"`
	Date     string `json:"date"`
}

// -------------------------------------------------
// POST /api/dashboard/confirm — marcar el sobre de un chofer-día como
// recibido (Admin). Re-confirmar actualiza quién y cuándo.
// -------------------------------------------------
// upsertConfirmation registra que el sobre del chofer en esa fecha cuadró.
// Es idempotente sobre (date, chofer_id): confirmar dos veces deja una sola
// fila y la última confirmación gana.
func upsertConfirmation(db *gorm.DB, date time.Time, choferID, confirmedBy uint) (models.WeeklyConfirmation, error) {
	confirmation := models.WeeklyConfirmation{
		Date:        date,
		ChoferID:    choferID,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: fechas.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "chofer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"confirmed_by", "confirmed_at"}),
	}).Create(&confirmation).Error
	return confirmation, err
}

func ConfirmDayHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, adminName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body ConfirmRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ChoferID == 0 {
			return apperr.Validation("chofer_id requerido")
		}
		if !fechas.ValidDay(body.Date) {
			return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
		}
		date, _ := fechas.ParseDay(body.Date)

		confirmation, err := upsertConfirmation(database.DB, date, body.ChoferID, adminID)
		if err != nil {
			if database.IsTransient(err) {
				return apperr.Transient("No se pudo confirmar, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la confirmación")
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      adminID,
			UserName:    adminName,
			EntityType:  "weekly_confirmation",
			EntityID:    confirmation.ID,
			Action:      models.AuditActionCreate,
			Description: "Sobre confirmado",
			After:       confirmation,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}

type IncidentRequest struct {
	ChoferID         uint                `json:"chofer_id"`
	Description      string              `json:"description"`
	Type             models.IncidentType `json:"type"`
	Amount           decimal.Decimal     `json:"amount"`
	PreviousEfectivo *decimal.Decimal    `json:"previous_efectivo"`
	NewEfectivo      *decimal.Decimal    `json:"new_efectivo"`
	Date             string              `json:"date"`
}

// -------------------------------------------------
// POST /api/dashboard/incidents — registrar deducción o ajuste (Admin)
// -------------------------------------------------
func CreateIncidentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, adminName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body IncidentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ChoferID == 0 {
			return apperr.Validation("chofer_id requerido")
		}
		if strings.TrimSpace(body.Description) == "" {
			return apperr.Validation("Descripción requerida")
		}

		day := body.Date
		if day == "" {
			day = fechas.Today()
		}
		if !fechas.ValidDay(day) {
			return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
		}
		date, _ := fechas.ParseDay(day)

		incident := models.WeeklyIncident{
			Date:        date,
			ChoferID:    body.ChoferID,
			Description: strings.TrimSpace(body.Description),
			CreatedBy:   adminID,
		}

		switch body.Type {
		case "", models.IncidentDeduccion:
			if !body.Amount.IsPositive() {
				return apperr.Validation("El monto debe ser mayor a $0")
			}
			incident.Type = models.IncidentDeduccion
			incident.Amount = body.Amount
		case models.IncidentAjuste:
			// El ajuste guarda la diferencia firmada: corregir hacia arriba
			// produce un monto negativo que regresa dinero al sobre
			if body.PreviousEfectivo == nil || body.NewEfectivo == nil {
				return apperr.Validation("previous_efectivo y new_efectivo requeridos para un ajuste")
			}
			if body.PreviousEfectivo.IsNegative() || body.NewEfectivo.IsNegative() {
				return apperr.Validation("Los montos del ajuste no pueden ser negativos")
			}
			prev := *body.PreviousEfectivo
			incident.Type = models.IncidentAjuste
			incident.Amount = prev.Sub(*body.NewEfectivo)
			incident.PrevEfectivo = &prev
		default:
			return apperr.Validation("Tipo de incidencia desconocido")
		}

		if err := database.DB.Create(&incident).Error; err != nil {
			if database.IsTransient(err) {
				return apperr.Transient("No se pudo guardar la incidencia, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar la incidencia")
		}

		audit.WriteLog(audit.LogOptions{
			UserID:      adminID,
			UserName:    adminName,
			EntityType:  "weekly_incident",
			EntityID:    incident.ID,
			Action:      models.AuditActionCreate,
			Description: incident.Description,
			After:       incident,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": incident.ID, "date": day})
	}
}
