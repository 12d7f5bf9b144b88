package sucursal

import (
	"errors"
	"strings"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// La sucursal es el mostrador fijo del negocio. Vende con la misma mecánica
// que un chofer, a través de un usuario pseudo-chofer con rol Sucursal y una
// ruta del día que se abre sola con cero garrafones cargados.

func sucursalUser(tx *gorm.DB) (*models.User, error) {
	var user models.User
	err := tx.Where("role = ?", models.RoleSucursal).Order("id ASC").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Usuario sucursal no encontrado")
		}
		return nil, err
	}
	return &user, nil
}

func routeOfToday(tx *gorm.DB, userID uint) (*models.Route, error) {
	start, end, err := fechas.DayBounds(fechas.Today())
	if err != nil {
		return nil, err
	}
	var route models.Route
	err = tx.Where("user_id = ? AND started_at >= ? AND started_at < ?", userID, start, end).
		Order("id DESC").First(&route).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// -------------------------------------------------
// GET /api/sucursal/route — ruta del día del mostrador; se crea si no existe
// -------------------------------------------------
func RouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var route *models.Route
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			user, err := sucursalUser(tx)
			if err != nil {
				return err
			}
			route, err = routeOfToday(tx, user.ID)
			if err != nil {
				return err
			}
			if route == nil {
				route = &models.Route{UserID: user.ID, GarrafonesLoaded: 0, Status: models.RouteActive}
				return tx.Create(route).Error
			}
			return nil
		})
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				return appErr
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo preparar la ruta de sucursal")
		}

		return c.JSON(fiber.Map{
			"route_id":   route.ID,
			"started_at": route.StartedAt.In(fechas.Location()).Format(time.RFC3339),
		})
	}
}

type POSItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type POSRequest struct {
	RouteID         uint           `json:"route_id"`
	CustomerName    string         `json:"customer_name"`
	CompanyID       *uint          `json:"company_id"`
	PaymentMethodID uint           `json:"payment_method_id"`
	Items           []POSItemInput `json:"items"`
}

// -------------------------------------------------
// POST /api/sucursal/pos — venta de mostrador sobre la ruta del día
// -------------------------------------------------
func POSHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body POSRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo JSON inválido")
		}
		if body.RouteID == 0 {
			return apperr.Validation("route_id requerido")
		}
		if body.PaymentMethodID == 0 {
			return apperr.Validation("payment_method_id requerido")
		}
		if len(body.Items) == 0 {
			return apperr.Validation("items no puede estar vacío")
		}

		total := decimal.Zero
		rows := make([]models.TransactionItem, 0, len(body.Items))
		for _, item := range body.Items {
			if item.Quantity <= 0 || item.UnitPrice.IsNegative() {
				return apperr.Validation("Item inválido")
			}
			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)
			rows = append(rows, models.TransactionItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  subtotal,
			})
		}
		if !total.IsPositive() {
			return apperr.Validation("Total debe ser mayor a 0")
		}

		var txID uint
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			user, err := sucursalUser(tx)
			if err != nil {
				return err
			}

			var route models.Route
			if err := tx.Where("id = ? AND user_id = ?", body.RouteID, user.ID).First(&route).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Forbidden("Ruta no válida para sucursal")
				}
				return err
			}

			var method models.PaymentMethod
			if err := tx.First(&method, body.PaymentMethodID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("Método de pago desconocido")
				}
				return err
			}
			// Una venta a crédito de negocio necesita saber a qué empresa cobrar
			if method.Name == models.MethodNegocios && body.CompanyID == nil {
				return apperr.Validation("company_id requerido para método Negocios")
			}

			routeID := route.ID
			sale := models.Transaction{
				UserID:          user.ID,
				RouteID:         &routeID,
				CompanyID:       body.CompanyID,
				PaymentMethodID: body.PaymentMethodID,
				Total:           total,
				Items:           rows,
			}
			if name := strings.TrimSpace(body.CustomerName); name != "" {
				sale.CustomerName = &name
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}
			txID = sale.ID
			return nil
		})
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				return appErr
			}
			if database.IsTransient(err) {
				return apperr.Transient("No se pudo registrar la venta, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Error al registrar venta")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": txID, "total": total})
	}
}

type SummaryMethod struct {
	Method string          `json:"method"`
	Color  string          `json:"color"`
	Icon   string          `json:"icon"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
}

type SummaryProduct struct {
	Product string          `json:"product"`
	Units   int             `json:"units"`
	Total   decimal.Decimal `json:"total"`
}

type SummaryResponse struct {
	Date             string           `json:"date"`
	RouteID          *uint            `json:"route_id"`
	Total            decimal.Decimal  `json:"total"`
	TransactionCount int              `json:"transaction_count"`
	ByMethod         []SummaryMethod  `json:"by_method"`
	ByProduct        []SummaryProduct `json:"by_product"`
}

// -------------------------------------------------
// GET /api/sucursal/summary — corte del día del mostrador
// -------------------------------------------------
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := fechas.Today()

		user, err := sucursalUser(database.DB)
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				return appErr
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la sucursal")
		}
		route, err := routeOfToday(database.DB, user.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la ruta de sucursal")
		}
		if route == nil {
			return c.JSON(SummaryResponse{
				Date:      today,
				Total:     decimal.Zero,
				ByMethod:  []SummaryMethod{},
				ByProduct: []SummaryProduct{},
			})
		}

		var byMethod []SummaryMethod
		err = database.DB.Model(&models.Transaction{}).
			Select("payment_methods.name AS method, payment_methods.color, payment_methods.icon, "+
				"COALESCE(SUM(transactions.total), 0) AS total, COUNT(transactions.id) AS count").
			Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
			Where("transactions.route_id = ?", route.ID).
			Group("payment_methods.id").
			Order("SUM(transactions.total) DESC").
			Scan(&byMethod).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el corte por método")
		}
		if byMethod == nil {
			byMethod = []SummaryMethod{}
		}

		var byProduct []SummaryProduct
		err = database.DB.Model(&models.TransactionItem{}).
			Select("products.name AS product, COALESCE(SUM(transaction_items.quantity), 0) AS units, "+
				"COALESCE(SUM(transaction_items.subtotal), 0) AS total").
			Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
			Joins("JOIN products ON products.id = transaction_items.product_id").
			Where("transactions.route_id = ?", route.ID).
			Group("products.id").
			Order("SUM(transaction_items.subtotal) DESC").
			Scan(&byProduct).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el corte por producto")
		}
		if byProduct == nil {
			byProduct = []SummaryProduct{}
		}

		total := decimal.Zero
		txCount := 0
		for _, m := range byMethod {
			total = total.Add(m.Total)
			txCount += m.Count
		}

		routeID := route.ID
		return c.JSON(SummaryResponse{
			Date:             today,
			RouteID:          &routeID,
			Total:            total,
			TransactionCount: txCount,
			ByMethod:         byMethod,
			ByProduct:        byProduct,
		})
	}
}
