package sales

import (
	"errors"
	"strings"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/audit"
	"watify-backend/internal/auth"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type TransactionRequest struct {
	RouteID         *uint       `json:"route_id"`
	CustomerName    string      `json:"customer_name"`
	CompanyID       *uint       `json:"company_id"`
	PaymentMethodID uint        `json:"payment_method_id"`
	Notes           string      `json:"notes"`
	Items           []ItemInput `json:"items"`
}

type ItemResponse struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type TransactionResponse struct {
	ID                 uint            `json:"id"`
	UserID             uint            `json:"user_id"`
	ChoferName         string          `json:"chofer_name"`
	RouteID            *uint           `json:"route_id"`
	CustomerName       *string         `json:"customer_name"`
	CompanyID          *uint           `json:"company_id"`
	CompanyName        *string         `json:"company_name"`
	PaymentMethodID    uint            `json:"payment_method_id"`
	PaymentMethodName  string          `json:"payment_method_name"`
	PaymentMethodColor string          `json:"payment_method_color"`
	PaymentMethodIcon  string          `json:"payment_method_icon"`
	Total              decimal.Decimal `json:"total"`
	Notes              *string         `json:"notes"`
	TransactionDate    string          `json:"transaction_date"`
	Items              []ItemResponse  `json:"items"`
}

// validateItems revisa los renglones de la venta y calcula total y subtotales
// en el servidor. El total que manda el cliente se ignora.
func validateItems(items []ItemInput) ([]models.TransactionItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, apperr.Validation("Agrega al menos un producto")
	}

	total := decimal.Zero
	rows := make([]models.TransactionItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, decimal.Zero, apperr.Validation("Producto requerido en cada renglón")
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, apperr.Validation("La cantidad debe ser mayor a cero")
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, apperr.Validation("El precio unitario no puede ser negativo")
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
	return rows, total, nil
}

func checkMethodAndProducts(tx *gorm.DB, paymentMethodID uint, rows []models.TransactionItem) error {
	var method models.PaymentMethod
	if err := tx.First(&method, paymentMethodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Validation("Método de pago desconocido")
		}
		return err
	}
	if !method.IsActive {
		return apperr.Validation("El método de pago está inactivo")
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	var count int64
	if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(uniqueIDs(ids)) {
		return apperr.Validation("Producto desconocido en la venta")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// -------------------------------------------------
// POST /api/transactions — registrar una venta con sus renglones
// -------------------------------------------------
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body TransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.PaymentMethodID == 0 {
			return apperr.Validation("Método de pago requerido")
		}

		rows, total, err := validateItems(body.Items)
		if err != nil {
			return err
		}

		if body.RouteID != nil {
			var route models.Route
			if err := database.DB.First(&route, *body.RouteID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("Ruta no encontrada")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la ruta")
			}
			if route.UserID != userID && role != models.RoleAdmin {
				return apperr.Forbidden("La ruta no pertenece al usuario")
			}
			if route.Status != models.RouteActive {
				return apperr.Conflict("La ruta ya fue cerrada")
			}
		}

		customerName := strings.TrimSpace(body.CustomerName)
		notes := strings.TrimSpace(body.Notes)

		tx := models.Transaction{
			UserID:          userID,
			RouteID:         body.RouteID,
			CompanyID:       body.CompanyID,
			PaymentMethodID: body.PaymentMethodID,
			Total:           total,
			Items:           rows,
		}
		if customerName != "" {
			tx.CustomerName = &customerName
		}
		if notes != "" {
			tx.Notes = &notes
		}

		err = database.DB.Transaction(func(dbtx *gorm.DB) error {
			if err := checkMethodAndProducts(dbtx, body.PaymentMethodID, rows); err != nil {
				return err
			}
			return dbtx.Create(&tx).Error
		})
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				return appErr
			}
			if database.IsTransient(err) {
				return apperr.Transient("No se pudo guardar la venta, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Error al guardar la venta")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    tx.ID,
			"total": tx.Total,
		})
	}
}

// -------------------------------------------------
// GET /api/transactions?date=YYYY-MM-DD&user_id= — ventas del día
// -------------------------------------------------
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		day := c.Query("date", fechas.Today())
		if !fechas.ValidDay(day) {
			return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
		}
		start, end, err := fechas.DayBounds(day)
		if err != nil {
			return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
		}

		// Un chofer solo ve sus propias ventas, sin importar qué filtro pida
		filterUser := uint(c.QueryInt("user_id"))
		if role == models.RoleChofer {
			filterUser = userID
		}

		query := database.DB.
			Preload("Items.Product").
			Preload("PaymentMethod").
			Preload("Company").
			Preload("User").
			Where("transaction_date >= ? AND transaction_date < ?", start, end).
			Order("transaction_date DESC")
		if filterUser != 0 {
			query = query.Where("user_id = ?", filterUser)
		}

		var txs []models.Transaction
		if err := query.Find(&txs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las ventas")
		}

		result := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			result = append(result, toResponse(&tx))
		}
		return c.JSON(result)
	}
}

func toResponse(tx *models.Transaction) TransactionResponse {
	items := make([]ItemResponse, 0, len(tx.Items))
	for _, item := range tx.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	resp := TransactionResponse{
		ID:                 tx.ID,
		UserID:             tx.UserID,
		ChoferName:         tx.User.Name,
		RouteID:            tx.RouteID,
		CustomerName:       tx.CustomerName,
		CompanyID:          tx.CompanyID,
		PaymentMethodID:    tx.PaymentMethodID,
		PaymentMethodName:  tx.PaymentMethod.Name,
		PaymentMethodColor: tx.PaymentMethod.Color,
		PaymentMethodIcon:  tx.PaymentMethod.Icon,
		Total:              tx.Total,
		Notes:              tx.Notes,
		TransactionDate:    tx.TransactionDate.In(fechas.Location()).Format(time.RFC3339),
		Items:              items,
	}
	if tx.Company != nil {
		resp.CompanyName = &tx.Company.Name
	}
	return resp
}

// loadOwned trae la venta y valida que el usuario pueda tocarla.
func loadOwned(c *fiber.Ctx) (*models.Transaction, error) {
	userID, _, role, err := auth.CurrentUser(c)
	if err != nil {
		return nil, err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, apperr.Validation("ID requerido")
	}

	var tx models.Transaction
	if err := database.DB.First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Transacción no encontrada")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la venta")
	}
	if role != models.RoleAdmin && tx.UserID != userID {
		return nil, apperr.Forbidden("Acceso denegado")
	}
	return &tx, nil
}

// -------------------------------------------------
// PUT /api/transactions/:id — editar venta reemplazando todos los renglones
// -------------------------------------------------
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tx, err := loadOwned(c)
		if err != nil {
			return err
		}

		var body TransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.PaymentMethodID == 0 {
			return apperr.Validation("Método de pago requerido")
		}
		rows, total, err := validateItems(body.Items)
		if err != nil {
			return err
		}

		customerName := strings.TrimSpace(body.CustomerName)
		notes := strings.TrimSpace(body.Notes)

		err = database.DB.Transaction(func(dbtx *gorm.DB) error {
			if err := checkMethodAndProducts(dbtx, body.PaymentMethodID, rows); err != nil {
				return err
			}

			updates := map[string]interface{}{
				"customer_name":     nullIfEmpty(customerName),
				"company_id":        body.CompanyID,
				"payment_method_id": body.PaymentMethodID,
				"total":             total,
				"notes":             nullIfEmpty(notes),
			}
			if err := dbtx.Model(&models.Transaction{}).Where("id = ?", tx.ID).Updates(updates).Error; err != nil {
				return err
			}

			// Reemplazo completo: se borran los renglones viejos y se insertan
			// los nuevos, nunca se editan en sitio
			if err := dbtx.Where("transaction_id = ?", tx.ID).Delete(&models.TransactionItem{}).Error; err != nil {
				return err
			}
			for i := range rows {
				rows[i].TransactionID = tx.ID
			}
			return dbtx.Create(&rows).Error
		})
		if err != nil {
			if appErr, ok := apperr.As(err); ok {
				return appErr
			}
			if database.IsTransient(err) {
				return apperr.Transient("No se pudo actualizar la venta, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Error al actualizar la venta")
		}

		editorID, editorName, _, _ := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      editorID,
			UserName:    editorName,
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionUpdate,
			Description: "Venta editada",
			Before:      tx,
		})

		return c.JSON(fiber.Map{"ok": true, "id": tx.ID, "total": total})
	}
}

// -------------------------------------------------
// DELETE /api/transactions/:id
// -------------------------------------------------
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tx, err := loadOwned(c)
		if err != nil {
			return err
		}

		err = database.DB.Transaction(func(dbtx *gorm.DB) error {
			if err := dbtx.Where("transaction_id = ?", tx.ID).Delete(&models.TransactionItem{}).Error; err != nil {
				return err
			}
			return dbtx.Delete(&models.Transaction{}, tx.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Error al eliminar la venta")
		}

		editorID, editorName, _, _ := auth.CurrentUser(c)
		audit.WriteLog(audit.LogOptions{
			UserID:      editorID,
			UserName:    editorName,
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionDelete,
			Description: "Venta eliminada",
			Before:      tx,
		})

		return c.JSON(fiber.Map{"ok": true})
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
