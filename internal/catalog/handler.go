package catalog

import (
	"sort"
	"strings"

	"watify-backend/internal/apperr"
	"watify-backend/internal/audit"
	"watify-backend/internal/auth"
	"watify-backend/internal/database"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type ProductResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	BasePrice    decimal.Decimal `json:"base_price"`
	DisplayOrder int             `json:"display_order"`
}

// -------------------------------------------------
// GET /api/products — catálogo ordenado como lo muestra el punto de venta
// -------------------------------------------------
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Order("display_order ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar los productos")
		}

		result := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			result = append(result, ProductResponse{
				ID:           p.ID,
				Name:         p.Name,
				BasePrice:    p.BasePrice,
				DisplayOrder: p.DisplayOrder,
			})
		}
		return c.JSON(result)
	}
}

type CompanyResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	IsActive        bool                     `json:"is_active"`
	PaymentMethodID *uint                    `json:"payment_method_id"`
	SpecialPrices   map[uint]decimal.Decimal `json:"special_prices"`
	IsZone          bool                     `json:"is_zone"`
	ZonePriority    *int                     `json:"zone_priority"`
}

// -------------------------------------------------
// GET /api/companies — empresas activas con precios especiales, las de la
// zona del chofer primero
// -------------------------------------------------
func ListCompaniesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var assignments []models.CompanyAssignment
		if err := database.DB.Where("user_id = ?", userID).
			Order("priority ASC").Find(&assignments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las zonas")
		}
		hasZone := len(assignments) > 0
		zoneMap := make(map[uint]int, len(assignments))
		for _, a := range assignments {
			zoneMap[a.CompanyID] = a.Priority
		}

		var companies []models.Company
		if err := database.DB.Where("is_active = ?", true).Find(&companies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las empresas")
		}

		var prices []models.CompanyPrice
		if err := database.DB.Find(&prices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar los precios")
		}
		priceMap := make(map[uint]map[uint]decimal.Decimal)
		for _, p := range prices {
			if priceMap[p.CompanyID] == nil {
				priceMap[p.CompanyID] = make(map[uint]decimal.Decimal)
			}
			priceMap[p.CompanyID][p.ProductID] = p.Price
		}

		result := make([]CompanyResponse, 0, len(companies))
		for _, co := range companies {
			special := priceMap[co.ID]
			if special == nil {
				special = map[uint]decimal.Decimal{}
			}
			resp := CompanyResponse{
				ID:              co.ID,
				Name:            co.Name,
				IsActive:        co.IsActive,
				PaymentMethodID: co.PaymentMethodID,
				SpecialPrices:   special,
			}
			if prio, ok := zoneMap[co.ID]; ok {
				p := prio
				resp.IsZone = true
				resp.ZonePriority = &p
			} else {
				// Sin asignaciones todo es "zona": un chofer nuevo ve el
				// catálogo completo en orden alfabético
				resp.IsZone = !hasZone
			}
			result = append(result, resp)
		}

		// Zona primero por prioridad, el resto alfabético
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i], result[j]
			aZone := a.IsZone && a.ZonePriority != nil
			bZone := b.IsZone && b.ZonePriority != nil
			if aZone && bZone {
				return *a.ZonePriority < *b.ZonePriority
			}
			if aZone != bZone {
				return aZone
			}
			return a.Name < b.Name
		})

		return c.JSON(result)
	}
}

type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// -------------------------------------------------
// POST /api/companies — alta de empresa (Admin)
// -------------------------------------------------
func CreateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			return apperr.Validation("Nombre requerido")
		}

		company := models.Company{Name: name, IsActive: true}
		if err := database.DB.Create(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la empresa")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":             company.ID,
			"name":           company.Name,
			"is_active":      true,
			"special_prices": fiber.Map{},
		})
	}
}

type CompanyPriceRequest struct {
	CompanyID uint            `json:"company_id"`
	ProductID uint            `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
}

// -------------------------------------------------
// PUT /api/companies/prices — fijar precio especial (Admin, upsert)
// -------------------------------------------------
func UpsertCompanyPriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, adminName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CompanyPriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.CompanyID == 0 || body.ProductID == 0 || body.Price.IsNegative() {
			return apperr.Validation("Datos inválidos")
		}

		var previous *models.CompanyPrice
		var existing models.CompanyPrice
		if err := database.DB.Where("company_id = ? AND product_id = ?", body.CompanyID, body.ProductID).
			First(&existing).Error; err == nil {
			previous = &existing
		}

		price := models.CompanyPrice{
			CompanyID: body.CompanyID,
			ProductID: body.ProductID,
			Price:     body.Price,
		}
		err = database.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).Create(&price).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el precio")
		}

		action := models.AuditActionCreate
		if previous != nil {
			action = models.AuditActionUpdate
		}
		audit.WriteLog(audit.LogOptions{
			UserID:      adminID,
			UserName:    adminName,
			EntityType:  "company_price",
			EntityID:    price.ID,
			Action:      action,
			Description: "Precio especial por empresa",
			Before:      previous,
			After:       price,
		})

		return c.JSON(fiber.Map{
			"ok":         true,
			"company_id": body.CompanyID,
			"product_id": body.ProductID,
			"price":      body.Price,
		})
	}
}
