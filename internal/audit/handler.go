package audit

import (
	"watify-backend/internal/apperr"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------------------------------
// GET /api/audit-logs?entity_type=&date=YYYY-MM-DD&limit= — bitácora (Admin)
// -------------------------------------------------
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		query := database.DB.Model(&models.AuditLog{}).Order("id DESC").Limit(limit)

		if entityType := c.Query("entity_type"); entityType != "" {
			query = query.Where("entity_type = ?", entityType)
		}
		if day := c.Query("date"); day != "" {
			if !fechas.ValidDay(day) {
				return apperr.Validation("Fecha inválida, se espera YYYY-MM-DD")
			}
			start, end, _ := fechas.DayBounds(day)
			query = query.Where("created_at >= ? AND created_at < ?", start, end)
		}

		var logs []models.AuditLog
		if err := query.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la bitácora")
		}
		return c.JSON(logs)
	}
}
