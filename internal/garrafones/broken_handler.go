package garrafones

import (
	"watify-backend/internal/apperr"
	"watify-backend/internal/auth"
	"watify-backend/internal/database"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterBrokenRequest struct {
	RouteID       uint                   `json:"route_id"`
	WasFull       *bool                  `json:"was_full"`
	ConditionType models.BrokenCondition `json:"condition_type"`
}

// -------------------------------------------------
// POST /api/broken
// -------------------------------------------------
func RegisterBrokenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body RegisterBrokenRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}

		if body.RouteID == 0 {
			return apperr.Validation("route_id requerido")
		}
		if body.WasFull == nil {
			return apperr.Validation("Indica si el garrafón estaba lleno o vacío")
		}
		if !body.ConditionType.Valid() {
			return apperr.Validation("Condición inválida (buen_estado|uso_leve|parchado|tostado)")
		}

		// La ruta debe estar activa y ser del usuario (o el usuario es admin)
		q := database.DB.Where("id = ? AND status = ?", body.RouteID, models.RouteActive)
		if role != models.RoleAdmin {
			q = q.Where("user_id = ?", userID)
		}
		var route models.Route
		if err := q.First(&route).Error; err != nil {
			return apperr.NotFound("Ruta no encontrada o ya finalizada")
		}

		broken := models.BrokenGarrafon{
			RouteID:       body.RouteID,
			UserID:        userID,
			WasFull:       *body.WasFull,
			ConditionType: body.ConditionType,
		}
		if err := database.DB.Create(&broken).Error; err != nil {
			if database.IsTransient(err) {
				return apperr.Transient("Base de datos no disponible, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar el garrafón quebrado")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "id": broken.ID})
	}
}
