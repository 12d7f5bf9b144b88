package cashflow

import (
	"watify-backend/internal/apperr"
	"watify-backend/internal/auth"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SobreResponse struct {
	Date     string `json:"date"`
	ChoferID uint   `json:"chofer_id"`
	Split
}

// -------------------------------------------------
// GET /api/cashflow/sobre?date=&chofer_id=
// Sobre del día del chofer: lo que debe entregar en efectivo después de
// restar facturado e incidencias. El chofer ve el suyo; admin y visor
// pueden pedir el de cualquiera.
// -------------------------------------------------
func SobreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		day := c.Query("date")
		if day == "" {
			day = fechas.Today()
		}
		if !fechas.ValidDay(day) {
			return apperr.Validation("date debe tener formato YYYY-MM-DD")
		}

		choferID := userID
		if requested := c.QueryInt("chofer_id"); requested > 0 {
			if role != models.RoleAdmin && role != models.RoleVisor {
				return apperr.Forbidden("Solo puedes consultar tu propio sobre")
			}
			choferID = uint(requested)
		}

		efectivo, err := EfectivoDelDia(choferID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el efectivo del día")
		}
		incidencias, err := IncidenciasDelDia(choferID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron sumar las incidencias")
		}
		facturado, err := FacturadoDelDia(choferID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo sumar lo facturado")
		}
		precio, err := PrecioRecarga()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el precio de recarga")
		}

		return c.JSON(SobreResponse{
			Date:     day,
			ChoferID: choferID,
			Split:    Calcular(efectivo, facturado, precio, incidencias),
		})
	}
}
