package routes

import (
	"errors"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/auth"
	"watify-backend/internal/database"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type GrantExtraLoadRequest struct {
	RouteID  uint `json:"route_id"`
	Cantidad int  `json:"cantidad"`
}

type ExtraLoadResponse struct {
	ID         uint                   `json:"id"`
	RouteID    uint                   `json:"route_id"`
	Cantidad   int                    `json:"cantidad"`
	Status     models.ExtraLoadStatus `json:"status"`
	CreatedAt  string                 `json:"created_at"`
	AcceptedAt *string                `json:"accepted_at"`
}

// -------------------------------------------------
// GET /api/routes/extra-load — primera carga pendiente del chofer, o null
// -------------------------------------------------
func PendingExtraLoadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var route models.Route
		err = database.DB.
			Where("user_id = ? AND status = ?", userID, models.RouteActive).
			Order("started_at DESC").
			First(&route).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(nil)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la ruta")
		}

		var load models.RecargaExtra
		err = database.DB.
			Where("route_id = ? AND status = ?", route.ID, models.ExtraLoadPending).
			Order("created_at ASC").
			First(&load).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(nil)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la carga")
		}

		return c.JSON(ExtraLoadResponse{
			ID:        load.ID,
			RouteID:   load.RouteID,
			Cantidad:  load.Cantidad,
			Status:    load.Status,
			CreatedAt: load.CreatedAt.Format(time.RFC3339),
		})
	}
}

// -------------------------------------------------
// POST /api/routes/extra-load — admin empuja carga extra a una ruta activa
// -------------------------------------------------
func GrantExtraLoadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, adminName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body GrantExtraLoadRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}
		if body.RouteID == 0 {
			return apperr.Validation("route_id requerido")
		}
		if body.Cantidad <= 0 {
			return apperr.Validation("cantidad debe ser mayor a 0")
		}

		var route models.Route
		err = database.DB.
			Where("id = ? AND status = ?", body.RouteID, models.RouteActive).
			First(&route).Error
		if err != nil {
			return apperr.NotFound("Ruta no encontrada o no activa")
		}

		// La cantidad se suma a la carga de la ruta AHORA, no cuando el
		// chofer acepte: aceptar es solo un acuse de pantalla. Insertar y
		// sumar van juntos en una transacción.
		load := models.RecargaExtra{RouteID: body.RouteID, Cantidad: body.Cantidad}
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&load).Error; err != nil {
				return err
			}
			return tx.Model(&models.Route{}).
				Where("id = ?", body.RouteID).
				Update("garrafones_loaded", gorm.Expr("garrafones_loaded + ?", body.Cantidad)).Error
		})
		if err != nil {
			if database.IsTransient(err) {
				return apperr.Transient("Base de datos no disponible, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar la carga extra")
		}

		logrus.WithFields(logrus.Fields{"admin": adminName, "route_id": body.RouteID, "cantidad": body.Cantidad}).
			Info("Carga extra enviada")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "id": load.ID})
	}
}

// -------------------------------------------------
// PATCH /api/routes/extra-load — chofer acepta la carga
// -------------------------------------------------
func AcceptExtraLoadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body struct {
			ID uint `json:"id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}
		if body.ID == 0 {
			return apperr.Validation("id requerido")
		}

		// La carga debe estar pendiente y pertenecer a una ruta del chofer
		var load models.RecargaExtra
		err = database.DB.
			Joins("JOIN routes ON routes.id = recarga_extras.route_id").
			Where("recarga_extras.id = ? AND recarga_extras.status = ? AND routes.user_id = ?",
				body.ID, models.ExtraLoadPending, userID).
			First(&load).Error
		if err != nil {
			return apperr.NotFound("Carga no encontrada o ya aceptada")
		}

		now := time.Now()
		err = database.DB.Model(&load).
			Updates(map[string]interface{}{"status": models.ExtraLoadAccepted, "accepted_at": now}).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo aceptar la carga")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
