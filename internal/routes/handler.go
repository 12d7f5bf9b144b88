package routes

import (
	"errors"
	"time"

	"watify-backend/internal/apperr"
	"watify-backend/internal/auth"
	"watify-backend/internal/config"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type StartRouteRequest struct {
	GarrafonesLoaded int `json:"garrafones_loaded"`
}

type RouteResponse struct {
	ID               uint               `json:"id"`
	GarrafonesLoaded int                `json:"garrafones_loaded"`
	Status           models.RouteStatus `json:"status"`
	StartedAt        string             `json:"started_at"`
	Garrafones       garrafones.Cuenta  `json:"garrafones"`
}

// -------------------------------------------------
// GET /api/routes — ruta activa del usuario, o null
// -------------------------------------------------
func ActiveRouteHandler() fiber.Handler {
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

		cuenta, err := garrafones.ForRoute(route.ID, route.GarrafonesLoaded)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el conteo de garrafones")
		}

		return c.JSON(RouteResponse{
			ID:               route.ID,
			GarrafonesLoaded: route.GarrafonesLoaded,
			Status:           route.Status,
			StartedAt:        route.StartedAt.In(fechas.Location()).Format(time.RFC3339),
			Garrafones:       cuenta,
		})
	}
}

// openRoute cierra cualquier ruta activa previa del chofer y abre la nueva
// en la misma transacción: bajo requests duplicados nunca quedan dos activas.
func openRoute(db *gorm.DB, userID uint, cargados int) (models.Route, error) {
	route := models.Route{
		UserID:           userID,
		GarrafonesLoaded: cargados,
		Status:           models.RouteActive,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.Route{}).
			Where("user_id = ? AND status = ?", userID, models.RouteActive).
			Updates(map[string]interface{}{"status": models.RouteFinished, "finished_at": now}).Error; err != nil {
			return err
		}
		return tx.Create(&route).Error
	})
	return route, err
}

// -------------------------------------------------
// POST /api/routes — iniciar ruta
// -------------------------------------------------
func StartRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body StartRouteRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}
		if body.GarrafonesLoaded <= 0 {
			return apperr.Validation("Indica cuántos garrafones cargaste")
		}

		route, err := openRoute(database.DB, userID, body.GarrafonesLoaded)
		if err != nil {
			if database.IsActiveRouteConflict(err) {
				// Request duplicado que perdió la carrera contra el índice
				return apperr.Conflict("Ya hay una ruta activa, recarga la pantalla")
			}
			if database.IsTransient(err) {
				return apperr.Transient("Base de datos no disponible, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo iniciar la ruta")
		}

		logrus.WithFields(logrus.Fields{"chofer": userName, "route_id": route.ID, "cargados": body.GarrafonesLoaded}).
			Info("Ruta iniciada")

		return c.Status(fiber.StatusCreated).JSON(RouteResponse{
			ID:               route.ID,
			GarrafonesLoaded: route.GarrafonesLoaded,
			Status:           route.Status,
			StartedAt:        route.StartedAt.In(fechas.Location()).Format(time.RFC3339),
			Garrafones:       garrafones.Reconciliar(route.GarrafonesLoaded, 0, 0, 0, 0),
		})
	}
}

// -------------------------------------------------
// POST /api/routes/finish
// -------------------------------------------------
func FinishRouteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body struct {
			RouteID uint `json:"route_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}
		if body.RouteID == 0 {
			return apperr.Validation("route_id requerido")
		}

		// El chofer solo finaliza sus rutas; el admin cualquiera
		q := database.DB.Where("id = ?", body.RouteID)
		if role != models.RoleAdmin {
			q = q.Where("user_id = ?", userID)
		}
		var route models.Route
		if err := q.First(&route).Error; err != nil {
			return apperr.NotFound("Ruta no encontrada")
		}
		if route.Status != models.RouteActive {
			return apperr.Conflict("La ruta ya está finalizada")
		}

		summary, err := BuildSummary(&route)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen de la ruta")
		}

		if err := closeRoute(database.DB, &route, summary); err != nil {
			if errors.Is(err, errRutaYaFinalizada) {
				return apperr.Conflict("La ruta ya está finalizada")
			}
			if database.IsTransient(err) {
				return apperr.Transient("Base de datos no disponible, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo finalizar la ruta")
		}

		logrus.WithFields(logrus.Fields{"chofer": userName, "route_id": route.ID}).Info("Ruta finalizada")

		return c.JSON(summary)
	}
}

// -------------------------------------------------
// GET /api/routes/summary?route_id=N
// Resumen de una ruta terminada: congelado o recalculado según config.
// -------------------------------------------------
func SummaryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		routeID := c.QueryInt("route_id")
		if routeID <= 0 {
			return apperr.Validation("route_id requerido")
		}

		var route models.Route
		if err := database.DB.First(&route, routeID).Error; err != nil {
			return apperr.NotFound("Ruta no encontrada")
		}

		// Rutas activas siempre se sirven en vivo
		if route.Status == models.RouteActive || cfg.SummaryReadMode == config.SummaryModeLive {
			summary, err := BuildSummary(&route)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen")
			}
			return c.JSON(summary)
		}

		summary, err := loadSnapshot(route.ID)
		if err == nil {
			return c.JSON(summary)
		}
		// Rutas finalizadas antes de que existieran snapshots: recalcular
		summary, err = BuildSummary(&route)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el resumen")
		}
		return c.JSON(summary)
	}
}
