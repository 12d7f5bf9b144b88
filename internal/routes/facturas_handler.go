package routes

import (
	"strings"

	"watify-backend/internal/apperr"
	"watify-backend/internal/auth"
	"watify-backend/internal/cashflow"
	"watify-backend/internal/database"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateFacturaRequest struct {
	RouteID  uint   `json:"route_id"`
	Cantidad int    `json:"cantidad"`
	Cliente  string `json:"cliente"`
}

type FacturaResponse struct {
	ID       uint   `json:"id"`
	RouteID  uint   `json:"route_id"`
	Cantidad int    `json:"cantidad"`
	Cliente  string `json:"cliente"`
}

// createFactura valida el cupo y crea la factura en una sola transacción.
// El renglón de la ruta se bloquea con FOR UPDATE: dos peticiones
// concurrentes se serializan y la segunda ve lo que facturó la primera,
// así la suma facturada nunca rebasa los garrafones de efectivo.
func createFactura(db *gorm.DB, userID uint, role models.UserRole, routeID uint, cantidad int, cliente string) (models.RouteFactura, error) {
	factura := models.RouteFactura{RouteID: routeID, Cantidad: cantidad, Cliente: cliente}
	err := db.Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&route, routeID).Error; err != nil {
			return apperr.NotFound("Ruta no encontrada")
		}
		if route.UserID != userID && role != models.RoleAdmin {
			return apperr.Forbidden("La ruta no pertenece al usuario")
		}

		disponibles, err := cashflow.GarrafonesEfectivoDeRuta(tx, routeID)
		if err != nil {
			return err
		}
		facturados, err := cashflow.CantidadFacturada(tx, routeID)
		if err != nil {
			return err
		}
		if facturados+cantidad > disponibles {
			return apperr.Conflict("La cantidad excede los garrafones de efectivo disponibles para facturar")
		}

		return tx.Create(&factura).Error
	})
	return factura, err
}

// -------------------------------------------------
// POST /api/routes/facturas
// -------------------------------------------------
func CreateFacturaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFacturaRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Cuerpo de la petición inválido")
		}

		body.Cliente = strings.TrimSpace(body.Cliente)
		if body.RouteID == 0 {
			return apperr.Validation("route_id requerido")
		}
		if body.Cantidad <= 0 {
			return apperr.Validation("cantidad debe ser mayor a 0")
		}
		if body.Cliente == "" {
			return apperr.Validation("cliente requerido")
		}

		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		factura, err := createFactura(database.DB, userID, role, body.RouteID, body.Cantidad, body.Cliente)
		if err != nil {
			if _, ok := apperr.As(err); ok {
				return err
			}
			if database.IsTransient(err) {
				return apperr.Transient("Base de datos no disponible, intenta de nuevo")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar la factura")
		}

		return c.Status(fiber.StatusCreated).JSON(FacturaResponse{
			ID:       factura.ID,
			RouteID:  factura.RouteID,
			Cantidad: factura.Cantidad,
			Cliente:  factura.Cliente,
		})
	}
}

// -------------------------------------------------
// DELETE /api/routes/facturas/:id — la cantidad vuelve a estar disponible
// -------------------------------------------------
func DeleteFacturaHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return apperr.Validation("id requerido")
		}

		var factura models.RouteFactura
		if err := database.DB.First(&factura, id).Error; err != nil {
			return apperr.NotFound("Factura no encontrada")
		}

		var route models.Route
		if err := database.DB.First(&route, factura.RouteID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo consultar la ruta")
		}
		if route.UserID != userID && role != models.RoleAdmin {
			return apperr.Forbidden("La factura no pertenece al usuario")
		}

		if err := database.DB.Delete(&factura).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la factura")
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}
