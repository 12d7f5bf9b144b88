package routes

import (
	"time"

	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LiveSaleDetail struct {
	CustomerName *string `json:"customer_name"`
	Garrafones   int     `json:"garrafones"`
}

type LiveCompany struct {
	Company    string `json:"company"`
	Garrafones int    `json:"garrafones"`
}

type LiveRoute struct {
	RouteID          uint               `json:"route_id"`
	ChoferID         uint               `json:"chofer_id"`
	ChoferName       string             `json:"chofer_name"`
	Status           models.RouteStatus `json:"status"`
	StartedAt        string             `json:"started_at"`
	FinishedAt       *string            `json:"finished_at"`
	TransactionCount int                `json:"transaction_count"`
	Garrafones       garrafones.Cuenta  `json:"garrafones"`
	Companies        []LiveCompany      `json:"companies"`
	LinkSales        []LiveSaleDetail   `json:"link_sales"`
	TarjetaSales     []LiveSaleDetail   `json:"tarjeta_sales"`
}

// -------------------------------------------------
// GET /api/routes/live — vista ligera para el tablero en vivo; el frontend
// la consulta por sondeo cada pocos segundos
// -------------------------------------------------
func LiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		todayStart, todayEnd, err := fechas.DayBounds(fechas.Today())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el día actual")
		}

		type routeRow struct {
			models.Route
			ChoferName string
		}
		var rows []routeRow
		err = database.DB.Model(&models.Route{}).
			Select("routes.*, users.name AS chofer_name").
			Joins("JOIN users ON users.id = routes.user_id").
			Where("users.role = ?", models.RoleChofer).
			Where("routes.status = ? OR (routes.status = ? AND routes.started_at >= ? AND routes.started_at < ?)",
				models.RouteActive, models.RouteFinished, todayStart, todayEnd).
			Order("CASE routes.status WHEN 'active' THEN 0 ELSE 1 END, users.name").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las rutas")
		}

		result := make([]LiveRoute, 0, len(rows))
		for _, row := range rows {
			cuenta, err := garrafones.ForRoute(row.Route.ID, row.Route.GarrafonesLoaded)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudo calcular el conteo de garrafones")
			}

			var companies []LiveCompany
			err = database.DB.Model(&models.Transaction{}).
				Select("companies.name AS company, COALESCE(SUM(tq.qty), 0) AS garrafones").
				Joins("JOIN companies ON companies.id = transactions.company_id").
				Joins("LEFT JOIN (SELECT transaction_id, SUM(quantity) AS qty FROM transaction_items GROUP BY transaction_id) AS tq "+
					"ON tq.transaction_id = transactions.id").
				Where("transactions.route_id = ? AND transactions.company_id IS NOT NULL", row.Route.ID).
				Group("companies.id").
				Order("companies.name").
				Scan(&companies).Error
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las empresas")
			}
			if companies == nil {
				companies = []LiveCompany{}
			}

			linkSales, err := salesByMethodName(row.Route.ID, models.MethodLink)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las ventas Link")
			}
			tarjetaSales, err := salesByMethodName(row.Route.ID, models.MethodTarjeta)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron consultar las ventas con tarjeta")
			}

			var txCount int64
			if err := database.DB.Model(&models.Transaction{}).
				Where("route_id = ?", row.Route.ID).
				Count(&txCount).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron contar las ventas")
			}

			var finishedAt *string
			if row.Route.FinishedAt != nil {
				s := row.Route.FinishedAt.In(fechas.Location()).Format(time.RFC3339)
				finishedAt = &s
			}

			result = append(result, LiveRoute{
				RouteID:          row.Route.ID,
				ChoferID:         row.Route.UserID,
				ChoferName:       row.ChoferName,
				Status:           row.Route.Status,
				StartedAt:        row.Route.StartedAt.In(fechas.Location()).Format(time.RFC3339),
				FinishedAt:       finishedAt,
				TransactionCount: int(txCount),
				Garrafones:       cuenta,
				Companies:        companies,
				LinkSales:        linkSales,
				TarjetaSales:     tarjetaSales,
			})
		}

		return c.JSON(result)
	}
}

func salesByMethodName(routeID uint, methodName string) ([]LiveSaleDetail, error) {
	var sales []LiveSaleDetail
	err := database.DB.Model(&models.Transaction{}).
		Select("transactions.customer_name, COALESCE(SUM(transaction_items.quantity), 0) AS garrafones").
		Joins("JOIN payment_methods ON payment_methods.id = transactions.payment_method_id").
		Joins("LEFT JOIN transaction_items ON transaction_items.transaction_id = transactions.id").
		Where("transactions.route_id = ? AND payment_methods.name = ?", routeID, methodName).
		Group("transactions.id").
		Order("MIN(transactions.transaction_date)").
		Scan(&sales).Error
	if sales == nil {
		sales = []LiveSaleDetail{}
	}
	return sales, err
}
