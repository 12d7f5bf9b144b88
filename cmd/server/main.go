package main

import (
	"errors"
	"strings"

	"watify-backend/internal/apperr"
	"watify-backend/internal/audit"
	"watify-backend/internal/auth"
	"watify-backend/internal/cashflow"
	"watify-backend/internal/catalog"
	"watify-backend/internal/config"
	"watify-backend/internal/dashboard"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/logger"
	"watify-backend/internal/models"
	"watify-backend/internal/routes"
	"watify-backend/internal/sales"
	"watify-backend/internal/sucursal"
	"watify-backend/internal/weekly"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogPath)
	fechas.Init(cfg.BusinessTZ)

	// Los montos viajan como números JSON, no como strings
	decimal.MarshalJSONWithoutQuotes = true

	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.Status(appErr.Status).JSON(fiber.Map{
					"error": appErr.Message,
					"code":  appErr.Code,
				})
			}
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"error": fiberErr.Message,
				})
			}
			logrus.WithError(err).Error("Error no manejado")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Público
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protegido
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/change-password", auth.ChangePasswordHandler())

	// Rutas del chofer
	protected.Get("/routes", routes.ActiveRouteHandler())
	protected.Post("/routes", routes.StartRouteHandler())
	protected.Post("/routes/finish", routes.FinishRouteHandler())
	protected.Get("/routes/summary", routes.SummaryHandler(cfg))

	// Recargas extra en ruta
	protected.Get("/routes/extra-load", routes.PendingExtraLoadHandler())
	protected.Post("/routes/extra-load", auth.RequireRole(models.RoleAdmin), routes.GrantExtraLoadHandler())
	protected.Patch("/routes/extra-load", routes.AcceptExtraLoadHandler())

	// Facturas de ruta
	protected.Post("/routes/facturas", routes.CreateFacturaHandler())
	protected.Delete("/routes/facturas/:id", routes.DeleteFacturaHandler())

	// Garrafones quebrados
	protected.Post("/broken", garrafones.RegisterBrokenHandler())

	// Sobre del día
	protected.Get("/cashflow/sobre", cashflow.SobreHandler())

	// Punto de venta
	protected.Get("/transactions", sales.ListTransactionsHandler())
	protected.Post("/transactions", sales.CreateTransactionHandler())
	protected.Put("/transactions/:id", sales.UpdateTransactionHandler())
	protected.Delete("/transactions/:id", sales.DeleteTransactionHandler())

	// Catálogo
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/companies", catalog.ListCompaniesHandler())

	// Vistas de supervisión
	viewer := protected.Group("", auth.RequireRole(models.RoleAdmin, models.RoleVisor))
	viewer.Get("/routes/active-all", routes.ActiveAllHandler())
	viewer.Get("/routes/live", routes.LiveHandler())
	viewer.Get("/dashboard", dashboard.DayHandler())
	viewer.Get("/dashboard/weekly", weekly.WeeklyHandler())

	// Operaciones exclusivas de admin
	adminOnly := protected.Group("", auth.RequireRole(models.RoleAdmin))
	adminOnly.Post("/companies", catalog.CreateCompanyHandler())
	adminOnly.Put("/companies/prices", catalog.UpsertCompanyPriceHandler())
	adminOnly.Post("/dashboard/confirm", weekly.ConfirmDayHandler())
	adminOnly.Post("/dashboard/incidents", weekly.CreateIncidentHandler())
	adminOnly.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Punto de venta de la sucursal: su propia terminal o el admin
	store := protected.Group("", auth.RequireRole(models.RoleAdmin, models.RoleSucursal))
	store.Get("/sucursal/route", sucursal.RouteHandler())
	store.Post("/sucursal/pos", sucursal.POSHandler())
	store.Get("/sucursal/summary", sucursal.SummaryHandler())

	logrus.WithField("port", cfg.HTTPPort).Info("Servidor escuchando")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
