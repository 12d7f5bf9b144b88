package database

import (
	"errors"
	"net"
	"time"

	"watify-backend/internal/config"
	"watify-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// Reintento acotado solo al arrancar: si Postgres tarda en levantar
	// (docker compose) no queremos morir al primer intento.
	for attempt := 1; attempt <= 5; attempt++ {
		DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err == nil {
			break
		}
		logrus.Warnf("Intento %d: no se pudo conectar a la base de datos: %v", attempt, err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		logrus.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.PaymentMethod{},
		&models.Product{},
		&models.Company{},
		&models.CompanyPrice{},
		&models.CompanyAssignment{},
		&models.Route{},
		&models.RecargaExtra{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.BrokenGarrafon{},
		&models.RouteFactura{},
		&models.RouteSummarySnapshot{},
		&models.WeeklyIncident{},
		&models.WeeklyConfirmation{},
		&models.AuditLog{},
	)
	if err != nil {
		logrus.Fatalf("Error en AutoMigrate: %v", err)
	}

	// Índice parcial: un usuario solo puede tener una ruta activa. La
	// secuencia cerrar-luego-abrir corre en transacción, pero la base de
	// datos es la última línea contra requests duplicados concurrentes.
	if err := DB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS " + IdxOneActiveRoute + " ON routes(user_id) WHERE status = 'active'",
	).Error; err != nil {
		logrus.Fatalf("No se pudo crear el índice de ruta activa única: %v", err)
	}

	seedPaymentMethods()
	seedProducts()

	logrus.Info("Base de datos lista. Migración completada.")
}

// seedPaymentMethods inserta el catálogo inicial de métodos de pago con sus
// banderas de capacidad. Solo corre si la tabla está vacía; después el
// catálogo se administra por datos, no por código.
func seedPaymentMethods() {
	var count int64
	DB.Model(&models.PaymentMethod{}).Count(&count)
	if count > 0 {
		return
	}

	methods := []models.PaymentMethod{
		{Name: models.MethodEfectivo, Color: "#22c55e", Icon: "banknote", IsActive: true, IsCashEquivalent: true, InWeeklyTotal: true},
		{Name: models.MethodNegocios, Color: "#3b82f6", Icon: "building", IsActive: true, IsCashEquivalent: false, InWeeklyTotal: true},
		{Name: models.MethodLink, Color: "#a855f7", Icon: "link", IsActive: true, IsCashEquivalent: false, InWeeklyTotal: true},
		{Name: models.MethodTarjeta, Color: "#f97316", Icon: "credit-card", IsActive: true, IsCashEquivalent: false, InWeeklyTotal: true},
	}
	if err := DB.Create(&methods).Error; err != nil {
		logrus.Fatalf("No se pudieron sembrar los métodos de pago: %v", err)
	}
	logrus.Info("Métodos de pago sembrados")
}

func seedProducts() {
	var count int64
	DB.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return
	}

	products := []models.Product{
		{Name: models.ProductRecarga, BasePrice: decimal.NewFromInt(45), DisplayOrder: 1},
		{Name: models.ProductNuevo, BasePrice: decimal.NewFromInt(180), DisplayOrder: 2},
	}
	if err := DB.Create(&products).Error; err != nil {
		logrus.Fatalf("No se pudieron sembrar los productos: %v", err)
	}
	logrus.Info("Productos sembrados")
}

// IdxOneActiveRoute es el índice parcial que garantiza una sola ruta
// activa por chofer.
const IdxOneActiveRoute = "idx_routes_one_active_per_user"

// IsActiveRouteConflict reporta si el error es la violación de ese índice:
// el request duplicado que perdió la carrera al abrir ruta.
func IsActiveRouteConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == IdxOneActiveRoute
}

// IsTransient reporta si un error de la base de datos amerita reintento:
// conexión caída, serialización o deadlock. Nunca se reintenta en silencio
// dentro de una escritura no idempotente; el que llama decide.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return true
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" { // connection exception
			return true
		}
	}
	return false
}
