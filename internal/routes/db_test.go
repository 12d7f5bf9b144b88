package routes

import (
	"os"
	"sync"
	"testing"

	"watify-backend/internal/apperr"
	"watify-backend/internal/database"
	"watify-backend/internal/garrafones"
	"watify-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Estas pruebas necesitan un Postgres desechable; sin TEST_DATABASE_DSN se
// saltan. El esquema se recrea en cada corrida.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("define TEST_DATABASE_DSN para correr las pruebas contra Postgres")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(
		&models.RouteFactura{}, &models.TransactionItem{}, &models.Transaction{},
		&models.RouteSummarySnapshot{}, &models.Route{}, &models.PaymentMethod{},
		&models.Product{}, &models.Company{}, &models.User{},
	))
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Route{}, &models.RouteSummarySnapshot{},
		&models.PaymentMethod{}, &models.Product{}, &models.Company{},
		&models.Transaction{}, &models.TransactionItem{}, &models.RouteFactura{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS "+database.IdxOneActiveRoute+" ON routes(user_id) WHERE status = 'active'",
	).Error)

	return db
}

func crearChofer(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, PasswordHash: "x", Role: models.RoleChofer}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestOpenRouteCierraLaAnterior(t *testing.T) {
	db := testDB(t)
	chofer := crearChofer(t, db, "lalo")

	primera, err := openRoute(db, chofer.ID, 40)
	require.NoError(t, err)
	segunda, err := openRoute(db, chofer.ID, 35)
	require.NoError(t, err)

	var cerrada models.Route
	require.NoError(t, db.First(&cerrada, primera.ID).Error)
	assert.Equal(t, models.RouteFinished, cerrada.Status)
	require.NotNil(t, cerrada.FinishedAt)
	assert.False(t, cerrada.FinishedAt.Before(cerrada.StartedAt))

	var activas int64
	require.NoError(t, db.Model(&models.Route{}).
		Where("user_id = ? AND status = ?", chofer.ID, models.RouteActive).
		Count(&activas).Error)
	assert.Equal(t, int64(1), activas)

	var actual models.Route
	require.NoError(t, db.Where("user_id = ? AND status = ?", chofer.ID, models.RouteActive).First(&actual).Error)
	assert.Equal(t, segunda.ID, actual.ID)
}

func TestIndiceDeRutaActivaUnica(t *testing.T) {
	db := testDB(t)
	chofer := crearChofer(t, db, "memo")

	_, err := openRoute(db, chofer.ID, 40)
	require.NoError(t, err)

	// Insertar una segunda activa directo, como lo haría un request
	// duplicado que se coló: el índice parcial la rechaza y el error se
	// reconoce como conflicto, no como falla genérica.
	dup := models.Route{UserID: chofer.ID, GarrafonesLoaded: 20, Status: models.RouteActive}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, database.IsActiveRouteConflict(err))
	assert.False(t, database.IsTransient(err))
}

func TestCloseRouteNoRefinaliza(t *testing.T) {
	db := testDB(t)
	chofer := crearChofer(t, db, "china")

	route, err := openRoute(db, chofer.ID, 40)
	require.NoError(t, err)

	original := &RouteSummary{
		RouteID:       route.ID,
		ByMethod:      []MethodTotal{},
		Companies:     []CompanyTotal{},
		TotalNegocios: decimal.Zero,
		Garrafones:    garrafones.Reconciliar(40, 10, 0, 0, 0),
	}
	require.NoError(t, closeRoute(db, &route, original))
	assert.Equal(t, models.RouteFinished, route.Status)

	var snap models.RouteSummarySnapshot
	require.NoError(t, db.Where("route_id = ?", route.ID).First(&snap).Error)
	congelado := snap.Payload

	// Un segundo finish no debe repetirse ni pisar el snapshot, aunque las
	// ventas hayan cambiado desde entonces
	editado := &RouteSummary{
		RouteID:       route.ID,
		ByMethod:      []MethodTotal{},
		Companies:     []CompanyTotal{},
		TotalNegocios: decimal.Zero,
		Garrafones:    garrafones.Reconciliar(40, 25, 0, 0, 0),
	}
	err = closeRoute(db, &route, editado)
	assert.ErrorIs(t, err, errRutaYaFinalizada)

	var despues models.RouteSummarySnapshot
	require.NoError(t, db.Where("route_id = ?", route.ID).First(&despues).Error)
	assert.Equal(t, congelado, despues.Payload)

	var total int64
	require.NoError(t, db.Model(&models.RouteSummarySnapshot{}).
		Where("route_id = ?", route.ID).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

// sembrarVentaEfectivo deja la ruta con garrafones vendidos en efectivo,
// que son el cupo facturable.
func sembrarVentaEfectivo(t *testing.T, db *gorm.DB, chofer models.User, route models.Route, cantidad int) {
	t.Helper()

	efectivo := models.PaymentMethod{Name: models.MethodEfectivo, IsCashEquivalent: true}
	require.NoError(t, db.Where(models.PaymentMethod{Name: models.MethodEfectivo}).
		FirstOrCreate(&efectivo).Error)
	recarga := models.Product{Name: models.ProductRecarga, BasePrice: decimal.NewFromInt(45)}
	require.NoError(t, db.Where(models.Product{Name: models.ProductRecarga}).
		FirstOrCreate(&recarga).Error)

	precio := decimal.NewFromInt(45)
	venta := models.Transaction{
		UserID:          chofer.ID,
		RouteID:         &route.ID,
		PaymentMethodID: efectivo.ID,
		Total:           precio.Mul(decimal.NewFromInt(int64(cantidad))),
		Items: []models.TransactionItem{{
			ProductID: recarga.ID,
			Quantity:  cantidad,
			UnitPrice: precio,
			Subtotal:  precio.Mul(decimal.NewFromInt(int64(cantidad))),
		}},
	}
	require.NoError(t, db.Create(&venta).Error)
}

func TestCreateFacturaRespetaElCupo(t *testing.T) {
	db := testDB(t)
	chofer := crearChofer(t, db, "beto")
	route, err := openRoute(db, chofer.ID, 40)
	require.NoError(t, err)
	sembrarVentaEfectivo(t, db, chofer, route, 10)

	_, err = createFactura(db, chofer.ID, models.RoleChofer, route.ID, 6, "Abarrotes Lupita")
	require.NoError(t, err)

	// 6 + 5 > 10: rechazada
	_, err = createFactura(db, chofer.ID, models.RoleChofer, route.ID, 5, "Abarrotes Lupita")
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeConflict, appErr.Code)

	// 6 + 4 = 10: justo en el tope
	_, err = createFactura(db, chofer.ID, models.RoleChofer, route.ID, 4, "Fonda Carmelita")
	require.NoError(t, err)
}

func TestCreateFacturaConcurrenteNoRebasaElCupo(t *testing.T) {
	db := testDB(t)
	chofer := crearChofer(t, db, "polo")
	route, err := openRoute(db, chofer.ID, 40)
	require.NoError(t, err)
	sembrarVentaEfectivo(t, db, chofer, route, 10)

	// Dos peticiones simultáneas de 6 sobre un cupo de 10: el candado
	// sobre la ruta las serializa y solo una entra
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = createFactura(db, chofer.ID, models.RoleChofer, route.ID, 6, "Abarrotes Lupita")
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, err := range errs {
		if err == nil {
			exitos++
			continue
		}
		appErr, ok := apperr.As(err)
		require.True(t, ok, "error inesperado: %v", err)
		assert.Equal(t, apperr.CodeConflict, appErr.Code)
	}
	assert.Equal(t, 1, exitos)

	var facturado int
	require.NoError(t, db.Model(&models.RouteFactura{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("route_id = ?", route.ID).
		Scan(&facturado).Error)
	assert.LessOrEqual(t, facturado, 10)
}
