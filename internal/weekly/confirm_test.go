package weekly

import (
	"os"
	"testing"

	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Necesita un Postgres desechable; sin TEST_DATABASE_DSN se salta.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("define TEST_DATABASE_DSN para correr las pruebas contra Postgres")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&models.WeeklyConfirmation{}))
	require.NoError(t, db.AutoMigrate(&models.WeeklyConfirmation{}))

	return db
}

func TestUpsertConfirmationIdempotente(t *testing.T) {
	db := testDB(t)

	date, err := fechas.ParseDay("2026-08-24")
	require.NoError(t, err)
	const choferID, admin1, admin2 = 7, 1, 2

	primera, err := upsertConfirmation(db, date, choferID, admin1)
	require.NoError(t, err)
	assert.Equal(t, uint(admin1), primera.ConfirmedBy)

	// Confirmar de nuevo el mismo chofer-día no duplica: queda una sola
	// fila y gana el último confirmador
	_, err = upsertConfirmation(db, date, choferID, admin2)
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&models.WeeklyConfirmation{}).
		Where("chofer_id = ?", choferID).Count(&total).Error)
	assert.Equal(t, int64(1), total)

	var guardada models.WeeklyConfirmation
	require.NoError(t, db.Where("chofer_id = ?", choferID).First(&guardada).Error)
	assert.Equal(t, uint(admin2), guardada.ConfirmedBy)
	assert.Equal(t, primera.ID, guardada.ID)
}

func TestUpsertConfirmationPorDiaYChofer(t *testing.T) {
	db := testDB(t)

	lunes, err := fechas.ParseDay("2026-08-24")
	require.NoError(t, err)
	martes, err := fechas.ParseDay("2026-08-25")
	require.NoError(t, err)

	// Distinto día o distinto chofer sí generan filas nuevas
	_, err = upsertConfirmation(db, lunes, 7, 1)
	require.NoError(t, err)
	_, err = upsertConfirmation(db, martes, 7, 1)
	require.NoError(t, err)
	_, err = upsertConfirmation(db, lunes, 8, 1)
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&models.WeeklyConfirmation{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}
