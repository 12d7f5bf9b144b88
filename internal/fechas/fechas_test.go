package fechas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDay(t *testing.T) {
	valid := []string{"2025-01-01", "2024-02-29", "2025-12-31"}
	for _, s := range valid {
		assert.True(t, ValidDay(s), "debería aceptar %q", s)
	}

	invalid := []string{"", "2025-1-1", "01-01-2025", "2025-13-01", "2025-02-30", "hoy", "2025-01-01T00:00:00Z"}
	for _, s := range invalid {
		assert.False(t, ValidDay(s), "debería rechazar %q", s)
	}
}

func TestDayBounds(t *testing.T) {
	Init("America/Mexico_City")

	start, end, err := DayBounds("2025-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15", start.Format(DayLayout))
	assert.Equal(t, Location(), start.Location())
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	// El fin es exclusivo: las 23:59:59.999 del día siguen dentro
	lastMoment := end.Add(-time.Millisecond)
	assert.Equal(t, "2025-03-15", lastMoment.Format(DayLayout))

	_, _, err = DayBounds("no-es-fecha")
	assert.Error(t, err)
}

func TestWeekBounds(t *testing.T) {
	Init("America/Mexico_City")

	tests := []struct {
		name       string
		day        string
		wantMonday string
		wantSunday string
	}{
		{name: "Miercoles", day: "2025-03-12", wantMonday: "2025-03-10", wantSunday: "2025-03-16"},
		{name: "LunesEsSuPropioInicio", day: "2025-03-10", wantMonday: "2025-03-10", wantSunday: "2025-03-16"},
		{name: "DomingoCierraLaSemana", day: "2025-03-16", wantMonday: "2025-03-10", wantSunday: "2025-03-16"},
		{name: "CruceDeMes", day: "2025-04-02", wantMonday: "2025-03-31", wantSunday: "2025-04-06"},
		{name: "CruceDeAnio", day: "2025-01-01", wantMonday: "2024-12-30", wantSunday: "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchor, err := ParseDay(tt.day)
			require.NoError(t, err)

			monday, sunday := WeekBounds(anchor)
			assert.Equal(t, tt.wantMonday, monday.Format(DayLayout))
			assert.Equal(t, tt.wantSunday, sunday.Format(DayLayout))
			assert.Equal(t, time.Monday, monday.Weekday())
			assert.Equal(t, time.Sunday, sunday.Weekday())
		})
	}
}

func TestParseDayUsaZonaDelNegocio(t *testing.T) {
	Init("America/Mexico_City")

	day, err := ParseDay("2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, 0, day.Hour())
	assert.Equal(t, Location(), day.Location())

	// La medianoche del negocio no es la medianoche UTC (CDMX es UTC-6 fijo)
	assert.Equal(t, 6, day.UTC().Hour())
}
