package fechas

import (
	"log"
	"regexp"
	"time"
)

// El negocio opera en una sola zona horaria fija. Todo cálculo de "hoy",
// rangos de día y límites de semana pasa por este paquete: el sistema
// anterior recalculaba la fecha por endpoint contra el reloj UTC del
// servidor y las ventas cercanas a medianoche desaparecían de "hoy".

const DayLayout = "2006-01-02"

var (
	loc   = time.UTC
	dayRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Init carga la zona horaria del negocio. Se llama una sola vez al arrancar.
func Init(tz string) {
	l, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("[FATAL] Zona horaria inválida %q: %v", tz, err)
	}
	loc = l
}

func Location() *time.Location {
	return loc
}

func Now() time.Time {
	return time.Now().In(loc)
}

// Today regresa la fecha de hoy en formato YYYY-MM-DD según el negocio.
func Today() string {
	return Now().Format(DayLayout)
}

// ValidDay reporta si s tiene forma YYYY-MM-DD y es una fecha real.
func ValidDay(s string) bool {
	if !dayRe.MatchString(s) {
		return false
	}
	_, err := time.ParseInLocation(DayLayout, s, loc)
	return err == nil
}

// ParseDay interpreta un YYYY-MM-DD como las 00:00 de ese día en la zona
// del negocio.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, loc)
}

// DayBounds regresa [inicio, fin) del día indicado. El fin es exclusivo
// para que las comparaciones con timestamps no pierdan el último segundo.
func DayBounds(day string) (time.Time, time.Time, error) {
	start, err := ParseDay(day)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// WeekBounds regresa el lunes 00:00 y el domingo de la semana que contiene
// a t, en la zona del negocio.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	// time.Weekday: domingo=0 ... sábado=6; la semana del negocio abre en lunes
	offset := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}
