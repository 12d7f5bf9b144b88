package models

import "time"

// RouteSummarySnapshot congela el resumen de una ruta al momento de
// finalizarla. Si después se edita una venta, el histórico se sigue
// sirviendo desde aquí (modo "frozen"); el modo "live" recalcula y puede
// divergir, igual que el sistema anterior.
type RouteSummarySnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	RouteID   uint   `gorm:"uniqueIndex;not null"`
	Payload   string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}
