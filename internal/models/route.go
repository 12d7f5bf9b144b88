package models

import "time"

type RouteStatus string

const (
	RouteActive   RouteStatus = "active"
	RouteFinished RouteStatus = "finished"
)

// Route es un turno de reparto de un chofer. Un usuario tiene a lo más una
// ruta activa; el índice parcial en internal/database refuerza la regla a
// nivel de base de datos.
type Route struct {
	ID               uint `gorm:"primaryKey"`
	UserID           uint `gorm:"index;not null"`
	User             User
	GarrafonesLoaded int         `gorm:"not null"` // incluye cargas extra ya aplicadas
	Status           RouteStatus `gorm:"size:20;not null;default:active"`
	StartedAt        time.Time   `gorm:"autoCreateTime"`
	FinishedAt       *time.Time
}
