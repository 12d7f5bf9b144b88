package models

import "time"

type ExtraLoadStatus string

const (
	ExtraLoadPending  ExtraLoadStatus = "pending"
	ExtraLoadAccepted ExtraLoadStatus = "accepted"
)

// RecargaExtra es una carga adicional que un admin empuja a una ruta activa.
// La cantidad se suma a garrafones_loaded al momento de crearla; la
// aceptación del chofer es solo un acuse para su pantalla.
type RecargaExtra struct {
	ID         uint `gorm:"primaryKey"`
	RouteID    uint `gorm:"index;not null"`
	Route      Route
	Cantidad   int             `gorm:"not null"`
	Status     ExtraLoadStatus `gorm:"size:20;not null;default:pending"`
	CreatedAt  time.Time
	AcceptedAt *time.Time
}
