package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de los dos productos que mueven el inventario de garrafones. La
// recarga intercambia un vacío del cliente por un lleno; el nuevo sale de la
// flotilla y no regresa.
const (
	ProductRecarga = "Recarga"
	ProductNuevo   = "Nuevo"
)

type Product struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:100;uniqueIndex;not null"`
	BasePrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DisplayOrder int             `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
