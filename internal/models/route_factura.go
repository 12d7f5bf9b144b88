package models

import "time"

// RouteFactura declara N garrafones de efectivo de la ruta como facturados a
// un cliente con nombre: ese dinero no viene en el sobre del chofer. Solo
// alta y baja, sin edición; al borrarla la cantidad vuelve a estar
// disponible para facturar.
type RouteFactura struct {
	ID        uint   `gorm:"primaryKey"`
	RouteID   uint   `gorm:"index;not null"`
	Cantidad  int    `gorm:"not null"`
	Cliente   string `gorm:"size:150;not null"`
	CreatedAt time.Time
}
