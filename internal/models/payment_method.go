package models

import "time"

// Nombres sembrados por internal/database. El resto del código no compara
// contra estos strings: consulta las banderas de capacidad del método.
const (
	MethodEfectivo = "Efectivo"
	MethodNegocios = "Negocios"
	MethodLink     = "Link"
	MethodTarjeta  = "Tarjeta"
)

// PaymentMethod es una lista abierta: el negocio ha agregado métodos con el
// tiempo, así que qué cuenta como "efectivo en mano" y qué suma al total
// semanal vive en banderas por método, no en comparaciones de nombre.
type PaymentMethod struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:50;uniqueIndex;not null"`
	Color            string `gorm:"size:20"`
	Icon             string `gorm:"size:50"`
	IsActive         bool   `gorm:"not null;default:true"`
	IsCashEquivalent bool   `gorm:"not null;default:false"` // cuenta para el sobre del día
	InWeeklyTotal    bool   `gorm:"not null;default:true"`  // suma al total del tablero semanal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
