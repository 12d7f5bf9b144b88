package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncidentType string

const (
	// IncidentDeduccion resta un monto positivo del efectivo del día.
	IncidentDeduccion IncidentType = "deduccion"
	// IncidentAjuste corrige el efectivo del día: amount = efectivo_anterior
	// − efectivo_nuevo, por lo que puede ser negativo cuando la corrección
	// sube el total.
	IncidentAjuste IncidentType = "ajuste"
)

// WeeklyIncident es un ajuste administrativo contra el efectivo de un chofer
// en un día. Bitácora de solo inserción; varios incidentes del mismo día se
// suman todos.
type WeeklyIncident struct {
	ID           uint             `gorm:"primaryKey"`
	Date         time.Time        `gorm:"type:date;index;not null"`
	ChoferID     uint             `gorm:"index;not null"`
	Description  string           `gorm:"size:255;not null"`
	Amount       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Type         IncidentType     `gorm:"size:20;not null;default:deduccion"`
	PrevEfectivo *decimal.Decimal `gorm:"type:numeric(12,2)"` // solo para ajuste
	CreatedBy    uint             `gorm:"not null"`
	CreatedAt    time.Time
}

// WeeklyConfirmation registra que un admin verificó y recibió físicamente el
// sobre de un chofer en un día. Única por (chofer, fecha): re-confirmar
// actualiza quién y cuándo, nunca duplica.
type WeeklyConfirmation struct {
	ID          uint      `gorm:"primaryKey"`
	Date        time.Time `gorm:"type:date;uniqueIndex:idx_confirmation_day;not null"`
	ChoferID    uint      `gorm:"uniqueIndex:idx_confirmation_day;not null"`
	ConfirmedBy uint      `gorm:"not null"`
	ConfirmedAt time.Time `gorm:"not null"`
}
