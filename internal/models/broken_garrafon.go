package models

import "time"

type BrokenCondition string

const (
	ConditionBuenEstado BrokenCondition = "buen_estado"
	ConditionUsoLeve    BrokenCondition = "uso_leve"
	ConditionParchado   BrokenCondition = "parchado"
	ConditionTostado    BrokenCondition = "tostado"
)

func (c BrokenCondition) Valid() bool {
	switch c {
	case ConditionBuenEstado, ConditionUsoLeve, ConditionParchado, ConditionTostado:
		return true
	}
	return false
}

// BrokenGarrafon registra un garrafón quebrado en ruta. Bitácora de solo
// inserción: nunca se edita ni se borra.
type BrokenGarrafon struct {
	ID            uint            `gorm:"primaryKey"`
	RouteID       uint            `gorm:"index;not null"`
	UserID        uint            `gorm:"not null"`
	WasFull       bool            `gorm:"not null"` // lleno o vacío al quebrarse
	ConditionType BrokenCondition `gorm:"size:20;not null"`
	CreatedAt     time.Time
}
