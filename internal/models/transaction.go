package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction es una venta. El total siempre se recalcula desde los items y
// se persiste junto con ellos en la misma transacción de base de datos.
type Transaction struct {
	ID              uint    `gorm:"primaryKey"`
	UserID          uint    `gorm:"index;not null"`
	User            User
	RouteID         *uint   `gorm:"index"`
	CustomerName    *string `gorm:"size:150"`
	CompanyID       *uint
	Company         *Company
	PaymentMethodID uint `gorm:"not null"`
	PaymentMethod   PaymentMethod
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Notes           *string         `gorm:"size:500"`
	TransactionDate time.Time       `gorm:"index;autoCreateTime"`

	Items []TransactionItem
}

type TransactionItem struct {
	ID            uint `gorm:"primaryKey"`
	TransactionID uint `gorm:"index;not null"`
	ProductID     uint `gorm:"not null"`
	Product       Product
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"` // quantity × unit_price
}
