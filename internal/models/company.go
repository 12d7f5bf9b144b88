package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company es un negocio a crédito. Puede forzar un método de pago y tener
// precios especiales por producto.
type Company struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:150;not null"`
	IsActive        bool   `gorm:"not null;default:true"`
	PaymentMethodID *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CompanyPrice struct {
	ID        uint            `gorm:"primaryKey"`
	CompanyID uint            `gorm:"uniqueIndex:idx_company_product;not null"`
	ProductID uint            `gorm:"uniqueIndex:idx_company_product;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyAssignment define la zona de un chofer: qué empresas ve primero y
// en qué orden.
type CompanyAssignment struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index;not null"`
	CompanyID uint `gorm:"not null"`
	Priority  int  `gorm:"not null;default:0"`
	CreatedAt time.Time
}
