package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "Admin"
	RoleVisor    UserRole = "Visor"
	RoleChofer   UserRole = "Chofer"
	RoleSucursal UserRole = "Sucursal" // pseudo-chofer del mostrador de la sucursal
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;uniqueIndex;not null"` // usuarios cortos, no email
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
