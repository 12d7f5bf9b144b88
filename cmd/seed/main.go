package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"watify-backend/internal/config"
	"watify-backend/internal/database"
	"watify-backend/internal/fechas"
	"watify-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

// Alta de usuarios iniciales. Correr una vez después de levantar la base:
//
//	go run ./cmd/seed david:secreta123:Admin ch1:clave1:Chofer mostrador:clave2:Sucursal
//
// Repetir un nombre actualiza su contraseña y rol, nunca duplica.
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Uso: seed nombre:contraseña:rol [nombre:contraseña:rol ...]")
		fmt.Fprintf(os.Stderr, "Roles válidos: %s, %s, %s, %s\n",
			models.RoleAdmin, models.RoleVisor, models.RoleChofer, models.RoleSucursal)
		os.Exit(2)
	}

	cfg := config.Load()
	fechas.Init(cfg.BusinessTZ)
	database.Init(cfg)

	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 3)
		if len(parts) != 3 {
			log.Fatalf("Argumento inválido %q, se espera nombre:contraseña:rol", arg)
		}
		name, password, role := parts[0], parts[1], models.UserRole(parts[2])

		switch role {
		case models.RoleAdmin, models.RoleVisor, models.RoleChofer, models.RoleSucursal:
		default:
			log.Fatalf("Rol desconocido %q para el usuario %q", role, name)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("No se pudo generar el hash para %q: %v", name, err)
		}

		user := models.User{Name: name, PasswordHash: string(hash), Role: role}
		err = database.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			log.Fatalf("No se pudo insertar el usuario %q: %v", name, err)
		}
		log.Printf("Usuario %q (%s) listo.", name, role)
	}
}
