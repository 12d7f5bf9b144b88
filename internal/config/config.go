package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// SUMMARY_READ_MODE controla cómo se sirve el resumen de una ruta terminada:
// "frozen" lee el snapshot persistido al finalizar, "live" recalcula desde
// las transacciones actuales (comportamiento histórico del sistema).
const (
	SummaryModeFrozen = "frozen"
	SummaryModeLive   = "live"
)

type Config struct {
	HTTPPort        string
	DatabaseDSN     string
	JWTSecret       string
	CORSOrigins     string
	BusinessTZ      string // zona horaria fija del negocio; "qué día es hoy" se resuelve aquí
	SummaryReadMode string
	LogPath         string
}

func Load() *Config {
	// .env es opcional: en producción las variables vienen del entorno
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No se encontró archivo .env, usando variables de entorno")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=watify port=5432 sslmode=disable"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		BusinessTZ:      getEnv("BUSINESS_TZ", "America/Mexico_City"),
		SummaryReadMode: getEnv("SUMMARY_READ_MODE", SummaryModeFrozen),
		LogPath:         getEnv("LOG_PATH", "./logs/watify.log"),
	}

	// Controles de seguridad para producción
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET no está definido. Es obligatorio.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET debe tener al menos 32 caracteres.")
	}
	if cfg.SummaryReadMode != SummaryModeFrozen && cfg.SummaryReadMode != SummaryModeLive {
		log.Fatalf("[FATAL] SUMMARY_READ_MODE inválido: %q (usa 'frozen' o 'live')", cfg.SummaryReadMode)
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=watify port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN usa el valor por defecto, define tu propia conexión Postgres para producción.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
