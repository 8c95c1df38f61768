package config

import (
	"os"
	"strings"
)

// Gateway drivers selectable via GATEWAY_DRIVER.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
)

// Config holds all runtime settings for the service
type Config struct {
	ListenAddr     string
	Environment    string
	AllowedOrigins []string

	GatewayDriver      string
	SupabaseURL        string
	SupabaseServiceKey string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RabbitMQURL     string
	JWTSecret       string
	PermissionsFile string
}

// Load reads configuration from environment variables
func Load() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000"}
	if allowedOriginsStr != "" {
		allowedOrigins = strings.Split(allowedOriginsStr, ",")
	}

	return &Config{
		ListenAddr:     getEnvOrDefault("LISTEN_ADDR", ":8080"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		AllowedOrigins: allowedOrigins,

		GatewayDriver:      getEnvOrDefault("GATEWAY_DRIVER", DriverPostgREST),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvOrDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		PermissionsFile: getEnvOrDefault("PERMISSIONS_FILE", "config/permissions.yml"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
