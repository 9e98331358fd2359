package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Pricing PricingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int    // per-request deadline in seconds
	CORSOrigins    string // Comma-separated list of allowed origins, "*" for any
}

// AuthConfig holds token and credential-store configuration
type AuthConfig struct {
	SecretKey                string
	AccessTokenExpireMinutes int
	TestUserEmail            string
	TestUserPassword         string
}

// PricingConfig holds pricing-engine configuration
type PricingConfig struct {
	ModelPath             string
	UserHistoryPath       string
	DriverHistoryPath     string
	ScanPoints            int
	AllowStubFallback     bool
	FuelConsumptionPer100 float64
	FuelPricePerLiter     float64
}

// MinScanPoints is the hard lower bound on the number of scanned candidates.
const MinScanPoints = 20

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10),
			CORSOrigins:    getEnv("BACKEND_ALLOW_ORIGINS", "*"),
		},
		Auth: AuthConfig{
			SecretKey:                getEnv("SECRET_KEY", "super-secret-key"),
			AccessTokenExpireMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
			TestUserEmail:            getEnv("TEST_USER_EMAIL", "demo@example.com"),
			TestUserPassword:         getEnv("TEST_USER_PASSWORD", "demo"),
		},
		Pricing: PricingConfig{
			ModelPath:             getEnv("PRICING_MODEL_PATH", "model_enhanced.json"),
			UserHistoryPath:       getEnv("PRICING_USER_HISTORY_PATH", "user_history.csv"),
			DriverHistoryPath:     getEnv("PRICING_DRIVER_HISTORY_PATH", "driver_history.csv"),
			ScanPoints:            getEnvAsInt("PRICING_SCAN_POINTS", 200),
			AllowStubFallback:     getEnvAsBool("PRICING_ML_ALLOW_STUB_FALLBACK", false),
			FuelConsumptionPer100: getEnvAsFloat("PRICING_FUEL_CONSUMPTION_PER_100KM", 9.0),
			FuelPricePerLiter:     getEnvAsFloat("PRICING_FUEL_PRICE_PER_LITER", 55.0),
		},
	}

	if cfg.Pricing.ScanPoints < MinScanPoints {
		cfg.Pricing.ScanPoints = MinScanPoints
	}

	if cfg.Server.Environment == "production" && cfg.Auth.SecretKey == "super-secret-key" {
		return nil, fmt.Errorf("SECRET_KEY must be set in production")
	}

	return cfg, nil
}

// AllowedOrigins returns the parsed CORS origin list
func (c *ServerConfig) AllowedOrigins() []string {
	raw := strings.TrimSpace(c.CORSOrigins)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}

	var origins []string
	for _, chunk := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(chunk); item != "" {
			origins = append(origins, item)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
