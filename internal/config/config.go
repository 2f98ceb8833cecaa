package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       []string
	HTTPAddr          string
	StoreDriver       string
	DataDir           string
	DBDSN             string
	MongoURI          string
	MongoDatabase     string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	SeedFile          string
	SeedOwnerPassword string
	LogLevel          slog.Level
	MaxUploadBytes    int64
	Location          *time.Location
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}

	// Production origins, comma separated (default: empty)
	for _, o := range strings.Split(getEnv("PROD_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.ProdOrigins = append(cfg.ProdOrigins, o)
		}
	}

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.DataDir = getEnv("DATA_DIR", "./data")
	cfg.SeedFile = getEnv("SEED_FILE", "")
	// Initial password of the seed venue owner accounts. Unset skips provisioning.
	cfg.SeedOwnerPassword = os.Getenv("SEED_OWNER_PASSWORD")

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", DriverMemory))
	switch cfg.StoreDriver {
	case DriverMemory, DriverFile:
	case DriverPostgres:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
		cfg.MongoDatabase = getEnv("MONGO_DATABASE", "venue_booking")
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttl, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	maxUpload, err := getEnvAsInt("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Event dates and times are wall-clock values in this zone.
	cfg.Location, err = time.LoadLocation(getEnv("TIME_ZONE", "Asia/Manila"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set and non-empty,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}
