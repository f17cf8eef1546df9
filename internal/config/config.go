package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const defaultJWTSecret = "change-me-tobaku-pos-secret"

// Config is read once at boot from the environment (.env is loaded by main).
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	StoreDriver string // postgres / memory
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	Location *time.Location // calendar used by reports

	SeedAdminPassword string
	SeedStaffPassword string
	SeedDemoData      bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       databaseURL(),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		SeedStaffPassword: getEnv("SEED_STAFF_PASSWORD", "staff123"),
	}

	var err error
	if cfg.ReadTimeout, err = seconds("READ_TIMEOUT_SECONDS", 15); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = seconds("WRITE_TIMEOUT_SECONDS", 15); err != nil {
		return nil, err
	}

	ttlHours, err := intEnv("JWT_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if ttlHours <= 0 {
		return nil, fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	cfg.JWTTTL = time.Duration(ttlHours) * time.Hour

	if cfg.SeedDemoData, err = boolEnv("SEED_DEMO_DATA", false); err != nil {
		return nil, err
	}

	tz := getEnv("TIMEZONE", "Asia/Jakarta")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		// Fallback to UTC+7 if timezone data not available
		log.Printf("[WARN] timezone %q not available, using WIB (UTC+7)", tz)
		cfg.Location = time.FixedZone("WIB", 7*60*60)
	}

	cfg.StoreDriver = os.Getenv("STORE_DRIVER")
	if cfg.StoreDriver == "" {
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = DriverPostgres
		} else {
			cfg.StoreDriver = DriverMemory
		}
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL or DB_HOST")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("[WARN] JWT_SECRET not set, using the development default")
	}

	return cfg, nil
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		getEnv("DB_PORT", "5432"),
		getEnv("TIMEZONE", "Asia/Jakarta"),
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func seconds(key string, def int) (time.Duration, error) {
	n, err := intEnv(key, def)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return time.Duration(n) * time.Second, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be boolean: %w", key, err)
	}
	return b, nil
}
