package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime settings read from the environment.
// Callers load any .env file (godotenv) before calling Load.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	ServerPort     string
	JWTSecret      string
	AllowedOrigins []string

	KafkaBrokers []string
	KafkaTopic   string

	AllocationPolicy     string
	SkipExpired          bool
	LowStockThreshold    int64
	ExpiryWindowDays     int
	DefaultTenantID      string
	RequestBodyLimitByte int64
}

// Load reads configuration from environment variables with defaults.
// Malformed numeric or boolean values fall back to their default and are logged.
func Load() Config {
	cfg := Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           int32(intEnv("DB_MAX_CONNS", 10)),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AllowedOrigins:       splitList(os.Getenv("ALLOWED_ORIGINS")),
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "pharmacy.ledger"),
		AllocationPolicy:     strings.ToUpper(getEnv("ALLOCATION_POLICY", "FEFO_SINGLE")),
		SkipExpired:          boolEnv("ALLOCATOR_SKIP_EXPIRED", false),
		LowStockThreshold:    int64(intEnv("LOW_STOCK_THRESHOLD", 50)),
		ExpiryWindowDays:     intEnv("EXPIRY_WINDOW_DAYS", 30),
		DefaultTenantID:      os.Getenv("TENANT_ID"),
		RequestBodyLimitByte: int64(intEnv("REQUEST_BODY_LIMIT", 1<<20)),
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		log.Printf("invalid SERVER_PORT value %q, defaulting to 8080", cfg.ServerPort)
		cfg.ServerPort = "8080"
	}
	switch cfg.AllocationPolicy {
	case "FEFO_SINGLE", "FEFO_SPLIT":
	default:
		log.Printf("unknown ALLOCATION_POLICY %q, defaulting to FEFO_SINGLE", cfg.AllocationPolicy)
		cfg.AllocationPolicy = "FEFO_SINGLE"
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return v
}

func boolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %t", key, raw, fallback)
		return fallback
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
