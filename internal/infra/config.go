package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Record backends selectable through RECORD_BACKEND.
const (
	RecordBackendNone     = "none"
	RecordBackendMemory   = "memory"
	RecordBackendPostgres = "postgres"
	RecordBackendRedis    = "redis"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DefaultLocale string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	StoragePath   string
	GeoIPDBPath   string

	RecordBackend string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	OpenAIBaseURL    string
	OpenAIOrg        string

	SuggestionTimeout time.Duration
	GenerationTimeout time.Duration
	GenerationCost    int
	SmartExtrasCost   int
	StarterCredits    int

	GoogleClientID string
	GoogleIssuer   string

	PurchaseSigningKey string
	PurchaseBundleID   string
	SessionTTL         time.Duration
	MaxSessionsPerUser int

	AllowedOrigins   []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "flygen"),
		TokenTTL:      time.Hour * time.Duration(getEnvInt("TOKEN_TTL_HOURS", 720)),
		StoragePath:   getEnv("STORAGE_PATH", "./data"),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:        os.Getenv("OPENAI_ORG"),

		SuggestionTimeout: time.Second * time.Duration(getEnvInt("SUGGESTION_TIMEOUT_SECONDS", 15)),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 90)),
		GenerationCost:    getEnvInt("GENERATION_COST", 1),
		SmartExtrasCost:   getEnvInt("SMART_EXTRAS_COST", 1),
		StarterCredits:    getEnvInt("STARTER_CREDITS", 3),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleIssuer:   getEnv("GOOGLE_ISSUER", "https://accounts.google.com"),

		PurchaseSigningKey: os.Getenv("PURCHASE_SIGNING_KEY"),
		PurchaseBundleID:   getEnv("PURCHASE_BUNDLE_ID", "com.flygen.app"),
		SessionTTL:         time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		MaxSessionsPerUser: getEnvInt("MAX_SESSIONS_PER_USER", 5),

		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.RecordBackend = strings.ToLower(getEnv("RECORD_BACKEND", defaultRecordBackend(cfg)))
	switch cfg.RecordBackend {
	case RecordBackendNone, RecordBackendMemory:
	case RecordBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for RECORD_BACKEND=postgres")
		}
	case RecordBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for RECORD_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown RECORD_BACKEND %q", cfg.RecordBackend)
	}

	if cfg.PurchaseSigningKey == "" {
		cfg.PurchaseSigningKey = cfg.JWTSecret
	}
	if cfg.GenerationCost < 0 || cfg.SmartExtrasCost < 0 || cfg.StarterCredits < 0 {
		return nil, fmt.Errorf("credit costs must not be negative")
	}

	return cfg, nil
}

func defaultRecordBackend(cfg *Config) string {
	switch {
	case cfg.RedisAddr != "":
		return RecordBackendRedis
	case cfg.DatabaseURL != "":
		return RecordBackendPostgres
	default:
		return RecordBackendNone
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
