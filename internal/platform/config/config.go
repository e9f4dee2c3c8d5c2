package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreDriverAPI    = "api"
	StoreDriverPgsql  = "pgsql"
	StoreDriverSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string

	// Remote store
	StoreDriver     string
	StoreAPIURL     string
	StoreAPIToken   string
	StoreAPITimeout time.Duration
	DatabaseURL     string
	EnableDBCheck   bool
	MigrationsPath  string
	SQLitePath      string
	PublicBaseURL   string

	// Session context
	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	SessionIssuer     string
	SessionCacheSize  int

	UploadRateLimit    string
	PosthogAPIKey      string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", StoreDriverAPI)
	viper.SetDefault("STORE_API_URL", "http://localhost:5678")
	viper.SetDefault("STORE_API_TOKEN", "")
	viper.SetDefault("STORE_API_TIMEOUT", "10s")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("SQLITE_PATH", "data/billed.db")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("SESSION_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("SESSION_COOKIE_NAME", "billed_session")
	viper.SetDefault("SESSION_ISSUER", "billed")
	viper.SetDefault("SESSION_CACHE_SIZE", 1024)
	viper.SetDefault("UPLOAD_RATE_LIMIT", "30-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	cfg.StoreDriver = strings.ToLower(viper.GetString("STORE_DRIVER"))
	switch cfg.StoreDriver {
	case StoreDriverAPI, StoreDriverPgsql, StoreDriverSQLite:
	default:
		log.Printf("Warning: Invalid value for STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverAPI)
		cfg.StoreDriver = StoreDriverAPI
	}

	cfg.StoreAPIURL = strings.TrimRight(viper.GetString("STORE_API_URL"), "/")
	cfg.StoreAPIToken = viper.GetString("STORE_API_TOKEN")
	cfg.StoreAPITimeout = durationOr("STORE_API_TIMEOUT", 10*time.Second)

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.StoreDriver == StoreDriverPgsql && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.SQLitePath = viper.GetString("SQLITE_PATH")
	cfg.PublicBaseURL = strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/")

	cfg.SessionSecret = viper.GetString("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: SESSION_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.SessionTTL = durationOr("SESSION_TTL", 24*time.Hour)
	cfg.SessionCookieName = viper.GetString("SESSION_COOKIE_NAME")
	cfg.SessionIssuer = viper.GetString("SESSION_ISSUER")
	cfg.SessionCacheSize = viper.GetInt("SESSION_CACHE_SIZE")
	if cfg.SessionCacheSize <= 0 {
		log.Printf("Warning: Invalid value for SESSION_CACHE_SIZE (%d). Defaulting to 1024.\n", cfg.SessionCacheSize)
		cfg.SessionCacheSize = 1024
	}

	cfg.UploadRateLimit = viper.GetString("UPLOAD_RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// durationOr reads a duration key such as "60m" or "24h", falling back to def
// when the value is missing or invalid.
func durationOr(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
