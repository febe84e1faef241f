package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Catalog      CatalogConfig
	Documents    DocumentsConfig
	Notification NotificationConfig
	Stats        StatsConfig
	Wizard       WizardConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret         string
	SessionTTLMinutes int
	BcryptCost        int
}

// CatalogConfig points at the JSON documents backing the service catalog.
type CatalogConfig struct {
	ServicesFile     string
	OrganisationFile string
}

// DocumentsConfig controls upload storage for payment receipts.
type DocumentsConfig struct {
	UploadsDir string
}

// NotificationConfig holds outbound mail settings. Mail stays a logged
// stub unless an SMTP host is provided.
type NotificationConfig struct {
	EmailFrom string
	SMTPHost  string
	SMTPPort  int
}

// StatsConfig controls the background stats refresh.
type StatsConfig struct {
	RefreshIntervalSeconds int
	CacheTTLSeconds        int
}

// WizardConfig tunes subscription-wizard draft behavior.
type WizardConfig struct {
	DraftTTLMinutes int
	DebounceMillis  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "boaz-housing-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 480),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Catalog: CatalogConfig{
			ServicesFile:     getEnv("CATALOG_SERVICES_FILE", "data/services.json"),
			OrganisationFile: getEnv("CATALOG_ORGANISATION_FILE", "data/organisation.json"),
		},
		Documents: DocumentsConfig{
			UploadsDir: getEnv("DOCUMENTS_UPLOADS_DIR", "uploads"),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@boaz-housing.com"),
			SMTPHost:  os.Getenv("NOTIFY_SMTP_HOST"),
			SMTPPort:  getEnvAsInt("NOTIFY_SMTP_PORT", 587),
		},
		Stats: StatsConfig{
			RefreshIntervalSeconds: getEnvAsInt("STATS_REFRESH_INTERVAL_SECONDS", 30),
			CacheTTLSeconds:        getEnvAsInt("STATS_CACHE_TTL_SECONDS", 120),
		},
		Wizard: WizardConfig{
			DraftTTLMinutes: getEnvAsInt("WIZARD_DRAFT_TTL_MINUTES", 60),
			DebounceMillis:  getEnvAsInt("WIZARD_DEBOUNCE_MILLIS", 300),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// RefreshInterval returns the stats polling period.
func (s StatsConfig) RefreshInterval() time.Duration {
	if s.RefreshIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RefreshIntervalSeconds) * time.Second
}

// CacheTTL returns how long cached stats stay valid without a refresh.
func (s StatsConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// DraftTTL returns how long an untouched wizard draft survives.
func (w WizardConfig) DraftTTL() time.Duration {
	if w.DraftTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(w.DraftTTLMinutes) * time.Minute
}

// DebounceWindow returns the coalescing window for wizard fetch triggers.
func (w WizardConfig) DebounceWindow() time.Duration {
	if w.DebounceMillis <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
