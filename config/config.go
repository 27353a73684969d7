package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects where identities and profiles live.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSupabase Backend = "supabase"
	BackendMemory   Backend = "memory"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN is the postgres connection string for gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled is false when no address is configured; the in-process guard is
// used instead.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

type AppConfig struct {
	HTTPAddr  string
	Env       string
	LogLevel  string
	Backend   Backend
	PublicURL string

	DB       DBConfig
	Redis    RedisConfig
	Supabase SupabaseConfig

	JWTSecret               string
	VerificationExpiryHours int

	FormIdleTTL             time.Duration
	FormSweepInterval       time.Duration
	SubmitLockTTL           time.Duration
	CompensatePartialSignup bool
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		Env:       getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Backend:   Backend(strings.ToLower(getEnv("BACKEND", string(BackendPostgres)))),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "nutriflow"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			Timeout:        getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		},

		JWTSecret:               getEnv("JWT_SECRET", ""),
		VerificationExpiryHours: getEnvInt("VERIFICATION_EXPIRY_HOURS", 24),

		FormIdleTTL:             getEnvDuration("FORM_IDLE_TTL", 30*time.Minute),
		FormSweepInterval:       getEnvDuration("FORM_SWEEP_INTERVAL", time.Minute),
		SubmitLockTTL:           getEnvDuration("SUBMIT_LOCK_TTL", 30*time.Second),
		CompensatePartialSignup: getEnvBool("COMPENSATE_PARTIAL_SIGNUP", true),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c AppConfig) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendSupabase:
		if c.Supabase.URL == "" {
			errs = append(errs, errors.New("SUPABASE_URL is not set"))
		}
		if c.Supabase.AnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_ANON_KEY is not set"))
		}
	case BackendPostgres, BackendMemory:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND %q", c.Backend))
	}
	if c.VerificationExpiryHours <= 0 {
		errs = append(errs, errors.New("VERIFICATION_EXPIRY_HOURS must be positive"))
	}
	if c.FormSweepInterval <= 0 {
		errs = append(errs, errors.New("FORM_SWEEP_INTERVAL must be positive"))
	}
	if c.FormIdleTTL <= 0 {
		errs = append(errs, errors.New("FORM_IDLE_TTL must be positive"))
	}
	if c.SubmitLockTTL <= 0 {
		errs = append(errs, errors.New("SUBMIT_LOCK_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
