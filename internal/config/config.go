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

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Policy    PolicyConfig
	Store     StoreConfig
	Reconcile ReconcileConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// PolicyConfig holds the worked-time thresholds used to derive the
// low-time and extra-time flags.
type PolicyConfig struct {
	FullDaySeconds        int64
	HalfDaySeconds        int64
	OvertimeMarginSeconds int64
}

// StoreConfig selects the record store backend: "postgres" or "memory".
type StoreConfig struct {
	Driver string
}

type ReconcileConfig struct {
	SweepInterval time.Duration
	SweepDays     int
	BatchLimit    int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Flag policy
	fullDay, err := getEnvInt64("POLICY_FULL_DAY_SECONDS", 9*60*60)
	if err != nil {
		return nil, err
	}
	halfDay, err := getEnvInt64("POLICY_HALF_DAY_SECONDS", 4*60*60+30*60)
	if err != nil {
		return nil, err
	}
	margin, err := getEnvInt64("POLICY_OVERTIME_MARGIN_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	config.Policy = PolicyConfig{
		FullDaySeconds:        fullDay,
		HalfDaySeconds:        halfDay,
		OvertimeMarginSeconds: margin,
	}

	config.Store = StoreConfig{
		Driver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
	}

	sweepInterval, err := time.ParseDuration(getEnv("RECONCILE_SWEEP_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_SWEEP_INTERVAL: %w", err)
	}
	sweepDays, err := strconv.Atoi(getEnv("RECONCILE_SWEEP_DAYS", "31"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_SWEEP_DAYS: %w", err)
	}
	batchLimit, err := strconv.Atoi(getEnv("RECONCILE_BATCH_LIMIT", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_BATCH_LIMIT: %w", err)
	}
	config.Reconcile = ReconcileConfig{
		SweepInterval: sweepInterval,
		SweepDays:     sweepDays,
		BatchLimit:    batchLimit,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Driver != "postgres" && c.Store.Driver != "memory" {
		return fmt.Errorf("STORE_DRIVER must be one of: postgres, memory")
	}
	if c.Store.Driver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	if c.Policy.FullDaySeconds <= 0 {
		return fmt.Errorf("POLICY_FULL_DAY_SECONDS must be positive")
	}
	if c.Policy.HalfDaySeconds <= 0 || c.Policy.HalfDaySeconds > c.Policy.FullDaySeconds {
		return fmt.Errorf("POLICY_HALF_DAY_SECONDS must be positive and not exceed POLICY_FULL_DAY_SECONDS")
	}
	if c.Policy.OvertimeMarginSeconds < 0 {
		return fmt.Errorf("POLICY_OVERTIME_MARGIN_SECONDS must not be negative")
	}
	if c.Reconcile.SweepInterval < 0 {
		return fmt.Errorf("RECONCILE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

// Location returns the business timezone used to derive calendar-day keys.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
