package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Geocode    GeocodeConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// JWTConfig holds token verification configuration
type JWTConfig struct {
	Secret string
}

type StorageConfig struct {
	Type     string // "local"
	BasePath string
	BaseURL  string
}

type GeocodeConfig struct {
	BaseURL string // empty disables reverse lookups
}

// AttendanceConfig controls the auto-checkout sweep.
type AttendanceConfig struct {
	SweepInterval     time.Duration
	AutoCheckoutGrace time.Duration
	TimingCacheTTL    time.Duration
}

// PayrollConfig holds statutory defaults used when a company has not stored
// payroll settings yet.
type PayrollConfig struct {
	EPFEmployeeRate    string // e.g. "0.12"
	EPFCeilingAmount   string // e.g. "1800"
	ESIEmployeeRate    string // e.g. "0.0075"
	ESIThreshold       string // e.g. "21000"
	StandardDailyHours int
	OvertimeMultiplier string // e.g. "1.0"
	BulkWorkerLimit    int
}

func Load() (*Config, error) {
	// Missing .env is fine in deployed environments; env vars win either way.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "stafftrack_wfm"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	config.Geocode = GeocodeConfig{
		BaseURL: getEnv("GEOCODE_BASE_URL", ""),
	}

	sweepInterval, err := time.ParseDuration(getEnv("ATTENDANCE_SWEEP_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_SWEEP_INTERVAL: %w", err)
	}
	autoCheckoutGrace, err := time.ParseDuration(getEnv("ATTENDANCE_AUTO_CHECKOUT_GRACE", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_AUTO_CHECKOUT_GRACE: %w", err)
	}
	timingCacheTTL, err := time.ParseDuration(getEnv("DEPARTMENT_TIMING_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEPARTMENT_TIMING_CACHE_TTL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		SweepInterval:     sweepInterval,
		AutoCheckoutGrace: autoCheckoutGrace,
		TimingCacheTTL:    timingCacheTTL,
	}

	workerLimit, err := strconv.Atoi(getEnv("PAYROLL_BULK_WORKER_LIMIT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_BULK_WORKER_LIMIT: %w", err)
	}
	standardDailyHours, err := strconv.Atoi(getEnv("PAYROLL_STANDARD_DAILY_HOURS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STANDARD_DAILY_HOURS: %w", err)
	}

	config.Payroll = PayrollConfig{
		EPFEmployeeRate:    getEnv("PAYROLL_EPF_EMPLOYEE_RATE", "0.12"),
		EPFCeilingAmount:   getEnv("PAYROLL_EPF_CEILING_AMOUNT", "1800"),
		ESIEmployeeRate:    getEnv("PAYROLL_ESI_EMPLOYEE_RATE", "0.0075"),
		ESIThreshold:       getEnv("PAYROLL_ESI_THRESHOLD", "21000"),
		StandardDailyHours: standardDailyHours,
		OvertimeMultiplier: getEnv("PAYROLL_OVERTIME_MULTIPLIER", "1.0"),
		BulkWorkerLimit:    workerLimit,
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.StandardDailyHours <= 0 {
		return fmt.Errorf("PAYROLL_STANDARD_DAILY_HOURS must be positive")
	}
	if c.Payroll.BulkWorkerLimit <= 0 {
		return fmt.Errorf("PAYROLL_BULK_WORKER_LIMIT must be positive")
	}
	return nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
