package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	SocialLinkSecret          string
	Database                  DatabaseConfig
	Log                       LogConfig
	Tracing                   TracingConfig
	RateLimit                 RateLimitConfig
	Booking                   BookingConfig
	Seed                      SeedConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

// RateLimitConfig bounds requests per client IP on the public auth endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// BookingConfig holds booking workflow switches.
type BookingConfig struct {
	// StrictStatusTransitions enables the pending→confirmed→completed graph.
	// When false any status may replace any other.
	StrictStatusTransitions bool

	// Bookable start times: every SlotMinutes from FirstSlot through LastSlot.
	FirstSlot   string
	LastSlot    string
	SlotMinutes int
}

// SeedConfig holds the credentials of the admin account created by `seed`.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "medica"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	var err error
	if dbConfig.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if dbConfig.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if dbConfig.ConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return nil, err
	}

	jwtExpMinutes, err := getEnvInt("JWT_EXPIRATION_MINUTES", 15)
	if err != nil {
		return nil, err
	}

	jwtRefreshExpHours, err := getEnvInt("JWT_REFRESH_EXPIRATION_HOURS", 168) // 7 days
	if err != nil {
		return nil, err
	}

	tracingEnabled, err := getEnvBool("TRACING_ENABLED", false)
	if err != nil {
		return nil, err
	}
	sampleRate, err := getEnvFloat("TRACING_SAMPLE_RATE", 1.0)
	if err != nil {
		return nil, err
	}

	rps, err := getEnvFloat("AUTH_RATE_LIMIT_RPS", 5)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("AUTH_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}

	strict, err := getEnvBool("STRICT_STATUS_TRANSITIONS", false)
	if err != nil {
		return nil, err
	}

	slotMinutes, err := getEnvInt("BOOKING_SLOT_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	env := getEnv("APP_ENV", "development")
	logFormat := "console"
	if env == "production" {
		logFormat = "json"
	}

	return &Config{
		Port:             getEnv("PORT", "8000"),
		Origin:           getEnv("ORIGIN", "http://localhost:3000"),
		Environment:      env,
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		// Empty disables social login.
		SocialLinkSecret: getEnv("SOCIAL_LINK_SECRET", ""),
		Database:         dbConfig,
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", logFormat),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:     tracingEnabled,
			ServiceName: getEnv("TRACING_SERVICE_NAME", "medica-server"),
			Endpoint:    getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate:  sampleRate,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		},
		Booking: BookingConfig{
			StrictStatusTransitions: strict,
			FirstSlot:               getEnv("BOOKING_FIRST_SLOT", "08:00"),
			LastSlot:                getEnv("BOOKING_LAST_SLOT", "17:30"),
			SlotMinutes:             slotMinutes,
		},
		Seed: SeedConfig{
			AdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@medica.com"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
