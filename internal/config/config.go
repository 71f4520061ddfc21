package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/nivkatz/tenants_backend/internal/domain"
)

// Config holds all configuration for the application, loaded once at startup
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MigrationsPath string

	// Buildings is the fixed set of buildings managed by the committee
	Buildings []domain.Building

	// Validation bounds and access-list quotas
	NameMinLength      int
	NameMaxLength      int
	PhoneMinLength     int
	PhoneMaxLength     int
	MaxWhatsAppMembers int
	MaxPalGateMembers  int

	// LockTimeout bounds exclusive store lock acquisition
	LockTimeout time.Duration

	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SMTPFromName   string
	SMTPFromEmail  string
	CommitteeEmail string

	S3BucketName string
	AWSRegion    string

	LogLevel string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() (*Config, error) {
	// Ignore a missing .env, real deployments use environment variables
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:     getEnvOrDefault("SERVER_PORT", "8080"),
		DBHost:         getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:         getEnvOrDefault("DB_PORT", "5432"),
		DBUser:         getEnvOrDefault("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnvOrDefault("DB_NAME", "tenants"),
		DBSSLMode:      getEnvOrDefault("DB_SSLMODE", "disable"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),

		NameMinLength:      getEnvIntOrDefault("NAME_MIN_LENGTH", 2),
		NameMaxLength:      getEnvIntOrDefault("NAME_MAX_LENGTH", 50),
		PhoneMinLength:     getEnvIntOrDefault("PHONE_MIN_LENGTH", 9),
		PhoneMaxLength:     getEnvIntOrDefault("PHONE_MAX_LENGTH", 15),
		MaxWhatsAppMembers: getEnvIntOrDefault("MAX_WHATSAPP_MEMBERS", 2),
		MaxPalGateMembers:  getEnvIntOrDefault("MAX_PALGATE_MEMBERS", 4),

		LockTimeout: time.Duration(getEnvIntOrDefault("LOCK_TIMEOUT_MS", 3000)) * time.Millisecond,

		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:   getEnvOrDefault("SMTP_FROM_NAME", "Building Committee"),
		SMTPFromEmail:  os.Getenv("SMTP_FROM_EMAIL"),
		CommitteeEmail: os.Getenv("COMMITTEE_EMAIL"),

		S3BucketName: os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:    getEnvOrDefault("AWS_REGION", "eu-central-1"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	buildings, err := ParseBuildings(getEnvOrDefault("BUILDINGS", "11:40,12:36,13:36,15:40"))
	if err != nil {
		return nil, err
	}
	cfg.Buildings = buildings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration and reports every problem at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if len(c.Buildings) == 0 {
		result = multierror.Append(result, fmt.Errorf("BUILDINGS must define at least one building"))
	}
	for _, b := range c.Buildings {
		if b.TotalApartments <= 0 {
			result = multierror.Append(result, fmt.Errorf("building %d must have a positive apartment count", b.Number))
		}
	}
	if c.NameMinLength < 1 || c.NameMaxLength < c.NameMinLength {
		result = multierror.Append(result, fmt.Errorf("invalid name length bounds [%d, %d]", c.NameMinLength, c.NameMaxLength))
	}
	if c.PhoneMinLength < 1 || c.PhoneMaxLength < c.PhoneMinLength {
		result = multierror.Append(result, fmt.Errorf("invalid phone length bounds [%d, %d]", c.PhoneMinLength, c.PhoneMaxLength))
	}
	if c.MaxWhatsAppMembers < 0 {
		result = multierror.Append(result, fmt.Errorf("MAX_WHATSAPP_MEMBERS cannot be negative"))
	}
	if c.MaxPalGateMembers < 0 {
		result = multierror.Append(result, fmt.Errorf("MAX_PALGATE_MEMBERS cannot be negative"))
	}
	if c.LockTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("LOCK_TIMEOUT_MS must be positive"))
	}

	return result.ErrorOrNil()
}

// GetDBConnString builds the postgres connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// ParseBuildings parses a "number:total_apartments" comma-separated list,
// e.g. "11:40,12:36".
func ParseBuildings(raw string) ([]domain.Building, error) {
	var buildings []domain.Building
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid building entry %q, expected number:total_apartments", part)
		}
		number, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid building number %q: %w", fields[0], err)
		}
		total, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid apartment count %q: %w", fields[1], err)
		}
		buildings = append(buildings, domain.Building{Number: number, TotalApartments: total})
	}
	return buildings, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns an integer environment variable or the default
func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
