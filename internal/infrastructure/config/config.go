package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	StoreBackend      string
	DatabaseURL       string
	DatabaseSchema    string
	SQLiteDBPath      string
	AWSRegion         string
	DynamoDBEndpoint  string
	ClientsTable      string
	QuotesTable       string
	PaymentsTable     string
	AppointmentsTable string

	// Locking
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockExpiry    time.Duration

	// Auth
	JWTSecret    string
	AuthDisabled bool
	DevAccountID string

	// Reporting
	ReportingTimezone string

	// Observability
	LogLevel         string
	LogFormat        string
	MetricsNamespace string

	// Payment gateway
	MercadoPagoAccessToken string
	MercadoPagoPayerEmail  string
	PaymentGatewayMock     bool
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatabaseSchema:    getEnv("DATABASE_SCHEMA", "public"),
		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/bizdesk.db"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		ClientsTable:      getEnv("CLIENTS_TABLE", "clients"),
		QuotesTable:       getEnv("QUOTES_TABLE", "quotes"),
		PaymentsTable:     getEnv("PAYMENTS_TABLE", "payments"),
		AppointmentsTable: getEnv("APPOINTMENTS_TABLE", "appointments"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LockExpiry:    getEnvDuration("LOCK_EXPIRY", 10*time.Second),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		AuthDisabled: getEnvBool("AUTH_DISABLED", false),
		DevAccountID: getEnv("DEV_ACCOUNT_ID", ""),

		ReportingTimezone: getEnv("REPORTING_TIMEZONE", "America/Sao_Paulo"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "bizdesk"),

		MercadoPagoAccessToken: getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		MercadoPagoPayerEmail:  getEnv("MERCADOPAGO_PAYER_EMAIL", ""),
		PaymentGatewayMock:     getEnvBool("PAYMENT_GATEWAY_MOCK", false),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendDynamoDB:
		if c.AWSRegion == "" {
			errors = append(errors, "AWS_REGION is required when using dynamodb backend")
		}
		tables := [][2]string{
			{"CLIENTS_TABLE", c.ClientsTable},
			{"QUOTES_TABLE", c.QuotesTable},
			{"PAYMENTS_TABLE", c.PaymentsTable},
			{"APPOINTMENTS_TABLE", c.AppointmentsTable},
		}
		for _, t := range tables {
			if t[1] == "" {
				errors = append(errors, fmt.Sprintf("%s cannot be empty when using dynamodb backend", t[0]))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v",
			c.StoreBackend, []string{BackendMemory, BackendPostgres, BackendSQLite, BackendDynamoDB}))
	}

	if c.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("invalid redis db %d: must not be negative", c.RedisDB))
	}
	if c.LockExpiry < time.Second {
		errors = append(errors, fmt.Sprintf("invalid lock expiry %v: must be at least 1 second", c.LockExpiry))
	}

	if c.AuthDisabled {
		if strings.TrimSpace(c.DevAccountID) == "" {
			errors = append(errors, "DEV_ACCOUNT_ID is required when AUTH_DISABLED is true")
		}
	} else if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required unless AUTH_DISABLED is true")
	}

	if _, err := time.LoadLocation(c.ReportingTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid reporting timezone '%s': %v", c.ReportingTimezone, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the reporting timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Tables() map[string]string {
	return map[string]string{
		"clients":      c.ClientsTable,
		"quotes":       c.QuotesTable,
		"payments":     c.PaymentsTable,
		"appointments": c.AppointmentsTable,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
