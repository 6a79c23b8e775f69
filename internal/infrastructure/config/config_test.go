package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:              "8080",
		StoreBackend:      BackendMemory,
		LockExpiry:        10 * time.Second,
		JWTSecret:         "secret",
		ReportingTimezone: "America/Sao_Paulo",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{name: "valid memory backend config", mutate: func(c *Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.StoreBackend = "mongo" },
			wantErr:     true,
			errorString: "invalid store backend 'mongo'",
		},
		{
			name:        "postgres without url",
			mutate:      func(c *Config) { c.StoreBackend = BackendPostgres },
			wantErr:     true,
			errorString: "DATABASE_URL is required",
		},
		{
			name: "dynamodb with empty table",
			mutate: func(c *Config) {
				c.StoreBackend = BackendDynamoDB
				c.AWSRegion = "us-east-1"
				c.ClientsTable, c.QuotesTable, c.PaymentsTable = "c", "q", "p"
			},
			wantErr:     true,
			errorString: "APPOINTMENTS_TABLE cannot be empty",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required",
		},
		{
			name: "auth disabled needs dev account",
			mutate: func(c *Config) {
				c.JWTSecret = ""
				c.AuthDisabled = true
			},
			wantErr:     true,
			errorString: "DEV_ACCOUNT_ID is required",
		},
		{
			name: "auth disabled with dev account",
			mutate: func(c *Config) {
				c.JWTSecret = ""
				c.AuthDisabled = true
				c.DevAccountID = "dev"
			},
		},
		{
			name:        "short lock expiry",
			mutate:      func(c *Config) { c.LockExpiry = time.Millisecond },
			wantErr:     true,
			errorString: "invalid lock expiry",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.ReportingTimezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid reporting timezone 'Mars/Olympus'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("expected error containing %q, got %q", tt.errorString, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOCK_EXPIRY", "30s")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("PAYMENTS_TABLE", "")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Fatalf("expected sqlite backend, got %s", cfg.StoreBackend)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected default redis db, got %d", cfg.RedisDB)
	}
	if cfg.LockExpiry != 30*time.Second {
		t.Fatalf("expected 30s lock expiry, got %v", cfg.LockExpiry)
	}
	if !cfg.AuthDisabled {
		t.Fatalf("expected auth disabled")
	}
	if cfg.PaymentsTable != "payments" {
		t.Fatalf("expected default payments table, got %s", cfg.PaymentsTable)
	}
	if cfg.Location().String() != "America/Sao_Paulo" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}
