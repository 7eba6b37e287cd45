package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		Env:            "development",
		StoreBackend:   BackendPostgres,
		DBPassword:     "secure-password",
		DBSSLMode:      "require",
		JWTSecret:      "secure-secret-at-least-32-chars-long",
		TokenTTLHours:  24,
		VisitorTTLMins: 30,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token ttl", func(c *Config) { c.TokenTTLHours = 0 }, true},
		{"zero visitor ttl", func(c *Config) { c.VisitorTTLMins = 0 }, true},
		{"unknown backend", func(c *Config) { c.StoreBackend = "mongo" }, true},
		{"firestore without project", func(c *Config) { c.StoreBackend = BackendFirestore }, true},
		{"firestore with project", func(c *Config) {
			c.StoreBackend = BackendFirestore
			c.FirestoreProj = "liftlog-dev"
		}, false},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"production ssl disabled", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "disable"
		}, true},
		{"production sqlite", func(c *Config) {
			c.Env = "production"
			c.StoreBackend = BackendSQLite
		}, true},
		{"production valid", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "  SQLite ")
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL_HOURS", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 2, cfg.TokenTTLHours)
	assert.Equal(t, 60, cfg.VisitorTTLMins)
	assert.False(t, cfg.IsProduction())
}
