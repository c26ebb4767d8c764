package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:             "development",
		Port:            "8375",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBPassword:      "secure-password",
		DBSSLMode:       "require",
		UploadDir:       "/var/lib/freleefty",
		UploadMaxBytes:  DefaultUploadMaxBytes,
		SiteURL:         "https://blog.example.com",
		TracingExporter: "stdout",
		TracingSampler:  1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"invalid port", func(c *Config) { c.Port = "http" }, true},
		{"missing upload dir", func(c *Config) { c.UploadDir = "" }, true},
		{"zero upload cap", func(c *Config) { c.UploadMaxBytes = 0 }, true},
		{"unknown exporter", func(c *Config) { c.TracingExporter = "jaeger" }, true},
		{"sampler out of range", func(c *Config) { c.TracingSampler = 2 }, true},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"production short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production weak db password", func(c *Config) {
			c.Env = "prod"
			c.DBPassword = "password"
		}, true},
		{"production ssl disabled", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "disable"
		}, true},
		{"production ok", func(c *Config) { c.Env = "production" }, false},
		{"development short secret only warns", func(c *Config) { c.JWTSecret = "dev" }, false},
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

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, int64(1024), c.UploadMaxBytes)
	assert.Equal(t, os.Getenv("UPLOAD_DIR"), c.UploadDir)
	assert.False(t, c.IsProduction())
	assert.False(t, c.IsDevelopment())
}
