package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		ServerPort:                 8080,
		DBDriver:                   "postgres",
		DBConnectionString:         "postgres://localhost/carevault",
		LogLevel:                   "info",
		FieldCipherAlgorithm:       "aes-gcm",
		PIIDecryptConcurrency:      8,
		TransportEncryptionEnabled: true,
		TransportReplayWindow:      5 * time.Minute,
		AuthTokenExpiration:        time.Hour,
		LockoutMaxAttempts:         10,
		MetricsEnabled:             true,
		MetricsPort:                8081,
		RateLimitEnabled:           true,
		RateLimitBurst:             20,
		RateLimitLoginEnabled:      true,
		RateLimitLoginBurst:        5,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("Success_MetricsDisabledIgnoresPort", func(t *testing.T) {
		cfg := validConfig()
		cfg.MetricsEnabled = false
		cfg.MetricsPort = 8080
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"Error_UnknownDriver", func(c *Config) { c.DBDriver = "sqlite" }, "DBDriver"},
		{"Error_UnknownAlgorithm", func(c *Config) { c.FieldCipherAlgorithm = "aes-cbc" }, "FieldCipherAlgorithm"},
		{"Error_ZeroConcurrency", func(c *Config) { c.PIIDecryptConcurrency = 0 }, "PIIDecryptConcurrency"},
		{"Error_SamePorts", func(c *Config) { c.MetricsPort = 8080 }, "MetricsPort"},
		{"Error_LogLevel", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
		{"Error_ReplayWindowTooShort", func(c *Config) { c.TransportReplayWindow = time.Millisecond }, "TransportReplayWindow"},
		{"Error_ZeroLoginBurst", func(c *Config) { c.RateLimitLoginBurst = 0 }, "RateLimitLoginBurst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.field)
		})
	}

	t.Run("Error_PartialKMS", func(t *testing.T) {
		cfg := validConfig()
		cfg.KMSKeyURI = "base64key://"
		assert.ErrorIs(t, cfg.Validate(), errKMSPartial)
	})
}
