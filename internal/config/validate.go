package config

import (
	"errors"
	"time"

	validation "github.com/jellydator/validation"
)

var errKMSPartial = errors.New("KMS_PROVIDER and KMS_KEY_URI must be set together")

// Validate rejects settings the server cannot start with. Secrets are checked
// by the components that consume them.
func (c *Config) Validate() error {
	if (c.KMSProvider == "") != (c.KMSKeyURI == "") {
		return errKMSPartial
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MetricsPort,
			validation.When(c.MetricsEnabled, validation.Required, validation.Min(1), validation.Max(65535),
				validation.NotIn(c.ServerPort).Error("must differ from SERVER_PORT")),
		),
		validation.Field(&c.DBDriver, validation.Required, validation.In("postgres", "mysql")),
		validation.Field(&c.DBConnectionString, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.FieldCipherAlgorithm, validation.Required, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.PIIDecryptConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.TransportReplayWindow,
			validation.When(c.TransportEncryptionEnabled, validation.Required, validation.Min(time.Second)),
		),
		validation.Field(&c.AuthTokenExpiration, validation.Required),
		validation.Field(&c.LockoutMaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1))),
		validation.Field(&c.RateLimitLoginBurst,
			validation.When(c.RateLimitLoginEnabled, validation.Required, validation.Min(1)),
		),
	)
}
