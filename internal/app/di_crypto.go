package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	cryptoService "github.com/allisson/carevault/internal/crypto/service"
)

type cryptoComponents struct {
	masterKey   lazy[*cryptoDomain.MasterKey]
	fieldCipher lazy[cryptoService.FieldCipher]
	kmsService  lazy[cryptoService.KMSService]
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	kms, _ := c.crypto.kmsService.get(func() (cryptoService.KMSService, error) {
		return cryptoService.NewKMSService(), nil
	})
	return kms
}

// MasterKey returns the field encryption key. A missing ENCRYPTION_KEY is not
// an error: the key is nil and every PII operation answers 503.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	return c.crypto.masterKey.get(func() (*cryptoDomain.MasterKey, error) {
		logger := c.Logger()
		key, err := cryptoService.LoadMasterKey(
			context.Background(),
			c.config.EncryptionKey,
			c.config.KMSKeyURI,
			c.KMSService(),
			logger,
		)
		if errors.Is(err, cryptoDomain.ErrMasterKeyNotLoaded) {
			logger.Warn("ENCRYPTION_KEY is not set; PII endpoints will answer 503")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load encryption key: %w", err)
		}
		logger.Info("encryption key loaded", slog.Any("key", key))
		return key, nil
	})
}

// KeyLoaded reports whether a usable field encryption key is available.
func (c *Container) KeyLoaded() bool {
	key, err := c.MasterKey()
	return err == nil && key != nil
}

// FieldCipher returns the field cipher bound to the master key.
func (c *Container) FieldCipher() (cryptoService.FieldCipher, error) {
	return c.crypto.fieldCipher.get(func() (cryptoService.FieldCipher, error) {
		key, err := c.MasterKey()
		if err != nil {
			return nil, err
		}
		alg, err := cryptoDomain.ParseAlgorithm(c.config.FieldCipherAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("invalid FIELD_CIPHER_ALGORITHM %q: %w", c.config.FieldCipherAlgorithm, err)
		}
		return cryptoService.NewFieldCipher(key, alg, cryptoService.NewAEADManager())
	})
}

// closeKeyMaterial zeroes the master key if it was loaded.
func (c *Container) closeKeyMaterial() {
	if key := c.crypto.masterKey.val; key != nil {
		key.Close()
	}
}
