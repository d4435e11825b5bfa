package app

import (
	"fmt"

	transportDomain "github.com/allisson/carevault/internal/transport/domain"
	transportService "github.com/allisson/carevault/internal/transport/service"
)

type transportComponents struct {
	cipher      lazy[transportService.Cipher]
	replayGuard lazy[*transportService.ReplayGuard]
}

// TransportCipher returns the request envelope cipher, or nil when transport
// encryption is disabled.
func (c *Container) TransportCipher() (transportService.Cipher, error) {
	return c.transport.cipher.get(func() (transportService.Cipher, error) {
		if !c.config.TransportEncryptionEnabled {
			return nil, nil
		}
		seeds, err := transportDomain.ParseFallbackSeeds(c.config.TransportFallbackSeeds)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transport fallback seeds: %w", err)
		}
		cipher, err := transportService.NewCipher(seeds, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport cipher: %w", err)
		}
		return cipher, nil
	})
}

// ReplayGuard returns the guard that rejects stale login payloads.
func (c *Container) ReplayGuard() *transportService.ReplayGuard {
	guard, _ := c.transport.replayGuard.get(func() (*transportService.ReplayGuard, error) {
		return transportService.NewReplayGuard(c.config.TransportReplayWindow, nil), nil
	})
	return guard
}
