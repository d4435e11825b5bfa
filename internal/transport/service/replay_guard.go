package service

import (
	"time"

	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// ReplayGuard rejects credential payloads whose embedded timestamp is too far
// from the server clock, in either direction.
type ReplayGuard struct {
	window time.Duration
	now    Clock
}

// NewReplayGuard creates a guard. A non-positive window uses DefaultReplayWindow.
func NewReplayGuard(window time.Duration, now Clock) *ReplayGuard {
	if window <= 0 {
		window = transportDomain.DefaultReplayWindow
	}
	if now == nil {
		now = time.Now
	}
	return &ReplayGuard{window: window, now: now}
}

// Check returns ErrReplayDetected when ts is older than the window or further
// than the window in the future.
func (g *ReplayGuard) Check(ts time.Time) error {
	skew := g.now().Sub(ts)
	if skew > g.window || skew < -g.window {
		return transportDomain.ErrReplayDetected
	}
	return nil
}
