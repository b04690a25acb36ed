package backend

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum spacing between consecutive backend calls. The
// service treats near-simultaneous requests as conflicting, so every
// outbound call waits its turn here. A nil Pacer never waits.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer allows one call per interval, with the first call passing
// immediately.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return nil
	}
	return &Pacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the spacing since the previous call has elapsed, or the
// context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Interval reports the configured spacing.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}
