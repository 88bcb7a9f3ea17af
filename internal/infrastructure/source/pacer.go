package source

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between successive calls to a
// third-party API. Sequential-with-delay is deliberate politeness toward
// free-tier rate limits, not a performance path; the gate lives here so the
// per-symbol sources can swap it for a token bucket without touching
// orchestration.
type Pacer struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// Wait blocks until at least Interval has elapsed since the previous call,
// or returns early when the context is canceled. The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.Interval <= 0 {
		return nil
	}
	p.mu.Lock()
	wait := time.Until(p.last.Add(p.Interval))
	p.mu.Unlock()
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}
