package cooldown

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local cooldown store; useful for tests/dev when Redis
// is disabled. Cooldowns do not survive a restart.
type Memory struct {
	Now func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{until: make(map[string]time.Time)}
}

func (m *Memory) OnCooldown(_ context.Context, sourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline, ok := m.until[sourceID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(deadline) {
		delete(m.until, sourceID)
		return false, nil
	}
	return true, nil
}

func (m *Memory) RecordRateLimit(_ context.Context, sourceID string, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.until[sourceID] = m.now().Add(window)
	return nil
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
