package source

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
)

// Cache serves quotes from the most recent locally persisted snapshot.
// It applies the tighter cache freshness window, so a payload the backend
// tier would still accept can be rejected here after it ages past two hours.
type Cache struct {
	Store application.SnapshotStore
	Now   func() time.Time
	Log   *zap.Logger
}

func (c *Cache) ID() string { return "local-cache" }

func (c *Cache) Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult {
	snap, err := c.Store.Load(ctx)
	if err != nil {
		c.log().Info("snapshot cache unavailable", zap.Error(err))
		return domain.FailedSource()
	}
	now := c.now()
	if !application.IsFresh(application.KindCache, snap.LastUpdated, now) {
		c.log().Info("snapshot cache stale, discarding",
			zap.Time("last_updated", snap.LastUpdated))
		return domain.FailedSource()
	}
	return domain.SourceResult{
		Status: domain.SourceSuccess,
		Quotes: quotesFromSnapshot(snap, instruments, domain.ProvenanceCache, now),
	}
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) log() *zap.Logger {
	if c.Log != nil {
		return c.Log
	}
	return zap.NewNop()
}
