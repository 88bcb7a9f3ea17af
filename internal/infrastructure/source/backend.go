package source

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
	"pricefeed-service/internal/infrastructure/httpx"
)

const defaultBackendTimeout = 5 * time.Second

// Backend fetches the aggregated snapshot from the primary price backend.
// The payload is all-or-nothing: a stale lastUpdated fails the whole fetch
// even when the HTTP exchange itself succeeded.
type Backend struct {
	BaseURL string
	Client  *httpx.Client
	Timeout time.Duration
	Now     func() time.Time
	Log     *zap.Logger
}

func (b *Backend) ID() string { return "primary-backend" }

func (b *Backend) Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult {
	if b.BaseURL == "" {
		return domain.FailedSource()
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultBackendTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/api/prices", nil)
	if err != nil {
		return domain.FailedSource()
	}
	req.Header.Set("Accept", "application/json")

	var snap domain.Snapshot
	if err := b.client().DoJSON(ctx, req, &snap); err != nil {
		b.log().Warn("backend fetch failed", zap.Error(err))
		return domain.FailedSource()
	}

	now := b.now()
	if !application.IsFresh(application.KindBackend, snap.LastUpdated, now) {
		b.log().Info("backend payload stale, discarding",
			zap.Time("last_updated", snap.LastUpdated))
		return domain.FailedSource()
	}

	return domain.SourceResult{
		Status: domain.SourceSuccess,
		Quotes: quotesFromSnapshot(snap, instruments, domain.ProvenanceBackend, now),
	}
}

func (b *Backend) client() *httpx.Client {
	if b.Client != nil {
		return b.Client
	}
	return &httpx.Client{}
}

func (b *Backend) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Backend) log() *zap.Logger {
	if b.Log != nil {
		return b.Log
	}
	return zap.NewNop()
}
