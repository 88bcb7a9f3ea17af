package application

import (
	"context"
	"time"

	"pricefeed-service/internal/domain"
)

// PriceSource is the uniform strategy contract every fallback tier fulfils.
// Implementations never return an error: transport failures, stale payloads
// and missing configuration all surface as a failure-status SourceResult.
type PriceSource interface {
	ID() string
	Fetch(ctx context.Context, instruments []domain.Instrument) domain.SourceResult
}

// Synthesizer produces prices for static asset classes without I/O.
type Synthesizer interface {
	Generate(class domain.AssetClass, entryPrice float64) domain.Quote
}

// CooldownStore persists per-source rate-limit state across resolution cycles.
type CooldownStore interface {
	OnCooldown(ctx context.Context, sourceID string) (bool, error)
	RecordRateLimit(ctx context.Context, sourceID string, window time.Duration) error
}

// SnapshotStore reads the locally persisted price snapshot produced by the
// out-of-band fetch job.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
}

// SnapshotWriter persists a snapshot document for later cache reads.
type SnapshotWriter interface {
	Save(ctx context.Context, snap domain.Snapshot) error
}

type PositionRepo interface {
	List(ctx context.Context) ([]domain.Position, error)
	GetByID(ctx context.Context, id string) (domain.Position, error)
	Create(ctx context.Context, p domain.Position) error
	Delete(ctx context.Context, id string) error
}

// PriceHistory records one resolved price fact for auditing/history.
type PriceHistory struct {
	Symbol     string            `json:"symbol"`
	Class      domain.AssetClass `json:"assetClass"`
	Price      *float64          `json:"price"`
	Provenance domain.Provenance `json:"provenance"`
	ResolvedAt time.Time         `json:"resolvedAt"`
}

type HistoryRepo interface {
	Append(ctx context.Context, h PriceHistory) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
