package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
)

// Fetcher runs the out-of-band resolution loop: every tick it resolves the
// whole portfolio, persists the snapshot document the cache tier reads, and
// appends the resolved prices to the history table. One tick runs on start
// so a fresh deployment has a snapshot before the first interval elapses.
type Fetcher struct {
	Positions application.PositionRepo
	Resolver  *application.Resolver
	Snapshots application.SnapshotWriter
	History   application.HistoryRepo

	FetchEvery time.Duration
	Log        *zap.Logger
}

func (f *Fetcher) Start(ctx context.Context) {
	log := f.Log
	if log == nil {
		log = zap.NewNop()
	}
	if f.FetchEvery <= 0 {
		f.FetchEvery = time.Hour
	}

	t := time.NewTicker(f.FetchEvery)
	defer t.Stop()

	log.Info("fetcher_started", zap.Duration("fetch_every", f.FetchEvery))
	f.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("fetcher_stopped")
			return
		case <-t.C:
			f.tick(ctx, log)
		}
	}
}

func (f *Fetcher) tick(ctx context.Context, log *zap.Logger) {
	positions, err := f.Positions.List(ctx)
	if err != nil {
		log.Warn("list_positions_failed", zap.Error(err))
		return
	}
	if len(positions) == 0 {
		return
	}

	res, err := f.Resolver.Resolve(ctx, positions)
	if err != nil {
		log.Warn("resolve_failed", zap.Error(err))
		return
	}

	snap := buildSnapshot(positions, res)
	if err := f.Snapshots.Save(ctx, snap); err != nil {
		log.Warn("snapshot_save_failed", zap.Error(err))
	}

	if f.History != nil {
		for _, p := range positions {
			q, ok := res.Quotes[p.ID]
			if !ok {
				continue
			}
			h := application.PriceHistory{
				Symbol:     p.Symbol,
				Class:      p.Class,
				Price:      q.Price,
				Provenance: q.Provenance,
				ResolvedAt: res.ResolvedAt,
			}
			if err := f.History.Append(ctx, h); err != nil {
				log.Warn("history_append_failed", zap.String("symbol", p.Symbol), zap.Error(err))
			}
		}
	}

	log.Info("fetch_done",
		zap.Int("positions", len(positions)),
		zap.Time("resolved_at", res.ResolvedAt))
}

// buildSnapshot converts a cycle's quote set into the persisted document
// shape. Quotes that fell back past the live tiers are flagged so a later
// cache read knows the value is degraded.
func buildSnapshot(positions []domain.Position, res application.Result) domain.Snapshot {
	snap := domain.Snapshot{LastUpdated: res.ResolvedAt}
	for _, p := range positions {
		q, ok := res.Quotes[p.ID]
		if !ok {
			continue
		}
		entry := domain.SnapshotEntry{
			Price:     q.Price,
			Change:    q.Change24h,
			Timestamp: res.ResolvedAt,
			Fallback:  q.Provenance == domain.ProvenanceSynthetic || q.Provenance == domain.ProvenanceEntry,
		}
		snap.Set(p.Class, p.Symbol, entry)
	}
	return snap
}
