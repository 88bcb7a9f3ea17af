package application

import (
	"context"
	"sync"
	"time"

	"pricefeed-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

// fakeSource returns a canned result (or computes one via fn) and records
// every batch it was asked for.
type fakeSource struct {
	id    string
	res   domain.SourceResult
	fn    func([]domain.Instrument) domain.SourceResult
	block chan struct{}

	mu      sync.Mutex
	calls   int
	batches [][]domain.Instrument
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) Fetch(_ context.Context, instruments []domain.Instrument) domain.SourceResult {
	f.mu.Lock()
	f.calls++
	f.batches = append(f.batches, instruments)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.fn != nil {
		return f.fn(instruments)
	}
	return f.res
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func failingSource(id string) *fakeSource {
	return &fakeSource{id: id, res: domain.FailedSource()}
}

type fakeCooldown struct {
	on       map[string]bool
	recorded map[string]time.Duration
}

func (f *fakeCooldown) OnCooldown(_ context.Context, sourceID string) (bool, error) {
	return f.on[sourceID], nil
}

func (f *fakeCooldown) RecordRateLimit(_ context.Context, sourceID string, window time.Duration) error {
	if f.recorded == nil {
		f.recorded = map[string]time.Duration{}
	}
	f.recorded[sourceID] = window
	return nil
}

// fakeSynth mirrors the real generator's shape with fixed offsets so
// resolver tests stay deterministic.
type fakeSynth struct{}

func (fakeSynth) Generate(class domain.AssetClass, entryPrice float64) domain.Quote {
	switch class {
	case domain.AssetCash:
		return domain.Quote{Price: domain.Float(entryPrice), Change24h: domain.Float(0), Provenance: domain.ProvenanceSynthetic}
	default:
		return domain.Quote{Price: domain.Float(entryPrice + 0.5), Change24h: domain.Float(0.25), Provenance: domain.ProvenanceSynthetic}
	}
}

type fakePositionRepo struct {
	store map[string]domain.Position
	order []string
	err   error
}

func (f *fakePositionRepo) List(context.Context) ([]domain.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Position, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.store[id])
	}
	return out, nil
}

func (f *fakePositionRepo) GetByID(_ context.Context, id string) (domain.Position, error) {
	p, ok := f.store[id]
	if !ok {
		return domain.Position{}, ErrNotFound
	}
	return p, nil
}

func (f *fakePositionRepo) Create(_ context.Context, p domain.Position) error {
	if f.err != nil {
		return f.err
	}
	if f.store == nil {
		f.store = map[string]domain.Position{}
	}
	f.store[p.ID] = p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakePositionRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return ErrNotFound
	}
	delete(f.store, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func position(id, symbol string, class domain.AssetClass, entry float64) domain.Position {
	return domain.Position{ID: id, Symbol: symbol, Name: symbol, Class: class, EntryPrice: entry, Multiplier: 1}
}

func liveQuote(price, change float64) domain.Quote {
	return domain.Quote{Price: domain.Float(price), Change24h: domain.Float(change), Provenance: domain.ProvenanceLiveAPI}
}

func sourceSuccess(quotes map[domain.Instrument]domain.Quote) domain.SourceResult {
	return domain.SourceResult{Status: domain.SourceSuccess, Quotes: quotes}
}
