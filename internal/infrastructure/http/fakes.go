package httpserver

import (
	"context"
	"sync"
	"time"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
)

var _ application.PositionRepo = (*memPositions)(nil)

// In-memory collaborators so the router can be exercised without I/O.

type memPositions struct {
	mu    sync.Mutex
	store map[string]domain.Position
	order []string
}

func newMemPositions() *memPositions {
	return &memPositions{store: map[string]domain.Position{}}
}

func (m *memPositions) List(context.Context) ([]domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Position, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.store[id])
	}
	return out, nil
}

func (m *memPositions) GetByID(_ context.Context, id string) (domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.Position{}, application.ErrNotFound
	}
	return p, nil
}

func (m *memPositions) Create(_ context.Context, p domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memPositions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return application.ErrNotFound
	}
	delete(m.store, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// fnSource resolves every requested instrument at a flat price.
type fnSource struct {
	id    string
	price float64
	known map[string]bool
}

func (s *fnSource) ID() string { return s.id }

func (s *fnSource) Fetch(_ context.Context, instruments []domain.Instrument) domain.SourceResult {
	quotes := make(map[domain.Instrument]domain.Quote, len(instruments))
	for _, inst := range instruments {
		if s.known != nil && !s.known[inst.Symbol] {
			continue
		}
		quotes[inst] = domain.Quote{
			Price:      domain.Float(s.price),
			Change24h:  domain.Float(1.0),
			Provenance: domain.ProvenanceBackend,
		}
	}
	if len(quotes) == 0 {
		return domain.FailedSource()
	}
	return domain.SourceResult{Status: domain.SourceSuccess, Quotes: quotes}
}

type noopCooldown struct{}

func (noopCooldown) OnCooldown(context.Context, string) (bool, error)             { return false, nil }
func (noopCooldown) RecordRateLimit(context.Context, string, time.Duration) error { return nil }

type flatSynth struct{}

func (flatSynth) Generate(_ domain.AssetClass, entry float64) domain.Quote {
	return domain.Quote{
		Price:      domain.Float(entry),
		Change24h:  domain.Float(0),
		Provenance: domain.ProvenanceSynthetic,
	}
}

// NewInMemoryService wires a full portfolio service against the in-memory
// fakes. Symbols listed in known are accepted by the live sources; an empty
// list accepts everything.
func NewInMemoryService(known ...string) (*application.PortfolioService, *memPositions) {
	var knownSet map[string]bool
	if len(known) > 0 {
		knownSet = make(map[string]bool, len(known))
		for _, s := range known {
			knownSet[s] = true
		}
	}
	repo := newMemPositions()
	sources := application.Sources{
		Backend: &fnSource{id: "primary-backend", price: 100, known: knownSet},
		Cache:   &fnSource{id: "local-cache", price: 100, known: knownSet},
		Crypto:  &fnSource{id: "coingecko", price: 100, known: knownSet},
		EquityA: &fnSource{id: "fmp", price: 100, known: knownSet},
		EquityB: &fnSource{id: "alphavantage", price: 100, known: knownSet},
	}
	resolver := application.NewResolver(sources, flatSynth{}, noopCooldown{})
	svc := application.NewPortfolioService(repo, resolver)
	return svc, repo
}
