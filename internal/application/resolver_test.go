package application

import (
	"context"
	"testing"
	"time"

	"pricefeed-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestResolver(s Sources, cd *fakeCooldown) *Resolver {
	if cd == nil {
		cd = &fakeCooldown{}
	}
	return NewResolver(s, fakeSynth{}, cd,
		WithClock(fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}))
}

func Test_Resolve_BackendShortCircuits(t *testing.T) {
	t.Parallel()
	btc := domain.Instrument{Symbol: "BTC", Class: domain.AssetCrypto}
	aapl := domain.Instrument{Symbol: "AAPL", Class: domain.AssetEquity}
	backend := &fakeSource{id: "backend", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		btc:  {Price: domain.Float(65000), Change24h: domain.Float(2.5), Provenance: domain.ProvenanceBackend},
		aapl: {Price: domain.Float(190), Change24h: domain.Float(-1.2), Provenance: domain.ProvenanceBackend},
	})}
	cache := failingSource("cache")
	crypto := failingSource("coingecko")
	r := newTestResolver(Sources{Backend: backend, Cache: cache, Crypto: crypto, EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{
		position("p1", "BTC", domain.AssetCrypto, 30000),
		position("p2", "AAPL", domain.AssetEquity, 150),
	})
	require.NoError(t, err)
	require.Equal(t, 65000.0, *res.Quotes["p1"].Price)
	require.Equal(t, domain.ProvenanceBackend, res.Quotes["p1"].Provenance)
	require.Equal(t, 190.0, *res.Quotes["p2"].Price)

	// A validated backend payload terminates the cycle before any other tier.
	require.Zero(t, cache.Calls())
	require.Zero(t, crypto.Calls())
}

func Test_Resolve_BackendMissingSymbol_EntryFallback(t *testing.T) {
	t.Parallel()
	btc := domain.Instrument{Symbol: "BTC", Class: domain.AssetCrypto}
	backend := &fakeSource{id: "backend", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		btc: {Price: domain.Float(65000), Provenance: domain.ProvenanceBackend},
	})}
	r := newTestResolver(Sources{Backend: backend, Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{
		position("p1", "BTC", domain.AssetCrypto, 30000),
		position("p2", "MSFT", domain.AssetEquity, 300),
	})
	require.NoError(t, err)
	require.Equal(t, 300.0, *res.Quotes["p2"].Price)
	require.Equal(t, domain.ProvenanceEntry, res.Quotes["p2"].Provenance)
	require.False(t, res.Quotes["p2"].Unavailable)
}

func Test_Resolve_CacheAfterBackendFailure(t *testing.T) {
	t.Parallel()
	eth := domain.Instrument{Symbol: "ETH", Class: domain.AssetCrypto}
	cache := &fakeSource{id: "cache", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		eth: {Price: domain.Float(2400), Change24h: domain.Float(1.1), Provenance: domain.ProvenanceCache},
	})}
	crypto := failingSource("coingecko")
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: cache, Crypto: crypto, EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{position("p1", "ETH", domain.AssetCrypto, 2000)})
	require.NoError(t, err)
	require.Equal(t, domain.ProvenanceCache, res.Quotes["p1"].Provenance)
	require.Zero(t, crypto.Calls())
}

func Test_Resolve_LiveBranch_Crypto(t *testing.T) {
	t.Parallel()
	btc := domain.Instrument{Symbol: "BTC", Class: domain.AssetCrypto}
	crypto := &fakeSource{id: "coingecko", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		btc: liveQuote(65000, 2.5),
	})}
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: crypto, EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{position("p1", "BTC", domain.AssetCrypto, 30000)})
	require.NoError(t, err)
	q := res.Quotes["p1"]
	require.Equal(t, 65000.0, *q.Price)
	require.Equal(t, 2.5, *q.Change24h)
	require.False(t, q.Unavailable)
	require.Equal(t, domain.ProvenanceLiveAPI, q.Provenance)
}

func Test_Resolve_TierAWinsOverTierB(t *testing.T) {
	t.Parallel()
	aapl := domain.Instrument{Symbol: "AAPL", Class: domain.AssetEquity}
	msft := domain.Instrument{Symbol: "MSFT", Class: domain.AssetEquity}
	tierA := &fakeSource{id: "fmp", res: domain.SourceResult{
		Status: domain.SourcePartial,
		Quotes: map[domain.Instrument]domain.Quote{aapl: liveQuote(190, 0.4)},
	}}
	tierB := &fakeSource{id: "alphavantage", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		aapl: liveQuote(9999, 9),
		msft: liveQuote(420, -0.3),
	})}
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: tierA, EquityB: tierB}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{
		position("p1", "AAPL", domain.AssetEquity, 150),
		position("p2", "MSFT", domain.AssetEquity, 300),
	})
	require.NoError(t, err)
	require.Equal(t, 190.0, *res.Quotes["p1"].Price)
	require.Equal(t, 420.0, *res.Quotes["p2"].Price)

	// Tier B only ever sees the symbols tier A left unresolved.
	require.Equal(t, 1, tierB.Calls())
	require.Equal(t, []domain.Instrument{msft}, tierB.batches[0])
}

func Test_Resolve_TierBSkippedWhenAllResolved(t *testing.T) {
	t.Parallel()
	aapl := domain.Instrument{Symbol: "AAPL", Class: domain.AssetEquity}
	tierA := &fakeSource{id: "fmp", res: sourceSuccess(map[domain.Instrument]domain.Quote{aapl: liveQuote(190, 0.4)})}
	tierB := failingSource("alphavantage")
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: tierA, EquityB: tierB}, nil)

	_, err := r.Resolve(context.Background(), []domain.Position{position("p1", "AAPL", domain.AssetEquity, 150)})
	require.NoError(t, err)
	require.Zero(t, tierB.Calls())
}

func Test_Resolve_TierBOnCooldown(t *testing.T) {
	t.Parallel()
	tierB := failingSource("alphavantage")
	cd := &fakeCooldown{on: map[string]bool{"alphavantage": true}}
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: tierB}, cd)

	res, err := r.Resolve(context.Background(), []domain.Position{position("p1", "MSFT", domain.AssetEquity, 300)})
	require.NoError(t, err)
	require.Zero(t, tierB.Calls())
	require.True(t, res.Quotes["p1"].Unavailable)
}

func Test_Resolve_RateLimitRecordsCooldown(t *testing.T) {
	t.Parallel()
	tierB := &fakeSource{id: "alphavantage", res: domain.SourceResult{
		Status:     domain.SourceFailure,
		Quotes:     map[domain.Instrument]domain.Quote{},
		RetryAfter: 24 * time.Hour,
	}}
	cd := &fakeCooldown{}
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: tierB}, cd)

	_, err := r.Resolve(context.Background(), []domain.Position{position("p1", "MSFT", domain.AssetEquity, 300)})
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cd.recorded["alphavantage"])
}

func Test_Resolve_AllLiveExhausted_Unavailable(t *testing.T) {
	t.Parallel()
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)

	res, err := r.Resolve(context.Background(), []domain.Position{position("p1", "AAPL", domain.AssetEquity, 150)})
	require.NoError(t, err)
	q := res.Quotes["p1"]
	require.Nil(t, q.Price)
	require.True(t, q.Unavailable)
	require.Equal(t, domain.ProvenanceEntry, q.Provenance)
}

func Test_Resolve_CashAlwaysExact(t *testing.T) {
	t.Parallel()
	usd := domain.Instrument{Symbol: "USD", Class: domain.AssetCash}
	backendWithCash := func() *fakeSource {
		// Even a backend payload carrying a different cash price never wins.
		return &fakeSource{id: "backend", res: sourceSuccess(map[domain.Instrument]domain.Quote{
			usd: {Price: domain.Float(1.07), Change24h: domain.Float(0.5), Provenance: domain.ProvenanceBackend},
		})}
	}
	cases := []struct {
		name    string
		sources Sources
	}{
		{"backend tier", Sources{Backend: backendWithCash(), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}},
		{"cache tier", Sources{Backend: failingSource("backend"), Cache: backendWithCash(), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}},
		{"live tier", Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestResolver(tc.sources, nil)
			res, err := r.Resolve(context.Background(), []domain.Position{position("p1", "USD", domain.AssetCash, 1.0)})
			require.NoError(t, err)
			q := res.Quotes["p1"]
			require.Equal(t, 1.0, *q.Price)
			require.Equal(t, 0.0, *q.Change24h)
			require.False(t, q.Unavailable)
		})
	}
}

func Test_Resolve_IdenticalBackendPayloads_Idempotent(t *testing.T) {
	t.Parallel()
	btc := domain.Instrument{Symbol: "BTC", Class: domain.AssetCrypto}
	backend := &fakeSource{id: "backend", res: sourceSuccess(map[domain.Instrument]domain.Quote{
		btc: {Price: domain.Float(65000), Change24h: domain.Float(2.5), Provenance: domain.ProvenanceBackend},
	})}
	r := newTestResolver(Sources{Backend: backend, Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)
	positions := []domain.Position{
		position("p1", "BTC", domain.AssetCrypto, 30000),
		position("p2", "USD", domain.AssetCash, 1.0),
	}

	first, err := r.Resolve(context.Background(), positions)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), positions)
	require.NoError(t, err)
	require.Equal(t, first.Quotes, second.Quotes)
}

func Test_Resolve_ConcurrentTriggerRejected(t *testing.T) {
	t.Parallel()
	backend := failingSource("backend")
	backend.block = make(chan struct{})
	r := newTestResolver(Sources{Backend: backend, Cache: failingSource("cache"), Crypto: failingSource("coingecko"), EquityA: failingSource("fmp"), EquityB: failingSource("alphavantage")}, nil)
	positions := []domain.Position{position("p1", "BTC", domain.AssetCrypto, 30000)}

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := r.Resolve(context.Background(), positions)
		done <- err
	}()
	<-started
	// Wait until the first cycle is inside the backend call.
	require.Eventually(t, func() bool { return backend.Calls() > 0 }, time.Second, time.Millisecond)

	_, err := r.Resolve(context.Background(), positions)
	require.ErrorIs(t, err, ErrCycleInProgress)

	close(backend.block)
	require.NoError(t, <-done)
}

func Test_CheckSymbol(t *testing.T) {
	t.Parallel()
	aapl := domain.Instrument{Symbol: "AAPL", Class: domain.AssetEquity}
	doge := domain.Instrument{Symbol: "DOGE", Class: domain.AssetCrypto}

	crypto := &fakeSource{id: "coingecko", res: sourceSuccess(map[domain.Instrument]domain.Quote{doge: liveQuote(0.1, 3)})}
	tierB := &fakeSource{id: "alphavantage", res: sourceSuccess(map[domain.Instrument]domain.Quote{aapl: liveQuote(190, 0)})}
	r := newTestResolver(Sources{Backend: failingSource("backend"), Cache: failingSource("cache"), Crypto: crypto, EquityA: failingSource("fmp"), EquityB: tierB}, nil)

	require.True(t, r.CheckSymbol(context.Background(), doge))
	require.True(t, r.CheckSymbol(context.Background(), aapl))
	require.False(t, r.CheckSymbol(context.Background(), domain.Instrument{Symbol: "XXXX", Class: domain.AssetCrypto}))
	require.True(t, r.CheckSymbol(context.Background(), domain.Instrument{Symbol: "P2P-EUR", Class: domain.AssetP2P}))
}
