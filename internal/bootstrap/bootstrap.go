package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/config"
	"pricefeed-service/internal/domain"
	"pricefeed-service/internal/infrastructure/cooldown"
	"pricefeed-service/internal/infrastructure/httpx"
	"pricefeed-service/internal/infrastructure/logx"
	"pricefeed-service/internal/infrastructure/pg"
	"pricefeed-service/internal/infrastructure/snapshotfile"
	"pricefeed-service/internal/infrastructure/source"
)

type Repos struct {
	DB        *pg.DB
	Positions *pg.PositionRepo
	History   *pg.HistoryRepo
}

// BuildRepos connects to Postgres, runs migrations, and seeds the sample
// portfolio when the store is empty.
func BuildRepos(ctx context.Context, cfg config.Config) (Repos, func(), error) {
	log := logx.L()
	if cfg.DatabaseURL == "" {
		return Repos{}, func() {}, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return Repos{}, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return Repos{}, func() {}, err
	}
	repos := Repos{
		DB:        db,
		Positions: pg.NewPositionRepo(db),
		History:   pg.NewHistoryRepo(db),
	}
	if err := seedSamplePositions(ctx, repos.Positions); err != nil {
		db.Close()
		return Repos{}, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return repos, cleanup, nil
}

// BuildCooldown returns the Redis-backed cooldown store when REDIS_ADDR is
// set, otherwise a process-local one.
func BuildCooldown(cfg config.Config) (application.CooldownStore, func()) {
	if cfg.RedisAddr == "" {
		return cooldown.NewMemory(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return cooldown.New(client), func() { _ = client.Close() }
}

// BuildSources assembles the fallback chain from configuration. Every live
// source shares one retrying HTTP client; the per-symbol equity sources share
// a pacer each.
func BuildSources(cfg config.Config) application.Sources {
	log := logx.L()
	client := &httpx.Client{HTTP: &http.Client{Timeout: 10 * time.Second}}
	snapshots := snapshotfile.New(cfg.SnapshotPath)
	return application.Sources{
		Backend: &source.Backend{
			BaseURL: cfg.BackendURL,
			Client:  client,
			Timeout: cfg.BackendTimeout,
			Log:     log,
		},
		Cache: &source.Cache{Store: snapshots, Log: log},
		Crypto: &source.CoinGecko{
			BaseURL: cfg.CoinGeckoBase,
			Client:  client,
			Log:     log,
		},
		EquityA: &source.FMP{
			BaseURL: cfg.FMPBase,
			APIKey:  cfg.FMPKey,
			Client:  client,
			Pacer:   &source.Pacer{Interval: cfg.PaceInterval},
			Log:     log,
		},
		EquityB: &source.AlphaVantage{
			BaseURL: cfg.AlphaVantageBase,
			APIKey:  cfg.AlphaVantageKey,
			Client:  client,
			Pacer:   &source.Pacer{Interval: cfg.PaceInterval},
			Log:     log,
		},
	}
}

func BuildResolver(cfg config.Config, cooldowns application.CooldownStore) *application.Resolver {
	return application.NewResolver(
		BuildSources(cfg),
		source.NewSynthetic(time.Now().UnixNano()),
		cooldowns,
		application.WithLogger(logx.L()),
	)
}

func BuildService(repos Repos, resolver *application.Resolver) *application.PortfolioService {
	return application.NewPortfolioService(repos.Positions, resolver)
}

// seedSamplePositions populates an empty store with a starter portfolio so
// the dashboard has something to show on first run.
func seedSamplePositions(ctx context.Context, positions *pg.PositionRepo) error {
	existing, err := positions.List(ctx)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	samples := []domain.Position{
		{ID: "sample-btc", Symbol: "BTC", Name: "Bitcoin", Class: domain.AssetCrypto, EntryPrice: 30000, Multiplier: 2.5},
		{ID: "sample-eth", Symbol: "ETH", Name: "Ethereum", Class: domain.AssetCrypto, EntryPrice: 2000, Multiplier: 5},
		{ID: "sample-aapl", Symbol: "AAPL", Name: "Apple Inc.", Class: domain.AssetEquity, EntryPrice: 150, Multiplier: 3},
		{ID: "sample-msft", Symbol: "MSFT", Name: "Microsoft", Class: domain.AssetEquity, EntryPrice: 300, Multiplier: 2},
		{ID: "sample-bond", Symbol: "USD-EQUIV", Name: "Bond portfolio", Class: domain.AssetCashEquivalent, EntryPrice: 100, Multiplier: 8},
		{ID: "sample-p2p", Symbol: "P2P-EUR", Name: "P2P lending", Class: domain.AssetP2P, EntryPrice: 100, Multiplier: 5},
		{ID: "sample-usd", Symbol: "USD", Name: "Cash", Class: domain.AssetCash, EntryPrice: 1.0, Multiplier: 15},
	}
	for _, p := range samples {
		if err := positions.Create(ctx, p); err != nil {
			return fmt.Errorf("seed position %s: %w", p.Symbol, err)
		}
	}
	logx.L().Info("seeded sample portfolio")
	return nil
}
