package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricefeed-service/internal/bootstrap"
	"pricefeed-service/internal/config"
	"pricefeed-service/internal/infrastructure/logx"
	"pricefeed-service/internal/infrastructure/snapshotfile"
	"pricefeed-service/internal/infrastructure/worker"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logx.L()
	cfg := config.Load()

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	cooldowns, closeCooldown := bootstrap.BuildCooldown(cfg)
	defer closeCooldown()

	f := &worker.Fetcher{
		Positions:  repos.Positions,
		Resolver:   bootstrap.BuildResolver(cfg, cooldowns),
		Snapshots:  snapshotfile.New(cfg.SnapshotPath),
		History:    repos.History,
		FetchEvery: cfg.FetchEvery,
		Log:        logger,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	f.Start(ctx)
}
