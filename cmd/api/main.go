package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pricefeed-service/internal/bootstrap"
	"pricefeed-service/internal/config"
	infraconfig "pricefeed-service/internal/infrastructure/config"
	httpserver "pricefeed-service/internal/infrastructure/http"
	"pricefeed-service/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	cooldowns, closeCooldown := bootstrap.BuildCooldown(cfg)
	defer closeCooldown()

	resolver := bootstrap.BuildResolver(cfg, cooldowns)
	svc := bootstrap.BuildService(repos, resolver)
	srv := httpserver.NewServer(svc,
		httpserver.WithHistory(repos.History),
		httpserver.WithPing(repos.DB.Ping),
	)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
