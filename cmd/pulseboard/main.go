package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulseboard/pulseboard/internal/app"
	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/finplan"
	finplanhttp "github.com/pulseboard/pulseboard/internal/finplan/http"
	"github.com/pulseboard/pulseboard/internal/ledger"
	"github.com/pulseboard/pulseboard/internal/observability"
	platformcache "github.com/pulseboard/pulseboard/internal/platform/cache"
	platformdb "github.com/pulseboard/pulseboard/internal/platform/db"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := platformdb.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports run uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, cfg.APIKeyPepper)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	ledgerRepo := ledger.NewRepository(pool)
	planRepo := finplan.NewRepository(pool)
	reportCache := finplan.NewCache(redisClient, cfg.ReportCacheTTL)
	planService := finplan.NewService(planRepo, ledgerRepo, reportCache, logger)
	planService.SetBuildObserver(metrics.ObserveReportBuild)
	financeHandler := finplanhttp.NewHandler(logger, planService)

	router := app.NewRouter(app.RouterParams{
		Config:         cfg,
		AuthMiddleware: authMiddleware,
		FinanceHandler: financeHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
