// Command icao-ingestord is the composition root: it wires configuration,
// the five pipeline collaborators, the scheduler, and the health surface
// together, then runs until a termination signal arrives.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"masterlist-ingestor/internal/auth"
	"masterlist-ingestor/internal/config"
	"masterlist-ingestor/internal/download"
	"masterlist-ingestor/internal/health"
	"masterlist-ingestor/internal/masterlist"
	"masterlist-ingestor/internal/pipeline"
	"masterlist-ingestor/internal/scheduler"
	"masterlist-ingestor/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("configuration failed", "error", err)
		return 1
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "icao-ingestord",
		Level: cfg.Level(),
	})
	logger.Info("starting", "config", fmt.Sprintf("%+v", cfg.Masked()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := store.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("connecting to certificate store failed", "error", err)
		return 1
	}
	defer repo.Close()

	tokens := auth.NewAccessTokenProvider(auth.AccessTokenConfig{
		URL:          cfg.AuthURL,
		ClientID:     cfg.AuthClientID,
		ClientSecret: cfg.AuthClientSecret,
		Username:     cfg.AuthUsername,
		Password:     cfg.AuthPassword,
		Timeout:      cfg.HTTPTimeout(),
	}, logger)

	login := auth.NewSfcTokenProvider(auth.SfcTokenConfig{
		URL:                  cfg.LoginURL,
		BorderPostID:         cfg.LoginBorderPostID,
		BoxID:                cfg.LoginBoxID,
		PassengerControlType: cfg.LoginPassengerControlType,
		Timeout:              cfg.HTTPTimeout(),
	}, logger)

	downloader := download.NewBinaryDownloader(download.Config{
		URL:     cfg.DownloadURL,
		Timeout: cfg.HTTPTimeout(),
	}, logger)

	parser := masterlist.NewParser(logger)

	reporter := health.NewReporter(prometheus.DefaultRegisterer)

	runFn := func(ctx context.Context) {
		res := pipeline.Run(ctx, tokens, login, downloader, parser, repo)
		if res.IsFailure() {
			f := res.Failure()
			logger.Error("pipeline run failed", "error_code", string(f.Code), "msg", f.Message, "details", f.Details)
			reporter.RecordFailure(f)
			return
		}
		logger.Info("pipeline run succeeded", "rows_inserted", res.Value())
		reporter.RecordSuccess(res.Value())
	}

	sched := scheduler.New(cfg.SchedulerInterval(), cfg.RunOnStartup, runFn, logger)

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HealthPort),
		Handler: reporter.Handler(),
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", "error", err)
		}
	}()

	sched.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthServer.Shutdown(shutdownCtx)

	logger.Info("shut down cleanly")
	return 0
}
