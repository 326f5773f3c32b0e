package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/salesdash/internal/config"
	"github.com/MrJamesThe3rd/salesdash/internal/database"
	"github.com/MrJamesThe3rd/salesdash/internal/logging"
	"github.com/MrJamesThe3rd/salesdash/internal/metrics"
	"github.com/MrJamesThe3rd/salesdash/internal/product/store"
	"github.com/MrJamesThe3rd/salesdash/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		url         = flag.String("url", cfg.Seed.URL, "feed URL to load product transactions from")
		metricsFile = flag.String("metrics-file", "", "write run metrics in Prometheus text format to this file")
	)

	flag.Parse()

	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Format, cfg.LogLevel()).With("app", cfg.App.Name))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()

	runErr := run(ctx, cfg, *url, metrics.NewSeed(reg))

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			slog.Error("failed to write metrics", "path", *metricsFile, "error", err)
		}
	}

	if runErr != nil {
		slog.Error("seed failed", "error", runErr)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, url string, m *metrics.Seed) error {
	driver := database.Driver(cfg.DB.Driver)

	if err := database.Migrate(driver, cfg.ConnectionString()); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(driver, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	productStore, err := store.New(db, driver)
	if err != nil {
		return err
	}

	slog.Info("loading feed", "url", url)

	res, err := seed.NewService(productStore, cfg.Seed.Timeout, m).Run(ctx, url)
	if err != nil {
		return err
	}

	slog.Info("feed loaded",
		"fetched", res.Fetched,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"rejected", res.Rejected,
	)

	return nil
}
