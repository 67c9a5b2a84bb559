// Trail scraper for vancouvertrails.com.
//
// Collects every trail listing, flags feature booleans from the
// filtered list pages, fetches per-trail descriptions, and appends the
// new rows to a CSV. Already-scraped trails (by name) are skipped, so
// re-running only fetches what is new.
//
// Usage:
//
//	trailscrape -csv data/vancouver_trails.csv
//	trailscrape -csv data/vancouver_trails.csv -limit 10
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/config"
	logpkg "github.com/Rachel0619/VanTrails/internal/logger"
	"github.com/Rachel0619/VanTrails/internal/scraper"
)

func main() {
	csvPath := flag.String("csv", "data/vancouver_trails.csv", "trail CSV to append to")
	limit := flag.Int("limit", 0, "cap on new trails to scrape (0 = no cap)")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg, *csvPath, *limit, logger); err != nil {
		logger.Fatal("Scrape failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, csvPath string, limit int, logger *zap.Logger) error {
	existing, err := scraper.LoadExistingNames(csvPath)
	if err != nil {
		return err
	}
	logger.Info("Starting scrape",
		zap.String("base_url", cfg.Scraper.BaseURL),
		zap.String("csv", csvPath),
		zap.Int("existing_trails", len(existing)),
	)

	s := scraper.New(scraper.Config{
		BaseURL:   cfg.Scraper.BaseURL,
		UserAgent: cfg.Scraper.UserAgent,
		Delay:     time.Duration(cfg.Scraper.DelayMs) * time.Millisecond,
		Logger:    logger,
	})

	trails, err := s.ScrapeAll(ctx, existing, limit)
	if err != nil {
		return err
	}
	if len(trails) == 0 {
		logger.Info("No new trails to scrape")
		return nil
	}

	if err := scraper.AppendCSV(csvPath, trails); err != nil {
		return err
	}
	logger.Info("Scrape complete",
		zap.Int("new_trails", len(trails)),
		zap.String("csv", csvPath),
	)
	return nil
}
