// Trail ingestion pipeline.
//
// Reads scraped trail rows from a CSV, normalizes them, embeds their
// descriptions through the cached embedder, and upserts the documents
// into the vector store. Document IDs are content-derived, so
// re-running over the same CSV only ingests rows not already present.
//
// Usage:
//
//	trailingest -csv data/vancouver_trails.csv
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Rachel0619/VanTrails/internal/config"
	dbRedis "github.com/Rachel0619/VanTrails/internal/db/redis"
	"github.com/Rachel0619/VanTrails/internal/ingest"
	logpkg "github.com/Rachel0619/VanTrails/internal/logger"
	"github.com/Rachel0619/VanTrails/internal/metrics"
	"github.com/Rachel0619/VanTrails/internal/repository/embcache"
	"github.com/Rachel0619/VanTrails/internal/repository/trails"
	openaiTransport "github.com/Rachel0619/VanTrails/internal/transport/openai"
)

func main() {
	csvPath := flag.String("csv", "data/vancouver_trails.csv", "trail CSV to ingest")
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

	if err := run(ctx, cfg, *csvPath, logger); err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, csvPath string, logger *zap.Logger) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return err
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.RegisterLLMMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.EmbeddingDimensions,
		Logger:     logger,
	})
	cached := embcache.New(embedder, store, cfg.Index.KeyPrefix, metrics.EmbeddingCacheTotal, logger)

	repo := trails.New(store, trails.Config{
		KeyPrefix:       cfg.Index.KeyPrefix,
		VectorDim:       cfg.LLM.EmbeddingDimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	res, err := ingest.New(repo, cached, logger).Run(ctx, csvPath)
	if err != nil {
		return err
	}
	logger.Info("Ingestion complete",
		zap.Int("ingested", res.Ingested),
		zap.Int("skipped", res.Skipped),
		zap.Int("total", res.Total),
	)
	return nil
}
