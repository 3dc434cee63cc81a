// cmd/tools/faq-indexer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/database"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/store"
)

// Copies preguntas_frecuentes from PostgreSQL into the Elasticsearch FAQ index.
func main() {
	index := flag.String("index", "", "Target index (defaults to faq.index from config)")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *index == "" {
		*index = cfg.FAQ.Index
	}

	zapLog := logger.New(cfg.Logging.Level, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := run(ctx, cfg, *index, log)
	if err != nil {
		zapLog.Fatal("faq indexing failed", zap.Error(err))
	}
	zapLog.Info("faq index updated", zap.String("index", *index), zap.Int("documents", n))
}

func run(ctx context.Context, cfg *config.Config, index string, log logger.Logger) (int, error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres, log)
	if err != nil {
		return 0, err
	}
	defer pg.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return 0, err
	}
	if err := es.Ping(ctx); err != nil {
		return 0, fmt.Errorf("elasticsearch unreachable: %w", err)
	}

	entries, err := store.NewFAQStore(pg, log).ListEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list faq entries: %w", err)
	}

	search := store.NewFAQSearch(es, index, log)
	if err := search.EnsureIndex(ctx); err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}
	return search.IndexEntries(ctx, entries)
}
