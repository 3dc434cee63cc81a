// cmd/chatbot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-chatbot/internal/api"
	"order-chatbot/internal/chat"
	awsclient "order-chatbot/internal/common/aws"
	"order-chatbot/internal/common/clu"
	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/database"
	"order-chatbot/internal/common/logger"
	"order-chatbot/internal/common/observability"
	"order-chatbot/internal/events"
	"order-chatbot/internal/session"
	"order-chatbot/internal/store"
)

const shutdownTimeout = 30 * time.Second

// retryWithBackoff runs operation until it succeeds or maxRetries is
// reached, doubling the delay after each failure.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pingOrClose pings a freshly opened client and closes it when the ping
// fails.
func pingOrClose(ctx context.Context, ping func(context.Context) error, c io.Closer) error {
	if err := ping(ctx); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting order chatbot",
		zap.String("version", cfg.App.Version),
		zap.String("sessionBackend", cfg.Session.Backend),
		zap.String("faqBackend", cfg.FAQ.Backend),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]api.ReadinessCheck{}

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres, log)
		if err != nil {
			return err
		}
		return pingOrClose(ctx, pg.Ping, pg)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	checks["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected")

	if cfg.Database.Postgres.AutoMigrate {
		if err := store.Migrate(ctx, pg, log); err != nil {
			zapLog.Fatal("migrations failed", zap.Error(err))
		}
	}

	// --- Conversation state ---
	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return pingOrClose(ctx, rdb.Ping, rdb)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		checks["redis"] = rdb.Ping
		sessions = session.NewRedisStore(rdb.Client, time.Duration(cfg.Session.TTL)*time.Second, cfg.Session.KeyPrefix)
		zapLog.Info("Redis connected")
	default:
		sessions = session.NewMemoryStore(time.Duration(cfg.Session.TTL) * time.Second)
	}

	// --- FAQ lookup ---
	var faq store.FAQFinder = store.NewFAQStore(pg, log)
	if cfg.FAQ.Backend == config.FAQBackendElasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks["elasticsearch"] = es.Ping
		faq = store.NewFAQSearch(es, cfg.FAQ.Index, log)
		zapLog.Info("Elasticsearch connected", zap.String("index", cfg.FAQ.Index))
	}

	// --- Order events ---
	var publisher events.Publisher = events.Nop{}
	if sns := cfg.Notifications.SNS; sns.Enabled {
		p, err := awsclient.NewSNSPublisher(ctx, sns.Region, sns.TopicARN)
		if err != nil {
			zapLog.Fatal("sns publisher init failed", zap.Error(err))
		}
		publisher = events.NewSNSPublisher(p, log)
		zapLog.Info("order events enabled", zap.String("topicArn", sns.TopicARN))
	}

	if cfg.APIs.CLU.APIKey == "" {
		zapLog.Warn("no CLU api key configured; every message will get the not-understood reply")
	}

	svc := chat.NewService(chat.Dependencies{
		NLU:      clu.NewClient(cfg.APIs.CLU, log),
		Sessions: sessions,
		Orders:   store.NewOrderStore(pg, log),
		FAQ:      faq,
		Events:   publisher,
		Recorder: obs,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(api.NewChatHandler(svc, config.GetDuration(cfg.Server.RequestTimeout), log), checks, log),
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("shutdown signal received, draining requests...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("order chatbot stopped gracefully")
}
