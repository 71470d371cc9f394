// Command elt scrapes the US avalanche accident listing, appends new rows to
// the bronze and silver tables and records the run in the log table.
//
// By default it runs once and exits non-zero on failure. With RUN_INTERVAL
// set it runs on that schedule and serves /healthz, /readyz, /status and
// /metrics until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/cache"
	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/geocache"
	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/google"
	httpadapter "github.com/couchcryptid/avalanche-accident-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/avalanche-accident-etl/internal/adapter/kafka"
	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/postgres"
	"github.com/couchcryptid/avalanche-accident-etl/internal/adapter/source"
	"github.com/couchcryptid/avalanche-accident-etl/internal/config"
	"github.com/couchcryptid/avalanche-accident-etl/internal/domain"
	"github.com/couchcryptid/avalanche-accident-etl/internal/observability"
	"github.com/couchcryptid/avalanche-accident-etl/internal/pipeline"
)

const invalidationTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("elt failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	jobIDFlag := flag.String("job-id", "", "run identifier recorded in the log table (default: ELT_JOB_ID or Unix seconds)")
	once := flag.Bool("once", false, "run a single time even if RUN_INTERVAL is set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *jobIDFlag != "" {
		cfg.JobID = *jobIDFlag
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	if cfg.DBAutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	geocoder, err := newGeocoder(cfg, metrics, logger)
	if err != nil {
		return err
	}

	fetcher := source.NewFetcher(cfg.SourceURL, cfg.SourceTimeout, cfg.SourceMaxRetries, metrics, logger)
	transformer := pipeline.NewTransformer(geocoder, logger)

	opts := []pipeline.Option{pipeline.WithFailOnSourceShrink(cfg.FailOnSourceShrink)}
	switch {
	case cfg.CacheRedisAddr != "":
		rdb := cache.NewRedisClient(cfg.CacheRedisAddr, cfg.CacheRedisPassword)
		defer rdb.Close()
		opts = append(opts, pipeline.WithInvalidator(cache.NewRedisInvalidator(rdb)))
		logger.Info("cache invalidation via redis", "addr", cfg.CacheRedisAddr)
	case cfg.CacheInvalidationURL != "":
		opts = append(opts, pipeline.WithInvalidator(
			cache.NewHTTPInvalidator(cfg.CacheInvalidationURL, cfg.CacheAPIKey, invalidationTimeout)))
		logger.Info("cache invalidation via http", "endpoint", cfg.CacheInvalidationURL)
	default:
		logger.Info("cache invalidation disabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(fetcher, transformer, store, logger, metrics, opts...)

	if cfg.RunInterval > 0 && !*once {
		if err := runScheduled(ctx, cfg, p, logger); err != nil {
			return err
		}
		logger.Info("shutdown complete")
		return nil
	}

	jobID := cfg.JobID
	if jobID == "" {
		jobID = domain.NewJobID()
	}
	res := p.Run(ctx, jobID)

	// A one-shot process exits before Prometheus could scrape it.
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidationTimeout)
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, jobID); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
		cancel()
	}
	return res.Err
}

// newGeocoder returns nil when geocoding is disabled.
func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (domain.Geocoder, error) {
	var inner domain.Geocoder
	switch cfg.GeocoderProvider {
	case config.ProviderGoogle:
		client, err := google.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocoderTimeout, metrics, logger)
		if err != nil {
			return nil, err
		}
		inner = client
	case config.ProviderMapbox:
		inner = mapbox.NewClient(cfg.MapboxToken, cfg.GeocoderTimeout, metrics, logger)
	default:
		logger.Info("geocoding disabled")
		return nil, nil
	}

	logger.Info("geocoding enabled", "provider", cfg.GeocoderProvider,
		"cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)
	if cfg.GeocoderCacheSize == 0 {
		return inner, nil
	}
	return geocache.New(inner, cfg.GeocoderCacheSize, metrics), nil
}

// runScheduled runs the pipeline every RUN_INTERVAL next to the ops server
// until ctx is cancelled.
func runScheduled(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		jobID := func() string {
			if cfg.JobID != "" {
				return cfg.JobID + "-" + domain.NewJobID()
			}
			return domain.NewJobID()
		}
		return p.RunEvery(gctx, cfg.RunInterval, jobID)
	})
	return g.Wait()
}
