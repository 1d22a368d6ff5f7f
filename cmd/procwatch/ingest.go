package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"procwatch/internal/observability"
	"procwatch/internal/storage"
	"procwatch/internal/storage/memory"
	"procwatch/internal/storage/migrations"
	pgstore "procwatch/internal/storage/postgres"
	"procwatch/internal/supplier"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Consume the supplier feed into the record store",
	Long: `Connects to the supplier websocket feed, normalizes incoming
records and stores them. Duplicate records are skipped. Exposes Prometheus
metrics over HTTP.`,
	RunE: runIngest,
}

var (
	ingestFeedURL   string
	ingestUseMemory bool
)

func init() {
	ingestCmd.Flags().StringVar(&ingestFeedURL, "feed-url", "", "Supplier feed websocket URL (overrides config)")
	ingestCmd.Flags().BoolVar(&ingestUseMemory, "use-memory", false, "Use in-memory storage instead of PostgreSQL")
}

func runIngest(cmd *cobra.Command, args []string) error {
	feedURL := cfg.Feed.URL
	if ingestFeedURL != "" {
		feedURL = ingestFeedURL
	}
	if feedURL == "" {
		return fmt.Errorf("no feed URL configured; set feed.url or --feed-url")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openRecordStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	// Metrics server
	metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		log.Info().Str("addr", metricsAddr).Msg("metrics server starting")
		if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	feedCfg := supplier.DefaultFeedConfig()
	feedCfg.ReconnectDelay = cfg.Feed.ReconnectDelay
	feedCfg.MaxReconnectDelay = cfg.Feed.MaxReconnectDelay
	feedCfg.PingInterval = cfg.Feed.PingInterval

	feed, err := supplier.NewFeed(ctx, feedURL, &feedCfg)
	if err != nil {
		return fmt.Errorf("connect feed: %w", err)
	}
	defer feed.Close()

	log.Info().Str("endpoint", feedURL).Msg("ingestion started")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		feed.Close()
	}()

	return consume(ctx, feed, store)
}

// consume stores every record the feed delivers until the feed closes.
func consume(ctx context.Context, feed *supplier.Feed, store storage.RecordStore) error {
	for rec := range feed.Records() {
		err := store.Insert(ctx, rec)
		switch {
		case err == nil:
			observability.RecordStored(1)
			observability.DefaultMetrics.LastSuccessfulIngestion.Set(float64(time.Now().Unix()))
		case errors.Is(err, storage.ErrDuplicateKey):
			log.Debug().Str("id", rec.ID).Msg("duplicate record skipped")
		case errors.Is(err, storage.ErrInvalidInput):
			observability.RecordIngestError("invalid_record")
			log.Warn().Str("id", rec.ID).Msg("invalid record skipped")
		default:
			observability.RecordIngestError("store")
			log.Error().Err(err).Str("id", rec.ID).Msg("store record failed")
		}
	}
	return nil
}

// openRecordStore opens the configured record store and applies migrations.
func openRecordStore(ctx context.Context) (storage.RecordStore, func(), error) {
	if ingestUseMemory {
		log.Warn().Msg("using in-memory storage, records are not persisted")
		return memory.NewRecordStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewRecordStore(pool), pool.Close, nil
}
