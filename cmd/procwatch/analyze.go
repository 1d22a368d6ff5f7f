package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"procwatch/internal/domain"
	"procwatch/internal/engine"
	"procwatch/internal/ingest"
	"procwatch/internal/observability"
	"procwatch/internal/storage"
	chstore "procwatch/internal/storage/clickhouse"
	"procwatch/internal/storage/memory"
	"procwatch/internal/storage/migrations"
	"procwatch/internal/timeseries"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the analysis over a batch of records",
	Long: `Reads supplier records (JSON array), normalizes them, runs all
detectors, pattern analyzers and spectral analysis, and writes the ranked
findings as JSON.`,
	RunE: runAnalyze,
}

var (
	analyzeInput     string
	analyzeOutput    string
	analyzePersist   bool
	analyzeRunID     string
	analyzeUseMemory bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "-", "Input file with a JSON array of raw records ('-' for stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "-", "Output file for the analysis result ('-' for stdout)")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "Store the built daily series and ranked findings in ClickHouse")
	analyzeCmd.Flags().StringVar(&analyzeRunID, "run-id", "", "Run identifier for persisted findings (default: UTC timestamp)")
	analyzeCmd.Flags().BoolVar(&analyzeUseMemory, "use-memory", false, "Use in-memory storage instead of ClickHouse")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	raws, err := readRawRecords(analyzeInput)
	if err != nil {
		return err
	}

	records := ingest.NormalizeAll(raws)
	observability.RecordIngested(len(records))
	log.Info().Int("records", len(records)).Msg("records normalized")

	start := time.Now()
	result := engine.New(cfg.AnalysisDomain()).Analyze(records)
	elapsed := time.Since(start)

	observability.RecordAnalysisRun("success", elapsed.Seconds())
	for _, a := range result.Anomalies {
		observability.RecordFinding("anomaly", string(a.Type))
	}
	for _, p := range result.Patterns {
		observability.RecordFinding("pattern", string(p.Type))
	}

	log.Info().
		Int("anomalies", len(result.Anomalies)).
		Int("patterns", len(result.Patterns)).
		Dur("elapsed", elapsed).
		Msg("analysis complete")

	if analyzePersist {
		ctx := cmd.Context()
		seriesStore, findingStore, closeStores, err := openAnalysisStores(ctx)
		if err != nil {
			return err
		}
		defer closeStores()

		runID := analyzeRunID
		if runID == "" {
			runID = time.Now().UTC().Format("20060102T150405Z")
		}
		if err := persistResult(ctx, runID, records, result, seriesStore, findingStore); err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Msg("analysis run persisted")
	}

	return writeResult(analyzeOutput, result)
}

// openAnalysisStores opens the configured series and finding stores and
// applies migrations.
func openAnalysisStores(ctx context.Context) (storage.DailySeriesStore, storage.FindingStore, func(), error) {
	if analyzeUseMemory {
		log.Warn().Msg("using in-memory storage, results are not persisted")
		return memory.NewDailySeriesStore(), memory.NewFindingStore(), func() {}, nil
	}

	conn, err := chstore.NewConn(ctx, cfg.Clickhouse.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect clickhouse: %w", err)
	}

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	closeConn := func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("close clickhouse connection")
		}
	}
	return chstore.NewDailySeriesStore(conn), chstore.NewFindingStore(conn), closeConn, nil
}

// persistResult stores the per-organization daily series and the run's
// ranked findings. Already-stored series days and runs are skipped, so
// re-running over the same window stays idempotent.
func persistResult(ctx context.Context, runID string, records []*domain.Record, result *engine.Result,
	seriesStore storage.DailySeriesStore, findingStore storage.FindingStore) error {

	byOrg := timeseries.BuildDailyByOrg(records)
	orgs := make([]string, 0, len(byOrg))
	for org := range byOrg {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)

	for _, org := range orgs {
		start := time.Now()
		err := seriesStore.InsertBulk(ctx, org, byOrg[org].Points)
		observability.RecordDBQuery("clickhouse", "insert_daily_series", time.Since(start).Seconds(), err)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrDuplicateKey):
			log.Debug().Str("org", org).Msg("daily series already stored, skipped")
		default:
			return fmt.Errorf("store daily series for %s: %w", org, err)
		}
	}

	start := time.Now()
	err := findingStore.InsertAnomalies(ctx, runID, result.Anomalies)
	observability.RecordDBQuery("clickhouse", "insert_anomalies", time.Since(start).Seconds(), err)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("store anomalies for run %s: %w", runID, err)
	}

	start = time.Now()
	err = findingStore.InsertPatterns(ctx, runID, result.Patterns)
	observability.RecordDBQuery("clickhouse", "insert_patterns", time.Since(start).Seconds(), err)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("store patterns for run %s: %w", runID, err)
	}

	return nil
}

// readRawRecords reads a JSON array of raw supplier records.
func readRawRecords(path string) ([]*ingest.RawRecord, error) {
	var reader io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var raws []*ingest.RawRecord
	if err := json.NewDecoder(reader).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return raws, nil
}

// writeResult writes the analysis result as indented JSON.
func writeResult(path string, result *engine.Result) error {
	var writer io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		writer = f
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
