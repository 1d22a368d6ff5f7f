package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

// FindingStore implements storage.FindingStore using ClickHouse. Evidence
// and entity lists are stored as JSON strings; JSON map keys marshal in
// sorted order, so stored rows are deterministic for identical findings.
type FindingStore struct {
	conn *Conn
}

// NewFindingStore creates a new FindingStore.
func NewFindingStore(conn *Conn) *FindingStore {
	return &FindingStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FindingStore = (*FindingStore)(nil)

// InsertAnomalies stores one run's anomaly findings. Returns ErrDuplicateKey
// if the run already has anomalies stored.
func (s *FindingStore) InsertAnomalies(ctx context.Context, runID string, findings []domain.AnomalyFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.runExists(ctx, "anomaly_findings", runID)
	if err != nil {
		return fmt.Errorf("check run exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}
	if len(findings) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO anomaly_findings (
			run_id, finding_id, type, severity, confidence, description,
			explanation, evidence, recommendations, entities, financial_impact
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range findings {
		evidence, err := marshalJSON(f.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence for %s: %w", f.ID, err)
		}
		entities, err := marshalJSON(f.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities for %s: %w", f.ID, err)
		}

		err = batch.Append(
			runID, f.ID, string(f.Type), f.Severity, f.Confidence,
			f.Description, f.Explanation, evidence, f.Recommendations,
			entities, f.FinancialImpact,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertPatterns stores one run's pattern findings. Returns ErrDuplicateKey
// if the run already has patterns stored.
func (s *FindingStore) InsertPatterns(ctx context.Context, runID string, findings []domain.PatternFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.runExists(ctx, "pattern_findings", runID)
	if err != nil {
		return fmt.Errorf("check run exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}
	if len(findings) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pattern_findings (
			run_id, finding_id, type, significance, confidence, insights,
			evidence, recommendations, entities, trend, correlation_strength
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range findings {
		evidence, err := marshalJSON(f.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence for %s: %w", f.ID, err)
		}
		entities, err := marshalJSON(f.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities for %s: %w", f.ID, err)
		}

		err = batch.Append(
			runID, f.ID, string(f.Type), f.Significance, f.Confidence,
			f.Insights, evidence, f.Recommendations, entities,
			string(f.Trend), f.CorrelationStrength,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAnomalies retrieves a run's anomaly findings, ordered by severity DESC
// then id ASC.
func (s *FindingStore) GetAnomalies(ctx context.Context, runID string) ([]domain.AnomalyFinding, error) {
	query := `
		SELECT finding_id, type, severity, confidence, description,
		       explanation, evidence, recommendations, entities, financial_impact
		FROM anomaly_findings
		WHERE run_id = ?
		ORDER BY severity DESC, finding_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query anomalies: %w", err)
	}
	defer rows.Close()

	var findings []domain.AnomalyFinding
	for rows.Next() {
		var f domain.AnomalyFinding
		var typeStr, evidence, entities string

		err := rows.Scan(
			&f.ID, &typeStr, &f.Severity, &f.Confidence, &f.Description,
			&f.Explanation, &evidence, &f.Recommendations, &entities,
			&f.FinancialImpact,
		)
		if err != nil {
			return nil, fmt.Errorf("scan anomaly row: %w", err)
		}

		f.Type = domain.AnomalyType(typeStr)
		if err := unmarshalJSON(evidence, &f.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence for %s: %w", f.ID, err)
		}
		if err := unmarshalJSON(entities, &f.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities for %s: %w", f.ID, err)
		}
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anomaly rows: %w", err)
	}
	return findings, nil
}

// GetPatterns retrieves a run's pattern findings, ordered by significance
// DESC then id ASC.
func (s *FindingStore) GetPatterns(ctx context.Context, runID string) ([]domain.PatternFinding, error) {
	query := `
		SELECT finding_id, type, significance, confidence, insights,
		       evidence, recommendations, entities, trend, correlation_strength
		FROM pattern_findings
		WHERE run_id = ?
		ORDER BY significance DESC, finding_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	var findings []domain.PatternFinding
	for rows.Next() {
		var f domain.PatternFinding
		var typeStr, trendStr, evidence, entities string

		err := rows.Scan(
			&f.ID, &typeStr, &f.Significance, &f.Confidence, &f.Insights,
			&evidence, &f.Recommendations, &entities, &trendStr,
			&f.CorrelationStrength,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pattern row: %w", err)
		}

		f.Type = domain.PatternFindingType(typeStr)
		f.Trend = domain.TrendDirection(trendStr)
		if err := unmarshalJSON(evidence, &f.Evidence); err != nil {
			return nil, fmt.Errorf("unmarshal evidence for %s: %w", f.ID, err)
		}
		if err := unmarshalJSON(entities, &f.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities for %s: %w", f.ID, err)
		}
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern rows: %w", err)
	}
	return findings, nil
}

// runExists checks whether a run already has rows in the given table.
func (s *FindingStore) runExists(ctx context.Context, table, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, "SELECT count(*) FROM "+table+" WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// marshalJSON renders v as a JSON string; nil values become "null".
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalJSON parses a stored JSON string; "null" leaves dest zeroed.
func unmarshalJSON[T any](data string, dest *T) error {
	if data == "" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), dest)
}
