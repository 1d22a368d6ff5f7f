package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

func TestFindingStore_InsertAndGetAnomalies(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	findings := []domain.AnomalyFinding{
		{
			ID:          "anom-low",
			Type:        domain.AnomalyVendorConcentration,
			Severity:    0.4,
			Confidence:  0.6,
			Description: "single vendor holds most contracts",
			Evidence:    map[string]any{"share": 0.82, "vendor": "12345678000190"},
			Entities: []domain.EntityRef{
				{Kind: "organization", Key: "ORG-A"},
				{Kind: "supplier", Key: "12345678000190", Name: "Construtora Alfa LTDA"},
			},
		},
		{
			ID:              "anom-high",
			Type:            domain.AnomalyPriceOutlier,
			Severity:        0.9,
			Confidence:      0.8,
			Description:     "contract value far above peer median",
			Explanation:     "z-score 4.2 against same-description peers",
			Recommendations: []string{"review contract pricing", "request itemized quote"},
			FinancialImpact: ptr(250000.0),
		},
	}

	err := store.InsertAnomalies(ctx, "run-1", findings)
	require.NoError(t, err)

	got, err := store.GetAnomalies(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by severity DESC
	assert.Equal(t, "anom-high", got[0].ID)
	assert.Equal(t, domain.AnomalyPriceOutlier, got[0].Type)
	assert.Equal(t, 0.9, got[0].Severity)
	assert.Equal(t, []string{"review contract pricing", "request itemized quote"}, got[0].Recommendations)
	require.NotNil(t, got[0].FinancialImpact)
	assert.Equal(t, 250000.0, *got[0].FinancialImpact)

	assert.Equal(t, "anom-low", got[1].ID)
	assert.Nil(t, got[1].FinancialImpact)
	require.Len(t, got[1].Entities, 2)
	assert.Equal(t, "organization", got[1].Entities[0].Kind)
	assert.Equal(t, "ORG-A", got[1].Entities[0].Key)
	assert.Equal(t, "Construtora Alfa LTDA", got[1].Entities[1].Name)

	// Evidence round-trips through JSON, numbers come back as float64
	assert.Equal(t, 0.82, got[1].Evidence["share"])
	assert.Equal(t, "12345678000190", got[1].Evidence["vendor"])
}

func TestFindingStore_InsertAnomaliesDuplicateRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	findings := []domain.AnomalyFinding{
		{ID: "anom-1", Type: domain.AnomalyTemporalBurst, Severity: 0.5, Confidence: 0.5},
	}

	err := store.InsertAnomalies(ctx, "run-dup", findings)
	require.NoError(t, err)

	// Same run again
	err = store.InsertAnomalies(ctx, "run-dup", findings)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Another run is independent
	err = store.InsertAnomalies(ctx, "run-other", findings)
	assert.NoError(t, err)
}

func TestFindingStore_InsertAnomaliesInvalidRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	err := store.InsertAnomalies(ctx, "", nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertPatterns(ctx, "", nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestFindingStore_InsertAndGetPatterns(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	findings := []domain.PatternFinding{
		{
			ID:           "pat-weak",
			Type:         domain.PatternSeasonalRush,
			Significance: 0.3,
			Confidence:   0.5,
			Insights:     []string{"december spending 2.1x the monthly average"},
			Evidence:     map[string]any{"ratio": 2.1},
		},
		{
			ID:                  "pat-strong",
			Type:                domain.PatternSpendingTrend,
			Significance:        0.8,
			Confidence:          0.7,
			Insights:            []string{"monthly totals rising steadily"},
			Trend:               domain.TrendIncreasing,
			CorrelationStrength: ptr(0.91),
			Entities:            []domain.EntityRef{{Kind: "organization", Key: "ORG-A"}},
		},
	}

	err := store.InsertPatterns(ctx, "run-1", findings)
	require.NoError(t, err)

	got, err := store.GetPatterns(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by significance DESC
	assert.Equal(t, "pat-strong", got[0].ID)
	assert.Equal(t, domain.PatternSpendingTrend, got[0].Type)
	assert.Equal(t, domain.TrendIncreasing, got[0].Trend)
	require.NotNil(t, got[0].CorrelationStrength)
	assert.Equal(t, 0.91, *got[0].CorrelationStrength)
	require.Len(t, got[0].Entities, 1)
	assert.Equal(t, "ORG-A", got[0].Entities[0].Key)

	assert.Equal(t, "pat-weak", got[1].ID)
	assert.Nil(t, got[1].CorrelationStrength)
	assert.Equal(t, 2.1, got[1].Evidence["ratio"])
}

func TestFindingStore_InsertPatternsDuplicateRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	findings := []domain.PatternFinding{
		{ID: "pat-1", Type: domain.PatternMultiOrgVendor, Significance: 0.6, Confidence: 0.5},
	}

	err := store.InsertPatterns(ctx, "run-dup", findings)
	require.NoError(t, err)

	err = store.InsertPatterns(ctx, "run-dup", findings)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestFindingStore_GetUnknownRun(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFindingStore(conn)
	ctx := context.Background()

	anomalies, err := store.GetAnomalies(ctx, "run-missing")
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	patterns, err := store.GetPatterns(ctx, "run-missing")
	require.NoError(t, err)
	assert.Empty(t, patterns)
}
