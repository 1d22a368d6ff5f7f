package memory

import (
	"context"
	"errors"
	"testing"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

func TestFindingStore_AnomalyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFindingStore()

	findings := []domain.AnomalyFinding{
		{ID: "f-low", Type: domain.AnomalyPriceOutlier, Severity: 0.2},
		{ID: "f-high", Type: domain.AnomalyVendorConcentration, Severity: 0.9},
	}
	if err := s.InsertAnomalies(ctx, "run-1", findings); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetAnomalies(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].ID != "f-high" {
		t.Errorf("expected severity-ordered findings, got %+v", got)
	}
}

func TestFindingStore_RunIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := NewFindingStore()

	if err := s.InsertAnomalies(ctx, "run-1", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertAnomalies(ctx, "run-1", nil); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey on re-insert, got %v", err)
	}
}

func TestFindingStore_PatternsByRun(t *testing.T) {
	ctx := context.Background()
	s := NewFindingStore()

	_ = s.InsertPatterns(ctx, "run-1", []domain.PatternFinding{
		{ID: "p1", Type: domain.PatternSeasonalRush, Significance: 0.4},
	})
	_ = s.InsertPatterns(ctx, "run-2", []domain.PatternFinding{
		{ID: "p2", Type: domain.PatternSpendingTrend, Significance: 0.8},
	})

	got, err := s.GetPatterns(ctx, "run-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("runs must not leak into each other, got %+v", got)
	}
}

func TestFindingStore_EmptyRunID(t *testing.T) {
	s := NewFindingStore()
	if err := s.InsertAnomalies(context.Background(), "", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
