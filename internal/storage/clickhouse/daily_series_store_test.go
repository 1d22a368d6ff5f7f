package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestDailySeriesStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySeriesStore(conn)
	ctx := context.Background()

	// Test empty insert
	err := store.InsertBulk(ctx, "ORG-A", nil)
	assert.NoError(t, err)

	// Empty org code is rejected
	err = store.InsertBulk(ctx, "", []domain.TimeSeriesPoint{{Date: day(1)}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	points := []domain.TimeSeriesPoint{
		{Date: day(1), Value: 15000.0, Count: 3, SupplierCount: 2},
	}

	err = store.InsertBulk(ctx, "ORG-A", points)
	require.NoError(t, err)

	got, err := store.GetByOrg(ctx, "ORG-A")
	require.NoError(t, err)
	require.Len(t, got.Points, 1)
	assert.Equal(t, "ORG-A", got.EntityKey)
	assert.True(t, got.Points[0].Date.Equal(day(1)))
	assert.Equal(t, 15000.0, got.Points[0].Value)
	assert.Equal(t, 3, got.Points[0].Count)
	assert.Equal(t, 2, got.Points[0].SupplierCount)
}

func TestDailySeriesStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySeriesStore(conn)
	ctx := context.Background()

	points := []domain.TimeSeriesPoint{
		{Date: day(1), Value: 100.0, Count: 1, SupplierCount: 1},
	}

	err := store.InsertBulk(ctx, "ORG-A", points)
	require.NoError(t, err)

	// Same org and date again
	err = store.InsertBulk(ctx, "ORG-A", points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same date for another org is fine
	err = store.InsertBulk(ctx, "ORG-B", points)
	assert.NoError(t, err)
}

func TestDailySeriesStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySeriesStore(conn)
	ctx := context.Background()

	// Same day twice in one batch
	points := []domain.TimeSeriesPoint{
		{Date: day(1), Value: 100.0, Count: 1, SupplierCount: 1},
		{Date: day(1), Value: 200.0, Count: 2, SupplierCount: 1},
	}

	err := store.InsertBulk(ctx, "ORG-A", points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDailySeriesStore_GetByOrg(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySeriesStore(conn)
	ctx := context.Background()

	// Inserted out of order; reads come back date ASC
	err := store.InsertBulk(ctx, "ORG-A", []domain.TimeSeriesPoint{
		{Date: day(20), Value: 300.0, Count: 3, SupplierCount: 1},
		{Date: day(5), Value: 100.0, Count: 1, SupplierCount: 1},
		{Date: day(10), Value: 200.0, Count: 2, SupplierCount: 1},
	})
	require.NoError(t, err)

	err = store.InsertBulk(ctx, "ORG-B", []domain.TimeSeriesPoint{
		{Date: day(7), Value: 999.0, Count: 9, SupplierCount: 9},
	})
	require.NoError(t, err)

	got, err := store.GetByOrg(ctx, "ORG-A")
	require.NoError(t, err)
	require.Len(t, got.Points, 3)
	assert.True(t, got.Points[0].Date.Equal(day(5)))
	assert.True(t, got.Points[1].Date.Equal(day(10)))
	assert.True(t, got.Points[2].Date.Equal(day(20)))

	// Unknown org yields an empty series, not an error
	empty, err := store.GetByOrg(ctx, "ORG-MISSING")
	require.NoError(t, err)
	assert.Empty(t, empty.Points)
}

func TestDailySeriesStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySeriesStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "ORG-A", []domain.TimeSeriesPoint{
		{Date: day(1), Value: 100.0, Count: 1, SupplierCount: 1},
		{Date: day(10), Value: 200.0, Count: 2, SupplierCount: 1},
		{Date: day(20), Value: 300.0, Count: 3, SupplierCount: 1},
	})
	require.NoError(t, err)

	// Inclusive bounds
	got, err := store.GetByDateRange(ctx, "ORG-A", day(10), day(20))
	require.NoError(t, err)
	require.Len(t, got.Points, 2)
	assert.True(t, got.Points[0].Date.Equal(day(10)))
	assert.True(t, got.Points[1].Date.Equal(day(20)))
}
