package inventory

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail/backend/internal/domain/shared"
)

func newTestRow(t *testing.T, quantity int64) *InventoryRow {
	t.Helper()
	row, err := NewInventoryRow(1, uuid.New(), quantity)
	require.NoError(t, err)
	row.ClearDomainEvents()
	return row
}

func TestNewInventoryRow(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		productID := uuid.New()
		row, err := NewInventoryRow(2, productID, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), row.StoreID)
		assert.Equal(t, productID, row.ProductID)
		assert.Equal(t, int64(10), row.Quantity)
	})

	t.Run("zero quantity is allowed", func(t *testing.T) {
		_, err := NewInventoryRow(1, uuid.New(), 0)
		assert.NoError(t, err)
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := NewInventoryRow(1, uuid.New(), -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("nil product rejected", func(t *testing.T) {
		_, err := NewInventoryRow(1, uuid.Nil, 5)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("non-positive store rejected", func(t *testing.T) {
		_, err := NewInventoryRow(0, uuid.New(), 5)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestInventoryRowDeduct(t *testing.T) {
	t.Run("subtracts and raises event with post-decrement quantity", func(t *testing.T) {
		row := newTestRow(t, 150)

		require.NoError(t, row.Deduct(70))
		assert.Equal(t, int64(80), row.Quantity)

		events := row.GetDomainEvents()
		require.Len(t, events, 1)
		deducted, ok := events[0].(*StockDeductedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeStockDeducted, deducted.EventType())
		assert.Equal(t, int64(70), deducted.Quantity)
		assert.Equal(t, int64(80), deducted.NewQuantity)
		assert.Equal(t, row.StoreID, deducted.StoreID)
		assert.Equal(t, row.ProductID, deducted.ProductID)
	})

	t.Run("exact quantity drains to zero", func(t *testing.T) {
		row := newTestRow(t, 5)
		require.NoError(t, row.Deduct(5))
		assert.Equal(t, int64(0), row.Quantity)
	})

	t.Run("insufficient stock leaves quantity untouched", func(t *testing.T) {
		row := newTestRow(t, 5)
		err := row.Deduct(6)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(5), row.Quantity)
		assert.Empty(t, row.GetDomainEvents())
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		row := newTestRow(t, 5)
		assert.ErrorIs(t, row.Deduct(0), shared.ErrInvalidInput)
		assert.ErrorIs(t, row.Deduct(-3), shared.ErrInvalidInput)
	})
}

func TestInventoryRowAccumulate(t *testing.T) {
	t.Run("adds and raises event with post-accumulation quantity", func(t *testing.T) {
		row := newTestRow(t, 10)

		require.NoError(t, row.Accumulate(10))
		assert.Equal(t, int64(20), row.Quantity)

		events := row.GetDomainEvents()
		require.Len(t, events, 1)
		received, ok := events[0].(*StockReceivedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(10), received.Quantity)
		assert.Equal(t, int64(20), received.NewQuantity)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		row := newTestRow(t, 10)
		assert.ErrorIs(t, row.Accumulate(0), shared.ErrInvalidInput)
		assert.Equal(t, int64(10), row.Quantity)
	})
}

// Two commits of 3 against 5 on hand: when serialized, exactly one
// succeeds and the remainder is 2. The repository layer provides the
// serialization via row locks; the aggregate enforces the floor.
func TestInventoryRowOversellSerialized(t *testing.T) {
	row := newTestRow(t, 5)

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			results[i] = row.Deduct(3)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shared.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(2), row.Quantity)
	assert.GreaterOrEqual(t, row.Quantity, int64(0))
}
