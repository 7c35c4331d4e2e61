package alert

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail/backend/internal/domain/shared"
)

func TestNewRestockAlert(t *testing.T) {
	t.Run("captures snapshot fields", func(t *testing.T) {
		productID := uuid.New()
		saleDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

		a, err := NewRestockAlert(productID, 2, "Mineral Water 1L", 80, &saleDate)
		require.NoError(t, err)
		assert.Equal(t, productID, a.ProductID)
		assert.Equal(t, int64(2), a.StoreID)
		assert.Equal(t, "Mineral Water 1L", a.ProductName)
		assert.Equal(t, int64(80), a.Quantity)
		require.NotNil(t, a.LastSaleDate)
		assert.True(t, a.LastSaleDate.Equal(saleDate))
	})

	t.Run("never-sold pair keeps nil sale date", func(t *testing.T) {
		a, err := NewRestockAlert(uuid.New(), 1, "Charcoal Bag", 12, nil)
		require.NoError(t, err)
		assert.Nil(t, a.LastSaleDate)
	})

	t.Run("empty product name allowed for degraded lookups", func(t *testing.T) {
		a, err := NewRestockAlert(uuid.New(), 1, "", 40, nil)
		require.NoError(t, err)
		assert.Empty(t, a.ProductName)
	})

	t.Run("invalid keys rejected", func(t *testing.T) {
		_, err := NewRestockAlert(uuid.Nil, 1, "x", 10, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewRestockAlert(uuid.New(), 0, "x", 10, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewRestockAlert(uuid.New(), 1, "x", -1, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
