package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/infrastructure/scheduler"
)

type storeActivity struct {
	revenue decimal.Decimal
	cogs    decimal.Decimal
	opex    decimal.Decimal
}

type stubActivityReader struct {
	activity map[int64]storeActivity
	// failStores simulate an unreachable upstream for specific stores
	failStores map[int64]error
}

func newStubActivityReader() *stubActivityReader {
	return &stubActivityReader{
		activity:   make(map[int64]storeActivity),
		failStores: make(map[int64]error),
	}
}

func (r *stubActivityReader) RevenueByStore(_ context.Context, storeID int64, _, _ time.Time) (decimal.Decimal, error) {
	if err, ok := r.failStores[storeID]; ok {
		return decimal.Zero, err
	}
	return r.activity[storeID].revenue, nil
}

func (r *stubActivityReader) CostOfGoodsByStore(_ context.Context, storeID int64, _, _ time.Time) (decimal.Decimal, error) {
	if err, ok := r.failStores[storeID]; ok {
		return decimal.Zero, err
	}
	return r.activity[storeID].cogs, nil
}

func (r *stubActivityReader) OperatingExpenseByStore(_ context.Context, storeID int64, _, _ time.Time) (decimal.Decimal, error) {
	if err, ok := r.failStores[storeID]; ok {
		return decimal.Zero, err
	}
	return r.activity[storeID].opex, nil
}

type memoryProfitRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]report.StoreProfitability
}

func newMemoryProfitRepo() *memoryProfitRepo {
	return &memoryProfitRepo{rows: make(map[uuid.UUID]report.StoreProfitability)}
}

func (r *memoryProfitRepo) Upsert(_ context.Context, row *report.StoreProfitability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.ID] = *row
	return nil
}

func (r *memoryProfitRepo) FindByPeriod(_ context.Context, year int, month time.Month) ([]report.StoreProfitability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var out []report.StoreProfitability
	for _, row := range r.rows {
		if row.ProfitMonth.Equal(target) {
			out = append(out, row)
		}
	}
	return out, nil
}

var _ report.Repository = (*memoryProfitRepo)(nil)

func TestProfitabilityServiceRecompute(t *testing.T) {
	ctx := context.Background()

	t.Run("computes revenue minus cogs and expenses per store", func(t *testing.T) {
		activity := newStubActivityReader()
		activity.activity[1] = storeActivity{
			revenue: decimal.NewFromInt(10000),
			cogs:    decimal.NewFromInt(6000),
			opex:    decimal.NewFromInt(1500),
		}
		activity.activity[2] = storeActivity{
			revenue: decimal.NewFromInt(4000),
			cogs:    decimal.NewFromInt(3000),
			opex:    decimal.NewFromInt(2000),
		}
		repo := newMemoryProfitRepo()
		service := NewProfitabilityService(activity, repo, nil, zap.NewNop())

		result, err := service.Recompute(ctx, 2026, time.March)
		require.NoError(t, err)
		assert.Equal(t, 2, result.StoresWritten)
		assert.Zero(t, result.StoresFailed)
		require.Len(t, result.Rows, 2)

		byStore := make(map[int64]ProfitabilityRow)
		for _, row := range result.Rows {
			byStore[row.StoreID] = row
		}
		assert.True(t, byStore[1].NetProfit.Equal(decimal.NewFromInt(2500)))
		assert.True(t, byStore[1].TotalExpense.Equal(decimal.NewFromInt(7500)))
		assert.True(t, byStore[2].NetProfit.Equal(decimal.NewFromInt(-1000)))
	})

	t.Run("zero-activity store still gets a zeroed row", func(t *testing.T) {
		activity := newStubActivityReader()
		activity.activity[1] = storeActivity{revenue: decimal.NewFromInt(500)}
		repo := newMemoryProfitRepo()
		service := NewProfitabilityService(activity, repo, nil, zap.NewNop())

		result, err := service.Recompute(ctx, 2026, time.March)
		require.NoError(t, err)
		require.Len(t, result.Rows, 2)

		rows, err := service.ListByPeriod(ctx, 2026, time.March)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, row := range rows {
			if row.StoreID == 2 {
				assert.True(t, row.TotalRevenue.IsZero())
				assert.True(t, row.NetProfit.IsZero())
			}
		}
	})

	t.Run("re-run overwrites instead of duplicating", func(t *testing.T) {
		activity := newStubActivityReader()
		activity.activity[1] = storeActivity{revenue: decimal.NewFromInt(100)}
		repo := newMemoryProfitRepo()
		service := NewProfitabilityService(activity, repo, []int64{1}, zap.NewNop())

		first, err := service.Recompute(ctx, 2026, time.March)
		require.NoError(t, err)

		activity.activity[1] = storeActivity{revenue: decimal.NewFromInt(250)}
		second, err := service.Recompute(ctx, 2026, time.March)
		require.NoError(t, err)

		assert.Equal(t, first.Rows[0].ID, second.Rows[0].ID)

		rows, err := service.ListByPeriod(ctx, 2026, time.March)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, rows[0].TotalRevenue.Equal(decimal.NewFromInt(250)))
	})

	t.Run("one failing store does not abort the run", func(t *testing.T) {
		activity := newStubActivityReader()
		activity.activity[2] = storeActivity{revenue: decimal.NewFromInt(900)}
		activity.failStores[1] = errors.New("sales history unreachable")
		repo := newMemoryProfitRepo()
		service := NewProfitabilityService(activity, repo, nil, zap.NewNop())

		result, err := service.Recompute(ctx, 2026, time.March)
		require.NoError(t, err)
		assert.Equal(t, 1, result.StoresWritten)
		assert.Equal(t, 1, result.StoresFailed)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, int64(2), result.Rows[0].StoreID)
	})

	t.Run("invalid period rejected", func(t *testing.T) {
		service := NewProfitabilityService(newStubActivityReader(), newMemoryProfitRepo(), nil, zap.NewNop())
		_, err := service.Recompute(ctx, 1999, time.March)
		assert.ErrorIs(t, err, scheduler.ErrInvalidPeriod)
	})
}

func TestProfitabilityServiceExecute(t *testing.T) {
	activity := newStubActivityReader()
	activity.activity[1] = storeActivity{revenue: decimal.NewFromInt(100)}
	repo := newMemoryProfitRepo()
	service := NewProfitabilityService(activity, repo, []int64{1}, zap.NewNop())

	job := scheduler.NewJob(2026, time.February, 0)
	require.NoError(t, service.Execute(context.Background(), job))

	rows, err := service.ListByPeriod(context.Background(), 2026, time.February)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
