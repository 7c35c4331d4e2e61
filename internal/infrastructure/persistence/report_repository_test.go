package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/catalog"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newActivityDB(t *testing.T) *gorm.DB {
	return newSQLiteDB(t,
		&trade.Sale{}, &trade.SaleLine{}, &trade.Delivery{},
		&trade.ExpenseRecord{}, &catalog.VendorPrice{},
	)
}

func seedSale(t *testing.T, db *gorm.DB, storeID int64, saleDate time.Time, productID uuid.UUID, qty int64, unitPrice decimal.Decimal) {
	t.Helper()
	sale := &trade.Sale{BaseEntity: shared.NewBaseEntity(), StoreID: storeID, SaleDate: saleDate}
	require.NoError(t, db.Create(sale).Error)
	line := &trade.SaleLine{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     sale.ID,
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  unitPrice,
	}
	require.NoError(t, db.Create(line).Error)
}

func TestGormActivityReader_RevenueByStore(t *testing.T) {
	db := newActivityDB(t)
	reader := NewGormActivityReader(db)
	ctx := context.Background()

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := july.AddDate(0, 1, 0)
	productID := uuid.New()

	seedSale(t, db, 1, july.AddDate(0, 0, 4), productID, 10, decimal.NewFromInt(25))  // 250
	seedSale(t, db, 1, july.AddDate(0, 0, 20), productID, 4, decimal.NewFromInt(50))  // 200
	seedSale(t, db, 2, july.AddDate(0, 0, 10), productID, 99, decimal.NewFromInt(1))  // other store
	seedSale(t, db, 1, august.AddDate(0, 0, 1), productID, 99, decimal.NewFromInt(1)) // next month

	revenue, err := reader.RevenueByStore(ctx, 1, july, august)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(450)), "got %s", revenue)
}

func TestGormActivityReader_RevenueByStore_NoActivity(t *testing.T) {
	db := newActivityDB(t)
	reader := NewGormActivityReader(db)

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	revenue, err := reader.RevenueByStore(context.Background(), 1, july, july.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}

func TestGormActivityReader_CostOfGoodsByStore(t *testing.T) {
	db := newActivityDB(t)
	reader := NewGormActivityReader(db)
	ctx := context.Background()

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	vendorID := uuid.New()
	productID := uuid.New()

	price := &catalog.VendorPrice{
		BaseEntity:    shared.NewBaseEntity(),
		VendorID:      vendorID,
		ProductID:     productID,
		PurchasePrice: decimal.NewFromInt(8),
	}
	require.NoError(t, db.Create(price).Error)

	record := func(storeID int64, qty int64, date time.Time) {
		d, err := trade.NewDelivery(storeID, productID, vendorID, qty, date)
		require.NoError(t, err)
		require.NoError(t, db.Create(d).Error)
	}
	record(1, 50, july.AddDate(0, 0, 2))  // 400
	record(1, 25, july.AddDate(0, 0, 15)) // 200
	record(2, 10, july.AddDate(0, 0, 5))  // other store
	record(1, 10, july.AddDate(0, 1, 1))  // next month

	cogs, err := reader.CostOfGoodsByStore(ctx, 1, july, july.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, cogs.Equal(decimal.NewFromInt(600)), "got %s", cogs)
}

func TestGormActivityReader_OperatingExpenseByStore(t *testing.T) {
	db := newActivityDB(t)
	reader := NewGormActivityReader(db)
	ctx := context.Background()

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	record := func(storeID int64, amount int64, date time.Time) {
		e := &trade.ExpenseRecord{
			BaseEntity:  shared.NewBaseEntity(),
			StoreID:     storeID,
			Description: "rent",
			Amount:      decimal.NewFromInt(amount),
			ExpenseDate: date,
		}
		require.NoError(t, db.Create(e).Error)
	}
	record(1, 1200, july.AddDate(0, 0, 1))
	record(1, 300, july.AddDate(0, 0, 20))
	record(2, 999, july.AddDate(0, 0, 10))

	opex, err := reader.OperatingExpenseByStore(ctx, 1, july, july.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, opex.Equal(decimal.NewFromInt(1500)), "got %s", opex)
}

func TestGormProfitabilityRepository_UpsertOverwrites(t *testing.T) {
	db := newSQLiteDB(t, &report.StoreProfitability{})
	repo := NewGormProfitabilityRepository(db)
	ctx := context.Background()

	first := report.NewStoreProfitability(2026, time.July, 1, decimal.NewFromInt(1000), decimal.NewFromInt(400))
	require.NoError(t, repo.Upsert(ctx, first))

	second := report.NewStoreProfitability(2026, time.July, 1, decimal.NewFromInt(1500), decimal.NewFromInt(600))
	require.NoError(t, repo.Upsert(ctx, second))

	rows, err := repo.FindByPeriod(ctx, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, rows, 1, "re-runs overwrite, never duplicate")
	assert.True(t, rows[0].TotalRevenue.Equal(decimal.NewFromInt(1500)))
	assert.True(t, rows[0].NetProfit.Equal(decimal.NewFromInt(900)))
}

func TestGormProfitabilityRepository_FindByPeriodOrdersByStore(t *testing.T) {
	db := newSQLiteDB(t, &report.StoreProfitability{})
	repo := NewGormProfitabilityRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, report.NewStoreProfitability(2026, time.July, 2, decimal.NewFromInt(10), decimal.Zero)))
	require.NoError(t, repo.Upsert(ctx, report.NewStoreProfitability(2026, time.July, 1, decimal.NewFromInt(20), decimal.Zero)))
	require.NoError(t, repo.Upsert(ctx, report.NewStoreProfitability(2026, time.June, 1, decimal.NewFromInt(30), decimal.Zero)))

	rows, err := repo.FindByPeriod(ctx, 2026, time.July)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].StoreID)
	assert.Equal(t, int64(2), rows[1].StoreID)
}
