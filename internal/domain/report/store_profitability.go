package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// profitabilityNamespace seeds the deterministic row key. Recomputing
// the same (year, month, store) always yields the same id, so re-runs
// overwrite instead of duplicating.
var profitabilityNamespace = uuid.MustParse("8f1c2a74-55d1-4b7e-9a0a-3c6f1d2e4b58")

// StoreProfitability is one month's profit-and-loss row for one store
type StoreProfitability struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StoreID      int64           `gorm:"not null;index"`
	ProfitMonth  time.Time       `gorm:"not null;index"`
	TotalRevenue decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TotalExpense decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	NetProfit    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ComputedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StoreProfitability) TableName() string {
	return "store_profitability"
}

// ProfitabilityID derives the deterministic row key for a period and store
func ProfitabilityID(year int, month time.Month, storeID int64) uuid.UUID {
	key := fmt.Sprintf("%04d-%02d-%d", year, int(month), storeID)
	return uuid.NewSHA1(profitabilityNamespace, []byte(key))
}

// NewStoreProfitability builds the row for one store and period.
// totalExpense already includes cost of goods plus operating expense.
func NewStoreProfitability(year int, month time.Month, storeID int64, totalRevenue, totalExpense decimal.Decimal) *StoreProfitability {
	return &StoreProfitability{
		ID:           ProfitabilityID(year, month, storeID),
		StoreID:      storeID,
		ProfitMonth:  time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		TotalRevenue: totalRevenue,
		TotalExpense: totalExpense,
		NetProfit:    totalRevenue.Sub(totalExpense),
		ComputedAt:   time.Now(),
	}
}

// Repository persists profitability rows
type Repository interface {
	// Upsert overwrites the row with the same deterministic id
	Upsert(ctx context.Context, row *StoreProfitability) error
	FindByPeriod(ctx context.Context, year int, month time.Month) ([]StoreProfitability, error)
}

// ActivityReader aggregates the month's trading activity for one store
type ActivityReader interface {
	// RevenueByStore sums quantity times unit price over sale lines of
	// sales rung up at the store within [start, end).
	RevenueByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error)
	// CostOfGoodsByStore sums delivered quantity times the vendor's
	// purchase price over deliveries into the store within [start, end).
	CostOfGoodsByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error)
	// OperatingExpenseByStore sums expense records booked against the
	// store within [start, end).
	OperatingExpenseByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error)
}
