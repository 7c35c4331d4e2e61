package persistence

import (
	"context"
	"time"

	"github.com/retail/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfitabilityRepository implements report.Repository using GORM
type GormProfitabilityRepository struct {
	db *gorm.DB
}

// NewGormProfitabilityRepository creates a new GormProfitabilityRepository
func NewGormProfitabilityRepository(db *gorm.DB) *GormProfitabilityRepository {
	return &GormProfitabilityRepository{db: db}
}

// Upsert writes the row, overwriting any previous row with the same
// deterministic id so a recompute replaces rather than duplicates.
func (r *GormProfitabilityRepository) Upsert(ctx context.Context, row *report.StoreProfitability) error {
	return translateDBError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row).Error)
}

// FindByPeriod returns all store rows for one month
func (r *GormProfitabilityRepository) FindByPeriod(ctx context.Context, year int, month time.Month) ([]report.StoreProfitability, error) {
	profitMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var rows []report.StoreProfitability
	if err := r.db.WithContext(ctx).
		Where("profit_month = ?", profitMonth).
		Order("store_id").
		Find(&rows).Error; err != nil {
		return nil, translateDBError(err)
	}
	return rows, nil
}

// GormActivityReader implements report.ActivityReader with SQL
// aggregation so a month's activity never has to be paged through
// application memory.
type GormActivityReader struct {
	db *gorm.DB
}

// NewGormActivityReader creates a new GormActivityReader
func NewGormActivityReader(db *gorm.DB) *GormActivityReader {
	return &GormActivityReader{db: db}
}

type sumResult struct {
	Total decimal.Decimal
}

// RevenueByStore sums quantity times unit price over the store's sale
// lines within [start, end)
func (r *GormActivityReader) RevenueByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Select("COALESCE(SUM(sale_lines.quantity * sale_lines.unit_price), 0) as total").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Where("sales.store_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", storeID, start, end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, translateDBError(err)
	}
	return result.Total, nil
}

// CostOfGoodsByStore sums delivered quantity times the vendor's
// purchase price over the store's deliveries within [start, end)
func (r *GormActivityReader) CostOfGoodsByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Table("deliveries").
		Select("COALESCE(SUM(deliveries.quantity * vendor_prices.purchase_price), 0) as total").
		Joins("JOIN vendor_prices ON vendor_prices.vendor_id = deliveries.vendor_id AND vendor_prices.product_id = deliveries.product_id").
		Where("deliveries.store_id = ? AND deliveries.delivery_date >= ? AND deliveries.delivery_date < ?", storeID, start, end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, translateDBError(err)
	}
	return result.Total, nil
}

// OperatingExpenseByStore sums the store's expense records within [start, end)
func (r *GormActivityReader) OperatingExpenseByStore(ctx context.Context, storeID int64, start, end time.Time) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Table("expense_records").
		Select("COALESCE(SUM(amount), 0) as total").
		Where("store_id = ? AND expense_date >= ? AND expense_date < ?", storeID, start, end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, translateDBError(err)
	}
	return result.Total, nil
}

var _ report.Repository = (*GormProfitabilityRepository)(nil)
var _ report.ActivityReader = (*GormActivityReader)(nil)
