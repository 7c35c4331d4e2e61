package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/alert"
	"github.com/retail/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRestockAlertRepository implements alert.Repository using GORM
type GormRestockAlertRepository struct {
	db *gorm.DB
}

// NewGormRestockAlertRepository creates a new GormRestockAlertRepository
func NewGormRestockAlertRepository(db *gorm.DB) *GormRestockAlertRepository {
	return &GormRestockAlertRepository{db: db}
}

// FindByProductAndStore finds the open alert for a product/store pair
func (r *GormRestockAlertRepository) FindByProductAndStore(ctx context.Context, productID uuid.UUID, storeID int64) (*alert.RestockAlert, error) {
	var a alert.RestockAlert
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		First(&a).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &a, nil
}

// FindAll lists open alerts with pagination
func (r *GormRestockAlertRepository) FindAll(ctx context.Context, filter shared.Filter) ([]alert.RestockAlert, error) {
	var alerts []alert.RestockAlert
	query := applyFilter(r.db.WithContext(ctx).Model(&alert.RestockAlert{}), filter)
	if err := query.Find(&alerts).Error; err != nil {
		return nil, translateDBError(err)
	}
	return alerts, nil
}

// Count returns the number of open alerts
func (r *GormRestockAlertRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&alert.RestockAlert{}).Count(&count).Error; err != nil {
		return 0, translateDBError(err)
	}
	return count, nil
}

// CreateIfAbsent inserts the alert unless the pair already has one
// (ON CONFLICT DO NOTHING). The unique index on product/store is the
// latch: under concurrent breaches exactly one insert wins and its
// snapshot is kept.
func (r *GormRestockAlertRepository) CreateIfAbsent(ctx context.Context, a *alert.RestockAlert) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).
		Create(a)
	if result.Error != nil {
		return false, translateDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByProductAndStore closes the pair's alert; absent alerts are a no-op
func (r *GormRestockAlertRepository) DeleteByProductAndStore(ctx context.Context, productID uuid.UUID, storeID int64) error {
	return translateDBError(r.db.WithContext(ctx).
		Where("product_id = ? AND store_id = ?", productID, storeID).
		Delete(&alert.RestockAlert{}).Error)
}

// FindRecovered returns open alerts whose ledger row has climbed back
// to at least the given quantity
func (r *GormRestockAlertRepository) FindRecovered(ctx context.Context, threshold int64) ([]alert.RestockAlert, error) {
	var alerts []alert.RestockAlert
	if err := r.db.WithContext(ctx).
		Model(&alert.RestockAlert{}).
		Joins("JOIN inventory_rows ON inventory_rows.product_id = restock_alerts.product_id AND inventory_rows.store_id = restock_alerts.store_id").
		Where("inventory_rows.quantity >= ?", threshold).
		Find(&alerts).Error; err != nil {
		return nil, translateDBError(err)
	}
	return alerts, nil
}

var _ alert.Repository = (*GormRestockAlertRepository)(nil)
