package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRowRepository implements inventory.Repository using GORM
type GormInventoryRowRepository struct {
	db *gorm.DB
}

// NewGormInventoryRowRepository creates a new GormInventoryRowRepository
func NewGormInventoryRowRepository(db *gorm.DB) *GormInventoryRowRepository {
	return &GormInventoryRowRepository{db: db}
}

// FindByStoreAndProduct finds the ledger row for a store/product pair
func (r *GormInventoryRowRepository) FindByStoreAndProduct(ctx context.Context, storeID int64, productID uuid.UUID) (*inventory.InventoryRow, error) {
	var row inventory.InventoryRow
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&row).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &row, nil
}

// FindForUpdate reads the ledger row under a row lock (SELECT ... FOR
// UPDATE). Must run inside a transaction; the lock is held until the
// transaction ends.
func (r *GormInventoryRowRepository) FindForUpdate(ctx context.Context, storeID int64, productID uuid.UUID) (*inventory.InventoryRow, error) {
	var row inventory.InventoryRow
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&row).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &row, nil
}

// FindAll lists ledger rows with pagination
func (r *GormInventoryRowRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryRow, error) {
	var rows []inventory.InventoryRow
	query := applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryRow{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateDBError(err)
	}
	return rows, nil
}

// Save persists the row's current state
func (r *GormInventoryRowRepository) Save(ctx context.Context, row *inventory.InventoryRow) error {
	return translateDBError(r.db.WithContext(ctx).Save(row).Error)
}

// Create inserts a new ledger row. A concurrent insert of the same
// store/product pair is ignored (ON CONFLICT DO NOTHING); callers
// re-read under lock to pick up whichever row won.
func (r *GormInventoryRowRepository) Create(ctx context.Context, row *inventory.InventoryRow) error {
	return translateDBError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(row).Error)
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" {
		dir := "asc"
		if filter.OrderDir == "desc" {
			dir = "desc"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	}
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Limit(filter.PageSize).Offset(offset)
	}
	return query
}

var _ inventory.Repository = (*GormInventoryRowRepository)(nil)
