package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// RestockAlert is a low-stock latch for one product at one store. The
// row's existence is the open state: it is created once when stock
// falls below the open threshold and deleted when stock recovers to
// the recovery threshold. The snapshot fields (product name, quantity,
// last sale date) are captured at open time and never refreshed.
type RestockAlert struct {
	shared.BaseEntity
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_restock_product_store"`
	StoreID      int64      `gorm:"not null;uniqueIndex:idx_restock_product_store"`
	ProductName  string     `gorm:"size:255"`
	Quantity     int64      `gorm:"not null"`
	LastSaleDate *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (RestockAlert) TableName() string {
	return "restock_alerts"
}

// NewRestockAlert opens an alert with the snapshot taken at breach
// time. lastSaleDate is nil when the pair has never sold.
func NewRestockAlert(productID uuid.UUID, storeID int64, productName string, quantity int64, lastSaleDate *time.Time) (*RestockAlert, error) {
	if productID == uuid.Nil || storeID <= 0 {
		return nil, shared.ErrInvalidInput
	}
	if quantity < 0 {
		return nil, shared.ErrInvalidInput
	}
	return &RestockAlert{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		StoreID:      storeID,
		ProductName:  productName,
		Quantity:     quantity,
		LastSaleDate: lastSaleDate,
	}, nil
}

// Repository is the persistence contract for restock alerts
type Repository interface {
	FindByProductAndStore(ctx context.Context, productID uuid.UUID, storeID int64) (*RestockAlert, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]RestockAlert, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CreateIfAbsent inserts the alert unless one already exists for
	// the product/store pair (ON CONFLICT DO NOTHING). Returns true
	// when this call opened the alert. The first snapshot wins.
	CreateIfAbsent(ctx context.Context, a *RestockAlert) (bool, error)
	// DeleteByProductAndStore closes the pair's alert. Deleting an
	// absent alert is a no-op.
	DeleteByProductAndStore(ctx context.Context, productID uuid.UUID, storeID int64) error
	// FindRecovered returns open alerts whose ledger row has recovered
	// to at least the given quantity. Used by the reconcile sweep.
	FindRecovered(ctx context.Context, threshold int64) ([]RestockAlert, error)
}
