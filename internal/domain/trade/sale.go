package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Sale is the header of a point-of-sale transaction. The stock engine
// reads sales to resolve which store a sale line belongs to and to
// find the most recent sale date for an alert snapshot.
type Sale struct {
	shared.BaseEntity
	StoreID  int64     `gorm:"not null;index"`
	SaleDate time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleLine is one product position on a sale
type SaleLine struct {
	shared.BaseEntity
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// SaleReader answers the read-only sale questions the stock engine
// and alert bookkeeping ask.
type SaleReader interface {
	// ResolveStore returns the store a sale was rung up at. Returns
	// shared.ErrNotFound for an unknown sale.
	ResolveStore(ctx context.Context, saleID uuid.UUID) (int64, error)
	// LastSaleDate returns the most recent date the product sold at
	// the store, or nil when the pair has never sold.
	LastSaleDate(ctx context.Context, productID uuid.UUID, storeID int64) (*time.Time, error)
}
