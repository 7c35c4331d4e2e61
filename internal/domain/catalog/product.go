package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is the master-data record the stock engine reads but does
// not own. Only the fields the engine needs are mapped.
type Product struct {
	shared.BaseEntity
	Name string `gorm:"size:255;not null"`
	SKU  string `gorm:"size:64;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// VendorPrice is the purchase price a vendor charges for a product.
// Cost-of-goods aggregation joins deliveries against these rows.
type VendorPrice struct {
	shared.BaseEntity
	VendorID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_price_vendor_product"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_vendor_price_vendor_product"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// TableName returns the table name for GORM
func (VendorPrice) TableName() string {
	return "vendor_prices"
}

// ProductReader resolves product master data
type ProductReader interface {
	// FindName returns the product's display name. Returns
	// shared.ErrNotFound for an unknown product.
	FindName(ctx context.Context, productID uuid.UUID) (string, error)
}
