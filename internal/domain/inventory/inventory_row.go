package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// InventoryRow is the ledger aggregate: the on-hand quantity of one
// product at one store. Rows are created by the first delivery for the
// pair and never deleted; a sold-out product keeps its row at zero.
type InventoryRow struct {
	shared.BaseAggregateRoot
	StoreID   int64     `gorm:"not null;uniqueIndex:idx_inventory_store_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_store_product"`
	Quantity  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryRow) TableName() string {
	return "inventory_rows"
}

// NewInventoryRow creates a ledger row for a store/product pair.
// The initial quantity must not be negative.
func NewInventoryRow(storeID int64, productID uuid.UUID, quantity int64) (*InventoryRow, error) {
	if storeID <= 0 {
		return nil, shared.ErrInvalidInput
	}
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if quantity < 0 {
		return nil, shared.ErrInvalidInput
	}
	return &InventoryRow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StoreID:           storeID,
		ProductID:         productID,
		Quantity:          quantity,
	}, nil
}

// CanFulfill reports whether the row holds at least the requested quantity
func (r *InventoryRow) CanFulfill(quantity int64) bool {
	return r.Quantity >= quantity
}

// Deduct subtracts a sold quantity from the row. The on-hand quantity
// can never go below zero; callers must hold the row lock so the check
// and the subtraction are one atomic step.
func (r *InventoryRow) Deduct(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}
	if r.Quantity < quantity {
		return fmt.Errorf("%w: have %d, need %d", shared.ErrInsufficientStock, r.Quantity, quantity)
	}
	r.Quantity -= quantity
	r.IncrementVersion()
	r.AddDomainEvent(NewStockDeductedEvent(r, quantity))
	return nil
}

// Accumulate merges a delivered quantity into the row
func (r *InventoryRow) Accumulate(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}
	r.Quantity += quantity
	r.IncrementVersion()
	r.AddDomainEvent(NewStockReceivedEvent(r, quantity))
	return nil
}

// Repository is the persistence contract for ledger rows.
//
// FindForUpdate acquires the row lock (SELECT ... FOR UPDATE) and must
// be called inside a transaction; it serializes every read-modify-write
// on the same store/product pair.
type Repository interface {
	FindByStoreAndProduct(ctx context.Context, storeID int64, productID uuid.UUID) (*InventoryRow, error)
	FindForUpdate(ctx context.Context, storeID int64, productID uuid.UUID) (*InventoryRow, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryRow, error)
	Save(ctx context.Context, row *InventoryRow) error
	// Create inserts a new row, ignoring the insert when another
	// transaction created the pair first (ON CONFLICT DO NOTHING).
	// Callers re-read under lock after a conflicted create.
	Create(ctx context.Context, row *InventoryRow) error
}
