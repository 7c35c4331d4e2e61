package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Rejection reasons returned by the admission gate
const (
	RejectionNoInventoryRow    = "NO_INVENTORY_ROW"
	RejectionInsufficientStock = "INSUFFICIENT_STOCK"
)

// SaleLineProposal asks whether a sale line could be fulfilled right now
type SaleLineProposal struct {
	SaleID    uuid.UUID `json:"sale_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// Admission is the gate's verdict on a proposal. The verdict reflects
// the ledger at check time only; the commit re-validates under lock.
type Admission struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	StoreID   int64     `json:"store_id"`
	ProductID uuid.UUID `json:"product_id"`
	OnHand    int64     `json:"on_hand"`
	Requested int64     `json:"requested"`
}

// SaleLineCommit finalizes a sale line against the ledger
type SaleLineCommit struct {
	SaleID    uuid.UUID `json:"sale_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// CommitResult reports the ledger state after a committed decrement
type CommitResult struct {
	StoreID   int64     `json:"store_id"`
	ProductID uuid.UUID `json:"product_id"`
	Committed int64     `json:"committed"`
	Remaining int64     `json:"remaining"`
}

// DeliveryReceipt is an incoming vendor shipment to merge into the ledger
type DeliveryReceipt struct {
	StoreID      int64     `json:"store_id"`
	ProductID    uuid.UUID `json:"product_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	Quantity     int64     `json:"quantity"`
	DeliveryDate time.Time `json:"delivery_date"`
}

// DeliveryResult reports whether the receipt created the ledger row or
// merged into an existing one, and the resulting on-hand quantity
type DeliveryResult struct {
	StoreID     int64     `json:"store_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Created     bool      `json:"created"`
	NewQuantity int64     `json:"new_quantity"`
}

// RowResponse is the read view of one ledger row
type RowResponse struct {
	StoreID   int64     `json:"store_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}
