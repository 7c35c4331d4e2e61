package inventory

import (
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeStockDeducted = "inventory.stock_deducted"
	EventTypeStockReceived = "inventory.stock_received"
)

// StockDeductedEvent is raised when a committed sale line subtracts
// stock. NewQuantity is the post-decrement on-hand quantity, which the
// restock alert open-check evaluates.
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	StoreID     int64     `json:"store_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockDeductedEvent creates a new stock deducted event
func NewStockDeductedEvent(row *InventoryRow, quantity int64) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, "InventoryRow", row.ID),
		StoreID:         row.StoreID,
		ProductID:       row.ProductID,
		Quantity:        quantity,
		NewQuantity:     row.Quantity,
	}
}

// EventType returns the event type
func (e *StockDeductedEvent) EventType() string {
	return EventTypeStockDeducted
}

// StockReceivedEvent is raised when a delivery accumulates stock.
// NewQuantity is the post-accumulation on-hand quantity, which the
// restock alert close-check evaluates.
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StoreID     int64     `json:"store_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	NewQuantity int64     `json:"new_quantity"`
}

// NewStockReceivedEvent creates a new stock received event
func NewStockReceivedEvent(row *InventoryRow, quantity int64) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, "InventoryRow", row.ID),
		StoreID:         row.StoreID,
		ProductID:       row.ProductID,
		Quantity:        quantity,
		NewQuantity:     row.Quantity,
	}
}

// EventType returns the event type
func (e *StockReceivedEvent) EventType() string {
	return EventTypeStockReceived
}
