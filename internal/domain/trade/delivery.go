package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// Delivery is a vendor shipment of one product into one store. The
// stock engine records deliveries as it accumulates them into the
// ledger; cost-of-goods aggregation reads them back by month.
type Delivery struct {
	shared.BaseEntity
	StoreID      int64     `gorm:"not null;index"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	VendorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity     int64     `gorm:"not null"`
	DeliveryDate time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "deliveries"
}

// NewDelivery records a vendor shipment
func NewDelivery(storeID int64, productID, vendorID uuid.UUID, quantity int64, deliveryDate time.Time) (*Delivery, error) {
	if storeID <= 0 || productID == uuid.Nil || vendorID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidInput
	}
	return &Delivery{
		BaseEntity:   shared.NewBaseEntity(),
		StoreID:      storeID,
		ProductID:    productID,
		VendorID:     vendorID,
		Quantity:     quantity,
		DeliveryDate: deliveryDate,
	}, nil
}

// DeliveryRecorder appends delivery records as they are received
type DeliveryRecorder interface {
	Record(ctx context.Context, d *Delivery) error
}
