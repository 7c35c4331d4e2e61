package trade

import (
	"time"

	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseRecord is an operating expense booked against a store
// (rent, wages, utilities). Read by the profitability aggregation.
type ExpenseRecord struct {
	shared.BaseEntity
	StoreID     int64           `gorm:"not null;index"`
	Description string          `gorm:"size:255"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ExpenseRecord) TableName() string {
	return "expense_records"
}
