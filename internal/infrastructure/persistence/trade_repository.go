package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/catalog"
	"github.com/retail/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormSaleReader implements trade.SaleReader using GORM
type GormSaleReader struct {
	db *gorm.DB
}

// NewGormSaleReader creates a new GormSaleReader
func NewGormSaleReader(db *gorm.DB) *GormSaleReader {
	return &GormSaleReader{db: db}
}

// ResolveStore returns the store a sale was rung up at
func (r *GormSaleReader) ResolveStore(ctx context.Context, saleID uuid.UUID) (int64, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Select("store_id").
		First(&sale, "id = ?", saleID).Error; err != nil {
		return 0, translateDBError(err)
	}
	return sale.StoreID, nil
}

// LastSaleDate returns the most recent date the product sold at the
// store, or nil when the pair has never sold.
func (r *GormSaleReader) LastSaleDate(ctx context.Context, productID uuid.UUID, storeID int64) (*time.Time, error) {
	var last *time.Time
	err := r.db.WithContext(ctx).
		Table("sale_lines").
		Select("MAX(sales.sale_date)").
		Joins("JOIN sales ON sales.id = sale_lines.sale_id").
		Where("sale_lines.product_id = ? AND sales.store_id = ?", productID, storeID).
		Scan(&last).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return last, nil
}

// GormDeliveryRepository implements trade.DeliveryRecorder using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Record appends a delivery record
func (r *GormDeliveryRepository) Record(ctx context.Context, d *trade.Delivery) error {
	return translateDBError(r.db.WithContext(ctx).Create(d).Error)
}

// GormProductReader implements catalog.ProductReader using GORM
type GormProductReader struct {
	db *gorm.DB
}

// NewGormProductReader creates a new GormProductReader
func NewGormProductReader(db *gorm.DB) *GormProductReader {
	return &GormProductReader{db: db}
}

// FindName returns the product's display name
func (r *GormProductReader) FindName(ctx context.Context, productID uuid.UUID) (string, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Select("name").
		First(&product, "id = ?", productID).Error; err != nil {
		return "", translateDBError(err)
	}
	return product.Name, nil
}

var _ trade.SaleReader = (*GormSaleReader)(nil)
var _ trade.DeliveryRecorder = (*GormDeliveryRepository)(nil)
var _ catalog.ProductReader = (*GormProductReader)(nil)
