package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/catalog"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormSaleReader_ResolveStore(t *testing.T) {
	db := newSQLiteDB(t, &trade.Sale{}, &trade.SaleLine{})
	reader := NewGormSaleReader(db)
	ctx := context.Background()

	sale := &trade.Sale{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    2,
		SaleDate:   time.Now(),
	}
	require.NoError(t, db.Create(sale).Error)

	storeID, err := reader.ResolveStore(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), storeID)

	_, err = reader.ResolveStore(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSaleReader_LastSaleDate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	reader := NewGormSaleReader(gormDB)

	productID := uuid.New()

	t.Run("returns most recent sale date", func(t *testing.T) {
		lastSale := time.Date(2026, 7, 14, 10, 30, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT MAX\(sales\.sale_date\) FROM "sale_lines" JOIN sales ON sales\.id = sale_lines\.sale_id`).
			WithArgs(productID, int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(lastSale))

		got, err := reader.LastSaleDate(context.Background(), productID, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(lastSale))
	})

	t.Run("returns nil when the pair never sold", func(t *testing.T) {
		mock.ExpectQuery(`SELECT MAX\(sales\.sale_date\) FROM "sale_lines" JOIN sales ON sales\.id = sale_lines\.sale_id`).
			WithArgs(productID, int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		got, err := reader.LastSaleDate(context.Background(), productID, 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeliveryRepository_Record(t *testing.T) {
	db := newSQLiteDB(t, &trade.Delivery{})
	repo := NewGormDeliveryRepository(db)

	d, err := trade.NewDelivery(1, uuid.New(), uuid.New(), 25, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Record(context.Background(), d))

	var count int64
	require.NoError(t, db.Model(&trade.Delivery{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormProductReader_FindName(t *testing.T) {
	db := newSQLiteDB(t, &catalog.Product{})
	reader := NewGormProductReader(db)
	ctx := context.Background()

	product := &catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       "Espresso Beans 1kg",
		SKU:        "SKU-001",
	}
	require.NoError(t, db.Create(product).Error)

	name, err := reader.FindName(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espresso Beans 1kg", name)

	_, err = reader.FindName(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
