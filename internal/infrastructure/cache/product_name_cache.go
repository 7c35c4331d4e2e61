package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// DefaultNameTTL is how long a cached product name stays valid.
// Product names change rarely; staleness here only affects alert snapshots.
const DefaultNameTTL = 15 * time.Minute

// NameCache stores product names keyed by product id
type NameCache interface {
	Get(ctx context.Context, productID uuid.UUID) (name string, found bool, err error)
	Set(ctx context.Context, productID uuid.UUID, name string, ttl time.Duration) error
	Close() error
}

// CachingProductReader decorates a catalog.ProductReader with a name
// cache. Cache failures degrade to the underlying reader and are logged,
// never returned.
type CachingProductReader struct {
	inner  catalog.ProductReader
	cache  NameCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingProductReader creates a caching decorator around reader
func NewCachingProductReader(inner catalog.ProductReader, cache NameCache, ttl time.Duration, logger *zap.Logger) *CachingProductReader {
	if ttl <= 0 {
		ttl = DefaultNameTTL
	}
	return &CachingProductReader{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// FindName returns the product name, consulting the cache first
func (r *CachingProductReader) FindName(ctx context.Context, productID uuid.UUID) (string, error) {
	name, found, err := r.cache.Get(ctx, productID)
	if err != nil {
		r.logger.Warn("product name cache read failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	} else if found {
		return name, nil
	}

	name, err = r.inner.FindName(ctx, productID)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, productID, name, r.ttl); err != nil {
		r.logger.Warn("product name cache write failed",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
	return name, nil
}

var _ catalog.ProductReader = (*CachingProductReader)(nil)
