package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retail/backend/internal/domain/alert"
	"github.com/retail/backend/internal/domain/catalog"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
)

// Default alert thresholds. Stock must fall below the open threshold
// to open an alert and recover to the recovery threshold to close it;
// the gap between the two stops border flapping.
const (
	DefaultOpenThreshold     = 100
	DefaultRecoveryThreshold = 25
)

// Config tunes the restock alert manager
type Config struct {
	// WatchedStores are the stores whose ledger is monitored for
	// low stock. Unwatched stores never open alerts.
	WatchedStores []int64
	// OpenThreshold opens an alert when stock falls strictly below it
	OpenThreshold int64
	// RecoveryThreshold closes an alert when stock recovers to at least it
	RecoveryThreshold int64
}

// DefaultConfig returns the stock monitoring defaults
func DefaultConfig() Config {
	return Config{
		WatchedStores:     []int64{1, 2},
		OpenThreshold:     DefaultOpenThreshold,
		RecoveryThreshold: DefaultRecoveryThreshold,
	}
}

// Manager keeps the restock alert latch in sync with ledger movement.
// It subscribes to stock events and runs the open-check after each
// deduction and the close-check after each accumulation. Handler
// failures are logged by the bus and never reach the stock write.
type Manager struct {
	logger    *zap.Logger
	cfg       Config
	alertRepo alert.Repository
	products  catalog.ProductReader
	sales     trade.SaleReader
	watched   map[int64]struct{}
}

// NewManager creates a restock alert manager
func NewManager(logger *zap.Logger, cfg Config, alertRepo alert.Repository, products catalog.ProductReader, sales trade.SaleReader) *Manager {
	if cfg.OpenThreshold <= 0 {
		cfg.OpenThreshold = DefaultOpenThreshold
	}
	if cfg.RecoveryThreshold <= 0 {
		cfg.RecoveryThreshold = DefaultRecoveryThreshold
	}
	watched := make(map[int64]struct{}, len(cfg.WatchedStores))
	for _, storeID := range cfg.WatchedStores {
		watched[storeID] = struct{}{}
	}
	return &Manager{
		logger:    logger,
		cfg:       cfg,
		alertRepo: alertRepo,
		products:  products,
		sales:     sales,
		watched:   watched,
	}
}

// EventTypes returns the event types this handler is interested in
func (m *Manager) EventTypes() []string {
	return []string{inventory.EventTypeStockDeducted, inventory.EventTypeStockReceived}
}

// Handle routes stock events to the open- and close-checks
func (m *Manager) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockDeductedEvent:
		return m.OpenCheck(ctx, e.ProductID, e.StoreID, e.NewQuantity)
	case *inventory.StockReceivedEvent:
		return m.CloseCheck(ctx, e.ProductID, e.StoreID, e.NewQuantity)
	default:
		m.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// OpenCheck opens an alert for the pair when a watched store's stock
// has fallen below the open threshold. The latch is one-shot: an
// existing alert is left exactly as it was, snapshot included.
func (m *Manager) OpenCheck(ctx context.Context, productID uuid.UUID, storeID int64, quantity int64) error {
	if _, ok := m.watched[storeID]; !ok {
		return nil
	}
	if quantity >= m.cfg.OpenThreshold {
		return nil
	}

	// Snapshot lookups degrade instead of failing the open: a missing
	// product name or sale date is worth less than a missing alert.
	productName, err := m.products.FindName(ctx, productID)
	if err != nil {
		m.logger.Warn("product name lookup failed, opening alert without it",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		productName = ""
	}

	var lastSaleDate *time.Time
	lastSaleDate, err = m.sales.LastSaleDate(ctx, productID, storeID)
	if err != nil {
		m.logger.Warn("last sale date lookup failed, opening alert without it",
			zap.String("product_id", productID.String()),
			zap.Int64("store_id", storeID),
			zap.Error(err),
		)
		lastSaleDate = nil
	}

	a, err := alert.NewRestockAlert(productID, storeID, productName, quantity, lastSaleDate)
	if err != nil {
		return err
	}

	opened, err := m.alertRepo.CreateIfAbsent(ctx, a)
	if err != nil {
		return fmt.Errorf("open restock alert: %w", err)
	}
	if opened {
		m.logger.Warn("restock alert opened",
			zap.String("product_id", productID.String()),
			zap.Int64("store_id", storeID),
			zap.Int64("quantity", quantity),
			zap.String("product_name", productName),
		)
	}
	return nil
}

// CloseCheck closes the pair's alert once stock has recovered to the
// recovery threshold. Closing an absent alert is a no-op.
func (m *Manager) CloseCheck(ctx context.Context, productID uuid.UUID, storeID int64, quantity int64) error {
	if quantity < m.cfg.RecoveryThreshold {
		return nil
	}
	if err := m.alertRepo.DeleteByProductAndStore(ctx, productID, storeID); err != nil {
		return fmt.Errorf("close restock alert: %w", err)
	}
	return nil
}

// ReconcileSweep closes every alert whose pair has recovered. The
// per-event close-check is the primary path; the sweep catches alerts
// that outlived it (manual stock corrections, missed events).
func (m *Manager) ReconcileSweep(ctx context.Context) (int, error) {
	recovered, err := m.alertRepo.FindRecovered(ctx, m.cfg.RecoveryThreshold)
	if err != nil {
		return 0, fmt.Errorf("find recovered alerts: %w", err)
	}

	closed := 0
	for _, a := range recovered {
		if err := m.alertRepo.DeleteByProductAndStore(ctx, a.ProductID, a.StoreID); err != nil {
			m.logger.Error("failed to close recovered alert",
				zap.String("product_id", a.ProductID.String()),
				zap.Int64("store_id", a.StoreID),
				zap.Error(err),
			)
			continue
		}
		closed++
	}

	if closed > 0 {
		m.logger.Info("reconcile sweep closed recovered alerts", zap.Int("closed", closed))
	}
	return closed, nil
}

// ListOpen returns the open alerts for browsing
func (m *Manager) ListOpen(ctx context.Context, filter shared.Filter) ([]RestockAlertResponse, error) {
	alerts, err := m.alertRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]RestockAlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = RestockAlertResponse{
			ProductID:    a.ProductID,
			StoreID:      a.StoreID,
			ProductName:  a.ProductName,
			Quantity:     a.Quantity,
			LastSaleDate: a.LastSaleDate,
			OpenedAt:     a.CreatedAt,
		}
	}
	return responses, nil
}

// RestockAlertResponse is the read view of one open alert
type RestockAlertResponse struct {
	ProductID    uuid.UUID  `json:"product_id"`
	StoreID      int64      `json:"store_id"`
	ProductName  string     `json:"product_name"`
	Quantity     int64      `json:"quantity"`
	LastSaleDate *time.Time `json:"last_sale_date,omitempty"`
	OpenedAt     time.Time  `json:"opened_at"`
}

// Ensure Manager implements shared.EventHandler
var _ shared.EventHandler = (*Manager)(nil)
