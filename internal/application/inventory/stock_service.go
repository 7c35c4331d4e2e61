package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
)

// StockService owns every mutation of the inventory ledger: the
// admission gate, the sale-line commit and the delivery accumulation.
// All read-modify-writes go through the transaction scope so each
// store/product pair is serialized on its row lock.
type StockService struct {
	inventoryRepo  inventory.Repository
	saleReader     trade.SaleReader
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(inventoryRepo inventory.Repository, saleReader trade.SaleReader, txScope TransactionScope) *StockService {
	return &StockService{
		inventoryRepo: inventoryRepo,
		saleReader:    saleReader,
		txScope:       txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Admit checks whether a proposed sale line could be fulfilled from
// current stock. The read happens under the row lock so it sees no
// half-applied write, but nothing is mutated and the verdict can go
// stale the moment the lock is released: CommitSaleLine re-validates.
func (s *StockService) Admit(ctx context.Context, proposal SaleLineProposal) (*Admission, error) {
	if proposal.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrInvalidInput)
	}

	storeID, err := s.saleReader.ResolveStore(ctx, proposal.SaleID)
	if err != nil {
		return nil, fmt.Errorf("resolve store for sale %s: %w", proposal.SaleID, err)
	}

	admission := &Admission{
		StoreID:   storeID,
		ProductID: proposal.ProductID,
		Requested: proposal.Quantity,
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		row, err := repos.InventoryRepo().FindForUpdate(ctx, storeID, proposal.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			admission.Reason = RejectionNoInventoryRow
			return nil
		}
		if err != nil {
			return err
		}
		admission.OnHand = row.Quantity
		if !row.CanFulfill(proposal.Quantity) {
			admission.Reason = RejectionInsufficientStock
			return nil
		}
		admission.Allowed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// CommitSaleLine finalizes a sale line: it re-validates under the row
// lock and subtracts the sold quantity in the same transaction, so the
// on-hand quantity can never go negative no matter how the commit
// interleaves with others. The post-decrement events are published
// after the transaction commits.
func (s *StockService) CommitSaleLine(ctx context.Context, commit SaleLineCommit) (*CommitResult, error) {
	if commit.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrInvalidInput)
	}

	storeID, err := s.saleReader.ResolveStore(ctx, commit.SaleID)
	if err != nil {
		return nil, fmt.Errorf("resolve store for sale %s: %w", commit.SaleID, err)
	}

	var committed *inventory.InventoryRow
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		row, err := repos.InventoryRepo().FindForUpdate(ctx, storeID, commit.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: store %d, product %s", shared.ErrNoInventoryRow, storeID, commit.ProductID)
		}
		if err != nil {
			return err
		}
		if err := row.Deduct(commit.Quantity); err != nil {
			return err
		}
		if err := repos.InventoryRepo().Save(ctx, row); err != nil {
			return err
		}
		committed = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, committed)

	return &CommitResult{
		StoreID:   storeID,
		ProductID: commit.ProductID,
		Committed: commit.Quantity,
		Remaining: committed.Quantity,
	}, nil
}

// ReceiveDelivery merges a vendor shipment into the ledger. A first
// delivery for the pair creates the row; concurrent first deliveries
// race through ON CONFLICT DO NOTHING and the loser re-reads the
// winner's row under lock, so no increment is ever lost. The delivery
// record is appended in the same transaction.
func (s *StockService) ReceiveDelivery(ctx context.Context, receipt DeliveryReceipt) (*DeliveryResult, error) {
	if receipt.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrInvalidInput)
	}
	if receipt.StoreID <= 0 || receipt.ProductID == uuid.Nil || receipt.VendorID == uuid.Nil {
		return nil, fmt.Errorf("%w: store, product and vendor are required", shared.ErrInvalidInput)
	}

	var (
		merged  *inventory.InventoryRow
		created bool
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.InventoryRepo()

		row, err := repo.FindForUpdate(ctx, receipt.StoreID, receipt.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			fresh, nerr := inventory.NewInventoryRow(receipt.StoreID, receipt.ProductID, 0)
			if nerr != nil {
				return nerr
			}
			if cerr := repo.Create(ctx, fresh); cerr != nil {
				return cerr
			}
			// Lock whichever insert won the race.
			row, err = repo.FindForUpdate(ctx, receipt.StoreID, receipt.ProductID)
			if err == nil {
				created = row.ID == fresh.ID
			}
		}
		if err != nil {
			return err
		}

		if err := row.Accumulate(receipt.Quantity); err != nil {
			return err
		}
		if err := repo.Save(ctx, row); err != nil {
			return err
		}

		delivery, err := trade.NewDelivery(receipt.StoreID, receipt.ProductID, receipt.VendorID, receipt.Quantity, receipt.DeliveryDate)
		if err != nil {
			return err
		}
		if err := repos.DeliveryRepo().Record(ctx, delivery); err != nil {
			return err
		}

		merged = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, merged)

	return &DeliveryResult{
		StoreID:     receipt.StoreID,
		ProductID:   receipt.ProductID,
		Created:     created,
		NewQuantity: merged.Quantity,
	}, nil
}

// GetRow returns the current ledger row for a store/product pair
func (s *StockService) GetRow(ctx context.Context, storeID int64, productID uuid.UUID) (*RowResponse, error) {
	row, err := s.inventoryRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	return &RowResponse{
		StoreID:   row.StoreID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// ListRows returns ledger rows for browsing
func (s *StockService) ListRows(ctx context.Context, filter shared.Filter) ([]RowResponse, error) {
	rows, err := s.inventoryRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]RowResponse, len(rows))
	for i, row := range rows {
		responses[i] = RowResponse{
			StoreID:   row.StoreID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return responses, nil
}

// publishDomainEvents publishes the aggregate's buffered events after
// the mutating transaction has committed. Publish failures are
// swallowed here; the bus logs per-handler errors and alert
// bookkeeping must never fail the stock write.
func (s *StockService) publishDomainEvents(ctx context.Context, row *inventory.InventoryRow) {
	if s.eventPublisher == nil || row == nil {
		return
	}
	events := row.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	row.ClearDomainEvents()
}
