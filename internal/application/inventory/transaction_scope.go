package inventory

import (
	"context"

	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// stock mutation touches. Everything executed within one scope commits
// or rolls back atomically, and locking reads made inside it hold
// their row locks until the scope ends.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped
// to the current transaction. The ledger row is the only aggregate
// mutated here; the delivery record is an append-only side table kept
// in the same transaction so a received delivery and its accumulation
// are one atomic step.
type TransactionalRepositories interface {
	// InventoryRepo returns the ledger repository scoped to the current transaction
	InventoryRepo() inventory.Repository
	// DeliveryRepo returns the delivery recorder scoped to the current transaction
	DeliveryRepo() trade.DeliveryRecorder
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests with in-memory repositories.
type NoOpTransactionScope struct {
	inventoryRepo inventory.Repository
	deliveryRepo  trade.DeliveryRecorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(inventoryRepo inventory.Repository, deliveryRepo trade.DeliveryRecorder) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		inventoryRepo: inventoryRepo,
		deliveryRepo:  deliveryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InventoryRepo returns the ledger repository.
func (s *NoOpTransactionScope) InventoryRepo() inventory.Repository {
	return s.inventoryRepo
}

// DeliveryRepo returns the delivery recorder.
func (s *NoOpTransactionScope) DeliveryRepo() trade.DeliveryRecorder {
	return s.deliveryRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
