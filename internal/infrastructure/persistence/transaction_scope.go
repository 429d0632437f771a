package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/purchase"
	"github.com/merchantry/backend/internal/domain/returns"
)

// GormTransactionScope implements unitofwork.TransactionScope using GORM
// transactions. Every repository handed to the callback shares the same
// database transaction, so an order transition that touches the order,
// inventory and the ledger commits or rolls back as one unit.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos unitofwork.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories provides access to all repositories within one transaction
type gormRepositories struct {
	tx *gorm.DB
}

// Orders returns the order repository scoped to the current transaction
func (r *gormRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction
func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Batches returns the purchase batch repository scoped to the current transaction
func (r *gormRepositories) Batches() inventory.PurchaseBatchRepository {
	return NewGormPurchaseBatchRepository(r.tx)
}

// Allocations returns the batch allocation repository scoped to the current transaction
func (r *gormRepositories) Allocations() inventory.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

// Accounts returns the ledger account repository scoped to the current transaction
func (r *gormRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// Transactions returns the ledger transaction repository scoped to the current transaction
func (r *gormRepositories) Transactions() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// Companies returns the logistics company repository scoped to the current transaction
func (r *gormRepositories) Companies() logistics.CompanyRepository {
	return NewGormCompanyRepository(r.tx)
}

// Invoices returns the purchase invoice repository scoped to the current transaction
func (r *gormRepositories) Invoices() purchase.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Returns returns the return repository scoped to the current transaction
func (r *gormRepositories) Returns() returns.Repository {
	return NewGormReturnRepository(r.tx)
}

// Customers returns the customer repository scoped to the current transaction
func (r *gormRepositories) Customers() customer.Repository {
	return NewGormCustomerRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ unitofwork.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ unitofwork.Repositories = (*gormRepositories)(nil)
