package unitofwork

import (
	"context"

	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/purchase"
	"github.com/merchantry/backend/internal/domain/returns"
)

// TransactionScope provides transactional access to the repositories an
// order-lifecycle operation touches. When a function executes within a
// scope, every repository operation joins the same database transaction
// and commits or rolls back atomically. A state transition that updates
// the order, mutates inventory and posts ledger entries either applies in
// full or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all repositories within one transaction.
// Everything returned shares the same underlying database transaction.
type Repositories interface {
	Orders() order.Repository
	Products() catalog.ProductRepository
	Batches() inventory.PurchaseBatchRepository
	Allocations() inventory.AllocationRepository
	Accounts() ledger.AccountRepository
	Transactions() ledger.TransactionRepository
	Companies() logistics.CompanyRepository
	Invoices() purchase.InvoiceRepository
	Returns() returns.Repository
	Customers() customer.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used by unit tests against in-memory repositories.
type NoOpTransactionScope struct {
	orders      order.Repository
	products    catalog.ProductRepository
	batches     inventory.PurchaseBatchRepository
	allocations inventory.AllocationRepository
	accounts    ledger.AccountRepository
	txns        ledger.TransactionRepository
	companies   logistics.CompanyRepository
	invoices    purchase.InvoiceRepository
	rets        returns.Repository
	customers   customer.Repository
}

// NoOpRepositories bundles the repositories for a NoOpTransactionScope
type NoOpRepositories struct {
	OrderRepo       order.Repository
	ProductRepo     catalog.ProductRepository
	BatchRepo       inventory.PurchaseBatchRepository
	AllocationRepo  inventory.AllocationRepository
	AccountRepo     ledger.AccountRepository
	TransactionRepo ledger.TransactionRepository
	CompanyRepo     logistics.CompanyRepository
	InvoiceRepo     purchase.InvoiceRepository
	ReturnRepo      returns.Repository
	CustomerRepo    customer.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(repos NoOpRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:      repos.OrderRepo,
		products:    repos.ProductRepo,
		batches:     repos.BatchRepo,
		allocations: repos.AllocationRepo,
		accounts:    repos.AccountRepo,
		txns:        repos.TransactionRepo,
		companies:   repos.CompanyRepo,
		invoices:    repos.InvoiceRepo,
		rets:        repos.ReturnRepo,
		customers:   repos.CustomerRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() order.Repository { return s.orders }

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Batches returns the purchase batch repository
func (s *NoOpTransactionScope) Batches() inventory.PurchaseBatchRepository { return s.batches }

// Allocations returns the batch allocation repository
func (s *NoOpTransactionScope) Allocations() inventory.AllocationRepository { return s.allocations }

// Accounts returns the ledger account repository
func (s *NoOpTransactionScope) Accounts() ledger.AccountRepository { return s.accounts }

// Transactions returns the ledger transaction repository
func (s *NoOpTransactionScope) Transactions() ledger.TransactionRepository { return s.txns }

// Companies returns the logistics company repository
func (s *NoOpTransactionScope) Companies() logistics.CompanyRepository { return s.companies }

// Invoices returns the purchase invoice repository
func (s *NoOpTransactionScope) Invoices() purchase.InvoiceRepository { return s.invoices }

// Returns returns the return repository
func (s *NoOpTransactionScope) Returns() returns.Repository { return s.rets }

// Customers returns the customer repository
func (s *NoOpTransactionScope) Customers() customer.Repository { return s.customers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
