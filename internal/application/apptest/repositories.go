// Package apptest provides in-memory repository implementations and a
// transaction scope for application-service tests. The fakes keep the
// interface contracts the persistence layer promises: tenant scoping,
// optimistic version checks, FIFO batch ordering and the unique
// tenant+code constraint on accounts.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	"github.com/merchantry/backend/internal/domain/shared"
)

// Fixture bundles in-memory repositories behind a no-op transaction scope
type Fixture struct {
	OrderRepo       *OrderRepo
	ProductRepo     *ProductRepo
	BatchRepo       *BatchRepo
	AllocationRepo  *AllocationRepo
	AccountRepo     *AccountRepo
	TransactionRepo *TransactionRepo
	CompanyRepo     *CompanyRepo
	InvoiceRepo     *InvoiceRepo
	ReturnRepo      *ReturnRepo
	CustomerRepo    *CustomerRepo
}

// NewFixture creates a fixture with empty repositories
func NewFixture() *Fixture {
	return &Fixture{
		OrderRepo:       &OrderRepo{items: map[uuid.UUID]*order.Order{}},
		ProductRepo:     &ProductRepo{items: map[uuid.UUID]*catalog.Product{}},
		BatchRepo:       &BatchRepo{items: map[uuid.UUID]*inventory.PurchaseBatch{}},
		AllocationRepo:  &AllocationRepo{},
		AccountRepo:     &AccountRepo{items: map[uuid.UUID]*ledger.Account{}},
		TransactionRepo: &TransactionRepo{},
		CompanyRepo:     &CompanyRepo{items: map[uuid.UUID]*logistics.LogisticsCompany{}},
		InvoiceRepo:     &InvoiceRepo{items: map[uuid.UUID]*purchase.Invoice{}},
		ReturnRepo:      &ReturnRepo{items: map[uuid.UUID]*returns.Return{}},
		CustomerRepo:    &CustomerRepo{items: map[uuid.UUID]*customer.Customer{}},
	}
}

// Scope returns a transaction scope over the fixture's repositories
func (f *Fixture) Scope() unitofwork.TransactionScope {
	return unitofwork.NewNoOpTransactionScope(unitofwork.NoOpRepositories{
		OrderRepo:       f.OrderRepo,
		ProductRepo:     f.ProductRepo,
		BatchRepo:       f.BatchRepo,
		AllocationRepo:  f.AllocationRepo,
		AccountRepo:     f.AccountRepo,
		TransactionRepo: f.TransactionRepo,
		CompanyRepo:     f.CompanyRepo,
		InvoiceRepo:     f.InvoiceRepo,
		ReturnRepo:      f.ReturnRepo,
		CustomerRepo:    f.CustomerRepo,
	})
}

// AccountBalance returns the balance of an account by code, zero when the
// account was never created
func (f *Fixture) AccountBalance(tenantID uuid.UUID, code string) decimal.Decimal {
	account, err := f.AccountRepo.FindByCode(context.Background(), tenantID, code)
	if err != nil {
		return decimal.Zero
	}
	return account.Balance
}

func checkVersion(stored, incoming shared.AggregateRoot) error {
	if stored != nil && stored.GetVersion() != incoming.GetVersion() {
		return shared.ErrConcurrentModification
	}
	incoming.IncrementVersion()
	return nil
}

// OrderRepo is an in-memory order.Repository
type OrderRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*order.Order
}

func (r *OrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[o.ID] = o
	return nil
}

func (r *OrderRepo) SaveWithLock(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[o.ID]; ok && stored != o {
		if err := checkVersion(stored, o); err != nil {
			return err
		}
	} else {
		o.IncrementVersion()
	}
	r.items[o.ID] = o
	return nil
}

func (r *OrderRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok || o.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.items {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *OrderRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status order.OrderStatus, limit, offset int) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*order.Order
	for _, o := range r.items {
		if o.TenantID == tenantID && o.Status == status {
			found = append(found, o)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	if offset >= len(found) {
		return nil, nil
	}
	found = found[offset:]
	if limit < len(found) {
		found = found[:limit]
	}
	return found, nil
}

func (r *OrderRepo) FindDispatchedInPeriod(_ context.Context, tenantID uuid.UUID, from, to time.Time) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*order.Order
	for _, o := range r.items {
		if o.TenantID != tenantID || o.DispatchedAt == nil {
			continue
		}
		if o.DispatchedAt.Before(from) || !o.DispatchedAt.Before(to) {
			continue
		}
		found = append(found, o)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].DispatchedAt.Before(*found[j].DispatchedAt) })
	return found, nil
}

func (r *OrderRepo) CountByStatus(_ context.Context, tenantID uuid.UUID, status order.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, o := range r.items {
		if o.TenantID == tenantID && o.Status == status {
			count++
		}
	}
	return count, nil
}

// ProductRepo is an in-memory catalog.ProductRepository
type ProductRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*catalog.Product
}

func (r *ProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[product.ID] = product
	return nil
}

func (r *ProductRepo) SaveWithLock(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[product.ID]; ok && stored != product {
		if err := checkVersion(stored, product); err != nil {
			return err
		}
	} else {
		product.IncrementVersion()
	}
	r.items[product.ID] = product
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.TenantID == tenantID && p.Code == strings.ToUpper(code) {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *ProductRepo) FindAll(_ context.Context, tenantID uuid.UUID, includeInactive bool) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*catalog.Product
	for _, p := range r.items {
		if p.TenantID != tenantID {
			continue
		}
		if !includeInactive && !p.IsActive() {
			continue
		}
		found = append(found, p)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Code < found[j].Code })
	return found, nil
}

func (r *ProductRepo) FindVariantByID(_ context.Context, tenantID, variantID uuid.UUID) (*catalog.ProductVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.TenantID != tenantID {
			continue
		}
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				return &p.Variants[i], nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *ProductRepo) AdjustQuantity(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[productID]
	if !ok || p.TenantID != tenantID {
		return shared.ErrNotFound
	}
	if variantID == nil {
		p.CurrentQuantity = p.CurrentQuantity.Add(delta)
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].ID == *variantID {
			p.Variants[i].CurrentQuantity = p.Variants[i].CurrentQuantity.Add(delta)
			p.CurrentQuantity = p.CurrentQuantity.Add(delta)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *ProductRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// BatchRepo is an in-memory inventory.PurchaseBatchRepository
type BatchRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*inventory.PurchaseBatch
}

func (r *BatchRepo) Save(_ context.Context, batch *inventory.PurchaseBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[batch.ID] = batch
	return nil
}

func (r *BatchRepo) SaveAll(ctx context.Context, batches []*inventory.PurchaseBatch) error {
	for _, b := range batches {
		if err := r.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *BatchRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.PurchaseBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *BatchRepo) FindForProduct(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]inventory.PurchaseBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []inventory.PurchaseBatch
	for _, b := range r.items {
		if b.TenantID != tenantID || b.ProductID != productID || b.DeletedAt.Valid {
			continue
		}
		if !sameVariant(b.VariantID, variantID) {
			continue
		}
		found = append(found, *b)
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].InvoiceDate.Equal(found[j].InvoiceDate) {
			return found[i].InvoiceDate.Before(found[j].InvoiceDate)
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	return found, nil
}

func (r *BatchRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]inventory.PurchaseBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []inventory.PurchaseBatch
	for _, b := range r.items {
		if b.TenantID == tenantID && b.PurchaseInvoiceID != nil && *b.PurchaseInvoiceID == invoiceID {
			found = append(found, *b)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].BatchNumber < found[j].BatchNumber })
	return found, nil
}

func (r *BatchRepo) FindSoldInPeriod(_ context.Context, tenantID uuid.UUID, from, to time.Time) ([]inventory.PurchaseBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []inventory.PurchaseBatch
	for _, b := range r.items {
		if b.TenantID != tenantID || !b.QuantitySold.IsPositive() {
			continue
		}
		if b.UpdatedAt.Before(from) || !b.UpdatedAt.Before(to) {
			continue
		}
		found = append(found, *b)
	}
	return found, nil
}

func (r *BatchRepo) SoftDelete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok || b.TenantID != tenantID {
		return shared.ErrNotFound
	}
	b.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

// AllocationRepo is an in-memory inventory.AllocationRepository. Insertion
// order doubles as the oldest-first order FindByOrder promises.
type AllocationRepo struct {
	mu    sync.Mutex
	items []*inventory.BatchAllocation
}

func (r *AllocationRepo) Save(_ context.Context, allocation *inventory.BatchAllocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.items {
		if a.ID == allocation.ID {
			r.items[i] = allocation
			return nil
		}
	}
	r.items = append(r.items, allocation)
	return nil
}

func (r *AllocationRepo) SaveAll(ctx context.Context, allocations []*inventory.BatchAllocation) error {
	for _, a := range allocations {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *AllocationRepo) FindByOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]*inventory.BatchAllocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*inventory.BatchAllocation
	for _, a := range r.items {
		if a.TenantID == tenantID && a.OrderID != nil && *a.OrderID == orderID {
			found = append(found, a)
		}
	}
	return found, nil
}

func (r *AllocationRepo) FindByBatch(_ context.Context, tenantID, batchID uuid.UUID) ([]*inventory.BatchAllocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*inventory.BatchAllocation
	for _, a := range r.items {
		if a.TenantID == tenantID && a.BatchID == batchID {
			found = append(found, a)
		}
	}
	return found, nil
}

// AccountRepo is an in-memory ledger.AccountRepository enforcing the
// tenant+code unique constraint
type AccountRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*ledger.Account
}

func (r *AccountRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.TenantID == tenantID && a.Code == code {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *AccountRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *AccountRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []ledger.Account
	for _, a := range r.items {
		if a.TenantID == tenantID {
			found = append(found, *a)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Code < found[j].Code })
	return found, nil
}

func (r *AccountRepo) Create(_ context.Context, account *ledger.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.TenantID == account.TenantID && a.Code == account.Code {
			return shared.ErrAlreadyExists
		}
	}
	r.items[account.ID] = account
	return nil
}

func (r *AccountRepo) AdjustBalance(_ context.Context, tenantID, accountID uuid.UUID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[accountID]
	if !ok || a.TenantID != tenantID {
		return shared.ErrNotFound
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

// TransactionRepo is an in-memory append-only ledger.TransactionRepository
type TransactionRepo struct {
	mu    sync.Mutex
	items []*ledger.Transaction
}

// All returns every stored transaction in posting order
func (r *TransactionRepo) All() []*ledger.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ledger.Transaction(nil), r.items...)
}

func (r *TransactionRepo) Save(_ context.Context, txn *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, txn)
	return nil
}

func (r *TransactionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.TenantID == tenantID && t.ID == id {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *TransactionRepo) FindBySource(_ context.Context, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []ledger.Transaction
	for _, t := range r.items {
		if t.TenantID == tenantID && t.SourceType == sourceType && t.SourceID != nil && *t.SourceID == sourceID {
			found = append(found, *t)
		}
	}
	return found, nil
}

func (r *TransactionRepo) FindBySourceAndKind(_ context.Context, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID, kind ledger.EntryKind) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []ledger.Transaction
	for _, t := range r.items {
		if t.TenantID == tenantID && t.SourceType == sourceType && t.SourceID != nil && *t.SourceID == sourceID && t.EntryKind == kind {
			found = append(found, *t)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].VarianceEpisode != found[j].VarianceEpisode {
			return found[i].VarianceEpisode < found[j].VarianceEpisode
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	return found, nil
}

func (r *TransactionRepo) FindByPeriod(_ context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []ledger.Transaction
	for _, t := range r.items {
		if t.TenantID != tenantID {
			continue
		}
		if t.TransactionDate.Before(from) || t.TransactionDate.After(to) {
			continue
		}
		found = append(found, *t)
	}
	return found, nil
}

func (r *TransactionRepo) ExistsReversalOf(_ context.Context, tenantID, transactionID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.items {
		if t.TenantID == tenantID && t.ReversesTransactionID != nil && *t.ReversesTransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

// CompanyRepo is an in-memory logistics.CompanyRepository
type CompanyRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*logistics.LogisticsCompany
}

func (r *CompanyRepo) Save(_ context.Context, company *logistics.LogisticsCompany) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[company.ID] = company
	return nil
}

func (r *CompanyRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*logistics.LogisticsCompany, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *CompanyRepo) FindAll(_ context.Context, tenantID uuid.UUID, activeOnly bool) ([]*logistics.LogisticsCompany, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*logistics.LogisticsCompany
	for _, c := range r.items {
		if c.TenantID != tenantID {
			continue
		}
		if activeOnly && !c.Active {
			continue
		}
		found = append(found, c)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// InvoiceRepo is an in-memory purchase.InvoiceRepository
type InvoiceRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*purchase.Invoice
}

func (r *InvoiceRepo) Save(_ context.Context, invoice *purchase.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[invoice.ID] = invoice
	return nil
}

func (r *InvoiceRepo) SaveWithLock(_ context.Context, invoice *purchase.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[invoice.ID]; ok && stored != invoice {
		if err := checkVersion(stored, invoice); err != nil {
			return err
		}
	} else {
		invoice.IncrementVersion()
	}
	r.items[invoice.ID] = invoice
	return nil
}

func (r *InvoiceRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*purchase.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.items[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *InvoiceRepo) FindByInvoiceNumber(_ context.Context, tenantID uuid.UUID, invoiceNumber string) (*purchase.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.items {
		if inv.TenantID == tenantID && inv.InvoiceNumber == invoiceNumber {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *InvoiceRepo) FindAll(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*purchase.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*purchase.Invoice
	for _, inv := range r.items {
		if inv.TenantID == tenantID {
			found = append(found, inv)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	if offset >= len(found) {
		return nil, nil
	}
	found = found[offset:]
	if limit > 0 && limit < len(found) {
		found = found[:limit]
	}
	return found, nil
}

// ReturnRepo is an in-memory returns.Repository
type ReturnRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*returns.Return
}

func (r *ReturnRepo) Save(_ context.Context, ret *returns.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ret.ID] = ret
	return nil
}

func (r *ReturnRepo) SaveWithLock(_ context.Context, ret *returns.Return) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[ret.ID]; ok && stored != ret {
		if err := checkVersion(stored, ret); err != nil {
			return err
		}
	} else {
		ret.IncrementVersion()
	}
	r.items[ret.ID] = ret
	return nil
}

func (r *ReturnRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*returns.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.items[id]
	if !ok || ret.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return ret, nil
}

func (r *ReturnRepo) FindByOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]*returns.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*returns.Return
	for _, ret := range r.items {
		if ret.TenantID == tenantID && ret.OrderID != nil && *ret.OrderID == orderID {
			found = append(found, ret)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return found, nil
}

func (r *ReturnRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]*returns.Return, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*returns.Return
	for _, ret := range r.items {
		if ret.TenantID == tenantID && ret.PurchaseInvoiceID != nil && *ret.PurchaseInvoiceID == invoiceID {
			found = append(found, ret)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.Before(found[j].CreatedAt) })
	return found, nil
}

func (r *ReturnRepo) SumApprovedRefundsInPeriod(_ context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, ret := range r.items {
		if ret.TenantID != tenantID || !ret.Type.IsCustomer() || ret.ApprovedAt == nil {
			continue
		}
		if ret.Status != returns.ReturnStatusApproved && ret.Status != returns.ReturnStatusRefunded {
			continue
		}
		if ret.ApprovedAt.Before(from) || !ret.ApprovedAt.Before(to) {
			continue
		}
		total = total.Add(ret.RefundAmount)
	}
	return total, nil
}

// CustomerRepo is an in-memory customer.Repository
type CustomerRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*customer.Customer
}

func (r *CustomerRepo) Save(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
	return nil
}

func (r *CustomerRepo) SaveWithLock(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[c.ID]; ok && stored != c {
		if err := checkVersion(stored, c); err != nil {
			return err
		}
	} else {
		c.IncrementVersion()
	}
	r.items[c.ID] = c
	return nil
}

func (r *CustomerRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *CustomerRepo) FindByPhone(_ context.Context, tenantID uuid.UUID, phone string) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.TenantID == tenantID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func sameVariant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var (
	_ order.Repository                  = (*OrderRepo)(nil)
	_ catalog.ProductRepository         = (*ProductRepo)(nil)
	_ inventory.PurchaseBatchRepository = (*BatchRepo)(nil)
	_ inventory.AllocationRepository    = (*AllocationRepo)(nil)
	_ ledger.AccountRepository          = (*AccountRepo)(nil)
	_ ledger.TransactionRepository      = (*TransactionRepo)(nil)
	_ logistics.CompanyRepository       = (*CompanyRepo)(nil)
	_ purchase.InvoiceRepository        = (*InvoiceRepo)(nil)
	_ returns.Repository                = (*ReturnRepo)(nil)
	_ customer.Repository               = (*CustomerRepo)(nil)
)
