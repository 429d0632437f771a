package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// InvoiceStatus represents the status of a purchase invoice
type InvoiceStatus string

const (
	InvoiceStatusRecorded InvoiceStatus = "RECORDED"
	InvoiceStatusVoided   InvoiceStatus = "VOIDED"
)

// InvoiceItem is one line of a purchase invoice. Each recorded line seeds
// one purchase batch in the costing engine, keyed by the invoice date.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "purchase_invoice_items"
}

// Invoice is the aggregate root for a supplier purchase. Its total is
// owed to the supplier as Accounts Payable until settled; supplier
// returns reduce the payable. The invariant
//
//	outstanding payable == total - returned
//
// holds at all times and is checked when supplier returns are approved.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	SupplierName   string          `gorm:"type:varchar(200);not null"`
	InvoiceDate    time.Time       `gorm:"not null;index"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;references:ID"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'RECORDED'"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "purchase_invoices"
}

// NewInvoice creates a new purchase invoice
func NewInvoice(tenantID uuid.UUID, invoiceNumber, supplierName string, invoiceDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		SupplierName:        supplierName,
		InvoiceDate:         invoiceDate,
		Items:               make([]InvoiceItem, 0),
		TotalAmount:         decimal.Zero,
		ReturnedAmount:      decimal.Zero,
		Status:              InvoiceStatusRecorded,
	}, nil
}

// AddItem adds a purchase line to the invoice
func (inv *Invoice) AddItem(productID uuid.UUID, variantID *uuid.UUID, quantity, unitCost decimal.Decimal) (*InvoiceItem, error) {
	if inv.Status != InvoiceStatusRecorded {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a voided invoice")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	item := InvoiceItem{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		LineTotal: quantity.Mul(unitCost),
		CreatedAt: now,
		UpdatedAt: now,
	}
	inv.Items = append(inv.Items, item)
	inv.TotalAmount = inv.TotalAmount.Add(item.LineTotal)
	inv.UpdatedAt = now

	return &item, nil
}

// OutstandingPayable returns what is still owed to the supplier
func (inv *Invoice) OutstandingPayable() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.ReturnedAmount)
}

// RecordSupplierReturn reduces the payable by the returned value
func (inv *Invoice) RecordSupplierReturn(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_RETURN_AMOUNT", "Return amount must be positive")
	}
	if amount.GreaterThan(inv.OutstandingPayable()) {
		return shared.NewDomainError("RETURN_EXCEEDS_PAYABLE", "Return amount exceeds outstanding payable for this invoice")
	}
	inv.ReturnedAmount = inv.ReturnedAmount.Add(amount)
	inv.UpdatedAt = time.Now()
	return nil
}

// VerifyPayable checks the payable invariant against an externally
// computed ledger balance for this invoice.
func (inv *Invoice) VerifyPayable(ledgerBalance decimal.Decimal) error {
	if !ledgerBalance.Equal(inv.OutstandingPayable()) {
		return shared.NewDomainError("PAYABLE_MISMATCH",
			"Ledger payable balance does not match invoice total minus returns")
	}
	return nil
}

// Void marks the invoice as voided. Only allowed before any supplier return.
func (inv *Invoice) Void() error {
	if inv.Status != InvoiceStatusRecorded {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already voided")
	}
	if inv.ReturnedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_STATE", "Cannot void an invoice with supplier returns")
	}
	inv.Status = InvoiceStatusVoided
	inv.UpdatedAt = time.Now()
	return nil
}
