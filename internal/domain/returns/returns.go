package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// ReturnType distinguishes customer returns from supplier returns
type ReturnType string

const (
	ReturnTypeCustomerFull    ReturnType = "CUSTOMER_FULL"
	ReturnTypeCustomerPartial ReturnType = "CUSTOMER_PARTIAL"
	ReturnTypeSupplier        ReturnType = "SUPPLIER"
)

// IsValid checks if the return type is valid
func (t ReturnType) IsValid() bool {
	switch t {
	case ReturnTypeCustomerFull, ReturnTypeCustomerPartial, ReturnTypeSupplier:
		return true
	}
	return false
}

// IsCustomer reports whether this is a customer-side return
func (t ReturnType) IsCustomer() bool {
	return t == ReturnTypeCustomerFull || t == ReturnTypeCustomerPartial
}

// ReturnStatus represents the lifecycle stage of a return
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"
	ReturnStatusApproved ReturnStatus = "APPROVED"
	ReturnStatusRefunded ReturnStatus = "REFUNDED"
	ReturnStatusRejected ReturnStatus = "REJECTED"
)

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusPending:
		return target == ReturnStatusApproved || target == ReturnStatusRejected
	case ReturnStatusApproved:
		return target == ReturnStatusRefunded
	case ReturnStatusRefunded, ReturnStatusRejected:
		return false // Terminal states
	}
	return false
}

// ShippingPolicy controls how the original shipping charge affects the refund
type ShippingPolicy string

const (
	// ShippingPolicyFullRefund adds the shipping charge to the refund
	ShippingPolicyFullRefund ShippingPolicy = "FULL_REFUND"
	// ShippingPolicyCustomerPays deducts the shipping charge from the refund
	ShippingPolicyCustomerPays ShippingPolicy = "CUSTOMER_PAYS"
	// ShippingPolicyDeductFromAdvance draws the shipping charge from the
	// customer's advance balance, refunding any shortfall in cash
	ShippingPolicyDeductFromAdvance ShippingPolicy = "DEDUCT_FROM_ADVANCE"
)

// IsValid checks if the shipping policy is valid
func (p ShippingPolicy) IsValid() bool {
	switch p {
	case ShippingPolicyFullRefund, ShippingPolicyCustomerPays, ShippingPolicyDeductFromAdvance:
		return true
	}
	return false
}

// RefundMethod selects which account settles the refund
type RefundMethod string

const (
	RefundMethodCash    RefundMethod = "CASH"
	RefundMethodBank    RefundMethod = "BANK"
	RefundMethodAdvance RefundMethod = "ADVANCE_BALANCE"
)

// IsValid checks if the refund method is valid
func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodCash, RefundMethodBank, RefundMethodAdvance:
		return true
	}
	return false
}

// ReturnItem is one returned line, pointing back at the order line or
// purchase batch it reverses.
type ReturnItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReturnID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID   *uuid.UUID      `gorm:"type:uuid"`
	OrderItemID *uuid.UUID      `gorm:"type:uuid"`
	BatchID     *uuid.UUID      `gorm:"type:uuid"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (ReturnItem) TableName() string {
	return "return_items"
}

// Return is the aggregate root for a return request. Customer returns
// reference the order they reverse; supplier returns reference the
// purchase invoice. Ledger and inventory effects are orchestrated by the
// application service on approval and refund.
type Return struct {
	shared.TenantAggregateRoot
	ReturnNumber      string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_return_tenant_number,priority:2"`
	Type              ReturnType     `gorm:"type:varchar(20);not null"`
	Status            ReturnStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	OrderID           *uuid.UUID     `gorm:"type:uuid;index"`
	PurchaseInvoiceID *uuid.UUID     `gorm:"type:uuid;index"`
	CustomerID        *uuid.UUID     `gorm:"type:uuid"`
	Items             []ReturnItem   `gorm:"foreignKey:ReturnID;references:ID"`
	ShippingPolicy    ShippingPolicy `gorm:"type:varchar(30)"`
	ShippingCharges   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProductsValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundMethod      RefundMethod    `gorm:"type:varchar(20)"`
	Reason            string          `gorm:"type:varchar(500)"`
	ApprovedAt        *time.Time
	RefundedAt        *time.Time
	RejectedAt        *time.Time
}

// TableName returns the table name for GORM
func (Return) TableName() string {
	return "returns"
}

// NewCustomerReturn creates a return against an order. ShippingCharges is
// the order's original shipping amount, used by the shipping policy when
// computing the refund.
func NewCustomerReturn(tenantID uuid.UUID, returnNumber string, returnType ReturnType, orderID uuid.UUID, customerID *uuid.UUID, policy ShippingPolicy, shippingCharges decimal.Decimal, reason string) (*Return, error) {
	if !returnType.IsCustomer() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", "Customer return requires a customer return type")
	}
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer return requires an order")
	}
	if !policy.IsValid() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_POLICY", "Invalid shipping charge policy")
	}
	if shippingCharges.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_CHARGES", "Shipping charges cannot be negative")
	}

	return &Return{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		Type:                returnType,
		Status:              ReturnStatusPending,
		OrderID:             &orderID,
		CustomerID:          customerID,
		Items:               make([]ReturnItem, 0),
		ShippingPolicy:      policy,
		ShippingCharges:     shippingCharges,
		ProductsValue:       decimal.Zero,
		RefundAmount:        decimal.Zero,
		Reason:              reason,
	}, nil
}

// NewSupplierReturn creates a return of purchased stock against an invoice
func NewSupplierReturn(tenantID uuid.UUID, returnNumber string, invoiceID uuid.UUID, reason string) (*Return, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Supplier return requires a purchase invoice")
	}

	return &Return{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		Type:                ReturnTypeSupplier,
		Status:              ReturnStatusPending,
		PurchaseInvoiceID:   &invoiceID,
		Items:               make([]ReturnItem, 0),
		ProductsValue:       decimal.Zero,
		RefundAmount:        decimal.Zero,
		Reason:              reason,
	}, nil
}

// AddItem adds a returned line. Only allowed while PENDING. For customer
// returns, unitPrice is the order line's selling price; for supplier
// returns it is the batch's unit cost.
func (r *Return) AddItem(productID uuid.UUID, variantID, orderItemID, batchID *uuid.UUID, quantity, unitPrice decimal.Decimal) (*ReturnItem, error) {
	if r.Status != ReturnStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a processed return")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if r.Type.IsCustomer() && orderItemID == nil {
		return nil, shared.NewDomainError("INVALID_ITEM_REFERENCE", "Customer return items must reference an order line")
	}
	if r.Type == ReturnTypeSupplier && batchID == nil {
		return nil, shared.NewDomainError("INVALID_ITEM_REFERENCE", "Supplier return items must reference a purchase batch")
	}

	now := time.Now()
	item := ReturnItem{
		ID:          uuid.New(),
		ReturnID:    r.ID,
		ProductID:   productID,
		VariantID:   variantID,
		OrderItemID: orderItemID,
		BatchID:     batchID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Items = append(r.Items, item)
	r.ProductsValue = r.ProductsValue.Add(item.LineTotal)
	r.UpdatedAt = now

	return &item, nil
}

// ComputeRefund derives the refund owed for a customer return from the
// products value and the shipping policy. advanceAvailable is the
// customer's current advance balance, consulted only by the
// DEDUCT_FROM_ADVANCE policy. It returns the cash refund and the portion
// drawn from the advance.
func (r *Return) ComputeRefund(advanceAvailable decimal.Decimal) (cashRefund, advanceDrawn decimal.Decimal, err error) {
	if !r.Type.IsCustomer() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_RETURN_TYPE", "Refund computation applies to customer returns only")
	}

	switch r.ShippingPolicy {
	case ShippingPolicyFullRefund:
		return r.ProductsValue.Add(r.ShippingCharges), decimal.Zero, nil

	case ShippingPolicyCustomerPays:
		refund := r.ProductsValue.Sub(r.ShippingCharges)
		if refund.IsNegative() {
			refund = decimal.Zero
		}
		return refund, decimal.Zero, nil

	case ShippingPolicyDeductFromAdvance:
		drawn := decimal.Min(r.ShippingCharges, advanceAvailable)
		shortfall := r.ShippingCharges.Sub(drawn)
		refund := r.ProductsValue.Sub(shortfall)
		if refund.IsNegative() {
			refund = decimal.Zero
		}
		return refund, drawn, nil

	default:
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_SHIPPING_POLICY", "Invalid shipping charge policy")
	}
}

// Approve moves the return from PENDING to APPROVED and fixes the refund
// amount. Ledger reversal and restock happen in the same unit of work.
func (r *Return) Approve(refundAmount decimal.Decimal) error {
	if !r.Status.CanTransitionTo(ReturnStatusApproved) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot approve return in %s status", r.Status))
	}
	if len(r.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve return without items")
	}
	if refundAmount.IsNegative() {
		return shared.NewDomainError("INVALID_REFUND_AMOUNT", "Refund amount cannot be negative")
	}

	now := time.Now()
	r.Status = ReturnStatusApproved
	r.RefundAmount = refundAmount
	r.ApprovedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnApprovedEvent(r))
	return nil
}

// Reject moves the return from PENDING to REJECTED
func (r *Return) Reject(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusRejected) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reject return in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReturnStatusRejected
	if reason != "" {
		r.Reason = reason
	}
	r.RejectedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkRefunded settles an approved return with the given method
func (r *Return) MarkRefunded(method RefundMethod) error {
	if !r.Status.CanTransitionTo(ReturnStatusRefunded) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot refund return in %s status", r.Status))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_REFUND_METHOD", "Invalid refund method")
	}

	now := time.Now()
	r.Status = ReturnStatusRefunded
	r.RefundMethod = method
	r.RefundedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReturnRefundedEvent(r))
	return nil
}
