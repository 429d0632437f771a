package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/shared"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusDispatched || target == OrderStatusCancelled
	case OrderStatusDispatched:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ReturnStatus tracks how much of an order has been returned
type ReturnStatus string

const (
	ReturnStatusNone    ReturnStatus = "NONE"
	ReturnStatusPartial ReturnStatus = "PARTIALLY_RETURNED"
	ReturnStatusFull    ReturnStatus = "FULLY_RETURNED"
)

// OrderItem is one line of the order's immutable pricing snapshot,
// constructed once at submission. The cost fields are filled in at
// confirmation from the FIFO allocation and never re-derived.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID   *uuid.UUID      `gorm:"type:uuid"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line snapshot
func NewOrderItem(orderID, productID uuid.UUID, variantID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		VariantID:   variantID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice),
		UnitCost:    decimal.Zero,
		CostTotal:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RecordCostBasis fixes the COGS basis for this line from a FIFO allocation
func (i *OrderItem) RecordCostBasis(weightedUnitCost, totalCost decimal.Decimal) {
	i.UnitCost = weightedUnitCost
	i.CostTotal = totalCost
	i.UpdatedAt = time.Now()
}

// Order is the aggregate root for a customer order. All mutation goes
// through the state machine methods below; partially applied transitions
// are prevented by the enclosing unit of work.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber     string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	CustomerID      *uuid.UUID  `gorm:"type:uuid;index"`
	CustomerName    string      `gorm:"type:varchar(200);not null"`
	CustomerPhone   string      `gorm:"type:varchar(50)"`
	DeliveryAddress string      `gorm:"type:text"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Status          OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	ProductsTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCharges decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	LogisticsCompanyID *uuid.UUID                `gorm:"type:uuid"`
	CodAmount          decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	CodFee             decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	CodFeeType         logistics.CodFeeType      `gorm:"type:varchar(20)"`
	CodFeePaidBy       logistics.CodFeePaidBy    `gorm:"type:varchar(20)"`

	ActualShippingCost   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ShippingVariance     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ShippingVarianceDate *time.Time
	// VarianceEpisode increases every time a variance posting replaces a
	// prior one. Ledger entries carry the episode so reversals target the
	// exact posting they supersede.
	VarianceEpisode int `gorm:"not null;default:0"`

	RefundAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnStatus ReturnStatus    `gorm:"type:varchar(30);not null;default:'NONE'"`

	ConfirmedAt  *time.Time
	DispatchedAt *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in PENDING status with its pricing snapshot
func NewOrder(tenantID uuid.UUID, orderNumber, customerName string, shippingCharges, paymentAmount decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if shippingCharges.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING_CHARGES", "Shipping charges cannot be negative")
	}
	if paymentAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount cannot be negative")
	}

	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerName:        customerName,
		Items:               make([]OrderItem, 0),
		Status:              OrderStatusPending,
		ProductsTotal:       decimal.Zero,
		ShippingCharges:     shippingCharges,
		PaymentAmount:       paymentAmount,
		CodAmount:           decimal.Zero,
		CodFee:              decimal.Zero,
		RefundAmount:        decimal.Zero,
		ReturnStatus:        ReturnStatusNone,
	}

	order.AddDomainEvent(NewOrderSubmittedEvent(order))

	return order, nil
}

// AddItem adds a line to the pricing snapshot. Only allowed in PENDING status.
func (o *Order) AddItem(productID uuid.UUID, variantID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID && equalVariant(item.VariantID, variantID) {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewOrderItem(o.ID, productID, variantID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// SetCustomerContact sets delivery contact details. Only allowed before dispatch.
func (o *Order) SetCustomerContact(customerID *uuid.UUID, phone, address string) error {
	if o.Status == OrderStatusDispatched || o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot change contact details after dispatch")
	}
	o.CustomerID = customerID
	o.CustomerPhone = phone
	o.DeliveryAddress = address
	o.UpdatedAt = time.Now()
	return nil
}

// SetLogisticsCompany selects the courier. Only allowed before dispatch.
func (o *Order) SetLogisticsCompany(companyID uuid.UUID) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Cannot set logistics company in current status")
	}
	if companyID == uuid.Nil {
		return shared.NewDomainError("INVALID_COMPANY", "Logistics company ID cannot be empty")
	}
	o.LogisticsCompanyID = &companyID
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm transitions the order from PENDING to CONFIRMED. Inventory
// allocation and revenue posting are orchestrated by the application
// service inside the same unit of work.
func (o *Order) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) || o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// Dispatch transitions the order from CONFIRMED to DISPATCHED and records
// the COD fee figures. After the first dispatch, ShippingCharges is frozen
// for the rest of the order's lifecycle.
func (o *Order) Dispatch(codFee decimal.Decimal, feeType logistics.CodFeeType, paidBy logistics.CodFeePaidBy) error {
	if !o.Status.CanTransitionTo(OrderStatusDispatched) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot dispatch order in %s status", o.Status))
	}
	if codFee.IsNegative() {
		return shared.NewDomainError("INVALID_COD_FEE", "COD fee cannot be negative")
	}

	now := time.Now()
	o.Status = OrderStatusDispatched
	o.CodAmount = logistics.CalculateCodAmount(o.ProductsTotal, o.ShippingCharges, o.PaymentAmount)
	o.CodFee = codFee
	o.CodFeeType = feeType
	o.CodFeePaidBy = paidBy
	o.DispatchedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderDispatchedEvent(o))

	return nil
}

// AdjustShippingCost records the courier's actual cost and the resulting
// variance. Only the actual-cost fields change; the customer-facing
// ShippingCharges never does. Each call with a prior variance opens a new
// variance episode; the ledger posting for the old episode is reversed by
// the application service before the new one is posted.
func (o *Order) AdjustShippingCost(actualCost decimal.Decimal) error {
	if o.Status != OrderStatusDispatched && o.Status != OrderStatusCompleted {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot adjust shipping cost in %s status", o.Status))
	}
	if actualCost.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING_COST", "Actual shipping cost cannot be negative")
	}

	now := time.Now()
	variance := logistics.CalculateShippingVariance(o.ShippingCharges, actualCost)

	o.ActualShippingCost = &actualCost
	o.ShippingVariance = &variance
	o.ShippingVarianceDate = &now
	o.VarianceEpisode++
	o.UpdatedAt = now

	o.AddDomainEvent(NewShippingCostAdjustedEvent(o))

	return nil
}

// Complete transitions the order from DISPATCHED to COMPLETED
func (o *Order) Complete() error {
	if !o.Status.CanTransitionTo(OrderStatusCompleted) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Cancel cancels the order. Allowed only in PENDING or CONFIRMED status;
// a confirmed cancellation triggers inventory restock and revenue reversal
// in the application service.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasConfirmed := o.Status == OrderStatusConfirmed
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, wasConfirmed))

	return nil
}

// RecordRefund accumulates a processed refund and updates the return status
func (o *Order) RecordRefund(amount decimal.Decimal, fullReturn bool) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_REFUND_AMOUNT", "Refund amount must be positive")
	}
	o.RefundAmount = o.RefundAmount.Add(amount)
	if fullReturn {
		o.ReturnStatus = ReturnStatusFull
	} else {
		o.ReturnStatus = ReturnStatusPartial
	}
	o.UpdatedAt = time.Now()
	return nil
}

// TotalCost returns the fixed COGS basis summed across all lines
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.CostTotal)
	}
	return total
}

// CustomerFacingTotal is what the customer ultimately owes: products plus
// shipping plus the COD fee when the customer bears it.
func (o *Order) CustomerFacingTotal() decimal.Decimal {
	total := o.ProductsTotal.Add(o.ShippingCharges)
	if o.CodFeePaidBy == logistics.CodFeePaidByCustomer {
		total = total.Add(o.CodFee)
	}
	return total
}

// FindItem returns the line for a product/variant pair
func (o *Order) FindItem(productID uuid.UUID, variantID *uuid.UUID) (*OrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID && equalVariant(o.Items[idx].VariantID, variantID) {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// FindItemByID returns the line with the given item ID
func (o *Order) FindItemByID(itemID uuid.UUID) (*OrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

func (o *Order) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.ProductsTotal = total
}

func equalVariant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
