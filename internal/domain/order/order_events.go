package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderSubmitted        = "OrderSubmitted"
	EventTypeOrderConfirmed        = "OrderConfirmed"
	EventTypeOrderDispatched       = "OrderDispatched"
	EventTypeOrderCompleted        = "OrderCompleted"
	EventTypeOrderCancelled        = "OrderCancelled"
	EventTypeShippingCostAdjusted  = "ShippingCostAdjusted"
)

// OrderItemInfo represents line information carried on events
type OrderItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func itemInfos(o *Order) []OrderItemInfo {
	items := make([]OrderItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return items
}

// OrderSubmittedEvent is raised when a new order enters the system
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	ProductsTotal decimal.Decimal `json:"products_total"`
}

// NewOrderSubmittedEvent creates a new OrderSubmittedEvent
func NewOrderSubmittedEvent(o *Order) *OrderSubmittedEvent {
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSubmitted, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		ProductsTotal:   o.ProductsTotal,
	}
}

// EventType returns the event type name
func (e *OrderSubmittedEvent) EventType() string {
	return EventTypeOrderSubmitted
}

// OrderConfirmedEvent is raised when an order is confirmed. Inventory has
// been allocated and revenue posted by the time the event is published.
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	Items           []OrderItemInfo `json:"items"`
	ProductsTotal   decimal.Decimal `json:"products_total"`
	ShippingCharges decimal.Decimal `json:"shipping_charges"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Items:           itemInfos(o),
		ProductsTotal:   o.ProductsTotal,
		ShippingCharges: o.ShippingCharges,
	}
}

// EventType returns the event type name
func (e *OrderConfirmedEvent) EventType() string {
	return EventTypeOrderConfirmed
}

// OrderDispatchedEvent is raised when an order is handed to the courier
type OrderDispatchedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CodAmount   decimal.Decimal `json:"cod_amount"`
	CodFee      decimal.Decimal `json:"cod_fee"`
}

// NewOrderDispatchedEvent creates a new OrderDispatchedEvent
func NewOrderDispatchedEvent(o *Order) *OrderDispatchedEvent {
	return &OrderDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDispatched, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CodAmount:       o.CodAmount,
		CodFee:          o.CodFee,
	}
}

// EventType returns the event type name
func (e *OrderDispatchedEvent) EventType() string {
	return EventTypeOrderDispatched
}

// OrderCompletedEvent is raised when a dispatched order is delivered
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
	}
}

// EventType returns the event type name
func (e *OrderCompletedEvent) EventType() string {
	return EventTypeOrderCompleted
}

// OrderCancelledEvent is raised when an order is cancelled. WasConfirmed
// tells subscribers whether allocation and revenue need unwinding.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	Reason       string    `json:"reason"`
	WasConfirmed bool      `json:"was_confirmed"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, wasConfirmed bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		WasConfirmed:    wasConfirmed,
	}
}

// EventType returns the event type name
func (e *OrderCancelledEvent) EventType() string {
	return EventTypeOrderCancelled
}

// ShippingCostAdjustedEvent is raised when the actual shipping cost is
// recorded or corrected, opening a new variance episode.
type ShippingCostAdjustedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID        `json:"order_id"`
	OrderNumber        string           `json:"order_number"`
	ActualShippingCost decimal.Decimal  `json:"actual_shipping_cost"`
	ShippingVariance   *decimal.Decimal `json:"shipping_variance,omitempty"`
	VarianceEpisode    int              `json:"variance_episode"`
}

// NewShippingCostAdjustedEvent creates a new ShippingCostAdjustedEvent
func NewShippingCostAdjustedEvent(o *Order) *ShippingCostAdjustedEvent {
	var actual decimal.Decimal
	if o.ActualShippingCost != nil {
		actual = *o.ActualShippingCost
	}
	return &ShippingCostAdjustedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeShippingCostAdjusted, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:            o.ID,
		OrderNumber:        o.OrderNumber,
		ActualShippingCost: actual,
		ShippingVariance:   o.ShippingVariance,
		VarianceEpisode:    o.VarianceEpisode,
	}
}

// EventType returns the event type name
func (e *ShippingCostAdjustedEvent) EventType() string {
	return EventTypeShippingCostAdjusted
}
