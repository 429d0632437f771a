package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
)

// SubmitOrderItemInput is one line of an order submission
type SubmitOrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	VariantID *uuid.UUID      `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// SubmitOrderRequest represents a request to submit a new order
type SubmitOrderRequest struct {
	OrderNumber        string                 `json:"order_number" binding:"omitempty,max=50"`
	CustomerID         *uuid.UUID             `json:"customer_id"`
	CustomerName       string                 `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone      string                 `json:"customer_phone" binding:"max=50"`
	DeliveryAddress    string                 `json:"delivery_address"`
	LogisticsCompanyID *uuid.UUID             `json:"logistics_company_id"`
	Items              []SubmitOrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingCharges    decimal.Decimal        `json:"shipping_charges"`
	PaymentAmount      decimal.Decimal        `json:"payment_amount"`
}

// DispatchOrderRequest represents a request to dispatch a confirmed order
type DispatchOrderRequest struct {
	LogisticsCompanyID *uuid.UUID       `json:"logistics_company_id"`
	ActualShippingCost *decimal.Decimal `json:"actual_shipping_cost"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AdjustShippingCostRequest represents a courier cost correction
type AdjustShippingCostRequest struct {
	ActualShippingCost decimal.Decimal `json:"actual_shipping_cost" binding:"required"`
}

// OrderItemResponse is one line of an order response
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	CostTotal   decimal.Decimal `json:"cost_total"`
}

// OrderResponse represents an order
type OrderResponse struct {
	ID                   uuid.UUID              `json:"id"`
	OrderNumber          string                 `json:"order_number"`
	CustomerID           *uuid.UUID             `json:"customer_id,omitempty"`
	CustomerName         string                 `json:"customer_name"`
	CustomerPhone        string                 `json:"customer_phone,omitempty"`
	DeliveryAddress      string                 `json:"delivery_address,omitempty"`
	Status               order.OrderStatus      `json:"status"`
	Items                []OrderItemResponse    `json:"items"`
	ProductsTotal        decimal.Decimal        `json:"products_total"`
	ShippingCharges      decimal.Decimal        `json:"shipping_charges"`
	PaymentAmount        decimal.Decimal        `json:"payment_amount"`
	LogisticsCompanyID   *uuid.UUID             `json:"logistics_company_id,omitempty"`
	CodAmount            decimal.Decimal        `json:"cod_amount"`
	CodFee               decimal.Decimal        `json:"cod_fee"`
	CodFeeType           logistics.CodFeeType   `json:"cod_fee_type,omitempty"`
	CodFeePaidBy         logistics.CodFeePaidBy `json:"cod_fee_paid_by,omitempty"`
	ActualShippingCost   *decimal.Decimal       `json:"actual_shipping_cost,omitempty"`
	ShippingVariance     *decimal.Decimal       `json:"shipping_variance,omitempty"`
	ShippingVarianceDate *time.Time             `json:"shipping_variance_date,omitempty"`
	RefundAmount         decimal.Decimal        `json:"refund_amount"`
	ReturnStatus         order.ReturnStatus     `json:"return_status"`
	ConfirmedAt          *time.Time             `json:"confirmed_at,omitempty"`
	DispatchedAt         *time.Time             `json:"dispatched_at,omitempty"`
	CompletedAt          *time.Time             `json:"completed_at,omitempty"`
	CancelledAt          *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason         string                 `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ToOrderResponse maps an order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			UnitCost:    item.UnitCost,
			CostTotal:   item.CostTotal,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		CustomerID:           o.CustomerID,
		CustomerName:         o.CustomerName,
		CustomerPhone:        o.CustomerPhone,
		DeliveryAddress:      o.DeliveryAddress,
		Status:               o.Status,
		Items:                items,
		ProductsTotal:        o.ProductsTotal,
		ShippingCharges:      o.ShippingCharges,
		PaymentAmount:        o.PaymentAmount,
		LogisticsCompanyID:   o.LogisticsCompanyID,
		CodAmount:            o.CodAmount,
		CodFee:               o.CodFee,
		CodFeeType:           o.CodFeeType,
		CodFeePaidBy:         o.CodFeePaidBy,
		ActualShippingCost:   o.ActualShippingCost,
		ShippingVariance:     o.ShippingVariance,
		ShippingVarianceDate: o.ShippingVarianceDate,
		RefundAmount:         o.RefundAmount,
		ReturnStatus:         o.ReturnStatus,
		ConfirmedAt:          o.ConfirmedAt,
		DispatchedAt:         o.DispatchedAt,
		CompletedAt:          o.CompletedAt,
		CancelledAt:          o.CancelledAt,
		CancelReason:         o.CancelReason,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}
