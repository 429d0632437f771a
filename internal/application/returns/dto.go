package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/returns"
)

// CreateReturnItemInput is one returned line
type CreateReturnItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariantID   *uuid.UUID      `json:"variant_id"`
	OrderItemID *uuid.UUID      `json:"order_item_id"`
	BatchID     *uuid.UUID      `json:"batch_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateReturnRequest represents a request to open a return
type CreateReturnRequest struct {
	Type              returns.ReturnType     `json:"type" binding:"required"`
	OrderID           *uuid.UUID             `json:"order_id"`
	PurchaseInvoiceID *uuid.UUID             `json:"purchase_invoice_id"`
	ShippingPolicy    returns.ShippingPolicy `json:"shipping_policy"`
	Items             []CreateReturnItemInput `json:"items" binding:"required,min=1,dive"`
	Reason            string                 `json:"reason" binding:"max=500"`
}

// ProcessRefundRequest represents a request to settle an approved return
type ProcessRefundRequest struct {
	Method returns.RefundMethod `json:"method" binding:"required"`
}

// RejectReturnRequest represents a request to reject a pending return
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReturnItemResponse is one line of a return response
type ReturnItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	OrderItemID *uuid.UUID      `json:"order_item_id,omitempty"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// ReturnResponse represents a return
type ReturnResponse struct {
	ID                uuid.UUID              `json:"id"`
	ReturnNumber      string                 `json:"return_number"`
	Type              returns.ReturnType     `json:"type"`
	Status            returns.ReturnStatus   `json:"status"`
	OrderID           *uuid.UUID             `json:"order_id,omitempty"`
	PurchaseInvoiceID *uuid.UUID             `json:"purchase_invoice_id,omitempty"`
	Items             []ReturnItemResponse   `json:"items"`
	ShippingPolicy    returns.ShippingPolicy `json:"shipping_policy,omitempty"`
	ProductsValue     decimal.Decimal        `json:"products_value"`
	RefundAmount      decimal.Decimal        `json:"refund_amount"`
	RefundMethod      returns.RefundMethod   `json:"refund_method,omitempty"`
	Reason            string                 `json:"reason,omitempty"`
	ApprovedAt        *time.Time             `json:"approved_at,omitempty"`
	RefundedAt        *time.Time             `json:"refunded_at,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// ToReturnResponse maps a return to its response
func ToReturnResponse(r *returns.Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReturnItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			OrderItemID: item.OrderItemID,
			BatchID:     item.BatchID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return ReturnResponse{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		Type:              r.Type,
		Status:            r.Status,
		OrderID:           r.OrderID,
		PurchaseInvoiceID: r.PurchaseInvoiceID,
		Items:             items,
		ShippingPolicy:    r.ShippingPolicy,
		ProductsValue:     r.ProductsValue,
		RefundAmount:      r.RefundAmount,
		RefundMethod:      r.RefundMethod,
		Reason:            r.Reason,
		ApprovedAt:        r.ApprovedAt,
		RefundedAt:        r.RefundedAt,
		CreatedAt:         r.CreatedAt,
	}
}
