package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/purchase"
)

// RecordInvoiceItemInput is one purchased line
type RecordInvoiceItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	VariantID *uuid.UUID      `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required"`
}

// RecordInvoiceRequest represents a request to record a supplier invoice
type RecordInvoiceRequest struct {
	InvoiceNumber string                   `json:"invoice_number" binding:"required,min=1,max=50"`
	SupplierName  string                   `json:"supplier_name" binding:"required,min=1,max=200"`
	InvoiceDate   *time.Time               `json:"invoice_date"`
	Items         []RecordInvoiceItemInput `json:"items" binding:"required,min=1,dive"`
}

// InvoiceItemResponse is one line of an invoice response
type InvoiceItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents a purchase invoice
type InvoiceResponse struct {
	ID             uuid.UUID              `json:"id"`
	InvoiceNumber  string                 `json:"invoice_number"`
	SupplierName   string                 `json:"supplier_name"`
	InvoiceDate    time.Time              `json:"invoice_date"`
	Status         purchase.InvoiceStatus `json:"status"`
	Items          []InvoiceItemResponse  `json:"items"`
	TotalAmount    decimal.Decimal        `json:"total_amount"`
	ReturnedAmount decimal.Decimal        `json:"returned_amount"`
	Outstanding    decimal.Decimal        `json:"outstanding_payable"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ToInvoiceResponse maps an invoice to its response
func ToInvoiceResponse(inv *purchase.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
			LineTotal: item.LineTotal,
		}
	}
	return InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		SupplierName:   inv.SupplierName,
		InvoiceDate:    inv.InvoiceDate,
		Status:         inv.Status,
		Items:          items,
		TotalAmount:    inv.TotalAmount,
		ReturnedAmount: inv.ReturnedAmount,
		Outstanding:    inv.OutstandingPayable(),
		CreatedAt:      inv.CreatedAt,
	}
}
