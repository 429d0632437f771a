package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PurchaseBatchRepository defines the persistence interface for purchase batches
type PurchaseBatchRepository interface {
	Save(ctx context.Context, batch *PurchaseBatch) error
	SaveAll(ctx context.Context, batches []*PurchaseBatch) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseBatch, error)
	// FindForProduct returns non-deleted batches for a product (or one of
	// its variants when variantID is set) ordered by (InvoiceDate, CreatedAt)
	// ascending, the FIFO consumption order.
	FindForProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]PurchaseBatch, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PurchaseBatch, error)
	// FindSoldInPeriod returns batches that had quantity sold during the
	// period, including soft-deleted ones, for profit recomputation.
	FindSoldInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]PurchaseBatch, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

// AllocationRepository defines the persistence interface for batch allocations
type AllocationRepository interface {
	SaveAll(ctx context.Context, allocations []*BatchAllocation) error
	Save(ctx context.Context, allocation *BatchAllocation) error
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*BatchAllocation, error)
	FindByBatch(ctx context.Context, tenantID, batchID uuid.UUID) ([]*BatchAllocation, error)
}
