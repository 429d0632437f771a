package purchase

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository defines the persistence interface for purchase invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Invoice, error)
}
