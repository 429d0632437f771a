package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the persistence interface for returns
type Repository interface {
	Save(ctx context.Context, r *Return) error
	SaveWithLock(ctx context.Context, r *Return) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Return, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*Return, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*Return, error)
	// SumApprovedRefundsInPeriod totals refunds of approved and refunded
	// customer returns for profit reporting.
	SumApprovedRefundsInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}
