package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for orders
type Repository interface {
	Save(ctx context.Context, o *Order) error
	// SaveWithLock persists the order with an optimistic version check,
	// returning shared.ErrConcurrentModification when the stored version
	// no longer matches.
	SaveWithLock(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*Order, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus, limit, offset int) ([]*Order, error)
	// FindDispatchedInPeriod returns orders whose dispatch timestamp falls
	// within [from, to), the population for profit reporting.
	FindDispatchedInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*Order, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status OrderStatus) (int64, error)
}
