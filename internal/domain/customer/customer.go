package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// Customer represents a buyer with an optional prepaid advance balance.
// The advance is mirrored in the ledger as a liability; this field is the
// per-customer breakdown used when refunds draw the advance down.
type Customer struct {
	shared.TenantAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	Phone          string          `gorm:"type:varchar(50);index"`
	Address        string          `gorm:"type:text"`
	AdvanceBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, name, phone string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		AdvanceBalance:      decimal.Zero,
	}, nil
}

// CreditAdvance adds to the customer's prepaid balance
func (c *Customer) CreditAdvance(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Advance credit must be positive")
	}
	c.AdvanceBalance = c.AdvanceBalance.Add(amount)
	c.UpdatedAt = time.Now()
	return nil
}

// DrawAdvance consumes up to the requested amount from the advance and
// returns what was actually drawn; the shortfall stays with the caller.
func (c *Customer) DrawAdvance(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Advance draw must be positive")
	}
	drawn := decimal.Min(amount, c.AdvanceBalance)
	if drawn.GreaterThan(decimal.Zero) {
		c.AdvanceBalance = c.AdvanceBalance.Sub(drawn)
		c.UpdatedAt = time.Now()
	}
	return drawn, nil
}

// Repository defines the persistence interface for customers
type Repository interface {
	Save(ctx context.Context, customer *Customer) error
	SaveWithLock(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*Customer, error)
}
