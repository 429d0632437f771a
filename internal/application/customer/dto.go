package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/customer"
)

// CreateCustomerRequest represents a request to register a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address"`
}

// TopUpAdvanceRequest represents a prepaid advance deposit
type TopUpAdvanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CustomerResponse represents a customer
type CustomerResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	AdvanceBalance decimal.Decimal `json:"advance_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCustomerResponse maps a customer to its response
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Phone:          c.Phone,
		Address:        c.Address,
		AdvanceBalance: c.AdvanceBalance,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
