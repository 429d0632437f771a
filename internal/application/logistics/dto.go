package logistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/logistics"
)

// FeeRangeInput is one COD fee bracket in a configuration request
type FeeRangeInput struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max" binding:"required"`
	Fee decimal.Decimal `json:"fee"`
}

// CreateCompanyRequest represents a request to register a logistics company
type CreateCompanyRequest struct {
	Name         string                 `json:"name" binding:"required,min=1,max=200"`
	ContactPhone string                 `json:"contact_phone" binding:"max=50"`
	CodFeePaidBy logistics.CodFeePaidBy `json:"cod_fee_paid_by" binding:"required"`
	FeeConfig    *ConfigureFeesRequest  `json:"fee_config"`
}

// ConfigureFeesRequest represents a COD fee reconfiguration
type ConfigureFeesRequest struct {
	FeeType    logistics.CodFeeType `json:"fee_type" binding:"required"`
	Percentage decimal.Decimal      `json:"percentage"`
	FixedFee   decimal.Decimal      `json:"fixed_fee"`
	Ranges     []FeeRangeInput      `json:"ranges" binding:"dive"`
}

// FeeRangeResponse is one COD fee bracket
type FeeRangeResponse struct {
	ID  uuid.UUID       `json:"id"`
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
	Fee decimal.Decimal `json:"fee"`
}

// CompanyResponse represents a logistics company
type CompanyResponse struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	ContactPhone  string                 `json:"contact_phone,omitempty"`
	FeeType       logistics.CodFeeType   `json:"fee_type"`
	FeePercentage decimal.Decimal        `json:"fee_percentage"`
	FixedFee      decimal.Decimal        `json:"fixed_fee"`
	FeeRanges     []FeeRangeResponse     `json:"fee_ranges,omitempty"`
	CodFeePaidBy  logistics.CodFeePaidBy `json:"cod_fee_paid_by"`
	Active        bool                   `json:"active"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ToCompanyResponse maps a logistics company to its response
func ToCompanyResponse(c *logistics.LogisticsCompany) CompanyResponse {
	ranges := make([]FeeRangeResponse, len(c.FeeRanges))
	for i, r := range c.FeeRanges {
		ranges[i] = FeeRangeResponse{
			ID:  r.ID,
			Min: r.Min,
			Max: r.Max,
			Fee: r.Fee,
		}
	}
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactPhone:  c.ContactPhone,
		FeeType:       c.FeeType,
		FeePercentage: c.FeePercentage,
		FixedFee:      c.FixedFee,
		FeeRanges:     ranges,
		CodFeePaidBy:  c.CodFeePaidBy,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
