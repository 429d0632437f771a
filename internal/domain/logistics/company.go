package logistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// CodFeePaidBy determines who nominally pays the COD fee. The business
// always owes the fee to the logistics company; this flag only controls
// whether the fee is added to the customer-facing total as revenue.
type CodFeePaidBy string

const (
	CodFeePaidByCustomer      CodFeePaidBy = "CUSTOMER"
	CodFeePaidByBusinessOwner CodFeePaidBy = "BUSINESS_OWNER"
)

// IsValid checks if the payer value is valid
func (p CodFeePaidBy) IsValid() bool {
	return p == CodFeePaidByCustomer || p == CodFeePaidByBusinessOwner
}

// LogisticsCompany represents a courier the merchant dispatches through,
// carrying its COD fee configuration.
type LogisticsCompany struct {
	shared.TenantAggregateRoot
	Name          string           `gorm:"type:varchar(200);not null"`
	ContactPhone  string           `gorm:"type:varchar(50)"`
	FeeType       CodFeeType       `gorm:"type:varchar(20);not null;default:'FIXED'"`
	FeePercentage decimal.Decimal  `gorm:"type:decimal(8,4);not null;default:0"`
	FixedFee      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	FeeRanges     []CodFeeRange    `gorm:"foreignKey:CompanyID;references:ID"`
	CodFeePaidBy  CodFeePaidBy     `gorm:"type:varchar(20);not null;default:'BUSINESS_OWNER'"`
	Active        bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LogisticsCompany) TableName() string {
	return "logistics_companies"
}

// NewLogisticsCompany creates a new logistics company with a fixed fee of zero
func NewLogisticsCompany(tenantID uuid.UUID, name string, paidBy CodFeePaidBy) (*LogisticsCompany, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Logistics company name cannot be empty")
	}
	if !paidBy.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEE_PAYER", "Invalid COD fee payer")
	}

	return &LogisticsCompany{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		FeeType:             CodFeeTypeFixed,
		FeePercentage:       decimal.Zero,
		FixedFee:            decimal.Zero,
		CodFeePaidBy:        paidBy,
		Active:              true,
	}, nil
}

// ConfigurePercentageFee switches the company to percentage-based fees
func (c *LogisticsCompany) ConfigurePercentageFee(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_FEE_PERCENTAGE", "Fee percentage must be between 0 and 100")
	}
	c.FeeType = CodFeeTypePercentage
	c.FeePercentage = percentage
	c.UpdatedAt = time.Now()
	return nil
}

// ConfigureFixedFee switches the company to a flat fee
func (c *LogisticsCompany) ConfigureFixedFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Fixed fee cannot be negative")
	}
	c.FeeType = CodFeeTypeFixed
	c.FixedFee = fee
	c.UpdatedAt = time.Now()
	return nil
}

// ConfigureRangeFee switches the company to bracketed fees. Ranges must be
// contiguous and ascending; validation happens in NewCodFeeRanges.
func (c *LogisticsCompany) ConfigureRangeFee(ranges []CodFeeRange) error {
	if err := ValidateCodFeeRanges(ranges); err != nil {
		return err
	}
	for i := range ranges {
		ranges[i].CompanyID = c.ID
		ranges[i].TenantID = c.TenantID
	}
	c.FeeType = CodFeeTypeRangeBased
	c.FeeRanges = ranges
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate stops the company from being selectable on new orders
func (c *LogisticsCompany) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// FeeConfig builds the fee configuration snapshot used by the calculator
func (c *LogisticsCompany) FeeConfig() CodFeeConfig {
	return CodFeeConfig{
		FeeType:    c.FeeType,
		Percentage: c.FeePercentage,
		FixedFee:   c.FixedFee,
		Ranges:     c.FeeRanges,
	}
}
