package logistics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// CodFeeType defines how a logistics company charges for COD collection
type CodFeeType string

const (
	// CodFeeTypePercentage charges a percentage of the COD amount
	CodFeeTypePercentage CodFeeType = "PERCENTAGE"
	// CodFeeTypeRangeBased charges a flat fee per amount bracket
	CodFeeTypeRangeBased CodFeeType = "RANGE_BASED"
	// CodFeeTypeFixed charges a constant fee regardless of amount
	CodFeeTypeFixed CodFeeType = "FIXED"
)

// IsValid checks if the fee type is valid
func (t CodFeeType) IsValid() bool {
	switch t {
	case CodFeeTypePercentage, CodFeeTypeRangeBased, CodFeeTypeFixed:
		return true
	}
	return false
}

// String returns the string representation
func (t CodFeeType) String() string {
	return string(t)
}

// CodFeeRange is one bracket of a RANGE_BASED fee table. A COD amount
// falls into the bracket where Min <= amount < Max; amounts at or above
// the highest bracket's Max use that bracket's fee.
type CodFeeRange struct {
	shared.BaseEntity
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Min       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Max       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Fee       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CodFeeRange) TableName() string {
	return "cod_fee_ranges"
}

// Contains reports whether the amount falls inside this bracket
func (r CodFeeRange) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.Min) && amount.LessThan(r.Max)
}

// ValidateCodFeeRanges checks that brackets are well-formed, ascending
// and non-overlapping.
func ValidateCodFeeRanges(ranges []CodFeeRange) error {
	if len(ranges) == 0 {
		return shared.NewDomainError("INVALID_FEE_RANGES", "Range-based fees require at least one bracket")
	}

	sorted := make([]CodFeeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Min.LessThan(sorted[j].Min)
	})

	for i, r := range sorted {
		if r.Min.IsNegative() || r.Max.LessThanOrEqual(r.Min) {
			return shared.NewDomainError("INVALID_FEE_RANGES", "Each bracket requires 0 <= min < max")
		}
		if r.Fee.IsNegative() {
			return shared.NewDomainError("INVALID_FEE_RANGES", "Bracket fee cannot be negative")
		}
		if i > 0 && sorted[i-1].Max.GreaterThan(r.Min) {
			return shared.NewDomainError("INVALID_FEE_RANGES", "Brackets must not overlap")
		}
	}
	return nil
}

// CodFeeConfig is the fee configuration snapshot of a logistics company
// at calculation time.
type CodFeeConfig struct {
	FeeType    CodFeeType
	Percentage decimal.Decimal
	FixedFee   decimal.Decimal
	Ranges     []CodFeeRange
}

// CodFeeResult is the outcome of a COD fee calculation
type CodFeeResult struct {
	Fee             decimal.Decimal
	CalculationType CodFeeType
}

// CalculateCodFee computes the COD collection fee for the given amount.
// It is a pure function of its inputs. A non-positive COD amount means
// the order was fully prepaid and carries no fee.
func CalculateCodFee(config CodFeeConfig, codAmount decimal.Decimal) (*CodFeeResult, error) {
	if codAmount.LessThanOrEqual(decimal.Zero) {
		return &CodFeeResult{Fee: decimal.Zero, CalculationType: config.FeeType}, nil
	}

	switch config.FeeType {
	case CodFeeTypePercentage:
		fee := codAmount.Mul(config.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		return &CodFeeResult{Fee: fee, CalculationType: CodFeeTypePercentage}, nil

	case CodFeeTypeFixed:
		return &CodFeeResult{Fee: config.FixedFee, CalculationType: CodFeeTypeFixed}, nil

	case CodFeeTypeRangeBased:
		if err := ValidateCodFeeRanges(config.Ranges); err != nil {
			return nil, err
		}
		sorted := make([]CodFeeRange, len(config.Ranges))
		copy(sorted, config.Ranges)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Min.LessThan(sorted[j].Min)
		})
		for _, r := range sorted {
			if r.Contains(codAmount) {
				return &CodFeeResult{Fee: r.Fee, CalculationType: CodFeeTypeRangeBased}, nil
			}
		}
		highest := sorted[len(sorted)-1]
		if codAmount.GreaterThanOrEqual(highest.Max) {
			// beyond the table, the highest bracket's fee applies
			return &CodFeeResult{Fee: highest.Fee, CalculationType: CodFeeTypeRangeBased}, nil
		}
		return nil, shared.NewDomainError("NO_MATCHING_FEE_RANGE", "COD amount below the lowest fee bracket")

	default:
		return nil, shared.NewDomainError("INVALID_FEE_TYPE", "Unknown COD fee calculation type")
	}
}

// CalculateCodAmount computes the amount the courier collects on delivery:
// products total plus shipping minus whatever the customer already paid.
func CalculateCodAmount(productsTotal, shippingCharges, paymentAmount decimal.Decimal) decimal.Decimal {
	return productsTotal.Add(shippingCharges).Sub(paymentAmount)
}
