package logistics

import (
	"github.com/shopspring/decimal"
)

// CalculateShippingVariance computes the difference between the shipping
// amount committed to the customer and the actual cost charged by the
// courier. Positive means the business came in under estimate (income),
// negative means it overran (expense).
func CalculateShippingVariance(committed, actual decimal.Decimal) decimal.Decimal {
	return committed.Sub(actual)
}
