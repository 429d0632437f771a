package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitRequest bounds the reporting period. Orders dispatched within
// [From, To) form the population.
type ProfitRequest struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}

// ProfitResponse is the aggregated profit statement for a period
type ProfitResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	OrderCount int `json:"order_count"`
	// SkippedOrders counts orders excluded from the totals because their
	// figures could not be read. The report stays advisory rather than
	// failing the whole period.
	SkippedOrders int `json:"skipped_orders,omitempty"`

	ProductRevenue  decimal.Decimal `json:"product_revenue"`
	ShippingRevenue decimal.Decimal `json:"shipping_revenue"`
	CodFeeRevenue   decimal.Decimal `json:"cod_fee_revenue"`
	ReturnRefunds   decimal.Decimal `json:"return_refunds"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`

	CostOfGoodsSold decimal.Decimal `json:"cost_of_goods_sold"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	CodFeeCost      decimal.Decimal `json:"cod_fee_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`

	Profit decimal.Decimal `json:"profit"`
	// MarginPercent is profit over total revenue, zero when there was no
	// revenue in the period.
	MarginPercent decimal.Decimal `json:"margin_percent"`
}
