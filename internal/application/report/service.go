package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/telemetry"
)

var oneHundred = decimal.NewFromInt(100)

// Service computes profit statistics for a period. Revenue and cost come
// from the dispatched orders' own snapshots rather than from replaying the
// ledger: each line carries its FIFO cost basis and each order carries its
// COD fee and actual shipping cost.
type Service struct {
	scope  unitofwork.TransactionScope
	logger *zap.Logger
}

// NewService creates a new report Service
func NewService(scope unitofwork.TransactionScope, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scope: scope, logger: logger}
}

// Profit aggregates revenue, cost and margin over orders dispatched within
// [from, to). An order whose figures cannot be read is skipped and counted
// instead of failing the report.
func (s *Service) Profit(ctx context.Context, tenantID uuid.UUID, req ProfitRequest) (*ProfitResponse, error) {
	if !req.To.After(req.From) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Report period end must be after its start")
	}

	ctx, span := telemetry.StartSpan(ctx, "report.profit",
		telemetry.Stringer("tenant_id", tenantID))
	defer span.End()

	response := &ProfitResponse{
		From:            req.From,
		To:              req.To,
		ProductRevenue:  decimal.Zero,
		ShippingRevenue: decimal.Zero,
		CodFeeRevenue:   decimal.Zero,
		ReturnRefunds:   decimal.Zero,
		CostOfGoodsSold: decimal.Zero,
		ShippingCost:    decimal.Zero,
		CodFeeCost:      decimal.Zero,
	}

	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		orders, err := repos.Orders().FindDispatchedInPeriod(ctx, tenantID, req.From, req.To)
		if err != nil {
			return err
		}

		for _, o := range orders {
			if err := s.accumulate(response, o); err != nil {
				response.SkippedOrders++
				s.logger.Warn("skipping order in profit report",
					zap.String("order_number", o.OrderNumber),
					zap.String("order_id", o.ID.String()),
					zap.Error(err))
			}
		}

		refunds, err := repos.Returns().SumApprovedRefundsInPeriod(ctx, tenantID, req.From, req.To)
		if err != nil {
			return err
		}
		response.ReturnRefunds = refunds
		return nil
	})
	if err != nil {
		return nil, err
	}

	response.TotalRevenue = response.ProductRevenue.
		Add(response.ShippingRevenue).
		Add(response.CodFeeRevenue).
		Sub(response.ReturnRefunds)
	response.TotalCost = response.CostOfGoodsSold.
		Add(response.ShippingCost).
		Add(response.CodFeeCost)
	response.Profit = response.TotalRevenue.Sub(response.TotalCost)
	if response.TotalRevenue.IsZero() {
		response.MarginPercent = decimal.Zero
	} else {
		response.MarginPercent = response.Profit.Div(response.TotalRevenue).Mul(oneHundred).Round(2)
	}

	return response, nil
}

// accumulate folds one order into the running totals. The COD fee is always
// a cost to the business; it only counts as revenue when the courier's
// configuration passes it on to the customer. Shipping cost prefers the
// courier's actual figure, falling back to the committed estimate when no
// adjustment was recorded.
func (s *Service) accumulate(r *ProfitResponse, o *order.Order) error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Dispatched order has no line items")
	}

	cogs := decimal.Zero
	for _, item := range o.Items {
		cogs = cogs.Add(item.CostTotal)
	}

	r.OrderCount++
	r.ProductRevenue = r.ProductRevenue.Add(o.ProductsTotal)
	r.ShippingRevenue = r.ShippingRevenue.Add(o.ShippingCharges)
	if o.CodFeePaidBy == logistics.CodFeePaidByCustomer {
		r.CodFeeRevenue = r.CodFeeRevenue.Add(o.CodFee)
	}

	r.CostOfGoodsSold = r.CostOfGoodsSold.Add(cogs)
	if o.ActualShippingCost != nil {
		r.ShippingCost = r.ShippingCost.Add(*o.ActualShippingCost)
	} else {
		r.ShippingCost = r.ShippingCost.Add(o.ShippingCharges)
	}
	r.CodFeeCost = r.CodFeeCost.Add(o.CodFee)
	return nil
}
