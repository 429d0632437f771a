package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/inventory"
)

// AllocationLineResponse is one consumed batch in an allocation response
type AllocationLineResponse struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// AllocationResponse is the outcome of an explicit allocation request
type AllocationResponse struct {
	Lines               []AllocationLineResponse `json:"lines"`
	TotalAllocated      decimal.Decimal          `json:"total_allocated"`
	TotalCost           decimal.Decimal          `json:"total_cost"`
	WeightedAverageCost decimal.Decimal          `json:"weighted_average_cost"`
}

// AllocateRequest represents a request to allocate stock
type AllocateRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	VariantID *uuid.UUID      `json:"variant_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// RestockRequest represents a request to return stock
type RestockRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	VariantID     *uuid.UUID      `json:"variant_id"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	OriginBatchID *uuid.UUID      `json:"origin_batch_id"`
}

// Service exposes the costing engine's standalone operations for stock
// corrections outside the order lifecycle.
type Service struct {
	scope            unitofwork.TransactionScope
	blockOnShortfall bool
}

// NewService creates a new inventory Service
func NewService(scope unitofwork.TransactionScope, blockOnShortfall bool) *Service {
	return &Service{scope: scope, blockOnShortfall: blockOnShortfall}
}

// Allocate consumes stock in FIFO order without an owning order
func (s *Service) Allocate(ctx context.Context, tenantID uuid.UUID, req AllocateRequest) (*AllocationResponse, error) {
	var result *inventory.AllocationResult
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		costing := NewCosting(repos.Products(), repos.Batches(), repos.Allocations(), s.blockOnShortfall)
		var err error
		result, err = costing.Allocate(ctx, tenantID, req.ProductID, req.VariantID, req.Quantity, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := toAllocationResponse(result)
	return &response, nil
}

// Restock returns stock, optionally against the batch it came from
func (s *Service) Restock(ctx context.Context, tenantID uuid.UUID, req RestockRequest) error {
	return s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		costing := NewCosting(repos.Products(), repos.Batches(), repos.Allocations(), s.blockOnShortfall)
		return costing.Restock(ctx, tenantID, req.ProductID, req.VariantID, req.Quantity, req.OriginBatchID)
	})
}

func toAllocationResponse(result *inventory.AllocationResult) AllocationResponse {
	lines := make([]AllocationLineResponse, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = AllocationLineResponse{
			BatchID:     line.BatchID,
			BatchNumber: line.BatchNumber,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
			TotalCost:   line.TotalCost,
		}
	}
	return AllocationResponse{
		Lines:               lines,
		TotalAllocated:      result.TotalAllocated,
		TotalCost:           result.TotalCost,
		WeightedAverageCost: result.WeightedAverageCost,
	}
}
