package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/inventory"
)

// GormAllocationRepository implements inventory.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// Save creates or updates a single allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *inventory.BatchAllocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

// SaveAll persists a set of allocations in one transaction
func (r *GormAllocationRepository) SaveAll(ctx context.Context, allocations []*inventory.BatchAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, allocation := range allocations {
			if err := tx.Save(allocation).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByOrder returns the allocations consumed by an order, oldest first.
// The creation order mirrors FIFO consumption order, which restocking
// depends on.
func (r *GormAllocationRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*inventory.BatchAllocation, error) {
	var allocations []*inventory.BatchAllocation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// FindByBatch returns all allocations drawn from a batch
func (r *GormAllocationRepository) FindByBatch(ctx context.Context, tenantID, batchID uuid.UUID) ([]*inventory.BatchAllocation, error) {
	var allocations []*inventory.BatchAllocation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND batch_id = ?", tenantID, batchID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ inventory.AllocationRepository = (*GormAllocationRepository)(nil)
