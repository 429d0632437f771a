package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/returns"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormReturnRepository implements returns.Repository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Save creates or updates a return together with its items
func (r *GormReturnRepository) Save(ctx context.Context, ret *returns.Return) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ret).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveReturnItems(tx, ret)
	})
}

// SaveWithLock persists the return with an optimistic version check
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, ret *returns.Return) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&returns.Return{}).
			Where("tenant_id = ? AND id = ?", ret.TenantID, ret.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != ret.Version {
			return shared.ErrConcurrentModification
		}

		ret.Version++
		ret.UpdatedAt = time.Now()

		result := tx.Model(&returns.Return{}).
			Where("tenant_id = ? AND id = ? AND version = ?", ret.TenantID, ret.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":           ret.Status,
				"shipping_policy":  ret.ShippingPolicy,
				"shipping_charges": ret.ShippingCharges,
				"products_value":   ret.ProductsValue,
				"refund_amount":    ret.RefundAmount,
				"refund_method":    ret.RefundMethod,
				"reason":           ret.Reason,
				"approved_at":      ret.ApprovedAt,
				"refunded_at":      ret.RefundedAt,
				"rejected_at":      ret.RejectedAt,
				"version":          ret.Version,
				"updated_at":       ret.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrentModification
		}

		return saveReturnItems(tx, ret)
	})
}

func saveReturnItems(tx *gorm.DB, ret *returns.Return) error {
	for i := range ret.Items {
		ret.Items[i].ReturnID = ret.ID
		if err := tx.Save(&ret.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a return by ID within a tenant
func (r *GormReturnRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*returns.Return, error) {
	var ret returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindByOrder returns all returns raised against an order
func (r *GormReturnRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*returns.Return, error) {
	var rets []*returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&rets).Error; err != nil {
		return nil, err
	}
	return rets, nil
}

// FindByInvoice returns all supplier returns raised against a purchase invoice
func (r *GormReturnRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*returns.Return, error) {
	var rets []*returns.Return
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND purchase_invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&rets).Error; err != nil {
		return nil, err
	}
	return rets, nil
}

// SumApprovedRefundsInPeriod totals refunds of approved and refunded
// customer returns for profit reporting.
func (r *GormReturnRepository) SumApprovedRefundsInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&returns.Return{}).
		Select("COALESCE(SUM(refund_amount), 0)").
		Where("tenant_id = ? AND type IN ? AND status IN ? AND approved_at >= ? AND approved_at < ?",
			tenantID,
			[]returns.ReturnType{returns.ReturnTypeCustomerFull, returns.ReturnTypeCustomerPartial},
			[]returns.ReturnStatus{returns.ReturnStatusApproved, returns.ReturnStatusRefunded},
			from, to).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Ensure GormReturnRepository implements returns.Repository
var _ returns.Repository = (*GormReturnRepository)(nil)
