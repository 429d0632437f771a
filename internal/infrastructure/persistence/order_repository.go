package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		return saveOrderItems(tx, o)
	})
}

// SaveWithLock persists the order with an optimistic version check,
// returning shared.ErrConcurrentModification when the stored version no
// longer matches.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&order.Order{}).
			Where("tenant_id = ? AND id = ?", o.TenantID, o.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != o.Version {
			return shared.ErrConcurrentModification
		}

		o.Version++
		o.UpdatedAt = time.Now()

		result := tx.Model(&order.Order{}).
			Where("tenant_id = ? AND id = ? AND version = ?", o.TenantID, o.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_id":            o.CustomerID,
				"customer_name":          o.CustomerName,
				"customer_phone":         o.CustomerPhone,
				"delivery_address":       o.DeliveryAddress,
				"status":                 o.Status,
				"products_total":         o.ProductsTotal,
				"shipping_charges":       o.ShippingCharges,
				"payment_amount":         o.PaymentAmount,
				"logistics_company_id":   o.LogisticsCompanyID,
				"cod_amount":             o.CodAmount,
				"cod_fee":                o.CodFee,
				"cod_fee_type":           o.CodFeeType,
				"cod_fee_paid_by":        o.CodFeePaidBy,
				"actual_shipping_cost":   o.ActualShippingCost,
				"shipping_variance":      o.ShippingVariance,
				"shipping_variance_date": o.ShippingVarianceDate,
				"variance_episode":       o.VarianceEpisode,
				"refund_amount":          o.RefundAmount,
				"return_status":          o.ReturnStatus,
				"confirmed_at":           o.ConfirmedAt,
				"dispatched_at":          o.DispatchedAt,
				"completed_at":           o.CompletedAt,
				"cancelled_at":           o.CancelledAt,
				"cancel_reason":          o.CancelReason,
				"version":                o.Version,
				"updated_at":             o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrentModification
		}

		return saveOrderItems(tx, o)
	})
}

// saveOrderItems reconciles the persisted items with the aggregate's current
// item list: removed lines are deleted, the rest upserted.
func saveOrderItems(tx *gorm.DB, o *order.Order) error {
	currentItemIDs := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", o.ID, currentItemIDs).
			Delete(&order.OrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", o.ID).
			Delete(&order.OrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds an order by ID within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by order number for a tenant
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByStatus finds orders by status for a tenant, newest first
func (r *GormOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus, limit, offset int) ([]*order.Order, error) {
	var orders []*order.Order
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindDispatchedInPeriod returns orders whose dispatch timestamp falls
// within [from, to), the population for profit reporting.
func (r *GormOrderRepository) FindDispatchedInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*order.Order, error) {
	var orders []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND dispatched_at >= ? AND dispatched_at < ?", tenantID, from, to).
		Order("dispatched_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByStatus counts orders by status for a tenant
func (r *GormOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
