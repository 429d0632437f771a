package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStatsProvider implements StatsProvider with aggregate queries against
// the orders and purchase_batches tables. Queries run outside any unit of
// work since gauge sampling needs no transactional consistency.
type GormStatsProvider struct {
	db *gorm.DB
}

// NewGormStatsProvider creates a new GormStatsProvider.
func NewGormStatsProvider(db *gorm.DB) *GormStatsProvider {
	return &GormStatsProvider{db: db}
}

var _ StatsProvider = (*GormStatsProvider)(nil)

// OrderCountByStatus returns how many orders the tenant has per status.
func (p *GormStatsProvider) OrderCountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	type row struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	var rows []row
	err := p.db.WithContext(ctx).
		Table("orders").
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// StockOnHandUnits sums the unsold remainder of every live purchase batch.
func (p *GormStatsProvider) StockOnHandUnits(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var units float64
	err := p.db.WithContext(ctx).
		Table("purchase_batches").
		Select("COALESCE(SUM(quantity_received - quantity_sold), 0)").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Scan(&units).Error
	if err != nil {
		return 0, err
	}
	return int64(units), nil
}

// ActiveTenantIDs returns every tenant that has placed at least one order.
// There is no tenant registry table; the orders table is the source of
// truth for which tenants are live.
func (p *GormStatsProvider) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("orders").
		Distinct("tenant_id").
		Find(&ids).Error
	return ids, err
}
