package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByCode finds an account by tenant and code
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an account by tenant and ID
func (r *GormAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns the full chart of accounts for a tenant
func (r *GormAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Create inserts a new account. The tenant+code unique index turns a
// concurrent first-use of the same code into shared.ErrAlreadyExists so the
// caller can re-read the winning row.
func (r *GormAccountRepository) Create(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// AdjustBalance atomically applies a signed delta to the running balance.
// The addition happens in SQL so concurrent transactions cannot interleave
// a read-modify-write.
func (r *GormAccountRepository) AdjustBalance(ctx context.Context, tenantID, accountID uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, accountID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
