package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM.
// Transactions are append-only; this repository only ever inserts.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Save appends a transaction and its lines
func (r *GormTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(txn)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a transaction with its lines
func (r *GormTransactionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource returns all transactions originating from a business document
func (r *GormTransactionRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(transactionModels), nil
}

// FindBySourceAndKind returns transactions for a document filtered by entry
// kind, ordered by variance episode then creation time ascending
func (r *GormTransactionRepository) FindBySourceAndKind(ctx context.Context, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID, kind ledger.EntryKind) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND source_type = ? AND source_id = ? AND entry_kind = ?",
			tenantID, sourceType, sourceID, kind).
		Order("variance_episode ASC, created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(transactionModels), nil
}

// FindByPeriod returns all transactions dated inside [from, to]
func (r *GormTransactionRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND transaction_date >= ? AND transaction_date <= ?", tenantID, from, to).
		Order("transaction_date ASC, created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(transactionModels), nil
}

// ExistsReversalOf reports whether a reversal referencing the transaction exists
func (r *GormTransactionRepository) ExistsReversalOf(ctx context.Context, tenantID, transactionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("tenant_id = ? AND reverses_transaction_id = ?", tenantID, transactionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDomainTransactions(transactionModels []models.TransactionModel) []ledger.Transaction {
	transactions := make([]ledger.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = *transactionModels[i].ToDomain()
	}
	return transactions
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
