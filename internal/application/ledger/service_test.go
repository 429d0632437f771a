package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	"github.com/merchantry/backend/internal/domain/ledger"
)

func TestService_PostTransaction(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	resp, err := svc.PostTransaction(ctx, tenantID, PostTransactionRequest{
		Description: "Opening cash balance",
		Lines: []PostTransactionLineInput{
			{AccountCode: ledger.AccountCodeCash, DebitAmount: decimal.NewFromInt(5000)},
			{AccountCode: ledger.AccountCodeOpeningBalances, CreditAmount: decimal.NewFromInt(5000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.SourceTypeManual, resp.SourceType)
	assert.Equal(t, ledger.EntryKindManual, resp.EntryKind)
	assert.Len(t, resp.Lines, 2)

	// accounts are created on first use with their well-known types
	cash, err := fixture.AccountRepo.FindByCode(ctx, tenantID, ledger.AccountCodeCash)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeAsset, cash.Type)
	assert.True(t, cash.Balance.Equal(decimal.NewFromInt(5000)))

	opening, err := fixture.AccountRepo.FindByCode(ctx, tenantID, ledger.AccountCodeOpeningBalances)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountTypeEquity, opening.Type)
	assert.True(t, opening.Balance.Equal(decimal.NewFromInt(5000)))
}

func TestService_PostTransaction_RejectsUnbalanced(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())

	_, err := svc.PostTransaction(context.Background(), uuid.New(), PostTransactionRequest{
		Description: "Lopsided entry",
		Lines: []PostTransactionLineInput{
			{AccountCode: ledger.AccountCodeCash, DebitAmount: decimal.NewFromInt(100)},
			{AccountCode: ledger.AccountCodeSales, CreditAmount: decimal.NewFromInt(99)},
		},
	})
	require.Error(t, err)
	assert.Empty(t, fixture.TransactionRepo.All())
}

func TestPoster_ReverseLatestUnreversed(t *testing.T) {
	fixture := apptest.NewFixture()
	poster := NewPoster(fixture.AccountRepo, fixture.TransactionRepo)
	tenantID := uuid.New()
	orderID := uuid.New()
	ctx := context.Background()

	debit, err := ledger.DebitLine(ledger.AccountCodeAR, decimal.NewFromInt(1200), "")
	require.NoError(t, err)
	credit, err := ledger.CreditLine(ledger.AccountCodeSales, decimal.NewFromInt(1200), "")
	require.NoError(t, err)
	txn, err := ledger.NewTransaction(tenantID, time.Now(), "Revenue",
		ledger.SourceTypeOrder, &orderID, ledger.EntryKindRevenue,
		[]ledger.TransactionLine{*debit, *credit})
	require.NoError(t, err)
	require.NoError(t, poster.Post(ctx, txn))

	reversal, err := poster.ReverseLatestUnreversed(ctx, tenantID, ledger.SourceTypeOrder, orderID, ledger.EntryKindRevenue, "Cancelled")
	require.NoError(t, err)
	require.NotNil(t, reversal)
	assert.Equal(t, &txn.ID, reversal.ReversesTransactionID)

	// the original is never mutated, the reversal nets the balances to zero
	assert.True(t, fixture.AccountBalance(tenantID, ledger.AccountCodeAR).IsZero())
	assert.True(t, fixture.AccountBalance(tenantID, ledger.AccountCodeSales).IsZero())
	assert.Len(t, fixture.TransactionRepo.All(), 2)

	// nothing left to reverse: no-op, not an error
	again, err := poster.ReverseLatestUnreversed(ctx, tenantID, ledger.SourceTypeOrder, orderID, ledger.EntryKindRevenue, "Cancelled")
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, fixture.TransactionRepo.All(), 2)
}

func TestPoster_ResolveAccount_ReusesExisting(t *testing.T) {
	fixture := apptest.NewFixture()
	poster := NewPoster(fixture.AccountRepo, fixture.TransactionRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	first, err := poster.ResolveAccount(ctx, tenantID, ledger.AccountCodeAP)
	require.NoError(t, err)
	second, err := poster.ResolveAccount(ctx, tenantID, ledger.AccountCodeAP)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// tenants do not share accounts
	other, err := poster.ResolveAccount(ctx, uuid.New(), ledger.AccountCodeAP)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}
