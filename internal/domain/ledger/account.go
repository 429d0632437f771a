package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// AccountType classifies a chart-of-accounts entry
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Well-known account codes used by the order lifecycle. Accounts are created
// on first use through the ledger service's ResolveAccount.
const (
	AccountCodeCash             = "CASH"
	AccountCodeBank             = "BANK"
	AccountCodeAR               = "ACCOUNTS_RECEIVABLE"
	AccountCodeAP               = "ACCOUNTS_PAYABLE"
	AccountCodeInventory        = "INVENTORY"
	AccountCodeCustomerAdvance  = "CUSTOMER_ADVANCE"
	AccountCodeSales            = "SALES_REVENUE"
	AccountCodeShippingRevenue  = "SHIPPING_REVENUE"
	AccountCodeCodFeeRevenue    = "COD_FEE_REVENUE"
	AccountCodeVarianceIncome   = "SHIPPING_VARIANCE_INCOME"
	AccountCodeSalesReturns     = "SALES_RETURNS"
	AccountCodeCOGS             = "COST_OF_GOODS_SOLD"
	AccountCodeShippingExpense  = "SHIPPING_EXPENSE"
	AccountCodeVarianceExpense  = "SHIPPING_VARIANCE_EXPENSE"
	AccountCodeCodFeeExpense    = "COD_FEE_EXPENSE"
	AccountCodeOwnerEquity      = "OWNER_EQUITY"
	AccountCodeOpeningBalances  = "OPENING_BALANCES"
	AccountCodeRoundingVariance = "ROUNDING_VARIANCE"
)

// DefaultAccountType returns the account type for a well-known code.
// Unknown codes default to EXPENSE so a typo cannot inflate income.
func DefaultAccountType(code string) AccountType {
	switch code {
	case AccountCodeCash, AccountCodeBank, AccountCodeAR, AccountCodeInventory:
		return AccountTypeAsset
	case AccountCodeAP, AccountCodeCustomerAdvance:
		return AccountTypeLiability
	case AccountCodeSales, AccountCodeShippingRevenue, AccountCodeCodFeeRevenue, AccountCodeVarianceIncome:
		return AccountTypeIncome
	case AccountCodeSalesReturns:
		// Contra-revenue; tracked as expense so debits grow the balance.
		return AccountTypeExpense
	case AccountCodeOwnerEquity, AccountCodeOpeningBalances:
		return AccountTypeEquity
	default:
		return AccountTypeExpense
	}
}

// Account is a per-tenant chart-of-accounts entry with a running balance.
// Code is unique within a tenant; the storage layer enforces the constraint
// so concurrent first-use cannot create duplicates.
type Account struct {
	shared.TenantAggregateRoot
	Code    string
	Name    string
	Type    AccountType
	Balance decimal.Decimal
}

// NewAccount creates a new account with a zero balance
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Account code cannot be empty")
	}
	if name == "" {
		name = code
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Unknown account type: "+string(accountType))
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		Balance:             decimal.Zero,
	}, nil
}

// ApplyLine applies a transaction line to the running balance using the
// double-entry sign convention: INCOME/LIABILITY/EQUITY grow with credits,
// ASSET/EXPENSE grow with debits.
func (a *Account) ApplyLine(debit, credit decimal.Decimal) {
	switch a.Type {
	case AccountTypeIncome, AccountTypeLiability, AccountTypeEquity:
		a.Balance = a.Balance.Add(credit).Sub(debit)
	default:
		a.Balance = a.Balance.Add(debit).Sub(credit)
	}
	a.UpdatedAt = time.Now()
}

// BalanceDelta returns the signed balance change a line would cause without
// applying it. Used by the repository's atomic balance update.
func (a *Account) BalanceDelta(debit, credit decimal.Decimal) decimal.Decimal {
	switch a.Type {
	case AccountTypeIncome, AccountTypeLiability, AccountTypeEquity:
		return credit.Sub(debit)
	default:
		return debit.Sub(credit)
	}
}
