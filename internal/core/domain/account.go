package domain

import (
	"github.com/shopspring/decimal"
)

// AccountCategory is the fundamental accounting classification of an
// account type. It fixes the normal-balance side.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Income    AccountCategory = "INCOME"
	Expense   AccountCategory = "EXPENSE"
)

// NormalBalanceSide is the side on which an account naturally increases.
type NormalBalanceSide string

const (
	DebitNormal  NormalBalanceSide = "DEBIT"
	CreditNormal NormalBalanceSide = "CREDIT"
)

// NormalSide returns the normal-balance side for a category: assets and
// expenses increase on the debit side, everything else on the credit side.
func (c AccountCategory) NormalSide() NormalBalanceSide {
	switch c {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Valid reports whether the category is one of the five known values.
func (c AccountCategory) Valid() bool {
	switch c {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// AccountType is a tenant-scoped classification for accounts, e.g.
// "Current Assets" under the ASSET category. Immutable once accounts with
// postings reference it; soft-deactivated, never deleted.
type AccountType struct {
	AccountTypeID string          `json:"accountTypeID"`
	TenantID      string          `json:"tenantID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      AccountCategory `json:"category"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// Account is a node in a tenant's chart of accounts. The parent reference
// is non-owning: the registry owns the set, parents do not own children.
// CurrentBalance is a denormalized cache, the ledger is authoritative.
type Account struct {
	AccountID        string          `json:"accountID"`
	TenantID         string          `json:"tenantID"`
	AccountTypeID    string          `json:"accountTypeID"`
	ParentAccountID  string          `json:"parentAccountID,omitempty"` // empty when root
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Category         AccountCategory `json:"category"` // denormalized from AccountType
	Description      string          `json:"description,omitempty"`
	IsCashAccount    bool            `json:"isCashAccount"`
	IsBankAccount    bool            `json:"isBankAccount"`
	IsControlAccount bool            `json:"isControlAccount"`
	IsActive         bool            `json:"isActive"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AuditFields
}
