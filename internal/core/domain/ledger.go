package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GeneralLedger is one append-only row per posted journal entry. Rows are
// never updated or deleted; corrections arrive as new rows from a reversal
// journal. Balance is the running total for the account as of this row and
// is only meaningful relative to the per-account insertion order.
type GeneralLedger struct {
	LedgerID        string          `json:"ledgerID"`
	TenantID        string          `json:"tenantID"`
	AccountID       string          `json:"accountID"`
	JournalID       string          `json:"journalID"`
	JournalEntryID  string          `json:"journalEntryID"` // unique, backs posting idempotency
	FiscalYearID    string          `json:"fiscalYearID"`
	PeriodID        string          `json:"periodID"`
	ShopID          string          `json:"shopID,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// AccountBalance is the per (account, fiscal year, period) running balance
// cache. It is mutated only by the posting transaction and is recomputable
// from GeneralLedger as a consistency check.
type AccountBalance struct {
	BalanceID      string          `json:"balanceID"`
	TenantID       string          `json:"tenantID"`
	AccountID      string          `json:"accountID"`
	FiscalYearID   string          `json:"fiscalYearID"`
	PeriodID       string          `json:"periodID"`
	ShopID         string          `json:"shopID,omitempty"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
	AuditFields
}

// BalanceCheck is the result of recomputing an account balance from the
// ledger and comparing it against the cached AccountBalance row.
type BalanceCheck struct {
	AccountID  string          `json:"accountID"`
	PeriodID   string          `json:"periodID"`
	Cached     decimal.Decimal `json:"cached"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Consistent bool            `json:"consistent"`
}
