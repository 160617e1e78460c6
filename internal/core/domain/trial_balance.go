package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceStatus is the lifecycle state of a trial balance snapshot.
type TrialBalanceStatus string

const (
	TrialBalanceDraft TrialBalanceStatus = "DRAFT"
	TrialBalanceFinal TrialBalanceStatus = "FINAL"
)

// TrialBalance is a point-in-time snapshot of per-account debit/credit
// totals as of a date. Once final it is immutable.
type TrialBalance struct {
	TrialBalanceID string             `json:"trialBalanceID"`
	TenantID       string             `json:"tenantID"`
	FiscalYearID   string             `json:"fiscalYearID"`
	PeriodID       string             `json:"periodID"`
	AsOfDate       time.Time          `json:"asOfDate"`
	Status         TrialBalanceStatus `json:"status"`
	TotalDebits    decimal.Decimal    `json:"totalDebits"`
	TotalCredits   decimal.Decimal    `json:"totalCredits"`
	FinalizedBy    string             `json:"finalizedBy,omitempty"`
	FinalizedAt    *time.Time         `json:"finalizedAt,omitempty"`
	AuditFields
	Entries []TrialBalanceEntry `json:"entries,omitempty"`
}

// TrialBalanceEntry is one account's aggregated debit/credit totals within
// a trial balance snapshot.
type TrialBalanceEntry struct {
	EntryID        string          `json:"entryID"`
	TrialBalanceID string          `json:"trialBalanceID"`
	AccountID      string          `json:"accountID"`
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	Category       AccountCategory `json:"category"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}
