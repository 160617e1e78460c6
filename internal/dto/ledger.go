package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerRowResponse is the API representation of one general ledger row.
type LedgerRowResponse struct {
	LedgerID        string          `json:"ledgerID"`
	AccountID       string          `json:"accountID"`
	JournalID       string          `json:"journalID"`
	JournalEntryID  string          `json:"journalEntryID"`
	FiscalYearID    string          `json:"fiscalYearID"`
	PeriodID        string          `json:"periodID"`
	ShopID          string          `json:"shopID,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	Balance         decimal.Decimal `json:"balance"`
}

// AccountBalanceResponse is the API representation of a cached per-period
// account balance.
type AccountBalanceResponse struct {
	AccountID      string          `json:"accountID"`
	FiscalYearID   string          `json:"fiscalYearID"`
	PeriodID       string          `json:"periodID"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalDebits    decimal.Decimal `json:"totalDebits"`
	TotalCredits   decimal.Decimal `json:"totalCredits"`
}

// BalanceCheckResponse reports a cache-vs-ledger reconciliation result.
type BalanceCheckResponse struct {
	AccountID  string          `json:"accountID"`
	PeriodID   string          `json:"periodID"`
	Cached     decimal.Decimal `json:"cached"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Consistent bool            `json:"consistent"`
}

// ListLedgerRowsParams holds query parameters for listing ledger rows.
type ListLedgerRowsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLedgerRowsResponse is a token-paginated page of ledger rows.
type ListLedgerRowsResponse struct {
	Rows      []LedgerRowResponse `json:"rows"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// ToLedgerRowResponse maps a domain ledger row to its API shape.
func ToLedgerRowResponse(r domain.GeneralLedger) LedgerRowResponse {
	return LedgerRowResponse{
		LedgerID:        r.LedgerID,
		AccountID:       r.AccountID,
		JournalID:       r.JournalID,
		JournalEntryID:  r.JournalEntryID,
		FiscalYearID:    r.FiscalYearID,
		PeriodID:        r.PeriodID,
		ShopID:          r.ShopID,
		TransactionDate: r.TransactionDate,
		DebitAmount:     r.DebitAmount,
		CreditAmount:    r.CreditAmount,
		Balance:         r.Balance,
	}
}

// ToAccountBalanceResponse maps a domain balance row to its API shape.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:      b.AccountID,
		FiscalYearID:   b.FiscalYearID,
		PeriodID:       b.PeriodID,
		OpeningBalance: b.OpeningBalance,
		CurrentBalance: b.CurrentBalance,
		TotalDebits:    b.TotalDebits,
		TotalCredits:   b.TotalCredits,
	}
}

// ToBalanceCheckResponse maps a reconciliation result to its API shape.
func ToBalanceCheckResponse(c *domain.BalanceCheck) BalanceCheckResponse {
	return BalanceCheckResponse{
		AccountID:  c.AccountID,
		PeriodID:   c.PeriodID,
		Cached:     c.Cached,
		Recomputed: c.Recomputed,
		Consistent: c.Consistent,
	}
}
