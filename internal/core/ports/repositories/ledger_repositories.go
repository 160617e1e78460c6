package repositories

import (
	"context"
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over the append-only general ledger
// and the account balance cache. The ledger itself is written only by the
// journal posting transaction.
type LedgerReader interface {
	// ListLedgerRows retrieves a token-paginated, insertion-ordered slice
	// of an account's ledger rows.
	ListLedgerRows(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.GeneralLedger, *string, error)

	// GetAccountBalance returns the cached balance row for
	// (account, fiscal year, period).
	GetAccountBalance(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.AccountBalance, error)

	// SumLedgerForAccount recomputes period totals straight from the
	// ledger, used to verify the cache.
	SumLedgerForAccount(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (debits, credits decimal.Decimal, err error)

	// AggregateLedgerTotals sums debit/credit per account over a period up
	// to asOf, joined with account metadata, for trial balance generation.
	AggregateLedgerTotals(ctx context.Context, tenantID, fiscalYearID, periodID string, asOf time.Time) ([]domain.TrialBalanceEntry, error)
}
