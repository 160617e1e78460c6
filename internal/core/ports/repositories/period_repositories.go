package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/retailops/ledger_service/internal/core/domain"
)

// PeriodReader defines read operations for fiscal year and period data.
type PeriodReader interface {
	FindFiscalYearByID(ctx context.Context, tenantID, fiscalYearID string) (*domain.FiscalYear, error)
	ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error)

	FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error)

	// FindPeriodForDate resolves a journal date to its accounting period.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)

	// CountOpenPeriods returns how many periods of a fiscal year are still
	// active. A fiscal year may only close when this reaches zero.
	CountOpenPeriods(ctx context.Context, tenantID, fiscalYearID string) (int, error)
}

// PeriodWriter defines write operations for fiscal year and period data.
type PeriodWriter interface {
	SaveFiscalYear(ctx context.Context, fiscalYear domain.FiscalYear) error
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	// ClosePeriod flips an active period to closed, stamping closed_by/at.
	// Returns ErrAlreadyClosed when the period is already closed. The
	// update takes a row lock, so it waits for in-flight postings holding
	// a share lock on the same row.
	ClosePeriod(ctx context.Context, tenantID, periodID, closedBy string, at time.Time) error

	// CloseFiscalYear closes a fiscal year after verifying every child
	// period is closed, all within one transaction.
	CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, closedBy string, at time.Time) error
}

// PeriodPostingSupport exposes the in-transaction period check the posting
// path relies on. The share lock blocks ClosePeriod from sneaking in
// between the open check and the ledger append.
type PeriodPostingSupport interface {
	FindPeriodForShare(ctx context.Context, tx pgx.Tx, tenantID, periodID string) (*domain.AccountingPeriod, error)
}

// PeriodRepositoryFacade combines all period-related repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
	PeriodPostingSupport
}
