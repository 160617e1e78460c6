package services

import (
	"context"
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// PeriodSvcFacade is the Period Guard: fiscal years and accounting periods
// with irreversible close transitions. The posting path additionally
// re-checks the period inside its own transaction; IsOpen is the
// non-transactional read used for validation and display.
type PeriodSvcFacade interface {
	CreateFiscalYear(ctx context.Context, tenantID string, req dto.CreateFiscalYearRequest, creatorID string) (*domain.FiscalYear, error)
	ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error)

	CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creatorID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error)

	// FindPeriodForDate resolves a journal date to its accounting period.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)

	IsOpen(ctx context.Context, tenantID, fiscalYearID, periodID string) (bool, error)

	// ClosePeriod is irreversible; an already-closed period yields
	// ErrAlreadyClosed.
	ClosePeriod(ctx context.Context, tenantID, periodID, actorID string) error

	// CloseFiscalYear requires every child period to be closed first.
	CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, actorID string) error
}
