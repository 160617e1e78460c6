package repositories

import (
	"context"
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
)

// TrialBalanceReader defines read operations for trial balance snapshots.
type TrialBalanceReader interface {
	FindTrialBalanceByID(ctx context.Context, tenantID, trialBalanceID string) (*domain.TrialBalance, error)
	FindEntriesByTrialBalanceID(ctx context.Context, trialBalanceID string) ([]domain.TrialBalanceEntry, error)
	ListTrialBalances(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.TrialBalance, *string, error)
}

// TrialBalanceWriter defines write operations for trial balance snapshots.
type TrialBalanceWriter interface {
	// SaveTrialBalance persists a draft snapshot with its entries in one
	// transaction.
	SaveTrialBalance(ctx context.Context, trialBalance domain.TrialBalance, entries []domain.TrialBalanceEntry) error

	// FinalizeTrialBalance flips a draft snapshot to final, stamping
	// finalized_by/at. An already-final snapshot yields ErrInvalidState.
	FinalizeTrialBalance(ctx context.Context, tenantID, trialBalanceID, finalizedBy string, at time.Time) error
}

// TrialBalanceRepositoryFacade combines trial balance repository interfaces.
type TrialBalanceRepositoryFacade interface {
	TrialBalanceReader
	TrialBalanceWriter
}
