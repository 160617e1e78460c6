package services

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// TrialBalanceSvcFacade generates and finalizes trial balance snapshots.
type TrialBalanceSvcFacade interface {
	// Generate aggregates ledger totals per account up to asOf into a
	// draft snapshot. An imbalance across all entries is
	// ErrImbalancedLedger: a Ledger Poster bug, not user error.
	Generate(ctx context.Context, tenantID string, req dto.GenerateTrialBalanceRequest, actorID string) (*domain.TrialBalance, error)

	// Finalize is a one-way, audit-stamped transition; finalizing twice
	// yields ErrInvalidState.
	Finalize(ctx context.Context, tenantID, trialBalanceID, actorID string) (*domain.TrialBalance, error)

	GetTrialBalanceByID(ctx context.Context, tenantID, trialBalanceID string) (*domain.TrialBalance, error)
	ListTrialBalances(ctx context.Context, tenantID string, params dto.ListTrialBalancesParams) (*dto.ListTrialBalancesResponse, error)
}
