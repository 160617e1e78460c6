package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
	"github.com/retailops/ledger_service/internal/utils/accounting"
)

// trialBalanceService generates and finalizes trial balance snapshots from
// ledger state. It never mutates the ledger.
type trialBalanceService struct {
	trialBalanceRepo portsrepo.TrialBalanceRepositoryFacade
	ledgerRepo       portsrepo.LedgerReader
	periodSvc        portssvc.PeriodSvcFacade
	publisher        portssvc.EventPublisher
}

// NewTrialBalanceService creates a new trial balance service.
func NewTrialBalanceService(
	trialBalanceRepo portsrepo.TrialBalanceRepositoryFacade,
	ledgerRepo portsrepo.LedgerReader,
	periodSvc portssvc.PeriodSvcFacade,
	publisher portssvc.EventPublisher,
) portssvc.TrialBalanceSvcFacade {
	return &trialBalanceService{
		trialBalanceRepo: trialBalanceRepo,
		ledgerRepo:       ledgerRepo,
		periodSvc:        periodSvc,
		publisher:        publisher,
	}
}

var _ portssvc.TrialBalanceSvcFacade = (*trialBalanceService)(nil)

// Generate aggregates ledger totals per account up to asOf into a draft
// snapshot. An imbalance across all entries means the ledger itself is
// corrupt; nothing is persisted in that case.
func (s *trialBalanceService) Generate(ctx context.Context, tenantID string, req dto.GenerateTrialBalanceRequest, actorID string) (*domain.TrialBalance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodSvc.FindPeriodForDate(ctx, tenantID, req.AsOfDate)
	if err == nil && period.PeriodID != req.PeriodID {
		logger.Debug("Trial balance asOf date falls outside the requested period",
			slog.String("requested_period", req.PeriodID),
			slog.String("date_period", period.PeriodID))
	}

	rows, err := s.ledgerRepo.AggregateLedgerTotals(ctx, tenantID, req.FiscalYearID, req.PeriodID, req.AsOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger totals: %w", err)
	}

	now := time.Now().UTC()
	trialBalanceID := uuid.NewString()
	totalDebits, totalCredits := decimal.Zero, decimal.Zero
	entries := make([]domain.TrialBalanceEntry, len(rows))
	for i, row := range rows {
		row.EntryID = uuid.NewString()
		row.TrialBalanceID = trialBalanceID
		row.ClosingBalance = accounting.ClosingBalance(row.Category, decimal.Zero, row.TotalDebits, row.TotalCredits)
		entries[i] = row
		totalDebits = totalDebits.Add(row.TotalDebits)
		totalCredits = totalCredits.Add(row.TotalCredits)
	}

	if !totalDebits.Equal(totalCredits) {
		// The ledger does not balance. This cannot happen while posting
		// invariants hold, so surface it as an integrity failure.
		logger.Error("Trial balance generation found an imbalanced ledger",
			slog.String("tenant_id", tenantID),
			slog.String("period_id", req.PeriodID),
			slog.String("total_debits", totalDebits.String()),
			slog.String("total_credits", totalCredits.String()))
		return nil, fmt.Errorf("%w: debits %s, credits %s",
			apperrors.ErrImbalancedLedger, totalDebits.String(), totalCredits.String())
	}

	trialBalance := domain.TrialBalance{
		TrialBalanceID: trialBalanceID,
		TenantID:       tenantID,
		FiscalYearID:   req.FiscalYearID,
		PeriodID:       req.PeriodID,
		AsOfDate:       req.AsOfDate,
		Status:         domain.TrialBalanceDraft,
		TotalDebits:    totalDebits,
		TotalCredits:   totalCredits,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.trialBalanceRepo.SaveTrialBalance(ctx, trialBalance, entries); err != nil {
		logger.Error("Failed to save trial balance", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save trial balance: %w", err)
	}

	logger.Info("Trial balance generated",
		slog.String("trial_balance_id", trialBalanceID),
		slog.Int("accounts", len(entries)),
		slog.String("tenant_id", tenantID))
	trialBalance.Entries = entries
	return &trialBalance, nil
}

// Finalize flips a draft snapshot to final. One-way.
func (s *trialBalanceService) Finalize(ctx context.Context, tenantID, trialBalanceID, actorID string) (*domain.TrialBalance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.trialBalanceRepo.FinalizeTrialBalance(ctx, tenantID, trialBalanceID, actorID, now); err != nil {
		return nil, err
	}

	logger.Info("Trial balance finalized",
		slog.String("trial_balance_id", trialBalanceID),
		slog.String("finalized_by", actorID))
	s.publisher.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       domain.EventTrialBalanceFinalized,
		TenantID:   tenantID,
		EntityID:   trialBalanceID,
		Actor:      actorID,
		OccurredAt: now,
	})

	return s.GetTrialBalanceByID(ctx, tenantID, trialBalanceID)
}

// GetTrialBalanceByID retrieves a snapshot with its entries.
func (s *trialBalanceService) GetTrialBalanceByID(ctx context.Context, tenantID, trialBalanceID string) (*domain.TrialBalance, error) {
	trialBalance, err := s.trialBalanceRepo.FindTrialBalanceByID(ctx, tenantID, trialBalanceID)
	if err != nil {
		return nil, err
	}
	entries, err := s.trialBalanceRepo.FindEntriesByTrialBalanceID(ctx, trialBalanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trial balance entries: %w", err)
	}
	trialBalance.Entries = entries
	return trialBalance, nil
}

// ListTrialBalances retrieves a token-paginated page of snapshots.
func (s *trialBalanceService) ListTrialBalances(ctx context.Context, tenantID string, params dto.ListTrialBalancesParams) (*dto.ListTrialBalancesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	trialBalances, nextToken, err := s.trialBalanceRepo.ListTrialBalances(ctx, tenantID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list trial balances: %w", err)
	}

	responses := make([]dto.TrialBalanceResponse, len(trialBalances))
	for i := range trialBalances {
		responses[i] = dto.ToTrialBalanceResponse(&trialBalances[i])
	}
	return &dto.ListTrialBalancesResponse{TrialBalances: responses, NextToken: nextToken}, nil
}
