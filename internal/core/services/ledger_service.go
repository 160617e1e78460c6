package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
	"github.com/retailops/ledger_service/internal/utils/accounting"
)

// ledgerService is the read and reconcile surface over the general ledger.
// The write path lives inside the journal posting transaction; there is
// deliberately no mutation here.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerReader
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates a new ledger read service.
func NewLedgerService(ledgerRepo portsrepo.LedgerReader, accountRepo portsrepo.AccountReader) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ListLedgerRows reads an account's ledger rows in insertion order.
func (s *ledgerService) ListLedgerRows(ctx context.Context, tenantID, accountID string, params dto.ListLedgerRowsParams) (*dto.ListLedgerRowsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, nextToken, err := s.ledgerRepo.ListLedgerRows(ctx, tenantID, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}

	responses := make([]dto.LedgerRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = dto.ToLedgerRowResponse(r)
	}
	return &dto.ListLedgerRowsResponse{Rows: responses, NextToken: nextToken}, nil
}

// GetAccountBalance returns the cached per-period balance row.
func (s *ledgerService) GetAccountBalance(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.AccountBalance, error) {
	return s.ledgerRepo.GetAccountBalance(ctx, tenantID, accountID, fiscalYearID, periodID)
}

// RecomputeFromLedger rebuilds an account's period balance from the ledger
// and compares it against the cache. Both the cache builder in the posting
// path and this check apply the same sign convention, so a mismatch always
// means a posting bug, not a convention drift.
func (s *ledgerService) RecomputeFromLedger(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.BalanceCheck, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	cached, err := s.ledgerRepo.GetAccountBalance(ctx, tenantID, accountID, fiscalYearID, periodID)
	if err != nil {
		return nil, err
	}

	debits, credits, err := s.ledgerRepo.SumLedgerForAccount(ctx, tenantID, accountID, fiscalYearID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger rows: %w", err)
	}

	recomputed := accounting.ClosingBalance(account.Category, cached.OpeningBalance, debits, credits)
	check := &domain.BalanceCheck{
		AccountID:  accountID,
		PeriodID:   periodID,
		Cached:     cached.CurrentBalance,
		Recomputed: recomputed,
		Consistent: cached.CurrentBalance.Equal(recomputed),
	}

	if !check.Consistent {
		// A drifted cache is an integrity incident; surface it loudly.
		logger.Error("Account balance cache inconsistent with ledger",
			slog.String("account_id", accountID),
			slog.String("period_id", periodID),
			slog.String("cached", check.Cached.String()),
			slog.String("recomputed", check.Recomputed.String()))
	}
	return check, nil
}
