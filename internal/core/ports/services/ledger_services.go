package services

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// LedgerSvcFacade is the read/reconcile side of the Ledger Poster. Writes
// to the general ledger happen only inside the journal posting transaction.
type LedgerSvcFacade interface {
	// ListLedgerRows reads the authoritative append-only ledger.
	ListLedgerRows(ctx context.Context, tenantID, accountID string, params dto.ListLedgerRowsParams) (*dto.ListLedgerRowsResponse, error)

	// GetAccountBalance reads the cached per-period balance row. The
	// cache may be marginally stale relative to in-flight postings.
	GetAccountBalance(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.AccountBalance, error)

	// RecomputeFromLedger rebuilds an account's period balance from
	// ledger rows and compares it against the cache. The single
	// reconciliation path for both verification and repair tooling.
	RecomputeFromLedger(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.BalanceCheck, error)
}
