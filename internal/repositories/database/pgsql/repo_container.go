package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	periodRepo := newPgxPeriodRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, periodRepo)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	trialBalanceRepo := newPgxTrialBalanceRepository(dbPool)
	recurringRepo := newPgxRecurringRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		PeriodRepo:       periodRepo,
		JournalRepo:      journalRepo,
		LedgerRepo:       ledgerRepo,
		TrialBalanceRepo: trialBalanceRepo,
		RecurringRepo:    recurringRepo,
	}
}
