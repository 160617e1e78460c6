package services

import (
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account and period services come first since posting depends on both.
	container.Account = NewAccountService(repos.AccountRepo)
	container.Period = NewPeriodService(repos.PeriodRepo, publisher)

	container.Journal = NewJournalService(repos.JournalRepo, container.Account, container.Period, publisher)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	container.TrialBalance = NewTrialBalanceService(repos.TrialBalanceRepo, repos.LedgerRepo, container.Period, publisher)
	container.Recurring = NewRecurringService(repos.RecurringRepo, container.Journal, container.Account)

	return container
}
