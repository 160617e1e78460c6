package services

import (
	"context"
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// RecurringSvcFacade manages recurring journal templates and the scheduler
// pass that materializes them.
type RecurringSvcFacade interface {
	CreateRecurringJournal(ctx context.Context, tenantID string, req dto.CreateRecurringJournalRequest, creatorID string) (*domain.RecurringJournal, error)
	GetRecurringJournalByID(ctx context.Context, tenantID, recurringJournalID string) (*domain.RecurringJournal, error)
	ListRecurringJournals(ctx context.Context, tenantID string, params dto.ListRecurringJournalsParams) (*dto.ListRecurringJournalsResponse, error)
	DeactivateRecurringJournal(ctx context.Context, tenantID, recurringJournalID, actorID string) error

	// Tick materializes every due template into a posted journal and
	// advances its next run date. Idempotent per (template, due date):
	// re-running for an already-claimed date skips it.
	Tick(ctx context.Context, now time.Time) (*dto.TickResponse, error)
}
