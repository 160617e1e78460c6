package repositories

import (
	"context"
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
)

// RecurringJournalReader defines read operations for recurring journal
// templates.
type RecurringJournalReader interface {
	FindRecurringJournalByID(ctx context.Context, tenantID, recurringJournalID string) (*domain.RecurringJournal, error)
	FindEntriesByRecurringJournalID(ctx context.Context, recurringJournalID string) ([]domain.RecurringJournalEntry, error)
	ListRecurringJournals(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.RecurringJournal, *string, error)

	// ListDue returns active templates whose next_run_date has been
	// reached, across tenants, entries included, up to limit.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.RecurringJournal, error)

	// FindRunJournalID returns the journal claimed for (template,
	// scheduled date), or ErrNotFound when no run row exists.
	FindRunJournalID(ctx context.Context, recurringJournalID string, scheduledFor time.Time) (string, error)
}

// RecurringJournalWriter defines write operations for recurring journal
// templates and their run ledger.
type RecurringJournalWriter interface {
	SaveRecurringJournal(ctx context.Context, recurring domain.RecurringJournal, entries []domain.RecurringJournalEntry) error
	DeactivateRecurringJournal(ctx context.Context, tenantID, recurringJournalID, updatedBy string, at time.Time) error

	// RecordRun claims (template, scheduled date) before materializing.
	// A second claim for the same pair yields ErrDuplicate, which makes
	// Tick idempotent per due date.
	RecordRun(ctx context.Context, recurringJournalID string, scheduledFor time.Time, journalID string) error

	// AdvanceNextRun moves the template's next_run_date forward.
	AdvanceNextRun(ctx context.Context, recurringJournalID string, nextRunDate time.Time, updatedBy string, at time.Time) error
}

// RecurringJournalRepositoryFacade combines recurring journal repository
// interfaces.
type RecurringJournalRepositoryFacade interface {
	RecurringJournalReader
	RecurringJournalWriter
}
