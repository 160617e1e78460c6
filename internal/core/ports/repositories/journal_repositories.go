package repositories

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListJournalsFilter narrows journal listings.
type ListJournalsFilter struct {
	Status   *domain.JournalStatus
	PeriodID *string
	// IncludeReversals also returns reversal journals and reversed
	// originals; off by default to keep listings readable.
	IncludeReversals bool
}

// JournalReader defines read operations for journal data.
type JournalReader interface {
	FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error)

	FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error)

	// ListJournals retrieves a token-paginated list of a tenant's journals.
	ListJournals(ctx context.Context, tenantID string, filter ListJournalsFilter, limit int, nextToken *string) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data. The posting
// methods are atomic: either the journal, every ledger row, and every
// balance update land together, or none do.
type JournalWriter interface {
	// SaveDraft persists a draft journal with its entries.
	SaveDraft(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry) error

	// DeleteDraft removes a draft journal and its entries. Posted or
	// reversed journals yield ErrInvalidState.
	DeleteDraft(ctx context.Context, tenantID, journalID string) error

	// PostJournal transitions a draft to posted inside one transaction:
	// share-locks the accounting period (closed -> ErrPeriodClosed),
	// locks the affected accounts, appends general ledger rows with
	// running balances, upserts per-period account balances, and stamps
	// posted_by/at. A concurrent post of the same journal loses the
	// status guard and yields ErrInvalidState; a replayed entry hits the
	// ledger uniqueness constraint and yields ErrDuplicatePosting.
	PostJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error

	// SaveReversal persists an already-balanced reversal journal as
	// posted (including its ledger rows and balance updates) and marks
	// the original reversed, all in one transaction.
	SaveReversal(ctx context.Context, original domain.Journal, reversal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error

	// NextJournalNumber reserves the next tenant-scoped journal sequence
	// number.
	NextJournalNumber(ctx context.Context, tenantID string) (int64, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
