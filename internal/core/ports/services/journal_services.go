package services

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// JournalSvcFacade is the Journal Manager: the only component that moves
// journals through the DRAFT -> POSTED -> REVERSED lifecycle.
type JournalSvcFacade interface {
	// CreateDraft validates entries (balanced, postable accounts, open
	// period) and persists a draft journal.
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error)

	// Post irreversibly applies a draft journal to the general ledger.
	Post(ctx context.Context, tenantID, journalID, actorID string) (*domain.Journal, error)

	// Reverse creates and posts a mirrored journal offsetting a posted
	// one, and marks the original reversed. Returns the reversal journal.
	Reverse(ctx context.Context, tenantID, journalID, actorID string) (*domain.Journal, error)

	// DeleteDraft removes a draft journal; any other status is
	// ErrInvalidState.
	DeleteDraft(ctx context.Context, tenantID, journalID, actorID string) error

	GetJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error)
	ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}
