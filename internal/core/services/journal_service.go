package services

import (
	"context"
	"errors"
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

// journalService is the Journal Manager: validates journals, moves them
// through the draft/posted/reversed lifecycle, and hands balanced entry
// sets to the posting transaction.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
	periodSvc   portssvc.PeriodSvcFacade
	publisher   portssvc.EventPublisher
}

// NewJournalService creates a new journal manager service.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	periodSvc portssvc.PeriodSvcFacade,
	publisher portssvc.EventPublisher,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		periodSvc:   periodSvc,
		publisher:   publisher,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildEntries converts request lines into domain entries, deriving the
// side from whichever amount is set. Structural validation happens in
// accounting.ValidateEntries afterwards.
func buildEntries(journalID, tenantID string, reqEntries []dto.CreateJournalEntryRequest, creatorID string, now time.Time) []domain.JournalEntry {
	entries := make([]domain.JournalEntry, len(reqEntries))
	for i, line := range reqEntries {
		side := domain.Debit
		if line.CreditAmount.IsPositive() {
			side = domain.Credit
		}
		entries[i] = domain.JournalEntry{
			EntryID:      uuid.NewString(),
			JournalID:    journalID,
			TenantID:     tenantID,
			AccountID:    line.AccountID,
			ShopID:       line.ShopID,
			Side:         side,
			DebitAmount:  line.DebitAmount,
			CreditAmount: line.CreditAmount,
			Description:  line.Description,
			LineNumber:   i + 1,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorID,
			},
		}
	}
	return entries
}

// balanceDeltas computes the net signed balance change per account for a
// set of entries, given the accounts' categories.
func balanceDeltas(entries []domain.JournalEntry, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, e := range entries {
		acc, ok := accounts[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s missing during balance calculation", apperrors.ErrInternal, e.AccountID)
		}
		delta, err := accounting.SignedDelta(e, acc.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate signed amount: %w", err)
		}
		deltas[e.AccountID] = deltas[e.AccountID].Add(delta)
	}
	return deltas, nil
}

// CreateDraft validates and persists a draft journal. Drafts must already
// balance: unbalanced input is rejected here, not just at post time.
func (s *journalService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalRequest, creatorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	journalID := uuid.NewString()
	entries := buildEntries(journalID, tenantID, req.Entries, creatorID, now)

	if err := accounting.ValidateEntries(entries); err != nil {
		return nil, err
	}

	// Every referenced account must be postable: active, leaf, non-control.
	seen := make(map[string]struct{})
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		if _, err := s.accountSvc.ResolveForPosting(ctx, tenantID, e.AccountID); err != nil {
			return nil, err
		}
	}

	period, err := s.periodSvc.FindPeriodForDate(ctx, tenantID, req.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no accounting period covers %s", apperrors.ErrValidation, req.Date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to resolve accounting period: %w", err)
	}
	open, err := s.periodSvc.IsOpen(ctx, tenantID, period.FiscalYearID, period.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to check period state: %w", err)
	}
	if !open {
		return nil, fmt.Errorf("%w: period %s", apperrors.ErrPeriodClosed, period.Name)
	}

	seq, err := s.journalRepo.NextJournalNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve journal number: %w", err)
	}

	journalType := req.JournalType
	if journalType == "" {
		journalType = domain.JournalTypeManual
	}

	totalDebit, totalCredit := accounting.Totals(entries)
	journal := domain.Journal{
		JournalID:     journalID,
		TenantID:      tenantID,
		JournalNumber: fmt.Sprintf("JRN-%06d", seq),
		JournalDate:   req.Date,
		FiscalYearID:  period.FiscalYearID,
		PeriodID:      period.PeriodID,
		JournalType:   journalType,
		Description:   req.Description,
		CurrencyCode:  req.CurrencyCode,
		Status:        domain.Draft,
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.journalRepo.SaveDraft(ctx, journal, entries); err != nil {
		logger.Error("Failed to save draft journal", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save draft journal: %w", err)
	}

	logger.Info("Draft journal created",
		slog.String("journal_id", journal.JournalID),
		slog.String("journal_number", journal.JournalNumber),
		slog.String("tenant_id", tenantID))
	journal.Entries = entries
	return &journal, nil
}

// Post irreversibly applies a draft journal to the general ledger.
func (s *journalService) Post(ctx context.Context, tenantID, journalID, actorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	if journal.Status != domain.Draft {
		return nil, fmt.Errorf("%w: journal %s is %s, expected DRAFT", apperrors.ErrInvalidState, journalID, journal.Status)
	}

	entries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}

	// Drafts were validated at creation; re-check here so a corrupted
	// draft can never reach the ledger.
	if err := accounting.ValidateEntries(entries); err != nil {
		return nil, err
	}

	accounts, err := s.fetchEntryAccounts(ctx, tenantID, entries)
	if err != nil {
		return nil, err
	}
	deltas, err := balanceDeltas(entries, accounts)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posted := *journal
	posted.Status = domain.Posted
	posted.PostedBy = actorID
	posted.PostedAt = &now
	posted.LastUpdatedAt = now
	posted.LastUpdatedBy = actorID

	if err := s.journalRepo.PostJournal(ctx, posted, entries, deltas); err != nil {
		if errors.Is(err, apperrors.ErrDuplicatePosting) {
			// Safe retry signal: the ledger already holds these entries.
			logger.Warn("Duplicate posting detected", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	logger.Info("Journal posted",
		slog.String("journal_id", journalID),
		slog.String("posted_by", actorID),
		slog.String("tenant_id", tenantID))
	s.publisher.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       domain.EventJournalPosted,
		TenantID:   tenantID,
		EntityID:   journalID,
		Actor:      actorID,
		OccurredAt: now,
		Payload:    map[string]string{"journalNumber": posted.JournalNumber},
	})

	posted.Entries = entries
	return &posted, nil
}

// Reverse creates a mirrored journal offsetting a posted one, posts it in
// the same transaction, and marks the original reversed.
func (s *journalService) Reverse(ctx context.Context, tenantID, journalID, actorID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: journal %s is %s, expected POSTED", apperrors.ErrInvalidState, journalID, original.Status)
	}
	if original.ReversingJournalID != nil {
		return nil, fmt.Errorf("%w: journal %s already has reversal %s", apperrors.ErrInvalidState, journalID, *original.ReversingJournalID)
	}
	if original.OriginalJournalID != nil {
		return nil, fmt.Errorf("%w: cannot reverse a journal that is itself a reversal", apperrors.ErrConflict)
	}

	originalEntries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch original entries: %w", err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	reversalEntries := make([]domain.JournalEntry, len(originalEntries))
	for i, orig := range originalEntries {
		side := domain.Credit
		if orig.Side == domain.Credit {
			side = domain.Debit
		}
		reversalEntries[i] = domain.JournalEntry{
			EntryID:      uuid.NewString(),
			JournalID:    reversalID,
			TenantID:     tenantID,
			AccountID:    orig.AccountID,
			ShopID:       orig.ShopID,
			Side:         side,
			DebitAmount:  orig.CreditAmount,
			CreditAmount: orig.DebitAmount,
			Description:  orig.Description,
			LineNumber:   orig.LineNumber,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}

	accounts, err := s.fetchEntryAccounts(ctx, tenantID, reversalEntries)
	if err != nil {
		return nil, err
	}
	deltas, err := balanceDeltas(reversalEntries, accounts)
	if err != nil {
		return nil, err
	}

	seq, err := s.journalRepo.NextJournalNumber(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve journal number: %w", err)
	}

	reversal := domain.Journal{
		JournalID:         reversalID,
		TenantID:          tenantID,
		JournalNumber:     fmt.Sprintf("JRN-%06d", seq),
		JournalDate:       original.JournalDate,
		FiscalYearID:      original.FiscalYearID,
		PeriodID:          original.PeriodID,
		JournalType:       domain.JournalTypeReversal,
		Description:       fmt.Sprintf("Reversal of %s: %s", original.JournalNumber, original.Description),
		CurrencyCode:      original.CurrencyCode,
		Status:            domain.Posted,
		TotalDebit:        original.TotalCredit,
		TotalCredit:       original.TotalDebit,
		PostedBy:          actorID,
		PostedAt:          &now,
		OriginalJournalID: &original.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	original.ReversedBy = actorID
	original.ReversedAt = &now

	if err := s.journalRepo.SaveReversal(ctx, *original, reversal, reversalEntries, deltas); err != nil {
		logger.Error("Failed to save reversal journal", slog.String("error", err.Error()), slog.String("original_journal_id", journalID))
		return nil, err
	}

	logger.Info("Journal reversed",
		slog.String("original_journal_id", journalID),
		slog.String("reversal_journal_id", reversalID),
		slog.String("tenant_id", tenantID))
	s.publisher.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       domain.EventJournalReversed,
		TenantID:   tenantID,
		EntityID:   journalID,
		Actor:      actorID,
		OccurredAt: now,
		Payload:    map[string]string{"reversalJournalID": reversalID},
	})

	reversal.Entries = reversalEntries
	return &reversal, nil
}

// DeleteDraft removes a draft journal. Any other status is ErrInvalidState.
func (s *journalService) DeleteDraft(ctx context.Context, tenantID, journalID, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return err
	}
	if journal.Status != domain.Draft {
		return fmt.Errorf("%w: journal %s is %s, only drafts may be deleted", apperrors.ErrInvalidState, journalID, journal.Status)
	}

	if err := s.journalRepo.DeleteDraft(ctx, tenantID, journalID); err != nil {
		logger.Error("Failed to delete draft journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return err
	}

	logger.Info("Draft journal deleted", slog.String("journal_id", journalID), slog.String("deleted_by", actorID))
	return nil
}

// GetJournalByID retrieves a journal with its entries.
func (s *journalService) GetJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	entries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for journal %s: %w", journalID, err)
	}
	journal.Entries = entries
	return journal, nil
}

// ListJournals retrieves a token-paginated page of journals.
func (s *journalService) ListJournals(ctx context.Context, tenantID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := portsrepo.ListJournalsFilter{
		PeriodID:         params.PeriodID,
		IncludeReversals: params.IncludeReversals,
	}
	if params.Status != nil {
		status := domain.JournalStatus(*params.Status)
		filter.Status = &status
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, tenantID, filter, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i := range journals {
		if params.IncludeEntries {
			entries, err := s.journalRepo.FindEntriesByJournalID(ctx, journals[i].JournalID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch entries for journal %s: %w", journals[i].JournalID, err)
			}
			journals[i].Entries = entries
		}
		responses[i] = dto.ToJournalResponse(&journals[i])
	}
	return &dto.ListJournalsResponse{Journals: responses, NextToken: nextToken}, nil
}

// fetchEntryAccounts loads every distinct account referenced by the
// entries and verifies none is missing.
func (s *journalService) fetchEntryAccounts(ctx context.Context, tenantID string, entries []domain.JournalEntry) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}

	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}
