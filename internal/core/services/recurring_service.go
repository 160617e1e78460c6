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
)

// tickBatchSize caps how many due templates one scheduler pass processes.
const tickBatchSize = 100

// recurringService manages recurring journal templates and materializes
// them through the Journal Manager.
type recurringService struct {
	recurringRepo portsrepo.RecurringJournalRepositoryFacade
	journalSvc    portssvc.JournalSvcFacade
	accountSvc    portssvc.AccountSvcFacade
}

// NewRecurringService creates a new recurring journal scheduler service.
func NewRecurringService(
	recurringRepo portsrepo.RecurringJournalRepositoryFacade,
	journalSvc portssvc.JournalSvcFacade,
	accountSvc portssvc.AccountSvcFacade,
) portssvc.RecurringSvcFacade {
	return &recurringService{
		recurringRepo: recurringRepo,
		journalSvc:    journalSvc,
		accountSvc:    accountSvc,
	}
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

// CreateRecurringJournal validates and persists a template. Template lines
// must balance the same way a journal would, so every materialization is
// guaranteed balanced before it reaches the Journal Manager.
func (s *recurringService) CreateRecurringJournal(ctx context.Context, tenantID string, req dto.CreateRecurringJournalRequest, creatorID string) (*domain.RecurringJournal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrValidation, req.Frequency)
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	debits, credits := templateTotals(req.Entries)
	if !debits.Equal(credits) {
		return nil, fmt.Errorf("%w: template debits %s, credits %s", apperrors.ErrUnbalanced, debits.String(), credits.String())
	}

	for _, line := range req.Entries {
		if !line.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: template amounts must be positive", apperrors.ErrValidation)
		}
		if _, err := s.accountSvc.ResolveForPosting(ctx, tenantID, line.AccountID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	recurringID := uuid.NewString()
	recurring := domain.RecurringJournal{
		RecurringJournalID: recurringID,
		TenantID:           tenantID,
		Name:               req.Name,
		Description:        req.Description,
		CurrencyCode:       req.CurrencyCode,
		Frequency:          req.Frequency,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		NextRunDate:        req.StartDate,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	entries := make([]domain.RecurringJournalEntry, len(req.Entries))
	for i, line := range req.Entries {
		entries[i] = domain.RecurringJournalEntry{
			EntryID:            uuid.NewString(),
			RecurringJournalID: recurringID,
			AccountID:          line.AccountID,
			ShopID:             line.ShopID,
			Side:               line.Side,
			Amount:             line.Amount,
			Description:        line.Description,
			LineNumber:         i + 1,
		}
	}

	if err := s.recurringRepo.SaveRecurringJournal(ctx, recurring, entries); err != nil {
		logger.Error("Failed to save recurring journal", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save recurring journal: %w", err)
	}

	logger.Info("Recurring journal created",
		slog.String("recurring_journal_id", recurringID),
		slog.String("frequency", string(req.Frequency)),
		slog.String("tenant_id", tenantID))
	recurring.Entries = entries
	return &recurring, nil
}

// GetRecurringJournalByID retrieves a template with its entries.
func (s *recurringService) GetRecurringJournalByID(ctx context.Context, tenantID, recurringJournalID string) (*domain.RecurringJournal, error) {
	recurring, err := s.recurringRepo.FindRecurringJournalByID(ctx, tenantID, recurringJournalID)
	if err != nil {
		return nil, err
	}
	entries, err := s.recurringRepo.FindEntriesByRecurringJournalID(ctx, recurringJournalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template entries: %w", err)
	}
	recurring.Entries = entries
	return recurring, nil
}

// ListRecurringJournals retrieves a token-paginated page of templates.
func (s *recurringService) ListRecurringJournals(ctx context.Context, tenantID string, params dto.ListRecurringJournalsParams) (*dto.ListRecurringJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	templates, nextToken, err := s.recurringRepo.ListRecurringJournals(ctx, tenantID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring journals: %w", err)
	}

	responses := make([]dto.RecurringJournalResponse, len(templates))
	for i := range templates {
		responses[i] = dto.ToRecurringJournalResponse(&templates[i])
	}
	return &dto.ListRecurringJournalsResponse{RecurringJournals: responses, NextToken: nextToken}, nil
}

// DeactivateRecurringJournal stops a template from materializing.
func (s *recurringService) DeactivateRecurringJournal(ctx context.Context, tenantID, recurringJournalID, actorID string) error {
	return s.recurringRepo.DeactivateRecurringJournal(ctx, tenantID, recurringJournalID, actorID, time.Now().UTC())
}

// Tick materializes every due template into a posted journal. Each due
// date is claimed through a run row before anything else happens, so a
// crashed or concurrently re-run tick never produces a duplicate journal.
func (s *recurringService) Tick(ctx context.Context, now time.Time) (*dto.TickResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	due, err := s.recurringRepo.ListDue(ctx, now, tickBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list due templates: %w", err)
	}

	resp := &dto.TickResponse{}
	for _, template := range due {
		if !template.DueAt(now) {
			continue
		}
		journalID, err := s.materialize(ctx, template, now)
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			// Another tick already claimed this due date.
			resp.SkippedDuplicates++
		case err != nil:
			logger.Error("Failed to materialize recurring journal",
				slog.String("recurring_journal_id", template.RecurringJournalID),
				slog.String("error", err.Error()))
			resp.Failures++
		default:
			resp.MaterializedJournalIDs = append(resp.MaterializedJournalIDs, journalID)
		}
	}

	logger.Info("Recurring journal tick completed",
		slog.Int("due", len(due)),
		slog.Int("materialized", len(resp.MaterializedJournalIDs)),
		slog.Int("skipped_duplicates", resp.SkippedDuplicates),
		slog.Int("failures", resp.Failures))
	return resp, nil
}

// materialize turns one due template occurrence into a posted journal and
// advances the template's next run date.
func (s *recurringService) materialize(ctx context.Context, template domain.RecurringJournal, now time.Time) (string, error) {
	scheduledFor := template.NextRunDate

	entries := template.Entries
	if len(entries) == 0 {
		var err error
		entries, err = s.recurringRepo.FindEntriesByRecurringJournalID(ctx, template.RecurringJournalID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch template entries: %w", err)
		}
	}

	reqEntries := make([]dto.CreateJournalEntryRequest, len(entries))
	for i, line := range entries {
		reqEntry := dto.CreateJournalEntryRequest{
			AccountID:   line.AccountID,
			ShopID:      line.ShopID,
			Description: line.Description,
		}
		if line.Side == domain.Debit {
			reqEntry.DebitAmount = line.Amount
		} else {
			reqEntry.CreditAmount = line.Amount
		}
		reqEntries[i] = reqEntry
	}

	draft, err := s.journalSvc.CreateDraft(ctx, template.TenantID, dto.CreateJournalRequest{
		Date:         scheduledFor,
		Description:  fmt.Sprintf("%s (%s)", template.Description, scheduledFor.Format("2006-01-02")),
		CurrencyCode: template.CurrencyCode,
		JournalType:  domain.JournalTypeRecurring,
		Entries:      reqEntries,
	}, template.CreatedBy)
	if err != nil {
		return "", fmt.Errorf("failed to create draft from template: %w", err)
	}

	// Claim the (template, scheduled date) pair before posting. The unique
	// run row makes ticks idempotent per due date; a losing tick cleans up
	// its draft and resumes whatever the winning claim left behind.
	if err := s.recurringRepo.RecordRun(ctx, template.RecurringJournalID, scheduledFor, draft.JournalID); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			if delErr := s.journalSvc.DeleteDraft(ctx, template.TenantID, draft.JournalID, template.CreatedBy); delErr != nil {
				middleware.GetLoggerFromCtx(ctx).Warn("Failed to delete orphaned draft",
					slog.String("journal_id", draft.JournalID),
					slog.String("error", delErr.Error()))
			}
			return s.resumeClaimedRun(ctx, template, scheduledFor, now)
		}
		return "", err
	}

	if _, err := s.journalSvc.Post(ctx, template.TenantID, draft.JournalID, template.CreatedBy); err != nil {
		return "", fmt.Errorf("failed to post materialized journal: %w", err)
	}

	next := template.Frequency.Next(scheduledFor)
	if err := s.recurringRepo.AdvanceNextRun(ctx, template.RecurringJournalID, next, template.CreatedBy, now); err != nil {
		return "", fmt.Errorf("failed to advance next run date: %w", err)
	}

	return draft.JournalID, nil
}

// resumeClaimedRun finishes a due date some earlier tick claimed but did
// not complete. The claimed journal is posted if it is still a draft, and
// the next run date is advanced if the earlier tick died before doing so,
// so a crash between claim and post cannot wedge the template.
func (s *recurringService) resumeClaimedRun(ctx context.Context, template domain.RecurringJournal, scheduledFor, now time.Time) (string, error) {
	claimedID, err := s.recurringRepo.FindRunJournalID(ctx, template.RecurringJournalID, scheduledFor)
	if err != nil {
		return "", fmt.Errorf("failed to look up claimed run: %w", err)
	}

	claimed, err := s.journalSvc.GetJournalByID(ctx, template.TenantID, claimedID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch claimed journal: %w", err)
	}

	next := template.Frequency.Next(scheduledFor)
	if claimed.Status != domain.Draft {
		// Already posted by the claim owner; only the advance may be
		// missing.
		if err := s.recurringRepo.AdvanceNextRun(ctx, template.RecurringJournalID, next, template.CreatedBy, now); err != nil {
			return "", fmt.Errorf("failed to advance next run date: %w", err)
		}
		return "", fmt.Errorf("%w: run for %s already completed", apperrors.ErrDuplicate, scheduledFor.Format("2006-01-02"))
	}

	if _, err := s.journalSvc.Post(ctx, template.TenantID, claimedID, template.CreatedBy); err != nil {
		return "", fmt.Errorf("failed to post claimed journal: %w", err)
	}
	if err := s.recurringRepo.AdvanceNextRun(ctx, template.RecurringJournalID, next, template.CreatedBy, now); err != nil {
		return "", fmt.Errorf("failed to advance next run date: %w", err)
	}
	return claimedID, nil
}

func templateTotals(entries []dto.CreateRecurringEntryRequest) (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range entries {
		if line.Side == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}
	return debits, credits
}
