package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// periodService is the Period Guard: fiscal years and accounting periods
// with one-way close transitions.
type periodService struct {
	periodRepo portsrepo.PeriodRepositoryFacade
	publisher  portssvc.EventPublisher
}

// NewPeriodService creates a new period guard service.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade, publisher portssvc.EventPublisher) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo, publisher: publisher}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreateFiscalYear creates an active fiscal year for a tenant.
func (s *periodService) CreateFiscalYear(ctx context.Context, tenantID string, req dto.CreateFiscalYearRequest, creatorID string) (*domain.FiscalYear, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: fiscal year end date must be after start date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	fiscalYear := domain.FiscalYear{
		FiscalYearID: uuid.NewString(),
		TenantID:     tenantID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       domain.FiscalYearActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.periodRepo.SaveFiscalYear(ctx, fiscalYear); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: fiscal year %s already exists", apperrors.ErrDuplicate, req.Name)
		}
		logger.Error("Failed to save fiscal year", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save fiscal year: %w", err)
	}

	logger.Info("Fiscal year created", slog.String("fiscal_year_id", fiscalYear.FiscalYearID), slog.String("tenant_id", tenantID))
	return &fiscalYear, nil
}

// ListFiscalYears returns a tenant's fiscal years.
func (s *periodService) ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error) {
	return s.periodRepo.ListFiscalYears(ctx, tenantID)
}

// CreatePeriod creates an accounting period inside a fiscal year. The
// range must sit inside the year and must not overlap a sibling period.
func (s *periodService) CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creatorID string) (*domain.AccountingPeriod, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: period end date must be after start date", apperrors.ErrValidation)
	}

	fiscalYear, err := s.periodRepo.FindFiscalYearByID(ctx, tenantID, req.FiscalYearID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: fiscal year %s not found", apperrors.ErrValidation, req.FiscalYearID)
		}
		return nil, fmt.Errorf("failed to fetch fiscal year: %w", err)
	}
	if fiscalYear.Status == domain.FiscalYearClosed {
		return nil, fmt.Errorf("%w: fiscal year %s is closed", apperrors.ErrPeriodClosed, req.FiscalYearID)
	}
	if req.StartDate.Before(fiscalYear.StartDate) || req.EndDate.After(fiscalYear.EndDate) {
		return nil, fmt.Errorf("%w: period range must fall inside the fiscal year", apperrors.ErrValidation)
	}

	siblings, err := s.periodRepo.ListPeriods(ctx, tenantID, req.FiscalYearID)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing periods: %w", err)
	}
	for _, p := range siblings {
		// Period bounds are inclusive, so sharing a boundary date is an
		// overlap too.
		if !req.StartDate.After(p.EndDate) && !p.StartDate.After(req.EndDate) {
			return nil, fmt.Errorf("%w: period overlaps existing period %s", apperrors.ErrValidation, p.Name)
		}
	}

	now := time.Now().UTC()
	period := domain.AccountingPeriod{
		PeriodID:     uuid.NewString(),
		TenantID:     tenantID,
		FiscalYearID: req.FiscalYearID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       domain.PeriodActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save period", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	logger.Info("Accounting period created", slog.String("period_id", period.PeriodID), slog.String("fiscal_year_id", req.FiscalYearID))
	return &period, nil
}

// ListPeriods returns the periods of a fiscal year.
func (s *periodService) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error) {
	return s.periodRepo.ListPeriods(ctx, tenantID, fiscalYearID)
}

// FindPeriodForDate resolves a journal date to its accounting period.
func (s *periodService) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	return s.periodRepo.FindPeriodForDate(ctx, tenantID, date)
}

// IsOpen reports whether both the fiscal year and the period still accept
// postings. This is the advisory read; the posting transaction re-checks
// under a share lock.
func (s *periodService) IsOpen(ctx context.Context, tenantID, fiscalYearID, periodID string) (bool, error) {
	fiscalYear, err := s.periodRepo.FindFiscalYearByID(ctx, tenantID, fiscalYearID)
	if err != nil {
		return false, err
	}
	if fiscalYear.Status == domain.FiscalYearClosed {
		return false, nil
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return false, err
	}
	if period.FiscalYearID != fiscalYearID {
		return false, fmt.Errorf("%w: period %s does not belong to fiscal year %s", apperrors.ErrValidation, periodID, fiscalYearID)
	}
	return period.IsOpen(), nil
}

// ClosePeriod irreversibly closes an accounting period.
func (s *periodService) ClosePeriod(ctx context.Context, tenantID, periodID, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.periodRepo.ClosePeriod(ctx, tenantID, periodID, actorID, now); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyClosed) {
			return fmt.Errorf("%w: period %s", apperrors.ErrAlreadyClosed, periodID)
		}
		logger.Error("Failed to close period", slog.String("error", err.Error()), slog.String("period_id", periodID))
		return err
	}

	logger.Info("Accounting period closed", slog.String("period_id", periodID), slog.String("closed_by", actorID))
	s.publisher.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       domain.EventPeriodClosed,
		TenantID:   tenantID,
		EntityID:   periodID,
		Actor:      actorID,
		OccurredAt: now,
	})
	return nil
}

// CloseFiscalYear irreversibly closes a fiscal year; every child period
// must already be closed.
func (s *periodService) CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	openPeriods, err := s.periodRepo.CountOpenPeriods(ctx, tenantID, fiscalYearID)
	if err != nil {
		return fmt.Errorf("failed to count open periods: %w", err)
	}
	if openPeriods > 0 {
		return fmt.Errorf("%w: fiscal year %s still has %d open periods", apperrors.ErrConflict, fiscalYearID, openPeriods)
	}

	now := time.Now().UTC()
	if err := s.periodRepo.CloseFiscalYear(ctx, tenantID, fiscalYearID, actorID, now); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyClosed) {
			return fmt.Errorf("%w: fiscal year %s", apperrors.ErrAlreadyClosed, fiscalYearID)
		}
		logger.Error("Failed to close fiscal year", slog.String("error", err.Error()), slog.String("fiscal_year_id", fiscalYearID))
		return err
	}

	logger.Info("Fiscal year closed", slog.String("fiscal_year_id", fiscalYearID), slog.String("closed_by", actorID))
	s.publisher.Publish(ctx, domain.Event{
		EventID:    uuid.NewString(),
		Type:       domain.EventFiscalYearClosed,
		TenantID:   tenantID,
		EntityID:   fiscalYearID,
		Actor:      actorID,
		OccurredAt: now,
	})
	return nil
}
