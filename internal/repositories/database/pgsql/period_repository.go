package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
)

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for fiscal year and
// accounting period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

const fiscalYearColumns = `
	fiscal_year_id, tenant_id, name, start_date, end_date, status, closed_by, closed_at,
	created_at, created_by, last_updated_at, last_updated_by
`

const periodColumns = `
	period_id, tenant_id, fiscal_year_id, name, start_date, end_date, status, closed_by, closed_at,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanFiscalYear(row pgx.Row) (domain.FiscalYear, error) {
	var fy domain.FiscalYear
	var closedBy sql.NullString
	err := row.Scan(
		&fy.FiscalYearID,
		&fy.TenantID,
		&fy.Name,
		&fy.StartDate,
		&fy.EndDate,
		&fy.Status,
		&closedBy,
		&fy.ClosedAt,
		&fy.CreatedAt,
		&fy.CreatedBy,
		&fy.LastUpdatedAt,
		&fy.LastUpdatedBy,
	)
	if err != nil {
		return domain.FiscalYear{}, err
	}
	if closedBy.Valid {
		fy.ClosedBy = closedBy.String
	}
	return fy, nil
}

func scanPeriod(row pgx.Row) (domain.AccountingPeriod, error) {
	var p domain.AccountingPeriod
	var closedBy sql.NullString
	err := row.Scan(
		&p.PeriodID,
		&p.TenantID,
		&p.FiscalYearID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&closedBy,
		&p.ClosedAt,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return domain.AccountingPeriod{}, err
	}
	if closedBy.Valid {
		p.ClosedBy = closedBy.String
	}
	return p, nil
}

// SaveFiscalYear inserts a fiscal year.
func (r *PgxPeriodRepository) SaveFiscalYear(ctx context.Context, fiscalYear domain.FiscalYear) error {
	query := `
		INSERT INTO fiscal_years (
			fiscal_year_id, tenant_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		fiscalYear.FiscalYearID,
		fiscalYear.TenantID,
		fiscalYear.Name,
		fiscalYear.StartDate,
		fiscalYear.EndDate,
		fiscalYear.Status,
		fiscalYear.CreatedAt,
		fiscalYear.CreatedBy,
		fiscalYear.LastUpdatedAt,
		fiscalYear.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: fiscal year %s already exists", apperrors.ErrDuplicate, fiscalYear.Name)
			}
		}
		return apperrors.NewAppError(500, "failed to insert fiscal year "+fiscalYear.FiscalYearID, err)
	}
	return nil
}

// FindFiscalYearByID retrieves a fiscal year by its ID.
func (r *PgxPeriodRepository) FindFiscalYearByID(ctx context.Context, tenantID, fiscalYearID string) (*domain.FiscalYear, error) {
	query := `
		SELECT ` + fiscalYearColumns + `
		FROM fiscal_years
		WHERE tenant_id = $1 AND fiscal_year_id = $2;
	`
	fy, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, tenantID, fiscalYearID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find fiscal year by ID "+fiscalYearID, err)
	}
	return &fy, nil
}

// ListFiscalYears retrieves all fiscal years of a tenant ordered by start date.
func (r *PgxPeriodRepository) ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error) {
	query := `
		SELECT ` + fiscalYearColumns + `
		FROM fiscal_years
		WHERE tenant_id = $1
		ORDER BY start_date DESC;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query fiscal years for tenant "+tenantID, err)
	}
	defer rows.Close()

	years := []domain.FiscalYear{}
	for rows.Next() {
		fy, scanErr := scanFiscalYear(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fiscal year row", scanErr)
		}
		years = append(years, fy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating fiscal year rows", err)
	}
	return years, nil
}

// SavePeriod inserts an accounting period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	query := `
		INSERT INTO accounting_periods (
			period_id, tenant_id, fiscal_year_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.TenantID,
		period.FiscalYearID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.Status,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: period %s already exists", apperrors.ErrDuplicate, period.Name)
			}
		}
		return apperrors.NewAppError(500, "failed to insert period "+period.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves an accounting period by its ID.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND period_id = $2;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find period by ID "+periodID, err)
	}
	return &p, nil
}

// ListPeriods retrieves all periods of a fiscal year ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND fiscal_year_id = $2
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, fiscalYearID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query periods for fiscal year "+fiscalYearID, err)
	}
	defer rows.Close()

	periods := []domain.AccountingPeriod{}
	for rows.Next() {
		p, scanErr := scanPeriod(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period row", scanErr)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating period rows", err)
	}
	return periods, nil
}

// FindPeriodForDate resolves a journal date to its accounting period.
// Period ranges are inclusive on both ends.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no accounting period covers %s", apperrors.ErrNotFound, date.Format("2006-01-02"))
		}
		return nil, apperrors.NewAppError(500, "failed to resolve period for date", err)
	}
	return &p, nil
}

// CountOpenPeriods returns how many periods of a fiscal year are still active.
func (r *PgxPeriodRepository) CountOpenPeriods(ctx context.Context, tenantID, fiscalYearID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM accounting_periods
		WHERE tenant_id = $1 AND fiscal_year_id = $2 AND status = 'ACTIVE';
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query, tenantID, fiscalYearID).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count open periods for fiscal year "+fiscalYearID, err)
	}
	return count, nil
}

// ClosePeriod flips an active period to closed. The guarded UPDATE takes a
// row lock, so it waits behind any posting transaction holding a share lock
// on the same period row.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, tenantID, periodID, closedBy string, at time.Time) error {
	query := `
		UPDATE accounting_periods
		SET status = 'CLOSED', closed_by = $3, closed_at = $4, last_updated_at = $4, last_updated_by = $3
		WHERE tenant_id = $1 AND period_id = $2 AND status = 'ACTIVE';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, periodID, closedBy, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close period "+periodID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing period from one that is already closed.
		if _, findErr := r.FindPeriodByID(ctx, tenantID, periodID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: period %s is already closed", apperrors.ErrAlreadyClosed, periodID)
	}
	return nil
}

// CloseFiscalYear closes a fiscal year after re-verifying inside one
// transaction that no child period remains open.
func (r *PgxPeriodRepository) CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, closedBy string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var openCount int
	countQuery := `
		SELECT COUNT(*)
		FROM accounting_periods
		WHERE tenant_id = $1 AND fiscal_year_id = $2 AND status = 'ACTIVE';
	`
	if err := tx.QueryRow(ctx, countQuery, tenantID, fiscalYearID).Scan(&openCount); err != nil {
		return apperrors.NewAppError(500, "failed to count open periods for fiscal year "+fiscalYearID, err)
	}
	if openCount > 0 {
		return fmt.Errorf("%w: fiscal year %s has %d open periods", apperrors.ErrConflict, fiscalYearID, openCount)
	}

	updateQuery := `
		UPDATE fiscal_years
		SET status = 'CLOSED', closed_by = $3, closed_at = $4, last_updated_at = $4, last_updated_by = $3
		WHERE tenant_id = $1 AND fiscal_year_id = $2 AND status != 'CLOSED';
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, tenantID, fiscalYearID, closedBy, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close fiscal year "+fiscalYearID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM fiscal_years WHERE tenant_id = $1 AND fiscal_year_id = $2);`
		if scanErr := tx.QueryRow(ctx, existsQuery, tenantID, fiscalYearID).Scan(&exists); scanErr != nil {
			return apperrors.NewAppError(500, "failed to check fiscal year "+fiscalYearID, scanErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: fiscal year %s is already closed", apperrors.ErrAlreadyClosed, fiscalYearID)
	}

	return r.Commit(ctx, tx)
}

// FindPeriodForShare loads a period row under a share lock inside the
// caller's transaction. Posting holds this lock until commit, which blocks
// a concurrent ClosePeriod from landing mid-post.
func (r *PgxPeriodRepository) FindPeriodForShare(ctx context.Context, tx pgx.Tx, tenantID, periodID string) (*domain.AccountingPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM accounting_periods
		WHERE tenant_id = $1 AND period_id = $2
		FOR SHARE;
	`
	p, err := scanPeriod(tx.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to share-lock period %s: %w", periodID, err)
	}
	return &p, nil
}
