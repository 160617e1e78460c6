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
	"github.com/retailops/ledger_service/internal/utils/pagination"
)

type PgxRecurringRepository struct {
	BaseRepository
}

// newPgxRecurringRepository creates a new repository for recurring journal
// templates and their run ledger.
func newPgxRecurringRepository(pool *pgxpool.Pool) portsrepo.RecurringJournalRepositoryFacade {
	return &PgxRecurringRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RecurringJournalRepositoryFacade = (*PgxRecurringRepository)(nil)

const recurringColumns = `
	recurring_journal_id, tenant_id, name, description, currency_code, frequency,
	start_date, end_date, next_run_date, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanRecurringJournal(row pgx.Row) (domain.RecurringJournal, error) {
	var rj domain.RecurringJournal
	err := row.Scan(
		&rj.RecurringJournalID,
		&rj.TenantID,
		&rj.Name,
		&rj.Description,
		&rj.CurrencyCode,
		&rj.Frequency,
		&rj.StartDate,
		&rj.EndDate,
		&rj.NextRunDate,
		&rj.IsActive,
		&rj.CreatedAt,
		&rj.CreatedBy,
		&rj.LastUpdatedAt,
		&rj.LastUpdatedBy,
	)
	return rj, err
}

// SaveRecurringJournal persists a template with its entries in one
// transaction.
func (r *PgxRecurringRepository) SaveRecurringJournal(ctx context.Context, recurring domain.RecurringJournal, entries []domain.RecurringJournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	headerQuery := `
		INSERT INTO recurring_journals (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, headerQuery,
		recurring.RecurringJournalID,
		recurring.TenantID,
		recurring.Name,
		recurring.Description,
		recurring.CurrencyCode,
		recurring.Frequency,
		recurring.StartDate,
		recurring.EndDate,
		recurring.NextRunDate,
		recurring.IsActive,
		recurring.CreatedAt,
		recurring.CreatedBy,
		recurring.LastUpdatedAt,
		recurring.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: recurring journal %s already exists", apperrors.ErrDuplicate, recurring.Name)
			}
		}
		return apperrors.NewAppError(500, "failed to insert recurring journal "+recurring.RecurringJournalID, err)
	}

	entryQuery := `
		INSERT INTO recurring_journal_entries (
			entry_id, recurring_journal_id, account_id, shop_id, side, amount, description, line_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(entryQuery,
			e.EntryID,
			e.RecurringJournalID,
			e.AccountID,
			nullableString(e.ShopID),
			e.Side,
			e.Amount,
			e.Description,
			e.LineNumber,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert recurring journal entries for "+recurring.RecurringJournalID, err)
	}

	return r.Commit(ctx, tx)
}

// FindRecurringJournalByID retrieves a template by its ID.
func (r *PgxRecurringRepository) FindRecurringJournalByID(ctx context.Context, tenantID, recurringJournalID string) (*domain.RecurringJournal, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_journals
		WHERE tenant_id = $1 AND recurring_journal_id = $2;
	`
	rj, err := scanRecurringJournal(r.Pool.QueryRow(ctx, query, tenantID, recurringJournalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find recurring journal by ID "+recurringJournalID, err)
	}
	return &rj, nil
}

// FindEntriesByRecurringJournalID retrieves all entries of a template in
// line order.
func (r *PgxRecurringRepository) FindEntriesByRecurringJournalID(ctx context.Context, recurringJournalID string) ([]domain.RecurringJournalEntry, error) {
	query := `
		SELECT entry_id, recurring_journal_id, account_id, shop_id, side, amount, description, line_number
		FROM recurring_journal_entries
		WHERE recurring_journal_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, recurringJournalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for recurring journal "+recurringJournalID, err)
	}
	defer rows.Close()

	entries := []domain.RecurringJournalEntry{}
	for rows.Next() {
		var e domain.RecurringJournalEntry
		var shopID sql.NullString
		if err := rows.Scan(
			&e.EntryID,
			&e.RecurringJournalID,
			&e.AccountID,
			&shopID,
			&e.Side,
			&e.Amount,
			&e.Description,
			&e.LineNumber,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan recurring journal entry row", err)
		}
		if shopID.Valid {
			e.ShopID = shopID.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating recurring journal entry rows", err)
	}
	return entries, nil
}

// ListRecurringJournals retrieves a token-paginated list of a tenant's
// templates.
func (r *PgxRecurringRepository) ListRecurringJournals(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.RecurringJournal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + recurringColumns + `
		FROM recurring_journals
		WHERE tenant_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, recurring_journal_id DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, decodeErr := pagination.DecodeTimeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND created_at < $2 ` + orderByClause + ` LIMIT $3;`
		rows, err = r.Pool.Query(ctx, query, tenantID, lastCreatedAt, fetchLimit)
	} else {
		query := baseQuery + orderByClause + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, tenantID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query recurring journals for tenant "+tenantID, err)
	}
	defer rows.Close()

	templates := make([]domain.RecurringJournal, 0, fetchLimit)
	for rows.Next() {
		rj, scanErr := scanRecurringJournal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan recurring journal row", scanErr)
		}
		templates = append(templates, rj)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating recurring journal rows", err)
	}

	var nextTokenVal *string
	if len(templates) > limit {
		last := templates[limit-1]
		token := pagination.EncodeTimeToken(last.CreatedAt)
		nextTokenVal = &token
		templates = templates[:limit]
	}
	return templates, nextTokenVal, nil
}

// ListDue returns active templates whose next_run_date has been reached,
// across tenants, entries included, up to limit.
func (r *PgxRecurringRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.RecurringJournal, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_journals
		WHERE is_active = TRUE
		  AND next_run_date <= $1
		  AND (end_date IS NULL OR next_run_date <= end_date)
		ORDER BY next_run_date
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query due recurring journals", err)
	}
	defer rows.Close()

	templates := []domain.RecurringJournal{}
	for rows.Next() {
		rj, scanErr := scanRecurringJournal(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan due recurring journal row", scanErr)
		}
		templates = append(templates, rj)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating due recurring journal rows", err)
	}

	for i := range templates {
		entries, entriesErr := r.FindEntriesByRecurringJournalID(ctx, templates[i].RecurringJournalID)
		if entriesErr != nil {
			return nil, entriesErr
		}
		templates[i].Entries = entries
	}
	return templates, nil
}

// DeactivateRecurringJournal stops a template from materializing.
func (r *PgxRecurringRepository) DeactivateRecurringJournal(ctx context.Context, tenantID, recurringJournalID, updatedBy string, at time.Time) error {
	query := `
		UPDATE recurring_journals
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND recurring_journal_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, recurringJournalID, at, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate recurring journal "+recurringJournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recurring journal " + recurringJournalID + " not found")
	}
	return nil
}

// RecordRun claims (template, scheduled date). The unique constraint turns
// a second claim for the same pair into ErrDuplicate.
func (r *PgxRecurringRepository) RecordRun(ctx context.Context, recurringJournalID string, scheduledFor time.Time, journalID string) error {
	query := `
		INSERT INTO recurring_journal_runs (recurring_journal_id, scheduled_for, journal_id, created_at)
		VALUES ($1, $2, $3, NOW());
	`
	_, err := r.Pool.Exec(ctx, query, recurringJournalID, scheduledFor, journalID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: run for %s on %s already recorded", apperrors.ErrDuplicate, recurringJournalID, scheduledFor.Format("2006-01-02"))
			}
		}
		return apperrors.NewAppError(500, "failed to record run for recurring journal "+recurringJournalID, err)
	}
	return nil
}

// FindRunJournalID returns the journal claimed for (template, scheduled
// date).
func (r *PgxRecurringRepository) FindRunJournalID(ctx context.Context, recurringJournalID string, scheduledFor time.Time) (string, error) {
	query := `
		SELECT journal_id
		FROM recurring_journal_runs
		WHERE recurring_journal_id = $1 AND scheduled_for = $2;
	`
	var journalID string
	err := r.Pool.QueryRow(ctx, query, recurringJournalID, scheduledFor).Scan(&journalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("no run recorded for recurring journal " + recurringJournalID)
		}
		return "", apperrors.NewAppError(500, "failed to look up run for recurring journal "+recurringJournalID, err)
	}
	return journalID, nil
}

// AdvanceNextRun moves the template's next_run_date forward.
func (r *PgxRecurringRepository) AdvanceNextRun(ctx context.Context, recurringJournalID string, nextRunDate time.Time, updatedBy string, at time.Time) error {
	query := `
		UPDATE recurring_journals
		SET next_run_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE recurring_journal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, recurringJournalID, nextRunDate, at, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to advance next run for recurring journal "+recurringJournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("recurring journal " + recurringJournalID + " not found")
	}
	return nil
}
