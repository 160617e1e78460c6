package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	"github.com/retailops/ledger_service/internal/utils/pagination"
)

type PgxTrialBalanceRepository struct {
	BaseRepository
}

// newPgxTrialBalanceRepository creates a new repository for trial balance
// snapshots.
func newPgxTrialBalanceRepository(pool *pgxpool.Pool) portsrepo.TrialBalanceRepositoryFacade {
	return &PgxTrialBalanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TrialBalanceRepositoryFacade = (*PgxTrialBalanceRepository)(nil)

const trialBalanceColumns = `
	trial_balance_id, tenant_id, fiscal_year_id, period_id, as_of_date, status,
	total_debits, total_credits, finalized_by, finalized_at,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanTrialBalance(row pgx.Row) (domain.TrialBalance, error) {
	var tb domain.TrialBalance
	var finalizedBy *string
	err := row.Scan(
		&tb.TrialBalanceID,
		&tb.TenantID,
		&tb.FiscalYearID,
		&tb.PeriodID,
		&tb.AsOfDate,
		&tb.Status,
		&tb.TotalDebits,
		&tb.TotalCredits,
		&finalizedBy,
		&tb.FinalizedAt,
		&tb.CreatedAt,
		&tb.CreatedBy,
		&tb.LastUpdatedAt,
		&tb.LastUpdatedBy,
	)
	if err != nil {
		return domain.TrialBalance{}, err
	}
	if finalizedBy != nil {
		tb.FinalizedBy = *finalizedBy
	}
	return tb, nil
}

// SaveTrialBalance persists a draft snapshot with its entries in one
// transaction.
func (r *PgxTrialBalanceRepository) SaveTrialBalance(ctx context.Context, trialBalance domain.TrialBalance, entries []domain.TrialBalanceEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	headerQuery := `
		INSERT INTO trial_balances (` + trialBalanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, headerQuery,
		trialBalance.TrialBalanceID,
		trialBalance.TenantID,
		trialBalance.FiscalYearID,
		trialBalance.PeriodID,
		trialBalance.AsOfDate,
		trialBalance.Status,
		trialBalance.TotalDebits,
		trialBalance.TotalCredits,
		nullableString(trialBalance.FinalizedBy),
		trialBalance.FinalizedAt,
		trialBalance.CreatedAt,
		trialBalance.CreatedBy,
		trialBalance.LastUpdatedAt,
		trialBalance.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert trial balance "+trialBalance.TrialBalanceID, err)
	}

	entryQuery := `
		INSERT INTO trial_balance_entries (
			entry_id, trial_balance_id, account_id, account_code, account_name,
			category, total_debits, total_credits, closing_balance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(entryQuery,
			e.EntryID,
			e.TrialBalanceID,
			e.AccountID,
			e.AccountCode,
			e.AccountName,
			e.Category,
			e.TotalDebits,
			e.TotalCredits,
			e.ClosingBalance,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert trial balance entries for "+trialBalance.TrialBalanceID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTrialBalanceByID retrieves a trial balance snapshot by its ID.
func (r *PgxTrialBalanceRepository) FindTrialBalanceByID(ctx context.Context, tenantID, trialBalanceID string) (*domain.TrialBalance, error) {
	query := `
		SELECT ` + trialBalanceColumns + `
		FROM trial_balances
		WHERE tenant_id = $1 AND trial_balance_id = $2;
	`
	tb, err := scanTrialBalance(r.Pool.QueryRow(ctx, query, tenantID, trialBalanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find trial balance by ID "+trialBalanceID, err)
	}
	return &tb, nil
}

// FindEntriesByTrialBalanceID retrieves all entries of a snapshot ordered by
// account code.
func (r *PgxTrialBalanceRepository) FindEntriesByTrialBalanceID(ctx context.Context, trialBalanceID string) ([]domain.TrialBalanceEntry, error) {
	query := `
		SELECT entry_id, trial_balance_id, account_id, account_code, account_name,
		       category, total_debits, total_credits, closing_balance
		FROM trial_balance_entries
		WHERE trial_balance_id = $1
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query, trialBalanceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for trial balance "+trialBalanceID, err)
	}
	defer rows.Close()

	entries := []domain.TrialBalanceEntry{}
	for rows.Next() {
		var e domain.TrialBalanceEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.TrialBalanceID,
			&e.AccountID,
			&e.AccountCode,
			&e.AccountName,
			&e.Category,
			&e.TotalDebits,
			&e.TotalCredits,
			&e.ClosingBalance,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance entry row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance entry rows", err)
	}
	return entries, nil
}

// ListTrialBalances retrieves a token-paginated list of a tenant's snapshots.
func (r *PgxTrialBalanceRepository) ListTrialBalances(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.TrialBalance, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + trialBalanceColumns + `
		FROM trial_balances
		WHERE tenant_id = $1
	`
	orderByClause := `ORDER BY as_of_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastAsOf, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND (as_of_date, created_at) < ($2, $3) ` + orderByClause + ` LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, tenantID, lastAsOf, lastCreatedAt, fetchLimit)
	} else {
		query := baseQuery + orderByClause + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, tenantID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query trial balances for tenant "+tenantID, err)
	}
	defer rows.Close()

	snapshots := make([]domain.TrialBalance, 0, fetchLimit)
	for rows.Next() {
		tb, scanErr := scanTrialBalance(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan trial balance row", scanErr)
		}
		snapshots = append(snapshots, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}

	var nextTokenVal *string
	if len(snapshots) > limit {
		last := snapshots[limit-1]
		token := pagination.EncodeToken(last.AsOfDate, last.CreatedAt)
		nextTokenVal = &token
		snapshots = snapshots[:limit]
	}
	return snapshots, nextTokenVal, nil
}

// FinalizeTrialBalance flips a draft snapshot to final under a status guard.
func (r *PgxTrialBalanceRepository) FinalizeTrialBalance(ctx context.Context, tenantID, trialBalanceID, finalizedBy string, at time.Time) error {
	query := `
		UPDATE trial_balances
		SET status = 'FINAL', finalized_by = $3, finalized_at = $4, last_updated_at = $4, last_updated_by = $3
		WHERE tenant_id = $1 AND trial_balance_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, trialBalanceID, finalizedBy, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to finalize trial balance "+trialBalanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, findErr := r.FindTrialBalanceByID(ctx, tenantID, trialBalanceID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: trial balance %s is already final", apperrors.ErrInvalidState, trialBalanceID)
	}
	return nil
}
