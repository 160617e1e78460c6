package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	"github.com/retailops/ledger_service/internal/utils/accounting"
	"github.com/retailops/ledger_service/internal/utils/pagination"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and general
// ledger data. The account and period repositories supply the in-transaction
// lock helpers used by the posting path.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, periodRepo portsrepo.PeriodRepositoryFacade) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		periodRepo:     periodRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `
	journal_id, tenant_id, journal_number, journal_date, fiscal_year_id, period_id,
	journal_type, description, currency_code, status, total_debit, total_credit,
	posted_by, posted_at, reversed_by, reversed_at, original_journal_id, reversing_journal_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	var postedBy, reversedBy sql.NullString
	var originalID, reversingID sql.NullString
	err := row.Scan(
		&j.JournalID,
		&j.TenantID,
		&j.JournalNumber,
		&j.JournalDate,
		&j.FiscalYearID,
		&j.PeriodID,
		&j.JournalType,
		&j.Description,
		&j.CurrencyCode,
		&j.Status,
		&j.TotalDebit,
		&j.TotalCredit,
		&postedBy,
		&j.PostedAt,
		&reversedBy,
		&j.ReversedAt,
		&originalID,
		&reversingID,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return domain.Journal{}, err
	}
	if postedBy.Valid {
		j.PostedBy = postedBy.String
	}
	if reversedBy.Valid {
		j.ReversedBy = reversedBy.String
	}
	if originalID.Valid {
		j.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		j.ReversingJournalID = &reversingID.String
	}
	return j, nil
}

// insertJournalInTx inserts one journal row inside the given transaction.
func (r *PgxJournalRepository) insertJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := tx.Exec(ctx, query,
		journal.JournalID,
		journal.TenantID,
		journal.JournalNumber,
		journal.JournalDate,
		journal.FiscalYearID,
		journal.PeriodID,
		journal.JournalType,
		journal.Description,
		journal.CurrencyCode,
		journal.Status,
		journal.TotalDebit,
		journal.TotalCredit,
		nullableString(journal.PostedBy),
		journal.PostedAt,
		nullableString(journal.ReversedBy),
		journal.ReversedAt,
		journal.OriginalJournalID,
		journal.ReversingJournalID,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: journal number %s already exists", apperrors.ErrDuplicate, journal.JournalNumber)
			}
		}
		return apperrors.NewAppError(500, "failed to insert journal "+journal.JournalID, err)
	}
	return nil
}

// insertEntriesInTx batch-inserts journal entry rows inside the transaction.
func (r *PgxJournalRepository) insertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (
			entry_id, journal_id, tenant_id, account_id, shop_id, side,
			debit_amount, credit_amount, description, line_number,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.EntryID,
			e.JournalID,
			e.TenantID,
			e.AccountID,
			nullableString(e.ShopID),
			e.Side,
			e.DebitAmount,
			e.CreditAmount,
			e.Description,
			e.LineNumber,
			e.CreatedAt,
			e.CreatedBy,
			e.LastUpdatedAt,
			e.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entries", err)
	}
	return nil
}

// SaveDraft persists a draft journal with its entries in one transaction.
func (r *PgxJournalRepository) SaveDraft(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertJournalInTx(ctx, tx, journal); err != nil {
		return err
	}
	if err := r.insertEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeleteDraft removes a draft journal and its entries. Posted or reversed
// journals are immutable and yield ErrInvalidState.
func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, tenantID, journalID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	deleteJournal := `
		DELETE FROM journals
		WHERE tenant_id = $1 AND journal_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, deleteJournal, tenantID, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete draft journal "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		existsQuery := `SELECT EXISTS (SELECT 1 FROM journals WHERE tenant_id = $1 AND journal_id = $2);`
		if scanErr := tx.QueryRow(ctx, existsQuery, tenantID, journalID).Scan(&exists); scanErr != nil {
			return apperrors.NewAppError(500, "failed to check journal "+journalID, scanErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: journal %s is not a draft", apperrors.ErrInvalidState, journalID)
	}

	deleteEntries := `DELETE FROM journal_entries WHERE journal_id = $1;`
	if _, err := tx.Exec(ctx, deleteEntries, journalID); err != nil {
		return apperrors.NewAppError(500, "failed to delete entries of journal "+journalID, err)
	}

	return r.Commit(ctx, tx)
}

// PostJournal transitions a draft to posted inside one transaction:
// share-locks the period, flips the status under a guard, locks the affected
// accounts, appends ledger rows with running balances, upserts the period
// balance cache, and applies the account balance deltas.
func (r *PgxJournalRepository) PostJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	period, err := r.periodRepo.FindPeriodForShare(ctx, tx, journal.TenantID, journal.PeriodID)
	if err != nil {
		return err
	}
	if !period.IsOpen() {
		return fmt.Errorf("%w: period %s is closed", apperrors.ErrPeriodClosed, period.PeriodID)
	}

	// Guarded status flip. A concurrent post of the same journal loses
	// here and sees zero rows affected.
	updateQuery := `
		UPDATE journals
		SET status = 'POSTED', total_debit = $3, total_credit = $4,
		    posted_by = $5, posted_at = $6, last_updated_at = $6, last_updated_by = $5
		WHERE tenant_id = $1 AND journal_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		journal.TenantID,
		journal.JournalID,
		journal.TotalDebit,
		journal.TotalCredit,
		journal.PostedBy,
		journal.PostedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status for "+journal.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s is not a draft", apperrors.ErrInvalidState, journal.JournalID)
	}

	if err := r.appendLedgerInTx(ctx, tx, journal, entries, deltas); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SaveReversal persists an already-balanced reversal journal as posted and
// marks the original reversed, all in one transaction.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, original domain.Journal, reversal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	period, err := r.periodRepo.FindPeriodForShare(ctx, tx, reversal.TenantID, reversal.PeriodID)
	if err != nil {
		return err
	}
	if !period.IsOpen() {
		return fmt.Errorf("%w: period %s is closed", apperrors.ErrPeriodClosed, period.PeriodID)
	}

	// Guarded flip of the original. A concurrent reversal of the same
	// journal loses here.
	updateQuery := `
		UPDATE journals
		SET status = 'REVERSED', reversing_journal_id = $3,
		    reversed_by = $4, reversed_at = $5, last_updated_at = $5, last_updated_by = $4
		WHERE tenant_id = $1 AND journal_id = $2 AND status = 'POSTED' AND reversing_journal_id IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		original.TenantID,
		original.JournalID,
		reversal.JournalID,
		original.ReversedBy,
		original.ReversedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark journal "+original.JournalID+" reversed", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s is not posted or already reversed", apperrors.ErrInvalidState, original.JournalID)
	}

	if err := r.insertJournalInTx(ctx, tx, reversal); err != nil {
		return err
	}
	if err := r.appendLedgerInTx(ctx, tx, reversal, entries, deltas); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// appendLedgerInTx locks the affected accounts, writes the journal entry
// and general ledger rows with running balances, upserts the per-period
// balance cache, and applies the cached account balance deltas.
func (r *PgxJournalRepository) appendLedgerInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	accountIDs := make([]string, 0, len(deltas))
	for accID := range deltas {
		accountIDs = append(accountIDs, accID)
	}
	sort.Strings(accountIDs)

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, journal.TenantID, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for posting: %w", err)
	}

	if err := r.insertEntriesInTx(ctx, tx, entries); err != nil {
		return err
	}

	// Running balances start from the balance each account held before
	// this journal. Entries are processed in line order so the per-account
	// running totals within the journal stay deterministic.
	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		runningBalances[accID] = acc.CurrentBalance
	}
	sorted := make([]domain.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LineNumber < sorted[j].LineNumber })

	ledgerQuery := `
		INSERT INTO general_ledger (
			ledger_id, tenant_id, account_id, journal_id, journal_entry_id,
			fiscal_year_id, period_id, shop_id, transaction_date,
			debit_amount, credit_amount, balance, created_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, entry := range sorted {
		account, ok := lockedAccounts[entry.AccountID]
		if !ok {
			return apperrors.NewAppError(500, "internal error: locked account "+entry.AccountID+" missing during ledger append", nil)
		}
		signed, err := accounting.SignedDelta(entry, account.Category)
		if err != nil {
			return apperrors.NewAppError(500, "failed to compute signed delta for entry "+entry.EntryID, err)
		}
		newBalance := runningBalances[entry.AccountID].Add(signed)
		runningBalances[entry.AccountID] = newBalance

		batch.Queue(ledgerQuery,
			uuid.NewString(),
			entry.TenantID,
			entry.AccountID,
			entry.JournalID,
			entry.EntryID,
			journal.FiscalYearID,
			journal.PeriodID,
			nullableString(entry.ShopID),
			journal.JournalDate,
			entry.DebitAmount,
			entry.CreditAmount,
			newBalance,
			journal.LastUpdatedAt,
			journal.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // journal_entry_id replayed
				return fmt.Errorf("%w: ledger rows for journal %s already exist", apperrors.ErrDuplicatePosting, journal.JournalID)
			}
		}
		return apperrors.NewAppError(500, "failed to append ledger rows for journal "+journal.JournalID, err)
	}

	if err := r.upsertAccountBalancesInTx(ctx, tx, journal, sorted, lockedAccounts); err != nil {
		return err
	}

	return r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, journal.TenantID, deltas, journal.LastUpdatedBy, journal.LastUpdatedAt)
}

// upsertAccountBalancesInTx folds this journal's entries into the per
// (account, fiscal year, period) balance cache.
func (r *PgxJournalRepository) upsertAccountBalancesInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, entries []domain.JournalEntry, accounts map[string]domain.Account) error {
	type accumulator struct {
		debits  decimal.Decimal
		credits decimal.Decimal
		signed  decimal.Decimal
	}
	perAccount := make(map[string]*accumulator)
	for _, entry := range entries {
		acc, ok := perAccount[entry.AccountID]
		if !ok {
			acc = &accumulator{debits: decimal.Zero, credits: decimal.Zero, signed: decimal.Zero}
			perAccount[entry.AccountID] = acc
		}
		signed, err := accounting.SignedDelta(entry, accounts[entry.AccountID].Category)
		if err != nil {
			return apperrors.NewAppError(500, "failed to compute signed delta for entry "+entry.EntryID, err)
		}
		acc.debits = acc.debits.Add(entry.DebitAmount)
		acc.credits = acc.credits.Add(entry.CreditAmount)
		acc.signed = acc.signed.Add(signed)
	}

	query := `
		INSERT INTO account_balances (
			balance_id, tenant_id, account_id, fiscal_year_id, period_id,
			opening_balance, current_balance, total_debits, total_credits,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, $9, $10)
		ON CONFLICT (tenant_id, account_id, fiscal_year_id, period_id) DO UPDATE
		SET current_balance = account_balances.current_balance + EXCLUDED.current_balance,
		    total_debits = account_balances.total_debits + EXCLUDED.total_debits,
		    total_credits = account_balances.total_credits + EXCLUDED.total_credits,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	batch := &pgx.Batch{}
	for accountID, acc := range perAccount {
		batch.Queue(query,
			uuid.NewString(),
			journal.TenantID,
			accountID,
			journal.FiscalYearID,
			journal.PeriodID,
			acc.signed,
			acc.debits,
			acc.credits,
			journal.LastUpdatedAt,
			journal.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to upsert account balances for journal "+journal.JournalID, err)
	}
	return nil
}

// NextJournalNumber reserves the next tenant-scoped journal sequence number.
func (r *PgxJournalRepository) NextJournalNumber(ctx context.Context, tenantID string) (int64, error) {
	query := `
		INSERT INTO journal_number_counters (tenant_id, next_value)
		VALUES ($1, 2)
		ON CONFLICT (tenant_id) DO UPDATE
		SET next_value = journal_number_counters.next_value + 1
		RETURNING next_value - 1;
	`
	var number int64
	if err := r.Pool.QueryRow(ctx, query, tenantID).Scan(&number); err != nil {
		return 0, apperrors.NewAppError(500, "failed to reserve journal number for tenant "+tenantID, err)
	}
	return number, nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE tenant_id = $1 AND journal_id = $2;
	`
	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, tenantID, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}
	return &journal, nil
}

// FindEntriesByJournalID retrieves all entries of a journal in line order.
func (r *PgxJournalRepository) FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT entry_id, journal_id, tenant_id, account_id, shop_id, side,
		       debit_amount, credit_amount, description, line_number,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE journal_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for journal "+journalID, err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		var e domain.JournalEntry
		var shopID sql.NullString
		if err := rows.Scan(
			&e.EntryID,
			&e.JournalID,
			&e.TenantID,
			&e.AccountID,
			&shopID,
			&e.Side,
			&e.DebitAmount,
			&e.CreditAmount,
			&e.Description,
			&e.LineNumber,
			&e.CreatedAt,
			&e.CreatedBy,
			&e.LastUpdatedAt,
			&e.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for journal "+journalID, err)
		}
		if shopID.Valid {
			e.ShopID = shopID.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for journal "+journalID, err)
	}
	return entries, nil
}

// ListJournals retrieves a token-paginated list of a tenant's journals.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, tenantID string, filter portsrepo.ListJournalsFilter, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + journalColumns + `
		FROM journals
	`
	filterClause := `WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		filterClause += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.PeriodID != nil {
		args = append(args, *filter.PeriodID)
		filterClause += ` AND period_id = $` + strconv.Itoa(len(args))
	}
	if !filter.IncludeReversals {
		filterClause += ` AND status != 'REVERSED' AND original_journal_id IS NULL`
	}

	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		cursorClause := ` AND (journal_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
		args = append(args, fetchLimit)
		query := baseQuery + filterClause + cursorClause + ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)) + `;`
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		args = append(args, fetchLimit)
		query := baseQuery + filterClause + ` ` + orderByClause + ` LIMIT $` + strconv.Itoa(len(args)) + `;`
		rows, err = r.Pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journals for tenant "+tenantID, err)
	}
	defer rows.Close()

	journals := make([]domain.Journal, 0, fetchLimit)
	for rows.Next() {
		journal, scanErr := scanJournal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row for tenant "+tenantID, scanErr)
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal rows for tenant "+tenantID, err)
	}

	var nextTokenVal *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		journals = journals[:limit]
	}
	return journals, nextTokenVal, nil
}

// nullableString maps empty strings to NULL for optional text columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
