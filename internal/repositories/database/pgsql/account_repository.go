package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	"github.com/retailops/ledger_service/internal/utils/pagination"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account registry data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, tenant_id, account_type_id, parent_account_id, code, name, category,
	description, is_cash_account, is_bank_account, is_control_account, is_active,
	opening_balance, current_balance,
	created_at, created_by, last_updated_at, last_updated_by
`

// scanAccount scans one account row into a domain.Account. parent_account_id
// is nullable in the schema and maps to the empty string for roots.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var parentID sql.NullString
	err := row.Scan(
		&a.AccountID,
		&a.TenantID,
		&a.AccountTypeID,
		&parentID,
		&a.Code,
		&a.Name,
		&a.Category,
		&a.Description,
		&a.IsCashAccount,
		&a.IsBankAccount,
		&a.IsControlAccount,
		&a.IsActive,
		&a.OpeningBalance,
		&a.CurrentBalance,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if parentID.Valid {
		a.ParentAccountID = parentID.String
	}
	return a, nil
}

// SaveAccountType inserts an account type.
func (r *PgxAccountRepository) SaveAccountType(ctx context.Context, accountType domain.AccountType) error {
	query := `
		INSERT INTO account_types (
			account_type_id, tenant_id, code, name, category, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		accountType.AccountTypeID,
		accountType.TenantID,
		accountType.Code,
		accountType.Name,
		accountType.Category,
		accountType.IsActive,
		accountType.CreatedAt,
		accountType.CreatedBy,
		accountType.LastUpdatedAt,
		accountType.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account type code %s already exists", apperrors.ErrDuplicate, accountType.Code)
			}
		}
		return apperrors.NewAppError(500, "failed to insert account type "+accountType.AccountTypeID, err)
	}
	return nil
}

// FindAccountTypeByID retrieves an account type by its ID.
func (r *PgxAccountRepository) FindAccountTypeByID(ctx context.Context, tenantID, accountTypeID string) (*domain.AccountType, error) {
	query := `
		SELECT account_type_id, tenant_id, code, name, category, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM account_types
		WHERE tenant_id = $1 AND account_type_id = $2;
	`
	var t domain.AccountType
	err := r.Pool.QueryRow(ctx, query, tenantID, accountTypeID).Scan(
		&t.AccountTypeID,
		&t.TenantID,
		&t.Code,
		&t.Name,
		&t.Category,
		&t.IsActive,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account type by ID "+accountTypeID, err)
	}
	return &t, nil
}

// ListAccountTypes retrieves all account types of a tenant ordered by code.
func (r *PgxAccountRepository) ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error) {
	query := `
		SELECT account_type_id, tenant_id, code, name, category, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM account_types
		WHERE tenant_id = $1
		ORDER BY code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account types for tenant "+tenantID, err)
	}
	defer rows.Close()

	types := []domain.AccountType{}
	for rows.Next() {
		var t domain.AccountType
		if err := rows.Scan(
			&t.AccountTypeID,
			&t.TenantID,
			&t.Code,
			&t.Name,
			&t.Category,
			&t.IsActive,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account type row", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account type rows", err)
	}
	return types, nil
}

// DeactivateAccountType soft-deletes an account type.
func (r *PgxAccountRepository) DeactivateAccountType(ctx context.Context, tenantID, accountTypeID, updatedBy string, at time.Time) error {
	query := `
		UPDATE account_types
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND account_type_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, accountTypeID, at, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account type "+accountTypeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account type " + accountTypeID + " not found")
	}
	return nil
}

// SaveAccount inserts an account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	var parentID *string
	if account.ParentAccountID != "" {
		parentID = &account.ParentAccountID
	}
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.TenantID,
		account.AccountTypeID,
		parentID,
		account.Code,
		account.Name,
		account.Category,
		account.Description,
		account.IsCashAccount,
		account.IsBankAccount,
		account.IsControlAccount,
		account.IsActive,
		account.OpeningBalance,
		account.CurrentBalance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
			}
		}
		return apperrors.NewAppError(500, "failed to insert account "+account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = $2;
	`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by ID "+accountID, err)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by account ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2);
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by IDs", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", scanErr)
		}
		accountsMap[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accountsMap, nil
}

// ListAccounts retrieves a token-paginated list of a tenant's accounts.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, account_id DESC`

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
		return nil, nil, apperrors.NewAppError(500, "failed to query accounts for tenant "+tenantID, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, fetchLimit)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan account row", scanErr)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}

	var nextTokenVal *string
	if len(accounts) > limit {
		last := accounts[limit-1]
		token := pagination.EncodeTimeToken(last.CreatedAt)
		nextTokenVal = &token
		accounts = accounts[:limit]
	}
	return accounts, nextTokenVal, nil
}

// CountActiveChildren returns how many active direct children an account has.
func (r *PgxAccountRepository) CountActiveChildren(ctx context.Context, tenantID, accountID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM accounts
		WHERE tenant_id = $1 AND parent_account_id = $2 AND is_active = TRUE;
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count children of account "+accountID, err)
	}
	return count, nil
}

// DeactivateAccount soft-deletes an account. The registry never hard-deletes.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, updatedBy string, at time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND account_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, accountID, at, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the rows for update.
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	// Locks are always taken in ascending account_id order so concurrent
	// postings touching the same accounts cannot deadlock.
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", scanErr)
		}
		accountsMap[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceDeltasInTx applies signed balance changes to the cached
// current_balance column. Must run after FindAccountsByIDsForUpdate in the
// same transaction.
func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, tenantID string, deltas map[string]decimal.Decimal, updatedBy string, at time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET current_balance = COALESCE(current_balance, 0) + $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND account_id = $2;
	`
	batch := &pgx.Batch{}
	queued := 0
	for accountID, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		batch.Queue(query, tenantID, accountID, delta, at, updatedBy)
		queued++
	}
	if queued == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply account balance deltas: %w", err)
	}
	return nil
}
