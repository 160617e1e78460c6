package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	"github.com/retailops/ledger_service/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a read-only repository over the general
// ledger and the account balance cache. Ledger rows are written exclusively
// by the journal posting transaction.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerReader {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

// ListLedgerRows retrieves a token-paginated, newest-first slice of an
// account's ledger rows.
func (r *PgxLedgerRepository) ListLedgerRows(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.GeneralLedger, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ledger_id, tenant_id, account_id, journal_id, journal_entry_id,
		       fiscal_year_id, period_id, shop_id, transaction_date,
		       debit_amount, credit_amount, balance, created_at, created_by
		FROM general_ledger
		WHERE tenant_id = $1 AND account_id = $2
	`
	orderByClause := `ORDER BY transaction_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND (transaction_date, created_at) < ($3, $4) ` + orderByClause + ` LIMIT $5;`
		rows, err = r.Pool.Query(ctx, query, tenantID, accountID, lastDate, lastCreatedAt, fetchLimit)
	} else {
		query := baseQuery + orderByClause + ` LIMIT $3;`
		rows, err = r.Pool.Query(ctx, query, tenantID, accountID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger rows for account "+accountID, err)
	}
	defer rows.Close()

	ledgerRows := make([]domain.GeneralLedger, 0, fetchLimit)
	for rows.Next() {
		var gl domain.GeneralLedger
		var shopID sql.NullString
		if err := rows.Scan(
			&gl.LedgerID,
			&gl.TenantID,
			&gl.AccountID,
			&gl.JournalID,
			&gl.JournalEntryID,
			&gl.FiscalYearID,
			&gl.PeriodID,
			&shopID,
			&gl.TransactionDate,
			&gl.DebitAmount,
			&gl.CreditAmount,
			&gl.Balance,
			&gl.CreatedAt,
			&gl.CreatedBy,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger row for account "+accountID, err)
		}
		if shopID.Valid {
			gl.ShopID = shopID.String
		}
		ledgerRows = append(ledgerRows, gl)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(ledgerRows) > limit {
		last := ledgerRows[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		nextTokenVal = &token
		ledgerRows = ledgerRows[:limit]
	}
	return ledgerRows, nextTokenVal, nil
}

// GetAccountBalance returns the cached balance row for
// (account, fiscal year, period).
func (r *PgxLedgerRepository) GetAccountBalance(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (*domain.AccountBalance, error) {
	query := `
		SELECT balance_id, tenant_id, account_id, fiscal_year_id, period_id, shop_id,
		       opening_balance, current_balance, total_debits, total_credits,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM account_balances
		WHERE tenant_id = $1 AND account_id = $2 AND fiscal_year_id = $3 AND period_id = $4;
	`
	var b domain.AccountBalance
	var shopID sql.NullString
	err := r.Pool.QueryRow(ctx, query, tenantID, accountID, fiscalYearID, periodID).Scan(
		&b.BalanceID,
		&b.TenantID,
		&b.AccountID,
		&b.FiscalYearID,
		&b.PeriodID,
		&shopID,
		&b.OpeningBalance,
		&b.CurrentBalance,
		&b.TotalDebits,
		&b.TotalCredits,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account balance for account "+accountID, err)
	}
	if shopID.Valid {
		b.ShopID = shopID.String
	}
	return &b, nil
}

// SumLedgerForAccount recomputes period totals straight from the ledger.
func (r *PgxLedgerRepository) SumLedgerForAccount(ctx context.Context, tenantID, accountID, fiscalYearID, periodID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0)
		FROM general_ledger
		WHERE tenant_id = $1 AND account_id = $2 AND fiscal_year_id = $3 AND period_id = $4;
	`
	var debits, credits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID, fiscalYearID, periodID).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to sum ledger for account "+accountID, err)
	}
	return debits, credits, nil
}

// AggregateLedgerTotals sums debit/credit per account over a period up to
// asOf, joined with account metadata, for trial balance generation. Accounts
// with no activity in the period are omitted.
func (r *PgxLedgerRepository) AggregateLedgerTotals(ctx context.Context, tenantID, fiscalYearID, periodID string, asOf time.Time) ([]domain.TrialBalanceEntry, error) {
	query := `
		SELECT gl.account_id, a.code, a.name, a.category,
		       COALESCE(SUM(gl.debit_amount), 0), COALESCE(SUM(gl.credit_amount), 0)
		FROM general_ledger gl
		JOIN accounts a ON gl.account_id = a.account_id
		WHERE gl.tenant_id = $1 AND gl.fiscal_year_id = $2 AND gl.period_id = $3 AND gl.transaction_date <= $4
		GROUP BY gl.account_id, a.code, a.name, a.category
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, fiscalYearID, periodID, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate ledger totals for period "+periodID, err)
	}
	defer rows.Close()

	entries := []domain.TrialBalanceEntry{}
	for rows.Next() {
		var e domain.TrialBalanceEntry
		if err := rows.Scan(
			&e.AccountID,
			&e.AccountCode,
			&e.AccountName,
			&e.Category,
			&e.TotalDebits,
			&e.TotalCredits,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan aggregated ledger row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating aggregated ledger rows", err)
	}
	return entries, nil
}
