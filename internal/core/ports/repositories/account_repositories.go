package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountTypeReader defines read operations for account type data.
type AccountTypeReader interface {
	FindAccountTypeByID(ctx context.Context, tenantID, accountTypeID string) (*domain.AccountType, error)
	ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error)
}

// AccountTypeWriter defines write operations for account type data.
type AccountTypeWriter interface {
	SaveAccountType(ctx context.Context, accountType domain.AccountType) error
	DeactivateAccountType(ctx context.Context, tenantID, accountTypeID, updatedBy string, at time.Time) error
}

// AccountReader defines read operations for account data.
type AccountReader interface {
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by account ID.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a token-paginated list of a tenant's accounts.
	ListAccounts(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Account, *string, error)

	// CountActiveChildren returns the number of active direct children of
	// the given account. Accounts with active children are not leaves.
	CountActiveChildren(ctx context.Context, tenantID, accountID string) (int, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	DeactivateAccount(ctx context.Context, tenantID, accountID, updatedBy string, at time.Time) error
}

// AccountPostingSupport exposes the in-transaction helpers the posting path
// needs: row locks on accounts and the cached-balance mutation. Both run
// inside the caller's transaction.
type AccountPostingSupport interface {
	// FindAccountsByIDsForUpdate locks the account rows (SELECT ... FOR
	// UPDATE) and returns them keyed by ID. Missing accounts yield
	// ErrNotFound.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx applies signed balance changes to the cached
	// current_balance column of the locked accounts.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, tenantID string, deltas map[string]decimal.Decimal, updatedBy string, at time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountTypeReader
	AccountTypeWriter
	AccountReader
	AccountWriter
	AccountPostingSupport
}
