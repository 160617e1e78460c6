package services

import (
	"context"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/retailops/ledger_service/internal/dto"
)

// AccountSvcFacade is the Account Registry: sole writer of account and
// account type rows, read-heavy for everyone else.
type AccountSvcFacade interface {
	CreateAccountType(ctx context.Context, tenantID string, req dto.CreateAccountTypeRequest, creatorID string) (*domain.AccountType, error)
	ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error)

	CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)
	DeactivateAccount(ctx context.Context, tenantID, accountID, actorID string) error

	// ResolveForPosting returns the account if it may receive postings:
	// active, leaf, and not a control account. Otherwise ErrNotPostable.
	ResolveForPosting(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
}
