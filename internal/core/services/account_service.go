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

// accountService is the Account Registry: the sole writer of account and
// account type rows.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account registry service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccountType creates a tenant-scoped account classification.
func (s *accountService) CreateAccountType(ctx context.Context, tenantID string, req dto.CreateAccountTypeRequest, creatorID string) (*domain.AccountType, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown account category %q", apperrors.ErrValidation, req.Category)
	}

	now := time.Now().UTC()
	accountType := domain.AccountType{
		AccountTypeID: uuid.NewString(),
		TenantID:      tenantID,
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccountType(ctx, accountType); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account type code %s already exists", apperrors.ErrDuplicate, req.Code)
		}
		logger.Error("Failed to save account type", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save account type: %w", err)
	}

	logger.Info("Account type created", slog.String("account_type_id", accountType.AccountTypeID), slog.String("tenant_id", tenantID))
	return &accountType, nil
}

// ListAccountTypes returns all account types for a tenant.
func (s *accountService) ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error) {
	return s.accountRepo.ListAccountTypes(ctx, tenantID)
}

// CreateAccount creates an account in the tenant's chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType, err := s.accountRepo.FindAccountTypeByID(ctx, tenantID, req.AccountTypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account type %s not found", apperrors.ErrValidation, req.AccountTypeID)
		}
		return nil, fmt.Errorf("failed to fetch account type: %w", err)
	}
	if !accountType.IsActive {
		return nil, fmt.Errorf("%w: account type %s is inactive", apperrors.ErrValidation, req.AccountTypeID)
	}

	// Parent must live in the same tenant and carry the same category,
	// otherwise rollups across the tree would mix normal sides.
	if req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if parent.Category != accountType.Category {
			return nil, fmt.Errorf("%w: parent account category %s does not match account type category %s",
				apperrors.ErrValidation, parent.Category, accountType.Category)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, req.ParentAccountID)
		}
	}

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		TenantID:         tenantID,
		AccountTypeID:    req.AccountTypeID,
		ParentAccountID:  req.ParentAccountID,
		Code:             req.Code,
		Name:             req.Name,
		Category:         accountType.Category,
		Description:      req.Description,
		IsCashAccount:    req.IsCashAccount,
		IsBankAccount:    req.IsBankAccount,
		IsControlAccount: req.IsControlAccount,
		IsActive:         true,
		OpeningBalance:   req.OpeningBalance,
		CurrentBalance:   req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, req.Code)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("tenant_id", tenantID))
	return &account, nil
}

// GetAccountByID retrieves one account.
func (s *accountService) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, tenantID, accountIDs)
}

// ListAccounts retrieves a token-paginated page of accounts.
func (s *accountService) ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	accounts, nextToken, err := s.accountRepo.ListAccounts(ctx, tenantID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	return &dto.ListAccountsResponse{Accounts: responses, NextToken: nextToken}, nil
}

// DeactivateAccount soft-deactivates an account. Accounts with active
// children stay active so the tree keeps rolling up.
func (s *accountService) DeactivateAccount(ctx context.Context, tenantID, accountID, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}

	children, err := s.accountRepo.CountActiveChildren(ctx, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to count child accounts: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("%w: account %s has %d active child accounts", apperrors.ErrConflict, accountID, children)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, tenantID, accountID, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID), slog.String("tenant_id", tenantID))
	return nil
}

// ResolveForPosting returns the account when it may receive postings: it
// must be active, must not be a control account, and must be a leaf.
func (s *accountService) ResolveForPosting(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrNotPostable, accountID)
	}
	if account.IsControlAccount {
		return nil, fmt.Errorf("%w: account %s is a control account", apperrors.ErrNotPostable, accountID)
	}
	children, err := s.accountRepo.CountActiveChildren(ctx, tenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to count child accounts: %w", err)
	}
	if children > 0 {
		return nil, fmt.Errorf("%w: account %s is a non-leaf rollup account", apperrors.ErrNotPostable, accountID)
	}
	return account, nil
}
