package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountTypeRequest is the payload for creating an account type.
type CreateAccountTypeRequest struct {
	Code     string                 `json:"code" binding:"required,max=32"`
	Name     string                 `json:"name" binding:"required,max=100"`
	Category domain.AccountCategory `json:"category" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
}

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	AccountTypeID    string          `json:"accountTypeID" binding:"required"`
	ParentAccountID  string          `json:"parentAccountID"`
	Code             string          `json:"code" binding:"required,max=32"`
	Name             string          `json:"name" binding:"required,max=100"`
	Description      string          `json:"description"`
	IsCashAccount    bool            `json:"isCashAccount"`
	IsBankAccount    bool            `json:"isBankAccount"`
	IsControlAccount bool            `json:"isControlAccount"`
	OpeningBalance   decimal.Decimal `json:"openingBalance" binding:"omitempty,gte=0"`
}

// AccountTypeResponse is the API representation of an account type.
type AccountTypeResponse struct {
	AccountTypeID string                 `json:"accountTypeID"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Category      domain.AccountCategory `json:"category"`
	NormalSide    string                 `json:"normalSide"`
	IsActive      bool                   `json:"isActive"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID        string                 `json:"accountID"`
	AccountTypeID    string                 `json:"accountTypeID"`
	ParentAccountID  string                 `json:"parentAccountID,omitempty"`
	Code             string                 `json:"code"`
	Name             string                 `json:"name"`
	Category         domain.AccountCategory `json:"category"`
	Description      string                 `json:"description,omitempty"`
	IsCashAccount    bool                   `json:"isCashAccount"`
	IsBankAccount    bool                   `json:"isBankAccount"`
	IsControlAccount bool                   `json:"isControlAccount"`
	IsActive         bool                   `json:"isActive"`
	OpeningBalance   decimal.Decimal        `json:"openingBalance"`
	CurrentBalance   decimal.Decimal        `json:"currentBalance"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// ListAccountsParams holds query parameters for listing accounts.
type ListAccountsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListAccountsResponse is a token-paginated page of accounts.
type ListAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToAccountTypeResponse maps a domain account type to its API shape.
func ToAccountTypeResponse(t *domain.AccountType) AccountTypeResponse {
	return AccountTypeResponse{
		AccountTypeID: t.AccountTypeID,
		Code:          t.Code,
		Name:          t.Name,
		Category:      t.Category,
		NormalSide:    string(t.Category.NormalSide()),
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
	}
}

// ToAccountResponse maps a domain account to its API shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		AccountTypeID:    a.AccountTypeID,
		ParentAccountID:  a.ParentAccountID,
		Code:             a.Code,
		Name:             a.Name,
		Category:         a.Category,
		Description:      a.Description,
		IsCashAccount:    a.IsCashAccount,
		IsBankAccount:    a.IsBankAccount,
		IsControlAccount: a.IsControlAccount,
		IsActive:         a.IsActive,
		OpeningBalance:   a.OpeningBalance,
		CurrentBalance:   a.CurrentBalance,
		CreatedAt:        a.CreatedAt,
	}
}
