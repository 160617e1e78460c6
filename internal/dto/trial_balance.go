package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GenerateTrialBalanceRequest is the payload for generating a draft trial
// balance snapshot.
type GenerateTrialBalanceRequest struct {
	FiscalYearID string    `json:"fiscalYearID" binding:"required"`
	PeriodID     string    `json:"periodID" binding:"required"`
	AsOfDate     time.Time `json:"asOfDate" binding:"required"`
}

// TrialBalanceEntryResponse is one account's totals within a snapshot.
type TrialBalanceEntryResponse struct {
	AccountID      string                 `json:"accountID"`
	AccountCode    string                 `json:"accountCode"`
	AccountName    string                 `json:"accountName"`
	Category       domain.AccountCategory `json:"category"`
	TotalDebits    decimal.Decimal        `json:"totalDebits"`
	TotalCredits   decimal.Decimal        `json:"totalCredits"`
	ClosingBalance decimal.Decimal        `json:"closingBalance"`
}

// TrialBalanceResponse is the API representation of a trial balance.
type TrialBalanceResponse struct {
	TrialBalanceID string                      `json:"trialBalanceID"`
	FiscalYearID   string                      `json:"fiscalYearID"`
	PeriodID       string                      `json:"periodID"`
	AsOfDate       time.Time                   `json:"asOfDate"`
	Status         domain.TrialBalanceStatus   `json:"status"`
	TotalDebits    decimal.Decimal             `json:"totalDebits"`
	TotalCredits   decimal.Decimal             `json:"totalCredits"`
	FinalizedBy    string                      `json:"finalizedBy,omitempty"`
	FinalizedAt    *time.Time                  `json:"finalizedAt,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	Entries        []TrialBalanceEntryResponse `json:"entries,omitempty"`
}

// ListTrialBalancesParams holds query parameters for listing snapshots.
type ListTrialBalancesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTrialBalancesResponse is a token-paginated page of snapshots.
type ListTrialBalancesResponse struct {
	TrialBalances []TrialBalanceResponse `json:"trialBalances"`
	NextToken     *string                `json:"nextToken,omitempty"`
}

// ToTrialBalanceResponse maps a domain trial balance (entries included when
// loaded) to its API shape.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		TrialBalanceID: tb.TrialBalanceID,
		FiscalYearID:   tb.FiscalYearID,
		PeriodID:       tb.PeriodID,
		AsOfDate:       tb.AsOfDate,
		Status:         tb.Status,
		TotalDebits:    tb.TotalDebits,
		TotalCredits:   tb.TotalCredits,
		FinalizedBy:    tb.FinalizedBy,
		FinalizedAt:    tb.FinalizedAt,
		CreatedAt:      tb.CreatedAt,
	}
	if len(tb.Entries) > 0 {
		resp.Entries = make([]TrialBalanceEntryResponse, len(tb.Entries))
		for i, e := range tb.Entries {
			resp.Entries[i] = TrialBalanceEntryResponse{
				AccountID:      e.AccountID,
				AccountCode:    e.AccountCode,
				AccountName:    e.AccountName,
				Category:       e.Category,
				TotalDebits:    e.TotalDebits,
				TotalCredits:   e.TotalCredits,
				ClosingBalance: e.ClosingBalance,
			}
		}
	}
	return resp
}
