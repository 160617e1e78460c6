package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRecurringEntryRequest is one template line of a recurring journal.
type CreateRecurringEntryRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	ShopID      string          `json:"shopID"`
	Side        domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Description string          `json:"description"`
}

// CreateRecurringJournalRequest is the payload for creating a template.
type CreateRecurringJournalRequest struct {
	Name         string                        `json:"name" binding:"required,max=100"`
	Description  string                        `json:"description" binding:"required"`
	CurrencyCode string                        `json:"currencyCode" binding:"required,len=3"`
	Frequency    domain.RecurrenceFrequency    `json:"frequency" binding:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY YEARLY"`
	StartDate    time.Time                     `json:"startDate" binding:"required"`
	EndDate      *time.Time                    `json:"endDate"`
	Entries      []CreateRecurringEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// RecurringJournalResponse is the API representation of a template.
type RecurringJournalResponse struct {
	RecurringJournalID string                     `json:"recurringJournalID"`
	Name               string                     `json:"name"`
	Description        string                     `json:"description"`
	CurrencyCode       string                     `json:"currencyCode"`
	Frequency          domain.RecurrenceFrequency `json:"frequency"`
	StartDate          time.Time                  `json:"startDate"`
	EndDate            *time.Time                 `json:"endDate,omitempty"`
	NextRunDate        time.Time                  `json:"nextRunDate"`
	IsActive           bool                       `json:"isActive"`
	CreatedAt          time.Time                  `json:"createdAt"`
}

// ListRecurringJournalsParams holds query parameters for listing templates.
type ListRecurringJournalsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListRecurringJournalsResponse is a token-paginated page of templates.
type ListRecurringJournalsResponse struct {
	RecurringJournals []RecurringJournalResponse `json:"recurringJournals"`
	NextToken         *string                    `json:"nextToken,omitempty"`
}

// TickResponse reports what a scheduler pass materialized.
type TickResponse struct {
	MaterializedJournalIDs []string `json:"materializedJournalIDs"`
	SkippedDuplicates      int      `json:"skippedDuplicates"`
	Failures               int      `json:"failures"`
}

// ToRecurringJournalResponse maps a domain template to its API shape.
func ToRecurringJournalResponse(r *domain.RecurringJournal) RecurringJournalResponse {
	return RecurringJournalResponse{
		RecurringJournalID: r.RecurringJournalID,
		Name:               r.Name,
		Description:        r.Description,
		CurrencyCode:       r.CurrencyCode,
		Frequency:          r.Frequency,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		NextRunDate:        r.NextRunDate,
		IsActive:           r.IsActive,
		CreatedAt:          r.CreatedAt,
	}
}
