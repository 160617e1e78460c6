package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalEntryRequest is one line of a journal creation request.
// Exactly one of debitAmount/creditAmount must be positive.
type CreateJournalEntryRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	ShopID       string          `json:"shopID"`
	DebitAmount  decimal.Decimal `json:"debitAmount" binding:"omitempty,gte=0"`
	CreditAmount decimal.Decimal `json:"creditAmount" binding:"omitempty,gte=0"`
	Description  string          `json:"description"`
}

// CreateJournalRequest is the payload for creating a draft journal.
type CreateJournalRequest struct {
	Date         time.Time                   `json:"date" binding:"required"`
	Description  string                      `json:"description" binding:"required"`
	CurrencyCode string                      `json:"currencyCode" binding:"required,len=3"`
	JournalType  domain.JournalType          `json:"journalType"`
	Entries      []CreateJournalEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// JournalEntryResponse is the API representation of one journal line.
type JournalEntryResponse struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	ShopID       string          `json:"shopID,omitempty"`
	Side         string          `json:"side"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description,omitempty"`
	LineNumber   int             `json:"lineNumber"`
}

// JournalResponse is the API representation of a journal.
type JournalResponse struct {
	JournalID          string                 `json:"journalID"`
	JournalNumber      string                 `json:"journalNumber"`
	JournalDate        time.Time              `json:"journalDate"`
	FiscalYearID       string                 `json:"fiscalYearID"`
	PeriodID           string                 `json:"periodID"`
	JournalType        domain.JournalType     `json:"journalType"`
	Description        string                 `json:"description"`
	CurrencyCode       string                 `json:"currencyCode"`
	Status             domain.JournalStatus   `json:"status"`
	TotalDebit         decimal.Decimal        `json:"totalDebit"`
	TotalCredit        decimal.Decimal        `json:"totalCredit"`
	PostedBy           string                 `json:"postedBy,omitempty"`
	PostedAt           *time.Time             `json:"postedAt,omitempty"`
	ReversedBy         string                 `json:"reversedBy,omitempty"`
	ReversedAt         *time.Time             `json:"reversedAt,omitempty"`
	OriginalJournalID  *string                `json:"originalJournalID,omitempty"`
	ReversingJournalID *string                `json:"reversingJournalID,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	Entries            []JournalEntryResponse `json:"entries,omitempty"`
}

// ListJournalsParams holds query parameters for listing journals.
type ListJournalsParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	Status           *string `form:"status"`
	PeriodID         *string `form:"periodID"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeEntries   bool    `form:"includeEntries"`
}

// ListJournalsResponse is a token-paginated page of journals.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse maps a domain journal entry to its API shape.
func ToJournalEntryResponse(e domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:      e.EntryID,
		AccountID:    e.AccountID,
		ShopID:       e.ShopID,
		Side:         string(e.Side),
		DebitAmount:  e.DebitAmount,
		CreditAmount: e.CreditAmount,
		Description:  e.Description,
		LineNumber:   e.LineNumber,
	}
}

// ToJournalResponse maps a domain journal (entries included when loaded) to
// its API shape.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		JournalNumber:      j.JournalNumber,
		JournalDate:        j.JournalDate,
		FiscalYearID:       j.FiscalYearID,
		PeriodID:           j.PeriodID,
		JournalType:        j.JournalType,
		Description:        j.Description,
		CurrencyCode:       j.CurrencyCode,
		Status:             j.Status,
		TotalDebit:         j.TotalDebit,
		TotalCredit:        j.TotalCredit,
		PostedBy:           j.PostedBy,
		PostedAt:           j.PostedAt,
		ReversedBy:         j.ReversedBy,
		ReversedAt:         j.ReversedAt,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
	}
	if len(j.Entries) > 0 {
		resp.Entries = make([]JournalEntryResponse, len(j.Entries))
		for i, e := range j.Entries {
			resp.Entries[i] = ToJournalEntryResponse(e)
		}
	}
	return resp
}
