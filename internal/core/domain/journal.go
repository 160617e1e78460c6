package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the lifecycle state of a journal. The only legal
// transitions are DRAFT -> POSTED -> REVERSED; drafts may also be deleted.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalType records which collaborator originated a journal.
type JournalType string

const (
	JournalTypeManual    JournalType = "MANUAL"
	JournalTypeSales     JournalType = "SALES"
	JournalTypePurchase  JournalType = "PURCHASE"
	JournalTypeRecurring JournalType = "RECURRING"
	JournalTypeReversal  JournalType = "REVERSAL"
)

// EntrySide indicates whether a journal entry debits or credits its account.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Journal represents a single, balanced financial event composed of
// multiple entries. Once posted, the journal and its entries are immutable;
// corrections go through a reversal journal.
type Journal struct {
	JournalID     string          `json:"journalID"`
	TenantID      string          `json:"tenantID"`
	JournalNumber string          `json:"journalNumber"` // unique per tenant, e.g. JRN-000042
	JournalDate   time.Time       `json:"journalDate"`
	FiscalYearID  string          `json:"fiscalYearID"`
	PeriodID      string          `json:"periodID"`
	JournalType   JournalType     `json:"journalType"`
	Description   string          `json:"description"`
	CurrencyCode  string          `json:"currencyCode"`
	Status        JournalStatus   `json:"status"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	PostedBy      string          `json:"postedBy,omitempty"`
	PostedAt      *time.Time      `json:"postedAt,omitempty"`
	ReversedBy    string          `json:"reversedBy,omitempty"`
	ReversedAt    *time.Time      `json:"reversedAt,omitempty"`
	// Reversal linkage: a reversal journal points at its original via
	// OriginalJournalID; the original points forward via ReversingJournalID.
	OriginalJournalID  *string `json:"originalJournalID,omitempty"`
	ReversingJournalID *string `json:"reversingJournalID,omitempty"`
	AuditFields
	Entries []JournalEntry `json:"entries,omitempty"` // often loaded separately
}

// JournalEntry is one line of a journal, debiting or crediting exactly one
// account. Exactly one of DebitAmount/CreditAmount is non-zero.
type JournalEntry struct {
	EntryID      string          `json:"entryID"`
	JournalID    string          `json:"journalID"`
	TenantID     string          `json:"tenantID"`
	AccountID    string          `json:"accountID"`
	ShopID       string          `json:"shopID,omitempty"` // multi-shop tenants
	Side         EntrySide       `json:"side"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description,omitempty"`
	LineNumber   int             `json:"lineNumber"`
	AuditFields
}

// Amount returns the non-zero side of the entry.
func (e JournalEntry) Amount() decimal.Decimal {
	if e.Side == Debit {
		return e.DebitAmount
	}
	return e.CreditAmount
}
