package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the cadence at which a recurring journal template
// materializes real journals.
type RecurrenceFrequency string

const (
	FrequencyDaily     RecurrenceFrequency = "DAILY"
	FrequencyWeekly    RecurrenceFrequency = "WEEKLY"
	FrequencyMonthly   RecurrenceFrequency = "MONTHLY"
	FrequencyQuarterly RecurrenceFrequency = "QUARTERLY"
	FrequencyYearly    RecurrenceFrequency = "YEARLY"
)

// Valid reports whether the frequency is a known cadence.
func (f RecurrenceFrequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Next returns the run date following from, advanced by one cadence step.
func (f RecurrenceFrequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	}
	return from
}

// RecurringJournal is a template that the scheduler materializes into real
// journals on a cadence. The template itself is never posted.
type RecurringJournal struct {
	RecurringJournalID string              `json:"recurringJournalID"`
	TenantID           string              `json:"tenantID"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	CurrencyCode       string              `json:"currencyCode"`
	Frequency          RecurrenceFrequency `json:"frequency"`
	StartDate          time.Time           `json:"startDate"`
	EndDate            *time.Time          `json:"endDate,omitempty"`
	NextRunDate        time.Time           `json:"nextRunDate"`
	IsActive           bool                `json:"isActive"`
	AuditFields
	Entries []RecurringJournalEntry `json:"entries,omitempty"`
}

// RecurringJournalEntry is one template line; it becomes a JournalEntry on
// each materialization.
type RecurringJournalEntry struct {
	EntryID            string          `json:"entryID"`
	RecurringJournalID string          `json:"recurringJournalID"`
	AccountID          string          `json:"accountID"`
	ShopID             string          `json:"shopID,omitempty"`
	Side               EntrySide       `json:"side"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description,omitempty"`
	LineNumber         int             `json:"lineNumber"`
}

// DueAt reports whether the template should materialize for the given
// instant: active, next run reached, and inside the start/end window.
func (r RecurringJournal) DueAt(now time.Time) bool {
	if !r.IsActive || r.NextRunDate.After(now) {
		return false
	}
	if r.NextRunDate.Before(r.StartDate) {
		return false
	}
	if r.EndDate != nil && r.NextRunDate.After(*r.EndDate) {
		return false
	}
	return true
}
