package domain

import "time"

// EventType names a ledger domain event.
type EventType string

const (
	EventJournalPosted         EventType = "ledger.journal.posted"
	EventJournalReversed       EventType = "ledger.journal.reversed"
	EventTrialBalanceFinalized EventType = "ledger.trial_balance.finalized"
	EventPeriodClosed          EventType = "ledger.period.closed"
	EventFiscalYearClosed      EventType = "ledger.fiscal_year.closed"
)

// Event is emitted after a successful commit for every irreversible state
// transition, for consumption by downstream reporting. Delivery semantics
// belong to the external messaging layer.
type Event struct {
	EventID    string            `json:"eventID"`
	Type       EventType         `json:"type"`
	TenantID   string            `json:"tenantID"`
	EntityID   string            `json:"entityID"` // journal / trial balance / period id
	Actor      string            `json:"actor"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    map[string]string `json:"payload,omitempty"`
}
