package domain

import "time"

// FiscalYearStatus is the lifecycle state of a fiscal year.
type FiscalYearStatus string

const (
	FiscalYearDraft  FiscalYearStatus = "DRAFT"
	FiscalYearActive FiscalYearStatus = "ACTIVE"
	FiscalYearClosed FiscalYearStatus = "CLOSED"
)

// PeriodStatus is the lifecycle state of an accounting period.
type PeriodStatus string

const (
	PeriodActive PeriodStatus = "ACTIVE"
	PeriodClosed PeriodStatus = "CLOSED"
)

// FiscalYear is a tenant-scoped accounting year. Closing is one-way:
// closed_by/closed_at are stamped once and never cleared.
type FiscalYear struct {
	FiscalYearID string           `json:"fiscalYearID"`
	TenantID     string           `json:"tenantID"`
	Name         string           `json:"name"`
	StartDate    time.Time        `json:"startDate"`
	EndDate      time.Time        `json:"endDate"`
	Status       FiscalYearStatus `json:"status"`
	ClosedBy     string           `json:"closedBy,omitempty"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
	AuditFields
}

// AccountingPeriod is a non-overlapping sub-range of one fiscal year.
// Postings are rejected once the period is closed.
type AccountingPeriod struct {
	PeriodID     string       `json:"periodID"`
	TenantID     string       `json:"tenantID"`
	FiscalYearID string       `json:"fiscalYearID"`
	Name         string       `json:"name"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	Status       PeriodStatus `json:"status"`
	ClosedBy     string       `json:"closedBy,omitempty"`
	ClosedAt     *time.Time   `json:"closedAt,omitempty"`
	AuditFields
}

// IsOpen reports whether the period still accepts postings.
func (p AccountingPeriod) IsOpen() bool {
	return p.Status == PeriodActive
}

// Contains reports whether the given date falls inside the period range
// (inclusive on both ends, date precision).
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}
