package dto

import (
	"time"

	"github.com/retailops/ledger_service/internal/core/domain"
)

// CreateFiscalYearRequest is the payload for creating a fiscal year.
type CreateFiscalYearRequest struct {
	Name      string    `json:"name" binding:"required,max=64"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// CreatePeriodRequest is the payload for creating an accounting period.
type CreatePeriodRequest struct {
	// FiscalYearID is taken from the URL path; a body value is overridden.
	FiscalYearID string    `json:"fiscalYearID"`
	Name         string    `json:"name" binding:"required,max=64"`
	StartDate    time.Time `json:"startDate" binding:"required"`
	EndDate      time.Time `json:"endDate" binding:"required"`
}

// FiscalYearResponse is the API representation of a fiscal year.
type FiscalYearResponse struct {
	FiscalYearID string                  `json:"fiscalYearID"`
	Name         string                  `json:"name"`
	StartDate    time.Time               `json:"startDate"`
	EndDate      time.Time               `json:"endDate"`
	Status       domain.FiscalYearStatus `json:"status"`
	ClosedBy     string                  `json:"closedBy,omitempty"`
	ClosedAt     *time.Time              `json:"closedAt,omitempty"`
}

// PeriodResponse is the API representation of an accounting period.
type PeriodResponse struct {
	PeriodID     string              `json:"periodID"`
	FiscalYearID string              `json:"fiscalYearID"`
	Name         string              `json:"name"`
	StartDate    time.Time           `json:"startDate"`
	EndDate      time.Time           `json:"endDate"`
	Status       domain.PeriodStatus `json:"status"`
	ClosedBy     string              `json:"closedBy,omitempty"`
	ClosedAt     *time.Time          `json:"closedAt,omitempty"`
}

// ToFiscalYearResponse maps a domain fiscal year to its API shape.
func ToFiscalYearResponse(fy *domain.FiscalYear) FiscalYearResponse {
	return FiscalYearResponse{
		FiscalYearID: fy.FiscalYearID,
		Name:         fy.Name,
		StartDate:    fy.StartDate,
		EndDate:      fy.EndDate,
		Status:       fy.Status,
		ClosedBy:     fy.ClosedBy,
		ClosedAt:     fy.ClosedAt,
	}
}

// ToPeriodResponse maps a domain accounting period to its API shape.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:     p.PeriodID,
		FiscalYearID: p.FiscalYearID,
		Name:         p.Name,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       p.Status,
		ClosedBy:     p.ClosedBy,
		ClosedAt:     p.ClosedAt,
	}
}
