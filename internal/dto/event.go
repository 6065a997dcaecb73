package dto

import (
	"github.com/Berytech/Investment-Platform/internal/domain"
)

// CreateEventRequest represents request to create an event.
// Date is RFC 3339.
type CreateEventRequest struct {
	Name                   string   `json:"name" binding:"required"`
	Date                   string   `json:"date" binding:"required"`
	TotalBudgetPerInvestor *float64 `json:"total_budget_per_investor" binding:"required"`
}

// UpdateEventRequest represents request to update an event. Omitted fields
// keep their current value.
type UpdateEventRequest struct {
	Name                   string   `json:"name,omitempty"`
	Date                   string   `json:"date,omitempty"`
	TotalBudgetPerInvestor *float64 `json:"total_budget_per_investor,omitempty"`
}

// EventDetailResponse represents an event with its participants
type EventDetailResponse struct {
	Event     *domain.Event      `json:"event"`
	Investors []*domain.Investor `json:"investors"`
	Startups  []*domain.Startup  `json:"startups"`
}
