package dto

import (
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
)

// InvestRequest represents request to allocate an investor's budget to a startup.
// Amount is a pointer so a missing field is distinguishable from an explicit 0.
type InvestRequest struct {
	InvestorID string   `json:"investor_id" binding:"required"`
	StartupID  string   `json:"startup_id" binding:"required"`
	Amount     *float64 `json:"amount" binding:"required"`
}

// AllocationResponse represents response after a successful allocation
type AllocationResponse struct {
	Investment      *domain.Investment `json:"investment"`
	RemainingBudget float64            `json:"remaining_budget"`
}

// HistoryEntryResponse represents one prior amount in an investment's trail
type HistoryEntryResponse struct {
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	FormattedDate string    `json:"formatted_date"`
}

// InvestmentHistoryResponse represents an investment's audit trail, newest first
type InvestmentHistoryResponse struct {
	ID            string                 `json:"id"`
	InvestorName  string                 `json:"investor_name"`
	StartupName   string                 `json:"startup_name"`
	CurrentAmount float64                `json:"current_amount"`
	History       []HistoryEntryResponse `json:"history"`
}

// InvestorInvestmentResponse represents an investment annotated with its startup name
type InvestorInvestmentResponse struct {
	ID          string    `json:"id"`
	StartupID   string    `json:"startup_id"`
	StartupName string    `json:"startup_name"`
	EventID     string    `json:"event_id"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SummaryLineResponse represents one participant's aggregate in an event summary
type SummaryLineResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Total           float64 `json:"total"`
	InvestmentCount int     `json:"investment_count"`
}

// EventSummaryResponse represents the aggregate view of an event's investments
type EventSummaryResponse struct {
	EventTotal float64               `json:"event_total"`
	ByStartup  []SummaryLineResponse `json:"by_startup"`
	ByInvestor []SummaryLineResponse `json:"by_investor"`
}
