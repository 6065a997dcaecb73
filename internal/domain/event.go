package domain

import (
	"time"
)

// Event represents a pitch event. TotalBudgetPerInvestor is the budget ceiling
// handed to every investor attached to the event; it never changes after
// investors start allocating.
type Event struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Date                   time.Time `json:"date"`
	TotalBudgetPerInvestor float64   `json:"total_budget_per_investor"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// CascadePolicy controls what happens to investments when their event is
// deleted. Investors and startups are always removed with the event;
// investments are kept as inert records by default so the audit trail
// survives.
type CascadePolicy string

const (
	// CascadePreserveInvestments keeps investment records after event deletion.
	CascadePreserveInvestments CascadePolicy = "preserve"
	// CascadeDeleteInvestments removes investment records with the event.
	CascadeDeleteInvestments CascadePolicy = "delete"
)
