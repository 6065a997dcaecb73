package domain

import (
	"time"
)

// Investor represents a participant with a fixed per-event budget.
//
// RemainingBudget is the only mutable numeric state; it must always equal
// Event.TotalBudgetPerInvestor minus the sum of the investor's current
// investment amounts. Only the ledger service writes it.
//
// Version is an optimistic concurrency counter. Every budget write compares
// against the version it read and bumps it; a mismatch means a concurrent
// allocation won the race and the ledger must re-read and recompute.
type Investor struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Name            string    `json:"name"`
	RemainingBudget float64   `json:"remaining_budget"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
