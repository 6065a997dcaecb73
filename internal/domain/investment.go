package domain

import (
	"time"
)

// Investment is the current allocation of one investor to one startup. There
// is at most one record per (investor, startup) pair; re-investing mutates
// Amount in place and pushes the prior amount onto the history trail.
// A zero Amount is a cleared allocation, not a deleted record.
type Investment struct {
	ID        string         `json:"id"`
	InvestorID string        `json:"investor_id"`
	StartupID string         `json:"startup_id"`
	EventID   string         `json:"event_id"`
	Amount    float64        `json:"amount"`
	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// HistoryEntry captures the amount an investment held before a mutation.
// Entries are append-only; they are never reordered or deleted.
type HistoryEntry struct {
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
