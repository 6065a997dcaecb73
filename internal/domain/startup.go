package domain

import (
	"time"
)

// Startup represents a pitching startup. It belongs to exactly one event and
// carries no budget state of its own.
type Startup struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
