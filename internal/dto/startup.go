package dto

// CreateStartupRequest represents request to register a startup for an event
type CreateStartupRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
	LogoURL string `json:"logo_url,omitempty"`
}

// UpdateStartupRequest represents request to update a startup. Omitted fields
// keep their current value.
type UpdateStartupRequest struct {
	Name    string `json:"name,omitempty"`
	LogoURL string `json:"logo_url,omitempty"`
}
