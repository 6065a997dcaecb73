package dto

// CreateInvestorRequest represents request to register an investor for an event.
// Budget is honored on the admin route only; public creation always starts the
// investor at the event's budget per investor.
type CreateInvestorRequest struct {
	EventID string   `json:"event_id" binding:"required"`
	Name    string   `json:"name" binding:"required"`
	Budget  *float64 `json:"budget,omitempty"`
}

// UpdateInvestorRequest represents request to rename an investor
type UpdateInvestorRequest struct {
	Name string `json:"name" binding:"required"`
}

// InvestorEventResponse represents the event slice of an investor view
type InvestorEventResponse struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	TotalBudgetPerInvestor float64 `json:"total_budget_per_investor"`
}

// InvestorHoldingResponse represents one investment inside an investor view
type InvestorHoldingResponse struct {
	ID          string  `json:"id"`
	StartupID   string  `json:"startup_id"`
	StartupName string  `json:"startup_name"`
	Amount      float64 `json:"amount"`
}

// CandidateStartupResponse represents a startup the investor may invest in
type CandidateStartupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InvestorViewResponse represents everything an investor's screen needs:
// identity, event, live budget, holdings and the event's startup list.
type InvestorViewResponse struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	Event             InvestorEventResponse      `json:"event"`
	RemainingBudget   float64                    `json:"remaining_budget"`
	Investments       []InvestorHoldingResponse  `json:"investments"`
	AvailableStartups []CandidateStartupResponse `json:"available_startups"`
}
