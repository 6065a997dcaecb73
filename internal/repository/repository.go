package repository

import (
	"context"
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
)

// EventRepository handles event persistence
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error

	// Delete removes the event and cascades to its investors and startups.
	// Investments are preserved or removed per the cascade policy.
	Delete(ctx context.Context, id string, policy domain.CascadePolicy) error
}

// InvestorRepository handles investor persistence. RemainingBudget writes go
// through LedgerRepository.ApplyAllocation, never through Update.
type InvestorRepository interface {
	Create(ctx context.Context, investor *domain.Investor) error
	GetByID(ctx context.Context, id string) (*domain.Investor, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Investor, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Investor, error)
	Delete(ctx context.Context, id string) error
}

// StartupRepository handles startup persistence
type StartupRepository interface {
	Create(ctx context.Context, startup *domain.Startup) error
	GetByID(ctx context.Context, id string) (*domain.Startup, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Startup, error)
	Update(ctx context.Context, startup *domain.Startup) error
	Delete(ctx context.Context, id string) error
}

// InvestmentRepository handles investment reads. All results include the
// history trail ordered oldest first.
type InvestmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Investment, error)

	// GetByPair returns the investment for an (investor, startup) pair, or
	// (nil, nil) when none exists.
	GetByPair(ctx context.Context, investorID, startupID string) (*domain.Investment, error)

	ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Investment, error)
}

// AllocationParams is the atomic unit an allocation commits: the investor
// debit (guarded by the version read), the investment upsert, and the history
// append. Either all three land or none do.
type AllocationParams struct {
	// Investor carries the new RemainingBudget; Version is the value read
	// before computing the delta.
	Investor *domain.Investor

	// Investment carries the new Amount. When IsNew it is inserted with an
	// empty history; otherwise PriorAmount is appended to the trail first.
	Investment  *domain.Investment
	IsNew       bool
	PriorAmount float64
	Timestamp   time.Time
}

// LedgerRepository commits allocations. Implementations return
// domain.ErrVersionConflict when the investor row moved underneath the read,
// so the ledger can re-read and recompute.
type LedgerRepository interface {
	ApplyAllocation(ctx context.Context, params AllocationParams) error
}
