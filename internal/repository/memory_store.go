package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
)

// MemoryStore backs every repository interface with a shared in-memory state.
// It mirrors the Postgres semantics, including the version guard on investor
// debits, and is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	events      map[string]*domain.Event
	investors   map[string]*domain.Investor
	startups    map[string]*domain.Startup
	investments map[string]*domain.Investment
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:      make(map[string]*domain.Event),
		investors:   make(map[string]*domain.Investor),
		startups:    make(map[string]*domain.Startup),
		investments: make(map[string]*domain.Investment),
	}
}

// Events returns the EventRepository view of the store
func (s *MemoryStore) Events() EventRepository { return &memoryEventRepo{s} }

// Investors returns the InvestorRepository view of the store
func (s *MemoryStore) Investors() InvestorRepository { return &memoryInvestorRepo{s} }

// Startups returns the StartupRepository view of the store
func (s *MemoryStore) Startups() StartupRepository { return &memoryStartupRepo{s} }

// Investments returns the InvestmentRepository view of the store
func (s *MemoryStore) Investments() InvestmentRepository { return &memoryInvestmentRepo{s} }

// Ledger returns the LedgerRepository view of the store
func (s *MemoryStore) Ledger() LedgerRepository { return &memoryLedgerRepo{s} }

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func copyInvestor(inv *domain.Investor) *domain.Investor {
	c := *inv
	return &c
}

func copyStartup(st *domain.Startup) *domain.Startup {
	c := *st
	return &c
}

func copyInvestment(inv *domain.Investment) *domain.Investment {
	c := *inv
	c.History = make([]domain.HistoryEntry, len(inv.History))
	copy(c.History, inv.History)
	return &c
}

type memoryEventRepo struct{ s *MemoryStore }

func (r *memoryEventRepo) Create(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events[event.ID] = copyEvent(event)
	return nil
}

func (r *memoryEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	event, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (r *memoryEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	events := make([]*domain.Event, 0, len(r.s.events))
	for _, event := range r.s.events {
		events = append(events, copyEvent(event))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events, nil
}

func (r *memoryEventRepo) Update(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.events[event.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	stored.Name = event.Name
	stored.Date = event.Date
	stored.TotalBudgetPerInvestor = event.TotalBudgetPerInvestor
	stored.UpdatedAt = event.UpdatedAt
	return nil
}

func (r *memoryEventRepo) Delete(ctx context.Context, id string, policy domain.CascadePolicy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.s.events, id)
	for invID, inv := range r.s.investors {
		if inv.EventID == id {
			delete(r.s.investors, invID)
		}
	}
	for stID, st := range r.s.startups {
		if st.EventID == id {
			delete(r.s.startups, stID)
		}
	}
	if policy == domain.CascadeDeleteInvestments {
		for invID, inv := range r.s.investments {
			if inv.EventID == id {
				delete(r.s.investments, invID)
			}
		}
	}
	return nil
}

type memoryInvestorRepo struct{ s *MemoryStore }

func (r *memoryInvestorRepo) Create(ctx context.Context, investor *domain.Investor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.investors[investor.ID] = copyInvestor(investor)
	return nil
}

func (r *memoryInvestorRepo) GetByID(ctx context.Context, id string) (*domain.Investor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	investor, ok := r.s.investors[id]
	if !ok {
		return nil, domain.ErrInvestorNotFound
	}
	return copyInvestor(investor), nil
}

func (r *memoryInvestorRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Investor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	investors := make([]*domain.Investor, 0)
	for _, investor := range r.s.investors {
		if investor.EventID == eventID {
			investors = append(investors, copyInvestor(investor))
		}
	}
	sort.Slice(investors, func(i, j int) bool {
		return investors[i].CreatedAt.Before(investors[j].CreatedAt)
	})
	return investors, nil
}

func (r *memoryInvestorRepo) UpdateName(ctx context.Context, id, name string) (*domain.Investor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	investor, ok := r.s.investors[id]
	if !ok {
		return nil, domain.ErrInvestorNotFound
	}
	investor.Name = name
	investor.UpdatedAt = time.Now()
	return copyInvestor(investor), nil
}

func (r *memoryInvestorRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.investors[id]; !ok {
		return domain.ErrInvestorNotFound
	}
	delete(r.s.investors, id)
	return nil
}

type memoryStartupRepo struct{ s *MemoryStore }

func (r *memoryStartupRepo) Create(ctx context.Context, startup *domain.Startup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.startups[startup.ID] = copyStartup(startup)
	return nil
}

func (r *memoryStartupRepo) GetByID(ctx context.Context, id string) (*domain.Startup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	startup, ok := r.s.startups[id]
	if !ok {
		return nil, domain.ErrStartupNotFound
	}
	return copyStartup(startup), nil
}

func (r *memoryStartupRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Startup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	startups := make([]*domain.Startup, 0)
	for _, startup := range r.s.startups {
		if startup.EventID == eventID {
			startups = append(startups, copyStartup(startup))
		}
	}
	sort.Slice(startups, func(i, j int) bool {
		return startups[i].CreatedAt.Before(startups[j].CreatedAt)
	})
	return startups, nil
}

func (r *memoryStartupRepo) Update(ctx context.Context, startup *domain.Startup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.startups[startup.ID]
	if !ok {
		return domain.ErrStartupNotFound
	}
	stored.Name = startup.Name
	stored.LogoURL = startup.LogoURL
	stored.UpdatedAt = startup.UpdatedAt
	return nil
}

func (r *memoryStartupRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.startups[id]; !ok {
		return domain.ErrStartupNotFound
	}
	delete(r.s.startups, id)
	return nil
}

type memoryInvestmentRepo struct{ s *MemoryStore }

func (r *memoryInvestmentRepo) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	investment, ok := r.s.investments[id]
	if !ok {
		return nil, domain.ErrInvestmentNotFound
	}
	return copyInvestment(investment), nil
}

func (r *memoryInvestmentRepo) GetByPair(ctx context.Context, investorID, startupID string) (*domain.Investment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, investment := range r.s.investments {
		if investment.InvestorID == investorID && investment.StartupID == startupID {
			return copyInvestment(investment), nil
		}
	}
	return nil, nil
}

func (r *memoryInvestmentRepo) ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listInvestments(func(inv *domain.Investment) bool {
		return inv.InvestorID == investorID
	}), nil
}

func (r *memoryInvestmentRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Investment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.listInvestments(func(inv *domain.Investment) bool {
		return inv.EventID == eventID
	}), nil
}

func (s *MemoryStore) listInvestments(match func(*domain.Investment) bool) []*domain.Investment {
	investments := make([]*domain.Investment, 0)
	for _, investment := range s.investments {
		if match(investment) {
			investments = append(investments, copyInvestment(investment))
		}
	}
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].CreatedAt.Before(investments[j].CreatedAt)
	})
	return investments
}

type memoryLedgerRepo struct{ s *MemoryStore }

// ApplyAllocation commits the debit, upsert and history append under a single
// lock. The version guard matches the Postgres implementation: a stale read
// loses and retries.
func (r *memoryLedgerRepo) ApplyAllocation(ctx context.Context, params AllocationParams) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	investor, ok := r.s.investors[params.Investor.ID]
	if !ok {
		return domain.ErrInvestorNotFound
	}
	if investor.Version != params.Investor.Version {
		return domain.ErrVersionConflict
	}

	investor.RemainingBudget = params.Investor.RemainingBudget
	investor.Version++
	investor.UpdatedAt = params.Timestamp

	if params.IsNew {
		investment := copyInvestment(params.Investment)
		investment.History = []domain.HistoryEntry{}
		investment.CreatedAt = params.Timestamp
		investment.UpdatedAt = params.Timestamp
		r.s.investments[investment.ID] = investment
		return nil
	}

	investment, ok := r.s.investments[params.Investment.ID]
	if !ok {
		return domain.ErrInvestmentNotFound
	}
	investment.History = append(investment.History, domain.HistoryEntry{
		Amount:    params.PriorAmount,
		Timestamp: params.Timestamp,
	})
	investment.Amount = params.Investment.Amount
	investment.UpdatedAt = params.Timestamp
	return nil
}

// Ensure the views satisfy their repository interfaces
var (
	_ EventRepository      = (*memoryEventRepo)(nil)
	_ InvestorRepository   = (*memoryInvestorRepo)(nil)
	_ StartupRepository    = (*memoryStartupRepo)(nil)
	_ InvestmentRepository = (*memoryInvestmentRepo)(nil)
	_ LedgerRepository     = (*memoryLedgerRepo)(nil)
)
