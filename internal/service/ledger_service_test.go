package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/repository"
)

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	ApplyAllocationFunc func(ctx context.Context, params repository.AllocationParams) error
}

func (m *MockLedgerRepository) ApplyAllocation(ctx context.Context, params repository.AllocationParams) error {
	if m.ApplyAllocationFunc != nil {
		return m.ApplyAllocationFunc(ctx, params)
	}
	return nil
}

type ledgerFixture struct {
	store    *repository.MemoryStore
	service  LedgerService
	event    *domain.Event
	investor *domain.Investor
	startupA *domain.Startup
	startupB *domain.Startup
}

func newLedgerFixture(t *testing.T, budget float64) *ledgerFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	event := &domain.Event{
		ID:                     "event-001",
		Name:                   "Demo Day",
		Date:                   time.Now(),
		TotalBudgetPerInvestor: budget,
	}
	if err := store.Events().Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	investor := &domain.Investor{
		ID:              "investor-001",
		EventID:         event.ID,
		Name:            "Alice",
		RemainingBudget: budget,
	}
	if err := store.Investors().Create(ctx, investor); err != nil {
		t.Fatalf("seed investor: %v", err)
	}

	startupA := &domain.Startup{ID: "startup-a", EventID: event.ID, Name: "Acme"}
	startupB := &domain.Startup{ID: "startup-b", EventID: event.ID, Name: "Bolt"}
	for _, s := range []*domain.Startup{startupA, startupB} {
		if err := store.Startups().Create(ctx, s); err != nil {
			t.Fatalf("seed startup: %v", err)
		}
	}

	svc := NewLedgerService(
		store.Investors(),
		store.Startups(),
		store.Investments(),
		store.Ledger(),
		nil,
		nil,
		&LedgerServiceConfig{MaxRetries: 10, RetryInterval: time.Millisecond},
	)

	return &ledgerFixture{
		store:    store,
		service:  svc,
		event:    event,
		investor: investor,
		startupA: startupA,
		startupB: startupB,
	}
}

func ptr(f float64) *float64 { return &f }

func (f *ledgerFixture) allocate(t *testing.T, startupID string, amount float64) *dto.AllocationResponse {
	t.Helper()
	resp, err := f.service.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  startupID,
		Amount:     ptr(amount),
	})
	if err != nil {
		t.Fatalf("Allocate(%s, %v) unexpected error: %v", startupID, amount, err)
	}
	return resp
}

// checkBooks asserts remainingBudget + sum(amounts) == budget
func (f *ledgerFixture) checkBooks(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	investor, err := f.store.Investors().GetByID(ctx, f.investor.ID)
	if err != nil {
		t.Fatalf("reload investor: %v", err)
	}
	investments, err := f.store.Investments().ListByInvestor(ctx, f.investor.ID)
	if err != nil {
		t.Fatalf("list investments: %v", err)
	}
	var total float64
	for _, inv := range investments {
		if inv.Amount < 0 {
			t.Errorf("investment %s has negative amount %v", inv.ID, inv.Amount)
		}
		total += inv.Amount
	}
	if investor.RemainingBudget < 0 {
		t.Errorf("remaining budget went negative: %v", investor.RemainingBudget)
	}
	if got := investor.RemainingBudget + total; got != f.event.TotalBudgetPerInvestor {
		t.Errorf("books do not balance: remaining %v + allocated %v = %v, want %v",
			investor.RemainingBudget, total, got, f.event.TotalBudgetPerInvestor)
	}
}

func TestLedgerService_Allocate_Validation(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	tests := []struct {
		name    string
		req     *dto.InvestRequest
		wantErr error
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: domain.ErrInvalidInvestorID,
		},
		{
			name:    "missing investor id",
			req:     &dto.InvestRequest{StartupID: "startup-a", Amount: ptr(100)},
			wantErr: domain.ErrInvalidInvestorID,
		},
		{
			name:    "missing startup id",
			req:     &dto.InvestRequest{InvestorID: "investor-001", Amount: ptr(100)},
			wantErr: domain.ErrInvalidStartupID,
		},
		{
			name:    "missing amount",
			req:     &dto.InvestRequest{InvestorID: "investor-001", StartupID: "startup-a"},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     &dto.InvestRequest{InvestorID: "investor-001", StartupID: "startup-a", Amount: ptr(-50)},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown investor",
			req:     &dto.InvestRequest{InvestorID: "nobody", StartupID: "startup-a", Amount: ptr(100)},
			wantErr: domain.ErrInvestorNotFound,
		},
		{
			name:    "unknown startup",
			req:     &dto.InvestRequest{InvestorID: "investor-001", StartupID: "nothing", Amount: ptr(100)},
			wantErr: domain.ErrStartupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Allocate(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerService_Allocate_EventMismatch(t *testing.T) {
	f := newLedgerFixture(t, 1000)
	ctx := context.Background()

	other := &domain.Event{ID: "event-002", Name: "Other", TotalBudgetPerInvestor: 500}
	if err := f.store.Events().Create(ctx, other); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	foreign := &domain.Startup{ID: "startup-x", EventID: other.ID, Name: "Foreign"}
	if err := f.store.Startups().Create(ctx, foreign); err != nil {
		t.Fatalf("seed startup: %v", err)
	}

	_, err := f.service.Allocate(ctx, &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  foreign.ID,
		Amount:     ptr(100),
	})
	if !errors.Is(err, domain.ErrEventMismatch) {
		t.Errorf("Allocate() error = %v, want %v", err, domain.ErrEventMismatch)
	}
}

func TestLedgerService_Allocate_NewInvestment(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	resp := f.allocate(t, f.startupA.ID, 300)

	if resp.Investment.Amount != 300 {
		t.Errorf("amount = %v, want 300", resp.Investment.Amount)
	}
	if len(resp.Investment.History) != 0 {
		t.Errorf("new investment has history entries: %v", resp.Investment.History)
	}
	if resp.RemainingBudget != 700 {
		t.Errorf("remaining = %v, want 700", resp.RemainingBudget)
	}
	f.checkBooks(t)
}

func TestLedgerService_Allocate_OverwriteSemantics(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	// Raise: only the delta consumes budget.
	f.allocate(t, f.startupA.ID, 300)
	resp := f.allocate(t, f.startupA.ID, 500)
	if resp.RemainingBudget != 500 {
		t.Errorf("after raise remaining = %v, want 500", resp.RemainingBudget)
	}
	if len(resp.Investment.History) != 1 || resp.Investment.History[0].Amount != 300 {
		t.Errorf("history after raise = %+v, want single entry of 300", resp.Investment.History)
	}

	// Cut: the delta flows back.
	resp = f.allocate(t, f.startupA.ID, 100)
	if resp.RemainingBudget != 900 {
		t.Errorf("after cut remaining = %v, want 900", resp.RemainingBudget)
	}
	if len(resp.Investment.History) != 2 || resp.Investment.History[1].Amount != 500 {
		t.Errorf("history after cut = %+v, want prior amount 500 appended", resp.Investment.History)
	}

	// Re-stating the same amount writes nothing.
	resp = f.allocate(t, f.startupA.ID, 100)
	if resp.RemainingBudget != 900 {
		t.Errorf("after no-op remaining = %v, want 900", resp.RemainingBudget)
	}
	if len(resp.Investment.History) != 2 {
		t.Errorf("no-op allocation appended history: %+v", resp.Investment.History)
	}

	// Clearing to zero keeps the investment row.
	resp = f.allocate(t, f.startupA.ID, 0)
	if resp.RemainingBudget != 1000 {
		t.Errorf("after clear remaining = %v, want 1000", resp.RemainingBudget)
	}
	cleared, err := f.store.Investments().GetByPair(context.Background(), f.investor.ID, f.startupA.ID)
	if err != nil || cleared == nil {
		t.Fatalf("cleared investment should persist, got (%v, %v)", cleared, err)
	}
	if cleared.Amount != 0 {
		t.Errorf("cleared amount = %v, want 0", cleared.Amount)
	}

	f.checkBooks(t)
}

func TestLedgerService_Allocate_InsufficientBudget(t *testing.T) {
	f := newLedgerFixture(t, 1000)
	f.allocate(t, f.startupA.ID, 800)

	// A raise needing more than the remaining 200 fails and changes nothing.
	_, err := f.service.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  f.startupA.ID,
		Amount:     ptr(1100),
	})
	if !errors.Is(err, domain.ErrInsufficientBudget) {
		t.Fatalf("Allocate() error = %v, want insufficient budget", err)
	}
	if !strings.Contains(err.Error(), "Available: 200") {
		t.Errorf("error %q should carry the available headroom", err.Error())
	}

	var ibe *domain.InsufficientBudgetError
	if !errors.As(err, &ibe) || ibe.Available != 200 {
		t.Errorf("error should be InsufficientBudgetError with Available 200, got %v", err)
	}

	// A fresh investment larger than the headroom fails too.
	_, err = f.service.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  f.startupB.ID,
		Amount:     ptr(300),
	})
	if !errors.Is(err, domain.ErrInsufficientBudget) {
		t.Errorf("Allocate() error = %v, want insufficient budget", err)
	}

	// But a cut below the current amount is always allowed.
	f.allocate(t, f.startupA.ID, 100)
	f.checkBooks(t)
}

func TestLedgerService_Allocate_ExactBudget(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	resp := f.allocate(t, f.startupA.ID, 1000)
	if resp.RemainingBudget != 0 {
		t.Errorf("remaining = %v, want 0", resp.RemainingBudget)
	}
	f.checkBooks(t)
}

func TestLedgerService_Allocate_RetriesOnVersionConflict(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	conflicts := 3
	calls := 0
	real := f.store.Ledger()
	mockLedger := &MockLedgerRepository{
		ApplyAllocationFunc: func(ctx context.Context, params repository.AllocationParams) error {
			calls++
			if calls <= conflicts {
				return domain.ErrVersionConflict
			}
			return real.ApplyAllocation(ctx, params)
		},
	}

	svc := NewLedgerService(
		f.store.Investors(),
		f.store.Startups(),
		f.store.Investments(),
		mockLedger,
		nil,
		nil,
		&LedgerServiceConfig{MaxRetries: 5, RetryInterval: time.Millisecond},
	)

	resp, err := svc.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  f.startupA.ID,
		Amount:     ptr(250),
	})
	if err != nil {
		t.Fatalf("Allocate() after %d conflicts: %v", conflicts, err)
	}
	if calls != conflicts+1 {
		t.Errorf("ledger called %d times, want %d", calls, conflicts+1)
	}
	if resp.RemainingBudget != 750 {
		t.Errorf("remaining = %v, want 750", resp.RemainingBudget)
	}
}

func TestLedgerService_Allocate_ConflictExhaustion(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	mockLedger := &MockLedgerRepository{
		ApplyAllocationFunc: func(ctx context.Context, params repository.AllocationParams) error {
			return domain.ErrVersionConflict
		},
	}

	svc := NewLedgerService(
		f.store.Investors(),
		f.store.Startups(),
		f.store.Investments(),
		mockLedger,
		nil,
		nil,
		&LedgerServiceConfig{MaxRetries: 2, RetryInterval: time.Millisecond},
	)

	_, err := svc.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  f.startupA.ID,
		Amount:     ptr(100),
	})
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("exhausted retries should surface the conflict, got %v", err)
	}
	if !domain.IsConflictError(err) {
		t.Errorf("exhausted conflict should classify as conflict, got %v", err)
	}
}

func TestLedgerService_Allocate_Concurrent(t *testing.T) {
	f := newLedgerFixture(t, 1000)
	ctx := context.Background()

	// 20 startups, 20 goroutines, 50 each: exactly the budget.
	const workers = 20
	const stake = 50.0
	startups := make([]*domain.Startup, workers)
	for i := range startups {
		s := &domain.Startup{
			ID:      "startup-" + string(rune('a'+i)),
			EventID: f.event.ID,
			Name:    "Startup " + string(rune('A'+i)),
		}
		if err := f.store.Startups().Create(ctx, s); err != nil {
			t.Fatalf("seed startup: %v", err)
		}
		startups[i] = s
	}

	svc := NewLedgerService(
		f.store.Investors(),
		f.store.Startups(),
		f.store.Investments(),
		f.store.Ledger(),
		nil,
		nil,
		&LedgerServiceConfig{MaxRetries: 100, RetryInterval: time.Millisecond},
	)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Allocate(ctx, &dto.InvestRequest{
				InvestorID: f.investor.ID,
				StartupID:  startups[i].ID,
				Amount:     ptr(stake),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}

	investor, err := f.store.Investors().GetByID(ctx, f.investor.ID)
	if err != nil {
		t.Fatalf("reload investor: %v", err)
	}
	if investor.RemainingBudget != 0 {
		t.Errorf("remaining = %v, want 0", investor.RemainingBudget)
	}
	f.checkBooks(t)
}

func TestLedgerService_Allocate_BudgetScenario(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	// 400 to Acme.
	resp := f.allocate(t, f.startupA.ID, 400)
	if resp.RemainingBudget != 600 {
		t.Errorf("remaining = %v, want 600", resp.RemainingBudget)
	}

	// 700 to Bolt exceeds the 600 headroom and changes nothing.
	_, err := f.service.Allocate(context.Background(), &dto.InvestRequest{
		InvestorID: f.investor.ID,
		StartupID:  f.startupB.ID,
		Amount:     ptr(700),
	})
	if !errors.Is(err, domain.ErrInsufficientBudget) {
		t.Fatalf("error = %v, want %v", err, domain.ErrInsufficientBudget)
	}
	if !strings.Contains(err.Error(), "Available: 600") {
		t.Errorf("error message %q should carry the available headroom", err.Error())
	}
	f.checkBooks(t)

	// 600 to Bolt drains the budget.
	resp = f.allocate(t, f.startupB.ID, 600)
	if resp.RemainingBudget != 0 {
		t.Errorf("remaining = %v, want 0", resp.RemainingBudget)
	}

	// Cutting Acme to 100 returns 300 to the budget.
	resp = f.allocate(t, f.startupA.ID, 100)
	if resp.RemainingBudget != 300 {
		t.Errorf("remaining = %v, want 300", resp.RemainingBudget)
	}
	f.checkBooks(t)
}

func TestLedgerService_Allocate_ConcurrentJointOverBudget(t *testing.T) {
	f := newLedgerFixture(t, 1000)
	ctx := context.Background()

	svc := NewLedgerService(
		f.store.Investors(),
		f.store.Startups(),
		f.store.Investments(),
		f.store.Ledger(),
		nil,
		nil,
		&LedgerServiceConfig{MaxRetries: 100, RetryInterval: time.Millisecond},
	)

	// Each allocation fits alone; together they exceed the budget. Exactly
	// one must win.
	targets := []struct {
		startupID string
		amount    float64
	}{
		{f.startupA.ID, 700},
		{f.startupB.ID, 700},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, target := range targets {
		wg.Add(1)
		go func(i int, startupID string, amount float64) {
			defer wg.Done()
			_, errs[i] = svc.Allocate(ctx, &dto.InvestRequest{
				InvestorID: f.investor.ID,
				StartupID:  startupID,
				Amount:     ptr(amount),
			})
		}(i, target.startupID, target.amount)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientBudget):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}

	investor, err := f.store.Investors().GetByID(ctx, f.investor.ID)
	if err != nil {
		t.Fatalf("reload investor: %v", err)
	}
	if investor.RemainingBudget != 300 {
		t.Errorf("remaining = %v, want 300", investor.RemainingBudget)
	}
	f.checkBooks(t)
}

func TestLedgerService_GetInvestmentHistory(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	resp := f.allocate(t, f.startupA.ID, 100)
	f.allocate(t, f.startupA.ID, 400)
	f.allocate(t, f.startupA.ID, 200)

	hist, err := f.service.GetInvestmentHistory(context.Background(), resp.Investment.ID)
	if err != nil {
		t.Fatalf("GetInvestmentHistory: %v", err)
	}

	if hist.InvestorName != "Alice" || hist.StartupName != "Acme" {
		t.Errorf("names = (%q, %q), want (Alice, Acme)", hist.InvestorName, hist.StartupName)
	}
	if hist.CurrentAmount != 200 {
		t.Errorf("current amount = %v, want 200", hist.CurrentAmount)
	}
	if len(hist.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist.History))
	}
	// Newest first: the 400 entry was recorded after the 100 entry.
	if hist.History[0].Amount != 400 || hist.History[1].Amount != 100 {
		t.Errorf("history order = [%v, %v], want [400, 100]",
			hist.History[0].Amount, hist.History[1].Amount)
	}
	for _, entry := range hist.History {
		if entry.FormattedDate == "" {
			t.Errorf("history entry missing formatted date: %+v", entry)
		}
		if !entry.Timestamp.Before(time.Now().Add(time.Second)) {
			t.Errorf("implausible timestamp: %v", entry.Timestamp)
		}
	}
}

func TestLedgerService_GetInvestmentHistory_NotFound(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	_, err := f.service.GetInvestmentHistory(context.Background(), "missing")
	if !errors.Is(err, domain.ErrInvestmentNotFound) {
		t.Errorf("error = %v, want %v", err, domain.ErrInvestmentNotFound)
	}
}

func TestLedgerService_ListInvestorInvestments(t *testing.T) {
	f := newLedgerFixture(t, 1000)

	f.allocate(t, f.startupA.ID, 100)
	f.allocate(t, f.startupB.ID, 200)

	list, err := f.service.ListInvestorInvestments(context.Background(), f.investor.ID)
	if err != nil {
		t.Fatalf("ListInvestorInvestments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].StartupName != "Acme" || list[1].StartupName != "Bolt" {
		t.Errorf("startup names = (%q, %q), want (Acme, Bolt)", list[0].StartupName, list[1].StartupName)
	}
}
