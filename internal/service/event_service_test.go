package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/repository"
)

func newEventService(store *repository.MemoryStore, policy domain.CascadePolicy) EventService {
	var cfg *EventServiceConfig
	if policy != "" {
		cfg = &EventServiceConfig{CascadePolicy: policy}
	}
	return NewEventService(store.Events(), store.Investors(), store.Startups(), cfg)
}

func TestEventService_CreateEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, "")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, &dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "2026-09-15",
		TotalBudgetPerInvestor: ptr(1000),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if event.ID == "" {
		t.Error("event id not assigned")
	}
	if event.Date.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("date = %v, want 2026-09-15", event.Date)
	}
	if event.TotalBudgetPerInvestor != 1000 {
		t.Errorf("budget = %v, want 1000", event.TotalBudgetPerInvestor)
	}

	// RFC3339 dates are accepted too.
	event, err = svc.CreateEvent(ctx, &dto.CreateEventRequest{
		Name:                   "Pitch Night",
		Date:                   "2026-10-01T18:00:00Z",
		TotalBudgetPerInvestor: ptr(500),
	})
	if err != nil {
		t.Fatalf("CreateEvent rfc3339: %v", err)
	}
	if event.Date.Hour() != 18 {
		t.Errorf("date = %v, want 18:00 UTC", event.Date)
	}
}

func TestEventService_CreateEvent_Errors(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, "")
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *dto.CreateEventRequest
		wantErr error
	}{
		{"nil request", nil, domain.ErrMissingName},
		{"missing name", &dto.CreateEventRequest{Date: "2026-09-15", TotalBudgetPerInvestor: ptr(100)}, domain.ErrMissingName},
		{"bad date", &dto.CreateEventRequest{Name: "X", Date: "next tuesday", TotalBudgetPerInvestor: ptr(100)}, domain.ErrInvalidDate},
		{"missing budget", &dto.CreateEventRequest{Name: "X", Date: "2026-09-15"}, domain.ErrInvalidBudget},
		{"negative budget", &dto.CreateEventRequest{Name: "X", Date: "2026-09-15", TotalBudgetPerInvestor: ptr(-1)}, domain.ErrInvalidBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, "")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, &dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "2026-09-15",
		TotalBudgetPerInvestor: ptr(1000),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := store.Investors().Create(ctx, &domain.Investor{
		ID: "inv-1", EventID: event.ID, Name: "Alice", RemainingBudget: 1000,
	}); err != nil {
		t.Fatalf("seed investor: %v", err)
	}
	if err := store.Startups().Create(ctx, &domain.Startup{
		ID: "st-1", EventID: event.ID, Name: "Acme",
	}); err != nil {
		t.Fatalf("seed startup: %v", err)
	}

	detail, err := svc.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if detail.Event.Name != "Demo Day" {
		t.Errorf("event name = %q", detail.Event.Name)
	}
	if len(detail.Investors) != 1 || detail.Investors[0].Name != "Alice" {
		t.Errorf("investors = %+v", detail.Investors)
	}
	if len(detail.Startups) != 1 || detail.Startups[0].Name != "Acme" {
		t.Errorf("startups = %+v", detail.Startups)
	}

	if _, err := svc.GetEvent(ctx, "missing"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("missing event error = %v, want %v", err, domain.ErrEventNotFound)
	}
	if _, err := svc.GetEvent(ctx, ""); !errors.Is(err, domain.ErrInvalidEventID) {
		t.Errorf("empty id error = %v, want %v", err, domain.ErrInvalidEventID)
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, "")
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, &dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "2026-09-15",
		TotalBudgetPerInvestor: ptr(1000),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	// Partial update: only the budget changes.
	updated, err := svc.UpdateEvent(ctx, event.ID, &dto.UpdateEventRequest{
		TotalBudgetPerInvestor: ptr(1500),
	})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Name != "Demo Day" {
		t.Errorf("name changed unexpectedly: %q", updated.Name)
	}
	if updated.TotalBudgetPerInvestor != 1500 {
		t.Errorf("budget = %v, want 1500", updated.TotalBudgetPerInvestor)
	}

	if _, err := svc.UpdateEvent(ctx, event.ID, &dto.UpdateEventRequest{
		TotalBudgetPerInvestor: ptr(-5),
	}); !errors.Is(err, domain.ErrInvalidBudget) {
		t.Errorf("negative budget error = %v, want %v", err, domain.ErrInvalidBudget)
	}
	if _, err := svc.UpdateEvent(ctx, "missing", &dto.UpdateEventRequest{Name: "X"}); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("missing event error = %v, want %v", err, domain.ErrEventNotFound)
	}
}

func seedDeletableEvent(t *testing.T, store *repository.MemoryStore) string {
	t.Helper()
	ctx := context.Background()

	event := &domain.Event{
		ID:                     "event-del",
		Name:                   "Demo Day",
		Date:                   time.Now(),
		TotalBudgetPerInvestor: 1000,
	}
	if err := store.Events().Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	investor := &domain.Investor{ID: "inv-1", EventID: event.ID, Name: "Alice", RemainingBudget: 1000}
	if err := store.Investors().Create(ctx, investor); err != nil {
		t.Fatalf("seed investor: %v", err)
	}
	if err := store.Startups().Create(ctx, &domain.Startup{ID: "st-1", EventID: event.ID, Name: "Acme"}); err != nil {
		t.Fatalf("seed startup: %v", err)
	}
	if err := store.Ledger().ApplyAllocation(ctx, repository.AllocationParams{
		Investor: &domain.Investor{ID: "inv-1", EventID: event.ID, Name: "Alice", RemainingBudget: 700, Version: investor.Version},
		Investment: &domain.Investment{
			ID: "iv-1", EventID: event.ID, InvestorID: "inv-1", StartupID: "st-1", Amount: 300,
		},
		IsNew:     true,
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("seed investment: %v", err)
	}
	return event.ID
}

func TestEventService_DeleteEvent_PreservesInvestments(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, domain.CascadePreserveInvestments)
	ctx := context.Background()

	eventID := seedDeletableEvent(t, store)
	if err := svc.DeleteEvent(ctx, eventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if _, err := store.Events().GetByID(ctx, eventID); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("event still present: %v", err)
	}
	if _, err := store.Investors().GetByID(ctx, "inv-1"); !errors.Is(err, domain.ErrInvestorNotFound) {
		t.Errorf("investor still present: %v", err)
	}
	if _, err := store.Startups().GetByID(ctx, "st-1"); !errors.Is(err, domain.ErrStartupNotFound) {
		t.Errorf("startup still present: %v", err)
	}

	// Investment rows survive for audit.
	investment, err := store.Investments().GetByID(ctx, "iv-1")
	if err != nil {
		t.Fatalf("investment should survive: %v", err)
	}
	if investment.Amount != 300 {
		t.Errorf("investment amount = %v, want 300", investment.Amount)
	}
}

func TestEventService_DeleteEvent_CascadesInvestments(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newEventService(store, domain.CascadeDeleteInvestments)
	ctx := context.Background()

	eventID := seedDeletableEvent(t, store)
	if err := svc.DeleteEvent(ctx, eventID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if _, err := store.Investments().GetByID(ctx, "iv-1"); !errors.Is(err, domain.ErrInvestmentNotFound) {
		t.Errorf("investment should be gone: %v", err)
	}
}
