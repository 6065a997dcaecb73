package worker

import (
	"context"
	"testing"
	"time"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/repository"
)

func seedAuditFixture(t *testing.T, investorRemaining float64) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	event := &domain.Event{
		ID:                     "event-001",
		Name:                   "Demo Day",
		Date:                   time.Now(),
		TotalBudgetPerInvestor: 1000,
	}
	if err := store.Events().Create(ctx, event); err != nil {
		t.Fatalf("seed event: %v", err)
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

	// One investment of 300; the caller decides what remaining budget to
	// record alongside it, balanced or not.
	if err := store.Ledger().ApplyAllocation(ctx, repository.AllocationParams{
		Investor: &domain.Investor{
			ID: "inv-1", EventID: event.ID, Name: "Alice",
			RemainingBudget: investorRemaining,
		},
		Investment: &domain.Investment{
			ID: "iv-1", EventID: event.ID, InvestorID: "inv-1", StartupID: "st-1", Amount: 300,
		},
		IsNew:     true,
		Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("seed investment: %v", err)
	}

	return store
}

func newAuditWorker(store *repository.MemoryStore) *ReconcileWorker {
	return NewReconcileWorker(store.Events(), store.Investors(), store.Investments(), nil)
}

func TestReconcileWorker_Audit_Clean(t *testing.T) {
	store := seedAuditFixture(t, 700)
	w := newAuditWorker(store)

	drifted := w.Audit(context.Background())
	if drifted != 0 {
		t.Errorf("drifted = %d, want 0", drifted)
	}

	stats := w.Stats()
	if stats["total_scans"].(int64) != 1 {
		t.Errorf("total_scans = %v, want 1", stats["total_scans"])
	}
	if stats["total_audited"].(int64) != 1 {
		t.Errorf("total_audited = %v, want 1", stats["total_audited"])
	}
	if stats["last_drift_count"].(int) != 0 {
		t.Errorf("last_drift_count = %v, want 0", stats["last_drift_count"])
	}
}

func TestReconcileWorker_Audit_DetectsDrift(t *testing.T) {
	// Remaining 500 with 300 invested against a 1000 budget: 200 missing.
	store := seedAuditFixture(t, 500)
	w := newAuditWorker(store)

	drifted := w.Audit(context.Background())
	if drifted != 1 {
		t.Errorf("drifted = %d, want 1", drifted)
	}

	stats := w.Stats()
	if stats["total_drifted"].(int64) != 1 {
		t.Errorf("total_drifted = %v, want 1", stats["total_drifted"])
	}
}

func TestReconcileWorker_Audit_ToleratesFloatNoise(t *testing.T) {
	store := seedAuditFixture(t, 700+1e-9)
	w := newAuditWorker(store)

	if drifted := w.Audit(context.Background()); drifted != 0 {
		t.Errorf("drifted = %d, want 0 within tolerance", drifted)
	}
}

func TestReconcileWorker_StartStop(t *testing.T) {
	store := seedAuditFixture(t, 700)
	w := NewReconcileWorker(store.Events(), store.Investors(), store.Investments(), &ReconcileWorkerConfig{
		ScanInterval: 10 * time.Millisecond,
		Tolerance:    1e-6,
	})

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	time.Sleep(35 * time.Millisecond)
	w.Stop()

	stats := w.Stats()
	if stats["total_scans"].(int64) < 2 {
		t.Errorf("total_scans = %v, want at least 2", stats["total_scans"])
	}
	if stats["running"].(bool) {
		t.Error("worker still marked running after Stop")
	}

	// Stop on a stopped worker is a no-op.
	w.Stop()
}
