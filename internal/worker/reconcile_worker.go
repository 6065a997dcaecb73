package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"go.uber.org/zap"
)

// ReconcileWorkerConfig contains configuration for the reconcile worker
type ReconcileWorkerConfig struct {
	// ScanInterval is the interval between audits
	ScanInterval time.Duration
	// Tolerance is the largest float accumulation error treated as clean
	Tolerance float64
}

// DefaultReconcileWorkerConfig returns default configuration
func DefaultReconcileWorkerConfig() *ReconcileWorkerConfig {
	return &ReconcileWorkerConfig{
		ScanInterval: time.Minute,
		Tolerance:    1e-6,
	}
}

// ReconcileWorker periodically audits every investor's budget against the sum
// of their investments. For each investor the invariant is
// remainingBudget + sum(amounts) == event.totalBudgetPerInvestor; any drift
// means a write path bypassed the ledger, and gets logged loudly.
type ReconcileWorker struct {
	eventRepo      repository.EventRepository
	investorRepo   repository.InvestorRepository
	investmentRepo repository.InvestmentRepository
	config         *ReconcileWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalScans     int64
	totalAudited   int64
	totalDrifted   int64
	lastScanTime   time.Time
	lastDriftCount int
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(
	eventRepo repository.EventRepository,
	investorRepo repository.InvestorRepository,
	investmentRepo repository.InvestmentRepository,
	config *ReconcileWorkerConfig,
) *ReconcileWorker {
	if config == nil {
		config = DefaultReconcileWorkerConfig()
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = time.Minute
	}
	if config.Tolerance <= 0 {
		config.Tolerance = 1e-6
	}

	return &ReconcileWorker{
		eventRepo:      eventRepo,
		investorRepo:   investorRepo,
		investmentRepo: investmentRepo,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the reconcile worker
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reconcile worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting reconcile worker",
		zap.Duration("scan_interval", w.config.ScanInterval))

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the reconcile worker
func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping reconcile worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Reconcile worker stopped")
}

func (w *ReconcileWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.Audit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Audit(ctx)
		}
	}
}

// Audit runs one full pass over every event and returns the number of
// investors whose books do not balance
func (w *ReconcileWorker) Audit(ctx context.Context) int {
	w.mu.Lock()
	w.totalScans++
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	events, err := w.eventRepo.List(ctx)
	if err != nil {
		w.log.Error("reconcile: failed to list events", zap.Error(err))
		return 0
	}

	drifted := 0
	audited := 0
	for _, event := range events {
		investors, err := w.investorRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			w.log.Error("reconcile: failed to list investors",
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}

		investments, err := w.investmentRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			w.log.Error("reconcile: failed to list investments",
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}

		allocated := make(map[string]float64, len(investors))
		for _, inv := range investments {
			allocated[inv.InvestorID] += inv.Amount
		}

		for _, investor := range investors {
			audited++
			expected := event.TotalBudgetPerInvestor - allocated[investor.ID]
			drift := investor.RemainingBudget - expected
			if math.Abs(drift) > w.config.Tolerance {
				drifted++
				w.log.Error("reconcile: investor books do not balance",
					zap.String("event_id", event.ID),
					zap.String("investor_id", investor.ID),
					zap.Float64("remaining_budget", investor.RemainingBudget),
					zap.Float64("expected", expected),
					zap.Float64("drift", drift))
			}
		}
	}

	w.mu.Lock()
	w.totalAudited += int64(audited)
	w.totalDrifted += int64(drifted)
	w.lastDriftCount = drifted
	w.mu.Unlock()

	if drifted > 0 {
		w.log.Warn("reconcile: audit finished with drift",
			zap.Int("audited", audited),
			zap.Int("drifted", drifted))
	} else {
		w.log.Debug("reconcile: audit clean",
			zap.Int("audited", audited))
	}

	return drifted
}

// Stats returns a snapshot of the worker's counters
func (w *ReconcileWorker) Stats() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return map[string]interface{}{
		"running":          w.running,
		"total_scans":      w.totalScans,
		"total_audited":    w.totalAudited,
		"total_drifted":    w.totalDrifted,
		"last_scan_time":   w.lastScanTime,
		"last_drift_count": w.lastDriftCount,
	}
}
