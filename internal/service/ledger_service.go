package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/cache"
	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/retry"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
	"go.uber.org/zap"
)

// historyDateLayout is the human-readable form attached to each history entry
const historyDateLayout = "1/2/2006, 3:04:05 PM"

// LedgerService defines the interface for budget allocation business logic
type LedgerService interface {
	// Allocate sets an investor's stake in a startup to the requested amount.
	// Repeat calls for the same pair overwrite; only the positive part of the
	// change consumes budget.
	Allocate(ctx context.Context, req *dto.InvestRequest) (*dto.AllocationResponse, error)

	// GetInvestmentHistory retrieves an investment's audit trail, newest first
	GetInvestmentHistory(ctx context.Context, investmentID string) (*dto.InvestmentHistoryResponse, error)

	// ListInvestorInvestments retrieves an investor's investments with startup names
	ListInvestorInvestments(ctx context.Context, investorID string) ([]*dto.InvestorInvestmentResponse, error)
}

// ledgerService implements LedgerService
type ledgerService struct {
	investorRepo   repository.InvestorRepository
	startupRepo    repository.StartupRepository
	investmentRepo repository.InvestmentRepository
	ledgerRepo     repository.LedgerRepository
	eventPublisher EventPublisher
	summaryCache   *cache.SummaryCache
	retrier        *retry.Retrier
}

// LedgerServiceConfig contains configuration for the ledger service
type LedgerServiceConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	investorRepo repository.InvestorRepository,
	startupRepo repository.StartupRepository,
	investmentRepo repository.InvestmentRepository,
	ledgerRepo repository.LedgerRepository,
	eventPublisher EventPublisher,
	summaryCache *cache.SummaryCache,
	cfg *LedgerServiceConfig,
) LedgerService {
	retryCfg := retry.DefaultConfig()
	if cfg != nil {
		if cfg.MaxRetries > 0 {
			retryCfg.MaxRetries = cfg.MaxRetries
		}
		if cfg.RetryInterval > 0 {
			retryCfg.InitialInterval = cfg.RetryInterval
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &ledgerService{
		investorRepo:   investorRepo,
		startupRepo:    startupRepo,
		investmentRepo: investmentRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		summaryCache:   summaryCache,
		retrier:        retry.New(retryCfg),
	}
}

// Allocate sets an investor's stake in a startup to the requested amount
func (s *ledgerService) Allocate(ctx context.Context, req *dto.InvestRequest) (*dto.AllocationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.allocate")
	defer span.End()

	if req == nil || req.InvestorID == "" {
		span.SetStatus(codes.Error, "invalid investor_id")
		return nil, domain.ErrInvalidInvestorID
	}
	if req.StartupID == "" {
		span.SetStatus(codes.Error, "invalid startup_id")
		return nil, domain.ErrInvalidStartupID
	}
	if req.Amount == nil || math.IsNaN(*req.Amount) || math.IsInf(*req.Amount, 0) || *req.Amount < 0 {
		span.SetStatus(codes.Error, "invalid amount")
		return nil, domain.ErrInvalidAmount
	}
	amount := *req.Amount

	span.SetAttributes(
		attribute.String("investor_id", req.InvestorID),
		attribute.String("startup_id", req.StartupID),
		attribute.Float64("amount", amount),
	)

	var resp *dto.AllocationResponse
	attempts := 0
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		attempts++
		r, err := s.allocateOnce(ctx, req.InvestorID, req.StartupID, amount)
		if err != nil {
			// Only a lost version race is worth another read-compute-commit
			// round; everything else is final.
			if err == domain.ErrVersionConflict {
				return err
			}
			return retry.Permanent(err)
		}
		resp = r
		return nil
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventPublisher.PublishInvestmentAllocated(ctx, resp.Investment, resp.RemainingBudget); err != nil {
		// The allocation is committed; a lost event must not fail the call.
		logger.Get().Warn("failed to publish allocation event",
			zap.String("investment_id", resp.Investment.ID),
			zap.Error(err))
	}

	if err := s.summaryCache.Invalidate(ctx, resp.Investment.EventID); err != nil {
		logger.Get().Warn("failed to invalidate summary cache",
			zap.String("event_id", resp.Investment.EventID),
			zap.Error(err))
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// allocateOnce runs one read-compute-commit round. It returns
// domain.ErrVersionConflict when the investor moved between the read and the
// commit, in which case the caller retries with fresh state.
func (s *ledgerService) allocateOnce(ctx context.Context, investorID, startupID string, amount float64) (*dto.AllocationResponse, error) {
	investor, err := s.investorRepo.GetByID(ctx, investorID)
	if err != nil {
		return nil, err
	}

	startup, err := s.startupRepo.GetByID(ctx, startupID)
	if err != nil {
		return nil, err
	}

	if startup.EventID != investor.EventID {
		return nil, domain.ErrEventMismatch
	}

	existing, err := s.investmentRepo.GetByPair(ctx, investorID, startupID)
	if err != nil {
		return nil, err
	}

	var prior float64
	if existing != nil {
		prior = existing.Amount
	}
	delta := amount - prior

	// Re-stating the current amount is a valid call but not a change: no
	// history entry, no writes.
	if existing != nil && delta == 0 {
		return &dto.AllocationResponse{
			Investment:      existing,
			RemainingBudget: investor.RemainingBudget,
		}, nil
	}

	if delta > 0 && delta > investor.RemainingBudget {
		return nil, domain.NewInsufficientBudgetError(investor.RemainingBudget)
	}

	now := time.Now().UTC()
	investor.RemainingBudget -= delta

	var investment *domain.Investment
	isNew := existing == nil
	if isNew {
		investment = &domain.Investment{
			ID:         uuid.Must(uuid.NewV7()).String(),
			InvestorID: investorID,
			StartupID:  startupID,
			EventID:    investor.EventID,
			Amount:     amount,
			History:    []domain.HistoryEntry{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	} else {
		investment = existing
		investment.History = append(investment.History, domain.HistoryEntry{
			Amount:    prior,
			Timestamp: now,
		})
		investment.Amount = amount
		investment.UpdatedAt = now
	}

	if err := s.ledgerRepo.ApplyAllocation(ctx, repository.AllocationParams{
		Investor:    investor,
		Investment:  investment,
		IsNew:       isNew,
		PriorAmount: prior,
		Timestamp:   now,
	}); err != nil {
		return nil, err
	}

	return &dto.AllocationResponse{
		Investment:      investment,
		RemainingBudget: investor.RemainingBudget,
	}, nil
}

// GetInvestmentHistory retrieves an investment's audit trail, newest first
func (s *ledgerService) GetInvestmentHistory(ctx context.Context, investmentID string) (*dto.InvestmentHistoryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.get_investment_history")
	defer span.End()

	if investmentID == "" {
		span.SetStatus(codes.Error, "invalid investment_id")
		return nil, domain.ErrInvestmentNotFound
	}
	span.SetAttributes(attribute.String("investment_id", investmentID))

	investment, err := s.investmentRepo.GetByID(ctx, investmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	investor, err := s.investorRepo.GetByID(ctx, investment.InvestorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	startup, err := s.startupRepo.GetByID(ctx, investment.StartupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	history := make([]dto.HistoryEntryResponse, 0, len(investment.History))
	for _, entry := range investment.History {
		history = append(history, dto.HistoryEntryResponse{
			Amount:        entry.Amount,
			Timestamp:     entry.Timestamp,
			FormattedDate: entry.Timestamp.Local().Format(historyDateLayout),
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})

	span.SetStatus(codes.Ok, "")
	return &dto.InvestmentHistoryResponse{
		ID:            investment.ID,
		InvestorName:  investor.Name,
		StartupName:   startup.Name,
		CurrentAmount: investment.Amount,
		History:       history,
	}, nil
}

// ListInvestorInvestments retrieves an investor's investments with startup names
func (s *ledgerService) ListInvestorInvestments(ctx context.Context, investorID string) ([]*dto.InvestorInvestmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ledger.list_investor_investments")
	defer span.End()

	if investorID == "" {
		span.SetStatus(codes.Error, "invalid investor_id")
		return nil, domain.ErrInvalidInvestorID
	}
	span.SetAttributes(attribute.String("investor_id", investorID))

	investor, err := s.investorRepo.GetByID(ctx, investorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	investments, err := s.investmentRepo.ListByInvestor(ctx, investor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	startups, err := s.startupRepo.ListByEvent(ctx, investor.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	names := make(map[string]string, len(startups))
	for _, startup := range startups {
		names[startup.ID] = startup.Name
	}

	resp := make([]*dto.InvestorInvestmentResponse, 0, len(investments))
	for _, inv := range investments {
		resp = append(resp, &dto.InvestorInvestmentResponse{
			ID:          inv.ID,
			StartupID:   inv.StartupID,
			StartupName: names[inv.StartupID],
			EventID:     inv.EventID,
			Amount:      inv.Amount,
			CreatedAt:   inv.CreatedAt,
			UpdatedAt:   inv.UpdatedAt,
		})
	}

	span.SetAttributes(attribute.Int("count", len(resp)))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// Ensure ledgerService implements LedgerService
var _ LedgerService = (*ledgerService)(nil)
