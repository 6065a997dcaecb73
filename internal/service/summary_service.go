package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/cache"
	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
	"go.uber.org/zap"
)

// SummaryService defines the interface for event aggregation
type SummaryService interface {
	// GetEventSummary computes the event total and per-startup/per-investor
	// aggregates over all of the event's investments
	GetEventSummary(ctx context.Context, eventID string) (*dto.EventSummaryResponse, error)
}

// summaryService implements SummaryService
type summaryService struct {
	eventRepo      repository.EventRepository
	investorRepo   repository.InvestorRepository
	startupRepo    repository.StartupRepository
	investmentRepo repository.InvestmentRepository
	summaryCache   *cache.SummaryCache
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	eventRepo repository.EventRepository,
	investorRepo repository.InvestorRepository,
	startupRepo repository.StartupRepository,
	investmentRepo repository.InvestmentRepository,
	summaryCache *cache.SummaryCache,
) SummaryService {
	return &summaryService{
		eventRepo:      eventRepo,
		investorRepo:   investorRepo,
		startupRepo:    startupRepo,
		investmentRepo: investmentRepo,
		summaryCache:   summaryCache,
	}
}

// GetEventSummary computes the event total and per-participant aggregates
func (s *summaryService) GetEventSummary(ctx context.Context, eventID string) (*dto.EventSummaryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.summary.get_event_summary")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	if cached, err := s.summaryCache.Get(ctx, eventID); err == nil && cached != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		span.SetStatus(codes.Ok, "")
		return cached, nil
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	investments, err := s.investmentRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	startups, err := s.startupRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	investors, err := s.investorRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	startupNames := make(map[string]string, len(startups))
	for _, startup := range startups {
		startupNames[startup.ID] = startup.Name
	}
	investorNames := make(map[string]string, len(investors))
	for _, investor := range investors {
		investorNames[investor.ID] = investor.Name
	}

	summary := &dto.EventSummaryResponse{
		ByStartup:  make([]dto.SummaryLineResponse, 0, len(startups)),
		ByInvestor: make([]dto.SummaryLineResponse, 0, len(investors)),
	}

	// One pass: accumulate totals into index maps, keep slice order stable by
	// first appearance.
	startupIdx := make(map[string]int)
	investorIdx := make(map[string]int)
	for _, inv := range investments {
		summary.EventTotal += inv.Amount

		i, ok := startupIdx[inv.StartupID]
		if !ok {
			i = len(summary.ByStartup)
			startupIdx[inv.StartupID] = i
			summary.ByStartup = append(summary.ByStartup, dto.SummaryLineResponse{
				ID:   inv.StartupID,
				Name: startupNames[inv.StartupID],
			})
		}
		summary.ByStartup[i].Total += inv.Amount
		summary.ByStartup[i].InvestmentCount++

		j, ok := investorIdx[inv.InvestorID]
		if !ok {
			j = len(summary.ByInvestor)
			investorIdx[inv.InvestorID] = j
			summary.ByInvestor = append(summary.ByInvestor, dto.SummaryLineResponse{
				ID:   inv.InvestorID,
				Name: investorNames[inv.InvestorID],
			})
		}
		summary.ByInvestor[j].Total += inv.Amount
		summary.ByInvestor[j].InvestmentCount++
	}

	if err := s.summaryCache.Set(ctx, event.ID, summary); err != nil {
		logger.Get().Warn("failed to cache event summary",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int("investment_count", len(investments)),
		attribute.Float64("event_total", summary.EventTotal),
	)
	span.SetStatus(codes.Ok, "")
	return summary, nil
}

// Ensure summaryService implements SummaryService
var _ SummaryService = (*summaryService)(nil)
