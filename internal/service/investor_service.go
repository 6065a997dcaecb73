package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// InvestorService defines the interface for investor business logic
type InvestorService interface {
	// CreateInvestor registers an investor for an event. The investor starts
	// with the event's budget per investor unless the caller overrides it.
	CreateInvestor(ctx context.Context, req *dto.CreateInvestorRequest, allowBudgetOverride bool) (*domain.Investor, error)

	// GetInvestorView builds the full investor screen: identity, event,
	// live budget, holdings and the event's startup list
	GetInvestorView(ctx context.Context, investorID string) (*dto.InvestorViewResponse, error)

	// ListInvestorsByEvent retrieves an event's investors
	ListInvestorsByEvent(ctx context.Context, eventID string) ([]*domain.Investor, error)

	// UpdateInvestor renames an investor
	UpdateInvestor(ctx context.Context, investorID string, req *dto.UpdateInvestorRequest) (*domain.Investor, error)

	// DeleteInvestor removes an investor
	DeleteInvestor(ctx context.Context, investorID string) error
}

// investorService implements InvestorService
type investorService struct {
	eventRepo      repository.EventRepository
	investorRepo   repository.InvestorRepository
	startupRepo    repository.StartupRepository
	investmentRepo repository.InvestmentRepository
}

// NewInvestorService creates a new investor service
func NewInvestorService(
	eventRepo repository.EventRepository,
	investorRepo repository.InvestorRepository,
	startupRepo repository.StartupRepository,
	investmentRepo repository.InvestmentRepository,
) InvestorService {
	return &investorService{
		eventRepo:      eventRepo,
		investorRepo:   investorRepo,
		startupRepo:    startupRepo,
		investmentRepo: investmentRepo,
	}
}

// CreateInvestor registers an investor for an event
func (s *investorService) CreateInvestor(ctx context.Context, req *dto.CreateInvestorRequest, allowBudgetOverride bool) (*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.investor.create")
	defer span.End()

	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req.Name == "" {
		span.SetStatus(codes.Error, "missing name")
		return nil, domain.ErrMissingName
	}
	span.SetAttributes(attribute.String("event_id", req.EventID))

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	budget := event.TotalBudgetPerInvestor
	if allowBudgetOverride && req.Budget != nil {
		if math.IsNaN(*req.Budget) || math.IsInf(*req.Budget, 0) || *req.Budget < 0 {
			span.SetStatus(codes.Error, "invalid budget")
			return nil, domain.ErrInvalidBudget
		}
		budget = *req.Budget
	}

	now := time.Now().UTC()
	investor := &domain.Investor{
		ID:              uuid.Must(uuid.NewV7()).String(),
		EventID:         event.ID,
		Name:            req.Name,
		RemainingBudget: budget,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.investorRepo.Create(ctx, investor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("investor_id", investor.ID))
	span.SetStatus(codes.Ok, "")
	return investor, nil
}

// GetInvestorView builds the full investor screen
func (s *investorService) GetInvestorView(ctx context.Context, investorID string) (*dto.InvestorViewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.investor.get_view")
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

	event, err := s.eventRepo.GetByID(ctx, investor.EventID)
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

	startups, err := s.startupRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	names := make(map[string]string, len(startups))
	candidates := make([]dto.CandidateStartupResponse, 0, len(startups))
	for _, startup := range startups {
		names[startup.ID] = startup.Name
		candidates = append(candidates, dto.CandidateStartupResponse{
			ID:   startup.ID,
			Name: startup.Name,
		})
	}

	holdings := make([]dto.InvestorHoldingResponse, 0, len(investments))
	for _, inv := range investments {
		holdings = append(holdings, dto.InvestorHoldingResponse{
			ID:          inv.ID,
			StartupID:   inv.StartupID,
			StartupName: names[inv.StartupID],
			Amount:      inv.Amount,
		})
	}

	span.SetStatus(codes.Ok, "")
	return &dto.InvestorViewResponse{
		ID:   investor.ID,
		Name: investor.Name,
		Event: dto.InvestorEventResponse{
			ID:                     event.ID,
			Name:                   event.Name,
			TotalBudgetPerInvestor: event.TotalBudgetPerInvestor,
		},
		RemainingBudget:   investor.RemainingBudget,
		Investments:       holdings,
		AvailableStartups: candidates,
	}, nil
}

// ListInvestorsByEvent retrieves an event's investors
func (s *investorService) ListInvestorsByEvent(ctx context.Context, eventID string) ([]*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.investor.list_by_event")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	investors, err := s.investorRepo.ListByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(investors)))
	span.SetStatus(codes.Ok, "")
	return investors, nil
}

// UpdateInvestor renames an investor
func (s *investorService) UpdateInvestor(ctx context.Context, investorID string, req *dto.UpdateInvestorRequest) (*domain.Investor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.investor.update")
	defer span.End()

	if investorID == "" {
		span.SetStatus(codes.Error, "invalid investor_id")
		return nil, domain.ErrInvalidInvestorID
	}
	if req == nil || req.Name == "" {
		span.SetStatus(codes.Error, "missing name")
		return nil, domain.ErrMissingName
	}
	span.SetAttributes(attribute.String("investor_id", investorID))

	investor, err := s.investorRepo.UpdateName(ctx, investorID, req.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return investor, nil
}

// DeleteInvestor removes an investor
func (s *investorService) DeleteInvestor(ctx context.Context, investorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.investor.delete")
	defer span.End()

	if investorID == "" {
		span.SetStatus(codes.Error, "invalid investor_id")
		return domain.ErrInvalidInvestorID
	}
	span.SetAttributes(attribute.String("investor_id", investorID))

	if err := s.investorRepo.Delete(ctx, investorID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure investorService implements InvestorService
var _ InvestorService = (*investorService)(nil)
