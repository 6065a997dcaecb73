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

// EventService defines the interface for event business logic
type EventService interface {
	// CreateEvent creates an event
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)

	// GetEvent retrieves an event with its investors and startups
	GetEvent(ctx context.Context, eventID string) (*dto.EventDetailResponse, error)

	// ListEvents retrieves all events, latest first
	ListEvents(ctx context.Context) ([]*domain.Event, error)

	// UpdateEvent updates an event's mutable fields
	UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error)

	// DeleteEvent removes an event and cascades per the configured policy
	DeleteEvent(ctx context.Context, eventID string) error
}

// eventService implements EventService
type eventService struct {
	eventRepo     repository.EventRepository
	investorRepo  repository.InvestorRepository
	startupRepo   repository.StartupRepository
	cascadePolicy domain.CascadePolicy
}

// EventServiceConfig contains configuration for the event service
type EventServiceConfig struct {
	CascadePolicy domain.CascadePolicy
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	investorRepo repository.InvestorRepository,
	startupRepo repository.StartupRepository,
	cfg *EventServiceConfig,
) EventService {
	policy := domain.CascadePreserveInvestments
	if cfg != nil && cfg.CascadePolicy != "" {
		policy = cfg.CascadePolicy
	}
	return &eventService{
		eventRepo:     eventRepo,
		investorRepo:  investorRepo,
		startupRepo:   startupRepo,
		cascadePolicy: policy,
	}
}

func parseEventDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Date-only form is accepted too
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, domain.ErrInvalidDate
		}
	}
	return date.UTC(), nil
}

// CreateEvent creates an event
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil || req.Name == "" {
		span.SetStatus(codes.Error, "missing name")
		return nil, domain.ErrMissingName
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date")
		return nil, err
	}
	if req.TotalBudgetPerInvestor == nil || math.IsNaN(*req.TotalBudgetPerInvestor) ||
		math.IsInf(*req.TotalBudgetPerInvestor, 0) || *req.TotalBudgetPerInvestor < 0 {
		span.SetStatus(codes.Error, "invalid budget")
		return nil, domain.ErrInvalidBudget
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:                     uuid.Must(uuid.NewV7()).String(),
		Name:                   req.Name,
		Date:                   date,
		TotalBudgetPerInvestor: *req.TotalBudgetPerInvestor,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetEvent retrieves an event with its investors and startups
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventDetailResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
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

	startups, err := s.startupRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.EventDetailResponse{
		Event:     event,
		Investors: investors,
		Startups:  startups,
	}, nil
}

// ListEvents retrieves all events, latest first
func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// UpdateEvent updates an event's mutable fields
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req != nil {
		if req.Name != "" {
			event.Name = req.Name
		}
		if req.Date != "" {
			date, err := parseEventDate(req.Date)
			if err != nil {
				span.SetStatus(codes.Error, "invalid date")
				return nil, err
			}
			event.Date = date
		}
		if req.TotalBudgetPerInvestor != nil {
			if math.IsNaN(*req.TotalBudgetPerInvestor) || math.IsInf(*req.TotalBudgetPerInvestor, 0) ||
				*req.TotalBudgetPerInvestor < 0 {
				span.SetStatus(codes.Error, "invalid budget")
				return nil, domain.ErrInvalidBudget
			}
			event.TotalBudgetPerInvestor = *req.TotalBudgetPerInvestor
		}
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// DeleteEvent removes an event and cascades per the configured policy
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return domain.ErrInvalidEventID
	}
	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("cascade_policy", string(s.cascadePolicy)),
	)

	if err := s.eventRepo.Delete(ctx, eventID, s.cascadePolicy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure eventService implements EventService
var _ EventService = (*eventService)(nil)
