package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// StartupService defines the interface for startup business logic
type StartupService interface {
	// CreateStartup registers a startup for an event
	CreateStartup(ctx context.Context, req *dto.CreateStartupRequest) (*domain.Startup, error)

	// GetStartup retrieves a startup by ID
	GetStartup(ctx context.Context, startupID string) (*domain.Startup, error)

	// ListStartupsByEvent retrieves an event's startups
	ListStartupsByEvent(ctx context.Context, eventID string) ([]*domain.Startup, error)

	// UpdateStartup updates a startup's mutable fields
	UpdateStartup(ctx context.Context, startupID string, req *dto.UpdateStartupRequest) (*domain.Startup, error)

	// DeleteStartup removes a startup
	DeleteStartup(ctx context.Context, startupID string) error
}

// startupService implements StartupService
type startupService struct {
	eventRepo   repository.EventRepository
	startupRepo repository.StartupRepository
}

// NewStartupService creates a new startup service
func NewStartupService(eventRepo repository.EventRepository, startupRepo repository.StartupRepository) StartupService {
	return &startupService{
		eventRepo:   eventRepo,
		startupRepo: startupRepo,
	}
}

// CreateStartup registers a startup for an event
func (s *startupService) CreateStartup(ctx context.Context, req *dto.CreateStartupRequest) (*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.startup.create")
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

	now := time.Now().UTC()
	startup := &domain.Startup{
		ID:        uuid.Must(uuid.NewV7()).String(),
		EventID:   event.ID,
		Name:      req.Name,
		LogoURL:   req.LogoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.startupRepo.Create(ctx, startup); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("startup_id", startup.ID))
	span.SetStatus(codes.Ok, "")
	return startup, nil
}

// GetStartup retrieves a startup by ID
func (s *startupService) GetStartup(ctx context.Context, startupID string) (*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.startup.get")
	defer span.End()

	if startupID == "" {
		span.SetStatus(codes.Error, "invalid startup_id")
		return nil, domain.ErrInvalidStartupID
	}
	span.SetAttributes(attribute.String("startup_id", startupID))

	startup, err := s.startupRepo.GetByID(ctx, startupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return startup, nil
}

// ListStartupsByEvent retrieves an event's startups
func (s *startupService) ListStartupsByEvent(ctx context.Context, eventID string) ([]*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.startup.list_by_event")
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

	startups, err := s.startupRepo.ListByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(startups)))
	span.SetStatus(codes.Ok, "")
	return startups, nil
}

// UpdateStartup updates a startup's mutable fields
func (s *startupService) UpdateStartup(ctx context.Context, startupID string, req *dto.UpdateStartupRequest) (*domain.Startup, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.startup.update")
	defer span.End()

	if startupID == "" {
		span.SetStatus(codes.Error, "invalid startup_id")
		return nil, domain.ErrInvalidStartupID
	}
	span.SetAttributes(attribute.String("startup_id", startupID))

	startup, err := s.startupRepo.GetByID(ctx, startupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req != nil {
		if req.Name != "" {
			startup.Name = req.Name
		}
		if req.LogoURL != "" {
			startup.LogoURL = req.LogoURL
		}
	}
	startup.UpdatedAt = time.Now().UTC()

	if err := s.startupRepo.Update(ctx, startup); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return startup, nil
}

// DeleteStartup removes a startup
func (s *startupService) DeleteStartup(ctx context.Context, startupID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.startup.delete")
	defer span.End()

	if startupID == "" {
		span.SetStatus(codes.Error, "invalid startup_id")
		return domain.ErrInvalidStartupID
	}
	span.SetAttributes(attribute.String("startup_id", startupID))

	if err := s.startupRepo.Delete(ctx, startupID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure startupService implements StartupService
var _ StartupService = (*startupService)(nil)
