package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/response"
	"github.com/Berytech/Investment-Platform/internal/service"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// StartupHandler handles startup HTTP requests
type StartupHandler struct {
	startupService service.StartupService
}

// NewStartupHandler creates a new startup handler
func NewStartupHandler(startupService service.StartupService) *StartupHandler {
	return &StartupHandler{startupService: startupService}
}

// Create handles POST /startups
func (h *StartupHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.startup.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateStartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Missing required fields")
		return
	}

	span.SetAttributes(attribute.String("event_id", req.EventID))

	startup, err := h.startupService.CreateStartup(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("startup_id", startup.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, startup, "Startup created successfully")
}

// Get handles GET /startups/:startupId
func (h *StartupHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.startup.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	startupID := c.Param("startupId")
	span.SetAttributes(attribute.String("startup_id", startupID))

	startup, err := h.startupService.GetStartup(ctx, startupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, startup, "")
}

// ListByEvent handles GET /startups/event/:eventId
func (h *StartupHandler) ListByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.startup.list_by_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("eventId")
	span.SetAttributes(attribute.String("event_id", eventID))

	startups, err := h.startupService.ListStartupsByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(startups)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, startups, "")
}

// Update handles PUT /admin/startups/:startupId
func (h *StartupHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.startup.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	startupID := c.Param("startupId")
	span.SetAttributes(attribute.String("startup_id", startupID))

	var req dto.UpdateStartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Invalid request body")
		return
	}

	startup, err := h.startupService.UpdateStartup(ctx, startupID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, startup, "Startup updated successfully")
}

// Delete handles DELETE /admin/startups/:startupId
func (h *StartupHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.startup.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	startupID := c.Param("startupId")
	span.SetAttributes(attribute.String("startup_id", startupID))

	if err := h.startupService.DeleteStartup(ctx, startupID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, nil, "Startup deleted successfully")
}
