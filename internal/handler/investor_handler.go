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

// InvestorHandler handles investor HTTP requests
type InvestorHandler struct {
	investorService service.InvestorService
}

// NewInvestorHandler creates a new investor handler
func NewInvestorHandler(investorService service.InvestorService) *InvestorHandler {
	return &InvestorHandler{investorService: investorService}
}

// Create handles POST /investors. Budget overrides in the body are ignored on
// this public route.
func (h *InvestorHandler) Create(c *gin.Context) {
	h.create(c, false)
}

// CreateWithBudget handles POST /admin/investors, honoring a budget override
func (h *InvestorHandler) CreateWithBudget(c *gin.Context) {
	h.create(c, true)
}

func (h *InvestorHandler) create(c *gin.Context, allowBudgetOverride bool) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investor.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Missing required fields")
		return
	}

	span.SetAttributes(attribute.String("event_id", req.EventID))

	investor, err := h.investorService.CreateInvestor(ctx, &req, allowBudgetOverride)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("investor_id", investor.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, investor, "Investor created successfully")
}

// GetView handles GET /investors/:investorId
func (h *InvestorHandler) GetView(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investor.get_view")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	investorID := c.Param("investorId")
	span.SetAttributes(attribute.String("investor_id", investorID))

	view, err := h.investorService.GetInvestorView(ctx, investorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, view, "")
}

// ListByEvent handles GET /investors/event/:eventId
func (h *InvestorHandler) ListByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investor.list_by_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("eventId")
	span.SetAttributes(attribute.String("event_id", eventID))

	investors, err := h.investorService.ListInvestorsByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(investors)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, investors, "")
}

// Update handles PUT /admin/investors/:investorId
func (h *InvestorHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investor.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	investorID := c.Param("investorId")
	span.SetAttributes(attribute.String("investor_id", investorID))

	var req dto.UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Missing required fields")
		return
	}

	investor, err := h.investorService.UpdateInvestor(ctx, investorID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, investor, "Investor updated successfully")
}

// Delete handles DELETE /admin/investors/:investorId
func (h *InvestorHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investor.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	investorID := c.Param("investorId")
	span.SetAttributes(attribute.String("investor_id", investorID))

	if err := h.investorService.DeleteInvestor(ctx, investorID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, nil, "Investor deleted successfully")
}
