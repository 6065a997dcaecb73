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

// InvestmentHandler handles investment HTTP requests
type InvestmentHandler struct {
	ledgerService  service.LedgerService
	summaryService service.SummaryService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(ledgerService service.LedgerService, summaryService service.SummaryService) *InvestmentHandler {
	return &InvestmentHandler{
		ledgerService:  ledgerService,
		summaryService: summaryService,
	}
}

// Invest handles POST /investments
func (h *InvestmentHandler) Invest(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investment.invest")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Missing required fields")
		return
	}

	span.SetAttributes(
		attribute.String("investor_id", req.InvestorID),
		attribute.String("startup_id", req.StartupID),
	)

	result, err := h.ledgerService.Allocate(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("investment_id", result.Investment.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result, "Investment successful")
}

// GetHistory handles GET /investments/:investmentId/history
func (h *InvestmentHandler) GetHistory(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investment.get_history")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	investmentID := c.Param("investmentId")
	span.SetAttributes(attribute.String("investment_id", investmentID))

	result, err := h.ledgerService.GetInvestmentHistory(ctx, investmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result, "")
}

// GetEventSummary handles GET /investments/summary/:eventId
func (h *InvestmentHandler) GetEventSummary(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investment.get_event_summary")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("eventId")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.summaryService.GetEventSummary(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result, "Investment summary retrieved successfully")
}

// ListInvestorInvestments handles GET /investments/investor/:investorId
func (h *InvestmentHandler) ListInvestorInvestments(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.investment.list_investor_investments")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	investorID := c.Param("investorId")
	span.SetAttributes(attribute.String("investor_id", investorID))

	result, err := h.ledgerService.ListInvestorInvestments(ctx, investorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result, "")
}
