package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/middleware"
	"github.com/Berytech/Investment-Platform/internal/response"
)

// MockEventService is a mock implementation of EventService
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, eventID string) (*dto.EventDetailResponse, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EventDetailResponse), args.Error(1)
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func setupEventTestRouter(handler *EventHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	events := router.Group("/api/v1/events")
	{
		events.GET("", handler.List)
		events.GET("/:eventId", handler.Get)
	}

	admin := router.Group("/api/v1/admin", middleware.AdminKey(testAdminKey))
	{
		admin.POST("/events", handler.Create)
		admin.PUT("/events/:eventId", handler.Update)
		admin.DELETE("/events/:eventId", handler.Delete)
	}

	return router
}

func TestEventHandler_Create_Success(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	expected := &domain.Event{
		ID:                     "event-1",
		Name:                   "Demo Day",
		Date:                   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TotalBudgetPerInvestor: 1000,
	}
	mockService.On("CreateEvent", mock.Anything, mock.AnythingOfType("*dto.CreateEventRequest")).
		Return(expected, nil)

	body, _ := json.Marshal(dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "2026-09-15",
		TotalBudgetPerInvestor: floatPtr(1000),
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Event created successfully", envelope.Message)

	mockService.AssertExpectations(t)
}

func TestEventHandler_Create_RequiresAdminKey(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	body, _ := json.Marshal(dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "2026-09-15",
		TotalBudgetPerInvestor: floatPtr(1000),
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertNotCalled(t, "CreateEvent")
}

func TestEventHandler_Create_InvalidDate(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	mockService.On("CreateEvent", mock.Anything, mock.AnythingOfType("*dto.CreateEventRequest")).
		Return(nil, domain.ErrInvalidDate)

	body, _ := json.Marshal(dto.CreateEventRequest{
		Name:                   "Demo Day",
		Date:                   "someday",
		TotalBudgetPerInvestor: floatPtr(1000),
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestEventHandler_Get_Success(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	expected := &dto.EventDetailResponse{
		Event: &domain.Event{ID: "event-1", Name: "Demo Day", TotalBudgetPerInvestor: 1000},
		Investors: []*domain.Investor{
			{ID: "inv-1", EventID: "event-1", Name: "Alice", RemainingBudget: 700},
		},
		Startups: []*domain.Startup{
			{ID: "st-1", EventID: "event-1", Name: "Acme"},
		},
	}
	mockService.On("GetEvent", mock.Anything, "event-1").Return(expected, nil)

	req, _ := http.NewRequest("GET", "/api/v1/events/event-1", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err)

	data := envelope.Data.(map[string]interface{})
	assert.Len(t, data["investors"], 1)
	assert.Len(t, data["startups"], 1)

	mockService.AssertExpectations(t)
}

func TestEventHandler_Get_NotFound(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	mockService.On("GetEvent", mock.Anything, "missing").Return(nil, domain.ErrEventNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/events/missing", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestEventHandler_List_Success(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	expected := []*domain.Event{
		{ID: "event-2", Name: "Pitch Night"},
		{ID: "event-1", Name: "Demo Day"},
	}
	mockService.On("ListEvents", mock.Anything).Return(expected, nil)

	req, _ := http.NewRequest("GET", "/api/v1/events", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.Len(t, envelope.Data, 2)

	mockService.AssertExpectations(t)
}

func TestEventHandler_Delete_Success(t *testing.T) {
	mockService := new(MockEventService)
	handler := NewEventHandler(mockService)
	router := setupEventTestRouter(handler)

	mockService.On("DeleteEvent", mock.Anything, "event-1").Return(nil)

	req, _ := http.NewRequest("DELETE", "/api/v1/admin/events/event-1", nil)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	assert.NoError(t, err)
	assert.Equal(t, "Event deleted successfully", envelope.Message)

	mockService.AssertExpectations(t)
}
