package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Berytech/Investment-Platform/internal/domain"
)

// AllocationEvent is the payload published after every committed allocation
type AllocationEvent struct {
	EventID         string             `json:"event_id"`
	Type            string             `json:"type"`
	Investment      *domain.Investment `json:"investment"`
	RemainingBudget float64            `json:"remaining_budget"`
	OccurredAt      time.Time          `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing allocation events
type EventPublisher interface {
	// PublishInvestmentAllocated publishes an event after an allocation commits
	PublishInvestmentAllocated(ctx context.Context, investment *domain.Investment, remainingBudget float64) error

	// Close closes the event publisher
	Close() error
}

const eventTypeInvestmentAllocated = "investment.allocated"

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	client      *kgo.Client
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "investment-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "investment-platform"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "investment-platform-producer"
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka brokers: %w", err)
	}

	return &KafkaEventPublisher{
		client:      client,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishInvestmentAllocated publishes an event after an allocation commits
func (p *KafkaEventPublisher) PublishInvestmentAllocated(ctx context.Context, investment *domain.Investment, remainingBudget float64) error {
	event := AllocationEvent{
		EventID:         uuid.New().String(),
		Type:            eventTypeInvestmentAllocated,
		Investment:      investment,
		RemainingBudget: remainingBudget,
		OccurredAt:      time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		// Keyed per investor so one investor's allocations stay ordered
		Key:   []byte(investment.InvestorID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventTypeInvestmentAllocated)},
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "source", Value: []byte(p.serviceName)},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish allocation event: %w", err)
	}

	return nil
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// NoOpEventPublisher implements EventPublisher without publishing anywhere.
// Used when Kafka is disabled or unreachable at startup.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new NoOpEventPublisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishInvestmentAllocated does nothing
func (p *NoOpEventPublisher) PublishInvestmentAllocated(ctx context.Context, investment *domain.Investment, remainingBudget float64) error {
	return nil
}

// Close does nothing
func (p *NoOpEventPublisher) Close() error {
	return nil
}

// Ensure implementations satisfy EventPublisher
var (
	_ EventPublisher = (*KafkaEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
