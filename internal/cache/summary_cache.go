package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Berytech/Investment-Platform/internal/dto"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
)

// SummaryCache keeps event summaries in Redis for a short TTL so aggressive
// result-screen polling does not hammer Postgres. A nil client disables the
// cache entirely: every method becomes a no-op miss.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a SummaryCache. client may be nil.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func summaryKey(eventID string) string {
	return fmt.Sprintf("summary:event:%s", eventID)
}

// Get returns the cached summary for an event, or (nil, nil) on a miss.
// Redis failures degrade to a miss.
func (c *SummaryCache) Get(ctx context.Context, eventID string) (*dto.EventSummaryResponse, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.summary.get")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	raw, err := c.client.Get(ctx, summaryKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache_hit", false))
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil
	}

	var summary dto.EventSummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", true))
	return &summary, nil
}

// Set stores a summary under the configured TTL. Redis failures are reported
// but never block the caller's response.
func (c *SummaryCache) Set(ctx context.Context, eventID string, summary *dto.EventSummaryResponse) error {
	if c == nil || c.client == nil {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.summary.set")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	raw, err := json.Marshal(summary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(eventID), raw, c.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to cache summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary after a write touches the event
func (c *SummaryCache) Invalidate(ctx context.Context, eventID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "cache.summary.invalidate")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := c.client.Del(ctx, summaryKey(eventID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}

	return nil
}
