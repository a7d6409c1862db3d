package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRollQueued     EventType = "roll.queued"
	EventTypeRollProcessing EventType = "roll.processing"
	EventTypeRollCompleted  EventType = "roll.completed"
	EventTypeRollFailed     EventType = "roll.failed"
	EventTypeSheetUpdated   EventType = "sheet.updated"
	EventTypeSheetLocked    EventType = "sheet.locked"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	SheetID   string         `json:"sheet_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying one sheet's events.
func Channel(sheetID uuid.UUID) string {
	return fmt.Sprintf("sheet-events:%s", sheetID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE and websocket
// distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Subscribe opens a subscription to a sheet's channel. Callers close it.
func (b *Broadcaster) Subscribe(ctx context.Context, sheetID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sheetID))
}

// PublishRollQueued publishes a roll.queued event
func (b *Broadcaster) PublishRollQueued(ctx context.Context, sheetID uuid.UUID, requestID string) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type:      EventTypeRollQueued,
		RequestID: requestID,
		Data:      map[string]any{"status": "queued"},
	})
}

// PublishRollProcessing publishes a roll.processing event
func (b *Broadcaster) PublishRollProcessing(ctx context.Context, sheetID uuid.UUID, requestID, label string) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type:      EventTypeRollProcessing,
		RequestID: requestID,
		Data: map[string]any{
			"status": "processing",
			"label":  label,
		},
	})
}

// PublishRollCompleted publishes a roll.completed event carrying the log
// entry and the text rendering of the roll
func (b *Broadcaster) PublishRollCompleted(ctx context.Context, sheetID uuid.UUID, requestID string, msg chat.Message) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type:      EventTypeRollCompleted,
		RequestID: requestID,
		Data: map[string]any{
			"status":  "completed",
			"message": msg,
			"text":    chat.Format(msg),
		},
	})
}

// PublishRollFailed publishes a roll.failed event
func (b *Broadcaster) PublishRollFailed(ctx context.Context, sheetID uuid.UUID, requestID string, errorMsg string) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type:      EventTypeRollFailed,
		RequestID: requestID,
		Data: map[string]any{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

// PublishSheetUpdated publishes the field updates written to a sheet
func (b *Broadcaster) PublishSheetUpdated(ctx context.Context, sheetID uuid.UUID, updates []actor.FieldUpdate) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type: EventTypeSheetUpdated,
		Data: map[string]any{"updates": updates},
	})
}

// PublishSheetLocked publishes a session lock toggle
func (b *Broadcaster) PublishSheetLocked(ctx context.Context, sheetID, sessionID uuid.UUID, locked bool) error {
	return b.publishToSheet(ctx, sheetID, Event{
		Type: EventTypeSheetLocked,
		Data: map[string]any{
			"session_id": sessionID.String(),
			"locked":     locked,
		},
	})
}

// publishToSheet publishes an event to the sheet-specific channel
func (b *Broadcaster) publishToSheet(ctx context.Context, sheetID uuid.UUID, event Event) error {
	channel := Channel(sheetID)
	event.SheetID = sheetID.String()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}
