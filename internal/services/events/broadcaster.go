package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/world"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeNPCMoved EventType = "npc.moved"
	EventTypeNPCSpoke EventType = "npc.spoke"
	EventTypeNPCHeard EventType = "npc.heard"
)

// AllNPCsChannel receives every NPC event.
const AllNPCsChannel = "npc:all:events"

// NPCChannel returns the channel carrying events for one NPC.
func NPCChannel(npcID string) string {
	return fmt.Sprintf("npc:%s:events", npcID)
}

// Event represents a generic event structure
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	NPCID     string         `json:"npc_id"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher is the subset of the Redis client used for Pub/Sub.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Broadcaster publishes NPC events to Redis Pub/Sub. A Broadcaster with a
// nil publisher drops every event.
type Broadcaster struct {
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(publisher Publisher, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Enabled reports whether events are actually published.
func (b *Broadcaster) Enabled() bool {
	return b != nil && b.publisher != nil
}

// PublishNPCMoved publishes an npc.moved event
func (b *Broadcaster) PublishNPCMoved(ctx context.Context, requestID, npcID string, position world.Position) error {
	return b.publish(ctx, Event{
		Type:      EventTypeNPCMoved,
		NPCID:     npcID,
		RequestID: requestID,
		Data: map[string]any{
			"position": position,
		},
	})
}

// PublishNPCSpoke publishes an npc.spoke event
func (b *Broadcaster) PublishNPCSpoke(ctx context.Context, requestID, npcID string, msg actor.Message) error {
	return b.publish(ctx, Event{
		Type:      EventTypeNPCSpoke,
		NPCID:     npcID,
		RequestID: requestID,
		Data: map[string]any{
			"message": msg,
		},
	})
}

// PublishNPCHeard publishes an npc.heard event
func (b *Broadcaster) PublishNPCHeard(ctx context.Context, requestID, npcID string, msg actor.Message) error {
	return b.publish(ctx, Event{
		Type:      EventTypeNPCHeard,
		NPCID:     npcID,
		RequestID: requestID,
		Data: map[string]any{
			"message": msg,
		},
	})
}

// publish sends the event to the NPC's channel and to AllNPCsChannel
func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	if !b.Enabled() {
		return nil
	}
	event.ID = uuid.NewString()
	event.Timestamp = b.now()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	for _, channel := range []string{NPCChannel(event.NPCID), AllNPCsChannel} {
		if err := b.publisher.Publish(ctx, channel, data).Err(); err != nil {
			b.logger.Error("Failed to publish event", "error", err, "channel", channel)
			return fmt.Errorf("failed to publish event: %w", err)
		}
	}

	b.logger.Debug("Event published",
		"npc_id", event.NPCID,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return nil
}
