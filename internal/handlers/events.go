package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/npc-world/internal/errors"
	"github.com/jwebster45206/npc-world/internal/services/events"
	"github.com/jwebster45206/npc-world/pkg/state"
)

const defaultKeepalive = 30 * time.Second

// Subscriber is the subset of the Redis client used to follow NPC events.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// EventsHandler streams NPC events as Server-Sent Events
type EventsHandler struct {
	subscriber Subscriber // nil when Redis is not configured
	roster     *state.Roster
	logger     *slog.Logger
	keepalive  time.Duration
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber Subscriber, roster *state.Roster, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber: subscriber,
		roster:     roster,
		logger:     logger,
		keepalive:  defaultKeepalive,
	}
}

// ServeHTTP handles SSE requests for NPC events
// Routes:
// GET /api/events        - Events for every NPC
// GET /api/events/{id}   - Events for one NPC
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		methodNotAllowed(w, h.logger, r.Method, http.MethodGet)
		return
	}

	channel := events.AllNPCsChannel
	npcID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/events"), "/")
	if npcID != "" {
		if _, err := h.roster.Get(npcID); err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, err)
			return
		}
		channel = events.NPCChannel(npcID)
	}

	if h.subscriber == nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, errors.Unavailable("Event stream unavailable: Redis is not configured"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, errors.Internal("streaming unsupported"))
		return
	}

	// Subscribe to the channel and wait for the confirmation so no event
	// published after "connected" is missed.
	pubsub := h.subscriber.Subscribe(r.Context(), channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			h.logger.Error("Failed to close pubsub", "error", err)
		}
	}()
	if _, err := pubsub.Receive(r.Context()); err != nil {
		h.logger.Error("Failed to subscribe to events", "error", err, "channel", channel)
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, errors.Unavailable("Event stream unavailable"))
		return
	}

	h.logger.Info("SSE connection established",
		"channel", channel,
		"remote_addr", r.RemoteAddr)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	msgChan := pubsub.Channel()

	keepaliveTicker := time.NewTicker(h.keepalive)
	defer keepaliveTicker.Stop()

	h.sendSSE(w, flusher, "connected", map[string]any{
		"channel": channel,
		"message": "Connected to event stream",
	})

	for {
		select {
		case <-r.Context().Done():
			// Client disconnected
			h.logger.Info("SSE client disconnected", "channel", channel)
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}
			h.sendSSE(w, flusher, string(event.Type), event)

		case <-keepaliveTicker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				h.logger.Error("Failed to write keepalive", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// sendSSE sends a Server-Sent Event to the client
func (h *EventsHandler) sendSSE(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to marshal SSE data", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, dataJSON); err != nil {
		h.logger.Error("Failed to write event", "error", err)
		return
	}
	flusher.Flush()
}
