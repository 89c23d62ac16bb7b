package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-world/internal/middleware"
	"github.com/jwebster45206/npc-world/internal/services"
	"github.com/jwebster45206/npc-world/internal/services/events"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

// RouterConfig carries the process-wide state the handlers share.
type RouterConfig struct {
	Map         *world.Map
	Roster      *state.Roster
	Broadcaster *events.Broadcaster
	Redis       services.Pinger // optional
	Subscriber  Subscriber      // optional; enables /api/events
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter mounts every endpoint and wraps the mux in logging, panic
// recovery and CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(cfg.Map, cfg.Roster, cfg.Redis, cfg.Logger)
	mux.Handle("/health", healthHandler)

	mapHandler := NewMapHandler(cfg.Map, cfg.Logger)
	mux.Handle("/api/map", mapHandler)
	mux.Handle("/api/map/", mapHandler)

	npcHandler := NewNPCHandler(cfg.Roster, cfg.Map, cfg.Broadcaster, cfg.Logger)
	mux.Handle("/api/npcs", npcHandler)
	mux.Handle("/api/npc/", npcHandler)

	eventsHandler := NewEventsHandler(cfg.Subscriber, cfg.Roster, cfg.Logger)
	mux.Handle("/api/events", eventsHandler)
	mux.Handle("/api/events/", eventsHandler)

	return middleware.Chain(mux,
		middleware.Logger(cfg.Logger),
		middleware.Recover(cfg.Logger),
		middleware.CORS(cfg.CORSOrigins),
	)
}
