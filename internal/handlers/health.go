package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-world/internal/services"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

const ServiceName = "npc-world"

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	gameMap *world.Map
	roster  *state.Roster
	redis   services.Pinger // nil when Redis is not configured
	logger  *slog.Logger
}

func NewHealthHandler(gameMap *world.Map, roster *state.Roster, redis services.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		gameMap: gameMap,
		roster:  roster,
		redis:   redis,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	components := map[string]any{
		"map": map[string]any{
			"width":    h.gameMap.Width(),
			"height":   h.gameMap.Height(),
			"walkable": len(h.gameMap.WalkablePositions()),
		},
		"npcs": h.roster.Len(),
	}
	overallStatus := "healthy"

	if h.redis == nil {
		components["redis"] = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.redis.Ping(ctx); err != nil {
			h.logger.Warn("Redis health check failed", "error", err)
			components["redis"] = "unhealthy"
			overallStatus = "degraded"
		} else {
			components["redis"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    ServiceName,
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, response)
}
