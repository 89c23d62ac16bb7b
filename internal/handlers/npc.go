package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-world/internal/errors"
	"github.com/jwebster45206/npc-world/internal/logger"
	"github.com/jwebster45206/npc-world/internal/middleware"
	"github.com/jwebster45206/npc-world/internal/services/events"
	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

// DefaultHistoryLimit applies when /history is called without ?limit.
const DefaultHistoryLimit = 10

// Walkability is the part of the map NPC moves are validated against.
type Walkability interface {
	IsWalkable(p world.Position) bool
}

// HearRequest is the optional JSON body for /hear.
type HearRequest struct {
	Message string `json:"message"`
}

type HearResponse struct {
	Status string `json:"status"`
}

type HistoryResponse struct {
	Messages  []actor.Message  `json:"messages"`
	Movements []actor.Movement `json:"movements"`
}

type NPCHandler struct {
	roster      *state.Roster
	walkable    Walkability
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewNPCHandler(roster *state.Roster, walkable Walkability, broadcaster *events.Broadcaster, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		roster:      roster,
		walkable:    walkable,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ServeHTTP handles HTTP requests for NPCs
// Routes:
// GET  /api/npcs               - All NPC states keyed by id
// POST /api/npc/{id}/move      - Move to {"x","y"} if walkable
// GET  /api/npc/{id}/message   - Next scripted line
// GET  /api/npc/{id}/history   - Recent messages and movements (?limit=10)
// POST /api/npc/{id}/hear      - Record a player line (?message= or {"message"})
func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if strings.Trim(r.URL.Path, "/") == "api/npcs" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, h.logger, r.Method, http.MethodGet)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, h.roster.States())
		return
	}

	// Extract "{id}/{action}" from "/api/npc/{id}/{action}"
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/npc"), "/")
	npcID, action, ok := strings.Cut(rest, "/")
	if !ok || npcID == "" || action == "" || strings.Contains(action, "/") {
		writeJSON(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}

	var allowed string
	switch action {
	case "move", "hear":
		allowed = http.MethodPost
	case "message", "history":
		allowed = http.MethodGet
	default:
		writeJSON(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	if r.Method != allowed {
		methodNotAllowed(w, h.logger, r.Method, allowed)
		return
	}

	log := logger.WithNPC(h.logger, npcID)
	npc, err := h.roster.Get(npcID)
	if err != nil {
		log.Warn("NPC not found")
		writeError(w, log, err)
		return
	}

	switch action {
	case "move":
		h.handleMove(w, r, npc, log)
	case "message":
		h.handleMessage(w, r, npc, log)
	case "history":
		h.handleHistory(w, r, npc, log)
	case "hear":
		h.handleHear(w, r, npc, log)
	}
}

func (h *NPCHandler) handleMove(w http.ResponseWriter, r *http.Request, npc *actor.NPC, log *slog.Logger) {
	var target world.Position
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		log.Warn("Invalid JSON in move request body", "error", err)
		writeError(w, log, errors.InvalidArgument("Invalid JSON in request body"))
		return
	}

	if !h.walkable.IsWalkable(target) {
		log.Warn("Rejected move to non-walkable position", "x", target.X, "y", target.Y)
		writeError(w, log, errors.InvalidArgument("Invalid move - position not walkable").
			WithMeta("position", target))
		return
	}

	npc.MoveTo(target)
	log.Debug("NPC moved", "x", target.X, "y", target.Y)
	if err := h.broadcaster.PublishNPCMoved(r.Context(), middleware.RequestID(r.Context()), npc.ID(), target); err != nil {
		log.Warn("Failed to publish move event", "error", err)
	}

	writeJSON(w, log, http.StatusOK, npc.State())
}

func (h *NPCHandler) handleMessage(w http.ResponseWriter, r *http.Request, npc *actor.NPC, log *slog.Logger) {
	msg, err := npc.Speak()
	if err != nil {
		log.Error("NPC could not speak", "error", err)
		writeError(w, log, err)
		return
	}

	if err := h.broadcaster.PublishNPCSpoke(r.Context(), middleware.RequestID(r.Context()), npc.ID(), msg); err != nil {
		log.Warn("Failed to publish spoke event", "error", err)
	}
	writeJSON(w, log, http.StatusOK, msg)
}

func (h *NPCHandler) handleHistory(w http.ResponseWriter, r *http.Request, npc *actor.NPC, log *slog.Logger) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			log.Warn("Invalid history limit", "limit", raw)
			writeError(w, log, errors.InvalidArgument("limit must be a positive integer"))
			return
		}
		limit = n
	}

	writeJSON(w, log, http.StatusOK, HistoryResponse{
		Messages:  npc.RecentConversations(limit),
		Movements: npc.Movements(limit),
	})
}

func (h *NPCHandler) handleHear(w http.ResponseWriter, r *http.Request, npc *actor.NPC, log *slog.Logger) {
	content, err := hearContent(r)
	if err != nil {
		log.Warn("Invalid hear request", "error", err)
		writeError(w, log, err)
		return
	}

	msg := npc.Hear(content)
	log.Debug("NPC heard player", "seq", msg.Seq)
	if err := h.broadcaster.PublishNPCHeard(r.Context(), middleware.RequestID(r.Context()), npc.ID(), msg); err != nil {
		log.Warn("Failed to publish heard event", "error", err)
	}

	writeJSON(w, log, http.StatusOK, HearResponse{Status: "Message recorded"})
}

// hearContent reads the player's line from ?message= or, failing that, from
// a {"message": "..."} body.
func hearContent(r *http.Request) (string, error) {
	if msg := r.URL.Query().Get("message"); msg != "" {
		return msg, nil
	}

	var req HearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		return "", errors.InvalidArgument("Invalid JSON in request body")
	}
	if req.Message == "" {
		return "", errors.InvalidArgument("message is required")
	}
	return req.Message, nil
}
