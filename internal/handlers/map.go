package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-world/internal/errors"
	"github.com/jwebster45206/npc-world/pkg/world"
)

type ValidMovesResponse struct {
	ValidMoves []world.Position `json:"valid_moves"`
}

type MapHandler struct {
	gameMap *world.Map
	logger  *slog.Logger
}

func NewMapHandler(gameMap *world.Map, logger *slog.Logger) *MapHandler {
	return &MapHandler{
		gameMap: gameMap,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for the map
// Routes:
// GET /api/map                     - Map snapshot
// GET /api/map/valid-moves?x=&y=   - Walkable neighbors of (x, y)
func (h *MapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, r.Method, http.MethodGet)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/map"), "/")
	switch path {
	case "":
		writeJSON(w, h.logger, http.StatusOK, h.gameMap.State())
	case "valid-moves":
		h.handleValidMoves(w, r)
	default:
		writeJSON(w, h.logger, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	}
}

func (h *MapHandler) handleValidMoves(w http.ResponseWriter, r *http.Request) {
	pos, err := positionFromQuery(r)
	if err != nil {
		h.logger.Warn("Invalid valid-moves query", "error", err, "query", r.URL.RawQuery)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ValidMovesResponse{
		ValidMoves: h.gameMap.ValidMoves(pos),
	})
}

func positionFromQuery(r *http.Request) (world.Position, error) {
	q := r.URL.Query()
	x, err := requiredInt(q.Get("x"), "x")
	if err != nil {
		return world.Position{}, err
	}
	y, err := requiredInt(q.Get("y"), "y")
	if err != nil {
		return world.Position{}, err
	}
	return world.Position{X: x, Y: y}, nil
}

func requiredInt(value, name string) (int, error) {
	if value == "" {
		return 0, errors.InvalidArgumentf("%s query parameter is required", name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be an integer", name)
	}
	return n, nil
}
