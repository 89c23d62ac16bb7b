package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-world/internal/errors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes body with the given status. The Content-Type header is
// set by ServeHTTP before dispatch.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps err's code to a status and reports its message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()
	message := errors.GetMessage(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err, "code", code)
		message = "Internal server error"
	}
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

func methodNotAllowed(w http.ResponseWriter, logger *slog.Logger, method string, allowed string) {
	logger.Warn("Method not allowed", "method", method, "allowed", allowed)
	w.Header().Set("Allow", allowed)
	writeJSON(w, logger, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "Method not allowed. Supported methods: " + allowed,
	})
}
