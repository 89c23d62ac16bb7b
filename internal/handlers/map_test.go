package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/jwebster45206/npc-world/pkg/world"
)

func TestMapHandler_Snapshot(t *testing.T) {
	m, _ := newTestWorld(t)
	handler := NewMapHandler(m, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/map", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var response world.MapState
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Width != 8 || response.Height != 5 {
		t.Errorf("Expected 8x5 map, got %dx%d", response.Width, response.Height)
	}
	if len(response.Tiles) != 40 {
		t.Errorf("Expected 40 tiles, got %d", len(response.Tiles))
	}
	if len(response.WalkablePositions) != len(m.WalkablePositions()) {
		t.Errorf("Expected %d walkable positions, got %d", len(m.WalkablePositions()), len(response.WalkablePositions))
	}
	if tile := response.Tiles["2,2"]; tile.Type != world.TileWall || tile.Walkable {
		t.Errorf("Expected wall at 2,2, got %+v", tile)
	}
}

func TestMapHandler_ValidMoves(t *testing.T) {
	m, _ := newTestWorld(t)
	handler := NewMapHandler(m, testLogger())

	tests := []struct {
		name           string
		method         string
		url            string
		expectedStatus int
		expectedMoves  []world.Position
	}{
		{
			name:           "corner",
			method:         http.MethodGet,
			url:            "/api/map/valid-moves?x=1&y=1",
			expectedStatus: http.StatusOK,
			expectedMoves:  []world.Position{{X: 1, Y: 2}, {X: 2, Y: 1}},
		},
		{
			name:           "open floor",
			method:         http.MethodGet,
			url:            "/api/map/valid-moves?x=5&y=2",
			expectedStatus: http.StatusOK,
			expectedMoves:  []world.Position{{X: 5, Y: 3}, {X: 5, Y: 1}, {X: 6, Y: 2}, {X: 4, Y: 2}},
		},
		{
			name:           "outside the map",
			method:         http.MethodGet,
			url:            "/api/map/valid-moves?x=-10&y=40",
			expectedStatus: http.StatusOK,
			expectedMoves:  []world.Position{},
		},
		{
			name:           "missing y",
			method:         http.MethodGet,
			url:            "/api/map/valid-moves?x=1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non-integer x",
			method:         http.MethodGet,
			url:            "/api/map/valid-moves?x=abc&y=1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong method",
			method:         http.MethodPost,
			url:            "/api/map/valid-moves?x=1&y=1",
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "unknown sub-route",
			method:         http.MethodGet,
			url:            "/api/map/tiles",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d. Response body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			if tt.expectedStatus != http.StatusOK {
				var response ErrorResponse
				if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode error response: %v", err)
				}
				if response.Error == "" {
					t.Error("Expected error message in response")
				}
				return
			}

			var response ValidMovesResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if !reflect.DeepEqual(response.ValidMoves, tt.expectedMoves) {
				t.Errorf("Expected moves %v, got %v", tt.expectedMoves, response.ValidMoves)
			}
		})
	}
}
