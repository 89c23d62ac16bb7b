package handlers

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// newTestWorld returns a small fixed map with yellow_npc at (1,1) and
// blue_npc at (5,3).
func newTestWorld(t *testing.T) (*world.Map, *state.Roster) {
	t.Helper()

	m, err := world.Parse(
		"########",
		"#......#",
		"#.##...#",
		"#......#",
		"########",
	)
	if err != nil {
		t.Fatalf("Failed to parse test map: %v", err)
	}

	roster, err := state.NewRoster([]actor.NPCSpec{
		{ID: "yellow_npc", Position: world.Position{X: 1, Y: 1}, Color: "#ff0", Script: []string{"Hello"}},
		{ID: "blue_npc", Position: world.Position{X: 5, Y: 3}, Color: "#00f", Script: []string{"Bonjour!", "How are you?", "Where are you going?"}},
	}, actor.Options{MaxMovementHistory: 5, MaxMessageHistory: 5})
	if err != nil {
		t.Fatalf("Failed to build test roster: %v", err)
	}
	return m, roster
}
