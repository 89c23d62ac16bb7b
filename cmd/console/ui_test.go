package main

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-world/internal/handlers"
	"github.com/jwebster45206/npc-world/internal/services/events"
	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/state"
	"github.com/jwebster45206/npc-world/pkg/world"
)

func newTestAPI(t *testing.T) *APIClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	m, err := world.Parse(
		"######",
		"#....#",
		"#.#..#",
		"######",
	)
	require.NoError(t, err)
	roster, err := state.NewRoster([]actor.NPCSpec{
		{ID: "blue_npc", Position: world.Position{X: 1, Y: 1}, Color: "#00f", Script: []string{"Bonjour!", "How are you?"}},
		{ID: "yellow_npc", Position: world.Position{X: 4, Y: 2}, Color: "#ff0", Script: []string{"Hello"}},
	}, actor.Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{
		Map:         m,
		Roster:      roster,
		Broadcaster: events.NewBroadcaster(nil, logger),
		CORSOrigins: []string{"*"},
		Logger:      logger,
	}))
	t.Cleanup(srv.Close)

	return NewAPIClient(srv.Client(), srv.URL)
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m ConsoleUI, cmd tea.Cmd) ConsoleUI {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(ConsoleUI)
}

// submit types input and presses Enter, running any resulting request.
func submit(t *testing.T, m ConsoleUI, input string) ConsoleUI {
	t.Helper()
	m.textarea.SetValue(input)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ConsoleUI)
	if cmd != nil {
		m = run(t, m, cmd)
	}
	return m
}

func loadedUI(t *testing.T) ConsoleUI {
	t.Helper()
	m := NewConsoleUI(newTestAPI(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(ConsoleUI)
	m = run(t, m, m.loadWorld())
	require.NoError(t, m.err)
	return m
}

func lastLine(m ConsoleUI) chatLine {
	return m.lines[len(m.lines)-1]
}

func TestConsoleUI_LoadsWorld(t *testing.T) {
	m := loadedUI(t)

	require.NotNil(t, m.gameMap)
	assert.Equal(t, 6, m.gameMap.Width())
	assert.Equal(t, []string{"blue_npc", "yellow_npc"}, m.order)
	assert.Equal(t, "blue_npc", m.selected, "first NPC is selected by default")
	assert.False(t, m.loading)
	assert.Contains(t, m.metaViewport.View(), "Blue Npc")
}

func TestConsoleUI_SelectNPC(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/npc yellow_npc")
	assert.Equal(t, "yellow_npc", m.selected)

	m = submit(t, m, "/npc red_npc")
	assert.Equal(t, "yellow_npc", m.selected)
	assert.Equal(t, lineError, lastLine(m).kind)
}

func TestConsoleUI_NextCyclesScript(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/next")
	assert.Equal(t, chatLine{kind: lineNPC, speaker: "Blue Npc", text: "Bonjour!"}, lastLine(m))
	m = submit(t, m, "/next")
	m = submit(t, m, "/next")
	assert.Equal(t, "Bonjour!", lastLine(m).text)
	assert.Equal(t, "Bonjour!", m.lastLine)
}

func TestConsoleUI_SayThenHistory(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "hello there")
	assert.Equal(t, chatLine{kind: linePlayer, text: "hello there"}, lastLine(m))
	assert.NoError(t, m.err)

	m = submit(t, m, "/history")
	got := lastLine(m)
	assert.Equal(t, lineSystem, got.kind)
	assert.Contains(t, got.text, "You: hello there")
	assert.Contains(t, got.text, "path: (1,1)")
}

func TestConsoleUI_Move(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/move 2 1")
	assert.Equal(t, world.Position{X: 2, Y: 1}, m.npcs["blue_npc"].Position)

	m = submit(t, m, "/move 2 2")
	assert.Equal(t, lineError, lastLine(m).kind)
	assert.Contains(t, lastLine(m).text, "not walkable")
	assert.Equal(t, world.Position{X: 2, Y: 1}, m.npcs["blue_npc"].Position)

	m = submit(t, m, "/move two 2")
	assert.Contains(t, lastLine(m).text, "integers")
}

func TestConsoleUI_ValidMoves(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/moves")
	assert.Equal(t, "Valid moves: (1,2) (2,1)", lastLine(m).text)
}

func TestConsoleUI_UnknownCommand(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/dance")
	assert.Equal(t, lineError, lastLine(m).kind)

	m = submit(t, m, "/copy")
	assert.Contains(t, lastLine(m).text, "nothing to copy")
}

func TestConsoleUI_Help(t *testing.T) {
	m := loadedUI(t)

	m = submit(t, m, "/help")
	assert.True(t, strings.HasPrefix(lastLine(m).text, "Commands:"))
}

func TestRenderMap(t *testing.T) {
	m, err := world.Parse(
		"#####",
		"#...#",
		"#####",
	)
	require.NoError(t, err)

	out := renderMap(m, map[string]actor.State{
		"blue_npc": {Position: world.Position{X: 2, Y: 1}, Color: "#00f"},
	}, []string{"blue_npc"})
	assert.Contains(t, out, "B")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Yellow Npc", displayName("yellow_npc"))
	assert.Equal(t, 'Y', markerRune("yellow_npc"))
	assert.Equal(t, '?', markerRune(""))
}

func TestAPIClient_ErrorMessage(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.NextMessage("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "npc not found: ghost")

	assert.True(t, api.TestConnection())
}
