package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-world/internal/handlers"
	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/world"
)

const (
	PlaceHolderText = "Say something, or /help..."
	historyLimit    = 10
)

type lineKind int

const (
	lineSystem lineKind = iota
	lineNPC
	linePlayer
	lineError
)

// chatLine is one entry in the conversation log.
type chatLine struct {
	kind    lineKind
	speaker string
	text    string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *APIClient
	gameMap      *world.Map
	npcs         map[string]actor.State
	order        []string
	selected     string
	lines        []chatLine
	lastLine     string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Quit confirmation state
	showQuitModal bool
}

type worldLoadedMsg struct {
	gameMap *world.Map
	npcs    map[string]actor.State
	err     error
}

type npcsMsg struct {
	npcs map[string]actor.State
	err  error
}

type spokeMsg struct {
	npcID string
	msg   *actor.Message
	err   error
}

type heardMsg struct {
	npcID string
	err   error
}

type movedMsg struct {
	npcID string
	state *actor.State
	err   error
}

type movesMsg struct {
	npcID string
	moves []world.Position
	err   error
}

type historyMsg struct {
	npcID   string
	history *handlers.HistoryResponse
	err     error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	wallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

func NewConsoleUI(api *APIClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(30, 20)

	return ConsoleUI{
		api:          api,
		npcs:         make(map[string]actor.State),
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		loading:      true,
	}
}

// displayName turns an id like "blue_npc" into "Blue Npc".
func displayName(npcID string) string {
	return titleCaser.String(strings.ReplaceAll(npcID, "_", " "))
}

// markerRune is the map glyph for an NPC: the upper-cased first letter of
// its id.
func markerRune(npcID string) rune {
	r, _ := utf8.DecodeRuneInString(npcID)
	if r == utf8.RuneError {
		return '?'
	}
	return unicode.ToUpper(r)
}

// renderMap draws the map with each NPC's marker in its own color.
func renderMap(m *world.Map, npcs map[string]actor.State, order []string) string {
	markers := make(map[world.Position]rune, len(order))
	styles := make(map[rune]lipgloss.Style, len(order))
	for _, id := range order {
		st := npcs[id]
		r := markerRune(id)
		markers[st.Position] = r
		styles[r] = lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Bold(true)
	}

	var b strings.Builder
	for _, r := range m.Render(markers) {
		if s, ok := styles[r]; ok {
			b.WriteString(s.Render(string(r)))
			continue
		}
		switch r {
		case '#':
			b.WriteString(wallStyle.Render("#"))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD") + "\n\n")

	if m.gameMap != nil {
		content.WriteString(renderMap(m.gameMap, m.npcs, m.order))
		content.WriteString("\n")
	}

	content.WriteString(titleStyle.Render("NPCS") + "\n")
	if len(m.order) == 0 {
		content.WriteString("None loaded\n")
	}
	for _, id := range m.order {
		st := m.npcs[id]
		cursor := "  "
		if id == m.selected {
			cursor = "▶ "
		}
		content.WriteString(fmt.Sprintf("%s%c %s %s\n", cursor, markerRune(id), displayName(id), st.Position))
		content.WriteString(fmt.Sprintf("    %d messages\n", st.TotalMessagesExchanged))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func (m *ConsoleUI) wrapWidth() int {
	width := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}
	return width
}

// writeChatContent rebuilds the chat log for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	width := m.wrapWidth()

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC WORLD") + "\n\n")
	content.WriteString("Pick an NPC with /npc <id>, then talk to it.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, line := range m.lines {
		content.WriteString(formatLine(line, width) + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("...") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatLine(line chatLine, width int) string {
	switch line.kind {
	case lineNPC:
		prefix := line.speaker + ": "
		return speakerStyle.Render(prefix) + npcStyle.Render(wordwrap.String(line.text, width-len(prefix)))
	case linePlayer:
		return userStyle.Render("You: ") + wordwrap.String(line.text, width-5)
	case lineError:
		return errorStyle.Render("Error: " + wordwrap.String(line.text, width-7))
	default:
		return systemStyle.Render(wordwrap.String(line.text, width))
	}
}

func (m *ConsoleUI) addLine(kind lineKind, speaker, text string) {
	m.lines = append(m.lines, chatLine{kind: kind, speaker: speaker, text: text})
}

func (m *ConsoleUI) addError(err error) {
	m.err = err
	m.addLine(lineError, "", err.Error())
}

func (m *ConsoleUI) setNPCs(npcs map[string]actor.State) {
	m.npcs = npcs
	order := make([]string, 0, len(npcs))
	for id := range npcs {
		order = append(order, id)
	}
	slices.Sort(order)
	m.order = order
	if _, ok := npcs[m.selected]; !ok {
		m.selected = ""
	}
	if m.selected == "" && len(m.order) > 0 {
		m.selected = m.order[0]
	}
}

func (m *ConsoleUI) refresh() {
	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadWorld(), textarea.Blink)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.6) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 3
		m.textarea.SetWidth(chatWidth - 4)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.say(input)
		}

	case worldLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
		} else {
			m.gameMap = msg.gameMap
			m.setNPCs(msg.npcs)
			m.addLine(lineSystem, "", fmt.Sprintf("Loaded a %dx%d map with %d NPCs.", m.gameMap.Width(), m.gameMap.Height(), len(m.order)))
		}
		m.refresh()

	case npcsMsg:
		if msg.err != nil {
			m.addError(msg.err)
		} else {
			m.setNPCs(msg.npcs)
		}
		m.refresh()

	case spokeMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
			m.refresh()
			return m, nil
		}
		m.lastLine = msg.msg.Content
		m.addLine(lineNPC, displayName(msg.npcID), msg.msg.Content)
		m.refresh()
		return m, m.loadNPCs()

	case heardMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
			m.refresh()
			return m, nil
		}
		m.refresh()
		return m, m.loadNPCs()

	case movedMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
		} else {
			m.npcs[msg.npcID] = *msg.state
			m.addLine(lineSystem, "", fmt.Sprintf("%s moved to %s.", displayName(msg.npcID), msg.state.Position))
		}
		m.refresh()

	case movesMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
		} else if len(msg.moves) == 0 {
			m.addLine(lineSystem, "", displayName(msg.npcID)+" has nowhere to go.")
		} else {
			parts := make([]string, len(msg.moves))
			for i, p := range msg.moves {
				parts[i] = p.String()
			}
			m.addLine(lineSystem, "", "Valid moves: "+strings.Join(parts, " "))
		}
		m.refresh()

	case historyMsg:
		m.loading = false
		if msg.err != nil {
			m.addError(msg.err)
		} else {
			m.addLine(lineSystem, "", formatHistory(msg.npcID, msg.history))
		}
		m.refresh()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatHistory(npcID string, h *handlers.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("History for %s:\n", displayName(npcID)))
	if len(h.Messages) == 0 {
		b.WriteString("  no messages\n")
	}
	for _, msg := range h.Messages {
		who := displayName(npcID)
		if msg.Speaker == actor.SpeakerPlayer {
			who = "You"
		}
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", msg.Timestamp.Format("15:04:05"), who, msg.Content))
	}
	if len(h.Movements) > 0 {
		parts := make([]string, len(h.Movements))
		for i, mv := range h.Movements {
			parts[i] = mv.Position.String()
		}
		b.WriteString("  path: " + strings.Join(parts, " → "))
	}
	return strings.TrimRight(b.String(), "\n")
}

const helpText = `Commands:
• /npc <id> - Talk to a different NPC
• /next - Hear the NPC's next line
• /move <x> <y> - Move the NPC
• /moves - List the NPC's valid moves
• /history - Show recent messages and movements
• /copy - Copy the NPC's last line to the clipboard
• /help - Show this help
• Ctrl+C - Quit

Anything else you type is said to the selected NPC.`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	if cmd == "/help" {
		m.addLine(lineSystem, "", helpText)
		m.refresh()
		return m, nil
	}
	if cmd == "/npc" {
		if len(args) != 1 {
			m.addError(fmt.Errorf("usage: /npc <id> (one of %s)", strings.Join(m.order, ", ")))
		} else if _, ok := m.npcs[args[0]]; !ok {
			m.addError(fmt.Errorf("unknown NPC %q (one of %s)", args[0], strings.Join(m.order, ", ")))
		} else {
			m.selected = args[0]
			m.addLine(lineSystem, "", "Now talking to "+displayName(m.selected)+".")
		}
		m.refresh()
		return m, nil
	}

	if m.selected == "" {
		m.addError(fmt.Errorf("no NPC selected"))
		m.refresh()
		return m, nil
	}
	npcID := m.selected

	switch cmd {
	case "/next":
		m.loading = true
		m.refresh()
		return m, m.nextMessage(npcID)

	case "/move":
		if len(args) != 2 {
			m.addError(fmt.Errorf("usage: /move <x> <y>"))
			break
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			m.addError(fmt.Errorf("coordinates must be integers"))
			break
		}
		m.loading = true
		m.refresh()
		return m, m.move(npcID, world.Position{X: x, Y: y})

	case "/moves":
		m.loading = true
		m.refresh()
		return m, m.validMoves(npcID, m.npcs[npcID].Position)

	case "/history":
		m.loading = true
		m.refresh()
		return m, m.history(npcID)

	case "/copy":
		if m.lastLine == "" {
			m.addError(fmt.Errorf("nothing to copy yet"))
		} else if err := clipboard.WriteAll(m.lastLine); err != nil {
			m.addError(fmt.Errorf("failed to copy to clipboard: %w", err))
		} else {
			m.addLine(lineSystem, "", "Copied to clipboard.")
		}

	default:
		m.addError(fmt.Errorf("unknown command %s, try /help", cmd))
	}

	m.refresh()
	return m, nil
}

func (m ConsoleUI) say(text string) (tea.Model, tea.Cmd) {
	if m.selected == "" {
		m.addError(fmt.Errorf("no NPC selected"))
		m.refresh()
		return m, nil
	}
	m.addLine(linePlayer, "", text)
	m.loading = true
	m.refresh()
	return m, m.hear(m.selected, text)
}

func (m ConsoleUI) loadWorld() tea.Cmd {
	return func() tea.Msg {
		gameMap, err := m.api.GetMap()
		if err != nil {
			return worldLoadedMsg{err: err}
		}
		npcs, err := m.api.ListNPCs()
		return worldLoadedMsg{gameMap: gameMap, npcs: npcs, err: err}
	}
}

func (m ConsoleUI) loadNPCs() tea.Cmd {
	return func() tea.Msg {
		npcs, err := m.api.ListNPCs()
		return npcsMsg{npcs, err}
	}
}

func (m ConsoleUI) nextMessage(npcID string) tea.Cmd {
	return func() tea.Msg {
		msg, err := m.api.NextMessage(npcID)
		return spokeMsg{npcID, msg, err}
	}
}

func (m ConsoleUI) hear(npcID, text string) tea.Cmd {
	return func() tea.Msg {
		return heardMsg{npcID, m.api.Hear(npcID, text)}
	}
}

func (m ConsoleUI) move(npcID string, p world.Position) tea.Cmd {
	return func() tea.Msg {
		st, err := m.api.Move(npcID, p)
		return movedMsg{npcID, st, err}
	}
}

func (m ConsoleUI) validMoves(npcID string, from world.Position) tea.Cmd {
	return func() tea.Msg {
		moves, err := m.api.ValidMoves(from)
		return movesMsg{npcID, moves, err}
	}
}

func (m ConsoleUI) history(npcID string) tea.Cmd {
	return func() tea.Msg {
		h, err := m.api.History(npcID, historyLimit)
		return historyMsg{npcID, h, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave the world? NPCs keep their state on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.6) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 1).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
