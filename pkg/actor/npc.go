package actor

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/jwebster45206/npc-world/internal/clock"
	"github.com/jwebster45206/npc-world/internal/errors"
	"github.com/jwebster45206/npc-world/pkg/history"
	"github.com/jwebster45206/npc-world/pkg/world"
)

const (
	DefaultMaxMovementHistory = 100
	DefaultMaxMessageHistory  = 50

	// DefaultConversationLimit is the number of recent messages embedded in
	// an NPC's serialized state.
	DefaultConversationLimit = 10
)

// ErrEmptyScript is returned when an NPC has no dialogue lines.
var ErrEmptyScript = errors.FailedPrecondition("npc has no dialogue lines")

// Speaker identifies who produced a message.
type Speaker string

const (
	SpeakerNPC    Speaker = "npc"
	SpeakerPlayer Speaker = "player"
)

// Message is one line of conversation. Seq increases with every message an
// NPC records and breaks timestamp ties.
type Message struct {
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	Speaker       Speaker   `json:"speaker"`
	HeardByPlayer bool      `json:"heard_by_player"`
	Seq           uint64    `json:"seq"`
}

// Movement records a position an NPC moved to.
type Movement struct {
	Position  world.Position `json:"position"`
	Timestamp time.Time      `json:"timestamp"`
}

// NPCSpec is the serializable specification for a non-player character
type NPCSpec struct {
	ID       string         `json:"id"`
	Position world.Position `json:"position"`
	Color    string         `json:"color"`
	Script   []string       `json:"available_messages"`
}

// Validate checks that the spec can build an NPC.
func (s *NPCSpec) Validate() error {
	if s.ID == "" {
		return errors.InvalidArgument("npc id is required")
	}
	if len(s.Script) == 0 {
		return errors.Wrapf(ErrEmptyScript, "npc %s has no dialogue lines", s.ID)
	}
	return nil
}

// Options bounds an NPC's histories and supplies its clock.
// Zero values fall back to the defaults.
type Options struct {
	MaxMovementHistory int
	MaxMessageHistory  int
	Clock              clock.Clock
}

// NPC is a scripted character. It cycles through its dialogue script and
// keeps bounded movement and message histories, evicting the oldest entry
// first. Methods are safe for concurrent use.
type NPC struct {
	mu sync.Mutex

	id       string
	position world.Position
	color    string
	script   []string

	cursor    int
	total     int
	seq       uint64
	messages  *history.Ring[Message]
	movements *history.Ring[Movement]
	clock     clock.Clock
}

// NewNPCFromSpec creates an NPC from a spec. The starting position is
// recorded as the first movement.
func NewNPCFromSpec(spec *NPCSpec, opts Options) (*NPC, error) {
	if spec == nil {
		return nil, errors.InvalidArgument("spec cannot be nil")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxMovementHistory <= 0 {
		opts.MaxMovementHistory = DefaultMaxMovementHistory
	}
	if opts.MaxMessageHistory <= 0 {
		opts.MaxMessageHistory = DefaultMaxMessageHistory
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	npc := &NPC{
		id:        spec.ID,
		position:  spec.Position,
		color:     spec.Color,
		script:    slices.Clone(spec.Script),
		messages:  history.New[Message](opts.MaxMessageHistory),
		movements: history.New[Movement](opts.MaxMovementHistory),
		clock:     opts.Clock,
	}
	npc.movements.Push(Movement{Position: spec.Position, Timestamp: npc.clock.Now()})
	return npc, nil
}

// ID returns the NPC's identifier.
func (n *NPC) ID() string { return n.id }

// Color returns the NPC's display color.
func (n *NPC) Color() string { return n.color }

// Script returns a copy of the dialogue lines.
func (n *NPC) Script() []string { return slices.Clone(n.script) }

// Position returns the current position.
func (n *NPC) Position() world.Position {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

// MoveTo sets the position and records the move. It does not check
// walkability; callers validate against the map first.
func (n *NPC) MoveTo(p world.Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = p
	n.movements.Push(Movement{Position: p, Timestamp: n.clock.Now()})
}

// Speak returns the next scripted line and advances the cursor, wrapping
// at the end of the script.
func (n *NPC) Speak() (Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.script) == 0 {
		return Message{}, ErrEmptyScript
	}
	content := n.script[n.cursor]
	n.cursor = (n.cursor + 1) % len(n.script)
	return n.record(content, SpeakerNPC, true), nil
}

// Hear records a line spoken by the player.
func (n *NPC) Hear(content string) Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record(content, SpeakerPlayer, false)
}

func (n *NPC) record(content string, speaker Speaker, heardByPlayer bool) Message {
	n.seq++
	n.total++
	msg := Message{
		Content:       content,
		Timestamp:     n.clock.Now(),
		Speaker:       speaker,
		HeardByPlayer: heardByPlayer,
		Seq:           n.seq,
	}
	n.messages.Push(msg)
	return msg
}

// RecentConversations returns up to limit of the newest messages sorted by
// timestamp, oldest first.
func (n *NPC) RecentConversations(limit int) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.recentConversations(limit)
}

func (n *NPC) recentConversations(limit int) []Message {
	recent := n.messages.Last(limit)
	slices.SortStableFunc(recent, func(a, b Message) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	return recent
}

// Movements returns up to limit of the newest movements, oldest first.
func (n *NPC) Movements(limit int) []Movement {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.movements.Last(limit)
}

// MessageCount returns the number of messages currently retained.
func (n *NPC) MessageCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.messages.Len()
}

// TotalMessages returns how many messages the NPC has exchanged since it
// was created, including evicted ones.
func (n *NPC) TotalMessages() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.total
}

// State is the wire form of an NPC. CurrentPosition duplicates Position for
// older clients.
type State struct {
	ID                     string         `json:"id"`
	Position               world.Position `json:"position"`
	Color                  string         `json:"color"`
	AvailableMessages      []string       `json:"available_messages"`
	MessageHistory         []Message      `json:"message_history"`
	CurrentPosition        world.Position `json:"current_position"`
	TotalMessagesExchanged int            `json:"total_messages_exchanged"`
}

// State returns a snapshot of the NPC with its DefaultConversationLimit
// most recent messages.
func (n *NPC) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return State{
		ID:                     n.id,
		Position:               n.position,
		Color:                  n.color,
		AvailableMessages:      slices.Clone(n.script),
		MessageHistory:         n.recentConversations(DefaultConversationLimit),
		CurrentPosition:        n.position,
		TotalMessagesExchanged: n.total,
	}
}
