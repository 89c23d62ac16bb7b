package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwebster45206/npc-world/internal/errors"
	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/world"
)

// DefaultNPCSpecs returns the two NPCs every world starts with.
func DefaultNPCSpecs() []actor.NPCSpec {
	return []actor.NPCSpec{
		{
			ID:       "yellow_npc",
			Position: world.Position{X: 15, Y: 10},
			Color:    "#ff0",
			Script:   []string{"Hello"},
		},
		{
			ID:       "blue_npc",
			Position: world.Position{X: 10, Y: 10},
			Color:    "#00f",
			Script:   []string{"Bonjour!", "How are you?", "Where are you going?"},
		},
	}
}

// LoadNPCSpecs reads NPC specs from a JSON file in either SpecList form.
func LoadNPCSpecs(path string) ([]actor.NPCSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read npc file: %w", err)
	}
	var specs SpecList
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal npc specs from %s: %w", path, err)
	}
	return specs, nil
}

// Roster is the fixed set of NPCs in the world, keyed by id. It is built
// once at startup; NPCs are never added or removed afterwards.
type Roster struct {
	npcs  map[string]*actor.NPC
	order []string
}

// NewRoster builds NPCs from specs. Ids must be unique.
func NewRoster(specs []actor.NPCSpec, opts actor.Options) (*Roster, error) {
	r := &Roster{npcs: make(map[string]*actor.NPC, len(specs))}
	for i := range specs {
		spec := specs[i]
		if _, exists := r.npcs[spec.ID]; exists {
			return nil, errors.InvalidArgumentf("duplicate npc id: %s", spec.ID)
		}
		npc, err := actor.NewNPCFromSpec(&spec, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build npc %q", spec.ID)
		}
		r.npcs[spec.ID] = npc
		r.order = append(r.order, spec.ID)
	}
	return r, nil
}

// Get returns the NPC with the given id or a NotFound error.
func (r *Roster) Get(id string) (*actor.NPC, error) {
	npc, ok := r.npcs[id]
	if !ok {
		return nil, errors.NotFoundf("npc not found: %s", id).WithMeta("npc_id", id)
	}
	return npc, nil
}

// All returns the NPCs in the order they were added.
func (r *Roster) All() []*actor.NPC {
	out := make([]*actor.NPC, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.npcs[id])
	}
	return out
}

// States returns every NPC's serialized state keyed by id.
func (r *Roster) States() map[string]actor.State {
	out := make(map[string]actor.State, len(r.npcs))
	for id, npc := range r.npcs {
		out[id] = npc.State()
	}
	return out
}

// Len returns the number of NPCs.
func (r *Roster) Len() int {
	return len(r.npcs)
}
