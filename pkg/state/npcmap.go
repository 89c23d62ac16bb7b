package state

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jwebster45206/npc-world/pkg/actor"
)

// SpecList is an NPC file's contents. It accepts either an array of specs or
// an object keyed by NPC id; object entries take their id from the key and
// are ordered by id.
type SpecList []actor.NPCSpec

// UnmarshalJSON allows SpecList to accept either an array or a map.
func (l *SpecList) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as an array first
	var asArray []actor.NPCSpec
	if err := json.Unmarshal(data, &asArray); err == nil {
		*l = asArray
		return nil
	}
	// Try to unmarshal as a map keyed by id
	var asMap map[string]actor.NPCSpec
	if err := json.Unmarshal(data, &asMap); err == nil {
		ids := make([]string, 0, len(asMap))
		for id := range asMap {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		result := make([]actor.NPCSpec, 0, len(asMap))
		for _, id := range ids {
			spec := asMap[id]
			if spec.ID != "" && spec.ID != id {
				return fmt.Errorf("npcs: key %q does not match id %q", id, spec.ID)
			}
			spec.ID = id
			result = append(result, spec)
		}
		*l = result
		return nil
	}
	return fmt.Errorf("npcs: not an array or map: %s", string(data))
}
