package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a grid coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Key encodes the position as "x,y", the form used for tile keys.
func (p Position) Key() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

func (p Position) String() string {
	return "(" + p.Key() + ")"
}

// ParseKey decodes an "x,y" key.
func ParseKey(key string) (Position, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Position{}, fmt.Errorf("invalid position key %q", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Position{}, fmt.Errorf("invalid x in position key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Position{}, fmt.Errorf("invalid y in position key %q: %w", key, err)
	}
	return Position{X: x, Y: y}, nil
}

// Orthogonal unit offsets in the order neighbors are reported:
// down, up, right, left.
var neighborOffsets = [4]Position{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}
