// Package world holds the tile grid NPCs move on.
package world

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
)

// DefaultSpawnPoints are forced walkable on every generated map.
var DefaultSpawnPoints = []Position{
	{X: 5, Y: 5},
	{X: 15, Y: 10},
	{X: 10, Y: 10},
}

// Config controls map generation.
type Config struct {
	Width           int
	Height          int
	WallProbability float64
	SpawnPoints     []Position
}

// DefaultConfig returns the stock 20x15 map configuration.
func DefaultConfig() Config {
	return Config{
		Width:           20,
		Height:          15,
		WallProbability: 0.2,
		SpawnPoints:     DefaultSpawnPoints,
	}
}

// Validate checks the dimensions and wall probability.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("map dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.WallProbability < 0 || c.WallProbability > 1 {
		return fmt.Errorf("wall probability must be within [0,1], got %v", c.WallProbability)
	}
	return nil
}

// Map is a dense width x height grid stored row-major (y*width+x).
// Border cells are always walls. The walkable set mirrors the floor tiles.
type Map struct {
	width    int
	height   int
	tiles    []Tile
	walkable map[Position]struct{}
	spawns   []Position
}

// Generate builds a random map. Border cells become walls; interior cells
// become walls with probability cfg.WallProbability. Spawn points that lie
// strictly inside the border are then forced to floor. Spawn points are not
// guaranteed to be connected to each other.
func Generate(cfg Config, rng *rand.Rand) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := newMap(cfg.Width, cfg.Height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			p := Position{X: x, Y: y}
			if m.onBorder(p) || rng.Float64() < cfg.WallProbability {
				m.tiles[m.index(p)] = wallTile
			} else {
				m.tiles[m.index(p)] = floorTile
			}
		}
	}

	for _, p := range cfg.SpawnPoints {
		if !m.InBounds(p) || m.onBorder(p) {
			continue
		}
		m.tiles[m.index(p)] = floorTile
		m.spawns = append(m.spawns, p)
	}

	m.indexWalkable()
	return m, nil
}

// Parse builds a map from rows of '#' (wall) and '.' (floor) characters.
// Every row must have the same length. Border rules are not enforced.
func Parse(rows ...string) (*Map, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("map must have at least one row and column")
	}
	m := newMap(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.width {
			return nil, fmt.Errorf("row %d has length %d, want %d", y, len(row), m.width)
		}
		for x, c := range row {
			switch c {
			case '#':
				m.tiles[y*m.width+x] = wallTile
			case '.':
				m.tiles[y*m.width+x] = floorTile
			default:
				return nil, fmt.Errorf("unknown tile %q at %d,%d", c, x, y)
			}
		}
	}
	m.indexWalkable()
	return m, nil
}

func newMap(width, height int) *Map {
	return &Map{
		width:    width,
		height:   height,
		tiles:    make([]Tile, width*height),
		walkable: make(map[Position]struct{}),
	}
}

func (m *Map) indexWalkable() {
	clear(m.walkable)
	for i, t := range m.tiles {
		if t.Walkable {
			m.walkable[Position{X: i % m.width, Y: i / m.width}] = struct{}{}
		}
	}
}

func (m *Map) index(p Position) int {
	return p.Y*m.width + p.X
}

func (m *Map) onBorder(p Position) bool {
	return p.X == 0 || p.Y == 0 || p.X == m.width-1 || p.Y == m.height-1
}

// Width returns the number of columns.
func (m *Map) Width() int { return m.width }

// Height returns the number of rows.
func (m *Map) Height() int { return m.height }

// SpawnPoints returns the spawn points that were forced walkable.
func (m *Map) SpawnPoints() []Position {
	return append([]Position(nil), m.spawns...)
}

// InBounds reports whether p lies in [0,width)x[0,height).
func (m *Map) InBounds(p Position) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}

// TileAt returns the tile at p. ok is false outside the grid.
func (m *Map) TileAt(p Position) (tile Tile, ok bool) {
	if !m.InBounds(p) {
		return Tile{}, false
	}
	return m.tiles[m.index(p)], true
}

// IsWalkable reports whether p is inside the grid and walkable.
func (m *Map) IsWalkable(p Position) bool {
	if !m.InBounds(p) {
		return false
	}
	_, ok := m.walkable[p]
	return ok
}

// ValidMoves returns the walkable orthogonal neighbors of p in the order
// down, up, right, left. p itself is not checked.
func (m *Map) ValidMoves(p Position) []Position {
	moves := make([]Position, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		next := p.Add(d.X, d.Y)
		if m.IsWalkable(next) {
			moves = append(moves, next)
		}
	}
	return moves
}

// WalkablePositions lists every walkable cell in row-major order.
func (m *Map) WalkablePositions() []Position {
	out := make([]Position, 0, len(m.walkable))
	for i, t := range m.tiles {
		if t.Walkable {
			out = append(out, Position{X: i % m.width, Y: i / m.width})
		}
	}
	return out
}

// MapState is the wire form of a Map. Tiles are keyed by "x,y" and walkable
// positions are [x, y] pairs.
type MapState struct {
	Width             int             `json:"width"`
	Height            int             `json:"height"`
	Tiles             map[string]Tile `json:"tiles"`
	WalkablePositions [][2]int        `json:"walkable_positions"`
}

// State returns the serializable snapshot of the map.
func (m *Map) State() MapState {
	tiles := make(map[string]Tile, len(m.tiles))
	for i, t := range m.tiles {
		tiles[Position{X: i % m.width, Y: i / m.width}.Key()] = t
	}
	walkable := make([][2]int, 0, len(m.walkable))
	for _, p := range m.WalkablePositions() {
		walkable = append(walkable, [2]int{p.X, p.Y})
	}
	return MapState{
		Width:             m.width,
		Height:            m.height,
		Tiles:             tiles,
		WalkablePositions: walkable,
	}
}

// MarshalJSON encodes the map as its MapState.
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.State())
}

// Render draws the map as text, one row per line. Markers override the tile
// character at their position; markers outside the grid are ignored.
func (m *Map) Render(markers map[Position]rune) string {
	var b strings.Builder
	b.Grow((m.width + 1) * m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			p := Position{X: x, Y: y}
			if r, ok := markers[p]; ok {
				b.WriteRune(r)
				continue
			}
			b.WriteRune(m.tiles[m.index(p)].Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FromState rebuilds a Map from its wire form. Cells missing from Tiles are
// treated as walls.
func FromState(s MapState) (*Map, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("map dimensions must be positive, got %dx%d", s.Width, s.Height)
	}
	m := newMap(s.Width, s.Height)
	for i := range m.tiles {
		m.tiles[i] = wallTile
	}
	for key, t := range s.Tiles {
		p, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		if !m.InBounds(p) {
			return nil, fmt.Errorf("tile %s outside %dx%d map", key, s.Width, s.Height)
		}
		m.tiles[m.index(p)] = t
	}
	m.indexWalkable()
	return m, nil
}
