package world

// TileType is the kind of terrain in a cell.
type TileType string

const (
	TileFloor TileType = "floor"
	TileWall  TileType = "wall"
)

// Tile is a single map cell.
type Tile struct {
	Type     TileType `json:"type"`
	Walkable bool     `json:"walkable"`
}

var (
	floorTile = Tile{Type: TileFloor, Walkable: true}
	wallTile  = Tile{Type: TileWall, Walkable: false}
)

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	if t.Type == TileWall {
		return '#'
	}
	return '.'
}
