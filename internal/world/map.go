package world

import (
	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/data"
)

// Tile is one map square. Units lists the stack in arrival order.
type Tile struct {
	Index   int
	X, Y    int
	Terrain *data.Terrain
	Owner   int
	Extras  uint8
	Units   []ecs.EntityID
	City    ecs.EntityID
}

func (t *Tile) HasExtra(bit uint8) bool { return t.Extras&bit != 0 }
func (t *Tile) HasCity() bool           { return t.City != 0 }
func (t *Tile) HasUnits() bool          { return len(t.Units) > 0 }
func (t *Tile) IsOcean() bool           { return t.Terrain != nil && t.Terrain.IsOcean() }

func (t *Tile) removeUnit(id ecs.EntityID) {
	for i, u := range t.Units {
		if u == id {
			t.Units = append(t.Units[:i], t.Units[i+1:]...)
			return
		}
	}
}

// Map is a non-wrapping rectangle of tiles indexed y*Width+x.
// Accessed only from the simulation goroutine, no locks.
type Map struct {
	Width, Height int
	Tiles         []Tile

	startPositions []int // tile index per start slot
}

func newMap(width, height int) *Map {
	m := &Map{Width: width, Height: height, Tiles: make([]Tile, width*height)}
	for i := range m.Tiles {
		m.Tiles[i] = Tile{Index: i, X: i % width, Y: i / width, Owner: NoOwner}
	}
	return m
}

// Tile returns the tile at (x, y), or nil when off the map.
func (m *Map) Tile(x, y int) *Tile {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return nil
	}
	return &m.Tiles[y*m.Width+x]
}

// TileByIndex returns the tile with the given index, or nil.
func (m *Map) TileByIndex(i int) *Tile {
	if i < 0 || i >= len(m.Tiles) {
		return nil
	}
	return &m.Tiles[i]
}

// Step returns the neighbour of t in direction d, or nil at the map edge.
func (m *Map) Step(t *Tile, d Direction) *Tile {
	if t == nil || !d.Valid() {
		return nil
	}
	dx, dy := d.Delta()
	return m.Tile(t.X+dx, t.Y+dy)
}

// SqDistance is the squared Euclidean distance between two tiles.
func (m *Map) SqDistance(a, b *Tile) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// RealDistance is the move distance (Chebyshev) between two tiles.
func (m *Map) RealDistance(a, b *Tile) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether b is one step away from a.
func (m *Map) Adjacent(a, b *Tile) bool {
	return a != b && m.RealDistance(a, b) == 1
}

// RadiusIterate visits every tile within radiusSq of center, center included.
func (m *Map) RadiusIterate(center *Tile, radiusSq int, fn func(*Tile)) {
	r := 0
	for (r+1)*(r+1) <= radiusSq {
		r++
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > radiusSq {
				continue
			}
			if t := m.Tile(center.X+dx, center.Y+dy); t != nil {
				fn(t)
			}
		}
	}
}

// IsCoastal reports whether t borders an ocean tile.
func (m *Map) IsCoastal(t *Tile) bool {
	for d := Direction(0); d < NumDirections; d++ {
		if n := m.Step(t, d); n != nil && n.IsOcean() {
			return true
		}
	}
	return false
}

// StartPositions returns the tile indices chosen by map generation.
func (m *Map) StartPositions() []int {
	return m.startPositions
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
