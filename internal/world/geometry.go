package world

// Direction is one of the eight map directions, in engine order.
type Direction int

const (
	DirNorthWest Direction = iota
	DirNorth
	DirNorthEast
	DirWest
	DirEast
	DirSouthWest
	DirSouth
	DirSouthEast
)

// NumDirections is the number of valid directions.
const NumDirections = 8

var (
	dirDX = [NumDirections]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dirDY = [NumDirections]int{-1, -1, -1, 0, 0, 1, 1, 1}

	dirNames = [NumDirections]string{"NW", "N", "NE", "W", "E", "SW", "S", "SE"}
)

func (d Direction) Valid() bool { return d >= 0 && d < NumDirections }

func (d Direction) String() string {
	if !d.Valid() {
		return "?"
	}
	return dirNames[d]
}

// IsCardinal reports whether d is N, W, E or S.
func (d Direction) IsCardinal() bool {
	return d == DirNorth || d == DirWest || d == DirEast || d == DirSouth
}

// Delta returns the coordinate offset of one step in direction d.
func (d Direction) Delta() (dx, dy int) {
	return dirDX[d], dirDY[d]
}

// DirectionTo returns the direction leading from (x0,y0) to the adjacent
// (x1,y1), or -1 when they are not adjacent.
func DirectionTo(x0, y0, x1, y1 int) Direction {
	for d := Direction(0); d < NumDirections; d++ {
		if x0+dirDX[d] == x1 && y0+dirDY[d] == y1 {
			return d
		}
	}
	return -1
}
