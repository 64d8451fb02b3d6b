package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/civgym/gym/internal/data"
	"go.uber.org/zap"
)

const noiseCell = 4

// GenerateMap fills the allocated map with terrain from seed and chooses one
// start position per non-barbarian player. Every such player must already
// have its map state: placement reveals the start area to its owner.
func (s *Server) GenerateMap(seed uint32, startUnit *data.UnitType) error {
	g := s.game
	if g == nil {
		return ErrNoGame
	}
	if g.Map == nil {
		return ErrNoMap
	}
	var starters []*Player
	for _, p := range g.players {
		if p.IsBarbarian {
			continue
		}
		if !p.MapInitialized() {
			return fmt.Errorf("%w: player %d", ErrPlayerMap, p.Index)
		}
		starters = append(starters, p)
	}

	gen := rand.New(rand.NewSource(int64(seed)))
	heights := heightField(gen, g.Map.Width, g.Map.Height)
	s.assignTerrain(gen, heights)

	starts, err := s.placeStarts(startUnit, len(starters))
	if err != nil {
		return err
	}
	g.Map.startPositions = starts
	for i, p := range starters {
		s.revealAround(p, g.Map.TileByIndex(starts[i]), g.Ruleset.Game.CityVisionRadiusSq)
	}
	s.log.Debug("map generated",
		zap.Uint32("seed", seed),
		zap.Int("width", g.Map.Width),
		zap.Int("height", g.Map.Height),
		zap.Int("starts", len(starts)),
	)
	return nil
}

// heightField builds value noise: a coarse random lattice, bilinearly
// interpolated, plus fine jitter, pulled down towards the map edge.
func heightField(gen *rand.Rand, w, h int) []float64 {
	gw, gh := w/noiseCell+2, h/noiseCell+2
	lattice := make([]float64, gw*gh)
	for i := range lattice {
		lattice[i] = gen.Float64()
	}
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x)/noiseCell, float64(y)/noiseCell
			x0, y0 := int(fx), int(fy)
			tx, ty := fx-float64(x0), fy-float64(y0)
			a := lattice[y0*gw+x0]
			b := lattice[y0*gw+x0+1]
			c := lattice[(y0+1)*gw+x0]
			d := lattice[(y0+1)*gw+x0+1]
			top := a + (b-a)*tx
			bottom := c + (d-c)*tx
			v := top + (bottom-top)*ty + 0.15*gen.Float64()

			edge := min(x, y, w-1-x, h-1-y)
			if edge < 3 {
				v *= 0.4 + 0.2*float64(edge)
			}
			out[y*w+x] = v
		}
	}
	return out
}

func (s *Server) assignTerrain(gen *rand.Rand, heights []float64) {
	g := s.game
	m := g.Map
	ters := g.Ruleset.Terrains

	sorted := append([]float64(nil), heights...)
	sort.Float64s(sorted)
	landPct := s.settings.Get("landpercent")
	cut := sorted[min(len(sorted)-1, len(sorted)*(100-landPct)/100)]

	land := make([]bool, len(heights))
	var landHeights []float64
	for i, v := range heights {
		t := &m.Tiles[i]
		if v >= cut && t.X > 0 && t.Y > 0 && t.X < m.Width-1 && t.Y < m.Height-1 {
			land[i] = true
			landHeights = append(landHeights, v)
		}
	}
	sort.Float64s(landHeights)
	mountainCut, hillCut := math.Inf(1), math.Inf(1)
	if n := len(landHeights); n > 0 {
		mountainCut = landHeights[n*92/100]
		hillCut = landHeights[n*82/100]
	}

	named := func(name string) *data.Terrain {
		if t := ters.ByName(name); t != nil {
			return t
		}
		return ters.Get(0)
	}

	for i := range m.Tiles {
		t := &m.Tiles[i]
		if !land[i] {
			continue
		}
		lat := math.Abs(float64(t.Y)-float64(m.Height-1)/2) / (float64(m.Height-1) / 2)
		switch {
		case lat > 0.92:
			t.Terrain = named("Glacier")
		case lat > 0.8:
			t.Terrain = named("Tundra")
		case heights[i] >= mountainCut:
			t.Terrain = named("Mountains")
		case heights[i] >= hillCut:
			t.Terrain = named("Hills")
		default:
			t.Terrain = named(pickWeighted(gen, climateWeights(lat)))
		}
	}

	// Water: shallow next to land, deep further out.
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if land[i] {
			continue
		}
		shallow := false
		m.RadiusIterate(t, 5, func(n *Tile) {
			if land[n.Index] {
				shallow = true
			}
		})
		if shallow {
			t.Terrain = named("Ocean")
		} else {
			t.Terrain = named("Deep Ocean")
		}
	}
}

type weighted struct {
	name   string
	weight int
}

func climateWeights(lat float64) []weighted {
	if lat < 0.3 {
		return []weighted{{"Grassland", 30}, {"Plains", 20}, {"Jungle", 20}, {"Forest", 15}, {"Desert", 10}, {"Swamp", 5}}
	}
	return []weighted{{"Grassland", 35}, {"Plains", 30}, {"Forest", 20}, {"Desert", 8}, {"Swamp", 7}}
}

func pickWeighted(gen *rand.Rand, ws []weighted) string {
	total := 0
	for _, w := range ws {
		total += w.weight
	}
	r := gen.Intn(total)
	for _, w := range ws {
		if r < w.weight {
			return w.name
		}
		r -= w.weight
	}
	return ws[len(ws)-1].name
}

// placeStarts picks n start tiles, best land first, relaxing the spacing
// until everyone fits.
func (s *Server) placeStarts(startUnit *data.UnitType, n int) ([]int, error) {
	g := s.game
	m := g.Map
	if n == 0 {
		return nil, nil
	}

	type candidate struct {
		tile  *Tile
		value int
	}
	var cands []candidate
	landTiles := 0
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if t.IsOcean() {
			continue
		}
		landTiles++
		if startUnit != nil && !canExistAt(startUnit, t) {
			continue
		}
		if name := t.Terrain.Name; name == "Glacier" || name == "Mountains" || name == "Inaccessible" {
			continue
		}
		v := 0
		m.RadiusIterate(t, g.Ruleset.Game.CityRadiusSq, func(o *Tile) {
			f, sh, tr := s.cityTileOutput(o)
			v += f*3 + sh*2 + tr
		})
		cands = append(cands, candidate{tile: t, value: v})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].value > cands[j].value })

	spacing := max(3, int(math.Sqrt(float64(landTiles)/float64(n))))
	for ; spacing >= 2; spacing-- {
		var chosen []*Tile
		for _, c := range cands {
			ok := true
			for _, other := range chosen {
				if m.RealDistance(c.tile, other) < spacing {
					ok = false
					break
				}
			}
			if ok {
				chosen = append(chosen, c.tile)
				if len(chosen) == n {
					break
				}
			}
		}
		if len(chosen) == n {
			out := make([]int, n)
			for i, t := range chosen {
				out[i] = t.Index
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: need %d, map has %d usable land tiles", ErrNoStartPos, n, len(cands))
}
