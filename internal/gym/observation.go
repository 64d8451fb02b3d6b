package gym

import (
	"github.com/civgym/gym/internal/world"
)

// TileObs is one map tile. Every tile carries its terrain, owner and
// occupancy; Visible and Explored say whether the agent knows the tile.
type TileObs struct {
	Terrain  int  `json:"terrain"`
	Owner    int  `json:"owner"`
	HasCity  bool `json:"has_city"`
	HasUnit  bool `json:"has_unit"`
	Visible  bool `json:"visible"`
	Explored bool `json:"explored"`
	Extras   int  `json:"extras"` // not populated yet, always 0
}

type UnitObs struct {
	ID        int  `json:"id"`
	Type      int  `json:"type"`
	Owner     int  `json:"owner"`
	TileIndex int  `json:"tile_index"`
	HP        int  `json:"hp"`
	MaxHP     int  `json:"max_hp"`
	MovesLeft int  `json:"moves_left"`
	Veteran   int  `json:"veteran"`
	Fortified bool `json:"fortified"`
}

type CityObs struct {
	ID              int  `json:"id"`
	Owner           int  `json:"owner"`
	TileIndex       int  `json:"tile_index"`
	Size            int  `json:"size"`
	FoodStock       int  `json:"food_stock"`
	ShieldStock     int  `json:"shield_stock"`
	ProducingType   int  `json:"producing_type"`
	ProducingIsUnit bool `json:"producing_is_unit"`
	TurnsToComplete int  `json:"turns_to_complete"`
}

type PlayerObs struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	IsAlive       bool   `json:"is_alive"`
	IsAI          bool   `json:"is_ai"`
	IsBarbarian   bool   `json:"is_barbarian"`
	Gold          int    `json:"gold"`
	TaxRate       int    `json:"tax_rate"`
	ScienceRate   int    `json:"science_rate"`
	LuxuryRate    int    `json:"luxury_rate"`
	Researching   int    `json:"researching"`
	ResearchBulbs int    `json:"research_bulbs"`
	NumCities     int    `json:"num_cities"`
	NumUnits      int    `json:"num_units"`
	Score         int    `json:"score"`
}

// Observation is a snapshot of the game for the controlled player. Its
// slices are reused across GetObservation calls: they grow as needed and
// keep their capacity until Release.
type Observation struct {
	Width            int         `json:"width"`
	Height           int         `json:"height"`
	Turn             int         `json:"turn"`
	Year             int         `json:"year"`
	Phase            int         `json:"phase"`
	CurrentPlayer    int         `json:"current_player"`
	ControlledPlayer int         `json:"controlled_player"`
	Tiles            []TileObs   `json:"tiles"`
	Units            []UnitObs   `json:"units"`
	Cities           []CityObs   `json:"cities"`
	Players          []PlayerObs `json:"players"`
	GameOver         bool        `json:"game_over"`
	Winner           int         `json:"winner"`
}

// Reserve makes room for at least units and cities entries without further
// allocation.
func (o *Observation) Reserve(units, cities int) {
	if cap(o.Units) < units {
		o.Units = make([]UnitObs, 0, units)
	}
	if cap(o.Cities) < cities {
		o.Cities = make([]CityObs, 0, cities)
	}
}

// Release drops every buffer the observation holds.
func (o *Observation) Release() {
	*o = Observation{Winner: -1}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// GetObservation fills obs for the controlled player.
func (e *Env) GetObservation(obs *Observation) error {
	if obs == nil {
		return ErrNilHandle
	}
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.running {
		return ErrNoGame
	}
	eng := e.engine
	me := eng.PlayerByIndex(e.controlled)
	info := eng.Info()
	m := eng.Map()

	obs.Width, obs.Height = m.Width, m.Height
	obs.Turn, obs.Year, obs.Phase = info.Turn, info.Year, info.Phase
	obs.CurrentPlayer = info.Phase
	obs.ControlledPlayer = e.controlled

	e.encodeTiles(obs, m, me)
	e.encodeUnits(obs, me)
	e.encodeCities(obs, me)
	e.encodePlayers(obs)

	obs.GameOver, obs.Winner = e.checkTerminal()
	return nil
}

func (e *Env) encodeTiles(obs *Observation, m *world.Map, me *world.Player) {
	obs.Tiles = resize(obs.Tiles, len(m.Tiles))
	for i := range m.Tiles {
		t := &m.Tiles[i]
		known := e.engine.MapIsKnown(t, me)
		obs.Tiles[i] = TileObs{
			Terrain:  t.Terrain.Index,
			Owner:    t.Owner,
			HasCity:  t.HasCity(),
			HasUnit:  t.HasUnits(),
			Visible:  known,
			Explored: known,
		}
	}
}

// encodeUnits counts the units the agent knows about, sizes the buffer,
// then fills it in a second pass.
func (e *Env) encodeUnits(obs *Observation, me *world.Player) {
	eng := e.engine
	players := eng.Players()
	n := 0
	for _, p := range players {
		for _, u := range eng.UnitsOf(p.Index) {
			if eng.MapIsKnown(eng.UnitTile(u), me) {
				n++
			}
		}
	}
	obs.Reserve(n, 0)
	obs.Units = obs.Units[:0]
	for _, p := range players {
		for _, u := range eng.UnitsOf(p.Index) {
			if !eng.MapIsKnown(eng.UnitTile(u), me) {
				continue
			}
			obs.Units = append(obs.Units, UnitObs{
				ID:        int(u.ID),
				Type:      u.Type.Index,
				Owner:     u.Owner,
				TileIndex: u.Tile,
				HP:        u.HP,
				MaxHP:     u.Type.HP,
				MovesLeft: u.MovesLeft,
				Veteran:   u.Veteran,
				Fortified: u.IsFortified(),
			})
		}
	}
}

func (e *Env) encodeCities(obs *Observation, me *world.Player) {
	eng := e.engine
	players := eng.Players()
	n := 0
	for _, p := range players {
		for _, c := range eng.CitiesOf(p.Index) {
			if eng.MapIsKnown(eng.TileByIndex(c.Tile), me) {
				n++
			}
		}
	}
	obs.Reserve(0, n)
	obs.Cities = obs.Cities[:0]
	for _, p := range players {
		for _, c := range eng.CitiesOf(p.Index) {
			if !eng.MapIsKnown(eng.TileByIndex(c.Tile), me) {
				continue
			}
			obs.Cities = append(obs.Cities, CityObs{
				ID:              int(c.ID),
				Owner:           c.Owner,
				TileIndex:       c.Tile,
				Size:            c.Size,
				FoodStock:       c.FoodStock,
				ShieldStock:     c.ShieldStock,
				ProducingType:   c.Production.Value,
				ProducingIsUnit: c.Production.Kind == world.ProductionUnit,
				TurnsToComplete: eng.CityProductionTurnsToBuild(c),
			})
		}
	}
}

// encodePlayers reports every player regardless of visibility.
func (e *Env) encodePlayers(obs *Observation) {
	eng := e.engine
	players := eng.Players()
	obs.Players = resize(obs.Players, len(players))
	for i, p := range players {
		obs.Players[i] = PlayerObs{
			Index:         p.Index,
			Name:          p.Name,
			IsAlive:       p.IsAlive,
			IsAI:          p.IsAI,
			IsBarbarian:   p.IsBarbarian,
			Gold:          p.Economic.Gold,
			TaxRate:       p.Economic.Tax,
			ScienceRate:   p.Economic.Science,
			LuxuryRate:    p.Economic.Luxury,
			Researching:   p.Research.Researching,
			ResearchBulbs: p.Research.Bulbs,
			NumCities:     len(eng.CitiesOf(p.Index)),
			NumUnits:      len(eng.UnitsOf(p.Index)),
			Score:         p.Score,
		}
	}
}
