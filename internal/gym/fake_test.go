package gym

import (
	"fmt"
	"testing"

	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/world"
	"go.uber.org/zap"
)

// fakeEngine embeds Engine so unimplemented methods panic. It records the
// calls it sees.
type fakeEngine struct {
	Engine

	info    world.GameInfo
	players []*world.Player
	units   map[int]*world.Unit
	cities  map[int]*world.City
	tiles   map[int]*world.Tile
	enabled bool // IsActionEnabled answer
	calls   []string
}

func newFake() *fakeEngine {
	return &fakeEngine{
		players: []*world.Player{
			{Index: 0, IsAlive: true},
			{Index: 1, IsAlive: true, IsAI: true},
		},
		units:  map[int]*world.Unit{},
		cities: map[int]*world.City{},
		tiles:  map[int]*world.Tile{},
	}
}

func (f *fakeEngine) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeEngine) addUnit(id, owner, tile int) *world.Unit {
	u := &world.Unit{Owner: owner, Tile: tile, MovesLeft: world.MoveFrags}
	u.ID = idOf(id)
	f.units[id] = u
	f.tile(tile)
	return u
}

func (f *fakeEngine) addCity(id, owner int) *world.City {
	c := &world.City{Owner: owner}
	c.ID = idOf(id)
	f.cities[id] = c
	return c
}

func (f *fakeEngine) tile(i int) *world.Tile {
	t, ok := f.tiles[i]
	if !ok {
		t = &world.Tile{Index: i}
		f.tiles[i] = t
	}
	return t
}

func (f *fakeEngine) Info() world.GameInfo      { return f.info }
func (f *fakeEngine) Players() []*world.Player { return f.players }

func (f *fakeEngine) PlayerByIndex(i int) *world.Player {
	if i < 0 || i >= len(f.players) {
		return nil
	}
	return f.players[i]
}

func (f *fakeEngine) UnitByID(id int) *world.Unit       { return f.units[id] }
func (f *fakeEngine) CityByID(id int) *world.City       { return f.cities[id] }
func (f *fakeEngine) UnitTile(u *world.Unit) *world.Tile { return f.tile(u.Tile) }

func (f *fakeEngine) TileByIndex(i int) *world.Tile {
	if i < 0 {
		return nil
	}
	return f.tile(i)
}

// MapStep puts the neighbour in direction d at index t*10+d.
func (f *fakeEngine) MapStep(t *world.Tile, d world.Direction) *world.Tile {
	f.record("MapStep(%d,%s)", t.Index, d)
	return f.tile(t.Index*10 + int(d))
}

func (f *fakeEngine) UnitMoveHandling(u *world.Unit, dst *world.Tile) bool {
	f.record("UnitMoveHandling(%d,%d)", u.ID, dst.Index)
	return true
}

func (f *fakeEngine) IsActionEnabled(act world.ActionID, u *world.Unit, t *world.Tile) bool {
	return f.enabled
}

func (f *fakeEngine) PerformAction(p *world.Player, actor, target int, name string, act world.ActionID) bool {
	f.record("PerformAction(%d,%d,%q,%d)", actor, target, name, act)
	return true
}

func (f *fakeEngine) UnitActivityHandling(u *world.Unit, act world.Activity) bool {
	f.record("UnitActivityHandling(%d,%s)", u.ID, act)
	return true
}

func (f *fakeEngine) HandleChangeActivity(p *world.Player, unitID int, act world.Activity, target int) bool {
	f.record("HandleChangeActivity(%d,%s,%d)", unitID, act, target)
	return true
}

func (f *fakeEngine) CityNameSuggestion(p *world.Player, t *world.Tile) string { return "Roma" }

func (f *fakeEngine) HandleCityChange(p *world.Player, cityID int, kind world.ProductionKind, value int) bool {
	f.record("HandleCityChange(%d,%d,%d)", cityID, kind, value)
	return true
}

func (f *fakeEngine) ReallyHandleCityBuy(p *world.Player, c *world.City) bool {
	f.record("ReallyHandleCityBuy(%d)", c.ID)
	return true
}

func (f *fakeEngine) HandlePlayerResearch(p *world.Player, tech int) bool {
	f.record("HandlePlayerResearch(%d)", tech)
	return true
}

// Turn machinery.

func (f *fakeEngine) NumPhases() int { return len(f.players) }

func (f *fakeEngine) IsPlayerPhase(p *world.Player, phase int) bool { return p.Index == phase }

func (f *fakeEngine) SetPhase(n int) {
	f.info.Phase = n
	f.record("SetPhase(%d)", n)
}

func (f *fakeEngine) BeginPhase(first bool) { f.record("BeginPhase(%t)", first) }
func (f *fakeEngine) BeginTurn(first bool)  { f.record("BeginTurn(%t)", first) }

func (f *fakeEngine) AdvanceTurn() {
	f.info.Turn++
	f.record("AdvanceTurn")
}

func (f *fakeEngine) AIPhaseFinished(p *world.Player) { f.record("AIPhaseFinished(%d)", p.Index) }

func (f *fakeEngine) UpdateCityActivities(p *world.Player) {
	f.record("UpdateCityActivities(%d)", p.Index)
}

// runningEnv returns an Env over f with a game already running and player
// 0 under control.
func runningEnv(t *testing.T, f *fakeEngine) *Env {
	t.Helper()
	e := New(f, zap.NewNop())
	e.initialized = true
	e.running = true
	e.controlled = 0
	return e
}

func idOf(id int) ecs.EntityID { return ecs.EntityID(id) }
