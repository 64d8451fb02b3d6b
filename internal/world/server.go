package world

import (
	"errors"
	"math/rand"
	"time"

	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/core/event"
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/scripting"
	"go.uber.org/zap"
)

var (
	ErrNotInitialized = errors.New("server not initialized")
	ErrNoGame         = errors.New("no game")
	ErrNoRuleset      = errors.New("no ruleset loaded")
	ErrTooManyPlayers = errors.New("too many players")
	ErrNoNation       = errors.New("no nation available")
	ErrMapSize        = errors.New("invalid map size")
	ErrNoMap          = errors.New("map not allocated")
	ErrPlayerMap      = errors.New("player map not initialized")
	ErrNoStartPos     = errors.New("not enough start positions")
)

// Map size limits per side.
const (
	MinMapSide = 8
	MaxMapSide = 256
)

// ServerOptions configures a Server.
type ServerOptions struct {
	RulesetsDir string
}

// GameInfo is the public game header.
type GameInfo struct {
	Turn        int
	Year        int
	Phase       int
	PhaseMode   PhaseMode
	FogOfWar    bool
	FogOfWarOld bool
	EndTurn     int
	Seed        uint32
	State       ServerState
}

// game is everything GameInit creates and GameFree drops.
type game struct {
	Ruleset    *data.Ruleset
	Info       GameInfo
	Map        *Map
	players    []*Player
	shuffled   []int
	isShuffled bool
	units      *ecs.Store[Unit]
	cities     *ecs.Store[City]
	ids        *ecs.IDPool
}

// Server is the embedded simulation. It is not safe for concurrent use;
// callers serialise access.
type Server struct {
	opts ServerOptions
	lua  *scripting.Engine
	log  *zap.Logger

	initialized bool
	rng         *rand.Rand
	settings    *Settings
	commands    map[string]commandFunc
	conns       []string // attached human clients; an embedded server has none
	aiTimer     Timer
	bus         *event.Bus
	ai          *aiModule
	currentAI   *Player

	game *game
}

// NewServer returns an uninitialised server. Call SrvInit before use.
func NewServer(opts ServerOptions, lua *scripting.Engine, log *zap.Logger) *Server {
	return &Server{opts: opts, lua: lua, log: log}
}

// SrvInit initialises server subsystems. Calling it again is a no-op.
func (s *Server) SrvInit() error {
	if s.initialized {
		return nil
	}
	if s.lua == nil {
		return errors.New("srv init: no script engine")
	}
	s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	s.settings = newSettings()
	s.commands = defaultCommands()
	s.conns = s.conns[:0]
	s.aiTimer.Reset()
	s.bus = event.NewBus()
	event.Subscribe(s.bus, s.onUnitLost)
	s.ai = newAIModule(s)
	s.initialized = true
	s.log.Debug("server subsystems initialised")
	return nil
}

// SrvShutdown tears down subsystems. The game must already be freed.
func (s *Server) SrvShutdown() {
	if !s.initialized {
		return
	}
	s.game = nil
	s.bus = nil
	s.ai = nil
	s.rng = nil
	s.initialized = false
}

// GameInit creates a fresh pregame state.
func (s *Server) GameInit() {
	s.game = &game{
		Info: GameInfo{
			PhaseMode: PhaseConcurrent,
			FogOfWar:  true,
			EndTurn:   s.settings.Get("endturn"),
			State:     StatePreGame,
		},
		units:  ecs.NewStore[Unit](256),
		cities: ecs.NewStore[City](64),
		ids:    ecs.NewIDPool(),
	}
	s.bus.Drop()
	s.ai.reset()
}

// GameFree drops the current game.
func (s *Server) GameFree() {
	s.game = nil
	if s.bus != nil {
		s.bus.Drop()
	}
}

// RandInit seeds the game RNG. Seed 0 draws a seed from the clock and
// records it so the game can be replayed.
func (s *Server) RandInit(seed uint32) uint32 {
	for seed == 0 {
		seed = uint32(time.Now().UnixNano())
	}
	s.rng = rand.New(rand.NewSource(int64(seed)))
	if s.game != nil {
		s.game.Info.Seed = seed
	}
	return seed
}

// RandUninit forgets the game RNG.
func (s *Server) RandUninit() {
	s.rng = nil
}

func (s *Server) ensureRNG() *rand.Rand {
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s.rng
}

func (s *Server) randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.ensureRNG().Intn(n)
}

// Settings exposes the settings store.
func (s *Server) Settings() *Settings { return s.settings }

// Bus exposes the event bus.
func (s *Server) Bus() *event.Bus { return s.bus }

// Running reports whether a game is in the running state.
func (s *Server) Running() bool {
	return s.game != nil && s.game.Info.State == StateRunning
}

// Info returns a copy of the game header.
func (s *Server) Info() GameInfo {
	if s.game == nil {
		return GameInfo{}
	}
	return s.game.Info
}

// Ruleset returns the loaded ruleset, or nil.
func (s *Server) Ruleset() *data.Ruleset {
	if s.game == nil {
		return nil
	}
	return s.game.Ruleset
}

// Map returns the game map, or nil before allocation.
func (s *Server) Map() *Map {
	if s.game == nil {
		return nil
	}
	return s.game.Map
}

// Players returns all player slots in index order.
func (s *Server) Players() []*Player {
	if s.game == nil {
		return nil
	}
	return s.game.players
}

// PlayerByIndex returns the player with index i, or nil.
func (s *Server) PlayerByIndex(i int) *Player {
	if s.game == nil || i < 0 || i >= len(s.game.players) {
		return nil
	}
	return s.game.players[i]
}

// ShuffledPlayer returns the i-th player of the shuffled order. Before
// ShufflePlayers every slot resolves to player 0.
func (s *Server) ShuffledPlayer(i int) *Player {
	if s.game == nil || i < 0 || i >= len(s.game.shuffled) {
		return nil
	}
	return s.PlayerByIndex(s.game.shuffled[i])
}

// UnitByID returns the unit with the given id, or nil.
func (s *Server) UnitByID(id int) *Unit {
	if s.game == nil {
		return nil
	}
	u, _ := s.game.units.Get(ecs.EntityID(id))
	return u
}

// CityByID returns the city with the given id, or nil.
func (s *Server) CityByID(id int) *City {
	if s.game == nil {
		return nil
	}
	c, _ := s.game.cities.Get(ecs.EntityID(id))
	return c
}

// UnitsOf returns the units of a player in creation order.
func (s *Server) UnitsOf(owner int) []*Unit {
	if s.game == nil {
		return nil
	}
	var out []*Unit
	s.game.units.Each(func(_ ecs.EntityID, u *Unit) {
		if u.Owner == owner {
			out = append(out, u)
		}
	})
	return out
}

// CitiesOf returns the cities of a player in founding order.
func (s *Server) CitiesOf(owner int) []*City {
	if s.game == nil {
		return nil
	}
	var out []*City
	s.game.cities.Each(func(_ ecs.EntityID, c *City) {
		if c.Owner == owner {
			out = append(out, c)
		}
	})
	return out
}

// NumUnits returns the number of units in the game.
func (s *Server) NumUnits() int {
	if s.game == nil {
		return 0
	}
	return s.game.units.Len()
}

// TileAt returns the tile at (x, y), or nil.
func (s *Server) TileAt(x, y int) *Tile {
	if s.game == nil || s.game.Map == nil {
		return nil
	}
	return s.game.Map.Tile(x, y)
}

// TileByIndex returns the tile with index i, or nil.
func (s *Server) TileByIndex(i int) *Tile {
	if s.game == nil || s.game.Map == nil {
		return nil
	}
	return s.game.Map.TileByIndex(i)
}

// MapStep returns the neighbour of t in direction d, or nil.
func (s *Server) MapStep(t *Tile, d Direction) *Tile {
	if s.game == nil || s.game.Map == nil {
		return nil
	}
	return s.game.Map.Step(t, d)
}

// MapIsKnown reports whether p knows t.
func (s *Server) MapIsKnown(t *Tile, p *Player) bool {
	return t != nil && p != nil && p.Knows(t.Index)
}

// UnitTile returns the tile u stands on.
func (s *Server) UnitTile(u *Unit) *Tile {
	return s.TileByIndex(u.Tile)
}

// TileUnits returns the units stacked on t.
func (s *Server) TileUnits(t *Tile) []*Unit {
	out := make([]*Unit, 0, len(t.Units))
	for _, id := range t.Units {
		if u, ok := s.game.units.Get(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// TileCity returns the city on t, or nil.
func (s *Server) TileCity(t *Tile) *City {
	if t == nil || !t.HasCity() {
		return nil
	}
	c, _ := s.game.cities.Get(t.City)
	return c
}

// AITime returns the accumulated time spent in AI phases.
func (s *Server) AITime() time.Duration { return s.aiTimer.Total() }

// notify delivers a message to the attached clients of p. The embedded
// server has none, so messages go to the debug log.
func (s *Server) notify(p *Player, msg string, fields ...zap.Field) {
	if len(s.conns) == 0 {
		s.log.Debug(msg, append(fields, zap.Int("player", p.Index))...)
	}
}

// Timer accumulates wall time across start/stop pairs.
type Timer struct {
	total   time.Duration
	started time.Time
	running bool
}

func (t *Timer) Start() {
	if !t.running {
		t.started = time.Now()
		t.running = true
	}
}

func (t *Timer) Stop() time.Duration {
	if !t.running {
		return 0
	}
	d := time.Since(t.started)
	t.total += d
	t.running = false
	return d
}

func (t *Timer) Total() time.Duration { return t.total }

func (t *Timer) Reset() { *t = Timer{} }
