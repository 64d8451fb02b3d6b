package gym

import (
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/world"
)

// Engine is the simulation the environment drives. *world.Server
// implements it; tests substitute fakes that embed the interface and
// override what they exercise.
type Engine interface {
	// Server lifecycle.
	SrvInit() error
	SrvShutdown()
	GameInit()
	GameFree()
	RandInit(seed uint32) uint32
	RandUninit()

	// Game setup.
	SetAIFill(n int) error
	AIFill(n int) (int, error)
	LoadRuleset(name string) error
	SetPhaseMode(mode world.PhaseMode)
	SetFogOfWar(on bool)
	SetEndTurn(turn int) error
	CreatePlayer() (*world.Player, error)
	PickNation(p *world.Player) error
	SetAsHuman(p *world.Player)
	SetAsAI(p *world.Player, skill int)
	InitTraits(p *world.Player)
	AllocateMap(width, height int) error
	PlayerMapInit(p *world.Player) error
	StartUnitHint() *data.UnitType
	GenerateMap(seed uint32, startUnit *data.UnitType) error

	// Start sequence.
	ShufflePlayers()
	AdvanceTurn()
	InitYear()
	BroadcastMapReady()
	SetRunning()
	SnapshotFogOfWar()
	LimitRates(p *world.Player)
	SetAILevel(p *world.Player)
	SetScienceCost(p *world.Player, pct int)
	InitEconomy(p *world.Player)
	InitResearch(p *world.Player)
	AssignColors()
	AnalyzeRulesets(p *world.Player)
	AdvisorDefaults(p *world.Player)
	InitNewGame() error
	CreateAnimals() error
	BroadcastGameStart()

	// Turn machinery.
	BeginTurn(first bool)
	SetPhase(n int)
	BeginPhase(first bool)
	NumPhases() int
	IsPlayerPhase(p *world.Player, phase int) bool
	AIPhaseFinished(p *world.Player)
	UpdateCityActivities(p *world.Player)

	// Queries.
	Info() world.GameInfo
	Ruleset() *data.Ruleset
	Map() *world.Map
	Players() []*world.Player
	PlayerByIndex(i int) *world.Player
	UnitByID(id int) *world.Unit
	CityByID(id int) *world.City
	UnitsOf(owner int) []*world.Unit
	CitiesOf(owner int) []*world.City
	TileAt(x, y int) *world.Tile
	TileByIndex(i int) *world.Tile
	MapStep(t *world.Tile, d world.Direction) *world.Tile
	MapIsKnown(t *world.Tile, p *world.Player) bool
	UnitTile(u *world.Unit) *world.Tile
	TileCity(t *world.Tile) *world.City

	// Capability predicates.
	CanUnitMoveToTile(u *world.Unit, dst *world.Tile) bool
	IsEnemyUnitTile(t *world.Tile, p *world.Player) bool
	IsEnemyCityTile(t *world.Tile, p *world.Player) bool
	CanUnitDoActivity(u *world.Unit, act world.Activity, target int) bool
	NextExtraForTile(t *world.Tile, cause data.ExtraCause, p *world.Player, u *world.Unit) *data.Extra
	IsActionEnabled(act world.ActionID, u *world.Unit, target *world.Tile) bool
	CanCityBuildUnitNow(c *world.City, ut *data.UnitType) bool
	CanCityBuildImprovementNow(c *world.City, b *data.Building) bool
	CityProductionBuildShieldCost(c *world.City) int
	CityProductionBuyGoldCost(c *world.City) int
	CityProductionTurnsToBuild(c *world.City) int
	InventionState(p *world.Player, tech int) world.TechState

	// Command handlers.
	UnitMoveHandling(u *world.Unit, dst *world.Tile) bool
	PerformAction(p *world.Player, actorID, target int, name string, act world.ActionID) bool
	UnitActivityHandling(u *world.Unit, act world.Activity) bool
	HandleChangeActivity(p *world.Player, unitID int, act world.Activity, target int) bool
	CityNameSuggestion(p *world.Player, t *world.Tile) string
	HandleCityChange(p *world.Player, cityID int, kind world.ProductionKind, value int) bool
	ReallyHandleCityBuy(p *world.Player, c *world.City) bool
	HandlePlayerResearch(p *world.Player, tech int) bool
}

var _ Engine = (*world.Server)(nil)
