package gym

import (
	"errors"
	"testing"

	"github.com/civgym/gym/internal/scripting"
	"github.com/civgym/gym/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWorldEnv(t *testing.T) (*Env, *world.Server) {
	t.Helper()
	lua, err := scripting.NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lua.Close)

	srv := world.NewServer(world.ServerOptions{RulesetsDir: "../../data/rulesets"}, lua, zap.NewNop())
	e := New(srv, zap.NewNop())
	require.NoError(t, e.Init())
	t.Cleanup(e.Shutdown)
	return e, srv
}

func testConfig() GameConfig {
	return GameConfig{
		Ruleset:      "civ2civ3",
		Width:        32,
		Height:       32,
		NumAIPlayers: 2,
		AISkillLevel: 3,
		Seed:         42,
		FogOfWar:     true,
	}
}

func startedEnv(t *testing.T, cfg GameConfig) (*Env, *world.Server) {
	t.Helper()
	e, srv := newWorldEnv(t)
	require.NoError(t, e.NewGame(cfg))
	return e, srv
}

func observe(t *testing.T, e *Env) *Observation {
	t.Helper()
	obs := &Observation{}
	require.NoError(t, e.GetObservation(obs))
	return obs
}

func validActions(t *testing.T, e *Env) *ActionMask {
	t.Helper()
	mask := &ActionMask{}
	require.NoError(t, e.GetValidActions(mask))
	return mask
}

func hasUnit(obs *Observation, id int) bool {
	for _, u := range obs.Units {
		if u.ID == id {
			return true
		}
	}
	return false
}

func TestInitIdempotent(t *testing.T) {
	e, _ := newWorldEnv(t)
	require.NoError(t, e.Init())
	assert.True(t, e.Initialized())

	e.Shutdown()
	e.Shutdown()
	assert.False(t, e.Initialized())

	require.NoError(t, e.Init())
	require.NoError(t, e.NewGame(testConfig()))
	e.Shutdown()
	assert.False(t, e.Running())
	assert.Nil(t, e.ControlledPlayer())
}

func TestPreconditions(t *testing.T) {
	lua, err := scripting.NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	defer lua.Close()
	e := New(world.NewServer(world.ServerOptions{RulesetsDir: "../../data/rulesets"}, lua, zap.NewNop()), zap.NewNop())

	err = e.NewGame(testConfig())
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, StatusNotInitialized, Status(err))
	assert.ErrorIs(t, e.GetObservation(&Observation{}), ErrNotInitialized)

	require.NoError(t, e.Init())
	defer e.Shutdown()
	assert.ErrorIs(t, e.GetObservation(&Observation{}), ErrNoGame)
	assert.ErrorIs(t, e.GetValidActions(&ActionMask{}), ErrNoGame)
	assert.ErrorIs(t, e.GetObservation(nil), ErrNilHandle)
	assert.ErrorIs(t, e.GetValidActions(nil), ErrNilHandle)
	assert.Equal(t, InfoNotRunning, e.Step(Action{Type: ActionEndTurn}).Info)
	assert.Nil(t, e.Unit(1))
	assert.Nil(t, e.City(1))
	assert.Nil(t, e.Tile(0, 0))
}

func TestResetNotImplemented(t *testing.T) {
	e, _ := startedEnv(t, testConfig())
	err := e.Reset()
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, StatusNotImplemented, Status(err))
	assert.True(t, e.Running(), "a failed reset leaves the game alone")
}

func TestNewGameStartsTurnOne(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	assert.True(t, e.Running())

	info := srv.Info()
	assert.Equal(t, 1, info.Turn)
	assert.Equal(t, 0, info.Phase)
	assert.Equal(t, world.PhasePlayersAlternate, info.PhaseMode)
	assert.True(t, info.FogOfWar)

	me := e.ControlledPlayer()
	require.NotNil(t, me)
	assert.False(t, me.IsAI)
	assert.Equal(t, 100, me.ScienceCost)

	nations := 0
	for _, p := range srv.Players() {
		if !p.IsBarbarian {
			nations++
			assert.NotNil(t, p.Nation)
		}
	}
	assert.Equal(t, 3, nations, "one agent and two AI players, nothing from aifill")
	assert.Len(t, srv.UnitsOf(me.Index), len(srv.Ruleset().Game.StartUnits))
	assert.NotNil(t, e.Tile(0, 0))
}

func TestNewGameBootstrapFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameConfig)
		kind   error
		step   int
		status int
	}{
		{"unknown ruleset", func(c *GameConfig) { c.Ruleset = "no-such-ruleset" }, ErrRulesetLoad, stepLoadRuleset, StatusRulesetLoad},
		{"too many players", func(c *GameConfig) { c.NumAIPlayers = 40 }, ErrPlayerCreate, stepCreatePlayers, StatusPlayerCreate},
		{"map too small", func(c *GameConfig) { c.Width, c.Height = 4, 4 }, ErrMapGenerate, stepAllocateMap, StatusMapGenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newWorldEnv(t)
			cfg := testConfig()
			tt.mutate(&cfg)

			err := e.NewGame(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.status, Status(err))
			var be *BootstrapError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.step, be.Step)
			assert.False(t, e.Running())

			require.NoError(t, e.NewGame(testConfig()), "a later new game starts from scratch")
			assert.True(t, e.Running())
		})
	}
}

func TestValidateRejectsBeforeTouchingEngine(t *testing.T) {
	e := runningEnv(t, newFake())
	e.running = false

	cfg := testConfig()
	cfg.Width = 0
	assert.ErrorIs(t, e.NewGame(cfg), ErrMapGenerate)

	cfg = testConfig()
	cfg.NumAIPlayers = -1
	assert.ErrorIs(t, e.NewGame(cfg), ErrPlayerCreate)

	cfg = testConfig()
	cfg.Ruleset = ""
	assert.ErrorIs(t, e.NewGame(cfg), ErrRulesetLoad)
}

func TestBootstrapDeterministic(t *testing.T) {
	a, _ := startedEnv(t, testConfig())
	b, _ := startedEnv(t, testConfig())
	obsA, obsB := observe(t, a), observe(t, b)
	assert.Equal(t, obsA.Tiles, obsB.Tiles)
	assert.Equal(t, obsA.Units, obsB.Units)
	assert.Equal(t, obsA.Players, obsB.Players)

	// The same Env replays the same game after a full teardown.
	require.NoError(t, a.NewGame(testConfig()))
	again := observe(t, a)
	assert.Equal(t, obsA.Tiles, again.Tiles)
	assert.Equal(t, obsA.Units, again.Units)
	assert.Equal(t, uint32(42), a.Seed())
}

func TestObservationVisibility(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	obs := observe(t, e)

	m := srv.Map()
	assert.Equal(t, m.Width, obs.Width)
	require.Len(t, obs.Tiles, m.Width*m.Height)
	assert.Equal(t, me.Index, obs.ControlledPlayer)
	assert.Len(t, obs.Players, len(srv.Players()), "players are never filtered")
	assert.False(t, obs.GameOver)
	assert.Equal(t, -1, obs.Winner)

	unknown := 0
	for i, to := range obs.Tiles {
		tile := &m.Tiles[i]
		assert.Equal(t, tile.Terrain.Index, to.Terrain, "tile %d", i)
		assert.Equal(t, tile.Owner, to.Owner, "tile %d", i)
		assert.Equal(t, tile.HasCity(), to.HasCity, "tile %d", i)
		assert.Equal(t, tile.HasUnits(), to.HasUnit, "tile %d", i)
		assert.Equal(t, me.Knows(i), to.Visible, "tile %d", i)
		assert.Equal(t, to.Visible, to.Explored)
		assert.Zero(t, to.Extras)
		if !to.Visible {
			unknown++
		}
	}
	assert.Positive(t, unknown, "the start position does not reveal the whole map")

	hidden := 0
	for _, p := range srv.Players() {
		for _, u := range srv.UnitsOf(p.Index) {
			known := me.Knows(u.Tile)
			assert.Equal(t, known, hasUnit(obs, int(u.ID)), "unit %d", u.ID)
			if !known {
				hidden++
			}
		}
	}
	assert.Positive(t, hidden, "fog hides at least the opponents' starting units")
}

func TestObservationWithoutFog(t *testing.T) {
	cfg := testConfig()
	cfg.FogOfWar = false
	e, srv := startedEnv(t, cfg)
	assert.False(t, srv.Info().FogOfWar)

	obs := observe(t, e)
	for i, to := range obs.Tiles {
		assert.True(t, to.Visible, "tile %d", i)
		assert.True(t, to.Explored, "tile %d", i)
	}
	for _, p := range srv.Players() {
		for _, u := range srv.UnitsOf(p.Index) {
			assert.True(t, hasUnit(obs, int(u.ID)), "unit %d", u.ID)
		}
	}
}

func TestObservationBuffersGrowOnly(t *testing.T) {
	e, _ := startedEnv(t, testConfig())
	obs := &Observation{}
	obs.Reserve(64, 16)
	require.NoError(t, e.GetObservation(obs))
	assert.GreaterOrEqual(t, cap(obs.Units), 64)
	assert.GreaterOrEqual(t, cap(obs.Cities), 16)

	tiles := &obs.Tiles[0]
	require.NoError(t, e.GetObservation(obs))
	assert.Same(t, tiles, &obs.Tiles[0], "tile buffer reused")

	obs.Release()
	assert.Nil(t, obs.Tiles)
	assert.Nil(t, obs.Units)
	assert.Equal(t, -1, obs.Winner)
}

func findMove(t *testing.T, e *Env, mask *ActionMask) (*UnitActions, world.Direction) {
	t.Helper()
	for i := range mask.Units {
		ua := &mask.Units[i]
		u := e.Unit(ua.UnitID)
		for d, ok := range ua.CanMove {
			if !ok {
				continue
			}
			dst := e.engine.MapStep(e.engine.UnitTile(u), world.Direction(d))
			if !e.engine.IsEnemyUnitTile(dst, e.ControlledPlayer()) && !e.engine.IsEnemyCityTile(dst, e.ControlledPlayer()) {
				return ua, world.Direction(d)
			}
		}
	}
	t.Fatal("no peaceful move available")
	return nil, 0
}

func TestMoveEffect(t *testing.T) {
	e, _ := startedEnv(t, testConfig())
	ua, d := findMove(t, e, validActions(t, e))
	u := e.Unit(ua.UnitID)
	from, moves := u.Tile, u.MovesLeft

	res := e.Step(Action{Type: ActionMove, ActorID: ua.UnitID, SubTarget: int(d)})
	assert.Empty(t, res.Info)
	assert.NotEqual(t, from, u.Tile)
	assert.Less(t, u.MovesLeft, moves)
}

func TestFoundCityEffect(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	mask := validActions(t, e)

	settler := -1
	for _, ua := range mask.Units {
		if ua.CanBuildCity {
			settler = ua.UnitID
			break
		}
	}
	require.NotEqual(t, -1, settler)
	units, cities := len(srv.UnitsOf(me.Index)), len(srv.CitiesOf(me.Index))

	e.Step(Action{Type: ActionBuildCity, ActorID: settler})
	obs := observe(t, e)
	assert.Len(t, srv.CitiesOf(me.Index), cities+1)
	assert.Len(t, srv.UnitsOf(me.Index), units-1)
	assert.False(t, hasUnit(obs, settler))
	assert.Equal(t, cities+1, obs.Players[me.Index].NumCities)

	c := srv.CitiesOf(me.Index)[0]
	assert.NotEmpty(t, c.Name)
	assert.Equal(t, me.Index, obs.Tiles[c.Tile].Owner)
	assert.True(t, obs.Tiles[c.Tile].HasCity)
}

func foundCity(t *testing.T, e *Env, srv *world.Server) *world.City {
	t.Helper()
	for _, ua := range validActions(t, e).Units {
		if ua.CanBuildCity {
			e.Step(Action{Type: ActionBuildCity, ActorID: ua.UnitID})
			cities := srv.CitiesOf(e.ControlledPlayer().Index)
			require.NotEmpty(t, cities)
			return cities[0]
		}
	}
	t.Fatal("no unit can found a city")
	return nil
}

func cityMask(mask *ActionMask, id int) *CityActions {
	for i := range mask.Cities {
		if mask.Cities[i].CityID == id {
			return &mask.Cities[i]
		}
	}
	return nil
}

func TestBuyEffect(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	c := foundCity(t, e, srv)

	ca := cityMask(validActions(t, e), int(c.ID))
	require.NotNil(t, ca)
	assert.False(t, ca.CanBuy, "founded this turn")
	assert.NotEmpty(t, ca.BuildableUnits)

	c.TurnFounded = 0
	me.Economic.Gold = 1000
	ca = cityMask(validActions(t, e), int(c.ID))
	require.True(t, ca.CanBuy)

	gold, stock := me.Economic.Gold, c.ShieldStock
	e.Step(Action{Type: ActionCityBuy, ActorID: int(c.ID)})
	assert.Less(t, me.Economic.Gold, gold)
	assert.Greater(t, c.ShieldStock, stock)

	ca = cityMask(validActions(t, e), int(c.ID))
	assert.False(t, ca.CanBuy, "one purchase per turn")
}

func TestCityProductionChange(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	c := foundCity(t, e, srv)
	ca := cityMask(validActions(t, e), int(c.ID))
	require.NotNil(t, ca)
	require.NotEmpty(t, ca.BuildableBuildings)

	b := ca.BuildableBuildings[0]
	e.Step(Action{Type: ActionCityBuild, ActorID: int(c.ID), TargetID: b, SubTarget: ProduceBuilding})
	assert.Equal(t, world.Production{Kind: world.ProductionBuilding, Value: b}, c.Production)
}

func TestDisbandEffect(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	mask := validActions(t, e)

	victim := -1
	for _, ua := range mask.Units {
		if ua.CanDisband {
			victim = ua.UnitID
			break
		}
	}
	require.NotEqual(t, -1, victim)
	units := len(srv.UnitsOf(me.Index))

	e.Step(Action{Type: ActionDisband, ActorID: victim})
	assert.Len(t, srv.UnitsOf(me.Index), units-1)
	assert.Nil(t, e.Unit(victim))
	assert.False(t, hasUnit(observe(t, e), victim))
}

func TestOwnershipGuard(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	var foreign *world.Unit
	for _, p := range srv.Players() {
		if p.Index != e.ControlledPlayer().Index && !p.IsBarbarian {
			if us := srv.UnitsOf(p.Index); len(us) > 0 {
				foreign = us[0]
				break
			}
		}
	}
	require.NotNil(t, foreign)
	owner := foreign.Owner
	total := len(srv.UnitsOf(owner))
	tile, moves := foreign.Tile, foreign.MovesLeft
	gold := e.ControlledPlayer().Economic.Gold

	for _, a := range []Action{
		{Type: ActionDisband, ActorID: int(foreign.ID)},
		{Type: ActionBuildCity, ActorID: int(foreign.ID)},
		{Type: ActionFortify, ActorID: int(foreign.ID)},
	} {
		e.Step(a)
	}
	for d := 0; d < world.NumDirections; d++ {
		e.Step(Action{Type: ActionMove, ActorID: int(foreign.ID), SubTarget: d})
	}

	assert.Len(t, srv.UnitsOf(owner), total)
	assert.Equal(t, tile, foreign.Tile)
	assert.Equal(t, moves, foreign.MovesLeft)
	assert.Equal(t, world.ActivityIdle, foreign.Activity)
	assert.Empty(t, srv.CitiesOf(owner))
	assert.Equal(t, gold, e.ControlledPlayer().Economic.Gold)
}

func TestEndTurnAdvances(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	ua, d := findMove(t, e, validActions(t, e))
	id := ua.UnitID
	e.Step(Action{Type: ActionMove, ActorID: id, SubTarget: int(d)})
	moved := e.Unit(id)
	require.NotNil(t, moved)
	require.Less(t, moved.MovesLeft, moved.MoveRate())
	year := srv.Info().Year
	me := e.ControlledPlayer()

	for turn := 2; turn <= 4; turn++ {
		res := e.Step(Action{Type: ActionEndTurn})
		require.False(t, res.Done)
		assert.Zero(t, res.Reward)
		info := srv.Info()
		assert.Equal(t, turn, info.Turn)
		assert.Equal(t, 0, info.Phase)
		assert.Greater(t, info.Year, year)
		year = info.Year

		units := srv.UnitsOf(me.Index)
		require.NotEmpty(t, units)
		for _, u := range units {
			assert.Equal(t, u.MoveRate(), u.MovesLeft, "unit %d", u.ID)
		}
	}
}

func removeUnitsOf(srv *world.Server, p *world.Player) {
	for _, u := range srv.UnitsOf(p.Index) {
		srv.RemoveUnit(u)
	}
}

func TestDominationWin(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	for _, p := range srv.Players() {
		if p.Index != me.Index && !p.IsBarbarian {
			removeUnitsOf(srv, p)
		}
	}

	res := e.Step(Action{Type: ActionEndTurn})
	assert.True(t, res.Done)
	assert.Equal(t, 1.0, res.Reward)

	obs := observe(t, e)
	assert.True(t, obs.GameOver)
	assert.Equal(t, me.Index, obs.Winner)
}

func TestDominationLoss(t *testing.T) {
	cfg := testConfig()
	cfg.NumAIPlayers = 1
	e, srv := startedEnv(t, cfg)
	removeUnitsOf(srv, e.ControlledPlayer())

	res := e.Step(Action{Type: ActionEndTurn})
	assert.True(t, res.Done)
	assert.Equal(t, -1.0, res.Reward)
	assert.False(t, e.ControlledPlayer().IsAlive)
}

func TestTurnLimit(t *testing.T) {
	cfg := testConfig()
	cfg.EndTurn = 2
	e, srv := startedEnv(t, cfg)
	assert.Equal(t, 2, srv.Info().EndTurn)

	res := e.Step(Action{Type: ActionEndTurn})
	require.True(t, res.Done)
	assert.NotZero(t, res.Reward)

	obs := observe(t, e)
	assert.True(t, obs.GameOver)
	best := -1
	for _, p := range obs.Players {
		if p.IsAlive && !p.IsBarbarian && p.Score > best {
			best = p.Score
		}
	}
	assert.Equal(t, best, obs.Players[obs.Winner].Score)
}

func TestValidActionsShape(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	me := e.ControlledPlayer()
	mask := validActions(t, e)

	assert.True(t, mask.CanEndTurn)
	assert.Len(t, mask.Units, len(srv.UnitsOf(me.Index)))
	assert.Empty(t, mask.Cities)
	for _, tech := range mask.ResearchableTechs {
		assert.Equal(t, world.TechPrereqsKnown, srv.InventionState(me, tech))
	}
	assert.NotEmpty(t, mask.ResearchableTechs)

	legal := LegalActions(mask)
	require.NotEmpty(t, legal)
	assert.Equal(t, ActionEndTurn, legal[0].Type)

	research := legal[len(legal)-1]
	require.Equal(t, ActionResearchSet, research.Type)
	assert.Empty(t, e.Step(research).Info)
	assert.Equal(t, research.TargetID, me.Research.Researching)

	mask.Release()
	assert.Nil(t, mask.Units)
	assert.False(t, mask.CanEndTurn)
}

func TestCatalog(t *testing.T) {
	e, srv := startedEnv(t, testConfig())
	rs := srv.Ruleset()
	assert.Equal(t, rs.Units.Count(), e.NumUnitTypes())
	assert.Equal(t, "Settlers", e.UnitTypeName(0))
	assert.Empty(t, e.UnitTypeName(-1))
	assert.Equal(t, rs.Buildings.Count(), e.NumBuildingTypes())
	assert.Equal(t, "Palace", e.BuildingTypeName(0))
	assert.Equal(t, rs.Techs.Count(), e.NumTechs())
	assert.Empty(t, e.TechName(e.NumTechs()))

	c := e.Catalog()
	assert.Equal(t, "civ2civ3", c.Ruleset)
	assert.Len(t, c.Techs, e.NumTechs())
}
