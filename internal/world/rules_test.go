package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveSpendsFragments(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]

	w := spawn(t, s, p, "Warriors", 5, 5)
	require.Equal(t, MoveFrags, w.MovesLeft)
	require.True(t, s.UnitMoveHandling(w, s.TileAt(6, 5)))
	assert.Equal(t, s.TileAt(6, 5).Index, w.Tile)
	assert.Zero(t, w.MovesLeft)
	assert.False(t, s.UnitMoveHandling(w, s.TileAt(7, 5)), "no moves left")

	e := spawn(t, s, p, "Explorer", 2, 2)
	require.True(t, s.UnitMoveHandling(e, s.TileAt(3, 3)))
	assert.Equal(t, e.MoveRate()-1, e.MovesLeft, "IgTer steps cost one fragment")

	assert.False(t, s.UnitMoveHandling(e, s.TileAt(8, 8)), "not adjacent")
}

func TestMoveCostOnRoads(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	hills := s.Ruleset().Terrains.ByName("Hills")
	road := s.Ruleset().Terrains.ExtraByName("Road")

	a, b := s.TileAt(4, 4), s.TileAt(5, 4)
	b.Terrain = hills
	w := spawn(t, s, p, "Warriors", 4, 4)
	assert.Equal(t, hills.MoveCost*MoveFrags, s.moveCost(w, a, b))

	a.Extras |= road.Bit
	b.Extras |= road.Bit
	assert.Equal(t, 1, s.moveCost(w, a, b))
}

func TestEnemyTilesBlockMoves(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)

	w := spawn(t, s, ps[0], "Warriors", 5, 5)
	spawn(t, s, ps[1], "Warriors", 6, 5)
	dst := s.TileAt(6, 5)

	assert.True(t, s.IsEnemyUnitTile(dst, ps[0]))
	assert.False(t, s.IsEnemyUnitTile(dst, ps[1]))
	assert.False(t, s.CanUnitMoveToTile(w, dst))
	assert.True(t, s.IsActionEnabled(ActionAttack, w, dst))
}

func TestAnimalsStayOffOwnedLand(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	ps[1].IsBarbarian = true

	wolf := spawn(t, s, ps[1], "Wolf", 2, 2)
	s.TileAt(3, 2).Owner = ps[0].Index
	assert.False(t, s.CanUnitMoveToTile(wolf, s.TileAt(3, 2)))
	assert.True(t, s.CanUnitMoveToTile(wolf, s.TileAt(2, 3)))
}

func TestFoundCity(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]

	settlers := spawn(t, s, p, "Settlers", 5, 5)
	here := s.TileAt(5, 5)
	require.True(t, s.IsActionEnabled(ActionFoundCity, settlers, here))
	require.True(t, s.PerformAction(p, int(settlers.ID), here.Index, "", ActionFoundCity))

	assert.Nil(t, s.UnitByID(int(settlers.ID)), "founding consumes the unit")
	c := s.TileCity(here)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Name)
	assert.Equal(t, p.Index, c.Owner)
	assert.Equal(t, 1, c.Size)
	assert.Equal(t, p.Index, s.TileAt(6, 6).Owner, "territory claimed")
	assert.True(t, c.Has(s.Ruleset().Buildings.Capital().Index))
	assert.Equal(t, ProductionUnit, c.Production.Kind)

	near := spawn(t, s, p, "Settlers", 6, 5)
	assert.False(t, s.IsActionEnabled(ActionFoundCity, near, s.TileAt(6, 5)), "too close")
	far := spawn(t, s, p, "Settlers", 7, 5)
	require.True(t, s.PerformAction(p, int(far.ID), s.TileAt(7, 5).Index, "", ActionFoundCity))
	second := s.TileCity(s.TileAt(7, 5))
	require.NotNil(t, second)
	assert.NotEqual(t, c.Name, second.Name)
	assert.False(t, second.Has(s.Ruleset().Buildings.Capital().Index))
}

func TestPerformActionOwnership(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	settlers := spawn(t, s, ps[1], "Settlers", 5, 5)

	assert.False(t, s.PerformAction(ps[0], int(settlers.ID), settlers.Tile, "", ActionFoundCity))
	assert.False(t, s.PerformAction(ps[0], int(settlers.ID), int(settlers.ID), "", ActionDisbandUnit))
	assert.NotNil(t, s.UnitByID(int(settlers.ID)))

	assert.True(t, s.PerformAction(ps[1], int(settlers.ID), int(settlers.ID), "", ActionDisbandUnit))
	assert.Nil(t, s.UnitByID(int(settlers.ID)))
}

func TestTerrainWork(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	road := s.Ruleset().Terrains.ExtraByName("Road")

	w := spawn(t, s, p, "Workers", 5, 5)
	assert.False(t, s.CanUnitDoActivity(w, ActivityIrrigate, -1), "no water nearby")
	assert.False(t, s.CanUnitDoActivity(w, ActivityMine, -1), "grassland cannot be mined")
	assert.False(t, s.CanUnitDoActivity(w, ActivityFortifying, -1))

	s.TileAt(5, 4).Terrain = s.Ruleset().Terrains.ByName("Ocean")
	assert.True(t, s.CanUnitDoActivity(w, ActivityIrrigate, -1))

	require.True(t, s.HandleChangeActivity(p, int(w.ID), ActivityRoad, road.ID))
	assert.Equal(t, ActivityRoad, w.Activity)
	for i := 0; i < s.TileAt(5, 5).Terrain.RoadTime; i++ {
		s.BeginPhase(false)
	}
	assert.True(t, s.TileAt(5, 5).HasExtra(road.Bit))
	assert.Equal(t, ActivityIdle, w.Activity)
	assert.False(t, s.CanUnitDoActivity(w, ActivityRoad, -1), "road already built")
}

func TestMismatchedActivityTarget(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	w := spawn(t, s, p, "Workers", 5, 5)
	road := s.Ruleset().Terrains.ExtraByName("Road")

	s.TileAt(5, 4).Terrain = s.Ruleset().Terrains.ByName("Ocean")
	require.True(t, s.HandleChangeActivity(p, int(w.ID), ActivityIrrigate, road.ID))
	assert.Equal(t, s.Ruleset().Terrains.ExtraByName("Irrigation").ID, w.ActivityTarget)
}

func TestFortify(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	w := spawn(t, s, p, "Warriors", 5, 5)

	require.True(t, s.UnitActivityHandling(w, ActivityFortifying))
	assert.False(t, s.UnitActivityHandling(w, ActivityFortifying), "already fortifying")
	s.BeginPhase(false)
	assert.True(t, w.IsFortified())
	assert.Equal(t, w.MoveRate(), w.MovesLeft)
}

func TestInventionState(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	techs := s.Ruleset().Techs
	alphabet := techs.ByName("Alphabet").Index
	laws := techs.ByName("Code of Laws").Index

	assert.Equal(t, TechPrereqsKnown, s.InventionState(p, alphabet))
	assert.Equal(t, TechUnknown, s.InventionState(p, laws))
	assert.False(t, s.HandlePlayerResearch(p, laws))
	require.True(t, s.HandlePlayerResearch(p, alphabet))

	p.Research.Bulbs = 10000
	s.updateResearch(p)
	assert.Equal(t, TechKnown, s.InventionState(p, alphabet))
	assert.Equal(t, -1, p.Research.Researching)
	assert.Equal(t, TechPrereqsKnown, s.InventionState(p, laws))
	assert.Contains(t, s.Researchable(p), laws)
	assert.NotContains(t, s.Researchable(p), alphabet)
}

func TestCityBuildPredicates(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	rs := s.Ruleset()
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")

	assert.True(t, s.CanCityBuildUnitNow(c, rs.Units.ByName("Warriors")))
	assert.False(t, s.CanCityBuildUnitNow(c, rs.Units.ByName("Legion")), "needs Iron Working")
	assert.False(t, s.CanCityBuildUnitNow(c, rs.Units.ByName("Wolf")))
	assert.False(t, s.CanCityBuildUnitNow(c, rs.Units.ByName("Trireme")), "inland")

	assert.True(t, s.CanCityBuildImprovementNow(c, rs.Buildings.ByName("Barracks")))
	assert.False(t, s.CanCityBuildImprovementNow(c, rs.Buildings.ByName("Palace")), "already built")
	assert.False(t, s.CanCityBuildImprovementNow(c, rs.Buildings.ByName("Granary")))

	for _, name := range []string{"Philosophy", "Bronze Working"} {
		p.Research.learn(rs.Techs.ByName(name).Index)
	}
	assert.False(t, s.CanCityBuildUnitNow(c, rs.Units.ByName("Warriors")), "obsoleted by Pikemen")
}
