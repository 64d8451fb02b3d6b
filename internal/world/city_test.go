package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyCost(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	warriors := s.Ruleset().Units.ByName("Warriors")
	require.Equal(t, Production{Kind: ProductionUnit, Value: warriors.Index}, c.Production)

	// 10 missing: 2*10 + 100/20 = 25, doubled for a unit, doubled for an empty stock.
	assert.Equal(t, 100, s.CityProductionBuyGoldCost(c))
	c.ShieldStock = 5
	// 5 missing: 2*5 + 25/20 = 11, doubled for a unit.
	assert.Equal(t, 22, s.CityProductionBuyGoldCost(c))
	c.ShieldStock = 10
	assert.Zero(t, s.CityProductionBuyGoldCost(c))

	barracks := s.Ruleset().Buildings.ByName("Barracks")
	c.Production = Production{Kind: ProductionBuilding, Value: barracks.Index}
	c.ShieldStock = 0
	m := barracks.Cost
	assert.Equal(t, (2*m+m*m/20)*2, s.CityProductionBuyGoldCost(c))
}

func TestCityBuy(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	c.ShieldStock = 5
	p.Economic.Gold = 1000

	assert.False(t, s.ReallyHandleCityBuy(p, c), "founded this turn")

	s.AdvanceTurn()
	require.True(t, s.ReallyHandleCityBuy(p, c))
	assert.Equal(t, 1000-22, p.Economic.Gold)
	assert.Equal(t, 10, c.ShieldStock)
	assert.True(t, c.DidBuy)
	assert.False(t, s.ReallyHandleCityBuy(p, c), "once per turn")

	barracks := s.Ruleset().Buildings.ByName("Barracks")
	assert.False(t, s.HandleCityChange(p, int(c.ID), ProductionBuilding, barracks.Index), "bought this turn")

	s.BeginTurn(false)
	assert.False(t, c.DidBuy)
}

func TestCityBuyPreconditions(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	c := s.createCity(ps[0].Index, s.TileAt(5, 5), "Test")
	s.AdvanceTurn()

	ps[0].Economic.Gold = 10
	assert.False(t, s.CanCityBuy(ps[0], c), "too poor")

	ps[0].Economic.Gold = 1000
	c.Anarchy = 1
	assert.False(t, s.CanCityBuy(ps[0], c), "no unit purchases in disorder")
	c.Anarchy = 0
	assert.True(t, s.CanCityBuy(ps[0], c))

	ps[1].Economic.Gold = 1000
	assert.False(t, s.ReallyHandleCityBuy(ps[1], c), "not the owner")
}

func TestProductionChangePenalty(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	rs := s.Ruleset()
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	c.ShieldStock = 10
	s.BeginTurn(false)

	barracks := rs.Buildings.ByName("Barracks")
	require.True(t, s.HandleCityChange(p, int(c.ID), ProductionBuilding, barracks.Index))
	assert.Equal(t, 5, c.ShieldStock, "unit to improvement halves the stock")

	warriors := rs.Units.ByName("Warriors")
	require.True(t, s.HandleCityChange(p, int(c.ID), ProductionUnit, warriors.Index))
	assert.Equal(t, 10, c.ShieldStock, "changing back restores it")

	assert.False(t, s.HandleCityChange(p, int(c.ID), ProductionUnit, warriors.Index), "unchanged")
	assert.False(t, s.HandleCityChange(p, int(c.ID), ProductionUnit, rs.Units.ByName("Legion").Index))
	assert.False(t, s.HandleCityChange(p, int(c.ID), ProductionKind(7), 0))
}

func TestTurnsToBuild(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	c.ShieldSurplus = 2
	assert.Equal(t, 5, s.CityProductionTurnsToBuild(c))
	c.ShieldStock = 10
	assert.Equal(t, 1, s.CityProductionTurnsToBuild(c))
}

func TestCityCompletesUnit(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	c.ShieldStock = 9

	s.UpdateCityActivities(p)
	units := s.UnitsOf(p.Index)
	require.Len(t, units, 1)
	assert.Equal(t, "Warriors", units[0].Type.Name)
	assert.Equal(t, c.ID, units[0].HomeCity)
	assert.Equal(t, 1, p.Stats.UnitsBuilt)
	assert.Less(t, c.ShieldStock, 10)
}

func TestCityCompletesBuilding(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	barracks := s.Ruleset().Buildings.ByName("Barracks")
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	c.Production = Production{Kind: ProductionBuilding, Value: barracks.Index}
	c.ShieldStock = barracks.Cost
	p.Economic.Gold = 100

	s.UpdateCityActivities(p)
	assert.True(t, c.Has(barracks.Index))
	assert.NotEqual(t, Production{Kind: ProductionBuilding, Value: barracks.Index}, c.Production)
}

func TestCityGrowth(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	c := s.createCity(p.Index, s.TileAt(5, 5), "Test")
	gs := s.Ruleset().Game
	c.FoodStock = gs.GranaryBase + gs.GranaryStep

	s.UpdateCityActivities(p)
	assert.Equal(t, 2, c.Size)
	assert.Positive(t, c.FoodSurplus)
}

func TestCityNameSuggestion(t *testing.T) {
	s := newTestServer(t)
	p := flatWorld(t, s, 1)[0]
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		name := s.CityNameSuggestion(p, s.TileAt(i*3, 0))
		require.NotEmpty(t, name)
		assert.False(t, seen[name], name)
		seen[name] = true
		s.createCity(p.Index, s.TileAt(i*3, 0), name)
	}

	p.Nation = nil
	assert.Equal(t, "City 1", s.CityNameSuggestion(p, s.TileAt(10, 10)))
}
