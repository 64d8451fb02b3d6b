package gym

import (
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/world"
)

// UnitActions is what one of the agent's units may do now. CanMove is
// indexed by world.Direction. A direction holding an enemy is both in
// CanMove and, as a tile index, in AttackableTiles.
type UnitActions struct {
	UnitID             int                       `json:"unit_id"`
	CanMove            [world.NumDirections]bool `json:"can_move"`
	AttackableTiles    []int                     `json:"attackable_tiles"`
	CanFortify         bool                      `json:"can_fortify"`
	CanBuildCity       bool                      `json:"can_build_city"`
	CanBuildRoad       bool                      `json:"can_build_road"`
	CanBuildIrrigation bool                      `json:"can_build_irrigation"`
	CanBuildMine       bool                      `json:"can_build_mine"`
	CanDisband         bool                      `json:"can_disband"`
}

type CityActions struct {
	CityID             int   `json:"city_id"`
	BuildableUnits     []int `json:"buildable_units"`
	BuildableBuildings []int `json:"buildable_buildings"`
	CanBuy             bool  `json:"can_buy"`
}

// ActionMask lists the legal actions of the controlled player. Unlike an
// Observation it is rebuilt from scratch on every query.
type ActionMask struct {
	Units             []UnitActions `json:"units"`
	Cities            []CityActions `json:"cities"`
	ResearchableTechs []int         `json:"researchable_techs"`
	CanEndTurn        bool          `json:"can_end_turn"`
}

// Release drops everything the mask holds.
func (m *ActionMask) Release() {
	*m = ActionMask{}
}

// GetValidActions replaces mask with the legal actions of the controlled
// player. An empty mask is a valid result.
func (e *Env) GetValidActions(mask *ActionMask) error {
	if mask == nil {
		return ErrNilHandle
	}
	if !e.initialized {
		return ErrNotInitialized
	}
	if !e.running {
		return ErrNoGame
	}
	mask.Release()
	p := e.engine.PlayerByIndex(e.controlled)
	if p == nil {
		return nil
	}
	mask.CanEndTurn = true

	units := e.engine.UnitsOf(p.Index)
	if len(units) > 0 {
		mask.Units = make([]UnitActions, len(units))
		for i, u := range units {
			e.unitActions(p, u, &mask.Units[i])
		}
	}

	cities := e.engine.CitiesOf(p.Index)
	if len(cities) > 0 {
		mask.Cities = make([]CityActions, len(cities))
		for i, c := range cities {
			e.cityActions(p, c, &mask.Cities[i])
		}
	}

	mask.ResearchableTechs = e.researchable(p)
	return nil
}

func (e *Env) unitActions(p *world.Player, u *world.Unit, ua *UnitActions) {
	eng := e.engine
	ua.UnitID = int(u.ID)
	here := eng.UnitTile(u)

	if u.MovesLeft > 0 {
		for d := world.Direction(0); d < world.NumDirections; d++ {
			dst := eng.MapStep(here, d)
			if dst == nil {
				continue
			}
			if eng.CanUnitMoveToTile(u, dst) {
				ua.CanMove[d] = true
			}
			if eng.IsEnemyUnitTile(dst, p) || eng.IsEnemyCityTile(dst, p) {
				ua.AttackableTiles = append(ua.AttackableTiles, dst.Index)
				ua.CanMove[d] = true
			}
		}
	}

	ua.CanFortify = eng.CanUnitDoActivity(u, world.ActivityFortifying, -1)
	ua.CanBuildCity = eng.IsActionEnabled(world.ActionFoundCity, u, here)
	if road := eng.NextExtraForTile(here, data.ExtraCauseRoad, p, u); road != nil {
		ua.CanBuildRoad = eng.CanUnitDoActivity(u, world.ActivityRoad, road.ID)
	}
	ua.CanBuildIrrigation = eng.CanUnitDoActivity(u, world.ActivityIrrigate, -1)
	ua.CanBuildMine = eng.CanUnitDoActivity(u, world.ActivityMine, -1)
	ua.CanDisband = eng.IsActionEnabled(world.ActionDisbandUnit, u, here)
}

// cityActions tests every unit type and building of the ruleset.
func (e *Env) cityActions(p *world.Player, c *world.City, ca *CityActions) {
	eng := e.engine
	rs := eng.Ruleset()
	ca.CityID = int(c.ID)

	for i := 0; i < rs.Units.Count(); i++ {
		if eng.CanCityBuildUnitNow(c, rs.Units.Get(i)) {
			ca.BuildableUnits = append(ca.BuildableUnits, i)
		}
	}
	for i := 0; i < rs.Buildings.Count(); i++ {
		if eng.CanCityBuildImprovementNow(c, rs.Buildings.Get(i)) {
			ca.BuildableBuildings = append(ca.BuildableBuildings, i)
		}
	}
	ca.CanBuy = e.canBuy(p, c)
}

// canBuy mirrors the preconditions of the engine's buy handler.
func (e *Env) canBuy(p *world.Player, c *world.City) bool {
	eng := e.engine
	if c.TurnFounded == eng.Info().Turn || c.DidBuy {
		return false
	}
	if c.ShieldStock >= eng.CityProductionBuildShieldCost(c) {
		return false
	}
	if p.Economic.Gold < eng.CityProductionBuyGoldCost(c) {
		return false
	}
	return c.Production.Kind != world.ProductionUnit || c.Anarchy == 0
}

func (e *Env) researchable(p *world.Player) []int {
	var techs []int
	n := e.engine.Ruleset().Techs.Count()
	for i := 0; i < n; i++ {
		if e.engine.InventionState(p, i) == world.TechPrereqsKnown {
			techs = append(techs, i)
		}
	}
	return techs
}

// LegalActions flattens mask into concrete actions: end turn first, then
// per unit its moves, attacks, activities and disband, then per city its
// production choices and buy, then research targets. Terrain work leaves
// the extra to the engine.
func LegalActions(mask *ActionMask) []Action {
	if mask == nil {
		return nil
	}
	var out []Action
	if mask.CanEndTurn {
		out = append(out, Action{Type: ActionEndTurn})
	}
	for i := range mask.Units {
		ua := &mask.Units[i]
		for d, ok := range ua.CanMove {
			if ok {
				out = append(out, Action{Type: ActionMove, ActorID: ua.UnitID, SubTarget: d})
			}
		}
		for _, t := range ua.AttackableTiles {
			out = append(out, Action{Type: ActionAttack, ActorID: ua.UnitID, TargetID: t})
		}
		flags := []struct {
			ok  bool
			typ ActionType
			sub int
		}{
			{ua.CanFortify, ActionFortify, 0},
			{ua.CanBuildCity, ActionBuildCity, 0},
			{ua.CanBuildRoad, ActionBuildRoad, -1},
			{ua.CanBuildIrrigation, ActionBuildIrrigation, -1},
			{ua.CanBuildMine, ActionBuildMine, -1},
			{ua.CanDisband, ActionDisband, 0},
		}
		for _, f := range flags {
			if f.ok {
				out = append(out, Action{Type: f.typ, ActorID: ua.UnitID, SubTarget: f.sub})
			}
		}
	}
	for i := range mask.Cities {
		ca := &mask.Cities[i]
		for _, ut := range ca.BuildableUnits {
			out = append(out, Action{Type: ActionCityBuild, ActorID: ca.CityID, TargetID: ut, SubTarget: ProduceUnit})
		}
		for _, b := range ca.BuildableBuildings {
			out = append(out, Action{Type: ActionCityBuild, ActorID: ca.CityID, TargetID: b, SubTarget: ProduceBuilding})
		}
		if ca.CanBuy {
			out = append(out, Action{Type: ActionCityBuy, ActorID: ca.CityID})
		}
	}
	for _, t := range mask.ResearchableTechs {
		out = append(out, Action{Type: ActionResearchSet, TargetID: t})
	}
	return out
}
