package world

import (
	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/scripting"
	"go.uber.org/zap"
)

// BeginTurn opens a new turn. The first turn keeps the start year.
func (s *Server) BeginTurn(first bool) {
	g := s.game
	for _, p := range g.players {
		p.PhaseDone = false
		p.AIPhaseDone = false
	}
	g.cities.Each(func(_ ecs.EntityID, c *City) {
		c.DidBuy = false
		c.changedFrom = c.Production
		c.shieldsBefore = c.ShieldStock
	})
	if !first {
		g.Info.Year += g.Ruleset.Game.YearStep
	}

	for _, p := range g.players {
		if p.IsAlive && len(s.UnitsOf(p.Index)) == 0 && len(s.CitiesOf(p.Index)) == 0 {
			p.IsAlive = false
			s.log.Info("player died", zap.Int("player", p.Index), zap.String("name", p.Name))
		}
	}
	for _, p := range g.players {
		p.Score = s.lua.CalcScore(s.scoreContext(p))
	}
	s.bus.Flush()
}

func (s *Server) scoreContext(p *Player) scripting.ScoreContext {
	ctx := scripting.ScoreContext{
		Techs:       p.Research.NumKnown(),
		UnitsBuilt:  p.Stats.UnitsBuilt,
		UnitsKilled: p.Stats.UnitsKilled,
		UnitsLost:   p.Stats.UnitsLost,
		Gold:        p.Economic.Gold,
	}
	rs := s.game.Ruleset
	for _, c := range s.CitiesOf(p.Index) {
		ctx.Cities++
		ctx.Citizens += c.Size
		for b := range c.Buildings {
			if c.Buildings[b] && rs.Buildings.Get(b).Genus == data.GenusSmallWonder {
				ctx.Wonders++
			}
		}
	}
	return ctx
}

// SetPhase makes n the current phase.
func (s *Server) SetPhase(n int) {
	s.game.Info.Phase = n
}

// NumPhases returns the phases per turn for the current phase mode.
func (s *Server) NumPhases() int {
	if s.game.Info.PhaseMode == PhasePlayersAlternate {
		return len(s.game.players)
	}
	return 1
}

// IsPlayerPhase reports whether p moves during phase.
func (s *Server) IsPlayerPhase(p *Player, phase int) bool {
	if s.game.Info.PhaseMode == PhasePlayersAlternate {
		return p.Index == phase
	}
	return phase == 0
}

// BeginPhase restores movement and advances unit activities for the
// players of the current phase.
func (s *Server) BeginPhase(first bool) {
	g := s.game
	for _, p := range g.players {
		if !p.IsAlive || !s.IsPlayerPhase(p, g.Info.Phase) {
			continue
		}
		p.PhaseDone = false
		for _, u := range s.UnitsOf(p.Index) {
			if !first {
				s.progressActivity(u)
			}
			u.MovesLeft = u.MoveRate()
		}
	}
}

func (s *Server) progressActivity(u *Unit) {
	switch u.Activity {
	case ActivityFortifying:
		u.Activity = ActivityFortified
	case ActivityRoad, ActivityIrrigate, ActivityMine:
		t := s.UnitTile(u)
		ex := s.game.Ruleset.Terrains.Extra(u.ActivityTarget)
		if ex == nil || !s.canBuildExtra(ex, t, u) {
			u.Activity = ActivityIdle
			u.ActivityTarget = -1
			u.ActivityCount = 0
			return
		}
		u.ActivityCount++
		if u.ActivityCount >= activityTime(u.Activity, t) {
			t.Extras &^= ex.ConflictMask()
			t.Extras |= ex.Bit
			u.Activity = ActivityIdle
			u.ActivityTarget = -1
			u.ActivityCount = 0
		}
	}
}

// AIPhaseFinished runs the AI for p if it is an AI player.
func (s *Server) AIPhaseFinished(p *Player) {
	if p == nil || !p.IsAI || !p.IsAlive {
		return
	}
	s.aiTimer.Start()
	s.currentAI = p
	s.ai.playerPhase(p)
	s.currentAI = nil
	s.aiTimer.Stop()
	p.AIPhaseDone = true
}

// CurrentAIPlayer returns the AI player being processed, or nil.
func (s *Server) CurrentAIPlayer() *Player {
	return s.currentAI
}

// ShuffledPlayers returns every player in the shuffled order.
func (s *Server) ShuffledPlayers() []*Player {
	out := make([]*Player, 0, len(s.game.shuffled))
	for i := range s.game.shuffled {
		out = append(out, s.ShuffledPlayer(i))
	}
	return out
}

// UpdateCityActivities runs the end-of-phase city pass for p: production,
// growth, taxes and science.
func (s *Server) UpdateCityActivities(p *Player) {
	if p == nil || !p.IsAlive {
		return
	}
	for _, c := range s.CitiesOf(p.Index) {
		s.updateCity(p, c)
	}
	s.updateResearch(p)
}

func (s *Server) updateCity(p *Player, c *City) {
	rs := s.game.Ruleset
	eff := s.cityEffects(c)
	food, shield, trade := s.cityOutput(c)

	content := rs.Game.ContentCitizens + eff.Content + trade*p.Economic.Luxury/100/2
	if unhappy := c.Size - content; unhappy > c.Size/2 {
		c.Anarchy++
		shield, trade = 0, 0
	} else {
		c.Anarchy = 0
	}

	c.FoodSurplus = food - 2*c.Size
	c.ShieldSurplus = shield
	c.TradeSurplus = trade

	c.ShieldStock += shield
	s.cityBuildProduction(p, c)
	s.cityGrow(c, eff)

	tax := trade * p.Economic.Tax / 100
	tax += tax * eff.TaxPct / 100
	sci := trade * p.Economic.Science / 100
	sci += sci * eff.SciencePct / 100
	p.Economic.Gold += tax - s.cityUpkeep(c)
	p.Research.Bulbs += sci
	if p.Economic.Gold < 0 {
		s.sellBuilding(p, c)
	}
}

func (s *Server) cityUpkeep(c *City) int {
	total := 0
	for b := range c.Buildings {
		if c.Buildings[b] {
			total += s.game.Ruleset.Buildings.Get(b).Upkeep
		}
	}
	return total
}

// sellBuilding sells the city's most expensive to keep building to cover
// a negative treasury.
func (s *Server) sellBuilding(p *Player, c *City) {
	rs := s.game.Ruleset
	sell := -1
	for b := range c.Buildings {
		if !c.Buildings[b] || rs.Buildings.Get(b).Effects.Capital {
			continue
		}
		if sell < 0 || rs.Buildings.Get(b).Upkeep > rs.Buildings.Get(sell).Upkeep {
			sell = b
		}
	}
	if sell < 0 {
		p.Economic.Gold = 0
		return
	}
	c.Buildings[sell] = false
	p.Economic.Gold += rs.Buildings.Get(sell).Cost
	s.notify(p, "building sold", zap.String("city", c.Name), zap.String("building", rs.Buildings.Get(sell).Name))
}

func (s *Server) cityBuildProduction(p *Player, c *City) {
	rs := s.game.Ruleset
	cost := s.CityProductionBuildShieldCost(c)
	if cost <= 0 || c.ShieldStock < cost {
		return
	}
	switch c.Production.Kind {
	case ProductionUnit:
		ut := rs.Units.Get(c.Production.Value)
		if ut.HasFlag(data.FlagCities) {
			if c.Size < 2 {
				return
			}
			c.Size--
		}
		vet := 0
		if s.cityEffects(c).VeteranLand && ut.Domain == data.DomainLand {
			vet = 1
		}
		s.createUnit(p.Index, ut, s.game.Map.TileByIndex(c.Tile), vet, c.ID)
		p.Stats.UnitsBuilt++
		c.ShieldStock -= cost
		if !s.CanCityBuildUnitNow(c, ut) {
			s.chooseNextProduction(c)
		}
	case ProductionBuilding:
		b := rs.Buildings.Get(c.Production.Value)
		if b.Effects.Capital {
			for _, other := range s.CitiesOf(p.Index) {
				other.Buildings[b.Index] = false
			}
		}
		c.Buildings[b.Index] = true
		c.ShieldStock -= cost
		s.notify(p, "building completed", zap.String("city", c.Name), zap.String("building", b.Name))
		s.chooseNextProduction(c)
	}
	c.shieldsBefore = c.ShieldStock
	c.changedFrom = c.Production
}

// chooseNextProduction picks the first buildable improvement, else the
// owner's best defender.
func (s *Server) chooseNextProduction(c *City) {
	rs := s.game.Ruleset
	for i := 0; i < rs.Buildings.Count(); i++ {
		b := rs.Buildings.Get(i)
		if b.Genus == data.GenusImprovement && s.CanCityBuildImprovementNow(c, b) {
			c.Production = Production{Kind: ProductionBuilding, Value: i}
			return
		}
	}
	if d := s.bestDefender(s.PlayerByIndex(c.Owner)); d != nil && s.CanCityBuildUnitNow(c, d) {
		c.Production = Production{Kind: ProductionUnit, Value: d.Index}
	}
}

func (s *Server) cityGrow(c *City, eff data.BuildingEffects) {
	gs := s.game.Ruleset.Game
	granary := s.lua.GranarySize(c.Size, gs.GranaryBase, gs.GranaryStep)
	c.FoodStock += c.FoodSurplus
	switch {
	case c.FoodStock >= granary:
		if c.Size >= s.sizeCap(c) {
			c.FoodStock = granary
			return
		}
		c.Size++
		c.FoodStock = granary * eff.GrowthKeep / 100
	case c.FoodStock < 0:
		if c.Size > 1 {
			c.Size--
		}
		c.FoodStock = 0
	}
}
