package world

import (
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/scripting"
	"go.uber.org/zap"
)

const maxVeteran = 3

// combatContext packs one attacker/defender pair for the Lua combat rules.
func (s *Server) combatContext(att, def *Unit, t *Tile) scripting.CombatContext {
	ctx := scripting.CombatContext{
		Attacker: scripting.CombatantInfo{
			Strength:  att.Type.Attack,
			HP:        att.HP,
			Firepower: att.Type.Firepower,
			Veteran:   att.Veteran,
		},
		Defender: scripting.CombatantInfo{
			Strength:  def.Type.Defense,
			HP:        def.HP,
			Firepower: def.Type.Firepower,
			Veteran:   def.Veteran,
		},
		TerrainDefense: t.Terrain.DefenseBonus,
		Fortified:      def.IsFortified(),
		AttackerIsLand: att.Type.Domain == data.DomainLand,
		DefenderNonMil: !def.Type.IsMilitary(),
	}
	if c := s.TileCity(t); c != nil {
		ctx.InCity = true
		ctx.CityWallsBonus = s.cityEffects(c).DefenseBonus
	}
	return ctx
}

// bestDefenderOn picks the unit on t with the highest defense against att.
// The first one found wins ties.
func (s *Server) bestDefenderOn(att *Unit, t *Tile) (*Unit, scripting.CombatStrength) {
	var (
		best     *Unit
		bestStr  scripting.CombatStrength
		bestRank = -1
	)
	for _, d := range s.TileUnits(t) {
		if d.Owner == att.Owner {
			continue
		}
		str := s.lua.CombatStrengths(s.combatContext(att, d, t))
		rank := str.Defense * d.HP
		if rank > bestRank {
			best, bestStr, bestRank = d, str, rank
		}
	}
	return best, bestStr
}

// unitAttack resolves a fight between u and the best defender on t. A
// defender that loses outside a city takes the whole stack with it.
func (s *Server) unitAttack(u *Unit, t *Tile) {
	def, str := s.bestDefenderOn(u, t)
	if def == nil {
		return
	}
	u.MovesLeft = max(u.MovesLeft-MoveFrags, 0)
	u.Activity = ActivityIdle
	if str.Attack <= 0 {
		return
	}

	attFP, defFP := max(u.Type.Firepower, 1), max(def.Type.Firepower, 1)
	for u.HP > 0 && def.HP > 0 {
		if s.randIntn(str.Attack+str.Defense) < str.Attack {
			def.HP -= attFP
		} else {
			u.HP -= defFP
		}
	}

	if u.HP <= 0 {
		s.log.Debug("attack lost",
			zap.String("attacker", u.Type.Name),
			zap.String("defender", def.Type.Name),
		)
		s.emitUnitLost(u, def.Owner)
		s.removeUnit(u)
		s.maybePromote(def)
		return
	}

	victims := []*Unit{def}
	if !t.HasCity() {
		victims = s.TileUnits(t)
	}
	for _, v := range victims {
		if v.Owner == u.Owner {
			continue
		}
		s.emitUnitLost(v, u.Owner)
		s.removeUnit(v)
	}
	s.maybePromote(u)
	s.log.Debug("attack won",
		zap.String("attacker", u.Type.Name),
		zap.Int("killed", len(victims)),
	)
}

func (s *Server) maybePromote(u *Unit) {
	if u.Veteran < maxVeteran && s.randIntn(2) == 0 {
		u.Veteran++
	}
}
