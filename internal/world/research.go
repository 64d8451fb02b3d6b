package world

import (
	"github.com/civgym/gym/internal/core/event"
	"go.uber.org/zap"
)

// ResearchCost returns the bulbs p needs for its next tech.
func (s *Server) ResearchCost(p *Player) int {
	return s.lua.ResearchCost(p.Research.NumKnown(), p.ScienceCost, s.game.Ruleset.Game.TechCostBase)
}

// updateResearch discovers the current target once enough bulbs are in.
// Bulbs keep accumulating while no target is set.
func (s *Server) updateResearch(p *Player) {
	r := p.Research
	if r.Researching < 0 {
		return
	}
	cost := s.ResearchCost(p)
	if r.Bulbs < cost {
		return
	}
	tech := r.Researching
	if !r.learn(tech) {
		r.Researching = -1
		return
	}
	r.Bulbs -= cost
	r.Researching = -1
	s.log.Debug("tech discovered",
		zap.Int("player", p.Index),
		zap.String("tech", s.game.Ruleset.Techs.Get(tech).Name),
	)
	event.Emit(s.bus, event.TechDiscovered{Player: p.Index, Tech: tech})
}

// Researchable lists the techs p can start researching now.
func (s *Server) Researchable(p *Player) []int {
	var out []int
	for i := 0; i < s.game.Ruleset.Techs.Count(); i++ {
		if s.InventionState(p, i) == TechPrereqsKnown {
			out = append(out, i)
		}
	}
	return out
}
