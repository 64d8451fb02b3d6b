package world

import "github.com/civgym/gym/internal/core/event"

// onUnitLost keeps the combat tallies the score formula reads.
func (s *Server) onUnitLost(ev event.UnitLost) {
	if p := s.PlayerByIndex(ev.Owner); p != nil {
		p.Stats.UnitsLost++
	}
	if ev.Killer < 0 {
		return
	}
	if k := s.PlayerByIndex(ev.Killer); k != nil {
		k.Stats.UnitsKilled++
	}
}
