package world

import (
	"github.com/civgym/gym/internal/core/ecs"
	"github.com/civgym/gym/internal/data"
)

// Unit is one unit on the map.
type Unit struct {
	ID             ecs.EntityID
	Type           *data.UnitType
	Owner          int
	Tile           int
	HP             int
	MovesLeft      int // fragments
	Veteran        int
	Activity       Activity
	ActivityTarget int // extra id for terrain work, -1 otherwise
	ActivityCount  int // turns of work done
	HomeCity       ecs.EntityID
}

// MoveRate returns the full movement allowance in fragments.
func (u *Unit) MoveRate() int { return u.Type.MoveRate * MoveFrags }

func (u *Unit) IsFortified() bool { return u.Activity == ActivityFortified }

// createUnit puts a new unit of type ut on tile t for owner.
func (s *Server) createUnit(owner int, ut *data.UnitType, t *Tile, veteran int, home ecs.EntityID) *Unit {
	g := s.game
	u := &Unit{
		ID:             g.ids.Create(),
		Type:           ut,
		Owner:          owner,
		Tile:           t.Index,
		HP:             ut.HP,
		MovesLeft:      ut.MoveRate * MoveFrags,
		Veteran:        veteran,
		ActivityTarget: -1,
		HomeCity:       home,
	}
	g.units.Set(u.ID, u)
	t.Units = append(t.Units, u.ID)
	if p := s.PlayerByIndex(owner); p != nil {
		s.revealAround(p, t, ut.VisionRadiusSq)
	}
	return u
}

// removeUnit deletes u from the game.
func (s *Server) removeUnit(u *Unit) {
	g := s.game
	if t := g.Map.TileByIndex(u.Tile); t != nil {
		t.removeUnit(u.ID)
	}
	g.units.Remove(u.ID)
}

// RemoveUnit deletes a unit outright, as a scenario tool.
func (s *Server) RemoveUnit(u *Unit) {
	if u == nil || s.game == nil {
		return
	}
	s.removeUnit(u)
}

// moveUnitTo relocates u onto dst and spends cost fragments.
func (s *Server) moveUnitTo(u *Unit, dst *Tile, cost int) {
	g := s.game
	if src := g.Map.TileByIndex(u.Tile); src != nil {
		src.removeUnit(u.ID)
	}
	u.Tile = dst.Index
	dst.Units = append(dst.Units, u.ID)
	u.MovesLeft -= cost
	if u.MovesLeft < 0 {
		u.MovesLeft = 0
	}
	u.Activity = ActivityIdle
	u.ActivityTarget = -1
	u.ActivityCount = 0
	if p := s.PlayerByIndex(u.Owner); p != nil {
		s.revealAround(p, dst, u.Type.VisionRadiusSq)
	}
}

// revealAround marks every tile within radiusSq of center as known to p.
func (s *Server) revealAround(p *Player, center *Tile, radiusSq int) {
	if p.known == nil {
		return
	}
	s.game.Map.RadiusIterate(center, radiusSq, func(t *Tile) {
		p.known[t.Index] = true
	})
}
