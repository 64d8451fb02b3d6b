package world

import (
	"github.com/civgym/gym/internal/data"
	"go.uber.org/zap"
)

// startExclusionSq keeps wildlife away from start positions.
const startExclusionSq = 16

// CreateAnimals adds the wildlife player and scatters animals over unowned
// land away from the start positions. The animals setting gives the density
// per thousand land tiles.
func (s *Server) CreateAnimals() error {
	g := s.game
	rs := g.Ruleset
	kinds := rs.Units.Animals()
	density := s.settings.Get("animals")
	if len(kinds) == 0 || density == 0 {
		return nil
	}
	nation := rs.Nations.Barbarian()
	if nation == nil {
		return nil
	}

	land := 0
	for i := range g.Map.Tiles {
		if !g.Map.Tiles[i].IsOcean() {
			land++
		}
	}
	want := land * density / 1000
	if want == 0 {
		return nil
	}

	p, err := s.CreatePlayer()
	if err != nil {
		return err
	}
	p.Nation = nation
	p.Name = nation.Leader
	p.IsBarbarian = true
	s.SetAsAI(p, 0)
	s.InitTraits(p)
	s.InitResearch(p)
	if !p.MapInitialized() {
		if err := s.PlayerMapInit(p); err != nil {
			return err
		}
	}

	placed := 0
	for attempt := 0; attempt < want*20 && placed < want; attempt++ {
		t := g.Map.TileByIndex(s.randIntn(len(g.Map.Tiles)))
		ut := kinds[s.randIntn(len(kinds))]
		if !s.animalSpot(ut, t) {
			continue
		}
		s.createUnit(p.Index, ut, t, 0, 0)
		placed++
	}
	s.log.Debug("animals placed", zap.Int("count", placed), zap.Int("wanted", want))
	return nil
}

func (s *Server) animalSpot(ut *data.UnitType, t *Tile) bool {
	if !canExistAt(ut, t) || t.Owner != NoOwner || t.HasUnits() || t.HasCity() {
		return false
	}
	for _, idx := range s.game.Map.StartPositions() {
		if s.game.Map.SqDistance(t, s.game.Map.TileByIndex(idx)) <= startExclusionSq {
			return false
		}
	}
	return true
}
