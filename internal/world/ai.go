package world

import (
	"github.com/civgym/gym/internal/core/event"
	"github.com/civgym/gym/internal/data"
	"github.com/civgym/gym/internal/scripting"
	"go.uber.org/zap"
)

const rollRange = 10000

// aiModule drives AI players through the Lua policies. Orders go through
// the same handlers an agent uses.
type aiModule struct {
	s      *Server
	phases int // AI phases run this game
	orders int // orders executed this game
}

func newAIModule(s *Server) *aiModule {
	m := &aiModule{s: s}
	event.Subscribe(s.bus, m.onMapReady)
	event.Subscribe(s.bus, m.onGameStarted)
	event.Subscribe(s.bus, m.onTechDiscovered)
	return m
}

func (m *aiModule) reset() {
	m.phases = 0
	m.orders = 0
}

func (m *aiModule) onMapReady(event.MapReady) {
	for _, p := range m.s.Players() {
		if p.IsAI {
			p.Advisor.MapReady = true
		}
	}
}

func (m *aiModule) onGameStarted(event.GameStarted) {
	for _, p := range m.s.Players() {
		if !p.IsAI {
			continue
		}
		if !p.Advisor.Analyzed {
			m.s.AnalyzeRulesets(p)
		}
		p.Advisor.Started = true
	}
}

// onTechDiscovered refreshes the defender choice, which depends on known techs.
func (m *aiModule) onTechDiscovered(ev event.TechDiscovered) {
	if p := m.s.PlayerByIndex(ev.Player); p != nil {
		p.Advisor.Defender = m.s.bestDefender(p)
	}
}

func (m *aiModule) playerPhase(p *Player) {
	s := m.s
	m.phases++
	if p.IsBarbarian {
		for _, u := range s.UnitsOf(p.Index) {
			if s.UnitByID(int(u.ID)) == nil {
				continue
			}
			for _, cmd := range s.lua.RunAnimalAI(scripting.AnimalAIContext{Unit: m.unitView(u)}) {
				m.execute(p, cmd)
			}
		}
		return
	}
	for _, cmd := range s.lua.RunPlayerAI(m.playerView(p)) {
		m.execute(p, cmd)
	}
}

func (m *aiModule) playerView(p *Player) scripting.PlayerAIContext {
	s := m.s
	rs := s.game.Ruleset
	ctx := scripting.PlayerAIContext{
		Player:       p.Index,
		Turn:         s.game.Info.Turn,
		Gold:         p.Economic.Gold,
		Expansionist: p.Traits.Expansionist,
		Aggressive:   p.Traits.Aggressive,
		Builder:      p.Traits.Builder,
		WantCities:   p.Advisor.WantCities,
		Roll:         s.randIntn(rollRange),
	}
	if p.Advisor.Defender != nil {
		ctx.Defender = p.Advisor.Defender.Name
	}
	if t := rs.Techs.Get(p.Research.Researching); t != nil {
		ctx.Researching = t.Name
	}
	for _, tech := range s.Researchable(p) {
		ctx.Researchable = append(ctx.Researchable, rs.Techs.Get(tech).Name)
	}
	cities := s.CitiesOf(p.Index)
	ctx.NumCities = len(cities)
	for _, c := range cities {
		ctx.Cities = append(ctx.Cities, m.cityView(c))
	}
	for _, u := range s.UnitsOf(p.Index) {
		ctx.Units = append(ctx.Units, m.unitView(u))
	}
	return ctx
}

func (m *aiModule) cityView(c *City) scripting.AICity {
	s := m.s
	rs := s.game.Ruleset
	view := scripting.AICity{
		ID:              int(c.ID),
		Size:            c.Size,
		Producing:       s.ProductionName(c),
		ProducingIsUnit: c.Production.Kind == ProductionUnit,
		ShieldStock:     c.ShieldStock,
		Defenders:       s.cityDefenders(c),
		Coastal:         s.game.Map.IsCoastal(s.game.Map.TileByIndex(c.Tile)),
		Roll:            s.randIntn(rollRange),
	}
	for i := 0; i < rs.Units.Count(); i++ {
		if ut := rs.Units.Get(i); s.CanCityBuildUnitNow(c, ut) {
			view.Units = append(view.Units, ut.Name)
		}
	}
	for i := 0; i < rs.Buildings.Count(); i++ {
		if b := rs.Buildings.Get(i); s.CanCityBuildImprovementNow(c, b) {
			view.Buildings = append(view.Buildings, b.Name)
		}
	}
	return view
}

func (m *aiModule) unitView(u *Unit) scripting.AIUnit {
	s := m.s
	t := s.UnitTile(u)
	view := scripting.AIUnit{
		ID:        int(u.ID),
		Type:      u.Type.Name,
		X:         t.X,
		Y:         t.Y,
		HP:        u.HP,
		MaxHP:     u.Type.HP,
		MovesLeft: u.MovesLeft,
		Military:  u.Type.IsMilitary(),
		CanFound:  s.IsActionEnabled(ActionFoundCity, u, t),
		CanWork:   u.Type.HasFlag(data.FlagSettlers),
		InCity:    t.HasCity(),
		Fortified: u.Activity == ActivityFortified || u.Activity == ActivityFortifying,
		Busy:      u.Activity.IsTerrainWork(),
		CanRoad:   s.CanUnitDoActivity(u, ActivityRoad, -1),
		CanIrr:    s.CanUnitDoActivity(u, ActivityIrrigate, -1),
		CanMine:   s.CanUnitDoActivity(u, ActivityMine, -1),
		Roll:      s.randIntn(rollRange),
	}
	for d := Direction(0); d < NumDirections; d++ {
		dst := s.game.Map.Step(t, d)
		if dst == nil {
			continue
		}
		if s.CanUnitMoveToTile(u, dst) {
			view.MoveDirs = append(view.MoveDirs, int(d))
		}
		if s.IsActionEnabled(ActionAttack, u, dst) || s.IsActionEnabled(ActionConquerCity, u, dst) {
			view.AttackDirs = append(view.AttackDirs, int(d))
		}
	}
	return view
}

func (m *aiModule) execute(p *Player, cmd scripting.AICommand) {
	s := m.s
	rs := s.game.Ruleset
	ok := false
	switch cmd.Type {
	case "found_city":
		if u := s.UnitByID(cmd.Unit); u != nil {
			ok = s.PerformAction(p, cmd.Unit, u.Tile, "", ActionFoundCity)
		}
	case "move", "attack":
		u := s.UnitByID(cmd.Unit)
		if u == nil || u.Owner != p.Index {
			break
		}
		ok = s.UnitMoveHandling(u, s.game.Map.Step(s.UnitTile(u), Direction(cmd.Dir)))
	case "fortify":
		ok = s.HandleChangeActivity(p, cmd.Unit, ActivityFortifying, -1)
	case "road":
		ok = s.HandleChangeActivity(p, cmd.Unit, ActivityRoad, -1)
	case "irrigate":
		ok = s.HandleChangeActivity(p, cmd.Unit, ActivityIrrigate, -1)
	case "mine":
		ok = s.HandleChangeActivity(p, cmd.Unit, ActivityMine, -1)
	case "produce":
		if cmd.Kind == "building" {
			if b := rs.Buildings.ByName(cmd.Name); b != nil {
				ok = s.HandleCityChange(p, cmd.City, ProductionBuilding, b.Index)
			}
		} else if ut := rs.Units.ByName(cmd.Name); ut != nil {
			ok = s.HandleCityChange(p, cmd.City, ProductionUnit, ut.Index)
		}
	case "research":
		if t := rs.Techs.ByName(cmd.Name); t != nil {
			ok = s.HandlePlayerResearch(p, t.Index)
		}
	case "idle", "":
		return
	default:
		s.log.Warn("unknown AI order", zap.String("type", cmd.Type), zap.Int("player", p.Index))
		return
	}
	if ok {
		m.orders++
	}
}
