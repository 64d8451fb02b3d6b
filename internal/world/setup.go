package world

import (
	"fmt"

	"github.com/civgym/gym/internal/core/event"
	"github.com/civgym/gym/internal/data"
	"go.uber.org/zap"
)

// SetFogOfWar sets the fog-of-war game setting. With fog off every player
// map already allocated becomes fully known.
func (s *Server) SetFogOfWar(on bool) {
	if s.game == nil {
		return
	}
	s.game.Info.FogOfWar = on
	if on {
		return
	}
	for _, p := range s.game.players {
		revealAll(p)
	}
}

func revealAll(p *Player) {
	for i := range p.known {
		p.known[i] = true
	}
}

// SetEndTurn overrides the turn limit.
func (s *Server) SetEndTurn(turn int) error {
	if err := s.settings.Set("endturn", turn); err != nil {
		return err
	}
	if s.game != nil {
		s.game.Info.EndTurn = turn
	}
	return nil
}

// SetPhaseMode sets how phases are allotted to players.
func (s *Server) SetPhaseMode(mode PhaseMode) {
	if s.game != nil {
		s.game.Info.PhaseMode = mode
	}
}

// SetAIFill changes the aifill setting without creating or removing players.
func (s *Server) SetAIFill(n int) error {
	return s.settings.Set("aifill", n)
}

// LoadRuleset loads a ruleset into the current game. Loading resets ruleset
// governed settings, including aifill; if aifill was non-zero when loading
// started, AI players are created to match the ruleset's aifill value.
func (s *Server) LoadRuleset(name string) error {
	if s.game == nil {
		return ErrNoGame
	}
	rs, err := data.LoadRuleset(s.opts.RulesetsDir, name)
	if err != nil {
		return fmt.Errorf("load ruleset: %w", err)
	}
	fillBefore := s.settings.Get("aifill")

	s.game.Ruleset = rs
	if err := s.settings.Set("aifill", rs.Game.AIFill); err != nil {
		return fmt.Errorf("ruleset aifill: %w", err)
	}
	if err := s.SetEndTurn(rs.Game.EndTurn); err != nil {
		return fmt.Errorf("ruleset end_turn: %w", err)
	}
	if rs.Game.Animals >= 0 {
		_ = s.settings.Set("animals", rs.Game.Animals)
	}
	if rs.Game.LandPercent > 0 {
		_ = s.settings.Set("landpercent", rs.Game.LandPercent)
	}
	if rs.Game.MinCityDistance > 0 {
		_ = s.settings.Set("citymindist", rs.Game.MinCityDistance)
	}
	s.log.Info("ruleset loaded",
		zap.String("ruleset", name),
		zap.Int("units", rs.Units.Count()),
		zap.Int("buildings", rs.Buildings.Count()),
		zap.Int("techs", rs.Techs.Count()),
	)

	if fillBefore > 0 {
		if _, err := s.AIFill(s.settings.Get("aifill")); err != nil {
			return fmt.Errorf("aifill: %w", err)
		}
	}
	return nil
}

// AIFill adds or removes aifill-created AI players until exactly n exist.
// It returns the number of aifill players afterwards.
func (s *Server) AIFill(n int) (int, error) {
	if s.game == nil {
		return 0, ErrNoGame
	}
	filled := 0
	for _, p := range s.game.players {
		if p.AIFilled {
			filled++
		}
	}
	for filled > n {
		for i := len(s.game.players) - 1; i >= 0; i-- {
			if s.game.players[i].AIFilled {
				s.removePlayer(i)
				break
			}
		}
		filled--
	}
	for filled < n {
		p, err := s.CreatePlayer()
		if err != nil {
			return filled, err
		}
		if err := s.PickNation(p); err != nil {
			s.removePlayer(p.Index)
			return filled, err
		}
		s.SetAsAI(p, 3)
		s.InitTraits(p)
		p.AIFilled = true
		filled++
	}
	return filled, nil
}

// removePlayer deletes a pregame player slot and renumbers the rest.
func (s *Server) removePlayer(i int) {
	g := s.game
	g.players = append(g.players[:i], g.players[i+1:]...)
	for j, p := range g.players {
		p.Index = j
	}
	g.shuffled = g.shuffled[:len(g.players)]
	for j := range g.shuffled {
		g.shuffled[j] = 0
	}
}

// CreatePlayer allocates a new player slot.
func (s *Server) CreatePlayer() (*Player, error) {
	g := s.game
	if g == nil {
		return nil, ErrNoGame
	}
	if g.Ruleset == nil {
		return nil, ErrNoRuleset
	}
	if len(g.players) >= g.Ruleset.Game.MaxPlayers {
		return nil, fmt.Errorf("%w: limit %d", ErrTooManyPlayers, g.Ruleset.Game.MaxPlayers)
	}
	p := &Player{
		Index:       len(g.players),
		IsAlive:     true,
		ScienceCost: 100,
		Economic:    Economic{Tax: 30, Science: 40, Luxury: 30},
		Research:    newResearch(g.Ruleset.Techs.Count()),
	}
	g.players = append(g.players, p)
	// Unshuffled slots all point at player 0 until ShufflePlayers runs;
	// later players join at the end of the order.
	slot := 0
	if g.isShuffled {
		slot = p.Index
	}
	g.shuffled = append(g.shuffled, slot)
	if g.Map != nil {
		s.PlayerMapInit(p)
	}
	return p, nil
}

// PickNation assigns a random unused playable nation to p.
func (s *Server) PickNation(p *Player) error {
	rs := s.game.Ruleset
	used := make(map[int]bool, len(s.game.players))
	for _, other := range s.game.players {
		if other.Nation != nil {
			used[other.Nation.Index] = true
		}
	}
	var free []*data.Nation
	for i := 0; i < rs.Nations.Count(); i++ {
		n := rs.Nations.Get(i)
		if !n.Barbarian && !used[n.Index] {
			free = append(free, n)
		}
	}
	if len(free) == 0 {
		return ErrNoNation
	}
	n := free[s.randIntn(len(free))]
	p.Nation = n
	p.Name = n.Leader
	return nil
}

// SetAsHuman hands p to a human (or agent) controller.
func (s *Server) SetAsHuman(p *Player) {
	p.IsAI = false
	p.SkillLevel = 0
}

// SetAsAI hands p to the AI at the given skill level (0-10).
func (s *Server) SetAsAI(p *Player, skill int) {
	p.IsAI = true
	p.SkillLevel = min(max(skill, 0), 10)
}

// InitTraits copies the nation's AI traits to p.
func (s *Server) InitTraits(p *Player) {
	if p.Nation != nil {
		p.Traits = p.Nation.Traits
		return
	}
	p.Traits = data.Traits{Expansionist: 50, Aggressive: 50, Builder: 50}
}

// AllocateMap creates an empty width x height map.
func (s *Server) AllocateMap(width, height int) error {
	if s.game == nil {
		return ErrNoGame
	}
	if width < MinMapSide || height < MinMapSide || width > MaxMapSide || height > MaxMapSide {
		return fmt.Errorf("%w: %dx%d", ErrMapSize, width, height)
	}
	s.game.Map = newMap(width, height)
	for _, p := range s.game.players {
		p.known = nil
	}
	return nil
}

// PlayerMapInit allocates p's per-tile knowledge. Without fog of war the
// whole map starts known.
func (s *Server) PlayerMapInit(p *Player) error {
	if s.game == nil || s.game.Map == nil {
		return ErrNoMap
	}
	p.known = make([]bool, len(s.game.Map.Tiles))
	if !s.game.Info.FogOfWar {
		revealAll(p)
	}
	return nil
}

// StartUnitHint returns the unit type of the first start unit, falling back
// to the first buildable unit.
func (s *Server) StartUnitHint() *data.UnitType {
	rs := s.game.Ruleset
	for _, c := range rs.Game.StartUnits {
		if ut := rs.StartUnitType(c); ut != nil {
			return ut
		}
	}
	return rs.FirstBuild()
}

// ShufflePlayers draws a new random player order.
func (s *Server) ShufflePlayers() {
	g := s.game
	g.shuffled = s.ensureRNG().Perm(len(g.players))
	g.isShuffled = true
}

// AdvanceTurn increments the turn counter.
func (s *Server) AdvanceTurn() {
	s.game.Info.Turn++
}

// InitYear sets the calendar to the ruleset start year.
func (s *Server) InitYear() {
	s.game.Info.Year = s.game.Ruleset.Game.StartYear
}

// BroadcastMapReady tells every AI that the map exists.
func (s *Server) BroadcastMapReady() {
	m := s.game.Map
	event.Publish(s.bus, event.MapReady{Width: m.Width, Height: m.Height})
}

// BroadcastGameStart tells every AI the game has started.
func (s *Server) BroadcastGameStart() {
	event.Publish(s.bus, event.GameStarted{Turn: s.game.Info.Turn, Year: s.game.Info.Year})
}

// SetRunning moves the game into the running state.
func (s *Server) SetRunning() {
	s.game.Info.State = StateRunning
}

// SnapshotFogOfWar remembers the fog setting the game started with.
func (s *Server) SnapshotFogOfWar() {
	s.game.Info.FogOfWarOld = s.game.Info.FogOfWar
}

// LimitRates clamps p's rates to the ruleset maximum and makes them sum to 100.
func (s *Server) LimitRates(p *Player) {
	maxRate := s.game.Ruleset.Game.MaxRate
	e := &p.Economic
	e.Tax = min(max(e.Tax, 0), maxRate)
	e.Science = min(max(e.Science, 0), maxRate)
	e.Luxury = min(max(e.Luxury, 0), maxRate)

	diff := 100 - (e.Tax + e.Science + e.Luxury)
	for _, r := range []*int{&e.Science, &e.Tax, &e.Luxury} {
		if diff > 0 {
			add := min(diff, maxRate-*r)
			*r += add
			diff -= add
		} else if diff < 0 {
			sub := min(-diff, *r)
			*r -= sub
			diff += sub
		}
	}
	if diff != 0 {
		e.Luxury += diff
	}
}

// SetAILevel applies p's skill level, which also sets its science cost.
func (s *Server) SetAILevel(p *Player) {
	p.ScienceCost = s.lua.AIScienceCost(p.SkillLevel)
}

// SetScienceCost sets p's science cost percentage.
func (s *Server) SetScienceCost(p *Player, pct int) {
	p.ScienceCost = pct
}

// InitEconomy gives p the ruleset starting gold and infrastructure points.
func (s *Server) InitEconomy(p *Player) {
	p.Economic.Gold = s.game.Ruleset.Game.Gold
	p.Economic.InfraPoints = s.game.Ruleset.Game.InfraPoints
}

// InitResearch resets p's research and grants the initial techs.
func (s *Server) InitResearch(p *Player) {
	rs := s.game.Ruleset
	p.Research = newResearch(rs.Techs.Count())
	for _, tech := range rs.Game.InitTechIndices() {
		p.Research.learn(tech)
	}
}

// AssignColors gives every player a color from the ruleset palette.
func (s *Server) AssignColors() {
	colors := s.game.Ruleset.Game.Colors
	for i, p := range s.game.players {
		p.Color = colors[i%len(colors)]
	}
}

// AnalyzeRulesets lets p's advisor digest the ruleset.
func (s *Server) AnalyzeRulesets(p *Player) {
	p.Advisor.Defender = s.bestDefender(p)
	p.Advisor.Analyzed = true
}

// AdvisorDefaults sets p's advisor goals from its traits.
func (s *Server) AdvisorDefaults(p *Player) {
	p.Advisor.WantCities = 3 + p.Traits.Expansionist/25
}

// bestDefender is the strongest defender p can build now.
func (s *Server) bestDefender(p *Player) *data.UnitType {
	rs := s.game.Ruleset
	var best *data.UnitType
	for i := 0; i < rs.Units.Count(); i++ {
		ut := rs.Units.Get(i)
		if !ut.HasRole(data.RoleDefendOk) || (ut.Tech >= 0 && !p.Research.Knows(ut.Tech)) {
			continue
		}
		if best == nil || ut.Defense > best.Defense {
			best = ut
		}
	}
	return best
}

// InitNewGame places every non-barbarian player's start units on its start
// position.
func (s *Server) InitNewGame() error {
	g := s.game
	rs := g.Ruleset
	starts := g.Map.StartPositions()
	slot := 0
	for _, p := range g.players {
		if p.IsBarbarian {
			continue
		}
		if slot >= len(starts) {
			return fmt.Errorf("%w: player %d has no start position", ErrNoStartPos, p.Index)
		}
		start := g.Map.TileByIndex(starts[slot])
		slot++
		for _, role := range rs.Game.StartUnits {
			ut := rs.StartUnitType(role)
			if ut == nil {
				continue
			}
			s.createUnit(p.Index, ut, s.disperse(start, ut), 0, 0)
		}
		s.revealAround(p, start, rs.Game.CityVisionRadiusSq)
	}
	return nil
}

// disperse picks a tile near start for a start unit, honouring the
// dispersion setting.
func (s *Server) disperse(start *Tile, ut *data.UnitType) *Tile {
	d := s.settings.Get("dispersion")
	if d == 0 {
		return start
	}
	var options []*Tile
	s.game.Map.RadiusIterate(start, d*d*2, func(t *Tile) {
		if canExistAt(ut, t) && !t.HasCity() {
			options = append(options, t)
		}
	})
	if len(options) == 0 {
		return start
	}
	return options[s.randIntn(len(options))]
}

// canExistAt reports whether a unit of type ut may stand on t.
func canExistAt(ut *data.UnitType, t *Tile) bool {
	if t.Terrain == nil || t.Terrain.Name == "Inaccessible" {
		return false
	}
	if ut.Domain == data.DomainSea {
		return t.IsOcean() || t.HasCity()
	}
	return !t.IsOcean()
}
