package world

import (
	"testing"

	"github.com/civgym/gym/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginTurn(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	s.InitYear()
	spawn(t, s, ps[0], "Warriors", 5, 5)

	s.BeginTurn(true)
	assert.Equal(t, s.Ruleset().Game.StartYear, s.Info().Year)
	assert.True(t, ps[0].IsAlive)
	assert.False(t, ps[1].IsAlive, "no units and no cities")

	s.BeginTurn(false)
	assert.Equal(t, s.Ruleset().Game.StartYear+s.Ruleset().Game.YearStep, s.Info().Year)
	assert.Zero(t, s.Bus().Pending())
}

func TestScoresFollowCities(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	spawn(t, s, ps[1], "Warriors", 1, 1)
	c := s.createCity(ps[0].Index, s.TileAt(5, 5), "Test")
	c.Size = 5

	s.BeginTurn(false)
	assert.Greater(t, ps[0].Score, ps[1].Score)
}

func TestPhases(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 3)

	assert.Equal(t, 1, s.NumPhases())
	assert.True(t, s.IsPlayerPhase(ps[2], 0))

	s.SetPhaseMode(PhasePlayersAlternate)
	assert.Equal(t, 3, s.NumPhases())
	assert.True(t, s.IsPlayerPhase(ps[1], 1))
	assert.False(t, s.IsPlayerPhase(ps[1], 0))

	w0 := spawn(t, s, ps[0], "Warriors", 2, 2)
	w1 := spawn(t, s, ps[1], "Warriors", 8, 8)
	w0.MovesLeft, w1.MovesLeft = 0, 0
	s.SetPhase(1)
	s.BeginPhase(false)
	assert.Zero(t, w0.MovesLeft, "not this player's phase")
	assert.Equal(t, w1.MoveRate(), w1.MovesLeft)
}

func TestAIPhaseActs(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	ai := ps[1]
	s.SetAsAI(ai, 3)
	s.InitTraits(ai)
	s.AnalyzeRulesets(ai)
	s.AdvisorDefaults(ai)
	settlers := spawn(t, s, ai, "Settlers", 8, 8)

	s.AIPhaseFinished(ai)
	assert.True(t, ai.AIPhaseDone)
	assert.Nil(t, s.UnitByID(int(settlers.ID)), "first settlers found a city")
	assert.Len(t, s.CitiesOf(ai.Index), 1)
	assert.NotEqual(t, -1, ai.Research.Researching)
	assert.Positive(t, s.ai.orders)
	assert.Nil(t, s.CurrentAIPlayer())

	human := ps[0]
	s.AIPhaseFinished(human)
	assert.False(t, human.AIPhaseDone, "humans are skipped")
}

func TestTechDiscoveryRefreshesDefender(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)
	p := ps[0]
	p.Advisor.Defender = s.bestDefender(p)
	require.NotNil(t, p.Advisor.Defender)
	assert.Equal(t, "Warriors", p.Advisor.Defender.Name)

	bronze, err := s.Ruleset().Techs.Index("Bronze Working")
	require.NoError(t, err)
	p.Research.Researching = bronze
	p.Research.Bulbs = 1 << 20
	s.updateResearch(p)
	require.True(t, p.Research.Knows(bronze))
	assert.Equal(t, 1, s.Bus().Pending())
	assert.Equal(t, "Warriors", p.Advisor.Defender.Name, "queued until the next turn")

	s.BeginTurn(false)
	assert.Equal(t, "Phalanx", p.Advisor.Defender.Name)
	assert.Zero(t, s.Bus().Pending())
}

func TestUnitLostTallies(t *testing.T) {
	s := newTestServer(t)
	ps := flatWorld(t, s, 2)

	event.Publish(s.Bus(), event.UnitLost{UnitID: 1, Owner: ps[1].Index, Killer: ps[0].Index})
	event.Publish(s.Bus(), event.UnitLost{UnitID: 2, Owner: ps[1].Index, Killer: -1})

	assert.Equal(t, 2, ps[1].Stats.UnitsLost)
	assert.Equal(t, 1, ps[0].Stats.UnitsKilled)
	assert.Zero(t, ps[1].Stats.UnitsKilled)
}
