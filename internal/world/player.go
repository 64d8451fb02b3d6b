package world

import (
	"github.com/civgym/gym/internal/data"
)

// Economic holds a player's treasury and rates. Rates are percentages that
// sum to 100.
type Economic struct {
	Gold        int
	Tax         int
	Science     int
	Luxury      int
	InfraPoints int
}

// PlayerStats feed the score.
type PlayerStats struct {
	UnitsBuilt  int
	UnitsKilled int
	UnitsLost   int
}

// Advisor is the AI's digest of the ruleset and its own situation.
type Advisor struct {
	Analyzed   bool
	Defender   *data.UnitType // best defender it can build now
	WantCities int
	MapReady   bool
	Started    bool
}

// Player is one participant, human, AI or barbarian.
type Player struct {
	Index       int
	Name        string
	Nation      *data.Nation
	IsAlive     bool
	IsAI        bool
	IsBarbarian bool
	AIFilled    bool // created by the aifill setting
	SkillLevel  int
	ScienceCost int // percent
	Economic    Economic
	PhaseDone   bool
	AIPhaseDone bool
	Color       data.RGB
	Score       int
	Traits      data.Traits
	Research    *Research
	Stats       PlayerStats
	Advisor     Advisor

	known []bool // per tile; nil until the player map is initialised
}

// Knows reports whether the tile with the given index is known to p.
func (p *Player) Knows(tileIndex int) bool {
	return p.known != nil && tileIndex >= 0 && tileIndex < len(p.known) && p.known[tileIndex]
}

// MapInitialized reports whether the per-player map state exists.
func (p *Player) MapInitialized() bool { return p.known != nil }

// KnownCount returns how many tiles p knows.
func (p *Player) KnownCount() int {
	n := 0
	for _, k := range p.known {
		if k {
			n++
		}
	}
	return n
}

// Research tracks one player's science.
type Research struct {
	Researching int // -1 when unset
	Bulbs       int
	known       []bool
	numKnown    int
}

func newResearch(numTechs int) *Research {
	return &Research{Researching: -1, known: make([]bool, numTechs)}
}

// Knows reports whether tech is known.
func (r *Research) Knows(tech int) bool {
	return tech >= 0 && tech < len(r.known) && r.known[tech]
}

// NumKnown returns the number of known techs.
func (r *Research) NumKnown() int { return r.numKnown }

func (r *Research) learn(tech int) bool {
	if tech < 0 || tech >= len(r.known) || r.known[tech] {
		return false
	}
	r.known[tech] = true
	r.numKnown++
	return true
}
