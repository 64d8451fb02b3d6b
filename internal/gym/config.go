package gym

import (
	"fmt"

	"github.com/civgym/gym/internal/config"
)

// GameConfig describes one game. Seed 0 draws a seed from the clock;
// EndTurn 0 keeps the ruleset's turn limit.
type GameConfig struct {
	Ruleset      string `json:"ruleset"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NumAIPlayers int    `json:"num_ai_players"`
	AISkillLevel int    `json:"ai_skill_level"`
	Seed         uint32 `json:"seed"`
	FogOfWar     bool   `json:"fog_of_war"`
	EndTurn      int    `json:"end_turn"`
}

// ConfigFrom converts the file configuration's game section.
func ConfigFrom(c config.GameConfig) GameConfig {
	return GameConfig{
		Ruleset:      c.Ruleset,
		Width:        c.MapWidth,
		Height:       c.MapHeight,
		NumAIPlayers: c.NumAIPlayers,
		AISkillLevel: c.AISkillLevel,
		Seed:         c.Seed,
		FogOfWar:     c.FogOfWar,
		EndTurn:      c.EndTurn,
	}
}

// Validate rejects configurations that would fail partway through a new
// game, reporting the step they would fail at.
func (c GameConfig) Validate() error {
	if c.Ruleset == "" {
		return stepErr(stepLoadRuleset, ErrRulesetLoad, fmt.Errorf("empty ruleset name"))
	}
	if c.NumAIPlayers < 0 {
		return stepErr(stepCreatePlayers, ErrPlayerCreate, fmt.Errorf("negative AI player count %d", c.NumAIPlayers))
	}
	if c.Width <= 0 || c.Height <= 0 {
		return stepErr(stepAllocateMap, ErrMapGenerate, fmt.Errorf("map size %dx%d", c.Width, c.Height))
	}
	if c.EndTurn < 0 {
		return stepErr(stepConfigure, ErrStartSequence, fmt.Errorf("negative end turn %d", c.EndTurn))
	}
	return nil
}
