package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/civgym/gym/internal/gym"
	"github.com/civgym/gym/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	rulesets, err := filepath.Abs("../../data/rulesets")
	require.NoError(t, err)
	scripts, err := filepath.Abs("../../scripts")
	require.NoError(t, err)

	body := fmt.Sprintf(`
[game]
ruleset = "civ2civ3"
map_width = 32
map_height = 32
num_ai_players = 2
ai_skill_level = 3
seed = 42
fog_of_war = true

[paths]
rulesets_dir = %q
scripts_dir = %q

[logging]
level = "error"
%s
`, rulesets, scripts, extra)
	path := filepath.Join(t.TempDir(), "civgym.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testApp(t *testing.T, settings ...string) *app {
	t.Helper()
	a, err := openApp(&globalOptions{configPath: writeConfig(t, ""), settings: settings})
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("CIVGYM_CONFIG", path)
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Game.MapWidth)
	assert.Equal(t, uint32(42), cfg.Game.Seed)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplySettings(t *testing.T) {
	a := testApp(t, "endturn=3", " landpercent = 40 ")
	out, err := a.engine.Execute("show endturn")
	require.NoError(t, err)
	assert.Contains(t, out, "3")

	require.NoError(t, a.newGame(a.gameConfig()))
	assert.Equal(t, 3, a.engine.Info().EndTurn)
}

func TestApplySettingsRejects(t *testing.T) {
	for _, bad := range []string{"endturn", "=5", "bogus=1", "endturn=x", "endturn=0"} {
		_, err := openApp(&globalOptions{configPath: writeConfig(t, ""), settings: []string{bad}})
		assert.Error(t, err, bad)
	}
}

func TestRandomAgentDeterministic(t *testing.T) {
	legal := []gym.Action{
		{Type: gym.ActionEndTurn},
		{Type: gym.ActionMove, ActorID: 1, SubTarget: 2},
		{Type: gym.ActionFortify, ActorID: 1},
		{Type: gym.ActionResearchSet, TargetID: 4},
	}
	a, b := newRandomAgent(7, nil), newRandomAgent(7, nil)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.choose(legal), b.choose(legal))
	}
	assert.Equal(t, gym.ActionEndTurn, newRandomAgent(1, nil).choose(nil).Type)
}

func TestSmoke(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer
	require.NoError(t, runSmoke(a, report{w: &buf}, 3))
	out := buf.String()
	assert.Contains(t, out, "32 x 32")
	assert.Contains(t, out, "smoke test complete")
	assert.Equal(t, 4, a.engine.Info().Turn)
}

func TestRunEpisodeRecords(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	store, err := persist.OpenSQLite(ctx, filepath.Join(t.TempDir(), "episodes.db"), 8, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	sum, err := runEpisode(ctx, a, store, a.gameConfig(), nil, 25)
	require.NoError(t, err)
	assert.LessOrEqual(t, sum.Steps, 25)
	assert.GreaterOrEqual(t, sum.Turns, 1)
	if sum.Truncated {
		assert.Equal(t, 25, sum.Steps)
		assert.Equal(t, -1, sum.Winner)
	}
}

func TestRunPlayWithoutRecording(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer
	require.NoError(t, runPlay(context.Background(), a, discardStore{}, report{w: &buf}, nil, 2, 10))
	assert.Contains(t, buf.String(), "Episodes")
	assert.Contains(t, buf.String(), "  2: ")
}

func TestRandomAgentSkips(t *testing.T) {
	skip, err := parseActionTypes([]string{"disband", " MOVE "})
	require.NoError(t, err)
	assert.Len(t, skip, 2)

	agent := newRandomAgent(1, skip)
	legal := []gym.Action{
		{Type: gym.ActionMove, ActorID: 1},
		{Type: gym.ActionDisband, ActorID: 1},
		{Type: gym.ActionFortify, ActorID: 1},
	}
	for i := 0; i < 20; i++ {
		got := agent.choose(append([]gym.Action(nil), legal...))
		assert.Equal(t, gym.ActionFortify, got.Type)
	}
	got := agent.choose([]gym.Action{{Type: gym.ActionMove}})
	assert.Equal(t, gym.ActionEndTurn, got.Type, "nothing left falls back to end turn")

	_, err = parseActionTypes([]string{"teleport"})
	assert.Error(t, err)
}
