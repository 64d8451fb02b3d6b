package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "civgym.toml")
	body := `
[game]
map_width = 24
num_ai_players = 4
seed = 7

[database]
driver = "postgres"
conn_max_lifetime = "5m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.Game.MapWidth)
	assert.Equal(t, 40, cfg.Game.MapHeight, "untouched keys keep their default")
	assert.Equal(t, 4, cfg.Game.NumAIPlayers)
	assert.Equal(t, uint32(7), cfg.Game.Seed)
	assert.Equal(t, "civ2civ3", cfg.Game.Ruleset)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[game\nmap_width = "), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestShippedConfigParses(t *testing.T) {
	cfg, err := Load("../../config/civgym.toml")
	require.NoError(t, err)
	assert.Equal(t, Default().Game, cfg.Game)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}
