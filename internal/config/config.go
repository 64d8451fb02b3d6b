package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game     GameConfig     `toml:"game"`
	Paths    PathsConfig    `toml:"paths"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// GameConfig holds the defaults for a new game. Seed 0 means "seed from the clock".
type GameConfig struct {
	Ruleset      string `toml:"ruleset"`
	MapWidth     int    `toml:"map_width"`
	MapHeight    int    `toml:"map_height"`
	NumAIPlayers int    `toml:"num_ai_players"`
	AISkillLevel int    `toml:"ai_skill_level"` // 0-10
	Seed         uint32 `toml:"seed"`
	FogOfWar     bool   `toml:"fog_of_war"`
	EndTurn      int    `toml:"end_turn"` // 0 = ruleset default
}

type PathsConfig struct {
	RulesetsDir string `toml:"rulesets_dir"`
	ScriptsDir  string `toml:"scripts_dir"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"` // "sqlite" or "postgres"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushEvery      int           `toml:"flush_every"` // buffered steps per transaction
}

type ServerConfig struct {
	BindAddress  string        `toml:"bind_address"`
	Compression  bool          `toml:"compression"` // allow ?compress=zstd
	WriteTimeout time.Duration `toml:"write_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	MaxMessage   int64         `toml:"max_message"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration, used when no file is present.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Ruleset:      "civ2civ3",
			MapWidth:     40,
			MapHeight:    40,
			NumAIPlayers: 2,
			AISkillLevel: 3,
			Seed:         12345,
			FogOfWar:     true,
		},
		Paths: PathsConfig{
			RulesetsDir: "data/rulesets",
			ScriptsDir:  "scripts",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "civgym.db",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			FlushEvery:      64,
		},
		Server: ServerConfig{
			BindAddress:  "127.0.0.1:7100",
			Compression:  true,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  5 * time.Minute,
			MaxMessage:   1 << 16,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
