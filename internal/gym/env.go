package gym

import (
	"fmt"

	"github.com/civgym/gym/internal/core/system"
	"github.com/civgym/gym/internal/world"
	"go.uber.org/zap"
)

// Env is one reinforcement-learning environment over one engine. It is not
// safe for concurrent use, and two Envs must not share an engine.
type Env struct {
	engine Engine
	log    *zap.Logger

	initialized bool
	running     bool
	controlled  int // player index of the agent
	cfg         GameConfig
	seed        uint32 // seed actually used by the current game

	turn     *system.Runner
	handlers map[ActionType]actionHandler
}

// New returns an environment driving engine. Call Init before NewGame.
func New(engine Engine, log *zap.Logger) *Env {
	e := &Env{
		engine:     engine,
		log:        log,
		controlled: -1,
		handlers:   defaultHandlers(),
	}
	e.turn = newTurnRunner(e)
	return e
}

// Init initialises the engine. Calling it again is a no-op.
func (e *Env) Init() error {
	if e.initialized {
		return nil
	}
	if err := e.engine.SrvInit(); err != nil {
		return fmt.Errorf("engine init: %w", err)
	}
	e.initialized = true
	e.log.Debug("environment initialised")
	return nil
}

// Shutdown frees a running game and the engine. Safe to call at any time.
func (e *Env) Shutdown() {
	if e.running {
		e.teardown()
	}
	if e.initialized {
		e.engine.SrvShutdown()
		e.initialized = false
	}
}

func (e *Env) teardown() {
	e.engine.GameFree()
	e.engine.RandUninit()
	e.running = false
	e.controlled = -1
}

// NewGame builds a fresh running game from cfg, replacing any current one.
// On failure the returned *BootstrapError names the failing step; whatever
// ran before it stays in place, so call Shutdown or NewGame again.
func (e *Env) NewGame(cfg GameConfig) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if e.running {
		e.teardown()
	}
	e.engine.GameInit()
	e.seed = e.engine.RandInit(cfg.Seed)
	e.cfg = cfg

	if err := e.bootstrap(cfg); err != nil {
		e.log.Warn("new game failed", zap.Error(err))
		return err
	}
	e.running = true
	info := e.engine.Info()
	e.log.Info("game started",
		zap.String("ruleset", cfg.Ruleset),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("ai_players", cfg.NumAIPlayers),
		zap.Uint32("seed", e.seed),
		zap.Int("turn", info.Turn),
		zap.Int("end_turn", info.EndTurn),
	)
	return nil
}

// Reset would restart the current game in place. It is not supported.
func (e *Env) Reset() error {
	return ErrNotImplemented
}

// Running reports whether a game is in progress.
func (e *Env) Running() bool { return e.running }

// Initialized reports whether Init has succeeded.
func (e *Env) Initialized() bool { return e.initialized }

// Seed returns the seed of the current game.
func (e *Env) Seed() uint32 { return e.seed }

// Config returns the configuration of the current game.
func (e *Env) Config() GameConfig { return e.cfg }

// ControlledPlayer returns the agent's player, or nil when no game runs.
func (e *Env) ControlledPlayer() *world.Player {
	if !e.running {
		return nil
	}
	return e.engine.PlayerByIndex(e.controlled)
}

// Unit looks up any unit by id, ignoring visibility. Nil when no game runs.
func (e *Env) Unit(id int) *world.Unit {
	if !e.running {
		return nil
	}
	return e.engine.UnitByID(id)
}

// City looks up any city by id, ignoring visibility. Nil when no game runs.
func (e *Env) City(id int) *world.City {
	if !e.running {
		return nil
	}
	return e.engine.CityByID(id)
}

// Tile looks up the tile at (x, y). Nil when no game runs.
func (e *Env) Tile(x, y int) *world.Tile {
	if !e.running {
		return nil
	}
	return e.engine.TileAt(x, y)
}
