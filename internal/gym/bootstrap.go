package gym

import (
	"fmt"

	"github.com/civgym/gym/internal/world"
)

// New-game steps, in the order they must run.
const (
	stepDisableAIFill = iota + 1
	stepLoadRuleset
	stepClearAIFill
	stepConfigure
	stepCreatePlayers
	stepAllocateMap
	stepGenerateMap
	stepStart
)

func (e *Env) bootstrap(cfg GameConfig) error {
	steps := []func(GameConfig) error{
		e.disableAIFill,
		e.loadRuleset,
		e.clearAIFill,
		e.configure,
		e.createPlayers,
		e.allocateMap,
		e.generateMap,
		e.startGame,
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return err
		}
	}
	return nil
}

// disableAIFill turns AI-fill off so loading the ruleset cannot create
// players behind our back.
func (e *Env) disableAIFill(GameConfig) error {
	if err := e.engine.SetAIFill(0); err != nil {
		return stepErr(stepDisableAIFill, ErrRulesetLoad, err)
	}
	return nil
}

func (e *Env) loadRuleset(cfg GameConfig) error {
	if err := e.engine.LoadRuleset(cfg.Ruleset); err != nil {
		return stepErr(stepLoadRuleset, ErrRulesetLoad, err)
	}
	return nil
}

// clearAIFill undoes the AI-fill value the ruleset just applied.
func (e *Env) clearAIFill(GameConfig) error {
	if err := e.engine.SetAIFill(0); err != nil {
		return stepErr(stepClearAIFill, ErrPlayerCreate, err)
	}
	if _, err := e.engine.AIFill(0); err != nil {
		return stepErr(stepClearAIFill, ErrPlayerCreate, err)
	}
	return nil
}

// configure forces alternating phases and applies the game options.
func (e *Env) configure(cfg GameConfig) error {
	e.engine.SetPhaseMode(world.PhasePlayersAlternate)
	e.engine.SetFogOfWar(cfg.FogOfWar)
	if cfg.EndTurn > 0 {
		if err := e.engine.SetEndTurn(cfg.EndTurn); err != nil {
			return stepErr(stepConfigure, ErrStartSequence, err)
		}
	}
	return nil
}

// createPlayers makes the agent's player first, then the AI players.
// Players created before a failure stay in the game.
func (e *Env) createPlayers(cfg GameConfig) error {
	human, err := e.newPlayer()
	if err != nil {
		return stepErr(stepCreatePlayers, ErrPlayerCreate, fmt.Errorf("controlled player: %w", err))
	}
	e.engine.SetAsHuman(human)
	e.engine.InitTraits(human)
	e.controlled = human.Index

	for i := 0; i < cfg.NumAIPlayers; i++ {
		p, err := e.newPlayer()
		if err != nil {
			return stepErr(stepCreatePlayers, ErrPlayerCreate, fmt.Errorf("AI player %d: %w", i, err))
		}
		e.engine.SetAsAI(p, cfg.AISkillLevel)
		e.engine.InitTraits(p)
	}
	return nil
}

func (e *Env) newPlayer() (*world.Player, error) {
	p, err := e.engine.CreatePlayer()
	if err != nil {
		return nil, err
	}
	if err := e.engine.PickNation(p); err != nil {
		return nil, err
	}
	return p, nil
}

// allocateMap creates the map and every player's map state. Start position
// placement needs the latter.
func (e *Env) allocateMap(cfg GameConfig) error {
	if err := e.engine.AllocateMap(cfg.Width, cfg.Height); err != nil {
		return stepErr(stepAllocateMap, ErrMapGenerate, err)
	}
	for _, p := range e.engine.Players() {
		if err := e.engine.PlayerMapInit(p); err != nil {
			return stepErr(stepAllocateMap, ErrMapGenerate, err)
		}
	}
	return nil
}

func (e *Env) generateMap(GameConfig) error {
	if err := e.engine.GenerateMap(e.seed, e.engine.StartUnitHint()); err != nil {
		return stepErr(stepGenerateMap, ErrMapGenerate, err)
	}
	return nil
}

// startGame replays the engine's new-game start sequence and opens turn 1.
func (e *Env) startGame(GameConfig) error {
	eng := e.engine
	// Without a shuffled order every AI lookup resolves to player 0.
	eng.ShufflePlayers()
	eng.AdvanceTurn()
	eng.InitYear()
	eng.BroadcastMapReady()
	eng.SetRunning()
	eng.SnapshotFogOfWar()

	players := eng.Players()
	for _, p := range players {
		eng.LimitRates(p)
		if p.IsAI {
			eng.SetAILevel(p)
		} else {
			eng.SetScienceCost(p, 100)
		}
		eng.InitEconomy(p)
		eng.InitResearch(p)
	}
	eng.AssignColors()
	for _, p := range players {
		eng.AnalyzeRulesets(p)
		eng.AdvisorDefaults(p)
	}

	if err := eng.InitNewGame(); err != nil {
		return stepErr(stepStart, ErrStartSequence, err)
	}
	if err := eng.CreateAnimals(); err != nil {
		return stepErr(stepStart, ErrStartSequence, err)
	}
	eng.BroadcastGameStart()
	eng.BeginTurn(true)
	eng.SetPhase(0)
	eng.BeginPhase(true)
	return nil
}
