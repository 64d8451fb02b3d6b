package gym

import (
	"github.com/civgym/gym/internal/world"
	"go.uber.org/zap"
)

// Info strings reported by Step.
const (
	InfoNotRunning        = "Game not running or invalid action"
	InfoNoControlled      = "Controlled player not found"
	InfoUnknownActionType = "Unknown action type"
)

// StepResult is the outcome of one Step. Truncated is never set.
type StepResult struct {
	Reward    float64 `json:"reward"`
	Done      bool    `json:"done"`
	Truncated bool    `json:"truncated"`
	Info      string  `json:"info,omitempty"`
}

// actionHandler applies one action on behalf of p. Illegal actions are
// ignored. Only the end-turn handler touches res.
type actionHandler func(e *Env, p *world.Player, a Action, res *StepResult)

func defaultHandlers() map[ActionType]actionHandler {
	return map[ActionType]actionHandler{
		ActionMove:            handleMove,
		ActionAttack:          handleAttack,
		ActionFortify:         handleFortify,
		ActionBuildCity:       handleBuildCity,
		ActionBuildRoad:       terrainWork(world.ActivityRoad),
		ActionBuildIrrigation: terrainWork(world.ActivityIrrigate),
		ActionBuildMine:       terrainWork(world.ActivityMine),
		ActionDisband:         handleDisband,
		ActionCityBuild:       handleCityBuild,
		ActionCityBuy:         handleCityBuy,
		ActionResearchSet:     handleResearchSet,
		ActionEndTurn:         handleEndTurn,
		ActionNoop:            func(*Env, *world.Player, Action, *StepResult) {},
	}
}

// Step applies a to the running game.
func (e *Env) Step(a Action) StepResult {
	if !e.running {
		return StepResult{Info: InfoNotRunning}
	}
	p := e.engine.PlayerByIndex(e.controlled)
	if p == nil {
		return StepResult{Info: InfoNoControlled}
	}
	h, ok := e.handlers[a.Type]
	if !ok {
		e.log.Debug("unknown action type", zap.Int("type", int(a.Type)))
		return StepResult{Info: InfoUnknownActionType}
	}
	var res StepResult
	h(e, p, a, &res)
	e.log.Debug("step",
		zap.Stringer("action", a),
		zap.Bool("done", res.Done),
		zap.Float64("reward", res.Reward),
	)
	return res
}

// ownUnit returns the unit with id when p owns it.
func (e *Env) ownUnit(p *world.Player, id int) *world.Unit {
	u := e.engine.UnitByID(id)
	if u == nil || u.Owner != p.Index {
		return nil
	}
	return u
}

func (e *Env) ownCity(p *world.Player, id int) *world.City {
	c := e.engine.CityByID(id)
	if c == nil || c.Owner != p.Index {
		return nil
	}
	return c
}

func handleMove(e *Env, p *world.Player, a Action, _ *StepResult) {
	u := e.ownUnit(p, a.ActorID)
	if u == nil {
		return
	}
	dir := world.Direction(a.SubTarget)
	if !dir.Valid() {
		return
	}
	if dst := e.engine.MapStep(e.engine.UnitTile(u), dir); dst != nil {
		e.engine.UnitMoveHandling(u, dst)
	}
}

// handleAttack re-checks the attack against the current world since the
// mask the agent acted on may be stale.
func handleAttack(e *Env, p *world.Player, a Action, _ *StepResult) {
	u := e.ownUnit(p, a.ActorID)
	if u == nil {
		return
	}
	t := e.engine.TileByIndex(a.TargetID)
	if t == nil || !e.engine.IsActionEnabled(world.ActionAttack, u, t) {
		return
	}
	e.engine.PerformAction(p, int(u.ID), t.Index, "", world.ActionAttack)
}

func handleFortify(e *Env, p *world.Player, a Action, _ *StepResult) {
	if u := e.ownUnit(p, a.ActorID); u != nil {
		e.engine.UnitActivityHandling(u, world.ActivityFortifying)
	}
}

func handleBuildCity(e *Env, p *world.Player, a Action, _ *StepResult) {
	u := e.ownUnit(p, a.ActorID)
	if u == nil {
		return
	}
	t := e.engine.UnitTile(u)
	name := e.engine.CityNameSuggestion(p, t)
	e.engine.PerformAction(p, int(u.ID), t.Index, name, world.ActionFoundCity)
}

func terrainWork(act world.Activity) actionHandler {
	return func(e *Env, p *world.Player, a Action, _ *StepResult) {
		if u := e.ownUnit(p, a.ActorID); u != nil {
			e.engine.HandleChangeActivity(p, int(u.ID), act, a.SubTarget)
		}
	}
}

func handleDisband(e *Env, p *world.Player, a Action, _ *StepResult) {
	if u := e.ownUnit(p, a.ActorID); u != nil {
		e.engine.PerformAction(p, int(u.ID), int(u.ID), "", world.ActionDisbandUnit)
	}
}

func handleCityBuild(e *Env, p *world.Player, a Action, _ *StepResult) {
	c := e.ownCity(p, a.ActorID)
	if c == nil {
		return
	}
	kind := world.ProductionUnit
	if a.SubTarget != ProduceUnit {
		kind = world.ProductionBuilding
	}
	e.engine.HandleCityChange(p, int(c.ID), kind, a.TargetID)
}

func handleCityBuy(e *Env, p *world.Player, a Action, _ *StepResult) {
	if c := e.ownCity(p, a.ActorID); c != nil {
		e.engine.ReallyHandleCityBuy(p, c)
	}
}

func handleResearchSet(e *Env, p *world.Player, a Action, _ *StepResult) {
	e.engine.HandlePlayerResearch(p, a.TargetID)
}

func handleEndTurn(e *Env, p *world.Player, _ Action, res *StepResult) {
	p.PhaseDone = true
	e.endTurn()

	done, winner := e.checkTerminal()
	if !done {
		return
	}
	res.Done = true
	switch {
	case winner == e.controlled:
		res.Reward = 1
	case winner >= 0:
		res.Reward = -1
	}
	e.log.Info("game over",
		zap.Int("winner", winner),
		zap.Int("turn", e.engine.Info().Turn),
		zap.Float64("reward", res.Reward),
	)
}
