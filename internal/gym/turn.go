package gym

import (
	"github.com/civgym/gym/internal/core/system"
)

// The end-turn pipeline runs once per remaining phase of the turn. The
// phase the agent just finished is already open, so it skips PhaseBegin.

type beginPhaseSystem struct{ e *Env }

func (beginPhaseSystem) Phase() system.Phase { return system.PhaseBegin }

func (s beginPhaseSystem) Update(system.Context) {
	s.e.engine.BeginPhase(false)
}

// aiPhaseSystem hands every live AI player of the phase to the engine AI.
type aiPhaseSystem struct{ e *Env }

func (aiPhaseSystem) Phase() system.Phase { return system.PhaseAI }

func (s aiPhaseSystem) Update(ctx system.Context) {
	eng := s.e.engine
	for _, p := range eng.Players() {
		if p.IsAlive && p.IsAI && eng.IsPlayerPhase(p, ctx.Phase) {
			eng.AIPhaseFinished(p)
		}
	}
}

// cityPassSystem is the end-of-phase bookkeeping. It only updates cities;
// the rest of the engine's end-of-phase work is not run.
type cityPassSystem struct{ e *Env }

func (cityPassSystem) Phase() system.Phase { return system.PhaseEnd }

func (s cityPassSystem) Update(ctx system.Context) {
	eng := s.e.engine
	for _, p := range eng.Players() {
		if p.IsAlive && eng.IsPlayerPhase(p, ctx.Phase) {
			eng.UpdateCityActivities(p)
		}
	}
}

func newTurnRunner(e *Env) *system.Runner {
	r := system.NewRunner()
	r.Register(cityPassSystem{e})
	r.Register(aiPhaseSystem{e})
	r.Register(beginPhaseSystem{e})
	return r
}

// endTurn finishes the current turn and opens the first phase of the next.
// It sweeps every phase from the current one to the last, running AI moves
// and city updates for each, so players whose phase comes after the agent's
// still act in alternating mode. A single end-turn in the game itself only
// closes the current phase.
func (e *Env) endTurn() {
	eng := e.engine
	info := eng.Info()
	start := info.Phase
	for ph := start; ph < eng.NumPhases(); ph++ {
		ctx := system.Context{Turn: info.Turn, Phase: ph}
		if ph == start {
			e.turn.RunPhase(system.PhaseAI, ctx)
			e.turn.RunPhase(system.PhaseEnd, ctx)
			continue
		}
		eng.SetPhase(ph)
		e.turn.Run(ctx)
	}

	eng.AdvanceTurn()
	eng.BeginTurn(false)
	eng.SetPhase(0)
	eng.BeginPhase(false)
}
