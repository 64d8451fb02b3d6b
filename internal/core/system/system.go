package system

// Phase defines execution ordering within one pass of the end-of-turn pipeline.
type Phase int

const (
	PhaseBegin Phase = iota // 0: open the phase (restore moves, progress activities)
	PhaseAI                 // 1: drive AI players whose phase it is
	PhaseEnd                // 2: end-of-phase bookkeeping (cities)
)

// Context is handed to every system on one pipeline pass.
type Context struct {
	Turn  int
	Phase int // game phase being processed
}

// System is one stage of the end-of-turn pipeline.
type System interface {
	Phase() Phase
	Update(ctx Context)
}
