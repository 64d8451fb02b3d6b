package system

import "sort"

// Runner executes systems in phase order on each pass.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Run executes every registered system once, in phase order.
func (r *Runner) Run(ctx Context) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(ctx)
	}
}

// RunPhase executes only the systems registered for phase.
func (r *Runner) RunPhase(phase Phase, ctx Context) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(ctx)
		}
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	return len(r.systems)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
