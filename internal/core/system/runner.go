package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each cycle.
// Systems registered in the same phase keep their registration order.
type Runner struct {
	systems []System
	sorted  bool
	cycles  uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs one full cycle across all phases.
func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.cycles++
}

// TickPhase runs only the systems of one phase. It does not advance the
// cycle counter.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Cycles returns the number of completed full cycles.
func (r *Runner) Cycles() uint64 { return r.cycles }

func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
