package system

import "time"

// Phase defines execution ordering within a single cycle.
type Phase int

const (
	PhaseInput      Phase = iota // 0: external commands (spawn, remove, arm)
	PhasePreUpdate               // 1: deliver last cycle's events
	PhaseUpdate                  // 2: world object ticking
	PhasePostUpdate              // 3: region bookkeeping
	PhaseOutput                  // 4: reserved
	PhasePersist                 // 5: telemetry + periodic save
	PhaseCleanup                 // 6: destroy queued objects
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every runner system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
