package system

import (
	"time"

	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/telemetry"
	"github.com/l1jgo/worldtick/internal/tick"
	"github.com/l1jgo/worldtick/internal/world"
)

// SampleWriter receives per-cycle samples.
type SampleWriter interface {
	WriteCycle(s telemetry.Sample)
}

// TelemetrySystem reports eligibility figures every N cycles.
// Phase 5 (Persist).
type TelemetrySystem struct {
	world *world.State
	orch  *tick.Orchestrator
	out   SampleWriter
	every int
	count int
}

func NewTelemetrySystem(ws *world.State, orch *tick.Orchestrator, out SampleWriter, every int) *TelemetrySystem {
	if every <= 0 {
		every = 1
	}
	return &TelemetrySystem{world: ws, orch: orch, out: out, every: every}
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(_ time.Duration) {
	s.count++
	if s.count < s.every {
		return
	}
	s.count = 0

	last := s.orch.Last()
	st := s.orch.Cache().Stats()
	s.out.WriteCycle(telemetry.Sample{
		Cycle:         s.orch.Cycles(),
		Mode:          s.orch.Mode().String(),
		Rebuilt:       last.Rebuilt,
		Objects:       s.world.Objects().Len(),
		Eligible:      st.Eligible,
		Ticked:        last.Ticked,
		Skipped:       last.Skipped,
		Rebuilds:      st.Rebuilds,
		Invalidations: st.Invalidations,
		Failures:      st.Failures,
		RebuildTime:   st.LastRebuild,
		ByReason:      st.ReasonCounts(),
	})
}
