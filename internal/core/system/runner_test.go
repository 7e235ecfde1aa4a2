package system

import (
	"testing"
	"time"
)

type recordSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recordSystem) Phase() Phase { return s.phase }

func (s *recordSystem) Update(_ time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerPhaseOrder(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(&recordSystem{name: "cleanup", phase: PhaseCleanup, log: &got})
	r.Register(&recordSystem{name: "tick-a", phase: PhaseUpdate, log: &got})
	r.Register(&recordSystem{name: "input", phase: PhaseInput, log: &got})
	r.Register(&recordSystem{name: "tick-b", phase: PhaseUpdate, log: &got})

	r.Tick(200 * time.Millisecond)

	want := []string{"input", "tick-a", "tick-b", "cleanup"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if r.Cycles() != 1 {
		t.Errorf("expected 1 cycle, got %d", r.Cycles())
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var got []string
	r := NewRunner()
	r.Register(&recordSystem{name: "tick", phase: PhaseUpdate, log: &got})
	r.Register(&recordSystem{name: "input", phase: PhaseInput, log: &got})

	r.TickPhase(PhaseInput, time.Millisecond)
	if len(got) != 1 || got[0] != "input" {
		t.Fatalf("expected only input to run, got %v", got)
	}
	if r.Cycles() != 0 {
		t.Errorf("TickPhase must not advance cycles, got %d", r.Cycles())
	}
}
