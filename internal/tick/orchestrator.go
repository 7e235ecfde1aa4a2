package tick

import (
	"fmt"
	"strings"

	"github.com/l1jgo/worldtick/internal/world"
)

// Mode selects how the cache's answer is consumed each cycle.
type Mode uint8

const (
	// ModePush iterates the cached members directly.
	ModePush Mode = iota
	// ModePull walks every registered object and asks the cache as a gate.
	ModePull
)

func (m Mode) String() string {
	if m == ModePull {
		return "pull"
	}
	return "push"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "push":
		return ModePush, nil
	case "pull":
		return ModePull, nil
	}
	return ModePush, fmt.Errorf("unknown tick mode %q", s)
}

// Action is the per-cycle work for one object.
type Action func(o *world.Object)

// CycleResult summarizes one cycle.
type CycleResult struct {
	Rebuilt bool
	Ticked  int
	Skipped int // pull mode only
}

// Orchestrator drives one cycle against a Cache.
type Orchestrator struct {
	cache   *Cache
	objects ObjectSource
	mode    Mode
	act     Action

	// MaxStaleCycles > 0 forces a rebuild after that many cycles without one,
	// bounding how long component state changes can go unnoticed.
	MaxStaleCycles int

	sinceRebuild int
	cycles       uint64
	last         CycleResult
	scratch      []*world.Object
}

func NewOrchestrator(cache *Cache, objects ObjectSource, mode Mode, act Action) *Orchestrator {
	return &Orchestrator{
		cache:   cache,
		objects: objects,
		mode:    mode,
		act:     act,
		scratch: make([]*world.Object, 0, 64),
	}
}

// Cycle makes sure the cache is fresh, then runs the action on every object
// that needs it. Iteration runs over a snapshot from the highest index down,
// so an action removing itself or any other object neither skips nor
// repeats an object present when the cycle started.
func (o *Orchestrator) Cycle() CycleResult {
	if o.MaxStaleCycles > 0 && o.sinceRebuild >= o.MaxStaleCycles {
		o.cache.Invalidate()
	}
	res := CycleResult{Rebuilt: o.cache.EnsureFresh()}
	if res.Rebuilt {
		o.sinceRebuild = 0
	} else {
		o.sinceRebuild++
	}

	switch o.mode {
	case ModePush:
		o.scratch = append(o.scratch[:0], o.cache.Members()...)
		for i := len(o.scratch) - 1; i >= 0; i-- {
			o.act(o.scratch[i])
			res.Ticked++
		}
	case ModePull:
		o.scratch = o.scratch[:0]
		for i, n := 0, o.objects.Len(); i < n; i++ {
			o.scratch = append(o.scratch, o.objects.At(i))
		}
		for i := len(o.scratch) - 1; i >= 0; i-- {
			obj := o.scratch[i]
			if !o.Gate(obj) {
				res.Skipped++
				continue
			}
			o.act(obj)
			res.Ticked++
		}
	}
	for i := range o.scratch {
		o.scratch[i] = nil
	}

	o.cycles++
	o.last = res
	return res
}

// Gate reports whether obj's default per-cycle action should run. The
// caller must have run EnsureFresh (or Cycle) this cycle.
func (o *Orchestrator) Gate(obj *world.Object) bool {
	return o.cache.Contains(obj)
}

func (o *Orchestrator) Mode() Mode { return o.mode }

func (o *Orchestrator) Cycles() uint64 { return o.cycles }

func (o *Orchestrator) Last() CycleResult { return o.last }

func (o *Orchestrator) Cache() *Cache { return o.cache }
