package system

import (
	"time"

	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/scripting"
	"github.com/l1jgo/worldtick/internal/tick"
	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
)

// ScriptRunner runs a bound per-type tick function.
type ScriptRunner interface {
	RunObjectTick(fn string, ctx scripting.TickContext) []scripting.TickCommand
}

// WorldTickSystem runs one eligibility-gated cycle over the world objects.
// Phase 2 (Update).
type WorldTickSystem struct {
	world    *world.State
	cache    *tick.Cache
	orch     *tick.Orchestrator
	scripts  ScriptRunner // nil = no scripting
	bindings map[string]string
	log      *zap.Logger
}

func NewWorldTickSystem(ws *world.State, cache *tick.Cache, mode tick.Mode, scripts ScriptRunner, bindings map[string]string, log *zap.Logger) *WorldTickSystem {
	s := &WorldTickSystem{
		world:    ws,
		cache:    cache,
		scripts:  scripts,
		bindings: bindings,
		log:      log,
	}
	s.orch = tick.NewOrchestrator(cache, ws.Objects(), mode, s.tickObject)
	return s
}

func (s *WorldTickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WorldTickSystem) Update(_ time.Duration) {
	s.orch.Cycle()
}

// Orchestrator exposes the cycle driver for tuning and reporting.
func (s *WorldTickSystem) Orchestrator() *tick.Orchestrator { return s.orch }

func (s *WorldTickSystem) tickObject(o *world.Object) {
	o.Tick()

	if s.scripts == nil {
		return
	}
	fn, ok := s.bindings[o.Type]
	if !ok {
		return
	}
	cmds := s.scripts.RunObjectTick(fn, s.tickContext(o))
	for _, cmd := range cmds {
		s.apply(o, cmd)
	}
}

func (s *WorldTickSystem) tickContext(o *world.Object) scripting.TickContext {
	ctx := scripting.TickContext{
		ObjectID:  uint64(o.ID),
		Type:      o.Type,
		Label:     o.Label,
		Ticks:     o.Ticks(),
		Cycle:     s.orch.Cycles(),
		HasRegion: o.HasRegion(),
		HasStock:  o.HasStock(),
	}
	o.EachComponent(func(c world.Component) {
		if cd, ok := c.(*world.CooldownComp); ok {
			if ctx.Cooldowns == nil {
				ctx.Cooldowns = make(map[string]int, 2)
			}
			ctx.Cooldowns[cd.Kind()] = cd.Remaining()
		}
	})
	return ctx
}

// apply executes one script command. Commands that change what the
// inspector sees invalidate the cache so the next cycle re-evaluates.
func (s *WorldTickSystem) apply(o *world.Object, cmd scripting.TickCommand) {
	switch cmd.Type {
	case "destroy":
		s.world.MarkForDestruction(o)
	case "arm":
		cd, ok := o.Component(cmd.Kind).(*world.CooldownComp)
		if !ok {
			if o.Component(cmd.Kind) != nil {
				s.log.Warn("arm on untimed component",
					zap.Stringer("object", o), zap.String("kind", cmd.Kind))
				return
			}
			cd = world.NewCooldownComp(cmd.Kind)
			o.AddComponent(cd)
		}
		cd.Arm(cmd.Ticks)
		s.cache.Invalidate()
	case "disarm":
		if cd, ok := o.Component(cmd.Kind).(*world.CooldownComp); ok && cd.Active() {
			cd.Disarm()
			s.cache.Invalidate()
		}
	case "stock":
		o.Stock = append(make([]string, 0, len(cmd.Items)), cmd.Items...)
		s.cache.Invalidate()
	case "clear_stock":
		if o.Stock != nil {
			o.Stock = nil
			s.cache.Invalidate()
		}
	default:
		s.log.Warn("unknown script command",
			zap.Stringer("object", o), zap.String("command", cmd.Type))
	}
}
