package system

import (
	"time"

	"github.com/l1jgo/worldtick/internal/core/event"
	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/tick"
	"go.uber.org/zap"
)

// EventDispatchSystem swaps the event bus double-buffer and dispatches
// all events from the previous cycle. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SubscribeCacheInvalidation dirties cache whenever caches are cleared.
// Delivery happens in PreUpdate, before the cycle's rebuild check.
func SubscribeCacheInvalidation(bus *event.Bus, cache *tick.Cache, log *zap.Logger) {
	event.Subscribe(bus, func(e event.CachesCleared) {
		log.Debug("caches cleared, eligibility cache invalidated", zap.String("reason", e.Reason))
		cache.Invalidate()
	})
}
