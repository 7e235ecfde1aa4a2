package system

import (
	"time"

	"github.com/l1jgo/worldtick/internal/core/event"
	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred object destruction queue at cycle end.
// Each removal bumps the registry version, so the next cycle rebuilds.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, bus: bus, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	removed := s.world.FlushDestroyQueue()
	for _, o := range removed {
		event.Emit(s.bus, event.ObjectDestroyed{ID: o.ID, Type: o.Type})
	}
	if len(removed) > 0 {
		s.log.Debug("world objects destroyed", zap.Int("count", len(removed)))
	}
}
