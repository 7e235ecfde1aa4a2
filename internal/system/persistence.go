package system

import (
	"context"
	"time"

	"github.com/l1jgo/worldtick/internal/core/event"
	coresys "github.com/l1jgo/worldtick/internal/core/system"
	"github.com/l1jgo/worldtick/internal/persist"
	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
)

// WorldSaver stores a world snapshot.
type WorldSaver interface {
	Save(ctx context.Context, snap persist.Snapshot) error
}

// PersistenceSystem periodically saves the whole world. Phase 5 (Persist).
type PersistenceSystem struct {
	world     *world.State
	repo      WorldSaver
	bus       *event.Bus
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N cycles
	timeout   time.Duration
}

func NewPersistenceSystem(ws *world.State, repo WorldSaver, bus *event.Bus, log *zap.Logger, intervalCycles int) *PersistenceSystem {
	return &PersistenceSystem{
		world:    ws,
		repo:     repo,
		bus:      bus,
		log:      log,
		interval: intervalCycles,
		timeout:  10 * time.Second,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	if err := s.SaveNow(); err != nil {
		s.log.Error("world autosave failed", zap.Error(err))
	}
}

// SaveNow persists the world immediately. Called on shutdown.
func (s *PersistenceSystem) SaveNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	snap := persist.TakeSnapshot(s.world)
	if err := s.repo.Save(ctx, snap); err != nil {
		return err
	}
	event.Emit(s.bus, event.WorldSaved{Objects: len(snap.Objects)})
	event.Emit(s.bus, event.CachesCleared{Reason: "save"})
	s.log.Info("world saved",
		zap.Int("objects", len(snap.Objects)),
		zap.Int("components", len(snap.Components)),
		zap.Int("regions", len(snap.Regions)),
		zap.Duration("took", time.Since(start)))
	return nil
}
