package world

import (
	"errors"

	"github.com/l1jgo/worldtick/internal/core/ecs"
)

var ErrIDInUse = errors.New("object id already in use")

// State owns every world object and open region.
// Accessed only from the game loop goroutine — no locks needed.
type State struct {
	pool    *ecs.EntityPool
	objects *Registry
	regions *Regions

	// deferred destruction, flushed by CleanupSystem at cycle end
	destroyQueue []*Object
}

func NewState() *State {
	return &State{
		pool:         ecs.NewEntityPool(),
		objects:      NewRegistry(),
		regions:      NewRegions(),
		destroyQueue: make([]*Object, 0, 16),
	}
}

func (s *State) Objects() *Registry { return s.objects }
func (s *State) Regions() *Regions  { return s.regions }

// Spawn allocates an ID for o and adds it to the registry.
func (s *State) Spawn(o *Object) *Object {
	o.ID = s.pool.Create()
	s.objects.Add(o)
	return o
}

// Restore adds a loaded object keeping its saved ID.
func (s *State) Restore(o *Object) error {
	if !s.pool.Restore(o.ID) {
		return ErrIDInUse
	}
	s.objects.Add(o)
	return nil
}

// Destroy removes o immediately, closing its region if it owns one.
func (s *State) Destroy(o *Object) bool {
	if !s.objects.Remove(o) {
		return false
	}
	if o.region != nil {
		_ = s.regions.Close(o.region)
	}
	s.pool.Release(o.ID)
	return true
}

// MarkForDestruction queues o for end-of-cycle removal.
func (s *State) MarkForDestruction(o *Object) {
	s.destroyQueue = append(s.destroyQueue, o)
}

// FlushDestroyQueue destroys all queued objects and returns how many were
// actually removed (objects queued twice count once).
func (s *State) FlushDestroyQueue() []*Object {
	removed := make([]*Object, 0, len(s.destroyQueue))
	for i, o := range s.destroyQueue {
		if s.Destroy(o) {
			removed = append(removed, o)
		}
		s.destroyQueue[i] = nil
	}
	s.destroyQueue = s.destroyQueue[:0]
	return removed
}

// Find returns the live object with id, or nil.
func (s *State) Find(id ecs.EntityID) *Object {
	if !s.pool.Alive(id) {
		return nil
	}
	for i := 0; i < s.objects.Len(); i++ {
		if o := s.objects.At(i); o.ID == id {
			return o
		}
	}
	return nil
}

// AllObjects iterates registry order.
func (s *State) AllObjects(fn func(*Object)) {
	for i := 0; i < s.objects.Len(); i++ {
		fn(s.objects.At(i))
	}
}

// Reset empties the world. Both version counters move forward.
func (s *State) Reset() {
	for s.objects.Len() > 0 {
		s.Destroy(s.objects.At(s.objects.Len() - 1))
	}
	s.destroyQueue = s.destroyQueue[:0]
}
