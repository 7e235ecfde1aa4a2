package tick

import (
	"time"

	"github.com/l1jgo/worldtick/internal/world"
	"go.uber.org/zap"
)

// ObjectSource is the registry view the cache walks on rebuild.
type ObjectSource interface {
	VersionSource
	Len() int
	At(i int) *world.Object
}

// Options tunes a Cache.
type Options struct {
	// DebugWarnings logs objects whose type is skippable but whose
	// components force a tick.
	DebugWarnings bool
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Rebuilds      uint64
	Invalidations uint64
	Failures      uint64 // objects whose inspection failed, cumulative
	Scanned       int    // objects walked by the last rebuild
	Eligible      int    // members after the last rebuild
	LastRebuild   time.Duration
	ByReason      [reasonCount]int // last rebuild, indexed by Reason
}

// ReasonCounts returns ByReason keyed by reason name.
func (s Stats) ReasonCounts() map[string]int {
	m := make(map[string]int, reasonCount)
	for r := Reason(0); r < reasonCount; r++ {
		m[r.String()] = s.ByReason[r]
	}
	return m
}

// Cache owns the set of objects that need a tick.
//
// Clean: recorded stamps equal the live counters, membership is trusted.
// Dirty: they differ, and EnsureFresh rebuilds before anything is read.
// Membership is always recomputed in full, never patched.
type Cache struct {
	objects   ObjectSource
	tracker   *Tracker
	inspector *Inspector
	opts      Options
	log       *zap.Logger

	members map[*world.Object]struct{}
	order   []*world.Object
	stamps  Stamps
	stats   Stats
}

func NewCache(objects ObjectSource, regions VersionSource, inspector *Inspector, opts Options, log *zap.Logger) *Cache {
	return &Cache{
		objects:   objects,
		tracker:   NewTracker(objects, regions),
		inspector: inspector,
		opts:      opts,
		log:       log,
		members:   make(map[*world.Object]struct{}, 64),
		order:     make([]*world.Object, 0, 64),
		stamps:    Dirty,
	}
}

// EnsureFresh rebuilds the member set if the registry or the regions
// changed since the last rebuild, or after Invalidate. It reports whether a
// rebuild ran. Nothing escapes it: per-object failures are logged and the
// object is kept as a member.
func (c *Cache) EnsureFresh() bool {
	live := c.tracker.Live()
	if live == c.stamps {
		return false
	}
	c.rebuild(live)
	return true
}

func (c *Cache) rebuild(live Stamps) {
	start := time.Now()
	clear(c.members)
	for i := range c.order {
		c.order[i] = nil
	}
	c.order = c.order[:0]
	c.stats.ByReason = [reasonCount]int{}

	n := c.objects.Len()
	for i := 0; i < n; i++ {
		o := c.objects.At(i)
		v, err := c.inspector.Evaluate(o)
		if err != nil {
			c.stats.Failures++
			c.log.Error("eligibility check failed, object will tick",
				zap.Stringer("object", o),
				zap.String("type", o.Type),
				zap.Error(err))
		}
		c.stats.ByReason[v.Reason]++
		if v.Reason == ReasonComponents && c.opts.DebugWarnings {
			c.log.Warn("skippable object type has a component that requires ticking",
				zap.Stringer("object", o),
				zap.String("type", o.Type))
		}
		if !v.MustTick {
			continue
		}
		c.members[o] = struct{}{}
		c.order = append(c.order, o)
	}

	c.stamps = live
	c.stats.Rebuilds++
	c.stats.Scanned = n
	c.stats.Eligible = len(c.order)
	c.stats.LastRebuild = time.Since(start)
	c.log.Debug("eligibility cache rebuilt",
		zap.Int64("objects_version", live.Objects),
		zap.Int64("regions_version", live.Regions),
		zap.Int("scanned", n),
		zap.Int("eligible", len(c.order)))
}

// Contains reports membership as of the last rebuild. O(1). Call
// EnsureFresh first in each cycle.
func (c *Cache) Contains(o *world.Object) bool {
	_, ok := c.members[o]
	return ok
}

// MustTick is EnsureFresh followed by Contains, for hosts that can only
// gate per object.
func (c *Cache) MustTick(o *world.Object) bool {
	c.EnsureFresh()
	return c.Contains(o)
}

// Invalidate forces the next EnsureFresh to rebuild even if no counter moved.
func (c *Cache) Invalidate() {
	c.stamps = Dirty
	c.stats.Invalidations++
}

// Dirty reports whether the next EnsureFresh will rebuild.
func (c *Cache) Dirty() bool {
	return c.tracker.IsStale(c.stamps)
}

// Members returns the eligible objects in rebuild order. The slice is owned
// by the cache and valid until the next rebuild.
func (c *Cache) Members() []*world.Object { return c.order }

func (c *Cache) Len() int { return len(c.order) }

func (c *Cache) Stamps() Stamps { return c.stamps }

func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) Inspector() *Inspector { return c.inspector }

// AddObjectsToWhitelist marks object types as always-tick and invalidates.
func (c *Cache) AddObjectsToWhitelist(types ...string) {
	c.inspector = c.inspector.WithObjects(c.inspector.Objects().WithWhitelist(types...))
	c.Invalidate()
}

// AddComponentsToWhitelist marks component types as always-tick and
// invalidates.
func (c *Cache) AddComponentsToWhitelist(types ...string) {
	c.inspector = c.inspector.WithComponents(c.inspector.Components().WithWhitelist(types...))
	c.Invalidate()
}
