package world

import (
	"fmt"

	"github.com/l1jgo/worldtick/internal/core/ecs"
)

// Object is a world object: a settlement, a site, a caravan, a waypoint.
// Accessed only from the game loop goroutine — no locks needed.
type Object struct {
	ID    ecs.EntityID
	Type  string // catalog type name
	Label string

	// Stock is the trader inventory. nil = no trader generated yet.
	Stock []string

	comps  []Component
	region *Region
	ticks  int
}

func NewObject(typ, label string) *Object {
	return &Object{Type: typ, Label: label}
}

// AddComponent attaches c. Attaching a component is not a structural change
// of the registry and does not bump any version counter.
func (o *Object) AddComponent(c Component) {
	o.comps = append(o.comps, c)
}

// RemoveComponent detaches the first component of the given kind.
func (o *Object) RemoveComponent(kind string) bool {
	for i, c := range o.comps {
		if c.Kind() == kind {
			o.comps = append(o.comps[:i], o.comps[i+1:]...)
			return true
		}
	}
	return false
}

// Component returns the first component of kind, or nil.
func (o *Object) Component(kind string) Component {
	for _, c := range o.comps {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (o *Object) ComponentCount() int { return len(o.comps) }

// ComponentAt returns the i-th attached component in attach order.
func (o *Object) ComponentAt(i int) Component { return o.comps[i] }

// EachComponent calls fn for every component in attach order.
func (o *Object) EachComponent(fn func(Component)) {
	for _, c := range o.comps {
		fn(c)
	}
}

// HasRegion reports whether the object currently owns an active region.
func (o *Object) HasRegion() bool { return o.region != nil }

func (o *Object) Region() *Region { return o.region }

// HasStock reports whether a trader inventory has been generated.
func (o *Object) HasStock() bool { return o.Stock != nil }

// Tick runs every component's CompTick and counts the object tick.
func (o *Object) Tick() {
	o.ticks++
	for _, c := range o.comps {
		c.CompTick()
	}
}

// Ticks returns how many times Tick ran.
func (o *Object) Ticks() int { return o.ticks }

func (o *Object) String() string {
	if o.Label != "" {
		return fmt.Sprintf("%s#%s(%s)", o.Type, o.ID, o.Label)
	}
	return fmt.Sprintf("%s#%s", o.Type, o.ID)
}
