package tick

import (
	"errors"
	"fmt"

	"github.com/l1jgo/worldtick/internal/world"
)

var ErrInspect = errors.New("inspect object")

// Reason explains a verdict. The first matching rule wins, in the order
// listed.
type Reason uint8

const (
	ReasonSkipped    Reason = iota // nothing requires a tick
	ReasonRegion                   // owns an active region
	ReasonType                     // object type is not skippable
	ReasonStock                    // trader stock is loaded
	ReasonComponents               // a component type or active state forces it
	ReasonFailed                   // inspection failed, ticking to be safe
	reasonCount
)

func (r Reason) String() string {
	switch r {
	case ReasonSkipped:
		return "skipped"
	case ReasonRegion:
		return "region"
	case ReasonType:
		return "type"
	case ReasonStock:
		return "stock"
	case ReasonComponents:
		return "components"
	case ReasonFailed:
		return "failed"
	}
	return "unknown"
}

// Verdict is the per-object result of one inspection.
type Verdict struct {
	MustTick bool
	Reason   Reason
}

// Inspector layers per-instance checks over the two static classifiers.
// Its answers depend on component state and are never cached.
type Inspector struct {
	objects    *Classifier
	components *Classifier
}

func NewInspector(objects, components *Classifier) *Inspector {
	return &Inspector{objects: objects, components: components}
}

func (in *Inspector) Objects() *Classifier    { return in.objects }
func (in *Inspector) Components() *Classifier { return in.components }

// WithObjects returns a copy using a different object classifier.
func (in *Inspector) WithObjects(c *Classifier) *Inspector {
	return &Inspector{objects: c, components: in.components}
}

// WithComponents returns a copy using a different component classifier.
func (in *Inspector) WithComponents(c *Classifier) *Inspector {
	return &Inspector{objects: in.objects, components: c}
}

// CanSkipComponents reports whether none of o's components needs a tick.
// An active component always needs one, whatever its type.
func (in *Inspector) CanSkipComponents(o *world.Object) bool {
	for i := o.ComponentCount() - 1; i >= 0; i-- {
		c := o.ComponentAt(i)
		if a, ok := c.(world.Activatable); ok && a.Active() {
			return false
		}
		if !in.components.Skippable(c.Kind()) {
			return false
		}
	}
	return true
}

// Evaluate computes the verdict for o. A panic raised by component code is
// returned as an error together with a MustTick verdict.
func (in *Inspector) Evaluate(o *world.Object) (v Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = Verdict{MustTick: true, Reason: ReasonFailed}
			err = fmt.Errorf("%w %s: %v", ErrInspect, o, r)
		}
	}()

	switch {
	case o.HasRegion():
		return Verdict{MustTick: true, Reason: ReasonRegion}, nil
	case !in.objects.Skippable(o.Type):
		return Verdict{MustTick: true, Reason: ReasonType}, nil
	case o.HasStock():
		return Verdict{MustTick: true, Reason: ReasonStock}, nil
	case !in.CanSkipComponents(o):
		return Verdict{MustTick: true, Reason: ReasonComponents}, nil
	}
	return Verdict{Reason: ReasonSkipped}, nil
}
