package tick

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/l1jgo/worldtick/internal/data"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownType = errors.New("type not in catalog")
	ErrDetached    = errors.New("type does not derive from root")
	ErrTypeCycle   = errors.New("type hierarchy cycle")
)

// Classifier maps every type of one hierarchy to a skippable verdict.
//
// A type is skippable when no type on its ancestry chain below the root
// declares a non-benign per-cycle override, and no type on the chain
// (root included) is whitelisted as always-tick. The verdicts are computed
// once at construction; a Classifier is immutable afterwards.
type Classifier struct {
	types     *data.TypeSet
	whitelist map[string]struct{}
	skippable map[string]struct{}
	failed    int
	workers   int
	log       *zap.Logger
}

// NewClassifier classifies every concrete type in types. workers <= 0 uses
// GOMAXPROCS goroutines.
func NewClassifier(types *data.TypeSet, whitelist []string, workers int, log *zap.Logger) *Classifier {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	c := &Classifier{
		types:     types,
		whitelist: make(map[string]struct{}, len(whitelist)),
		workers:   workers,
		log:       log,
	}
	for _, name := range whitelist {
		c.whitelist[name] = struct{}{}
	}
	c.build()
	return c
}

type verdict struct {
	name      string
	skippable bool
	err       error
}

func (c *Classifier) build() {
	defs := c.types.All()
	results := make([]verdict, len(defs))

	// each type is independent; results are merged after Wait
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, def := range defs {
		if def.Abstract {
			continue
		}
		g.Go(func() error {
			ok, err := c.classify(def.Name)
			results[i] = verdict{name: def.Name, skippable: ok, err: err}
			return nil
		})
	}
	_ = g.Wait()

	c.skippable = make(map[string]struct{}, len(defs))
	for _, r := range results {
		if r.name == "" {
			continue
		}
		if r.err != nil {
			c.failed++
			c.log.Warn("classify type failed, treating as always-tick",
				zap.String("root", c.types.Root),
				zap.String("type", r.name),
				zap.Error(r.err))
			continue
		}
		if r.skippable {
			c.skippable[r.name] = struct{}{}
		}
	}
}

func (c *Classifier) classify(name string) (bool, error) {
	seen := make(map[string]struct{}, 4)
	cur := name
	for {
		def := c.types.Get(cur)
		if def == nil {
			if cur == name {
				return false, fmt.Errorf("%w: %s", ErrUnknownType, name)
			}
			return false, fmt.Errorf("%w: parent %s of %s", ErrUnknownType, cur, name)
		}
		if _, ok := c.whitelist[cur]; ok {
			return false, nil
		}
		if cur == c.types.Root {
			return true, nil
		}
		if def.Ticks && !def.Benign {
			return false, nil
		}
		if _, ok := seen[cur]; ok {
			return false, fmt.Errorf("%w: %s", ErrTypeCycle, cur)
		}
		seen[cur] = struct{}{}
		if def.Parent == "" {
			return false, fmt.Errorf("%w: %s", ErrDetached, name)
		}
		cur = def.Parent
	}
}

// Skippable reports whether typ never needs a tick on its own account.
// Unknown types are never skippable.
func (c *Classifier) Skippable(typ string) bool {
	_, ok := c.skippable[typ]
	return ok
}

// WithWhitelist returns a new Classifier whose whitelist is the union of
// this one's and types. The receiver is unchanged.
func (c *Classifier) WithWhitelist(types ...string) *Classifier {
	merged := make([]string, 0, len(c.whitelist)+len(types))
	merged = append(merged, c.Whitelist()...)
	merged = append(merged, types...)
	next := NewClassifier(c.types, merged, c.workers, c.log)
	c.log.Info("whitelist extended",
		zap.String("root", c.types.Root),
		zap.Strings("added", types),
		zap.Int("skippable_before", c.Len()),
		zap.Int("skippable_after", next.Len()))
	return next
}

// Whitelist returns the always-tick types, sorted.
func (c *Classifier) Whitelist() []string {
	out := make([]string, 0, len(c.whitelist))
	for name := range c.whitelist {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SkippableTypes returns the skippable type names, sorted.
func (c *Classifier) SkippableTypes() []string {
	out := make([]string, 0, len(c.skippable))
	for name := range c.skippable {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of skippable types.
func (c *Classifier) Len() int { return len(c.skippable) }

// Failed returns how many types could not be classified.
func (c *Classifier) Failed() int { return c.failed }
