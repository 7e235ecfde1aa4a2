package world

import (
	"fmt"

	"github.com/l1jgo/worldtick/internal/data"
)

// Seed populates the world from seed entries. Types are checked against the
// catalog; components of timed kinds get a countdown. Returns the number of
// objects spawned.
func (s *State) Seed(entries []data.SeedEntry, cat *data.Catalog) (int, error) {
	for i, e := range entries {
		def := cat.Objects.Get(e.Type)
		if def == nil {
			return 0, fmt.Errorf("seed #%d: unknown object type %q", i, e.Type)
		}
		if def.Abstract {
			return 0, fmt.Errorf("seed #%d: object type %q is abstract", i, e.Type)
		}
		for _, c := range e.Components {
			if cat.Components.Get(c.Kind) == nil {
				return 0, fmt.Errorf("seed #%d: unknown component type %q", i, c.Kind)
			}
		}
	}

	spawned := 0
	for _, e := range entries {
		for n := 0; n < e.Count; n++ {
			o := NewObject(e.Type, e.Label)
			if e.Stock != nil {
				o.Stock = append([]string{}, e.Stock...)
			}
			for _, c := range e.Components {
				o.AddComponent(NewComponent(c.Kind, cat.Components.Get(c.Kind).Timed, c.Cooldown))
			}
			s.Spawn(o)
			if e.Region {
				if _, err := s.regions.Open(o); err != nil {
					return spawned, fmt.Errorf("open region for %s: %w", o, err)
				}
			}
			spawned++
		}
	}
	return spawned, nil
}
