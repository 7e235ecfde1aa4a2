package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TypeDef describes one object or component type. The catalog is the closed
// enumeration of every type the simulation can instantiate.
type TypeDef struct {
	Name     string `yaml:"name"`
	Parent   string `yaml:"parent"`   // empty for the root type
	Ticks    bool   `yaml:"ticks"`    // declares its own per-cycle override
	Benign   bool   `yaml:"benign"`   // override is a no-op while idle, does not count
	Abstract bool   `yaml:"abstract"` // never instantiated
	Script   string `yaml:"script"`   // Lua function run on each tick, objects only
	Timed    bool   `yaml:"timed"`    // component carries an armable countdown
	Note     string `yaml:"note"`
}

type catalogFile struct {
	ObjectRoot           string    `yaml:"object_root"`
	ComponentRoot        string    `yaml:"component_root"`
	AlwaysTickObjects    []string  `yaml:"always_tick_objects"`
	AlwaysTickComponents []string  `yaml:"always_tick_components"`
	Objects              []TypeDef `yaml:"object_types"`
	Components           []TypeDef `yaml:"component_types"`
}

// TypeSet is one hierarchy (objects or components) indexed by name.
type TypeSet struct {
	Root       string
	AlwaysTick []string
	order      []*TypeDef
	byName     map[string]*TypeDef
}

func newTypeSet(root string, always []string, defs []TypeDef) (*TypeSet, error) {
	s := &TypeSet{
		Root:       root,
		AlwaysTick: always,
		order:      make([]*TypeDef, 0, len(defs)),
		byName:     make(map[string]*TypeDef, len(defs)),
	}
	for i := range defs {
		d := &defs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("type #%d has no name", i)
		}
		if _, dup := s.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate type %q", d.Name)
		}
		s.byName[d.Name] = d
		s.order = append(s.order, d)
	}
	if root == "" {
		return nil, fmt.Errorf("root type not set")
	}
	if _, ok := s.byName[root]; !ok {
		return nil, fmt.Errorf("root type %q not declared", root)
	}
	return s, nil
}

// Get returns the definition for name, or nil.
func (s *TypeSet) Get(name string) *TypeDef {
	return s.byName[name]
}

// All returns definitions in file order.
func (s *TypeSet) All() []*TypeDef {
	return s.order
}

func (s *TypeSet) Count() int {
	return len(s.order)
}

// Catalog holds the object and component type hierarchies.
type Catalog struct {
	Objects    *TypeSet
	Components *TypeSet
}

// LoadCatalog loads type_catalog.yaml.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read type catalog: %w", err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse type catalog: %w", err)
	}
	objects, err := newTypeSet(f.ObjectRoot, f.AlwaysTickObjects, f.Objects)
	if err != nil {
		return nil, fmt.Errorf("object types: %w", err)
	}
	comps, err := newTypeSet(f.ComponentRoot, f.AlwaysTickComponents, f.Components)
	if err != nil {
		return nil, fmt.Errorf("component types: %w", err)
	}
	return &Catalog{Objects: objects, Components: comps}, nil
}

// Count returns the total number of types in both hierarchies.
func (c *Catalog) Count() int {
	return c.Objects.Count() + c.Components.Count()
}

// Scripts maps each type with a bound Lua function to that function.
func (s *TypeSet) Scripts() map[string]string {
	m := make(map[string]string)
	for _, d := range s.order {
		if d.Script != "" {
			m[d.Name] = d.Script
		}
	}
	return m
}
