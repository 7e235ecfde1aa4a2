package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalog = `
object_root: WorldObject
component_root: WorldObjectComp
always_tick_objects: [Caravan]
object_types:
  - name: WorldObject
    ticks: true
  - name: Settlement
    parent: WorldObject
    ticks: true
    benign: true
  - name: Caravan
    parent: WorldObject
    ticks: true
    script: caravan_tick
component_types:
  - name: WorldObjectComp
    ticks: true
  - name: EnterCooldownComp
    parent: WorldObjectComp
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Count() != 5 {
		t.Errorf("expected 5 types, got %d", c.Count())
	}
	if c.Objects.Root != "WorldObject" {
		t.Errorf("unexpected object root %q", c.Objects.Root)
	}
	car := c.Objects.Get("Caravan")
	if car == nil || car.Script != "caravan_tick" || !car.Ticks {
		t.Fatalf("caravan not parsed: %+v", car)
	}
	if s := c.Objects.Get("Settlement"); s == nil || !s.Benign {
		t.Errorf("settlement benign flag lost: %+v", s)
	}
	if len(c.Objects.AlwaysTick) != 1 || c.Objects.AlwaysTick[0] != "Caravan" {
		t.Errorf("unexpected always-tick list %v", c.Objects.AlwaysTick)
	}
	if c.Components.Get("Missing") != nil {
		t.Error("lookup of unknown type should be nil")
	}
	all := c.Objects.All()
	if all[0].Name != "WorldObject" || all[2].Name != "Caravan" {
		t.Error("file order not preserved")
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate",
			yaml: "object_root: A\ncomponent_root: C\nobject_types: [{name: A}, {name: A}]\ncomponent_types: [{name: C}]",
			want: "duplicate type",
		},
		{
			name: "missing root",
			yaml: "object_root: A\ncomponent_root: C\nobject_types: [{name: B}]\ncomponent_types: [{name: C}]",
			want: "root type \"A\" not declared",
		},
		{
			name: "no root",
			yaml: "component_root: C\nobject_types: [{name: B}]\ncomponent_types: [{name: C}]",
			want: "root type not set",
		},
		{
			name: "unnamed",
			yaml: "object_root: A\ncomponent_root: C\nobject_types: [{name: A}]\ncomponent_types: [{parent: C}]",
			want: "has no name",
		},
		{
			name: "bad yaml",
			yaml: "object_types: [",
			want: "parse type catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err)
			}
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Components.Count() != 2 {
		t.Errorf("expected 2 component types, got %d", c.Components.Count())
	}
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSeedList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	raw := `
seeds:
  - type: Settlement
    count: 3
    stock: [silver]
  - type: AbandonedSettlement
    components:
      - kind: EnterCooldownComp
        cooldown: 10
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	seeds, err := LoadSeedList(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d", len(seeds))
	}
	if seeds[0].Count != 3 || len(seeds[0].Stock) != 1 {
		t.Errorf("unexpected first seed %+v", seeds[0])
	}
	if seeds[1].Count != 1 {
		t.Errorf("count should default to 1, got %d", seeds[1].Count)
	}
	if seeds[1].Components[0].Cooldown != 10 {
		t.Errorf("cooldown lost: %+v", seeds[1].Components)
	}
}

func TestShippedTables(t *testing.T) {
	c, err := LoadCatalog("../../data/yaml/type_catalog.yaml")
	if err != nil {
		t.Fatalf("shipped catalog: %v", err)
	}
	seeds, err := LoadSeedList("../../data/yaml/world_seed.yaml")
	if err != nil {
		t.Fatalf("shipped seeds: %v", err)
	}
	for _, s := range seeds {
		if c.Objects.Get(s.Type) == nil {
			t.Errorf("seed type %q not in catalog", s.Type)
		}
		for _, comp := range s.Components {
			if c.Components.Get(comp.Kind) == nil {
				t.Errorf("seed component %q not in catalog", comp.Kind)
			}
		}
	}
}

func TestScriptBindings(t *testing.T) {
	c, err := LoadCatalog("../../data/yaml/type_catalog.yaml")
	if err != nil {
		t.Fatal(err)
	}
	s := c.Objects.Scripts()
	if s["Site"] != "site_tick" || s["Caravan"] != "caravan_tick" {
		t.Errorf("unexpected bindings: %v", s)
	}
	if _, ok := s["Settlement"]; ok {
		t.Error("Settlement has no script")
	}
}
