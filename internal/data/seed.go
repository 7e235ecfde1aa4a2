package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedComponent is one component attached to a seeded object.
type SeedComponent struct {
	Kind     string `yaml:"kind"`
	Cooldown int    `yaml:"cooldown"` // >0 arms a cooldown component for that many ticks
}

// SeedEntry describes objects placed into a fresh world (no saved state).
type SeedEntry struct {
	Type       string          `yaml:"type"`
	Label      string          `yaml:"label"`
	Count      int             `yaml:"count"`
	Region     bool            `yaml:"region"` // open an active sub-region for each copy
	Stock      []string        `yaml:"stock"`
	Components []SeedComponent `yaml:"components"`
}

type seedListFile struct {
	Seeds []SeedEntry `yaml:"seeds"`
}

// LoadSeedList loads world_seed.yaml. Count defaults to 1.
func LoadSeedList(path string) ([]SeedEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed list: %w", err)
	}
	var f seedListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed list: %w", err)
	}
	for i := range f.Seeds {
		s := &f.Seeds[i]
		if s.Type == "" {
			return nil, fmt.Errorf("seed #%d has no type", i)
		}
		if s.Count <= 0 {
			s.Count = 1
		}
	}
	return f.Seeds, nil
}
