package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of an offline catalog file.
type File struct {
	Version  string    `yaml:"version"`
	Items    []Item    `yaml:"items"`
	Monsters []Monster `yaml:"monsters"`
}

// LoadDir reads every *.yaml and *.yml file in dir, validates each item and
// monster, and builds a Registry from the union.
//
// Files are read in name order; the last non-empty version wins, and "offline"
// is used when none is given.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns a Registry or the first encountered error.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDir: cannot read directory %q: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	version := "offline"
	var items []Item
	var monsters []Monster
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDir: cannot read file %q: %w", path, err)
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("LoadDir: cannot parse file %q: %w", path, err)
		}
		for _, it := range f.Items {
			if err := it.Validate(); err != nil {
				return nil, fmt.Errorf("LoadDir: invalid item in %q: %w", path, err)
			}
		}
		for _, m := range f.Monsters {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("LoadDir: invalid monster in %q: %w", path, err)
			}
		}
		if f.Version != "" {
			version = f.Version
		}
		items = append(items, f.Items...)
		monsters = append(monsters, f.Monsters...)
	}
	return NewRegistry(version, items, monsters)
}
