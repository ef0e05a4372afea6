package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is an immutable snapshot of the game's items and monsters, indexed
// by code. It is replaced wholesale on reload, never mutated.
type Registry struct {
	version  string
	items    map[string]Item
	monsters map[string]Monster
}

// NewRegistry builds a Registry from the given items and monsters.
//
// Precondition: item codes are unique and monster codes are unique.
// Postcondition: Returns a Registry or an error naming the first duplicate code.
func NewRegistry(version string, items []Item, monsters []Monster) (*Registry, error) {
	r := &Registry{
		version:  version,
		items:    make(map[string]Item, len(items)),
		monsters: make(map[string]Monster, len(monsters)),
	}
	for _, it := range items {
		if _, exists := r.items[it.Code]; exists {
			return nil, fmt.Errorf("catalog: item code %q already registered", it.Code)
		}
		r.items[it.Code] = it
	}
	for _, m := range monsters {
		if _, exists := r.monsters[m.Code]; exists {
			return nil, fmt.Errorf("catalog: monster code %q already registered", m.Code)
		}
		r.monsters[m.Code] = m
	}
	return r, nil
}

// Version returns the game server version the snapshot was taken from.
func (r *Registry) Version() string { return r.version }

// ItemCount returns the number of items.
func (r *Registry) ItemCount() int { return len(r.items) }

// MonsterCount returns the number of monsters.
func (r *Registry) MonsterCount() int { return len(r.monsters) }

// Item returns the item with the given code and whether it exists.
func (r *Registry) Item(code string) (Item, bool) {
	it, ok := r.items[code]
	return it, ok
}

// Monster returns the monster with the given code and whether it exists.
func (r *Registry) Monster(code string) (Monster, bool) {
	m, ok := r.monsters[code]
	return m, ok
}

// Items returns every item sorted by code.
func (r *Registry) Items() []Item {
	out := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Monsters returns every monster sorted by code.
func (r *Registry) Monsters() []Monster {
	out := make([]Monster, 0, len(r.monsters))
	for _, m := range r.monsters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ItemsCraftedWith returns the items whose recipe uses code, sorted by code.
func (r *Registry) ItemsCraftedWith(code string) []Item {
	var out []Item
	for _, it := range r.items {
		if it.UsesIngredient(code) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// MonstersDropping returns the monsters whose loot table contains code, sorted by code.
func (r *Registry) MonstersDropping(code string) []Monster {
	var out []Monster
	for _, m := range r.monsters {
		if _, ok := m.DropFor(code); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

var codeReplacer = strings.NewReplacer(" ", "_", "&", "and")

// ToCodeFormat turns a display name typed by a user into a catalog code:
// lowercase, spaces become underscores and "&" becomes "and".
func ToCodeFormat(s string) string {
	return codeReplacer.Replace(strings.ToLower(s))
}
