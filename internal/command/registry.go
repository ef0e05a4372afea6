package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// minPrefix is the shortest abbreviation Resolve accepts.
const minPrefix = 3

// Registry resolves typed words to commands by canonical name, alias, or
// unambiguous prefix of a canonical name.
type Registry struct {
	lookup map[string]*Command // names and aliases
	sorted []*Command          // by canonical name
}

// NewRegistry indexes cmds.
//
// Precondition: names and aliases are unique across all commands.
// Postcondition: On collision, returns an error listing every clash.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{lookup: make(map[string]*Command, len(cmds)*2)}
	owner := make(map[string]string)
	var errs []error

	claim := func(word, by string, cmd *Command) {
		if prev, taken := owner[word]; taken {
			errs = append(errs, fmt.Errorf("%q is claimed by both %q and %q", word, prev, by))
			return
		}
		owner[word] = by
		r.lookup[word] = cmd
	}
	for i := range cmds {
		cmd := &cmds[i]
		claim(cmd.Name, cmd.Name, cmd)
		for _, alias := range cmd.Aliases {
			claim(alias, cmd.Name, cmd)
		}
		r.sorted = append(r.sorted, cmd)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building command registry: %w", errors.Join(errs...))
	}
	sort.Slice(r.sorted, func(i, j int) bool { return r.sorted[i].Name < r.sorted[j].Name })
	return r, nil
}

// DefaultRegistry returns a Registry of BuiltinCommands. It panics if the
// built-in table is inconsistent.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve finds the command for word. An exact name or alias wins; otherwise
// word must be a prefix, at least minPrefix long, of exactly one canonical
// name.
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.lookup[word]; ok {
		return cmd, true
	}
	if len(word) < minPrefix {
		return nil, false
	}
	var match *Command
	for _, cmd := range r.sorted {
		if strings.HasPrefix(cmd.Name, word) {
			if match != nil {
				return nil, false
			}
			match = cmd
		}
	}
	return match, match != nil
}

// Commands returns every command ordered by name.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.sorted...)
}

// CommandsByCategory groups Commands by category, keeping name order.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	out := make(map[string][]*Command)
	for _, cmd := range r.sorted {
		out[cmd.Category] = append(out[cmd.Category], cmd)
	}
	return out
}
