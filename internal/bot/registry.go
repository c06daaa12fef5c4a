package bot

import (
	"context"
	"sort"
	"strings"
)

// HandlerFunc executes one command invocation.
type HandlerFunc func(ctx context.Context, cc *CommandContext) error

// Descriptor is the static metadata for one built-in command.
type Descriptor struct {
	Name         string
	Handler      HandlerFunc
	RequiresArgs bool
	Queued       bool
	Restricted   bool
	Hidden       bool
}

// Registry maps command names to descriptors. It is populated once during
// startup composition; lookups are safe for concurrent use once registration
// is done.
type Registry struct {
	commands map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Descriptor)}
}

// Register inserts or overwrites the descriptor under its lower-cased name.
func (r *Registry) Register(desc Descriptor) {
	desc.Name = strings.ToLower(desc.Name)
	r.commands[desc.Name] = desc
}

// Lookup resolves a command name case-insensitively.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	desc, ok := r.commands[strings.ToLower(name)]
	return desc, ok
}

// ListVisible returns every non-hidden descriptor, sorted by name.
func (r *Registry) ListVisible() []Descriptor {
	visible := make([]Descriptor, 0, len(r.commands))
	for _, desc := range r.commands {
		if !desc.Hidden {
			visible = append(visible, desc)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
	return visible
}

// All returns every descriptor, hidden ones included.
func (r *Registry) All() []Descriptor {
	all := make([]Descriptor, 0, len(r.commands))
	for _, desc := range r.commands {
		all = append(all, desc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}
