package renderers

import (
	"context"

	"github.com/dejo1307/fieldparity/internal/facts"
)

// Renderer produces output artifacts from a parity report.
type Renderer interface {
	// Name returns the renderer identifier (e.g. "text", "json").
	Name() string
	// Render produces artifacts from the given report.
	Render(ctx context.Context, report *facts.Report) ([]facts.Artifact, error)
}

// Options controls which findings a renderer shows.
type Options struct {
	ShowAll      bool // include resources without differences
	IncludeExtra bool // list fields present only in Schema-B
	Color        bool // ANSI colour, text renderer only
}

// Registry holds registered renderers.
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates a new renderer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a renderer to the registry.
func (r *Registry) Register(rnd Renderer) {
	r.renderers = append(r.renderers, rnd)
}

// Get returns the renderer with the given name, or nil if not found.
func (r *Registry) Get(name string) Renderer {
	for _, rnd := range r.renderers {
		if rnd.Name() == name {
			return rnd
		}
	}
	return nil
}

// All returns all registered renderers.
func (r *Registry) All() []Renderer {
	return r.renderers
}
