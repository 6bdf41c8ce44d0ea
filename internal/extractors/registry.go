package extractors

import (
	"context"

	"github.com/dejo1307/fieldparity/internal/facts"
)

// Extractor reads declaration files of one schema style and returns the
// data field names they declare.
type Extractor interface {
	// Name returns the extractor identifier (e.g. "regex", "cpp").
	Name() string
	// Extract parses the given files and returns the union of their fields.
	// Missing or unreadable files contribute nothing.
	Extract(ctx context.Context, paths []string) (facts.FieldSet, error)
}

// Registry holds registered extractors.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a new extractor registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor to the registry.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Get returns the extractor with the given name, or nil if not found.
func (r *Registry) Get(name string) Extractor {
	for _, e := range r.extractors {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Names returns the names of all registered extractors in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors))
	for _, e := range r.extractors {
		names = append(names, e.Name())
	}
	return names
}
