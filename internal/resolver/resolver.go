// Package resolver maps logical resource names to the declaration files
// that describe them on each schema side.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dejo1307/fieldparity/internal/config"
)

// ErrSchemaARootMissing is returned by CheckRoots when the reference
// definitions are not checked out.
var ErrSchemaARootMissing = errors.New("schema-a root not found")

// Strategy produces candidate Schema-A files for a resource.
type Strategy interface {
	Resolve(resource string) []string
}

// OverrideStrategy resolves resources listed in an explicit table.
type OverrideStrategy struct {
	Root  string
	Table map[string][]string
}

// Resolve returns the table entries for resource that exist under Root,
// in table order.
func (s OverrideStrategy) Resolve(resource string) []string {
	var paths []string
	for _, rel := range s.Table[resource] {
		candidate := filepath.Join(s.Root, filepath.FromSlash(rel))
		if isFile(candidate) {
			paths = append(paths, candidate)
		}
	}
	return paths
}

// ConventionStrategy resolves a resource by naming convention: underscores
// become hyphens, then both <name><ext> and every <ext> file below <name>/
// are used.
type ConventionStrategy struct {
	Root      string
	Extension string
}

func (s ConventionStrategy) Resolve(resource string) []string {
	name := strings.ReplaceAll(resource, "_", "-")
	var paths []string

	file := filepath.Join(s.Root, name+s.Extension)
	if isFile(file) {
		paths = append(paths, file)
	}

	dir := filepath.Join(s.Root, name)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		var nested []string
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees contribute nothing.
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), s.Extension) {
				nested = append(nested, path)
			}
			return nil
		})
		slices.Sort(nested)
		paths = append(paths, nested...)
	}

	return paths
}

// Resolver locates both sides of a resource. It is built from an immutable
// configuration snapshot and never touches the file system until asked.
type Resolver struct {
	schemaARoot string
	schemaBRoot string
	schemaBExt  string
	overrides   OverrideStrategy
	convention  ConventionStrategy
}

// New builds a resolver from the configuration.
func New(cfg *config.Config) *Resolver {
	aRoot := cfg.SchemaARoot()
	table := make(map[string][]string, len(cfg.SchemaA.Overrides))
	for k, v := range cfg.SchemaA.Overrides {
		table[k] = slices.Clone(v)
	}
	return &Resolver{
		schemaARoot: aRoot,
		schemaBRoot: cfg.SchemaBRoot(),
		schemaBExt:  cfg.SchemaB.Extension,
		overrides:   OverrideStrategy{Root: aRoot, Table: table},
		convention:  ConventionStrategy{Root: aRoot, Extension: cfg.SchemaA.Extension},
	}
}

// SchemaARoot returns the resolved Schema-A root directory.
func (r *Resolver) SchemaARoot() string {
	return r.schemaARoot
}

// SchemaBRoot returns the resolved Schema-B root directory.
func (r *Resolver) SchemaBRoot() string {
	return r.schemaBRoot
}

// CheckRoots fails when the Schema-A root is not a directory.
func (r *Resolver) CheckRoots() error {
	info, err := os.Stat(r.schemaARoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s (clone the reference SDK next to this repository)", ErrSchemaARootMissing, r.schemaARoot)
	}
	return nil
}

// StrategyFor returns the Schema-A strategy used for resource: the override
// table when it lists the resource, the naming convention otherwise.
func (r *Resolver) StrategyFor(resource string) Strategy {
	if _, ok := r.overrides.Table[resource]; ok {
		return r.overrides
	}
	return r.convention
}

// SchemaA returns the existing Schema-A files for resource.
func (r *Resolver) SchemaA(resource string) []string {
	return r.StrategyFor(resource).Resolve(resource)
}

// SchemaB returns the Schema-B header path for resource. The file may not
// exist.
func (r *Resolver) SchemaB(resource string) string {
	return filepath.Join(r.schemaBRoot, resource+r.schemaBExt)
}

// HeaderExists reports whether the Schema-B header for resource exists.
func (r *Resolver) HeaderExists(resource string) bool {
	return isFile(r.SchemaB(resource))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
