package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dejo1307/fieldparity/internal/config"
	"github.com/dejo1307/fieldparity/internal/extractors"
	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/resolver"
)

// SchemaBExtractor is the registry name of the struct-side extractor.
const SchemaBExtractor = "cpp"

// Engine orchestrates a parity run: resolve -> extract -> diff.
type Engine struct {
	mu         sync.Mutex // serializes Check
	cfg        *config.Config
	resolver   *resolver.Resolver
	extractors *extractors.Registry
	store      *facts.Store
}

// New creates a new Engine with the given config.
// Extractors must be registered after creation.
func New(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		resolver:   resolver.New(cfg),
		extractors: extractors.NewRegistry(),
		store:      facts.NewStore(),
	}, nil
}

// RegisterExtractor adds an extractor to the engine.
func (e *Engine) RegisterExtractor(ext extractors.Extractor) {
	e.extractors.Register(ext)
}

// Store returns the result store.
func (e *Engine) Store() *facts.Store {
	return e.store
}

// Resolver returns the resource resolver.
func (e *Engine) Resolver() *resolver.Resolver {
	return e.resolver
}

// Check runs the parity check for resources, or for the configured default
// list when resources is empty. It fails before touching any resource when
// the Schema-A root is missing. The report is also kept in the store.
func (e *Engine) Check(ctx context.Context, resources []string) (*facts.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if err := e.resolver.CheckRoots(); err != nil {
		return nil, err
	}

	schemaA, schemaB, err := e.sideExtractors()
	if err != nil {
		return nil, err
	}

	names := e.resourceList(resources)
	log.Printf("[engine] checking %d resources with %s/%s extractors", len(names), schemaA.Name(), schemaB.Name())

	report := &facts.Report{}
	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, err := e.checkResource(ctx, name, schemaA, schemaB)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", name, err)
		}
		report.Results = append(report.Results, res)
		if res.Failing() {
			report.Meta.FailingCount++
		}
	}

	duration := time.Since(start)
	report.Meta = facts.ReportMeta{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Duration:      duration.String(),
		SchemaARoot:   e.resolver.SchemaARoot(),
		SchemaBRoot:   e.resolver.SchemaBRoot(),
		Parser:        schemaA.Name(),
		ResourceCount: len(report.Results),
		FailingCount:  report.Meta.FailingCount,
	}

	e.store.Set(report)
	log.Printf("[engine] checked %d resources in %s, %d with missing fields", len(names), duration, report.Meta.FailingCount)
	return report, nil
}

func (e *Engine) checkResource(ctx context.Context, name string, schemaA, schemaB extractors.Extractor) (facts.ResourceResult, error) {
	aFiles := e.resolver.SchemaA(name)
	header := e.resolver.SchemaB(name)

	aFields, err := schemaA.Extract(ctx, aFiles)
	if err != nil {
		return facts.ResourceResult{}, fmt.Errorf("schema-a: %w", err)
	}
	bFields, err := schemaB.Extract(ctx, []string{header})
	if err != nil {
		return facts.ResourceResult{}, fmt.Errorf("schema-b: %w", err)
	}

	// Applied again here so custom extractors cannot leak ignored names.
	aFields = aFields.Without(e.cfg.IsIgnoredField)
	bFields = bFields.Without(e.cfg.IsIgnoredField)

	res := facts.ResourceResult{
		Resource:     name,
		SchemaAFiles: aFiles,
		SchemaBFile:  header,
		HeaderFound:  e.resolver.HeaderExists(name),
		SchemaA:      aFields,
		SchemaB:      bFields,
		DiffResult:   facts.Diff(aFields, bFields),
	}
	log.Printf("[engine] %s: %d schema-a files, %d/%d fields, %d missing, %d extra",
		name, len(aFiles), aFields.Len(), bFields.Len(), len(res.Missing), len(res.Extra))
	return res, nil
}

// Locate resolves resources without extracting anything.
func (e *Engine) Locate(resources []string) ([]facts.ResourceResult, error) {
	if err := e.resolver.CheckRoots(); err != nil {
		return nil, err
	}
	var out []facts.ResourceResult
	for _, name := range e.resourceList(resources) {
		out = append(out, facts.ResourceResult{
			Resource:     name,
			SchemaAFiles: e.resolver.SchemaA(name),
			SchemaBFile:  e.resolver.SchemaB(name),
			HeaderFound:  e.resolver.HeaderExists(name),
		})
	}
	return out, nil
}

func (e *Engine) sideExtractors() (extractors.Extractor, extractors.Extractor, error) {
	schemaA := e.extractors.Get(e.cfg.SchemaA.Parser)
	if schemaA == nil {
		return nil, nil, fmt.Errorf("no extractor registered for parser %q (have %v)", e.cfg.SchemaA.Parser, e.extractors.Names())
	}
	schemaB := e.extractors.Get(SchemaBExtractor)
	if schemaB == nil {
		return nil, nil, fmt.Errorf("no extractor registered for %q", SchemaBExtractor)
	}
	return schemaA, schemaB, nil
}

func (e *Engine) resourceList(resources []string) []string {
	if len(resources) == 0 {
		resources = e.cfg.Resources
	}
	return Dedupe(resources)
}

// Dedupe removes repeated names, keeping the first occurrence's position.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
