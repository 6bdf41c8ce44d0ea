package tsextractor

import (
	"context"
	"log"
	"os"
	"regexp"

	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/source"
)

// TSExtractor collects property names from TypeScript interface and
// object type-alias bodies using comment stripping, brace matching and a
// positional regex. It is a heuristic, not a parser.
type TSExtractor struct {
	ignored func(string) bool
}

// New creates a new TSExtractor. Field names for which ignored returns true
// are dropped from every result.
func New(ignored func(string) bool) *TSExtractor {
	return &TSExtractor{ignored: ignored}
}

func (e *TSExtractor) Name() string {
	return "regex"
}

var (
	interfaceRe = regexp.MustCompile(`interface\s+[A-Za-z0-9_]+\s*\{`)
	typeAliasRe = regexp.MustCompile(`type\s+[A-Za-z0-9_]+\s*=\s*\{`)

	// name: or name?: followed by whitespace. RE2 has no lookbehind, so the
	// "[" and "." exclusions are checked by hand in propertyNames.
	propRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\??:\s`)
)

// Extract reads each file and returns the union of their property names.
func (e *TSExtractor) Extract(ctx context.Context, paths []string) (facts.FieldSet, error) {
	fields := make(facts.FieldSet)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return fields, ctx.Err()
		default:
		}

		src, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[ts-extractor] error reading %s: %v", path, err)
			continue
		}
		fields.Union(ExtractText(string(src)))
	}

	return fields.Without(e.ignored), nil
}

// ExtractText returns the property names declared in the interface and
// object type-alias bodies of one file's text. Ignored fields are not
// filtered here.
func ExtractText(text string) facts.FieldSet {
	text = source.StripComments(text)
	fields := make(facts.FieldSet)

	for _, re := range []*regexp.Regexp{interfaceRe, typeAliasRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			// Headers end with the opening brace.
			block := source.FindBlock(text, loc[1]-1)
			for _, name := range propertyNames(block) {
				fields.Add(name)
			}
		}
	}

	return fields
}

// propertyNames returns every "name:" / "name?:" token in block that is not
// an index access ("[name: ") or a member access (".name: ").
func propertyNames(block string) []string {
	var names []string
	for _, m := range propRe.FindAllStringSubmatchIndex(block, -1) {
		start := m[2]
		if start > 0 {
			switch block[start-1] {
			case '[', '.':
				continue
			}
		}
		names = append(names, block[m[2]:m[3]])
	}
	return names
}
