package cppextractor

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/source"
)

// CPPExtractor collects data member names from C++ struct bodies using
// brace matching and line-based statement reassembly.
type CPPExtractor struct {
	ignored func(string) bool
}

// New creates a new CPPExtractor.
func New(ignored func(string) bool) *CPPExtractor {
	return &CPPExtractor{ignored: ignored}
}

func (e *CPPExtractor) Name() string {
	return "cpp"
}

// --- Regex patterns ---

var (
	structRe = regexp.MustCompile(`struct\s+[A-Za-z0-9_]+\s*\{`)

	// Type-ish tokens, then the member name before "=" or ";".
	fieldRe = regexp.MustCompile(`[A-Za-z0-9_:<> ,]+\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:=|;)`)
)

// Extract reads each header and returns the union of their struct fields.
// In practice the resolver hands over a single header.
func (e *CPPExtractor) Extract(ctx context.Context, paths []string) (facts.FieldSet, error) {
	fields := make(facts.FieldSet)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return fields, ctx.Err()
		default:
		}

		src, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Printf("[cpp-extractor] error reading %s: %v", path, err)
			}
			continue
		}
		fields.Union(ExtractText(string(src)))
	}

	return fields.Without(e.ignored), nil
}

// ExtractText returns the member names declared in every top-level struct
// body of a header. Comments are not stripped; whole-line // comments are
// skipped during statement reassembly.
func ExtractText(text string) facts.FieldSet {
	fields := make(facts.FieldSet)

	pos := 0
	for pos < len(text) {
		loc := structRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		brace := pos + loc[1] - 1
		block := source.FindBlock(text, brace)
		for _, stmt := range statements(block) {
			if name, ok := fieldName(stmt); ok {
				fields.Add(name)
			}
		}
		// Nested structs were consumed by this block's scan.
		pos = brace + len(block)
	}

	return fields
}

// statements joins the block's lines into ";"-terminated statements.
// Text after the last ";" is dropped.
func statements(block string) []string {
	var (
		result []string
		stmt   strings.Builder
	)

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		stmt.WriteString(" ")
		stmt.WriteString(line)
		if strings.Contains(line, ";") {
			result = append(result, strings.TrimSpace(stmt.String()))
			stmt.Reset()
		}
	}
	return result
}

// fieldName returns the member declared by a statement, or false when the
// statement is a function, using/friend declaration, enum or nested-type
// artifact.
func fieldName(stmt string) (string, bool) {
	switch {
	case strings.Contains(stmt, "("):
		return "", false
	case strings.HasPrefix(stmt, "using "), strings.HasPrefix(stmt, "friend "):
		return "", false
	case strings.Contains(stmt, "enum "), strings.HasSuffix(stmt, "}"):
		return "", false
	}

	m := fieldRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", false
	}
	return m[1], true
}
