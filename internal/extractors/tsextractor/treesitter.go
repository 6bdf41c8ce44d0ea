package tsextractor

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dejo1307/fieldparity/internal/facts"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TreeSitterExtractor collects the same property names as TSExtractor from a
// real TypeScript syntax tree. It is used to cross-check the heuristic, so
// it only looks at interface bodies and type aliases whose value is an
// object type, and it records identifier-named property signatures at any
// depth inside them.
type TreeSitterExtractor struct {
	ignored func(string) bool
}

// NewTreeSitter creates a new TreeSitterExtractor.
func NewTreeSitter(ignored func(string) bool) *TreeSitterExtractor {
	return &TreeSitterExtractor{ignored: ignored}
}

func (e *TreeSitterExtractor) Name() string {
	return "treesitter"
}

// Extract parses each file and returns the union of their property names.
func (e *TreeSitterExtractor) Extract(ctx context.Context, paths []string) (facts.FieldSet, error) {
	fields := make(facts.FieldSet)
	if len(paths) == 0 {
		return fields, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(typescript.LanguageTypescript())); err != nil {
		return nil, fmt.Errorf("loading typescript grammar: %w", err)
	}

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

		tree := parser.Parse(src, nil)
		if tree == nil {
			log.Printf("[ts-extractor] failed to parse %s", path)
			continue
		}
		collectDeclarations(tree.RootNode(), src, fields)
		tree.Close()
	}

	return fields.Without(e.ignored), nil
}

// collectDeclarations walks the tree looking for interface and object
// type-alias declarations, wherever they are nested (export statements,
// namespaces).
func collectDeclarations(node *sitter.Node, src []byte, fields facts.FieldSet) {
	switch node.Kind() {
	case "interface_declaration":
		if body := node.ChildByFieldName("body"); body != nil {
			collectProperties(body, src, fields)
		}
		return
	case "type_alias_declaration":
		if value := node.ChildByFieldName("value"); value != nil && value.Kind() == "object_type" {
			collectProperties(value, src, fields)
		}
		return
	}

	for i := range node.NamedChildCount() {
		collectDeclarations(node.NamedChild(i), src, fields)
	}
}

func collectProperties(node *sitter.Node, src []byte, fields facts.FieldSet) {
	if node.Kind() == "property_signature" {
		if name := node.ChildByFieldName("name"); name != nil && name.Kind() == "property_identifier" {
			fields.Add(nodeText(name, src))
		}
	}
	for i := range node.NamedChildCount() {
		collectProperties(node.NamedChild(i), src, fields)
	}
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
