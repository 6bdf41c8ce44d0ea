package tsextractor

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/dejo1307/fieldparity/internal/facts"
)

// --- helpers ---

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()

	var paths []string
	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, absPath)
	}
	slices.Sort(paths)
	return dir, paths
}

func ignoreStatic(name string) bool {
	return name == "static"
}

func assertFields(t *testing.T, got facts.FieldSet, want ...string) {
	t.Helper()
	slices.Sort(want)
	if g := got.Sorted(); !slices.Equal(g, want) {
		t.Errorf("fields = %v, want %v", g, want)
	}
}

// --- ExtractText ---

func TestExtractText_Interface(t *testing.T) {
	got := ExtractText(`interface Foo { id: string; count?: number; }`)
	assertFields(t, got, "id", "count")
}

func TestExtractText_TypeAlias(t *testing.T) {
	got := ExtractText(`
export type RunCreateParams = {
  assistant_id: string;
  model?: string | null;
};
`)
	assertFields(t, got, "assistant_id", "model")
}

func TestExtractText_Cases(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"multiple interfaces",
			`export interface Run {
  id: string;
  object: 'thread.run';
}

export interface RunUsage {
  completion_tokens: number;
}`,
			[]string{"id", "object", "completion_tokens"},
		},
		{
			"commented out fields are ignored",
			`export interface Run {
  /**
   * The identifier: always set.
   */
  id: string;
  // legacy: string;
  /* removed: boolean; */
}`,
			[]string{"id"},
		},
		{
			"index signature excluded",
			`interface Metadata {
  [key: string]: unknown;
  name: string;
}`,
			[]string{"name"},
		},
		{
			"member access excluded",
			`type Event = {
  data: Run.Status;
  kind: typeof Foo.bar: x;
}`,
			[]string{"data", "kind"},
		},
		{
			"nested object literal keys are collected",
			`interface Run {
  usage: {
    prompt_tokens: number;
  } | null;
}`,
			[]string{"usage", "prompt_tokens"},
		},
		{
			"method signature parameters are collected",
			`interface Pager {
  next(cursor: string): Promise<Page>;
}`,
			[]string{"cursor"},
		},
		{
			"classes and functions are ignored",
			`export class Runs {
  create(body: RunCreateParams): void {}
}
function helper(x: number) {}
const y = { z: 1 };`,
			nil,
		},
		{
			"union type alias is not an object body",
			`export type Status = 'queued' | 'completed';
export type Mixed = Base & { extra: string };`,
			nil,
		},
		{
			"generic interface header not matched",
			`interface Page<T> { data: T[]; }`,
			nil,
		},
		{
			"no whitespace after colon",
			`interface Tight { a:string; b: string; }`,
			[]string{"b"},
		},
		{
			"truncated body is scanned to the end",
			`interface Broken {
  id: string;
  nested: {
    inner: number;`,
			[]string{"id", "nested", "inner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFields(t, ExtractText(tt.src), tt.want...)
		})
	}
}

// Comment markers inside string literal types cut the rest of the line:
// "rel" is lost and the URL scheme turns into a false "https" field.
func TestExtractText_StringLiteralLimitation(t *testing.T) {
	got := ExtractText(`interface Link {
  href: 'https://example.com'; rel: string;
  title: string;
}`)
	assertFields(t, got, "href", "https", "title")
}

func TestPropertyNames_Exclusions(t *testing.T) {
	got := propertyNames(`{ a: 1, [b: 2], x.c: 3, d?: 4, e?.f: 5 }`)
	want := []string{"a", "d"}
	if !slices.Equal(got, want) {
		t.Errorf("propertyNames = %v, want %v", got, want)
	}
}

// --- Extract ---

func TestExtract_UnionAcrossFiles(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"beta/threads/runs.ts":      "export interface Run { id: string; static: boolean; }",
		"beta/threads/runs/runs.ts": "export type RunParams = { model: string; id: string };",
	})

	got, err := New(ignoreStatic).Extract(context.Background(), paths)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFields(t, got, "id", "model")
}

func TestExtract_IgnoredFieldNeverReturned(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.ts": "interface A { static: string; }\ntype B = { static?: number };",
	})

	got, err := New(ignoreStatic).Extract(context.Background(), paths)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Has("static") {
		t.Error("ignored field static was returned")
	}
	if got.Len() != 0 {
		t.Errorf("expected no fields, got %v", got.Sorted())
	}
}

func TestExtract_NoFiles(t *testing.T) {
	got, err := New(ignoreStatic).Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("expected empty set, got %v", got.Sorted())
	}
}

func TestExtract_UnreadableFileSkipped(t *testing.T) {
	dir, paths := writeFiles(t, map[string]string{
		"ok.ts": "interface A { id: string }",
	})
	paths = append(paths, filepath.Join(dir, "missing.ts"))

	got, err := New(nil).Extract(context.Background(), paths)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	assertFields(t, got, "id")
}

func TestExtract_Idempotent(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"runs.ts": `export interface Run {
  id: string;
  required_action: { submit_tool_outputs: Array<Tool> } | null;
}`,
	})

	ext := New(ignoreStatic)
	first, err := ext.Extract(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ext.Extract(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(first.Sorted(), ",") != strings.Join(second.Sorted(), ",") {
		t.Errorf("results differ: %v vs %v", first.Sorted(), second.Sorted())
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{"a.ts": "interface A { id: string }"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(nil).Extract(ctx, paths); err == nil {
		t.Error("expected context error")
	}
}
