package facts

import (
	"slices"
	"strings"
	"testing"
)

func TestFieldSet(t *testing.T) {
	s := NewFieldSet("b", "a", "b")
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if !s.Has("a") || s.Has("c") {
		t.Errorf("Has mismatch: %v", s.Sorted())
	}
	if got := strings.Join(s.Sorted(), ","); got != "a,b" {
		t.Errorf("Sorted = %q, want a,b", got)
	}

	s.Union(NewFieldSet("c"))
	if got := strings.Join(s.Sorted(), ","); got != "a,b,c" {
		t.Errorf("after Union = %q", got)
	}

	kept := s.Without(func(n string) bool { return n == "b" })
	if got := strings.Join(kept.Sorted(), ","); got != "a,c" {
		t.Errorf("Without = %q, want a,c", got)
	}
	if !s.Has("b") {
		t.Error("Without must not modify the receiver")
	}
	if got := s.Without(nil).Len(); got != 3 {
		t.Errorf("Without(nil) kept %d, want 3", got)
	}
}

func TestDiff(t *testing.T) {
	a := NewFieldSet("id", "object", "status")
	b := NewFieldSet("id", "status", "raw")

	d := Diff(a, b)
	if !slices.Equal(d.Missing, []string{"object"}) {
		t.Errorf("Missing = %v, want [object]", d.Missing)
	}
	if !slices.Equal(d.Extra, []string{"raw"}) {
		t.Errorf("Extra = %v, want [raw]", d.Extra)
	}
}

func TestDiff_ExactMatchOnly(t *testing.T) {
	d := Diff(NewFieldSet("createdAt"), NewFieldSet("created_at", "CreatedAt"))
	if !slices.Equal(d.Missing, []string{"createdAt"}) {
		t.Errorf("Missing = %v", d.Missing)
	}
	if !slices.Equal(d.Extra, []string{"CreatedAt", "created_at"}) {
		t.Errorf("Extra = %v", d.Extra)
	}
}

func TestDiff_AntiSymmetric(t *testing.T) {
	sets := []FieldSet{
		NewFieldSet(),
		NewFieldSet("a"),
		NewFieldSet("a", "b", "c"),
		NewFieldSet("c", "d"),
		NewFieldSet("x", "y", "a"),
	}
	for _, a := range sets {
		for _, b := range sets {
			ab := Diff(a, b)
			ba := Diff(b, a)
			if !slices.Equal(ab.Missing, ba.Extra) {
				t.Errorf("missing(%v,%v)=%v != extra(%v,%v)=%v", a.Sorted(), b.Sorted(), ab.Missing, b.Sorted(), a.Sorted(), ba.Extra)
			}
			if !slices.Equal(ab.Extra, ba.Missing) {
				t.Errorf("extra(%v,%v)=%v != missing(%v,%v)=%v", a.Sorted(), b.Sorted(), ab.Extra, b.Sorted(), a.Sorted(), ba.Missing)
			}
		}
	}
}

func TestReport_Failed(t *testing.T) {
	tests := []struct {
		name    string
		results []ResourceResult
		want    bool
	}{
		{"empty", nil, false},
		{"only extra", []ResourceResult{{Resource: "a", HeaderFound: true, DiffResult: DiffResult{Extra: []string{"x"}}}}, false},
		{"missing with header", []ResourceResult{{Resource: "a", HeaderFound: true, DiffResult: DiffResult{Missing: []string{"x"}}}}, true},
		{"missing without header", []ResourceResult{{Resource: "a", DiffResult: DiffResult{Missing: []string{"x"}}}}, false},
		{"one of many", []ResourceResult{
			{Resource: "a", HeaderFound: true},
			{Resource: "b", HeaderFound: true, DiffResult: DiffResult{Missing: []string{"y"}}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Results: tt.results}
			if got := r.Failed(); got != tt.want {
				t.Errorf("Failed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReport_Result(t *testing.T) {
	r := &Report{Results: []ResourceResult{{Resource: "runs"}, {Resource: "files"}}}
	if res, ok := r.Result("files"); !ok || res.Resource != "files" {
		t.Errorf("Result(files) = %+v, %v", res, ok)
	}
	if _, ok := r.Result("audio"); ok {
		t.Error("Result(audio) should not be found")
	}
}
