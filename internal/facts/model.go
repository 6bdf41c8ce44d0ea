package facts

import "slices"

// FieldSet is the set of data field names declared for one resource on one
// schema side.
type FieldSet map[string]struct{}

// NewFieldSet creates a set holding the given names.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s FieldSet) Add(name string) {
	s[name] = struct{}{}
}

func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s FieldSet) Len() int {
	return len(s)
}

// Sorted returns the names in ascending order.
func (s FieldSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Union adds every name of other to s.
func (s FieldSet) Union(other FieldSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Minus returns the names in s that are not in other.
func (s FieldSet) Minus(other FieldSet) FieldSet {
	out := make(FieldSet)
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Without returns a copy of s with every name for which ignored returns true
// removed.
func (s FieldSet) Without(ignored func(string) bool) FieldSet {
	out := make(FieldSet, len(s))
	for n := range s {
		if ignored != nil && ignored(n) {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

// DiffResult holds the asymmetric difference between two field sets.
type DiffResult struct {
	Missing []string `json:"missing"` // in A, not in B
	Extra   []string `json:"extra"`   // in B, not in A
}

// Diff computes missing = a - b and extra = b - a using exact name equality.
func Diff(a, b FieldSet) DiffResult {
	return DiffResult{
		Missing: a.Minus(b).Sorted(),
		Extra:   b.Minus(a).Sorted(),
	}
}

// ResourceResult is the outcome of checking one resource.
type ResourceResult struct {
	Resource     string   `json:"resource"`
	SchemaAFiles []string `json:"schema_a_files"`
	SchemaBFile  string   `json:"schema_b_file"`
	HeaderFound  bool     `json:"header_found"`
	SchemaA      FieldSet `json:"-"`
	SchemaB      FieldSet `json:"-"`
	DiffResult
}

// HasFindings returns true if either side has a field the other lacks.
func (r ResourceResult) HasFindings() bool {
	return len(r.Missing) > 0 || len(r.Extra) > 0
}

// Failing returns true if the resource counts against the exit status: its
// header exists and a reference field is missing from it.
func (r ResourceResult) Failing() bool {
	return r.HeaderFound && len(r.Missing) > 0
}

// Report holds the complete result of a parity run.
type Report struct {
	Meta    ReportMeta       `json:"meta"`
	Results []ResourceResult `json:"results"`
}

// ReportMeta contains metadata about a parity run.
type ReportMeta struct {
	GeneratedAt   string `json:"generated_at"`
	Duration      string `json:"duration"`
	SchemaARoot   string `json:"schema_a_root"`
	SchemaBRoot   string `json:"schema_b_root"`
	Parser        string `json:"parser"`
	ResourceCount int    `json:"resource_count"`
	FailingCount  int    `json:"failing_count"`
}

// Failed returns true if any resource has missing fields.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Failing() {
			return true
		}
	}
	return false
}

// Result returns the result for a resource, or false if it was not checked.
func (r *Report) Result(resource string) (ResourceResult, bool) {
	for _, res := range r.Results {
		if res.Resource == resource {
			return res, true
		}
	}
	return ResourceResult{}, false
}

// Artifact represents a rendered report.
type Artifact struct {
	Name    string `json:"name"`    // e.g. "report.txt"
	Content []byte `json:"-"`       // Raw content
	Type    string `json:"type"`    // MIME type hint
}
