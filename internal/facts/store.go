package facts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Store keeps the most recent report so long-running surfaces (the MCP
// server, watch mode) can serve it between runs.
type Store struct {
	mu     sync.RWMutex
	report *Report
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored report.
func (s *Store) Set(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = r
}

// Last returns the stored report, or nil if no run has completed.
func (s *Store) Last() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Count returns the number of resources in the stored report.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return 0
	}
	return len(s.report.Results)
}

// ByResource returns the stored result for one resource.
func (s *Store) ByResource(resource string) (ResourceResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return ResourceResult{}, false
	}
	return s.report.Result(resource)
}

// WriteJSONL writes one JSON object per resource result.
func (s *Store) WriteJSONL(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, res := range s.report.Results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result %s: %w", res.Resource, err)
		}
	}
	return bw.Flush()
}

// WriteJSONLFile writes the stored results to a JSONL file.
func (s *Store) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return s.WriteJSONL(f)
}

// ReadJSONLFile loads results from a file written by WriteJSONLFile.
func (s *Store) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.ReadJSONL(f)
}

// ReadJSONL reads resource results written by WriteJSONL and stores them as
// a report without metadata.
func (s *Store) ReadJSONL(r io.Reader) error {
	report := &Report{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var res ResourceResult
		if err := json.Unmarshal(line, &res); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		report.Results = append(report.Results, res)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	report.Meta.ResourceCount = len(report.Results)
	s.Set(report)
	return nil
}
