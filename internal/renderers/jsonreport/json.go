package jsonreport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/renderers"
)

// JSONRenderer emits the report as indented JSON for CI tooling.
type JSONRenderer struct {
	opts renderers.Options
}

// New creates a new JSONRenderer. ShowAll and IncludeExtra filter the
// results the same way the text report does.
func New(opts renderers.Options) *JSONRenderer {
	return &JSONRenderer{opts: opts}
}

func (r *JSONRenderer) Name() string {
	return "json"
}

type jsonReport struct {
	Meta    facts.ReportMeta `json:"meta"`
	Failed  bool             `json:"failed"`
	Results []jsonResult     `json:"results"`
}

type jsonResult struct {
	Resource     string   `json:"resource"`
	Skipped      bool     `json:"skipped,omitempty"`
	SchemaAFiles []string `json:"schema_a_files"`
	SchemaBFile  string   `json:"schema_b_file"`
	Missing      []string `json:"missing"`
	Extra        []string `json:"extra,omitempty"`
}

func (r *JSONRenderer) Render(ctx context.Context, report *facts.Report) ([]facts.Artifact, error) {
	out := jsonReport{
		Meta:    report.Meta,
		Failed:  report.Failed(),
		Results: []jsonResult{},
	}

	for _, res := range report.Results {
		if !res.HasFindings() && !r.opts.ShowAll {
			continue
		}
		jr := jsonResult{
			Resource:     res.Resource,
			Skipped:      !res.HeaderFound,
			SchemaAFiles: nonNil(res.SchemaAFiles),
			SchemaBFile:  res.SchemaBFile,
			Missing:      nonNil(res.Missing),
		}
		if r.opts.IncludeExtra {
			jr.Extra = nonNil(res.Extra)
		}
		out.Results = append(out.Results, jr)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}

	return []facts.Artifact{
		{
			Name:    "report.json",
			Content: append(data, '\n'),
			Type:    "application/json",
		},
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
