package textreport

import (
	"context"
	"strings"

	"github.com/fatih/color"

	"github.com/dejo1307/fieldparity/internal/facts"
	"github.com/dejo1307/fieldparity/internal/renderers"
)

// TextRenderer prints the per-resource missing/extra listing.
type TextRenderer struct {
	opts renderers.Options

	resource *color.Color
	missing  *color.Color
	extra    *color.Color
	muted    *color.Color
}

// New creates a new TextRenderer.
func New(opts renderers.Options) *TextRenderer {
	r := &TextRenderer{
		opts:     opts,
		resource: color.New(color.Bold),
		missing:  color.New(color.FgRed),
		extra:    color.New(color.FgYellow),
		muted:    color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{r.resource, r.missing, r.extra, r.muted} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *TextRenderer) Name() string {
	return "text"
}

// Render produces report.txt. Resources without differences are left out
// unless ShowAll is set, and resources without a header are reported as
// skipped instead of listed.
func (r *TextRenderer) Render(ctx context.Context, report *facts.Report) ([]facts.Artifact, error) {
	var sb strings.Builder

	for _, res := range report.Results {
		if !res.HasFindings() && !r.opts.ShowAll {
			continue
		}

		if !res.HeaderFound {
			sb.WriteString(res.Resource + ": " + r.muted.Sprint("skipped (no header)") + "\n")
			continue
		}

		sb.WriteString(r.resource.Sprint(res.Resource) + ":\n")
		r.writeSection(&sb, "missing", res.Missing, r.missing)
		if r.opts.IncludeExtra {
			r.writeSection(&sb, "extra", res.Extra, r.extra)
		}
	}

	return []facts.Artifact{
		{
			Name:    "report.txt",
			Content: []byte(sb.String()),
			Type:    "text/plain",
		},
	}, nil
}

func (r *TextRenderer) writeSection(sb *strings.Builder, label string, fields []string, c *color.Color) {
	if len(fields) == 0 {
		sb.WriteString("  " + label + ": " + r.muted.Sprint("none") + "\n")
		return
	}
	sb.WriteString("  " + label + ":\n")
	for _, f := range fields {
		sb.WriteString("    - " + c.Sprint(f) + "\n")
	}
}
