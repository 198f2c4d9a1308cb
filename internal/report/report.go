// Package report renders a human-readable summary of a portfolio's
// constraint system, validation warnings and polytope properties.
package report

import (
	"fmt"
	"strings"

	"goportfolio/domain/constraint"
	"goportfolio/internal/geometry"
	"goportfolio/internal/validator"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Input is everything a report summarizes
type Input struct {
	Title       string
	GeneratedAt string
	System      constraint.System
	Records     int
	Validation  validator.Report
	Vertices    geometry.VertexSet
	Properties  geometry.Properties
}

// Markdown renders the report as Markdown
func Markdown(in Input) string {
	var b strings.Builder
	title := in.Title
	if title == "" {
		title = "Portfolio analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if in.GeneratedAt != "" {
		fmt.Fprintf(&b, "_Generated %s, system `%s`_\n\n", in.GeneratedAt, short(in.System.Hash.String()))
	}

	b.WriteString("## Constraint system\n\n")
	b.WriteString("| Measure | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Projects | %d |\n", len(in.System.Layout.Projects))
	fmt.Fprintf(&b, "| Criteria | %d |\n", len(in.System.Layout.Criteria))
	fmt.Fprintf(&b, "| Variables | %d |\n", in.Validation.NVariables)
	fmt.Fprintf(&b, "| Evaluations | %d |\n", in.Records)
	fmt.Fprintf(&b, "| Inequalities | %d |\n", in.Validation.NInequality)
	fmt.Fprintf(&b, "| Equalities | %d |\n", in.Validation.NEquality)
	fmt.Fprintf(&b, "| Overconstrained | %s |\n\n", yesNo(in.Validation.IsOverconstrained))

	b.WriteString("## Validation\n\n")
	if len(in.Validation.Warnings) == 0 {
		b.WriteString("No warnings.\n\n")
	} else {
		b.WriteString("| Code | Message | Constraints |\n|---|---|---|\n")
		for _, w := range in.Validation.Warnings {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", w.Code, escape(w.Message), escape(strings.Join(w.ConstraintIDs, ", ")))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Feasible region\n\n")
	writeRegion(&b, in)
	return b.String()
}

func writeRegion(b *strings.Builder, in Input) {
	vs, props := in.Vertices, in.Properties
	if vs.Empty() {
		reason := string(vs.Reason)
		if reason == "" {
			reason = "UNKNOWN"
		}
		fmt.Fprintf(b, "No vertices: **%s**.\n", reason)
		return
	}

	fmt.Fprintf(b, "- Vertices: %d (from %d of %.0f subsets)\n", vs.Len(), vs.SubsetsEvaluated, vs.SubsetsTotal)
	fmt.Fprintf(b, "- Affine dimension: %d of %d\n", props.AffineDimension, props.Dimensions)
	fmt.Fprintf(b, "- Volume: %s\n", props.Volume)
	fmt.Fprintf(b, "- Surface area: %s\n", props.SurfaceArea)
	if vs.PossiblyUnbounded {
		b.WriteString("- **Possibly unbounded**: some direction is not restricted by any constraint\n")
	}
	if vs.Incomplete {
		b.WriteString("- **Incomplete**: enumeration stopped at its step budget or deadline\n")
	}
	b.WriteString("\n| Variable | Centroid | Min | Max |\n|---|---|---|---|\n")
	for i, c := range props.Centroid {
		name := fmt.Sprintf("x%d", i)
		if i < len(vs.Variables) {
			name = vs.Variables[i]
		}
		box := props.BoundingBox[i]
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %.4f |\n", escape(name), c, box[0], box[1])
	}
}

// HTML renders the Markdown report to an HTML fragment
func HTML(in Input) []byte {
	return ToHTML(Markdown(in))
}

// ToHTML converts Markdown to HTML with tables and heading ids enabled
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
