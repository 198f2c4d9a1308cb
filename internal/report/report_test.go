package report

import (
	"context"
	"testing"

	"goportfolio/domain/evaluation"
	"goportfolio/internal/geometry"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(t *testing.T, recs ...*evaluation.Record) Input {
	t.Helper()
	space, box := testkit.UnitBox(2)
	tr := translator.New(space)
	require.NoError(t, tr.AddAll(append(box, recs...)))
	sys := tr.System()

	vs, err := geometry.Enumerate(context.Background(), sys, geometry.DefaultConfig())
	require.NoError(t, err)
	return Input{
		Title:       "Unit square",
		GeneratedAt: "2024-01-15T09:00:00Z",
		System:      sys,
		Records:     tr.Len(),
		Validation:  validator.New().Validate(sys),
		Vertices:    vs,
		Properties:  geometry.ComputeProperties(vs, sys, geometry.DefaultConfig()),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(input(t))

	assert.Contains(t, md, "# Unit square")
	assert.Contains(t, md, "| Variables | 2 |")
	assert.Contains(t, md, "| Inequalities | 4 |")
	assert.Contains(t, md, "No warnings.")
	assert.Contains(t, md, "- Vertices: 4")
	assert.Contains(t, md, "- Volume: 1")
	assert.Contains(t, md, "| P1_value | 0.5000 | 0.0000 | 1.0000 |")
}

func TestMarkdown_WarningsAndEmptyRegion(t *testing.T) {
	md := Markdown(input(t,
		testkit.Comparison("e1", "P1", evaluation.OpGreater, "P2"),
		testkit.Comparison("e2", "P2", evaluation.OpGreater, "P1"),
	))

	assert.Contains(t, md, validator.CodePairwiseContradiction)
	assert.Contains(t, md, "comp_P1_P2_value, comp_P2_P1_value")
	assert.Contains(t, md, "No vertices: **INFEASIBLE**.")
}

func TestHTML(t *testing.T) {
	out := string(HTML(input(t)))

	assert.Contains(t, out, `<h1 id="unit-square">Unit square</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>P1_value</td>")
}
