package validator

import (
	"testing"

	"goportfolio/domain/constraint"
	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func system(t *testing.T, projects []string, recs ...*evaluation.Record) constraint.System {
	t.Helper()
	tr := translator.New(criterion.MustSpace(projects, nil))
	require.NoError(t, tr.AddAll(recs))
	return tr.System()
}

func codes(r Report) []string {
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.Code
	}
	return out
}

func TestValidate_Counts(t *testing.T) {
	space, recs := testkit.ReferenceScenario()
	tr := translator.New(space)
	require.NoError(t, tr.AddAll(recs))

	report := New().Validate(tr.System())

	assert.Equal(t, 64, report.NVariables)
	assert.Equal(t, 17, report.NInequality)
	assert.Equal(t, 1, report.NEquality)
	assert.Equal(t, testkit.ReferenceConstraintCount, report.Total)
	assert.False(t, report.IsOverconstrained)
	assert.False(t, report.HasWarnings(), "unexpected warnings: %v", report.Warnings)
}

func TestValidate_OpposingComparisons(t *testing.T) {
	sys := system(t, []string{"A", "B"},
		testkit.Comparison("e1", "A", evaluation.OpGreater, "B"),
		testkit.Comparison("e2", "B", evaluation.OpGreater, "A"),
	)

	report := New().Validate(sys)
	require.True(t, report.HasWarnings())
	w := report.Warnings[0]
	assert.Equal(t, CodePairwiseContradiction, w.Code)
	assert.Equal(t, "value", w.Criterion)
	assert.Equal(t, []string{"comp_A_B_value", "comp_B_A_value"}, w.ConstraintIDs)
	assert.Len(t, w.RecordIDs, 2)
}

func TestValidate_PairwiseRules(t *testing.T) {
	tests := []struct {
		name  string
		recs  []*evaluation.Record
		flags bool
	}{
		{
			name: "mirrored less agrees",
			recs: []*evaluation.Record{
				testkit.Comparison("e1", "A", evaluation.OpGreater, "B"),
				testkit.Comparison("e2", "B", evaluation.OpLess, "A"),
			},
		},
		{
			name: "non-strict both ways implies equality",
			recs: []*evaluation.Record{
				testkit.Comparison("e1", "A", evaluation.OpGreaterEqual, "B"),
				testkit.Comparison("e2", "B", evaluation.OpGreaterEqual, "A"),
			},
		},
		{
			name: "strict against non-strict opposite",
			recs: []*evaluation.Record{
				testkit.Comparison("e1", "A", evaluation.OpGreater, "B"),
				testkit.Comparison("e2", "A", evaluation.OpLessEqual, "B"),
			},
			flags: true,
		},
		{
			name: "equality against strict",
			recs: []*evaluation.Record{
				testkit.Comparison("e1", "A", evaluation.OpEqual, "B"),
				testkit.Comparison("e2", "B", evaluation.OpGreater, "A"),
			},
			flags: true,
		},
		{
			name: "ranking against comparison",
			recs: []*evaluation.Record{
				testkit.Ranking("e1", []string{"A", "B", "C"}),
				testkit.Comparison("e2", "C", evaluation.OpGreater, "B"),
			},
			flags: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New(WithCycleDetection(false)).Validate(system(t, []string{"A", "B", "C"}, tt.recs...))
			if tt.flags {
				assert.Contains(t, codes(report), CodePairwiseContradiction)
			} else {
				assert.NotContains(t, codes(report), CodePairwiseContradiction)
			}
		})
	}
}

func TestValidate_DifferentCriteriaDoNotConflict(t *testing.T) {
	tr := translator.New(criterion.MustSpace([]string{"A", "B"}, []string{"cost", "value"}))
	require.NoError(t, tr.AddAll([]*evaluation.Record{
		testkit.Comparison("e1", "A", evaluation.OpGreater, "B", evaluation.WithCriterion("cost")),
		testkit.Comparison("e2", "B", evaluation.OpGreater, "A", evaluation.WithCriterion("value")),
	}))

	assert.False(t, New().Validate(tr.System()).HasWarnings())
}

func TestValidate_Cycles(t *testing.T) {
	recs := []*evaluation.Record{
		testkit.Comparison("e1", "A", evaluation.OpGreater, "B"),
		testkit.Comparison("e2", "B", evaluation.OpGreater, "C"),
		testkit.Comparison("e3", "C", evaluation.OpGreater, "A"),
	}
	sys := system(t, []string{"A", "B", "C", "D"}, recs...)

	withCycles := New().Validate(sys)
	assert.NotContains(t, codes(withCycles), CodePairwiseContradiction)
	require.Contains(t, codes(withCycles), CodeCyclicContradiction)
	w := withCycles.Warnings[0]
	assert.ElementsMatch(t, []string{"comp_A_B_value", "comp_B_C_value", "comp_C_A_value"}, w.ConstraintIDs)
	assert.Contains(t, w.Message, "A, B, C")

	without := New(WithCycleDetection(false)).Validate(sys)
	assert.False(t, without.HasWarnings())
}

func TestValidate_NonStrictCycleIsConsistent(t *testing.T) {
	sys := system(t, []string{"A", "B", "C"},
		testkit.Comparison("e1", "A", evaluation.OpGreaterEqual, "B"),
		testkit.Comparison("e2", "B", evaluation.OpGreaterEqual, "C"),
		testkit.Comparison("e3", "C", evaluation.OpGreaterEqual, "A"),
	)

	assert.NotContains(t, codes(New().Validate(sys)), CodeCyclicContradiction)
}

func TestValidate_CycleThroughRankingAndEquality(t *testing.T) {
	sys := system(t, []string{"A", "B", "C"},
		testkit.Ranking("e1", []string{"A", "B", "C"}),
		testkit.Comparison("e2", "C", evaluation.OpEqual, "A"),
	)

	assert.Contains(t, codes(New().Validate(sys)), CodeCyclicContradiction)
}

func TestValidate_Overconstrained(t *testing.T) {
	sys := system(t, []string{"A", "B"},
		testkit.Threshold("e1", "A", evaluation.OpEqual, 0.5),
		testkit.Threshold("e2", "B", evaluation.OpEqual, 0.5),
	)

	report := New().Validate(sys)
	assert.True(t, report.IsOverconstrained)
	assert.Contains(t, codes(report), CodeOverconstrained)
	assert.NotContains(t, codes(report), CodeInconsistentEqualities)
}

func TestValidate_InconsistentEqualities(t *testing.T) {
	sys := system(t, []string{"A", "B", "C", "D"},
		testkit.Comparison("e1", "A", evaluation.OpEqual, "B"),
		testkit.Threshold("e2", "A", evaluation.OpEqual, 0.2),
		testkit.Threshold("e3", "B", evaluation.OpEqual, 0.4),
	)

	report := New().Validate(sys)
	require.Contains(t, codes(report), CodeInconsistentEqualities)
	assert.False(t, report.IsOverconstrained)
}

func TestValidate_BoundConflict(t *testing.T) {
	sys := system(t, []string{"A"},
		testkit.Range("e1", "A", 0.1, 0.5),
		testkit.Threshold("e2", "A", evaluation.OpGreater, 0.8),
	)

	report := New().Validate(sys)
	require.Equal(t, []string{CodeBoundConflict}, codes(report))
	assert.Equal(t, []string{"threshold_A_value", "range_max_A_value"}, report.Warnings[0].ConstraintIDs)
	assert.Contains(t, report.Warnings[0].Message, "A_value")
}

func TestValidate_Empty(t *testing.T) {
	report := New().Validate(system(t, []string{"A"}))

	assert.Equal(t, 1, report.NVariables)
	assert.Zero(t, report.Total)
	assert.NotNil(t, report.Warnings)
	assert.False(t, report.HasWarnings())
}
