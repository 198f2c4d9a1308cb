package testkit

import (
	"fmt"

	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
)

// UnitBox returns a single-criterion space over n projects P1..Pn and one
// [0, 1] range record per project. Its feasible region is the unit
// hypercube.
func UnitBox(n int) (*criterion.Space, []*evaluation.Record) {
	projects := make([]string, n)
	recs := make([]*evaluation.Record, n)
	for i := range projects {
		projects[i] = fmt.Sprintf("P%d", i+1)
		recs[i] = MustRecord(evaluation.Spec{
			EvaluatorID: "fixture",
			Type:        evaluation.TypeRange,
			Projects:    []string{projects[i]},
			Values:      []float64{0, 1},
		})
	}
	return criterion.MustSpace(projects, nil), recs
}

// Comparison builds a comparison record and panics on error
func Comparison(evaluator, a string, op evaluation.Operator, b string, opts ...evaluation.Option) *evaluation.Record {
	rec, err := evaluation.Comparison(evaluator, a, op, b, opts...)
	if err != nil {
		panic(err)
	}
	return rec
}

// Range builds a range record and panics on error
func Range(evaluator, project string, min, max float64, opts ...evaluation.Option) *evaluation.Record {
	rec, err := evaluation.Range(evaluator, project, min, max, opts...)
	if err != nil {
		panic(err)
	}
	return rec
}

// Threshold builds a threshold record and panics on error
func Threshold(evaluator, project string, op evaluation.Operator, bound float64, opts ...evaluation.Option) *evaluation.Record {
	rec, err := evaluation.Threshold(evaluator, project, op, bound, opts...)
	if err != nil {
		panic(err)
	}
	return rec
}

// Ranking builds a ranking record and panics on error
func Ranking(evaluator string, projects []string, opts ...evaluation.Option) *evaluation.Record {
	rec, err := evaluation.Ranking(evaluator, projects, opts...)
	if err != nil {
		panic(err)
	}
	return rec
}
