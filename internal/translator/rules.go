package translator

import (
	"fmt"

	"goportfolio/domain/constraint"
	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
)

// rules maps records to rows for one fixed layout and separation constant.
// It is a pure function of its inputs and holds no reference to the live
// criterion space.
type rules struct {
	layout    criterion.Layout
	epsilon   float64
	m         int
	d         int
	projectIx map[string]int
	critIx    map[string]int
}

func newRules(layout criterion.Layout, epsilon float64) *rules {
	r := &rules{
		layout:    layout,
		epsilon:   epsilon,
		m:         len(layout.Criteria),
		d:         layout.Dimensions(),
		projectIx: make(map[string]int, len(layout.Projects)),
		critIx:    make(map[string]int, len(layout.Criteria)),
	}
	for i, p := range layout.Projects {
		r.projectIx[p] = i
	}
	for j, c := range layout.Criteria {
		r.critIx[c] = j
	}
	return r
}

func (r *rules) index(project, crit string) int {
	return r.projectIx[project]*r.m + r.critIx[crit]
}

// criteriaFor returns the record's criterion, or every criterion in space
// order when the record does not name one.
func (r *rules) criteriaFor(rec *evaluation.Record) []string {
	if c := rec.Criterion(); c != "" {
		return []string{c}
	}
	return r.layout.Criteria
}

// translate expands one record, criterion outer and sub-constraint inner
func (r *rules) translate(rec *evaluation.Record) []constraint.Constraint {
	var out []constraint.Constraint
	for _, crit := range r.criteriaFor(rec) {
		switch rec.Type() {
		case evaluation.TypeComparison:
			out = append(out, r.comparison(rec, crit))
		case evaluation.TypeRange:
			out = append(out, r.rangeRows(rec, crit)...)
		case evaluation.TypeRanking:
			out = append(out, r.ranking(rec, crit)...)
		case evaluation.TypeThreshold:
			out = append(out, r.threshold(rec, crit))
		}
	}
	return out
}

// comparison: A > B becomes v(B) - v(A) <= -ε; >= uses bound 0; < and <=
// mirror with A and B swapped; = is the equality v(A) - v(B) = 0.
func (r *rules) comparison(rec *evaluation.Record, crit string) constraint.Constraint {
	ps := rec.Projects()
	a, b := ps[0], ps[1]
	id := fmt.Sprintf("comp_%s_%s_%s", a, b, crit)

	switch op := rec.Operator(); op {
	case evaluation.OpEqual:
		coeffs := make([]float64, r.d)
		coeffs[r.index(a, crit)] = 1
		coeffs[r.index(b, crit)] = -1
		return constraint.Constraint{
			ID:           id,
			Coefficients: coeffs,
			Bound:        0,
			IsEquality:   true,
			Kind:         constraint.KindComparison,
			Criterion:    crit,
			Ordering:     &constraint.Ordering{Higher: a, Lower: b, Equal: true},
			Source:       rec,
		}
	case evaluation.OpGreater, evaluation.OpGreaterEqual:
		return r.order(rec, id, constraint.KindComparison, crit, a, b, op.Strict())
	default:
		return r.order(rec, id, constraint.KindComparison, crit, b, a, op.Strict())
	}
}

// order builds v(lower) - v(higher) <= -ε (strict) or <= 0
func (r *rules) order(rec *evaluation.Record, id string, kind constraint.Kind, crit, higher, lower string, strict bool) constraint.Constraint {
	coeffs := make([]float64, r.d)
	coeffs[r.index(lower, crit)] = 1
	coeffs[r.index(higher, crit)] = -1
	bound := 0.0
	if strict {
		bound = neg(r.epsilon)
	}
	return constraint.Constraint{
		ID:           id,
		Coefficients: coeffs,
		Bound:        bound,
		Kind:         kind,
		Criterion:    crit,
		Ordering:     &constraint.Ordering{Higher: higher, Lower: lower, Strict: strict},
		Source:       rec,
	}
}

// rangeRows emits -v <= -min then v <= max
func (r *rules) rangeRows(rec *evaluation.Record, crit string) []constraint.Constraint {
	p := rec.Projects()[0]
	vals := rec.Values()
	ix := r.index(p, crit)

	lower := make([]float64, r.d)
	lower[ix] = -1
	upper := make([]float64, r.d)
	upper[ix] = 1

	return []constraint.Constraint{
		{
			ID:           fmt.Sprintf("range_min_%s_%s", p, crit),
			Coefficients: lower,
			Bound:        neg(vals[0]),
			Kind:         constraint.KindRangeMin,
			Criterion:    crit,
			Source:       rec,
		},
		{
			ID:           fmt.Sprintf("range_max_%s_%s", p, crit),
			Coefficients: upper,
			Bound:        vals[1],
			Kind:         constraint.KindRangeMax,
			Criterion:    crit,
			Source:       rec,
		},
	}
}

// ranking emits k-1 strict adjacent-pair rows; transitivity follows from
// the linear system and is not materialized.
func (r *rules) ranking(rec *evaluation.Record, crit string) []constraint.Constraint {
	ps := rec.Projects()
	out := make([]constraint.Constraint, 0, len(ps)-1)
	for i := 0; i+1 < len(ps); i++ {
		id := fmt.Sprintf("rank_%s_%s_%s", ps[i], ps[i+1], crit)
		out = append(out, r.order(rec, id, constraint.KindRanking, crit, ps[i], ps[i+1], true))
	}
	return out
}

// threshold follows the comparison convention against a constant:
// v > t is -v <= -t-ε, v >= t is -v <= -t, v < t is v <= t-ε, v <= t is
// v <= t, and v = t is an equality.
func (r *rules) threshold(rec *evaluation.Record, crit string) constraint.Constraint {
	p := rec.Projects()[0]
	t := rec.Values()[0]
	coeffs := make([]float64, r.d)
	ix := r.index(p, crit)

	c := constraint.Constraint{
		ID:        fmt.Sprintf("threshold_%s_%s", p, crit),
		Kind:      constraint.KindThreshold,
		Criterion: crit,
		Source:    rec,
	}

	switch rec.Operator() {
	case evaluation.OpGreater:
		coeffs[ix] = -1
		c.Bound = neg(t) - r.epsilon
	case evaluation.OpGreaterEqual:
		coeffs[ix] = -1
		c.Bound = neg(t)
	case evaluation.OpLess:
		coeffs[ix] = 1
		c.Bound = t - r.epsilon
	case evaluation.OpLessEqual:
		coeffs[ix] = 1
		c.Bound = t
	case evaluation.OpEqual:
		coeffs[ix] = 1
		c.Bound = t
		c.IsEquality = true
	}
	c.Coefficients = coeffs
	return c
}

// neg negates without producing -0, so bounds hash and serialize canonically
func neg(v float64) float64 {
	return 0 - v
}
