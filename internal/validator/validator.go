// Package validator reports structural risk in a constraint system without
// solving it. All checks are advisory.
package validator

import (
	"fmt"
	"sort"

	"goportfolio/domain/constraint"
	"goportfolio/domain/core"
	"goportfolio/internal"

	"gonum.org/v1/gonum/mat"
)

// Warning codes
const (
	CodeOverconstrained        = "OVERCONSTRAINED"
	CodePairwiseContradiction  = "PAIRWISE_CONTRADICTION"
	CodeCyclicContradiction    = "CYCLIC_CONTRADICTION"
	CodeInconsistentEqualities = "INCONSISTENT_EQUALITIES"
	CodeBoundConflict          = "BOUND_CONFLICT"
)

// Warning is one advisory finding
type Warning struct {
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	Criterion     string    `json:"criterion,omitempty"`
	ConstraintIDs []string  `json:"constraint_ids,omitempty"`
	RecordIDs     []core.ID `json:"record_ids,omitempty"`
}

// Report summarizes a validation pass
type Report struct {
	NInequality       int       `json:"n_inequality"`
	NEquality         int       `json:"n_equality"`
	NVariables        int       `json:"n_variables"`
	Total             int       `json:"total_constraints"`
	IsOverconstrained bool      `json:"is_overconstrained"`
	Warnings          []Warning `json:"warnings"`
	Hash              string    `json:"system_hash"`
}

// HasWarnings reports whether any check fired
func (r Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Option configures a Validator
type Option func(*Validator)

// WithCycleDetection toggles the per-criterion cycle pass
func WithCycleDetection(enabled bool) Option {
	return func(v *Validator) {
		v.detectCycles = enabled
	}
}

// WithRankTolerance sets the singular-value cutoff of the equality rank check
func WithRankTolerance(tol float64) Option {
	return func(v *Validator) {
		if tol > 0 {
			v.rankTol = tol
		}
	}
}

// WithLogger sets the validator logger
func WithLogger(logger *internal.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger.WithPrefix("validator")
		}
	}
}

// Validator runs the structural checks. It holds no state between calls.
type Validator struct {
	detectCycles bool
	rankTol      float64
	logger       *internal.Logger
}

// New creates a validator with cycle detection enabled
func New(opts ...Option) *Validator {
	v := &Validator{
		detectCycles: true,
		rankTol:      1e-10,
		logger:       internal.NewDefaultLogger().WithPrefix("validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate inspects sys and returns the report
func (v *Validator) Validate(sys constraint.System) Report {
	report := Report{
		NInequality: len(sys.Inequalities),
		NEquality:   len(sys.Equalities),
		NVariables:  sys.Dimensions(),
		Total:       sys.Len(),
		Warnings:    []Warning{},
		Hash:        sys.Hash.String(),
	}

	// heuristic: necessary, not sufficient, for infeasibility
	report.IsOverconstrained = report.NVariables > 0 && report.NEquality >= report.NVariables
	if report.IsOverconstrained {
		report.Warnings = append(report.Warnings, Warning{
			Code:    CodeOverconstrained,
			Message: fmt.Sprintf("%d equality constraints for %d variables", report.NEquality, report.NVariables),
		})
	}

	report.Warnings = append(report.Warnings, pairwiseContradictions(sys.Constraints)...)
	if v.detectCycles {
		report.Warnings = append(report.Warnings, cyclicContradictions(sys.Constraints)...)
	}
	if w, ok := v.equalityConsistency(sys); ok {
		report.Warnings = append(report.Warnings, w)
	}
	report.Warnings = append(report.Warnings, boundConflicts(sys)...)

	if len(report.Warnings) > 0 {
		v.logger.Warn("%d warnings over %d constraints", len(report.Warnings), report.Total)
	} else {
		v.logger.Debug("no warnings over %d constraints", report.Total)
	}
	return report
}

// pairwiseContradictions compares every pair of ordering rows on the same
// criterion and project pair. Opposite directions conflict when at least
// one side is strict; an equality conflicts with any strict ordering.
func pairwiseContradictions(rows []constraint.Constraint) []Warning {
	var ordered []constraint.Constraint
	for _, c := range rows {
		if c.Ordering != nil {
			ordered = append(ordered, c)
		}
	}

	var out []Warning
	for i := 0; i < len(ordered); i++ {
		a := ordered[i]
		for j := i + 1; j < len(ordered); j++ {
			b := ordered[j]
			if a.Criterion != b.Criterion || !samePair(a.Ordering, b.Ordering) {
				continue
			}
			if reason, bad := conflict(a.Ordering, b.Ordering); bad {
				out = append(out, Warning{
					Code:          CodePairwiseContradiction,
					Message:       fmt.Sprintf("%s and %s on %s: %s", a.ID, b.ID, a.Criterion, reason),
					Criterion:     a.Criterion,
					ConstraintIDs: []string{a.ID, b.ID},
					RecordIDs:     recordIDs(a, b),
				})
			}
		}
	}
	return out
}

func samePair(a, b *constraint.Ordering) bool {
	return (a.Higher == b.Higher && a.Lower == b.Lower) || (a.Higher == b.Lower && a.Lower == b.Higher)
}

func conflict(a, b *constraint.Ordering) (string, bool) {
	switch {
	case a.Equal && b.Equal:
		return "", false
	case a.Equal && b.Strict, b.Equal && a.Strict:
		return "equality contradicts a strict ordering", true
	case a.Equal || b.Equal:
		return "", false
	}
	opposite := a.Higher == b.Lower && a.Lower == b.Higher
	if opposite && (a.Strict || b.Strict) {
		return fmt.Sprintf("%s above %s contradicts %s above %s", a.Higher, a.Lower, b.Higher, b.Lower), true
	}
	return "", false
}

// equalityConsistency warns when rank(A_eq) < rank([A_eq | b_eq])
func (v *Validator) equalityConsistency(sys constraint.System) (Warning, bool) {
	if len(sys.Equalities) == 0 || sys.Dimensions() == 0 {
		return Warning{}, false
	}
	m := sys.Matrices()
	a := m.EqDense()
	r, c := a.Dims()

	aug := mat.NewDense(r, c+1, nil)
	aug.Slice(0, r, 0, c).(*mat.Dense).Copy(a)
	aug.SetCol(c, m.BEq)

	rankA := rank(a, v.rankTol)
	rankAug := rank(aug, v.rankTol)
	if rankA == rankAug {
		return Warning{}, false
	}

	ids := make([]string, 0, len(sys.Equalities))
	for _, e := range sys.Equalities {
		ids = append(ids, e.ID)
	}
	return Warning{
		Code:          CodeInconsistentEqualities,
		Message:       fmt.Sprintf("equality system is inconsistent: rank(A_eq)=%d, rank([A_eq|b_eq])=%d", rankA, rankAug),
		ConstraintIDs: ids,
		RecordIDs:     recordIDs(sys.Equalities...),
	}, true
}

// rank computes the numerical rank of a via SVD
func rank(a mat.Matrix, tol float64) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	return svd.Rank(tol)
}

// boundConflicts finds variables whose single-variable lower bounds exceed
// their upper bounds, e.g. a threshold above a range maximum.
func boundConflicts(sys constraint.System) []Warning {
	type bound struct {
		value float64
		id    string
		rec   constraint.Constraint
	}
	lower := make(map[int]bound)
	upper := make(map[int]bound)

	for _, c := range sys.Constraints {
		support := c.Support()
		if len(support) != 1 {
			continue
		}
		i := support[0]
		a := c.Coefficients[i]
		v := c.Bound / a
		switch {
		case c.IsEquality:
			if b, ok := lower[i]; !ok || v > b.value {
				lower[i] = bound{v, c.ID, c}
			}
			if b, ok := upper[i]; !ok || v < b.value {
				upper[i] = bound{v, c.ID, c}
			}
		case a > 0:
			if b, ok := upper[i]; !ok || v < b.value {
				upper[i] = bound{v, c.ID, c}
			}
		default:
			if b, ok := lower[i]; !ok || v > b.value {
				lower[i] = bound{v, c.ID, c}
			}
		}
	}

	vars := make([]int, 0, len(lower))
	for i := range lower {
		vars = append(vars, i)
	}
	sort.Ints(vars)

	var out []Warning
	for _, i := range vars {
		lo := lower[i]
		hi, ok := upper[i]
		if !ok || lo.value <= hi.value {
			continue
		}
		name := fmt.Sprintf("x%d", i)
		if i < len(sys.Layout.Variables) {
			name = sys.Layout.Variables[i]
		}
		out = append(out, Warning{
			Code:          CodeBoundConflict,
			Message:       fmt.Sprintf("%s has lower bound %g above upper bound %g", name, lo.value, hi.value),
			Criterion:     lo.rec.Criterion,
			ConstraintIDs: []string{lo.id, hi.id},
			RecordIDs:     recordIDs(lo.rec, hi.rec),
		})
	}
	return out
}

func recordIDs(rows ...constraint.Constraint) []core.ID {
	seen := make(map[core.ID]struct{}, len(rows))
	var ids []core.ID
	for _, c := range rows {
		id := c.SourceID()
		if id.IsEmpty() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
