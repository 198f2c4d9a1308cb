// Package constraint holds the linear constraint system produced by the
// translator: rows of the form a·x <= b or a·x = b over the flattened
// project x criterion variable vector.
package constraint

import (
	"fmt"
	"math"
	"strings"

	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
)

// Kind names the rule that produced a constraint row
type Kind string

const (
	KindComparison Kind = "comparison"
	KindRangeMin   Kind = "range_min"
	KindRangeMax   Kind = "range_max"
	KindRanking    Kind = "ranking"
	KindThreshold  Kind = "threshold"
)

// Ordering describes a pairwise relation between two projects on one
// criterion. Higher ≥ Lower (strict when Strict); Equal marks A = B.
type Ordering struct {
	Higher string `json:"higher"`
	Lower  string `json:"lower"`
	Strict bool   `json:"strict"`
	Equal  bool   `json:"equal"`
}

// Constraint is one row of the translated system. Source is borrowed, not
// owned: records are immutable so sharing the pointer is safe.
type Constraint struct {
	ID           string             `json:"id"`
	Coefficients []float64          `json:"coefficients"`
	Bound        float64            `json:"bound"`
	IsEquality   bool               `json:"is_equality"`
	Kind         Kind               `json:"kind"`
	Criterion    string             `json:"criterion"`
	Ordering     *Ordering          `json:"ordering,omitempty"`
	Source       *evaluation.Record `json:"-"`
}

// SourceID returns the id of the originating record
func (c Constraint) SourceID() core.ID {
	if c.Source == nil {
		return ""
	}
	return c.Source.ID()
}

// Evaluator returns the evaluator of the originating record
func (c Constraint) Evaluator() string {
	if c.Source == nil {
		return ""
	}
	return c.Source.EvaluatorID()
}

// Confidence returns the originating record's confidence. It is carried as
// metadata only and never changes coefficients or bounds.
func (c Constraint) Confidence() float64 {
	if c.Source == nil {
		return 1
	}
	return c.Source.Confidence()
}

// Dot returns a·x
func (c Constraint) Dot(x []float64) float64 {
	sum := 0.0
	for i, a := range c.Coefficients {
		if a != 0 {
			sum += a * x[i]
		}
	}
	return sum
}

// Residual returns a·x - b; non-positive means satisfied for inequalities
func (c Constraint) Residual(x []float64) float64 {
	return c.Dot(x) - c.Bound
}

// Satisfied checks the row at x within tol
func (c Constraint) Satisfied(x []float64, tol float64) bool {
	r := c.Residual(x)
	if c.IsEquality {
		return math.Abs(r) <= tol
	}
	return r <= tol
}

// Support returns the indices of non-zero coefficients
func (c Constraint) Support() []int {
	var idx []int
	for i, a := range c.Coefficients {
		if a != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Format renders the row with variable names, e.g. "B_value - A_value <= -0.01"
func (c Constraint) Format(names []string) string {
	var b strings.Builder
	first := true
	for i, a := range c.Coefficients {
		if a == 0 {
			continue
		}
		name := fmt.Sprintf("x%d", i)
		if i < len(names) {
			name = names[i]
		}
		switch {
		case first && a == 1:
			b.WriteString(name)
		case first && a == -1:
			b.WriteString("-" + name)
		case first:
			fmt.Fprintf(&b, "%g*%s", a, name)
		case a == 1:
			b.WriteString(" + " + name)
		case a == -1:
			b.WriteString(" - " + name)
		case a < 0:
			fmt.Fprintf(&b, " - %g*%s", -a, name)
		default:
			fmt.Fprintf(&b, " + %g*%s", a, name)
		}
		first = false
	}
	op := "<="
	if c.IsEquality {
		op = "="
	}
	fmt.Fprintf(&b, " %s %g", op, c.Bound)
	return b.String()
}

// Equal compares coefficients, bound and equality flag bit for bit
func (c Constraint) Equal(other Constraint) bool {
	if c.IsEquality != other.IsEquality || c.Bound != other.Bound || len(c.Coefficients) != len(other.Coefficients) {
		return false
	}
	for i := range c.Coefficients {
		if c.Coefficients[i] != other.Coefficients[i] {
			return false
		}
	}
	return true
}
