package geometry

import (
	"fmt"
	"strings"

	"goportfolio/domain/constraint"
	"goportfolio/domain/core"
)

// Project restricts the vertex set to two or three coordinates. The
// boundary overlay holds only the rows whose non-zero coefficients all lie
// in the selected dimensions; other rows are left out, not approximated.
func Project(vs VertexSet, sys constraint.System, dims []int, tol float64) (Projection, error) {
	if err := checkDims(dims, vs.Dimensions); err != nil {
		return Projection{}, err
	}
	if tol <= 0 {
		tol = DefaultConfig().Tolerance
	}

	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = variableName(vs.Variables, d)
	}
	p := Projection{
		Name:      strings.Join(names, " / "),
		Dims:      append([]int(nil), dims...),
		Variables: names,
		Points:    [][]float64{},
		Boundary:  []BoundaryConstraint{},
	}

	restricted := make([][]float64, 0, vs.Len())
	for _, v := range vs.Vertices {
		pt := make([]float64, len(dims))
		for i, d := range dims {
			pt[i] = v[d]
		}
		restricted = append(restricted, pt)
	}
	p.Points = dedupe(restricted, tol)

	if len(dims) == 2 && len(p.Points) > 0 {
		for _, h := range convexHull2(toPoints2(p.Points)) {
			p.Hull = append(p.Hull, []float64{h.x, h.y})
		}
	}

	in := make(map[int]int, len(dims))
	for i, d := range dims {
		in[d] = i
	}
	for _, c := range sys.Constraints {
		support := c.Support()
		if len(support) == 0 || !within(support, in) {
			continue
		}
		coeffs := make([]float64, len(dims))
		for _, s := range support {
			coeffs[in[s]] = c.Coefficients[s]
		}
		p.Boundary = append(p.Boundary, BoundaryConstraint{
			ID:           c.ID,
			Coefficients: coeffs,
			Bound:        c.Bound,
			IsEquality:   c.IsEquality,
			Expression:   constraint.Constraint{Coefficients: coeffs, Bound: c.Bound, IsEquality: c.IsEquality}.Format(names),
		})
	}
	return p, nil
}

// DefaultProjectionDims lists the named views produced for a d-dimensional
// polytope: neighbouring coordinate pairs over the leading dimensions, plus
// the first three coordinates when d >= 3.
func DefaultProjectionDims(d int) [][]int {
	var out [][]int
	for i := 0; i < min(3, d-1); i++ {
		for j := i + 1; j < min(i+3, d); j++ {
			out = append(out, []int{i, j})
		}
	}
	if d >= 3 {
		out = append(out, []int{0, 1, 2})
	}
	return out
}

func checkDims(dims []int, d int) error {
	if len(dims) != 2 && len(dims) != 3 {
		return core.NewProjectionError(fmt.Sprintf("need 2 or 3 dimensions, got %d", len(dims)))
	}
	seen := make(map[int]bool, len(dims))
	for _, x := range dims {
		if x < 0 || x >= d {
			return core.NewProjectionError(fmt.Sprintf("dimension %d out of range [0, %d)", x, d))
		}
		if seen[x] {
			return core.NewProjectionError(fmt.Sprintf("dimension %d repeated", x))
		}
		seen[x] = true
	}
	return nil
}

func within(support []int, in map[int]int) bool {
	for _, s := range support {
		if _, ok := in[s]; !ok {
			return false
		}
	}
	return true
}

func variableName(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("x%d", i)
}
