package geometry

import (
	"goportfolio/domain/constraint"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	// recessionTol is the smallest box-normalized component of a recession
	// direction that counts as an escape
	recessionTol = 1e-6
	simplexTol   = 1e-10
)

// unboundedRegion reports whether the region has a nonzero recession
// direction r with A_ineq r <= 0 and A_eq r = 0. Each coordinate of r is
// maximized and minimized over that cone cut by the box [-1, 1]^d; the
// region is bounded exactly when every optimum is zero.
func unboundedRegion(rows []constraint.Constraint, d int) bool {
	if unblockedDirection(rows, d) {
		return true
	}

	g, h := recessionSystem(rows, d)
	c := make([]float64, d)
	for i := 0; i < d; i++ {
		for _, sign := range []float64{1, -1} {
			for j := range c {
				c[j] = 0
			}
			c[i] = -sign

			cStd, aStd, bStd := lp.Convert(c, g, h, nil, nil)
			opt, _, err := lp.Simplex(cStd, aStd, bStd, simplexTol, slackBasis(d, len(h)))
			if err != nil {
				// the coordinate test already ran; a failed solve adds nothing
				return false
			}
			if -opt > recessionTol {
				return true
			}
		}
	}
	return false
}

// recessionSystem builds G r <= h for the recession cone intersected with
// the unit box. Equalities become two opposing rows so the standard form
// keeps full row rank.
func recessionSystem(rows []constraint.Constraint, d int) (*mat.Dense, []float64) {
	var data []float64
	var h []float64
	add := func(coef []float64, scale, bound float64) {
		for _, v := range coef {
			data = append(data, scale*v)
		}
		h = append(h, bound)
	}

	for _, c := range rows {
		add(c.Coefficients, 1, 0)
		if c.IsEquality {
			add(c.Coefficients, -1, 0)
		}
	}
	unit := make([]float64, d)
	for i := 0; i < d; i++ {
		unit[i] = 1
		add(unit, 1, 1)
		add(unit, -1, 1)
		unit[i] = 0
	}
	return mat.NewDense(len(h), d, data), h
}

// slackBasis selects the slack columns of the converted problem. With
// r = 0 every slack equals its bound, which is non-negative, so the basis
// is feasible.
func slackBasis(d, rows int) []int {
	basis := make([]int, rows)
	for i := range basis {
		basis[i] = 2*d + i
	}
	return basis
}
