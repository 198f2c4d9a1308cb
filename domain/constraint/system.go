package constraint

import (
	"goportfolio/domain/core"
	"goportfolio/domain/criterion"
)

// System is an immutable snapshot of the translated constraints together
// with the variable layout they index. Geometry computations borrow a System
// for their whole duration.
type System struct {
	Layout       criterion.Layout `json:"layout"`
	Epsilon      float64          `json:"epsilon"`
	Constraints  []Constraint     `json:"constraints"`
	Inequalities []Constraint     `json:"-"`
	Equalities   []Constraint     `json:"-"`
	Hash         core.Hash        `json:"hash"`
}

// NewSystem partitions constraints and computes the content hash. The
// caller hands over ownership of the slice.
func NewSystem(layout criterion.Layout, epsilon float64, constraints []Constraint) System {
	sys := System{
		Layout:      layout,
		Epsilon:     epsilon,
		Constraints: constraints,
	}
	for _, c := range constraints {
		if c.IsEquality {
			sys.Equalities = append(sys.Equalities, c)
		} else {
			sys.Inequalities = append(sys.Inequalities, c)
		}
	}
	sys.Hash = ContentHash(layout, constraints)
	return sys
}

// ContentHash hashes the layout and every row's coefficients, bound and
// equality flag in order. Two systems with equal hashes describe the same
// polytope in the same variable order.
func ContentHash(layout criterion.Layout, constraints []Constraint) core.Hash {
	b := core.NewHashBuilder()
	for _, v := range layout.Variables {
		b.String(v)
	}
	for _, c := range constraints {
		b.Floats(c.Coefficients).Float(c.Bound).Bool(c.IsEquality)
	}
	return b.Sum()
}

// Dimensions returns the number of variables d = n*m
func (s System) Dimensions() int {
	return s.Layout.Dimensions()
}

// Len returns the total number of constraints
func (s System) Len() int {
	return len(s.Constraints)
}

// Empty reports whether there are no constraints
func (s System) Empty() bool {
	return len(s.Constraints) == 0
}

// Matrices returns the solver handoff form of the system
func (s System) Matrices() Matrices {
	d := s.Dimensions()
	m := Matrices{
		Variables: append([]string(nil), s.Layout.Variables...),
		AIneq:     make([][]float64, 0, len(s.Inequalities)),
		BIneq:     make([]float64, 0, len(s.Inequalities)),
		AEq:       make([][]float64, 0, len(s.Equalities)),
		BEq:       make([]float64, 0, len(s.Equalities)),
		NVars:     d,
	}
	for _, c := range s.Inequalities {
		m.AIneq = append(m.AIneq, append([]float64(nil), c.Coefficients...))
		m.BIneq = append(m.BIneq, c.Bound)
	}
	for _, c := range s.Equalities {
		m.AEq = append(m.AEq, append([]float64(nil), c.Coefficients...))
		m.BEq = append(m.BEq, c.Bound)
	}
	return m
}
