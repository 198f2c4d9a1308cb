package constraint

import (
	"testing"

	"goportfolio/domain/criterion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layout2() criterion.Layout {
	return criterion.MustSpace([]string{"A", "B"}, nil).Layout()
}

func TestConstraint_Satisfied(t *testing.T) {
	c := Constraint{Coefficients: []float64{-1, 1}, Bound: -0.01}

	assert.True(t, c.Satisfied([]float64{0.5, 0.4}, 1e-9))
	assert.False(t, c.Satisfied([]float64{0.5, 0.5}, 1e-9))

	eq := Constraint{Coefficients: []float64{1, -1}, Bound: 0, IsEquality: true}
	assert.True(t, eq.Satisfied([]float64{0.3, 0.3}, 1e-9))
	assert.False(t, eq.Satisfied([]float64{0.3, 0.2}, 1e-9))
}

func TestConstraint_Format(t *testing.T) {
	names := []string{"A_value", "B_value"}

	assert.Equal(t, "-A_value + B_value <= -0.01", Constraint{Coefficients: []float64{-1, 1}, Bound: -0.01}.Format(names))
	assert.Equal(t, "A_value - B_value = 0", Constraint{Coefficients: []float64{1, -1}, IsEquality: true}.Format(names))
	assert.Equal(t, "2*A_value <= 1", Constraint{Coefficients: []float64{2, 0}, Bound: 1}.Format(names))
}

func TestNewSystem_PartitionsAndHashes(t *testing.T) {
	rows := []Constraint{
		{ID: "r1", Coefficients: []float64{1, 0}, Bound: 1},
		{ID: "e1", Coefficients: []float64{1, -1}, IsEquality: true},
		{ID: "r2", Coefficients: []float64{0, -1}, Bound: 0},
	}
	sys := NewSystem(layout2(), 0.01, rows)

	require.Len(t, sys.Inequalities, 2)
	require.Len(t, sys.Equalities, 1)
	assert.Equal(t, "r1", sys.Inequalities[0].ID)
	assert.Equal(t, "r2", sys.Inequalities[1].ID)

	same := NewSystem(layout2(), 0.01, append([]Constraint(nil), rows...))
	assert.Equal(t, sys.Hash, same.Hash)

	changed := append([]Constraint(nil), rows...)
	changed[2] = Constraint{ID: "r2", Coefficients: []float64{0, -1}, Bound: -0.1}
	assert.NotEqual(t, sys.Hash, NewSystem(layout2(), 0.01, changed).Hash)
}

func TestSystem_Matrices(t *testing.T) {
	rows := []Constraint{
		{Coefficients: []float64{1, 0}, Bound: 1},
		{Coefficients: []float64{1, -1}, IsEquality: true},
	}
	m := NewSystem(layout2(), 0.01, rows).Matrices()

	assert.Equal(t, [][]float64{{1, 0}}, m.AIneq)
	assert.Equal(t, []float64{1}, m.BIneq)
	assert.Equal(t, [][]float64{{1, -1}}, m.AEq)
	assert.Equal(t, []float64{0}, m.BEq)
	assert.Equal(t, []string{"A_value", "B_value"}, m.Variables)

	r, c := m.IneqDense().Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)

	empty := NewSystem(layout2(), 0.01, nil).Matrices()
	assert.Nil(t, empty.IneqDense())
	assert.Nil(t, empty.EqBound())
	assert.Empty(t, empty.AIneq)
}
