package constraint

import (
	"gonum.org/v1/gonum/mat"
)

// Matrices is the (A_ineq, b_ineq, A_eq, b_eq) handoff to an external
// solver, in the variable order of the criterion space.
type Matrices struct {
	Variables []string    `json:"variables"`
	NVars     int         `json:"n_variables"`
	AIneq     [][]float64 `json:"A_ineq"`
	BIneq     []float64   `json:"b_ineq"`
	AEq       [][]float64 `json:"A_eq"`
	BEq       []float64   `json:"b_eq"`
}

// IneqDense returns A_ineq as a gonum matrix, or nil when there are no rows
func (m Matrices) IneqDense() *mat.Dense {
	return dense(m.AIneq, m.NVars)
}

// EqDense returns A_eq as a gonum matrix, or nil when there are no rows
func (m Matrices) EqDense() *mat.Dense {
	return dense(m.AEq, m.NVars)
}

// IneqBound returns b_ineq as a gonum vector, or nil when empty
func (m Matrices) IneqBound() *mat.VecDense {
	if len(m.BIneq) == 0 {
		return nil
	}
	return mat.NewVecDense(len(m.BIneq), append([]float64(nil), m.BIneq...))
}

// EqBound returns b_eq as a gonum vector, or nil when empty
func (m Matrices) EqBound() *mat.VecDense {
	if len(m.BEq) == 0 {
		return nil
	}
	return mat.NewVecDense(len(m.BEq), append([]float64(nil), m.BEq...))
}

// gonum rejects zero-sized matrices, so empty blocks are reported as nil
func dense(rows [][]float64, cols int) *mat.Dense {
	if len(rows) == 0 || cols == 0 {
		return nil
	}
	data := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data)
}

// OptimizationDocument is the solver-ready export: matrices, variable names
// and default [0, 1] bounds per variable.
type OptimizationDocument struct {
	Projects  []string  `json:"projects"`
	Criteria  []string  `json:"criteria"`
	Matrices  Matrices  `json:"constraints"`
	Lower     []float64 `json:"lower_bounds"`
	Upper     []float64 `json:"upper_bounds"`
	Generated string    `json:"generated_at"`
	Hash      string    `json:"system_hash"`
}

// OptimizationExport builds the solver handoff document for s
func (s System) OptimizationExport(generatedAt string) OptimizationDocument {
	d := s.Dimensions()
	lower := make([]float64, d)
	upper := make([]float64, d)
	for i := range upper {
		upper[i] = 1
	}
	return OptimizationDocument{
		Projects:  append([]string(nil), s.Layout.Projects...),
		Criteria:  append([]string(nil), s.Layout.Criteria...),
		Matrices:  s.Matrices(),
		Lower:     lower,
		Upper:     upper,
		Generated: generatedAt,
		Hash:      s.Hash.String(),
	}
}
