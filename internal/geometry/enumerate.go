package geometry

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"goportfolio/domain/constraint"
	"goportfolio/internal/metrics"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

// batchSize is the number of subsets handed to a worker at once
const batchSize = 256

// Enumerate computes the vertex set of sys by solving every d-subset of
// constraints as equalities and keeping the feasible solutions.
//
// The step budget and timeout in cfg yield a partial result flagged
// Incomplete. Cancellation of ctx itself is returned as an error.
func Enumerate(ctx context.Context, sys constraint.System, cfg Config) (VertexSet, error) {
	cfg = cfg.normalized()
	start := time.Now()
	d := sys.Dimensions()
	k := sys.Len()

	vs := VertexSet{
		Dimensions: d,
		Variables:  append([]string(nil), sys.Layout.Variables...),
		Vertices:   [][]float64{},
		SystemHash: sys.Hash.String(),
	}

	observe := func() {
		metrics.ObserveEnumeration(d, vs.SubsetsEvaluated, len(vs.Vertices), vs.Incomplete, string(vs.Reason), time.Since(start))
	}

	switch {
	case k == 0 || d == 0:
		vs.Reason = ReasonNoConstraints
		vs.PossiblyUnbounded = d > 0
		observe()
		return vs, nil
	case d > cfg.MaxDimensions:
		vs.Reason = ReasonDimensionLimit
		observe()
		return vs, nil
	}

	a := mat.NewDense(k, d, nil)
	for i, c := range sys.Constraints {
		a.SetRow(i, c.Coefficients)
	}

	// A region whose constraint normals do not span R^d contains a line
	// and has no vertices.
	if matrixRank(a, cfg.SingularTolerance) < d {
		vs.Reason = ReasonUnbounded
		vs.PossiblyUnbounded = true
		observe()
		return vs, nil
	}

	vs.SubsetsTotal = math.Round(combin.GeneralizedBinomial(float64(k), float64(d)))

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	candidates, evaluated, complete, err := solveSubsets(runCtx, sys.Constraints, k, d, cfg)
	if err != nil {
		return vs, err
	}
	if ctx.Err() != nil {
		return vs, ctx.Err()
	}

	vs.SubsetsEvaluated = evaluated
	vs.Candidates = len(candidates)
	vs.Incomplete = !complete
	vs.Vertices = dedupe(candidates, cfg.Tolerance)

	switch {
	case !vs.Empty():
		vs.PossiblyUnbounded = unboundedRegion(sys.Constraints, d)
	case vs.Incomplete:
		vs.Reason = ReasonIncomplete
	default:
		vs.Reason = ReasonInfeasible
	}

	observe()
	return vs, nil
}

// solveSubsets fans the C(k, d) subsets out to cfg.Workers goroutines.
// Each worker collects its own candidates; the merge happens after Wait.
// complete is false when the step budget or ctx stopped the run early.
func solveSubsets(ctx context.Context, rows []constraint.Constraint, k, d int, cfg Config) (candidates [][]float64, evaluated int64, complete bool, err error) {
	jobs := make(chan []int, cfg.Workers)
	results := make([][][]float64, cfg.Workers)
	var dispatched int64
	exhausted := false

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		gen := combin.NewCombinationGenerator(k, d)
		comb := make([]int, d)
		for {
			batch := make([]int, 0, batchSize*d)
			done := false
			for len(batch) < batchSize*d {
				if !gen.Next() {
					exhausted = true
					done = true
					break
				}
				if cfg.MaxSubsets > 0 && dispatched >= cfg.MaxSubsets {
					done = true
					break
				}
				batch = append(batch, gen.Combination(comb)...)
				dispatched++
			}
			if len(batch) > 0 {
				select {
				case jobs <- batch:
				case <-gctx.Done():
					return nil
				}
			}
			if done {
				return nil
			}
		}
	})

	for w := 0; w < cfg.Workers; w++ {
		w := w
		g.Go(func() error {
			s := newSolver(rows, d, cfg)
			for batch := range jobs {
				for off := 0; off+d <= len(batch); off += d {
					if gctx.Err() != nil {
						return nil
					}
					if x, ok := s.solve(batch[off : off+d]); ok {
						results[w] = append(results[w], x)
					}
					atomic.AddInt64(&evaluated, 1)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, false, err
	}

	for _, r := range results {
		candidates = append(candidates, r...)
	}
	evaluated = atomic.LoadInt64(&evaluated)
	return candidates, evaluated, exhausted && evaluated == dispatched, nil
}

// solver holds per-worker scratch space for the square solves
type solver struct {
	rows    []constraint.Constraint
	d       int
	tol     float64
	singTol float64
	a       *mat.Dense
	b       *mat.VecDense
	x       *mat.VecDense
	lu      mat.LU
}

func newSolver(rows []constraint.Constraint, d int, cfg Config) *solver {
	return &solver{
		rows:    rows,
		d:       d,
		tol:     cfg.Tolerance,
		singTol: cfg.SingularTolerance,
		a:       mat.NewDense(d, d, nil),
		b:       mat.NewVecDense(d, nil),
		x:       mat.NewVecDense(d, nil),
	}
}

// solve treats the subset's rows as equalities. Singular subsets and
// solutions violating any other row are discarded.
func (s *solver) solve(subset []int) ([]float64, bool) {
	for i, r := range subset {
		s.a.SetRow(i, s.rows[r].Coefficients)
		s.b.SetVec(i, s.rows[r].Bound)
	}
	s.lu.Factorize(s.a)
	if math.Abs(s.lu.Det()) < s.singTol {
		return nil, false
	}
	if err := s.lu.SolveVecTo(s.x, false, s.b); err != nil {
		return nil, false
	}

	x := make([]float64, s.d)
	for i := range x {
		v := s.x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		x[i] = v
	}
	for _, c := range s.rows {
		if !c.Satisfied(x, s.tol) {
			return nil, false
		}
	}
	return x, true
}

// dedupe sorts candidates lexicographically and keeps one representative
// per tolerance cluster. The output does not depend on worker scheduling.
func dedupe(candidates [][]float64, tol float64) [][]float64 {
	for _, c := range candidates {
		clean(c, tol)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return lexLess(candidates[i], candidates[j])
	})

	out := [][]float64{}
	for _, c := range candidates {
		dup := false
		for _, kept := range out {
			if near(c, kept, tol) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// clean snaps values to a 1e-12 grid and removes negative zero
func clean(x []float64, tol float64) {
	for i, v := range x {
		if math.Abs(v) < tol {
			x[i] = 0
			continue
		}
		x[i] = math.Round(v*1e12) / 1e12
		if x[i] == 0 {
			x[i] = 0
		}
	}
}

func lexLess(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func near(a, b []float64, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func matrixRank(a mat.Matrix, tol float64) int {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0
	}
	return svd.Rank(tol)
}

// unblockedDirection reports whether some coordinate direction +e_i or
// -e_i is a recession direction: no inequality opposes it and no equality
// involves the coordinate. It is the cheap first check of unboundedRegion.
func unblockedDirection(rows []constraint.Constraint, d int) bool {
	for i := 0; i < d; i++ {
		up, down := true, true
		for _, c := range rows {
			a := c.Coefficients[i]
			if c.IsEquality {
				if a != 0 {
					up, down = false, false
				}
				continue
			}
			if a > 0 {
				up = false
			}
			if a < 0 {
				down = false
			}
		}
		if up || down {
			return true
		}
	}
	return false
}
