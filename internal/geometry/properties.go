package geometry

import (
	"math"

	"goportfolio/domain/constraint"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// ComputeProperties derives centroid, bounding box, spread and, for up to
// three dimensions, volume and surface area from a vertex set.
func ComputeProperties(vs VertexSet, sys constraint.System, cfg Config) Properties {
	cfg = cfg.normalized()
	props := Properties{
		NumVertices:       vs.Len(),
		Dimensions:        vs.Dimensions,
		Volume:            NotComputed,
		SurfaceArea:       NotComputed,
		PossiblyUnbounded: vs.PossiblyUnbounded,
		Incomplete:        vs.Incomplete,
		Reason:            vs.Reason,
	}
	if vs.Empty() {
		return props
	}

	d := vs.Dimensions
	props.Centroid = make([]float64, d)
	props.BoundingBox = make([][2]float64, d)
	props.Spread = make([]float64, d)
	column := make([]float64, vs.Len())
	for j := 0; j < d; j++ {
		for i, v := range vs.Vertices {
			column[i] = v[j]
		}
		// column is never empty here, so stats cannot fail
		mean, _ := stats.Mean(column)
		lo, _ := stats.Min(column)
		hi, _ := stats.Max(column)
		sd, _ := stats.StandardDeviation(column)
		props.Centroid[j] = round(mean)
		props.BoundingBox[j] = [2]float64{lo, hi}
		props.Spread[j] = round(sd)
	}
	props.AffineDimension = affineDimension(vs.Vertices, cfg.Tolerance)

	if vs.PossiblyUnbounded || vs.Incomplete || d > 3 {
		return props
	}
	props.Volume, props.SurfaceArea = measures(vs.Vertices, props.Centroid, props.AffineDimension, sys, cfg.Tolerance)
	return props
}

// measures computes volume and surface for d <= 3. A vertex set of lower
// affine dimension than d has zero volume; its surface counts both sides
// of the flat body when it spans d-1 dimensions.
func measures(vertices [][]float64, centroid []float64, affine int, sys constraint.System, tol float64) (Measure, Measure) {
	d := len(centroid)
	switch d {
	case 1:
		lo, hi := vertices[0][0], vertices[0][0]
		for _, v := range vertices {
			lo = math.Min(lo, v[0])
			hi = math.Max(hi, v[0])
		}
		return computed(round(hi - lo)), computed(float64(len(vertices)))

	case 2:
		switch affine {
		case 2:
			area, perimeter := polygonMeasures(toPoints2(vertices))
			return computed(round(area)), computed(round(perimeter))
		case 1:
			return computed(0), computed(round(2 * segmentLength(vertices)))
		}
		return computed(0), computed(0)

	case 3:
		switch affine {
		case 3:
			volume, surface := polyhedronMeasures(vertices, centroid, sys, tol)
			return computed(round(volume)), computed(round(surface))
		case 2:
			area, _ := polygonMeasures(planarCoordinates(vertices))
			return computed(0), computed(round(2 * area))
		}
		return computed(0), computed(0)
	}
	return NotComputed, NotComputed
}

// affineDimension is the rank of the vertex set translated to its first
// vertex.
func affineDimension(vertices [][]float64, tol float64) int {
	if len(vertices) < 2 {
		return 0
	}
	d := len(vertices[0])
	m := mat.NewDense(len(vertices)-1, d, nil)
	for i, v := range vertices[1:] {
		for j := range v {
			m.Set(i, j, v[j]-vertices[0][j])
		}
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	r := 0
	for _, s := range values {
		if s > tol {
			r++
		}
	}
	return r
}

func segmentLength(vertices [][]float64) float64 {
	longest := 0.0
	for i := range vertices {
		for j := i + 1; j < len(vertices); j++ {
			longest = math.Max(longest, distance(vertices[i], vertices[j]))
		}
	}
	return longest
}

func distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += (a[i] - b[i]) * (a[i] - b[i])
	}
	return math.Sqrt(sum)
}

// round trims accumulated floating point noise from derived values
func round(v float64) float64 {
	r := math.Round(v*1e10) / 1e10
	if r == 0 {
		return 0
	}
	return r
}
