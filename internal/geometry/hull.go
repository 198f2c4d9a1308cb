package geometry

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"goportfolio/domain/constraint"

	"gonum.org/v1/gonum/mat"
)

type point2 struct{ x, y float64 }

func toPoints2(vertices [][]float64) []point2 {
	out := make([]point2, len(vertices))
	for i, v := range vertices {
		out[i] = point2{v[0], v[1]}
	}
	return out
}

func cross2(o, a, b point2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// convexHull2 returns the hull counter-clockwise using Andrew's monotone
// chain. Collinear boundary points are dropped.
func convexHull2(points []point2) []point2 {
	pts := append([]point2(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x != pts[j].x {
			return pts[i].x < pts[j].x
		}
		return pts[i].y < pts[j].y
	})
	if len(pts) < 3 {
		return pts
	}

	hull := make([]point2, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross2(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// polygonMeasures returns area and perimeter of the convex hull of points,
// computing the area as a fan of triangles from the centroid.
func polygonMeasures(points []point2) (area, perimeter float64) {
	hull := convexHull2(points)
	if len(hull) < 3 {
		return 0, 0
	}
	var c point2
	for _, p := range hull {
		c.x += p.x
		c.y += p.y
	}
	c.x /= float64(len(hull))
	c.y /= float64(len(hull))

	for i, p := range hull {
		q := hull[(i+1)%len(hull)]
		area += math.Abs(cross2(c, p, q)) / 2
		perimeter += math.Hypot(q.x-p.x, q.y-p.y)
	}
	return area, perimeter
}

// planarCoordinates maps a flat 3D vertex set onto its two principal axes
func planarCoordinates(vertices [][]float64) []point2 {
	n := len(vertices)
	mean := make([]float64, 3)
	for _, v := range vertices {
		for j := range mean {
			mean[j] += v[j] / float64(n)
		}
	}
	centered := mat.NewDense(n, 3, nil)
	for i, v := range vertices {
		for j := range mean {
			centered.Set(i, j, v[j]-mean[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return nil
	}
	var v mat.Dense
	svd.VTo(&v)

	out := make([]point2, n)
	for i := 0; i < n; i++ {
		row := centered.RawRowView(i)
		for j := 0; j < 3; j++ {
			out[i].x += row[j] * v.At(j, 0)
			out[i].y += row[j] * v.At(j, 1)
		}
	}
	return out
}

// facet is a 2-face of a 3D polytope: the vertices tight on one
// constraint row, ordered around the facet centroid.
type facet struct {
	row      constraint.Constraint
	vertices [][]float64
}

// facets3 recovers facets from the constraint rows. A row is a facet when
// at least three non-collinear vertices lie on its hyperplane; rows that
// select the same vertex set are merged.
func facets3(vertices [][]float64, sys constraint.System, tol float64) []facet {
	seen := make(map[string]bool)
	var out []facet
	for _, row := range sys.Constraints {
		norm := math.Sqrt(row.Dot(row.Coefficients))
		if norm == 0 {
			continue
		}
		var idx []int
		for i, v := range vertices {
			if math.Abs(row.Residual(v))/norm <= tol*10 {
				idx = append(idx, i)
			}
		}
		if len(idx) < 3 {
			continue
		}
		key := indexKey(idx)
		if seen[key] {
			continue
		}
		pts := make([][]float64, len(idx))
		for i, j := range idx {
			pts[i] = vertices[j]
		}
		if affineDimension(pts, tol) != 2 {
			continue
		}
		seen[key] = true
		out = append(out, facet{row: row, vertices: orderOnPlane(pts, row.Coefficients)})
	}
	return out
}

func indexKey(idx []int) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = strconv.Itoa(j)
	}
	return strings.Join(parts, ",")
}

// orderOnPlane sorts coplanar points by angle around their centroid in the
// plane with the given normal.
func orderOnPlane(pts [][]float64, normal []float64) [][]float64 {
	c := mean3(pts)
	var u []float64
	for _, p := range pts {
		if d := sub3(p, c); norm3(d) > 0 {
			u = scale3(d, 1/norm3(d))
			break
		}
	}
	n := scale3(normal, 1/norm3(normal))
	w := cross3(n, u)

	type angled struct {
		p     []float64
		angle float64
	}
	list := make([]angled, len(pts))
	for i, p := range pts {
		d := sub3(p, c)
		list[i] = angled{p, math.Atan2(dot3(d, w), dot3(d, u))}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].angle < list[j].angle })

	out := make([][]float64, len(list))
	for i, a := range list {
		out[i] = a.p
	}
	return out
}

// polyhedronMeasures sums, over facets, the fan-triangulated facet area and
// the pyramid volume area*height/3 from the polytope centroid.
func polyhedronMeasures(vertices [][]float64, centroid []float64, sys constraint.System, tol float64) (volume, surface float64) {
	for _, f := range facets3(vertices, sys, tol) {
		fc := mean3(f.vertices)
		area := 0.0
		for i, p := range f.vertices {
			q := f.vertices[(i+1)%len(f.vertices)]
			area += norm3(cross3(sub3(p, fc), sub3(q, fc))) / 2
		}
		height := math.Abs(f.row.Residual(centroid)) / norm3(f.row.Coefficients)
		surface += area
		volume += area * height / 3
	}
	return volume, surface
}

func mean3(pts [][]float64) []float64 {
	c := make([]float64, 3)
	for _, p := range pts {
		for j := 0; j < 3; j++ {
			c[j] += p[j]
		}
	}
	return scale3(c, 1/float64(len(pts)))
}

func sub3(a, b []float64) []float64 {
	return []float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale3(a []float64, s float64) []float64 {
	return []float64{a[0] * s, a[1] * s, a[2] * s}
}

func dot3(a, b []float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm3(a []float64) float64 {
	return math.Sqrt(dot3(a, a))
}
