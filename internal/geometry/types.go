// Package geometry analyzes the feasible region of a constraint system:
// vertex enumeration, derived properties and low-dimensional projections
// for an external rendering layer.
package geometry

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"
)

// Reason explains an empty or partial vertex set. An empty polytope is a
// valid outcome, never an error.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNoConstraints  Reason = "NO_CONSTRAINTS"
	ReasonInfeasible     Reason = "INFEASIBLE"
	ReasonUnbounded      Reason = "UNBOUNDED_SUSPECTED"
	ReasonDimensionLimit Reason = "DIMENSION_LIMIT_EXCEEDED"
	ReasonIncomplete     Reason = "ENUMERATION_INCOMPLETE"
)

// State is the lifecycle of an engine's vertex cache
type State string

const (
	StateUnbuilt State = "UNBUILT"
	StateBuilt   State = "BUILT"
	StateStale   State = "STALE"
)

// Config bounds the enumeration
type Config struct {
	MaxDimensions     int
	Tolerance         float64
	SingularTolerance float64
	MaxSubsets        int64
	Timeout           time.Duration
	Workers           int
}

// DefaultConfig returns the documented enumeration limits
func DefaultConfig() Config {
	return Config{
		MaxDimensions:     20,
		Tolerance:         1e-7,
		SingularTolerance: 1e-9,
		MaxSubsets:        5_000_000,
		Timeout:           30 * time.Second,
		Workers:           runtime.NumCPU(),
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxDimensions <= 0 {
		c.MaxDimensions = def.MaxDimensions
	}
	if c.Tolerance <= 0 {
		c.Tolerance = def.Tolerance
	}
	if c.SingularTolerance <= 0 {
		c.SingularTolerance = def.SingularTolerance
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// VertexSet is the result of one enumeration
type VertexSet struct {
	Dimensions        int         `json:"dimensions"`
	Variables         []string    `json:"variables"`
	Vertices          [][]float64 `json:"vertices"`
	Reason            Reason      `json:"reason,omitempty"`
	PossiblyUnbounded bool        `json:"possibly_unbounded"`
	Incomplete        bool        `json:"incomplete"`
	SubsetsTotal      float64     `json:"subsets_total"`
	SubsetsEvaluated  int64       `json:"subsets_evaluated"`
	Candidates        int         `json:"candidates"`
	SystemHash        string      `json:"system_hash"`
}

// Len returns the number of vertices
func (v VertexSet) Len() int {
	return len(v.Vertices)
}

// Empty reports whether no vertex was found
func (v VertexSet) Empty() bool {
	return len(v.Vertices) == 0
}

// Measure is a volume or surface value that may be unavailable. It
// serializes as a number, or as the string "not_computed".
type Measure struct {
	Value    float64
	Computed bool
}

// NotComputed is the unavailable measure
var NotComputed = Measure{}

func computed(v float64) Measure {
	return Measure{Value: v, Computed: true}
}

func (m Measure) String() string {
	if !m.Computed {
		return "not_computed"
	}
	return fmt.Sprintf("%g", m.Value)
}

// MarshalJSON implements json.Marshaler
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Computed {
		return []byte(`"not_computed"`), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Measure) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "not_computed" {
			return fmt.Errorf("invalid measure %q", s)
		}
		*m = NotComputed
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = computed(v)
	return nil
}

// Properties are derived from a non-empty vertex set
type Properties struct {
	NumVertices       int          `json:"num_vertices"`
	Dimensions        int          `json:"dimensions"`
	AffineDimension   int          `json:"affine_dimension"`
	Centroid          []float64    `json:"centroid,omitempty"`
	BoundingBox       [][2]float64 `json:"bounding_box,omitempty"`
	Spread            []float64    `json:"spread,omitempty"`
	Volume            Measure      `json:"volume"`
	SurfaceArea       Measure      `json:"surface_area"`
	PossiblyUnbounded bool         `json:"possibly_unbounded"`
	Incomplete        bool         `json:"incomplete"`
	Reason            Reason       `json:"reason,omitempty"`
}

// BoundaryConstraint is a constraint restricted to a projection's axes
type BoundaryConstraint struct {
	ID           string    `json:"id"`
	Coefficients []float64 `json:"coefficients"`
	Bound        float64   `json:"bound"`
	IsEquality   bool      `json:"is_equality"`
	Expression   string    `json:"expression"`
}

// Projection is the vertex set restricted to two or three coordinates
type Projection struct {
	Name      string               `json:"name"`
	Dims      []int                `json:"dims"`
	Variables []string             `json:"variables"`
	Points    [][]float64          `json:"points"`
	Hull      [][]float64          `json:"hull,omitempty"`
	Boundary  []BoundaryConstraint `json:"boundary_constraints"`
}

// Document is the serializable bundle handed to the rendering layer
type Document struct {
	SystemHash  string       `json:"system_hash"`
	State       State        `json:"state"`
	Vertices    VertexSet    `json:"vertices"`
	Properties  Properties   `json:"properties"`
	Projections []Projection `json:"projections"`
}
