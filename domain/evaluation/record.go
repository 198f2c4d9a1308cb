// Package evaluation holds the immutable value object capturing one
// stakeholder judgment.
package evaluation

import (
	"fmt"
	"math"
	"strings"

	"goportfolio/domain/core"
)

// Spec is the plain, serializable form of a record. It is what forms,
// importers and exporters exchange; New validates it into a Record.
type Spec struct {
	ID          core.ID           `json:"id,omitempty" yaml:"id,omitempty"`
	EvaluatorID string            `json:"evaluator_id" yaml:"evaluator_id"`
	Type        Type              `json:"type" yaml:"type"`
	Projects    []string          `json:"projects" yaml:"projects"`
	Operator    Operator          `json:"operator,omitempty" yaml:"operator,omitempty"`
	Values      []float64         `json:"values,omitempty" yaml:"values,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Criterion   string            `json:"criterion,omitempty" yaml:"criterion,omitempty"`
	Timestamp   core.Timestamp    `json:"timestamp" yaml:"timestamp"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Record is one validated qualitative judgment. All fields are private and
// accessors return copies, so a Record never changes after New returns.
type Record struct {
	id          core.ID
	evaluatorID string
	typ         Type
	projects    []string
	operator    Operator
	values      []float64
	confidence  float64
	criterion   string
	timestamp   core.Timestamp
	metadata    map[string]string
}

// New validates spec against the per-type structural invariants and returns
// an immutable record. A missing id is generated; a missing confidence
// defaults to 1; a zero timestamp is set to now.
func New(spec Spec) (*Record, error) {
	id := spec.ID
	if id.IsEmpty() {
		id = core.NewID()
	}

	if strings.TrimSpace(spec.EvaluatorID) == "" {
		return nil, core.NewStructuralError(id, "evaluator_id", spec.EvaluatorID, "evaluator id is required")
	}

	typ, err := ParseType(string(spec.Type))
	if err != nil {
		return nil, core.NewStructuralError(id, "type", spec.Type, err.Error())
	}

	confidence := 1.0
	if spec.Confidence != nil {
		confidence = *spec.Confidence
	}
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, core.NewStructuralError(id, "confidence", confidence, "confidence must lie in [0, 1]")
	}

	projects := make([]string, len(spec.Projects))
	for i, p := range spec.Projects {
		projects[i] = strings.TrimSpace(p)
		if projects[i] == "" {
			return nil, core.NewStructuralError(id, "projects", p, fmt.Sprintf("project %d is blank", i))
		}
	}

	for i, v := range spec.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewStructuralError(id, "values", v, fmt.Sprintf("value %d is not finite", i))
		}
	}

	var op Operator
	if spec.Operator != "" {
		op, err = ParseOperator(string(spec.Operator))
		if err != nil {
			return nil, core.NewStructuralError(id, "operator", spec.Operator, err.Error())
		}
	}

	if err := checkShape(id, typ, projects, op, spec.Values); err != nil {
		return nil, err
	}

	ts := spec.Timestamp
	if ts.IsZero() {
		ts = core.Now()
	}

	var metadata map[string]string
	if len(spec.Metadata) > 0 {
		metadata = make(map[string]string, len(spec.Metadata))
		for k, v := range spec.Metadata {
			metadata[k] = v
		}
	}

	return &Record{
		id:          id,
		evaluatorID: strings.TrimSpace(spec.EvaluatorID),
		typ:         typ,
		projects:    projects,
		operator:    op,
		values:      append([]float64(nil), spec.Values...),
		confidence:  confidence,
		criterion:   strings.TrimSpace(spec.Criterion),
		timestamp:   ts,
		metadata:    metadata,
	}, nil
}

// checkShape enforces the project count, operator and values rules per type
func checkShape(id core.ID, typ Type, projects []string, op Operator, values []float64) error {
	switch typ {
	case TypeComparison:
		if len(projects) != 2 {
			return core.NewStructuralError(id, "projects", projects, "comparison requires exactly 2 projects")
		}
		if projects[0] == projects[1] {
			return core.NewStructuralError(id, "projects", projects, "comparison of a project with itself")
		}
		if op == "" {
			return core.NewStructuralError(id, "operator", op, "comparison requires an operator")
		}
		if len(values) != 0 {
			return core.NewStructuralError(id, "values", values, "comparison does not take values")
		}

	case TypeRange:
		if len(projects) != 1 {
			return core.NewStructuralError(id, "projects", projects, "range requires exactly 1 project")
		}
		if len(values) != 2 {
			return core.NewStructuralError(id, "values", values, "range requires [min, max]")
		}
		if values[0] >= values[1] {
			return core.NewStructuralError(id, "values", values, "range requires min < max")
		}
		if op != "" {
			return core.NewStructuralError(id, "operator", op, "range does not take an operator")
		}

	case TypeRanking:
		if len(projects) < 2 {
			return core.NewStructuralError(id, "projects", projects, "ranking requires at least 2 projects")
		}
		seen := make(map[string]struct{}, len(projects))
		for _, p := range projects {
			if _, dup := seen[p]; dup {
				return core.NewStructuralError(id, "projects", p, "ranking lists a project twice")
			}
			seen[p] = struct{}{}
		}
		if op != "" {
			return core.NewStructuralError(id, "operator", op, "ranking does not take an operator")
		}
		if len(values) != 0 {
			return core.NewStructuralError(id, "values", values, "ranking does not take values")
		}

	case TypeThreshold:
		if len(projects) != 1 {
			return core.NewStructuralError(id, "projects", projects, "threshold requires exactly 1 project")
		}
		if op == "" {
			return core.NewStructuralError(id, "operator", op, "threshold requires an operator")
		}
		if len(values) != 1 {
			return core.NewStructuralError(id, "values", values, "threshold requires exactly 1 bound")
		}
	}
	return nil
}

// Accessors

func (r *Record) ID() core.ID               { return r.id }
func (r *Record) EvaluatorID() string       { return r.evaluatorID }
func (r *Record) Type() Type                { return r.typ }
func (r *Record) Operator() Operator        { return r.operator }
func (r *Record) Confidence() float64       { return r.confidence }
func (r *Record) Criterion() string         { return r.criterion }
func (r *Record) Timestamp() core.Timestamp { return r.timestamp }

// Projects returns a copy of the project list (best first for rankings)
func (r *Record) Projects() []string {
	return append([]string(nil), r.projects...)
}

// Values returns a copy of the numeric values
func (r *Record) Values() []float64 {
	return append([]float64(nil), r.values...)
}

// Metadata returns a copy of the metadata map
func (r *Record) Metadata() map[string]string {
	if r.metadata == nil {
		return nil
	}
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

// Spec returns the serializable form; New(r.Spec()) reproduces the record.
func (r *Record) Spec() Spec {
	confidence := r.confidence
	return Spec{
		ID:          r.id,
		EvaluatorID: r.evaluatorID,
		Type:        r.typ,
		Projects:    r.Projects(),
		Operator:    r.operator,
		Values:      r.Values(),
		Confidence:  &confidence,
		Criterion:   r.criterion,
		Timestamp:   r.timestamp,
		Metadata:    r.Metadata(),
	}
}

// String renders the judgment in a compact human form
func (r *Record) String() string {
	crit := r.criterion
	if crit == "" {
		crit = "*"
	}
	switch r.typ {
	case TypeComparison:
		return fmt.Sprintf("%s %s %s [%s]", r.projects[0], r.operator.Symbol(), r.projects[1], crit)
	case TypeRange:
		return fmt.Sprintf("%s in [%g, %g] [%s]", r.projects[0], r.values[0], r.values[1], crit)
	case TypeRanking:
		return fmt.Sprintf("%s [%s]", strings.Join(r.projects, " > "), crit)
	case TypeThreshold:
		return fmt.Sprintf("%s %s %g [%s]", r.projects[0], r.operator.Symbol(), r.values[0], crit)
	}
	return string(r.typ)
}
