package evaluation

import (
	"goportfolio/domain/core"
)

// Option adjusts a Spec before validation
type Option func(*Spec)

// WithID fixes the record id (used when re-importing exported records)
func WithID(id core.ID) Option {
	return func(s *Spec) { s.ID = id }
}

// WithCriterion restricts the judgment to one criterion
func WithCriterion(criterion string) Option {
	return func(s *Spec) { s.Criterion = criterion }
}

// WithConfidence sets the evaluator's confidence in [0, 1]
func WithConfidence(c float64) Option {
	return func(s *Spec) { s.Confidence = &c }
}

// WithTimestamp sets when the judgment was made
func WithTimestamp(ts core.Timestamp) Option {
	return func(s *Spec) { s.Timestamp = ts }
}

// WithMetadata attaches one metadata entry
func WithMetadata(key, value string) Option {
	return func(s *Spec) {
		if s.Metadata == nil {
			s.Metadata = make(map[string]string)
		}
		s.Metadata[key] = value
	}
}

func build(spec Spec, opts []Option) (*Record, error) {
	for _, opt := range opts {
		opt(&spec)
	}
	return New(spec)
}

// Comparison records "a op b"
func Comparison(evaluator, a string, op Operator, b string, opts ...Option) (*Record, error) {
	return build(Spec{
		EvaluatorID: evaluator,
		Type:        TypeComparison,
		Projects:    []string{a, b},
		Operator:    op,
	}, opts)
}

// Range records "min <= value(project) <= max"
func Range(evaluator, project string, min, max float64, opts ...Option) (*Record, error) {
	return build(Spec{
		EvaluatorID: evaluator,
		Type:        TypeRange,
		Projects:    []string{project},
		Values:      []float64{min, max},
	}, opts)
}

// Ranking records a strict order, best first
func Ranking(evaluator string, projects []string, opts ...Option) (*Record, error) {
	return build(Spec{
		EvaluatorID: evaluator,
		Type:        TypeRanking,
		Projects:    append([]string(nil), projects...),
	}, opts)
}

// Threshold records "value(project) op bound"
func Threshold(evaluator, project string, op Operator, bound float64, opts ...Option) (*Record, error) {
	return build(Spec{
		EvaluatorID: evaluator,
		Type:        TypeThreshold,
		Projects:    []string{project},
		Operator:    op,
		Values:      []float64{bound},
	}, opts)
}
