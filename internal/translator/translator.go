// Package translator turns qualitative evaluation records into a linear
// constraint system over the criterion space.
package translator

import (
	"sync"

	"goportfolio/domain/constraint"
	"goportfolio/domain/core"
	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
	"goportfolio/internal"
)

// DefaultEpsilon is the strict-inequality separation constant
const DefaultEpsilon = 0.01

// Option configures a Translator
type Option func(*Translator)

// WithEpsilon overrides the separation constant used for strict relations
func WithEpsilon(eps float64) Option {
	return func(t *Translator) {
		if eps > 0 {
			t.epsilon = eps
		}
	}
}

// WithLogger sets the logger used for record acceptance messages
func WithLogger(logger *internal.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger.WithPrefix("translator")
		}
	}
}

// Translator holds an append-only collection of evaluation records against
// one criterion space. The constraint system is always derived from the
// current records, never stored.
type Translator struct {
	mu      sync.RWMutex
	space   *criterion.Space
	epsilon float64
	records []*evaluation.Record
	ids     map[core.ID]struct{}
	logger  *internal.Logger
}

// New creates a translator bound to space
func New(space *criterion.Space, opts ...Option) *Translator {
	t := &Translator{
		space:   space,
		epsilon: DefaultEpsilon,
		ids:     make(map[core.ID]struct{}),
		logger:  internal.NewDefaultLogger().WithPrefix("translator"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Space returns the criterion space the translator indexes into
func (t *Translator) Space() *criterion.Space {
	return t.space
}

// Epsilon returns the separation constant
func (t *Translator) Epsilon() float64 {
	return t.epsilon
}

// Add appends a record after checking that every project and the criterion
// it names are registered. A rejected record leaves the collection
// unchanged. Adding a record whose id is already present is a no-op. The
// first accepted record freezes the space.
func (t *Translator) Add(rec *evaluation.Record) error {
	if rec == nil {
		return core.NewStructuralError("", "record", nil, "record is nil")
	}
	if err := t.checkRegistered(rec); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.ids[rec.ID()]; dup {
		t.logger.Debug("record %s already present, ignoring", rec.ID())
		return nil
	}
	t.space.Freeze()
	t.records = append(t.records, rec)
	t.ids[rec.ID()] = struct{}{}

	t.logger.Info("accepted %s evaluation %s from %s (%d records)", rec.Type(), rec.ID(), rec.EvaluatorID(), len(t.records))
	return nil
}

// AddAll adds records in order. Either every record is accepted or none is.
func (t *Translator) AddAll(recs []*evaluation.Record) error {
	for _, rec := range recs {
		if rec == nil {
			return core.NewStructuralError("", "record", nil, "record is nil")
		}
		if err := t.checkRegistered(rec); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	added := 0
	for _, rec := range recs {
		if _, dup := t.ids[rec.ID()]; dup {
			continue
		}
		t.records = append(t.records, rec)
		t.ids[rec.ID()] = struct{}{}
		added++
	}
	if added > 0 {
		t.space.Freeze()
		t.logger.Info("accepted %d evaluations (%d records)", added, len(t.records))
	}
	return nil
}

// Remove drops the record with the given id. It reports whether a record
// was removed. The space stays frozen.
func (t *Translator) Remove(id core.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.ids[id]; !ok {
		return false
	}
	for i, rec := range t.records {
		if rec.ID() == id {
			t.records = append(t.records[:i:i], t.records[i+1:]...)
			break
		}
	}
	delete(t.ids, id)
	t.logger.Info("removed evaluation %s (%d records)", id, len(t.records))
	return true
}

// Records returns the accepted records in insertion order
func (t *Translator) Records() []*evaluation.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*evaluation.Record(nil), t.records...)
}

// Len returns the number of accepted records
func (t *Translator) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Translate expands every record into constraint rows. The output depends
// only on the space layout, the separation constant and the record order.
func (t *Translator) Translate() []constraint.Constraint {
	layout, recs := t.snapshot()
	return translateAll(layout, t.epsilon, recs)
}

// System returns an immutable snapshot of the current constraint system
func (t *Translator) System() constraint.System {
	layout, recs := t.snapshot()
	return constraint.NewSystem(layout, t.epsilon, translateAll(layout, t.epsilon, recs))
}

// Matrices returns the (A_ineq, b_ineq, A_eq, b_eq) form of the system
func (t *Translator) Matrices() constraint.Matrices {
	return t.System().Matrices()
}

// Hash returns the content hash of the current system
func (t *Translator) Hash() core.Hash {
	return t.System().Hash
}

func (t *Translator) snapshot() (criterion.Layout, []*evaluation.Record) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.space.Layout(), append([]*evaluation.Record(nil), t.records...)
}

func (t *Translator) checkRegistered(rec *evaluation.Record) error {
	for _, p := range rec.Projects() {
		if !t.space.HasProject(p) {
			return core.NewUnknownProjectError(rec.ID(), p)
		}
	}
	if c := rec.Criterion(); c != "" && !t.space.HasCriterion(c) {
		return core.NewUnknownCriterionError(rec.ID(), c)
	}
	return nil
}

// Translate is the pure form of Translator.Translate for callers that hold
// a layout and records without a live translator.
func Translate(layout criterion.Layout, epsilon float64, recs []*evaluation.Record) []constraint.Constraint {
	return translateAll(layout, epsilon, recs)
}

func translateAll(layout criterion.Layout, epsilon float64, recs []*evaluation.Record) []constraint.Constraint {
	r := newRules(layout, epsilon)
	out := make([]constraint.Constraint, 0, len(recs))
	for _, rec := range recs {
		out = append(out, r.translate(rec)...)
	}
	return out
}
