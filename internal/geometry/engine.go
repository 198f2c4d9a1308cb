package geometry

import (
	"context"
	"sync"
	"time"

	"goportfolio/domain/constraint"
	"goportfolio/internal"
	"goportfolio/internal/metrics"
	"goportfolio/ports"

	"golang.org/x/sync/singleflight"
)

// Option configures an Engine
type Option func(*Engine)

// WithConfig sets the enumeration limits
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg.normalized()
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *internal.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.WithPrefix("geometry")
		}
	}
}

// snapshot is one computed result, keyed by the system hash it came from
type snapshot struct {
	system     constraint.System
	vertices   VertexSet
	properties Properties
}

// Engine caches the vertex set of a constraint source and recomputes it
// lazily, on the first request after the source's content hash changes.
// Concurrent requests for the same hash share one computation, and a
// caller that gives up does not cancel it for the others.
type Engine struct {
	source ports.ConstraintSource
	cfg    Config
	logger *internal.Logger

	mu     sync.RWMutex
	cache  *snapshot
	flight singleflight.Group
}

// NewEngine creates an engine in the UNBUILT state
func NewEngine(source ports.ConstraintSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		cfg:    DefaultConfig(),
		logger: internal.NewDefaultLogger().WithPrefix("geometry"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports UNBUILT before the first computation, STALE when the
// source has changed since, and BUILT otherwise.
func (e *Engine) State() State {
	e.mu.RLock()
	cached := e.cache
	e.mu.RUnlock()

	if cached == nil {
		return StateUnbuilt
	}
	if cached.system.Hash != e.source.System().Hash {
		return StateStale
	}
	return StateBuilt
}

// Invalidate drops the cache; the next request recomputes
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.cache = nil
	e.mu.Unlock()
}

// Vertices returns the vertex set of the current system
func (e *Engine) Vertices(ctx context.Context) (VertexSet, error) {
	snap, err := e.build(ctx)
	if err != nil {
		return VertexSet{}, err
	}
	return snap.vertices, nil
}

// Properties returns the derived properties of the current system
func (e *Engine) Properties(ctx context.Context) (Properties, error) {
	snap, err := e.build(ctx)
	if err != nil {
		return Properties{}, err
	}
	return snap.properties, nil
}

// Project returns the named 2D or 3D view over dims
func (e *Engine) Project(ctx context.Context, dims []int) (Projection, error) {
	snap, err := e.build(ctx)
	if err != nil {
		return Projection{}, err
	}
	return Project(snap.vertices, snap.system, dims, e.cfg.Tolerance)
}

// Projections returns the default named views
func (e *Engine) Projections(ctx context.Context) ([]Projection, error) {
	snap, err := e.build(ctx)
	if err != nil {
		return nil, err
	}
	return defaultProjections(snap, e.cfg.Tolerance)
}

// Document bundles vertices, properties and default projections
func (e *Engine) Document(ctx context.Context) (Document, error) {
	snap, err := e.build(ctx)
	if err != nil {
		return Document{}, err
	}
	views, err := defaultProjections(snap, e.cfg.Tolerance)
	if err != nil {
		return Document{}, err
	}
	return Document{
		SystemHash:  snap.system.Hash.String(),
		State:       StateBuilt,
		Vertices:    snap.vertices,
		Properties:  snap.properties,
		Projections: views,
	}, nil
}

// build returns the cached snapshot when its hash matches the current
// system, and otherwise recomputes against a fresh immutable snapshot.
func (e *Engine) build(ctx context.Context) (*snapshot, error) {
	sys := e.source.System()

	e.mu.RLock()
	cached := e.cache
	e.mu.RUnlock()
	if cached != nil && cached.system.Hash == sys.Hash {
		metrics.CacheHit()
		return cached, nil
	}

	// The shared run outlives any single caller; the enumeration timeout
	// still bounds it.
	ch := e.flight.DoChan(sys.Hash.String(), func() (interface{}, error) {
		return e.compute(context.WithoutCancel(ctx), sys)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}

func (e *Engine) compute(ctx context.Context, sys constraint.System) (*snapshot, error) {
	metrics.CacheRebuild()
	start := time.Now()

	vs, err := Enumerate(ctx, sys, e.cfg)
	if err != nil {
		e.logger.Error("enumeration of %s failed: %v", sys.Hash, err)
		return nil, err
	}
	snap := &snapshot{
		system:     sys,
		vertices:   vs,
		properties: ComputeProperties(vs, sys, e.cfg),
	}

	if vs.Incomplete {
		e.logger.Warn("enumeration stopped after %d of %.0f subsets (d=%d, %d vertices)", vs.SubsetsEvaluated, vs.SubsetsTotal, vs.Dimensions, vs.Len())
	}
	e.logger.Debug("enumerated d=%d k=%d: %d vertices from %d candidates in %v (reason=%q)",
		vs.Dimensions, sys.Len(), vs.Len(), vs.Candidates, time.Since(start), vs.Reason)

	e.mu.Lock()
	e.cache = snap
	e.mu.Unlock()
	return snap, nil
}

func defaultProjections(snap *snapshot, tol float64) ([]Projection, error) {
	dims := DefaultProjectionDims(snap.vertices.Dimensions)
	out := make([]Projection, 0, len(dims))
	for _, d := range dims {
		p, err := Project(snap.vertices, snap.system, d, tol)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
