package app

import (
	"context"
	"sync"
	"time"

	"goportfolio/domain/constraint"
	"goportfolio/domain/core"
	"goportfolio/domain/evaluation"
	"goportfolio/domain/portfolio"
	"goportfolio/internal"
	"goportfolio/internal/errors"
	"goportfolio/internal/geometry"
	"goportfolio/internal/metrics"
	"goportfolio/internal/report"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"
	"goportfolio/ports"

	"golang.org/x/sync/semaphore"
)

// PortfolioService owns one translator and geometry engine per loaded
// portfolio and keeps them in step with the repository
type PortfolioService struct {
	repo      ports.PortfolioRepository
	geometry  geometry.Config
	validator *validator.Validator
	epsilon   float64
	logger    *internal.Logger
	events    ports.EventPublisher

	// builds caps concurrent vertex enumerations across portfolios
	builds *semaphore.Weighted

	mu       sync.Mutex
	sessions map[core.PortfolioID]*session
}

type session struct {
	// writes serializes record changes so the repository and translator
	// see the same order
	writes sync.Mutex

	portfolio  *portfolio.Portfolio
	translator *translator.Translator
	engine     *geometry.Engine
}

// ServiceConfig carries the tunables of a PortfolioService
type ServiceConfig struct {
	Epsilon          float64
	Geometry         geometry.Config
	DetectCycles     bool
	ConcurrentBuilds int64
}

// CreatePortfolioRequest describes a new portfolio
type CreatePortfolioRequest struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Projects    []string `json:"projects" yaml:"projects"`
	Criteria    []string `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Epsilon     float64  `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
}

// AddResult reports how many records were new and the resulting system hash
type AddResult struct {
	Accepted   []core.ID `json:"accepted"`
	Duplicates int       `json:"duplicates"`
	Total      int       `json:"total"`
	SystemHash string    `json:"system_hash"`
}

// Snapshot gathers the exports of one portfolio at a single system hash
type Snapshot struct {
	Portfolio  *portfolio.Portfolio
	Document   translator.Document
	Validation validator.Report
	Geometry   geometry.Document
}

// NewPortfolioService creates a portfolio service
func NewPortfolioService(repo ports.PortfolioRepository, cfg ServiceConfig, logger *internal.Logger) *PortfolioService {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	if cfg.ConcurrentBuilds < 1 {
		cfg.ConcurrentBuilds = 2
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = translator.DefaultEpsilon
	}
	return &PortfolioService{
		repo:      repo,
		geometry:  cfg.Geometry,
		validator: validator.New(validator.WithCycleDetection(cfg.DetectCycles), validator.WithLogger(logger)),
		epsilon:   cfg.Epsilon,
		logger:    logger.WithPrefix("portfolio"),
		builds:    semaphore.NewWeighted(cfg.ConcurrentBuilds),
		sessions:  make(map[core.PortfolioID]*session),
	}
}

// SetEventPublisher registers a sink for change notifications
func (s *PortfolioService) SetEventPublisher(p ports.EventPublisher) {
	s.events = p
}

func (s *PortfolioService) publish(id core.PortfolioID, eventType, hash string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ports.PortfolioEvent{
		PortfolioID: id,
		EventType:   eventType,
		SystemHash:  hash,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	})
}

// CreatePortfolio validates and stores a new portfolio
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req CreatePortfolioRequest) (*portfolio.Portfolio, error) {
	eps := req.Epsilon
	if eps == 0 {
		eps = s.epsilon
	}
	if eps < 0 {
		return nil, errors.InvalidInput("epsilon must be positive")
	}
	p, err := portfolio.New(req.Name, req.Projects, req.Criteria, eps)
	if err != nil {
		return nil, err
	}
	p.Description = req.Description

	if err := s.repo.CreatePortfolio(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to store portfolio")
	}
	s.logger.Info("Created portfolio %s (%d projects x %d criteria)", p.ID, len(p.Projects), len(p.Criteria))
	return p, nil
}

// GetPortfolio returns a stored portfolio
func (s *PortfolioService) GetPortfolio(ctx context.Context, id core.PortfolioID) (*portfolio.Portfolio, error) {
	return s.repo.GetPortfolio(ctx, id)
}

// ListPortfolios returns stored portfolios, newest first
func (s *PortfolioService) ListPortfolios(ctx context.Context, limit, offset int) ([]*portfolio.Portfolio, error) {
	return s.repo.ListPortfolios(ctx, limit, offset)
}

// DeletePortfolio removes a portfolio and drops its cached session
func (s *PortfolioService) DeletePortfolio(ctx context.Context, id core.PortfolioID) error {
	if err := s.repo.DeletePortfolio(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.publish(id, ports.EventPortfolioDeleted, "", nil)
	return nil
}

// AddEvaluations validates specs, adds them to the portfolio's translator
// and persists them. Either every spec is accepted or none is.
func (s *PortfolioService) AddEvaluations(ctx context.Context, id core.PortfolioID, specs []evaluation.Spec) (*AddResult, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.writes.Lock()
	defer sess.writes.Unlock()

	recs := make([]*evaluation.Record, 0, len(specs))
	for i, spec := range specs {
		rec, err := evaluation.New(spec)
		if err != nil {
			metrics.RecordRejected(string(spec.Type))
			return nil, errors.Wrapf(err, "evaluation %d rejected", i+1)
		}
		recs = append(recs, rec)
	}

	before := make(map[core.ID]struct{}, sess.translator.Len())
	for _, rec := range sess.translator.Records() {
		before[rec.ID()] = struct{}{}
	}
	if err := sess.translator.AddAll(recs); err != nil {
		for _, rec := range recs {
			metrics.RecordRejected(string(rec.Type()))
		}
		return nil, errors.Wrap(err, "evaluations rejected")
	}

	result := &AddResult{Accepted: []core.ID{}}
	fresh := make([]evaluation.Spec, 0, len(recs))
	for _, rec := range recs {
		if _, dup := before[rec.ID()]; dup {
			result.Duplicates++
			continue
		}
		before[rec.ID()] = struct{}{}
		fresh = append(fresh, rec.Spec())
		result.Accepted = append(result.Accepted, rec.ID())
	}

	if err := s.repo.AppendRecords(ctx, id, fresh); err != nil {
		for _, rid := range result.Accepted {
			sess.translator.Remove(rid)
		}
		return nil, errors.Wrap(err, "failed to persist evaluations")
	}

	for _, spec := range fresh {
		metrics.RecordAccepted(string(spec.Type))
	}
	result.Total = sess.translator.Len()
	result.SystemHash = sess.translator.Hash().String()
	if len(result.Accepted) > 0 {
		s.publish(id, ports.EventEvaluationsAdded, result.SystemHash, map[string]interface{}{"accepted": len(result.Accepted)})
	}
	return result, nil
}

// RemoveEvaluation deletes one record from the repository and translator
func (s *PortfolioService) RemoveEvaluation(ctx context.Context, id core.PortfolioID, recordID core.ID) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	sess.writes.Lock()
	defer sess.writes.Unlock()
	if err := s.repo.DeleteRecord(ctx, id, recordID); err != nil {
		return err
	}
	sess.translator.Remove(recordID)
	s.publish(id, ports.EventEvaluationRemoved, sess.translator.Hash().String(), map[string]interface{}{"record_id": recordID})
	return nil
}

// Evaluations returns the portfolio's records in insertion order
func (s *PortfolioService) Evaluations(ctx context.Context, id core.PortfolioID) ([]evaluation.Spec, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	recs := sess.translator.Records()
	out := make([]evaluation.Spec, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Spec())
	}
	return out, nil
}

// System returns the current constraint system
func (s *PortfolioService) System(ctx context.Context, id core.PortfolioID) (constraint.System, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return constraint.System{}, err
	}
	return sess.translator.System(), nil
}

// Export renders the constraint system in the requested format
func (s *PortfolioService) Export(ctx context.Context, id core.PortfolioID, format string) (interface{}, error) {
	f, err := translator.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.translator.Export(f)
}

// Optimization returns the solver handoff document
func (s *PortfolioService) Optimization(ctx context.Context, id core.PortfolioID) (constraint.OptimizationDocument, error) {
	sys, err := s.System(ctx, id)
	if err != nil {
		return constraint.OptimizationDocument{}, err
	}
	return sys.OptimizationExport(core.Now().String()), nil
}

// Validate runs the validator over the current system
func (s *PortfolioService) Validate(ctx context.Context, id core.PortfolioID) (validator.Report, error) {
	sys, err := s.System(ctx, id)
	if err != nil {
		return validator.Report{}, err
	}
	rep := s.validator.Validate(sys)
	for _, w := range rep.Warnings {
		metrics.Warning(w.Code)
	}
	return rep, nil
}

// Vertices returns the cached or freshly enumerated vertex set
func (s *PortfolioService) Vertices(ctx context.Context, id core.PortfolioID) (geometry.VertexSet, error) {
	var vs geometry.VertexSet
	err := s.withEngine(ctx, id, func(e *geometry.Engine) (err error) {
		vs, err = e.Vertices(ctx)
		return err
	})
	return vs, err
}

// Properties returns the geometric summary of the feasible region
func (s *PortfolioService) Properties(ctx context.Context, id core.PortfolioID) (geometry.Properties, error) {
	var props geometry.Properties
	err := s.withEngine(ctx, id, func(e *geometry.Engine) (err error) {
		props, err = e.Properties(ctx)
		return err
	})
	return props, err
}

// Project restricts the vertex set to two or three coordinates
func (s *PortfolioService) Project(ctx context.Context, id core.PortfolioID, dims []int) (geometry.Projection, error) {
	var proj geometry.Projection
	err := s.withEngine(ctx, id, func(e *geometry.Engine) (err error) {
		proj, err = e.Project(ctx, dims)
		return err
	})
	return proj, err
}

// Geometry returns the full geometry document with default projections
func (s *PortfolioService) Geometry(ctx context.Context, id core.PortfolioID) (geometry.Document, error) {
	var doc geometry.Document
	err := s.withEngine(ctx, id, func(e *geometry.Engine) (err error) {
		doc, err = e.Document(ctx)
		return err
	})
	return doc, err
}

// State reports the engine cache state of a portfolio
func (s *PortfolioService) State(ctx context.Context, id core.PortfolioID) (geometry.State, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return "", err
	}
	return sess.engine.State(), nil
}

// Snapshot collects every export of a portfolio
func (s *PortfolioService) Snapshot(ctx context.Context, id core.PortfolioID) (*Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	geo, err := s.Geometry(ctx, id)
	if err != nil {
		return nil, err
	}
	rep, err := s.Validate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Portfolio:  sess.portfolio,
		Document:   sess.translator.ExportDocument(),
		Validation: rep,
		Geometry:   geo,
	}, nil
}

// Report builds the analysis report input for a portfolio
func (s *PortfolioService) Report(ctx context.Context, id core.PortfolioID) (report.Input, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return report.Input{}, err
	}
	sys, err := s.System(ctx, id)
	if err != nil {
		return report.Input{}, err
	}
	return report.Input{
		Title:       snap.Portfolio.Name,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		System:      sys,
		Records:     len(snap.Document.Evaluations),
		Validation:  snap.Validation,
		Vertices:    snap.Geometry.Vertices,
		Properties:  snap.Geometry.Properties,
	}, nil
}

func (s *PortfolioService) withEngine(ctx context.Context, id core.PortfolioID, fn func(*geometry.Engine) error) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	if err := s.builds.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.builds.Release(1)
	return fn(sess.engine)
}

// session returns the loaded translator and engine for id, loading the
// portfolio and replaying its records on first use
func (s *PortfolioService) session(ctx context.Context, id core.PortfolioID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	p, err := s.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	specs, err := s.repo.ListRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	space, err := p.Space()
	if err != nil {
		return nil, errors.Wrapf(err, "portfolio %s has an invalid criterion space", id)
	}

	recs := make([]*evaluation.Record, 0, len(specs))
	for _, spec := range specs {
		rec, err := evaluation.New(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "stored evaluation %s is invalid", spec.ID)
		}
		recs = append(recs, rec)
	}

	tr := translator.New(space, translator.WithEpsilon(p.Epsilon), translator.WithLogger(s.logger))
	if err := tr.AddAll(recs); err != nil {
		return nil, errors.Wrapf(err, "failed to replay evaluations of %s", id)
	}

	sess := &session{
		portfolio:  p,
		translator: tr,
		engine:     geometry.NewEngine(tr, geometry.WithConfig(s.geometry), geometry.WithLogger(s.logger)),
	}
	s.sessions[id] = sess
	s.logger.Debug("Loaded portfolio %s with %d evaluations", id, len(recs))
	return sess, nil
}
