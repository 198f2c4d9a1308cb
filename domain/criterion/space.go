// Package criterion defines the variable indexing scheme shared by the
// translator, validator and geometry engine.
//
// A Space holds an ordered list of projects (n) and criteria (m). Variable
// x[i*m+j] is the value of project i on criterion j. Once a translator has
// accepted its first record the space is frozen and every mutation is
// rejected with an IndexError.
package criterion

import (
	"fmt"
	"strings"
	"sync"

	"goportfolio/domain/core"
)

// DefaultCriterion is used when a space is created without criteria
const DefaultCriterion = "value"

// Space is the ordered project x criterion index
type Space struct {
	mu           sync.RWMutex
	projects     []string
	criteria     []string
	projectIndex map[string]int
	criterionIdx map[string]int
	frozen       bool
}

// NewSpace creates a space. An empty criteria list yields the single
// default criterion "value". Duplicate or blank identifiers are rejected.
func NewSpace(projects []string, criteria []string) (*Space, error) {
	if len(criteria) == 0 {
		criteria = []string{DefaultCriterion}
	}
	s := &Space{
		projectIndex: make(map[string]int, len(projects)),
		criterionIdx: make(map[string]int, len(criteria)),
	}
	for _, p := range projects {
		if err := s.addProject(p); err != nil {
			return nil, err
		}
	}
	for _, c := range criteria {
		if err := s.addCriterion(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSpace is NewSpace that panics on error; intended for fixtures.
func MustSpace(projects []string, criteria []string) *Space {
	s, err := NewSpace(projects, criteria)
	if err != nil {
		panic(err)
	}
	return s
}

// AddProject appends a project at the next index
func (s *Space) AddProject(project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return core.NewFrozenSpaceError("project", project)
	}
	return s.addProject(project)
}

// AddCriterion appends a criterion. Adding a criterion changes m and with it
// every variable index, so it is rejected on a frozen space.
func (s *Space) AddCriterion(criterion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return core.NewFrozenSpaceError("criterion", criterion)
	}
	return s.addCriterion(criterion)
}

func (s *Space) addProject(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return core.NewStructuralError("", "projects", p, "project identifier cannot be empty")
	}
	if _, dup := s.projectIndex[p]; dup {
		return core.NewStructuralError("", "projects", p, "duplicate project identifier")
	}
	s.projectIndex[p] = len(s.projects)
	s.projects = append(s.projects, p)
	return nil
}

func (s *Space) addCriterion(c string) error {
	c = strings.TrimSpace(c)
	if c == "" {
		return core.NewStructuralError("", "criteria", c, "criterion name cannot be empty")
	}
	if _, dup := s.criterionIdx[c]; dup {
		return core.NewStructuralError("", "criteria", c, "duplicate criterion name")
	}
	s.criterionIdx[c] = len(s.criteria)
	s.criteria = append(s.criteria, c)
	return nil
}

// Freeze fixes the indices for the lifetime of the space
func (s *Space) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether mutations are rejected
func (s *Space) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Projects returns a copy of the ordered project list
func (s *Space) Projects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.projects...)
}

// Criteria returns a copy of the ordered criterion list
func (s *Space) Criteria() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.criteria...)
}

// NumProjects returns n
func (s *Space) NumProjects() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// NumCriteria returns m
func (s *Space) NumCriteria() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.criteria)
}

// NumVariables returns n*m
func (s *Space) NumVariables() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects) * len(s.criteria)
}

// HasProject reports whether the project is registered
func (s *Space) HasProject(project string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.projectIndex[project]
	return ok
}

// HasCriterion reports whether the criterion is registered
func (s *Space) HasCriterion(criterion string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.criterionIdx[criterion]
	return ok
}

// Index returns the flattened variable index of (project, criterion)
func (s *Space) Index(project, criterion string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.projectIndex[project]
	if !ok {
		return 0, false
	}
	j, ok := s.criterionIdx[criterion]
	if !ok {
		return 0, false
	}
	return i*len(s.criteria) + j, true
}

// Variable splits a flattened index back into (project, criterion)
func (s *Space) Variable(index int) (string, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := len(s.criteria)
	if index < 0 || m == 0 || index >= len(s.projects)*m {
		return "", "", false
	}
	return s.projects[index/m], s.criteria[index%m], true
}

// VariableNames returns "project_criterion" for every variable in index order
func (s *Space) VariableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.projects)*len(s.criteria))
	for _, p := range s.projects {
		for _, c := range s.criteria {
			names = append(names, VariableName(p, c))
		}
	}
	return names
}

// VariableName formats the display name of one variable
func VariableName(project, criterion string) string {
	return fmt.Sprintf("%s_%s", project, criterion)
}

// Layout is an immutable copy of a space's indexing, safe to share with
// computations that must not observe later mutations.
type Layout struct {
	Projects  []string `json:"projects" yaml:"projects"`
	Criteria  []string `json:"criteria" yaml:"criteria"`
	Variables []string `json:"variables" yaml:"variables"`
}

// Layout snapshots the current indexing
func (s *Space) Layout() Layout {
	return Layout{
		Projects:  s.Projects(),
		Criteria:  s.Criteria(),
		Variables: s.VariableNames(),
	}
}

// Dimensions returns n*m for the layout
func (l Layout) Dimensions() int {
	return len(l.Projects) * len(l.Criteria)
}
