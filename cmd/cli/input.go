package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goportfolio/domain/evaluation"
	"goportfolio/internal/testkit"
	"goportfolio/internal/translator"

	"gopkg.in/yaml.v3"
)

// portfolioFile is the CLI's input document. JSON and YAML share the
// same shape; a translator export is also accepted.
type portfolioFile struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Projects    []string          `json:"projects" yaml:"projects"`
	Criteria    []string          `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Epsilon     float64           `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
	Evaluations []evaluation.Spec `json:"evaluations" yaml:"evaluations"`
}

func loadPortfolioFile(path string) (*portfolioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var in portfolioFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &in, nil
}

// translator builds a translator holding every evaluation of the file
func (p *portfolioFile) translator(epsilon float64) (*translator.Translator, error) {
	eps := p.Epsilon
	if epsilon > 0 {
		eps = epsilon
	}
	return translator.Import(translator.Document{
		Projects:    p.Projects,
		Criteria:    p.Criteria,
		Epsilon:     eps,
		Evaluations: p.Evaluations,
	}, translator.WithLogger(logger))
}

// referenceFile is the built-in reference scenario as an input document
func referenceFile() *portfolioFile {
	return &portfolioFile{
		Name:        "reference",
		Projects:    append([]string(nil), testkit.ReferenceProjects...),
		Criteria:    append([]string(nil), testkit.ReferenceCriteria...),
		Epsilon:     translator.DefaultEpsilon,
		Evaluations: testkit.ReferenceSpecs(),
	}
}

