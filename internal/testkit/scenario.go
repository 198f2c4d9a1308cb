// Package testkit provides fixtures shared by tests, the CLI scenario
// command and the demo API seed.
package testkit

import (
	"fmt"
	"time"

	"goportfolio/domain/core"
	"goportfolio/domain/criterion"
	"goportfolio/domain/evaluation"
)

// Reference scenario criteria
const (
	StrategicValue      = "strategic_value"
	TechnicalComplexity = "technical_complexity"
	ResourceRequirement = "resource_requirement"
	MarketImpact        = "market_impact"
)

// ReferenceProjects are the sixteen ecosystem projects of the reference
// portfolio, in space order.
var ReferenceProjects = []string{
	"LOGOS_CORE_001",
	"LOGOS_CODEX_001",
	"LOGOS_NOMOS_001",
	"LOGOS_WAKU_001",
	"NIMBUS_ETH2_001",
	"NIMBUS_ETH1_001",
	"NIMBUS_LIGHT_001",
	"NIMBUS_PORTAL_001",
	"STATUS_APP_001",
	"STATUS_DESKTOP_001",
	"STATUS_KEYCARD_001",
	"STATUS_NETWORK_001",
	"VAC_RESEARCH_001",
	"VAC_ZEROKNOWLEDGE_001",
	"IFT_FINANCE_001",
	"IFT_GOVERNANCE_001",
}

// ReferenceCriteria are the four criteria of the reference portfolio
var ReferenceCriteria = []string{StrategicValue, TechnicalComplexity, ResourceRequirement, MarketImpact}

// ReferenceConstraintCount is the number of rows the reference evaluations
// translate to: 17 inequalities and 1 equality.
const ReferenceConstraintCount = 18

var referenceTime = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// ReferenceSpecs returns the twelve stakeholder evaluations of the
// reference portfolio with fixed ids and timestamps.
func ReferenceSpecs() []evaluation.Spec {
	conf := func(v float64) *float64 { return &v }
	specs := []evaluation.Spec{
		{
			EvaluatorID: "CEO_Logos",
			Type:        evaluation.TypeRanking,
			Projects:    []string{"LOGOS_CORE_001", "STATUS_APP_001", "NIMBUS_ETH2_001", "IFT_FINANCE_001"},
			Confidence:  conf(0.95),
			Criterion:   StrategicValue,
			Metadata:    map[string]string{"role": "executive", "focus": "strategic_alignment"},
		},
		{
			EvaluatorID: "CEO_Logos",
			Type:        evaluation.TypeThreshold,
			Projects:    []string{"STATUS_NETWORK_001"},
			Operator:    evaluation.OpGreaterEqual,
			Values:      []float64{0.85},
			Confidence:  conf(0.90),
			Criterion:   StrategicValue,
			Metadata:    map[string]string{"role": "executive", "rationale": "critical_for_ecosystem"},
		},
		{
			EvaluatorID: "CTO_Technical",
			Type:        evaluation.TypeComparison,
			Projects:    []string{"VAC_RESEARCH_001", "LOGOS_NOMOS_001"},
			Operator:    evaluation.OpGreater,
			Confidence:  conf(0.85),
			Criterion:   TechnicalComplexity,
			Metadata:    map[string]string{"role": "technical", "focus": "innovation"},
		},
		{
			EvaluatorID: "CTO_Technical",
			Type:        evaluation.TypeRange,
			Projects:    []string{"NIMBUS_LIGHT_001"},
			Values:      []float64{0.6, 0.8},
			Confidence:  conf(0.80),
			Criterion:   TechnicalComplexity,
			Metadata:    map[string]string{"role": "technical", "rationale": "moderate_complexity"},
		},
		{
			EvaluatorID: "CFO_Finance",
			Type:        evaluation.TypeComparison,
			Projects:    []string{"STATUS_NETWORK_001", "STATUS_KEYCARD_001"},
			Operator:    evaluation.OpGreater,
			Confidence:  conf(0.90),
			Criterion:   ResourceRequirement,
			Metadata:    map[string]string{"role": "financial", "focus": "resource_optimization"},
		},
		{
			EvaluatorID: "CFO_Finance",
			Type:        evaluation.TypeThreshold,
			Projects:    []string{"LOGOS_WAKU_001"},
			Operator:    evaluation.OpLessEqual,
			Values:      []float64{0.75},
			Confidence:  conf(0.85),
			Criterion:   ResourceRequirement,
			Metadata:    map[string]string{"role": "financial", "rationale": "budget_constraint"},
		},
		{
			EvaluatorID: "PM_Product",
			Type:        evaluation.TypeRanking,
			Projects:    []string{"STATUS_APP_001", "NIMBUS_ETH2_001", "IFT_FINANCE_001"},
			Confidence:  conf(0.88),
			Criterion:   MarketImpact,
			Metadata:    map[string]string{"role": "product", "focus": "user_adoption"},
		},
		{
			EvaluatorID: "PM_Product",
			Type:        evaluation.TypeRange,
			Projects:    []string{"NIMBUS_PORTAL_001"},
			Values:      []float64{0.7, 0.8},
			Confidence:  conf(0.75),
			Criterion:   MarketImpact,
			Metadata:    map[string]string{"role": "product", "rationale": "niche_but_important"},
		},
		{
			EvaluatorID: "Research_Director",
			Type:        evaluation.TypeComparison,
			Projects:    []string{"VAC_ZEROKNOWLEDGE_001", "VAC_RESEARCH_001"},
			Operator:    evaluation.OpEqual,
			Confidence:  conf(0.92),
			Criterion:   TechnicalComplexity,
			Metadata:    map[string]string{"role": "research", "focus": "breakthrough_potential"},
		},
		{
			EvaluatorID: "Research_Director",
			Type:        evaluation.TypeThreshold,
			Projects:    []string{"LOGOS_NOMOS_001"},
			Operator:    evaluation.OpGreaterEqual,
			Values:      []float64{0.90},
			Confidence:  conf(0.88),
			Criterion:   TechnicalComplexity,
			Metadata:    map[string]string{"role": "research", "rationale": "novel_consensus"},
		},
		{
			EvaluatorID: "Community_Rep",
			Type:        evaluation.TypeComparison,
			Projects:    []string{"STATUS_APP_001", "STATUS_DESKTOP_001"},
			Operator:    evaluation.OpGreater,
			Confidence:  conf(0.80),
			Criterion:   MarketImpact,
			Metadata:    map[string]string{"role": "community", "focus": "user_experience"},
		},
		{
			EvaluatorID: "Community_Rep",
			Type:        evaluation.TypeRanking,
			Projects:    []string{"LOGOS_WAKU_001", "STATUS_KEYCARD_001", "NIMBUS_LIGHT_001"},
			Confidence:  conf(0.75),
			Criterion:   StrategicValue,
			Metadata:    map[string]string{"role": "community", "focus": "ecosystem_value"},
		},
	}
	for i := range specs {
		specs[i].ID = core.ID(fmt.Sprintf("ref-eval-%02d", i+1))
		specs[i].Timestamp = core.NewTimestamp(referenceTime.Add(time.Duration(i) * time.Minute))
	}
	return specs
}

// ReferenceScenario returns a fresh unfrozen space and the validated
// reference records.
func ReferenceScenario() (*criterion.Space, []*evaluation.Record) {
	space := criterion.MustSpace(ReferenceProjects, ReferenceCriteria)
	specs := ReferenceSpecs()
	recs := make([]*evaluation.Record, 0, len(specs))
	for _, s := range specs {
		recs = append(recs, MustRecord(s))
	}
	return space, recs
}

// MustRecord validates spec and panics on error
func MustRecord(spec evaluation.Spec) *evaluation.Record {
	rec, err := evaluation.New(spec)
	if err != nil {
		panic(err)
	}
	return rec
}
