package config

import "github.com/moolen/driftdiag/internal/schema"

// Signature catalog keys. The archetype package resolves these to its
// closed archetype enumeration.
const (
	SignatureRankingRegression = "ranking_relevance_regression"
	SignatureAIAnswersWorking  = "ai_answers_working"
	SignatureNoMovement        = "no_significant_movement"
	SignatureInstrumentation   = "instrumentation_artifact"
)

// Default returns the reference policy. Callers override individual fields
// or load a YAML policy file instead.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			SeverityP0Pct: 5.0,
			SeverityP1Pct: 2.0,
			SeverityP2Pct: 0.5,

			MixShiftDominantPct: 30.0,
			DrillDownPct:        50.0,

			StepChangePct: 2.0,
			StepJumpShare: 0.6,

			MatchAcceptScore: 0.75,
			ZScoreAnomalous:  2.0,

			CompletenessFail: 0.96,
			CompletenessWarn: 0.98,
			FreshnessFailMin: 60,
			FreshnessWarnMin: 30,

			ExplainedPassPct: 90.0,
			ExplainedWarnPct: 70.0,
			ExplainedLowPct:  80.0,
			EvidenceHighMin:  3,
			EvidenceLowBelow: 2,

			PropagationLagDays: 0,

			OverlapDominantPct: 50.0,
			OverlapGapPts:      25.0,

			InvestigatorMaxSubQueries: 5,
			InvestigatorTimeoutSec:    30,
		},
		Noise: NoisePolicy{
			DefaultPct: 2.0,
			PerMetric: map[string]float64{
				schema.MetricClickQuality:  4.0,
				schema.MetricSearchSuccess: 3.0,
				schema.MetricAITrigger:     5.0,
				schema.MetricAISuccess:     5.0,
			},
		},
		Signatures: []Signature{
			{
				Name:      SignatureRankingRegression,
				Archetype: "ranking_regression",
				Expected: map[string]string{
					schema.MetricClickQuality:  "down",
					schema.MetricSearchSuccess: "down",
					schema.MetricAITrigger:     "stable",
					schema.MetricAISuccess:     "stable",
				},
			},
			{
				Name:      SignatureAIAnswersWorking,
				Archetype: "ai_adoption",
				Expected: map[string]string{
					schema.MetricClickQuality:  "down",
					schema.MetricSearchSuccess: "stable_or_up",
					schema.MetricAITrigger:     "up",
					schema.MetricAISuccess:     "up",
				},
			},
			{
				// A genuine quiet period. Anything short of a perfect
				// match must not resolve to this signature.
				Name:       SignatureNoMovement,
				Archetype:  "false_alarm",
				ExactMatch: true,
				Expected: map[string]string{
					schema.MetricClickQuality:  "stable",
					schema.MetricSearchSuccess: "stable",
					schema.MetricAITrigger:     "stable",
					schema.MetricAISuccess:     "stable",
				},
			},
			{
				// Every tracked metric dropping at once points at the
				// collection pipeline, not user behavior.
				Name:      SignatureInstrumentation,
				Archetype: "data_quality",
				Expected: map[string]string{
					schema.MetricClickQuality:  "down",
					schema.MetricSearchSuccess: "down",
					schema.MetricAITrigger:     "down",
					schema.MetricAISuccess:     "down",
				},
			},
		},
		CorrelatedDimensions: [][]string{
			{"ai_enablement", "tenant_tier"},
		},
	}
}
