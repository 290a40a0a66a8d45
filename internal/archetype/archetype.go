// Package archetype enumerates the closed set of root-cause archetypes a
// diagnosis may resolve to and maps matched signatures onto them.
//
// The set is deliberately a compile-time enumeration, not configuration:
// downstream consumers (alert routing, runbooks) switch over these values
// and must be able to trust the set is exhaustive.
package archetype

import (
	"github.com/moolen/driftdiag/internal/decompose"
)

// Archetype identifies one root-cause family.
type Archetype int

const (
	// Unknown covers movements no signature or inference explains.
	Unknown Archetype = iota
	// RankingRegression is a genuine relevance regression in ranking.
	RankingRegression
	// AIAdoption is users shifting to AI answers, a positive movement
	// that depresses click metrics.
	AIAdoption
	// MixShift is a population composition change, not a behavior change.
	MixShift
	// FalseAlarm is normal noise misread as a movement.
	FalseAlarm
	// DataQuality is a collection or instrumentation problem.
	DataQuality
)

// Categories group archetypes by how a responder should treat them.
const (
	CategoryRegression    = "regression"
	CategoryPositive      = "positive"
	CategoryCompositional = "compositional"
	CategoryDataQuality   = "data_quality"
	CategoryUnknown       = "unknown"
)

// Info is the static description of one archetype.
type Info struct {
	Key                 string
	Category            string
	DescriptionTemplate string
	ActionItems         []string

	// ConfirmsIf and RejectsIf are evidence predicates over the
	// decomposition. They feed the hypothesis builder and the coherence
	// verifier; neither ever mutates a classification on its own.
	ConfirmsIf func(dec *decompose.Result) bool
	RejectsIf  func(dec *decompose.Result) bool
}

// DimensionAIEnablement is the dimension that separates AI-enabled
// populations from the rest. Adoption archetypes expect their dominant
// movement here.
const DimensionAIEnablement = "ai_enablement"

var infos = map[Archetype]Info{
	Unknown: {
		Key:                 "unknown",
		Category:            CategoryUnknown,
		DescriptionTemplate: "Movement in %s does not match any known pattern",
		ActionItems: []string{
			"Review the observed metric directions against recent launches",
			"Escalate to the metrics owner for manual investigation",
		},
	},
	RankingRegression: {
		Key:                 "ranking_regression",
		Category:            CategoryRegression,
		DescriptionTemplate: "Ranking relevance regression in %s, concentrated in %s=%s",
		ActionItems: []string{
			"Check ranking model deploys in the affected window",
			"Compare result quality samples for the dominant segment",
			"Consider rolling back the latest ranking change",
		},
		ConfirmsIf: func(dec *decompose.Result) bool {
			return dec.DrillDownRecommended && dec.DominantDimension != DimensionAIEnablement
		},
		RejectsIf: func(dec *decompose.Result) bool {
			return hasFlag(dec, decompose.FlagMixShiftDominant)
		},
	},
	AIAdoption: {
		Key:                 "ai_adoption",
		Category:            CategoryPositive,
		DescriptionTemplate: "AI answer adoption is absorbing %s traffic, led by %s=%s",
		ActionItems: []string{
			"Confirm AI answer success metrics moved up alongside",
			"Annotate dashboards so the drop is not re-triaged",
		},
		ConfirmsIf: func(dec *decompose.Result) bool {
			return dec.DominantDimension == DimensionAIEnablement
		},
	},
	MixShift: {
		Key:                 "mix_shift",
		Category:            CategoryCompositional,
		DescriptionTemplate: "Population mix shift along %s explains the %s movement",
		ActionItems: []string{
			"Identify what changed the traffic mix (campaign, rollout, seasonality)",
			"Re-baseline the metric on the new population",
		},
		ConfirmsIf: func(dec *decompose.Result) bool {
			return hasFlag(dec, decompose.FlagMixShiftDominant)
		},
	},
	FalseAlarm: {
		Key:                 "false_alarm",
		Category:            CategoryPositive,
		DescriptionTemplate: "Movement in %s is within normal variation",
		// A false alarm must stay action-free. The coherence verifier
		// enforces this.
		ActionItems: nil,
		RejectsIf: func(dec *decompose.Result) bool {
			return dec.Aggregate.Severity != "normal"
		},
	},
	DataQuality: {
		Key:                 "data_quality",
		Category:            CategoryDataQuality,
		DescriptionTemplate: "Data collection problem suspected for %s",
		ActionItems: []string{
			"Check the ingestion pipeline for drops or delays",
			"Verify instrumentation changes shipped in the window",
		},
	},
}

// Lookup resolves a signature key from the catalog to its archetype.
// Unrecognized keys resolve to Unknown rather than erroring: the catalog
// is configuration, the enumeration is not.
func Lookup(signatureKey string) Archetype {
	switch signatureKey {
	case "ranking_relevance_regression", "ranking_regression":
		return RankingRegression
	case "ai_answers_working", "ai_adoption":
		return AIAdoption
	case "mix_shift":
		return MixShift
	case "no_significant_movement", "false_alarm":
		return FalseAlarm
	case "instrumentation_artifact", "data_quality":
		return DataQuality
	default:
		return Unknown
	}
}

// Get returns the static info for an archetype.
func Get(a Archetype) Info {
	if info, ok := infos[a]; ok {
		return info
	}
	return infos[Unknown]
}

// Key returns the archetype's stable string key for serialization.
func (a Archetype) Key() string { return Get(a).Key }

// Category returns the archetype's responder category.
func (a Archetype) Category() string { return Get(a).Category }

// Positive reports whether the archetype describes a benign movement.
func (a Archetype) Positive() bool { return Get(a).Category == CategoryPositive }

func (a Archetype) String() string { return a.Key() }

func hasFlag(dec *decompose.Result, flag string) bool {
	for _, f := range dec.MixShift.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
