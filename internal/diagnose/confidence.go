package diagnose

import (
	"fmt"
	"strings"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
)

// computeConfidence grades the diagnosis. High demands everything at once:
// clean checks, a well-explained decomposition, enough independent
// evidence and a precedented pattern. Low triggers on any single weak leg.
func computeConfidence(checks []Check, dec *decompose.Result, cls archetype.Classification, th config.Thresholds) Confidence {
	evidence := countEvidence(dec, th)
	explained := dec.ExplainedPct
	nonPass := countNonPass(checks)
	precedent := cls.Source == archetype.SourceSignature

	conf := Confidence{EvidenceCount: evidence}

	switch {
	case nonPass == 0 && explained >= th.ExplainedPassPct && evidence >= th.EvidenceHighMin && precedent:
		conf.Level = ConfidenceHigh
	case evidence < th.EvidenceLowBelow || explained < th.ExplainedLowPct || nonPass >= 2:
		conf.Level = ConfidenceLow
	default:
		conf.Level = ConfidenceMedium
	}

	conf.WouldUpgradeIf = upgradePath(conf.Level, checks, explained, evidence, precedent, th)
	conf.WouldDowngradeIf = downgradePath(conf.Level, th)
	return conf
}

// countEvidence counts the independent supporting evidence lines: a
// drill-down-worthy concentration, a behaviorally driven movement, and a
// severity outside normal variation.
func countEvidence(dec *decompose.Result, th config.Thresholds) int {
	n := 0
	if dec.DrillDownRecommended {
		n++
	}
	if dec.MixShift.MixPct < th.MixShiftDominantPct {
		n++
	}
	switch dec.Aggregate.Severity {
	case "P0", "P1", "P2":
		n++
	}
	return n
}

func upgradePath(level string, checks []Check, explained float64, evidence int, precedent bool, th config.Thresholds) string {
	if level == ConfidenceHigh {
		return "already at the highest level"
	}

	var missing []string
	if countNonPass(checks) > 0 {
		missing = append(missing, "all validation checks pass")
	}
	if explained < th.ExplainedPassPct {
		missing = append(missing, fmt.Sprintf("the best dimension explained at least %.0f%% (currently %.1f%%)", th.ExplainedPassPct, explained))
	}
	if evidence < th.EvidenceHighMin {
		missing = append(missing, fmt.Sprintf("at least %d evidence lines (currently %d)", th.EvidenceHighMin, evidence))
	}
	if !precedent {
		missing = append(missing, "a matched signature rather than an inferred pattern")
	}
	if len(missing) == 0 {
		return "no single condition is missing"
	}
	return strings.Join(missing, ", and ")
}

func downgradePath(level string, th config.Thresholds) string {
	switch level {
	case ConfidenceLow:
		return "already at the lowest level"
	case ConfidenceMedium:
		return fmt.Sprintf("evidence falling below %d lines, explained dropping below %.0f%%, or a second check regressing", th.EvidenceLowBelow, th.ExplainedLowPct)
	default:
		return "any validation check regressing from PASS, or evidence thinning"
	}
}

// applyCompositionalFloor keeps a diagnosed mix shift with a genuinely
// dominant compositional component from reporting Low: the mix evidence
// itself is strong evidence.
func applyCompositionalFloor(conf Confidence, cls archetype.Classification, dec *decompose.Result, th config.Thresholds) Confidence {
	if cls.Archetype == archetype.MixShift && dec.MixShift.MixPct >= th.MixShiftDominantPct && conf.Level == ConfidenceLow {
		conf.Level = ConfidenceMedium
	}
	return conf
}

// capConfidence lowers the level to at most the given cap.
func capConfidence(conf Confidence, cap string) Confidence {
	rank := map[string]int{ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2}
	if rank[conf.Level] > rank[cap] {
		conf.Level = cap
	}
	return conf
}
