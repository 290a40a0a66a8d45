package diagnose

import (
	"fmt"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
)

// buildHypothesis names the primary causal statement: the archetype plus
// the dominant dimension and segment carrying the movement.
func buildHypothesis(cls archetype.Classification, dec *decompose.Result) *Hypothesis {
	h := &Hypothesis{
		Archetype: cls.Key,
		Statement: cls.Description,
	}
	if dec.DominantDimension == "" {
		return h
	}
	h.Dimension = dec.DominantDimension
	if bd := dec.Breakdown(dec.DominantDimension); bd != nil {
		if dom := bd.Dominant(); dom != nil {
			h.Segment = dom.Segment
			h.ContributionPct = dom.ContributionPct
		}
	}
	return h
}

// detectMultiCause looks for a second dimension whose dominant segment
// competes with the primary one: dominant enough on its own and within the
// closeness band of the primary. Competitors from dimensions correlated
// with the primary describe the same underlying cause and are suppressed,
// not reported.
func detectMultiCause(dec *decompose.Result, cfg *config.Config) *MultiCause {
	if dec.DominantDimension == "" {
		return nil
	}
	primary := dec.Breakdown(dec.DominantDimension)
	if primary == nil || primary.Dominant() == nil {
		return nil
	}
	primaryAbs := abs(primary.Dominant().ContributionPct)

	mc := &MultiCause{}
	for _, bd := range dec.Dimensions {
		if bd.Dimension == dec.DominantDimension {
			continue
		}
		dom := bd.Dominant()
		if dom == nil {
			continue
		}
		domAbs := abs(dom.ContributionPct)
		if domAbs < cfg.Thresholds.OverlapDominantPct {
			continue
		}
		if primaryAbs-domAbs > cfg.Thresholds.OverlapGapPts {
			continue
		}
		if cfg.DimensionsCorrelated(dec.DominantDimension, bd.Dimension) {
			mc.Suppressed = append(mc.Suppressed, bd.Dimension)
			continue
		}
		mc.Competing = append(mc.Competing, Competitor{
			Dimension:       bd.Dimension,
			Segment:         dom.Segment,
			ContributionPct: dom.ContributionPct,
		})
	}

	if len(mc.Competing) == 0 && len(mc.Suppressed) == 0 {
		return nil
	}
	mc.Detected = len(mc.Competing) > 0
	return mc
}

// buildActionItems assembles the response checklist from the archetype's
// runbook plus the findings of this particular diagnosis. False alarms
// stay action-free by construction.
func buildActionItems(cls archetype.Classification, checks []Check, conf Confidence, dec *decompose.Result) []string {
	if cls.Archetype == archetype.FalseAlarm {
		return nil
	}

	items := append([]string(nil), archetype.Get(cls.Archetype).ActionItems...)

	if dec.DrillDownRecommended && dec.DominantDimension != "" {
		if bd := dec.Breakdown(dec.DominantDimension); bd != nil && bd.Dominant() != nil {
			items = append(items, fmt.Sprintf("Drill into %s=%s, which carries %.1f%% of the movement",
				dec.DominantDimension, bd.Dominant().Segment, bd.Dominant().ContributionPct))
		}
	}

	for _, c := range checks {
		switch c.Status {
		case CheckHalt:
			items = append(items, fmt.Sprintf("Resolve the %s check before acting: %s", c.Name, c.Detail))
		case CheckInvestigate:
			items = append(items, fmt.Sprintf("Investigate the %s finding: %s", c.Name, c.Detail))
		}
	}

	if conf.Level == ConfidenceLow {
		items = append(items, "Gather more evidence before acting, confidence is Low")
	}
	return items
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
