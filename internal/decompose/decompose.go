// Package decompose explains a metric movement between a baseline and a
// current period: the aggregate delta, per-dimension segment contributions,
// and a symmetric behavioral/composition split.
//
// Everything here is a pure function of its inputs. Identical rows and
// thresholds produce an identical Result, which keeps diagnosis output
// reproducible byte for byte.
package decompose

import (
	"math"
	"sort"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/schema"
)

// Below this the behavioral+composition total is treated as zero and the
// split is not attributed.
const mixShiftEpsilon = 1e-10

// Run decomposes the metric's movement across the given dimensions.
// Dimensions are evaluated in the order given; ties on dominance keep the
// earlier dimension, so callers should pass a stable order.
func Run(baseline, current []schema.Row, metric string, dimensions []string, cfg *config.Config) Result {
	res := Result{
		Metric:    metric,
		Aggregate: AggregateDelta(baseline, current, metric, cfg.Thresholds),
	}
	if res.Aggregate.Error != "" {
		return res
	}

	var dominantAbs float64
	for _, dim := range dimensions {
		bd := ByDimension(baseline, current, metric, dim, res.Aggregate.Delta)
		if len(bd.Segments) == 0 {
			continue
		}
		res.Dimensions = append(res.Dimensions, bd)

		top := abs(bd.Dominant().ContributionPct)
		if top > cfg.Thresholds.DrillDownPct {
			res.DrillDownRecommended = true
		}
		if top > dominantAbs {
			dominantAbs = top
			res.DominantDimension = bd.Dimension
		}
	}

	if res.DominantDimension != "" {
		best := res.Breakdown(res.DominantDimension)
		res.ExplainedPct = best.ExplainedPct()
		res.MixShift = ComputeMixShift(baseline, current, metric, res.DominantDimension, cfg.Thresholds)
	} else if len(res.Dimensions) > 0 {
		// Offsetting segment moves can zero out every contribution while
		// the population still shifted underneath. The mix-shift split
		// sees that even when no segment dominates.
		res.MixShift = ComputeMixShift(baseline, current, metric, res.Dimensions[0].Dimension, cfg.Thresholds)
	}
	return res
}

// AggregateDelta computes the top-line movement of the metric.
func AggregateDelta(baseline, current []schema.Row, metric string, th config.Thresholds) Aggregate {
	agg := Aggregate{Metric: metric}

	if len(baseline) == 0 {
		agg.Error = "no baseline rows"
		return agg
	}
	if len(current) == 0 {
		agg.Error = "no current rows"
		return agg
	}

	baseMean := mean(baseline, metric)
	currMean := mean(current, metric)
	agg.BaselineMean = round6(baseMean)
	agg.CurrentMean = round6(currMean)
	agg.Delta = round6(currMean - baseMean)

	if baseMean == 0 {
		agg.Error = "baseline mean is zero, relative change undefined"
		return agg
	}

	relPct := (currMean - baseMean) / baseMean * 100
	agg.RelativePct = round2(relPct)
	agg.Direction = directionOf(currMean - baseMean)
	agg.Severity = SeverityOf(relPct, th)
	return agg
}

// SeverityOf grades an absolute relative percent change into the paging
// bands: P0, P1, P2 or normal.
func SeverityOf(relativePct float64, th config.Thresholds) string {
	a := abs(relativePct)
	switch {
	case a >= th.SeverityP0Pct:
		return "P0"
	case a >= th.SeverityP1Pct:
		return "P1"
	case a >= th.SeverityP2Pct:
		return "P2"
	default:
		return "normal"
	}
}

// ByDimension splits the movement along one dimension. overallDelta is the
// aggregate delta the contribution percentages are relative to.
func ByDimension(baseline, current []schema.Row, metric, dimension string, overallDelta float64) DimensionBreakdown {
	bd := DimensionBreakdown{Dimension: dimension}

	baseGroups := groupBy(baseline, dimension)
	currGroups := groupBy(current, dimension)

	for segment := range baseGroups {
		if _, ok := currGroups[segment]; !ok {
			currGroups[segment] = nil
		}
	}

	for segment, currRows := range currGroups {
		baseRows := baseGroups[segment]
		baseMean := mean(baseRows, metric)
		currMean := mean(currRows, metric)
		delta := currMean - baseMean

		share := 0.0
		if len(current) > 0 {
			share = float64(len(currRows)) / float64(len(current))
		}
		contribution := delta * share

		contributionPct := 0.0
		if overallDelta != 0 {
			contributionPct = contribution / overallDelta * 100
		}

		bd.Segments = append(bd.Segments, SegmentContribution{
			Segment:         segment,
			BaselineMean:    round6(baseMean),
			CurrentMean:     round6(currMean),
			Delta:           round6(delta),
			TrafficSharePct: round1(share * 100),
			Contribution:    round6(contribution),
			ContributionPct: round1(contributionPct),
		})
	}

	sort.Slice(bd.Segments, func(i, j int) bool {
		ai, aj := abs(bd.Segments[i].ContributionPct), abs(bd.Segments[j].ContributionPct)
		if ai != aj {
			return ai > aj
		}
		return bd.Segments[i].Segment < bd.Segments[j].Segment
	})
	return bd
}

// ComputeMixShift splits the movement into behavioral and composition
// components along one dimension, using the symmetric decomposition:
// per segment, mean change is weighted by the average share and share
// change by the average mean.
func ComputeMixShift(baseline, current []schema.Row, metric, dimension string, th config.Thresholds) MixShift {
	ms := MixShift{Dimension: dimension}

	baseGroups := groupBy(baseline, dimension)
	currGroups := groupBy(current, dimension)

	segments := make(map[string]bool)
	for s := range baseGroups {
		segments[s] = true
	}
	for s := range currGroups {
		segments[s] = true
	}

	var behavioral, composition float64
	for segment := range segments {
		baseRows := baseGroups[segment]
		currRows := currGroups[segment]

		shareB, shareC := 0.0, 0.0
		if len(baseline) > 0 {
			shareB = float64(len(baseRows)) / float64(len(baseline))
		}
		if len(current) > 0 {
			shareC = float64(len(currRows)) / float64(len(current))
		}
		meanB := mean(baseRows, metric)
		meanC := mean(currRows, metric)

		behavioral += (meanC - meanB) * (shareB + shareC) / 2
		composition += (shareC - shareB) * (meanB + meanC) / 2
	}

	total := abs(behavioral) + abs(composition)
	if total < mixShiftEpsilon {
		return ms
	}

	mixPct := abs(composition) / total * 100
	ms.Behavioral = round6(behavioral)
	ms.Composition = round6(composition)
	ms.MixPct = round1(mixPct)
	ms.BehavioralPct = 100 - ms.MixPct
	if ms.MixPct >= th.MixShiftDominantPct {
		ms.Flags = append(ms.Flags, FlagMixShiftDominant)
	}
	return ms
}

func groupBy(rows []schema.Row, dimension string) map[string][]schema.Row {
	groups := make(map[string][]schema.Row)
	for _, r := range rows {
		key := r.Dimension(dimension)
		groups[key] = append(groups[key], r)
	}
	return groups
}

func mean(rows []schema.Row, metric string) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += r.Metric(metric)
	}
	return sum / float64(len(rows))
}

func directionOf(delta float64) string {
	switch {
	case delta > 0:
		return "up"
	case delta < 0:
		return "down"
	default:
		return "stable"
	}
}

func abs(v float64) float64 { return math.Abs(v) }

// Rounding keeps serialized results stable across platforms. Means and
// deltas carry 6 decimals, relative percents 2, shares and contribution
// percents 1.
func round6(v float64) float64 { return roundTo(v, 1e6) }
func round2(v float64) float64 { return roundTo(v, 1e2) }
func round1(v float64) float64 { return roundTo(v, 1e1) }

func roundTo(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}
