package decompose

// Aggregate is the top-line movement of a metric between two periods.
type Aggregate struct {
	Metric       string  `json:"metric"`
	BaselineMean float64 `json:"baseline_mean"`
	CurrentMean  float64 `json:"current_mean"`
	Delta        float64 `json:"delta"`
	RelativePct  float64 `json:"relative_pct"`
	Direction    string  `json:"direction"`
	Severity     string  `json:"severity"`

	// Error is set instead of numbers when a period is empty or the
	// baseline mean is zero. Input problems are data, not panics.
	Error string `json:"error,omitempty"`
}

// SegmentContribution is one segment's share of the overall movement.
type SegmentContribution struct {
	Segment         string  `json:"segment"`
	BaselineMean    float64 `json:"baseline_mean"`
	CurrentMean     float64 `json:"current_mean"`
	Delta           float64 `json:"delta"`
	TrafficSharePct float64 `json:"traffic_share_pct"`
	Contribution    float64 `json:"contribution"`
	ContributionPct float64 `json:"contribution_pct"`
}

// DimensionBreakdown decomposes the movement along one dimension.
// Segments are sorted by absolute contribution percent, largest first.
type DimensionBreakdown struct {
	Dimension string                `json:"dimension"`
	Segments  []SegmentContribution `json:"segments"`
}

// Dominant returns the breakdown's largest contributor. Segments are
// pre-sorted, so this is the head of the slice.
func (d DimensionBreakdown) Dominant() *SegmentContribution {
	if len(d.Segments) == 0 {
		return nil
	}
	return &d.Segments[0]
}

// ExplainedPct is the summed absolute contribution percent across the
// breakdown's segments.
func (d DimensionBreakdown) ExplainedPct() float64 {
	var sum float64
	for _, s := range d.Segments {
		sum += abs(s.ContributionPct)
	}
	return round1(sum)
}

// MixShift splits a movement into within-segment (behavioral) change and
// segment-share (composition) change.
type MixShift struct {
	Dimension     string   `json:"dimension"`
	Behavioral    float64  `json:"behavioral"`
	Composition   float64  `json:"composition"`
	MixPct        float64  `json:"mix_pct"`
	BehavioralPct float64  `json:"behavioral_pct"`
	Flags         []string `json:"flags,omitempty"`
}

// Result is the full decomposition of one metric movement.
type Result struct {
	Metric               string               `json:"metric"`
	Aggregate            Aggregate            `json:"aggregate"`
	Dimensions           []DimensionBreakdown `json:"dimensions"`
	MixShift             MixShift             `json:"mix_shift"`
	DominantDimension    string               `json:"dominant_dimension"`
	ExplainedPct         float64              `json:"explained_pct"`
	DrillDownRecommended bool                 `json:"drill_down_recommended"`
}

// Breakdown returns the named dimension's breakdown, or nil.
func (r *Result) Breakdown(dimension string) *DimensionBreakdown {
	for i := range r.Dimensions {
		if r.Dimensions[i].Dimension == dimension {
			return &r.Dimensions[i]
		}
	}
	return nil
}

// FlagMixShiftDominant marks a decomposition whose movement is mostly
// explained by population shift rather than behavior change.
const FlagMixShiftDominant = "mix_shift_dominant"
