package archetype

import (
	"fmt"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/signal"
)

// Classification sources, recorded so a reviewer can tell a matched
// pattern from an inferred one.
const (
	SourceSignature   = "signature_match"
	SourceInferred    = "inferred"
	SourceMixOverride = "mix_shift_override"
)

// Classification resolves a movement to one archetype plus the severity
// after archetype adjustments.
type Classification struct {
	Archetype   Archetype `json:"-"`
	Key         string    `json:"archetype"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Signature   string    `json:"signature,omitempty"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
}

// Classify resolves the matched (or unmatched) co-movement and the
// decomposition to an archetype.
//
// Precedence: an accepted signature match names the archetype; otherwise
// it is inferred from decomposition evidence alone, never by patching the
// rejected match. A dominant mix shift then overrides either outcome,
// including an accepted quiet-period match: a population shift large
// enough to dominate is the story regardless of what the directions
// looked like.
func Classify(match signal.MatchResult, dec *decompose.Result, cfg *config.Config) Classification {
	var a Archetype
	source := SourceInferred
	signature := ""

	if match.Accepted && match.Best != nil {
		a = Lookup(match.Best.Signature)
		source = SourceSignature
		signature = match.Best.Signature
	} else {
		a = infer(dec, cfg)
	}

	if hasFlag(dec, decompose.FlagMixShiftDominant) && a != MixShift {
		a = MixShift
		source = SourceMixOverride
	}

	return Classification{
		Archetype:   a,
		Key:         a.Key(),
		Category:    a.Category(),
		Source:      source,
		Signature:   signature,
		Severity:    AdjustSeverity(a, dec.Aggregate.Severity),
		Description: Describe(a, dec),
	}
}

// infer falls back to decomposition evidence when no signature was
// accepted.
func infer(dec *decompose.Result, cfg *config.Config) Archetype {
	if hasFlag(dec, decompose.FlagMixShiftDominant) {
		return MixShift
	}

	relAbs := dec.Aggregate.RelativePct
	if relAbs < 0 {
		relAbs = -relAbs
	}
	// A movement beyond the metric's noise band is never a false alarm,
	// and neither is one concentrated in a single segment.
	if relAbs <= cfg.Noise.NoisePct(dec.Metric) && !dec.DrillDownRecommended {
		return FalseAlarm
	}

	if dec.DrillDownRecommended && dec.DominantDimension == DimensionAIEnablement {
		return AIAdoption
	}

	return Unknown
}

// AdjustSeverity applies archetype severity policy: positive archetypes
// never page above P2, and a false alarm reports no severity at all.
func AdjustSeverity(a Archetype, severity string) string {
	if a == FalseAlarm {
		return "normal"
	}
	if a.Positive() && (severity == "P0" || severity == "P1") {
		return "P2"
	}
	return severity
}

// Describe renders the archetype's description for this decomposition.
func Describe(a Archetype, dec *decompose.Result) string {
	info := Get(a)
	switch a {
	case RankingRegression, AIAdoption:
		dim, seg := dominantOf(dec)
		return fmt.Sprintf(info.DescriptionTemplate, dec.Metric, dim, seg)
	case MixShift:
		dim := dec.MixShift.Dimension
		if dim == "" {
			dim = dec.DominantDimension
		}
		return fmt.Sprintf(info.DescriptionTemplate, dim, dec.Metric)
	default:
		return fmt.Sprintf(info.DescriptionTemplate, dec.Metric)
	}
}

func dominantOf(dec *decompose.Result) (dimension, segment string) {
	dimension, segment = "unknown", "unknown"
	if dec.DominantDimension == "" {
		return dimension, segment
	}
	dimension = dec.DominantDimension
	if bd := dec.Breakdown(dimension); bd != nil {
		if dom := bd.Dominant(); dom != nil {
			segment = dom.Segment
		}
	}
	return dimension, segment
}
