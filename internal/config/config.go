// Package config carries every tunable of the diagnosis pipeline as named,
// overridable fields. Components receive a Config value explicitly; nothing
// reads thresholds from globals or inline literals.
package config

import "fmt"

// Thresholds holds all numeric policy knobs. The zero value is invalid;
// start from Default() and override individual fields, or load a YAML
// policy file with Load.
type Thresholds struct {
	// Severity bands on the absolute relative delta percent.
	SeverityP0Pct float64 `yaml:"severity_p0_pct"`
	SeverityP1Pct float64 `yaml:"severity_p1_pct"`
	SeverityP2Pct float64 `yaml:"severity_p2_pct"`

	// Mix-shift percent at which composition is flagged dominant.
	MixShiftDominantPct float64 `yaml:"mix_shift_dominant_pct"`

	// Absolute contribution percent above which a single segment warrants
	// a drill-down.
	DrillDownPct float64 `yaml:"drill_down_pct"`

	// Step-change detection: minimum day-over-day percent change, and the
	// share of the overall level shift a single day must account for.
	StepChangePct float64 `yaml:"step_change_pct"`
	StepJumpShare float64 `yaml:"step_jump_share"`

	// Minimum signature match score (fraction of fields agreeing) for a
	// co-movement match to be accepted.
	MatchAcceptScore float64 `yaml:"match_accept_score"`

	// Baseline z-score beyond which a value is anomalous.
	ZScoreAnomalous float64 `yaml:"zscore_anomalous"`

	// Trust gate boundaries. Completeness is a 0..1 fraction, freshness a
	// lag in minutes. Warn boundaries must be stricter than fail.
	CompletenessFail float64 `yaml:"completeness_fail"`
	CompletenessWarn float64 `yaml:"completeness_warn"`
	FreshnessFailMin float64 `yaml:"freshness_fail_min"`
	FreshnessWarnMin float64 `yaml:"freshness_warn_min"`

	// Validation: explained percent boundaries for the decomposition
	// completeness check, and the confidence grading bands.
	ExplainedPassPct float64 `yaml:"explained_pass_pct"`
	ExplainedWarnPct float64 `yaml:"explained_warn_pct"`
	ExplainedLowPct  float64 `yaml:"explained_low_pct"`
	EvidenceHighMin  int     `yaml:"evidence_high_min"`
	EvidenceLowBelow int     `yaml:"evidence_low_below"`

	// Days a cause is allowed to precede its visible metric effect in the
	// temporal consistency check.
	PropagationLagDays int `yaml:"propagation_lag_days"`

	// Multi-cause overlap: a second dimension competes when its dominant
	// segment reaches OverlapDominantPct and sits within OverlapGapPts of
	// the primary dimension's.
	OverlapDominantPct float64 `yaml:"overlap_dominant_pct"`
	OverlapGapPts      float64 `yaml:"overlap_gap_pts"`

	// Investigator budget. Timeout or exhaustion reads as rejection.
	InvestigatorMaxSubQueries int `yaml:"investigator_max_sub_queries"`
	InvestigatorTimeoutSec    int `yaml:"investigator_timeout_sec"`
}

// NoisePolicy bounds how large a relative movement may be while still
// qualifying as a false alarm, per metric.
type NoisePolicy struct {
	// DefaultPct applies to metrics without an explicit entry.
	DefaultPct float64            `yaml:"default_pct"`
	PerMetric  map[string]float64 `yaml:"per_metric"`
}

// NoisePct returns the noise band for the named metric.
func (n NoisePolicy) NoisePct(metric string) float64 {
	if v, ok := n.PerMetric[metric]; ok {
		return v
	}
	return n.DefaultPct
}

// Signature describes one known co-movement pattern: the direction each
// metric is expected to take, and the archetype key a match resolves to.
type Signature struct {
	Name      string `yaml:"name"`
	Archetype string `yaml:"archetype"`

	// Expected maps canonical metric names to a direction: "up", "down",
	// "stable", or a compound like "stable_or_up".
	Expected map[string]string `yaml:"expected"`

	// ExactMatch signatures are only accepted on a full-score match,
	// regardless of the global acceptance threshold.
	ExactMatch bool `yaml:"exact_match"`
}

// Config is the full immutable policy: thresholds, noise bands, the
// signature catalog and the dimension correlation table.
type Config struct {
	Thresholds Thresholds  `yaml:"thresholds"`
	Noise      NoisePolicy `yaml:"noise"`
	Signatures []Signature `yaml:"signatures"`

	// CorrelatedDimensions lists dimension pairs whose dominant segments
	// describe the same underlying cause. Comparable contributions across
	// a correlated pair never count as a multi-cause overlap.
	CorrelatedDimensions [][]string `yaml:"correlated_dimensions"`
}

// DimensionsCorrelated reports whether two dimensions appear together in
// the correlation table, in either order.
func (c *Config) DimensionsCorrelated(a, b string) bool {
	for _, pair := range c.CorrelatedDimensions {
		if len(pair) != 2 {
			continue
		}
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// Signature returns the named signature from the catalog, or nil.
func (c *Config) Signature(name string) *Signature {
	for i := range c.Signatures {
		if c.Signatures[i].Name == name {
			return &c.Signatures[i]
		}
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	t := c.Thresholds

	if !(t.SeverityP0Pct > t.SeverityP1Pct && t.SeverityP1Pct > t.SeverityP2Pct && t.SeverityP2Pct > 0) {
		return NewConfigError("severity bands must satisfy p0 > p1 > p2 > 0")
	}
	if t.MixShiftDominantPct <= 0 || t.MixShiftDominantPct > 100 {
		return NewConfigError("MixShiftDominantPct must be in (0, 100]")
	}
	if t.MatchAcceptScore <= 0 || t.MatchAcceptScore > 1 {
		return NewConfigError("MatchAcceptScore must be in (0, 1]")
	}
	if t.CompletenessWarn < t.CompletenessFail {
		return NewConfigError("CompletenessWarn must be at least CompletenessFail")
	}
	if t.FreshnessWarnMin > t.FreshnessFailMin {
		return NewConfigError("FreshnessWarnMin must be at most FreshnessFailMin")
	}
	if t.ExplainedPassPct < t.ExplainedWarnPct {
		return NewConfigError("ExplainedPassPct must be at least ExplainedWarnPct")
	}
	if t.EvidenceHighMin < t.EvidenceLowBelow {
		return NewConfigError("EvidenceHighMin must be at least EvidenceLowBelow")
	}
	if t.PropagationLagDays < 0 {
		return NewConfigError("PropagationLagDays must not be negative")
	}
	if t.InvestigatorMaxSubQueries < 1 {
		return NewConfigError("InvestigatorMaxSubQueries must be at least 1")
	}
	if t.InvestigatorTimeoutSec < 1 {
		return NewConfigError("InvestigatorTimeoutSec must be at least 1")
	}

	if len(c.Signatures) == 0 {
		return NewConfigError("signature catalog must not be empty")
	}
	seen := make(map[string]bool, len(c.Signatures))
	for _, sig := range c.Signatures {
		if sig.Name == "" {
			return NewConfigError("signature name must not be empty")
		}
		if seen[sig.Name] {
			return NewConfigError(fmt.Sprintf("duplicate signature name %q", sig.Name))
		}
		seen[sig.Name] = true
		if sig.Archetype == "" {
			return NewConfigError(fmt.Sprintf("signature %q must name an archetype", sig.Name))
		}
		if len(sig.Expected) == 0 {
			return NewConfigError(fmt.Sprintf("signature %q must expect at least one field", sig.Name))
		}
	}

	for _, pair := range c.CorrelatedDimensions {
		if len(pair) != 2 {
			return NewConfigError("correlated_dimensions entries must be pairs")
		}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
