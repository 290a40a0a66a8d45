package diagnose

import (
	"fmt"

	"github.com/moolen/driftdiag/internal/archetype"
)

// Coherence check names. Each looks for a self-contradiction in the
// finished diagnosis.
const (
	CoherenceArchetypeSegment = "archetype_segment_consistency"
	CoherenceSeverityAction   = "severity_action_consistency"
	CoherenceConfidenceCheck  = "confidence_check_consistency"
	CoherenceFalseAlarm       = "false_alarm_coherence"
	CoherenceMultiCause       = "multi_cause_confidence_consistency"
)

// Warning severities. A coherence finding is advisory; "error" marks a
// contradiction a reviewer must resolve, it still never blocks output.
const (
	WarningSeverityWarning = "warning"
	WarningSeverityError   = "error"
)

// Verify runs the advisory coherence assertions over a finished diagnosis.
// It returns findings in a fixed check order and never mutates the
// diagnosis.
func Verify(d *Diagnosis) []Warning {
	var warnings []Warning
	warnings = append(warnings, verifyArchetypeSegment(d)...)
	warnings = append(warnings, verifySeverityActions(d)...)
	warnings = append(warnings, verifyConfidenceChecks(d)...)
	warnings = append(warnings, verifyFalseAlarm(d)...)
	warnings = append(warnings, verifyMultiCause(d)...)
	return warnings
}

// verifyArchetypeSegment cross-checks the archetype against where the
// movement actually concentrated.
func verifyArchetypeSegment(d *Diagnosis) []Warning {
	dim := d.Decomposition.DominantDimension
	if dim == "" {
		return nil
	}

	switch d.Archetype.Archetype {
	case archetype.AIAdoption:
		if dim != archetype.DimensionAIEnablement {
			return []Warning{{
				Check:    CoherenceArchetypeSegment,
				Severity: WarningSeverityWarning,
				Message:  fmt.Sprintf("adoption archetype but the movement concentrates in %q, not %q", dim, archetype.DimensionAIEnablement),
			}}
		}
	case archetype.RankingRegression:
		if dim == archetype.DimensionAIEnablement {
			return []Warning{{
				Check:    CoherenceArchetypeSegment,
				Severity: WarningSeverityWarning,
				Message:  "regression archetype but the movement concentrates in the AI enablement dimension",
			}}
		}
	}
	return nil
}

// verifySeverityActions: a paging severity with nothing to do is a broken
// runbook; a normal severity with a task list is alarm fatigue.
func verifySeverityActions(d *Diagnosis) []Warning {
	switch d.Severity {
	case "P0", "P1":
		if len(d.ActionItems) == 0 {
			return []Warning{{
				Check:    CoherenceSeverityAction,
				Severity: WarningSeverityError,
				Message:  fmt.Sprintf("severity %s diagnosis carries no action items", d.Severity),
			}}
		}
	case "normal":
		if len(d.ActionItems) > 0 {
			return []Warning{{
				Check:    CoherenceSeverityAction,
				Severity: WarningSeverityWarning,
				Message:  "normal severity diagnosis still carries action items",
			}}
		}
	}
	return nil
}

// verifyConfidenceChecks: High confidence over a halted check is a
// contradiction, except for a false alarm, where the halted check is
// itself the explanation.
func verifyConfidenceChecks(d *Diagnosis) []Warning {
	if d.Confidence.Level != ConfidenceHigh {
		return nil
	}
	if d.Archetype.Archetype == archetype.FalseAlarm {
		return nil
	}
	if anyStatus(d.Checks, CheckHalt) {
		return []Warning{{
			Check:    CoherenceConfidenceCheck,
			Severity: WarningSeverityError,
			Message:  "High confidence despite a halted validation check",
		}}
	}
	return nil
}

// verifyFalseAlarm: a false alarm must read as benign end to end.
func verifyFalseAlarm(d *Diagnosis) []Warning {
	if d.Archetype.Archetype != archetype.FalseAlarm {
		return nil
	}
	var warnings []Warning
	if d.Archetype.Category != archetype.CategoryPositive {
		warnings = append(warnings, Warning{
			Check:    CoherenceFalseAlarm,
			Severity: WarningSeverityError,
			Message:  "false alarm classified under a non-positive category",
		})
	}
	if len(d.ActionItems) > 0 {
		warnings = append(warnings, Warning{
			Check:    CoherenceFalseAlarm,
			Severity: WarningSeverityError,
			Message:  "false alarm carries action items",
		})
	}
	return warnings
}

// verifyMultiCause: competing explanations and High confidence do not mix.
func verifyMultiCause(d *Diagnosis) []Warning {
	if d.MultiCause == nil || !d.MultiCause.Detected {
		return nil
	}
	if d.Confidence.Level != ConfidenceHigh {
		return nil
	}
	return []Warning{{
		Check:    CoherenceMultiCause,
		Severity: WarningSeverityWarning,
		Message:  "multiple competing causes detected but confidence is High",
	}}
}
