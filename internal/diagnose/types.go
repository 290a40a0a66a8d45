package diagnose

import (
	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/signal"
	"github.com/moolen/driftdiag/internal/trustgate"
)

// Decision statuses, in arbitration precedence order. A failing trust gate
// beats everything; an unresolved overlap beats a diagnosis.
const (
	StatusBlockedByDataQuality = "blocked_by_data_quality"
	StatusInsufficientEvidence = "insufficient_evidence"
	StatusDiagnosed            = "diagnosed"
)

// Check statuses for the four mandatory validation checks.
const (
	CheckPass        = "PASS"
	CheckWarn        = "WARN"
	CheckHalt        = "HALT"
	CheckInvestigate = "INVESTIGATE"
)

// Names of the mandatory checks.
const (
	CheckLoggingArtifact  = "logging_artifact"
	CheckCompleteness     = "decomposition_completeness"
	CheckTemporal         = "temporal_consistency"
	CheckMixShift         = "mix_shift"
)

// Confidence levels.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// SeverityBlocked replaces the graded severity when the trust gate fails.
// The graded value survives in OriginalSeverity.
const SeverityBlocked = "blocked"

// Check is one validation check result.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// Confidence grades how far the diagnosis should be trusted, and always
// names what would move the grade in either direction.
type Confidence struct {
	Level            string `json:"level"`
	EvidenceCount    int    `json:"evidence_count"`
	WouldUpgradeIf   string `json:"would_upgrade_if"`
	WouldDowngradeIf string `json:"would_downgrade_if"`
}

// Hypothesis is the primary causal statement handed to reviewers and, when
// consulted, to the investigator.
type Hypothesis struct {
	Statement       string  `json:"statement"`
	Archetype       string  `json:"archetype"`
	Dimension       string  `json:"dimension,omitempty"`
	Segment         string  `json:"segment,omitempty"`
	ContributionPct float64 `json:"contribution_pct,omitempty"`
}

// Competitor is one dimension competing to explain the movement.
type Competitor struct {
	Dimension       string  `json:"dimension"`
	Segment         string  `json:"segment"`
	ContributionPct float64 `json:"contribution_pct"`
}

// MultiCause reports comparably weighted explanations from unrelated
// dimensions. Correlated dimensions (one underlying cause showing up
// twice) are suppressed before this is populated.
type MultiCause struct {
	Detected   bool         `json:"detected"`
	Competing  []Competitor `json:"competing,omitempty"`
	Suppressed []string     `json:"suppressed,omitempty"`
}

// Warning is one advisory finding from the coherence verifier. Warnings
// annotate a diagnosis; they never change or block it.
type Warning struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Investigation records the investigator consultation, when one happened.
type Investigation struct {
	Consulted      bool   `json:"consulted"`
	Outcome        string `json:"outcome,omitempty"`
	Notes          string `json:"notes,omitempty"`
	SubQueriesUsed int    `json:"sub_queries_used,omitempty"`
}

// Diagnosis is the full output record. The pure pipeline leaves
// DiagnosisID empty; the runner assigns it so identical inputs still
// serialize to identical bytes.
type Diagnosis struct {
	DiagnosisID    string `json:"diagnosis_id,omitempty"`
	Metric         string `json:"metric"`
	DecisionStatus string `json:"decision_status"`

	Archetype archetype.Classification `json:"classification"`

	Severity         string   `json:"severity"`
	OriginalSeverity string   `json:"original_severity,omitempty"`
	BlockedReasons   []string `json:"blocked_reasons,omitempty"`

	Decomposition decompose.Result      `json:"decomposition"`
	TrustGate     trustgate.Result      `json:"trust_gate"`
	Match         signal.MatchResult    `json:"match"`
	StepChange    *signal.StepChange    `json:"step_change,omitempty"`
	Baseline      *signal.BaselineCheck `json:"baseline_check,omitempty"`

	Checks     []Check     `json:"checks"`
	Confidence Confidence  `json:"confidence"`
	Hypothesis *Hypothesis `json:"hypothesis,omitempty"`
	MultiCause *MultiCause `json:"multi_cause,omitempty"`

	ActionItems   []string       `json:"action_items,omitempty"`
	Warnings      []Warning      `json:"warnings,omitempty"`
	Investigation *Investigation `json:"investigation,omitempty"`
}

// CheckByName returns the named check, or nil.
func (d *Diagnosis) CheckByName(name string) *Check {
	for i := range d.Checks {
		if d.Checks[i].Name == name {
			return &d.Checks[i]
		}
	}
	return nil
}

func countNonPass(checks []Check) int {
	n := 0
	for _, c := range checks {
		if c.Status != CheckPass {
			n++
		}
	}
	return n
}

func anyStatus(checks []Check, status string) bool {
	for _, c := range checks {
		if c.Status == status {
			return true
		}
	}
	return false
}
