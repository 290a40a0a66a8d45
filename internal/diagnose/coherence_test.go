package diagnose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/decompose"
)

func coherentDiagnosis() *Diagnosis {
	return &Diagnosis{
		Metric:         "click_quality_value",
		DecisionStatus: StatusDiagnosed,
		Archetype: archetype.Classification{
			Archetype: archetype.RankingRegression,
			Key:       "ranking_regression",
			Category:  archetype.CategoryRegression,
		},
		Severity: "P0",
		Decomposition: decompose.Result{
			DominantDimension: "region",
		},
		Checks:      allPass(),
		Confidence:  Confidence{Level: ConfidenceHigh},
		ActionItems: []string{"Check ranking model deploys in the affected window"},
	}
}

func TestVerify_CoherentDiagnosisIsClean(t *testing.T) {
	assert.Empty(t, Verify(coherentDiagnosis()))
}

func TestVerify_AdoptionOutsideEnablementDimension(t *testing.T) {
	d := coherentDiagnosis()
	d.Archetype.Archetype = archetype.AIAdoption
	d.Severity = "P2"

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceArchetypeSegment, warnings[0].Check)
	assert.Equal(t, WarningSeverityWarning, warnings[0].Severity)
}

func TestVerify_RegressionOnEnablementDimension(t *testing.T) {
	d := coherentDiagnosis()
	d.Decomposition.DominantDimension = archetype.DimensionAIEnablement

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceArchetypeSegment, warnings[0].Check)
}

func TestVerify_PagingSeverityWithoutActions(t *testing.T) {
	d := coherentDiagnosis()
	d.ActionItems = nil

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceSeverityAction, warnings[0].Check)
	assert.Equal(t, WarningSeverityError, warnings[0].Severity)
}

func TestVerify_NormalSeverityWithActions(t *testing.T) {
	d := coherentDiagnosis()
	d.Severity = "normal"

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceSeverityAction, warnings[0].Check)
	assert.Equal(t, WarningSeverityWarning, warnings[0].Severity)
}

func TestVerify_HighConfidenceOverHaltedCheck(t *testing.T) {
	d := coherentDiagnosis()
	d.Checks[2].Status = CheckHalt

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceConfidenceCheck, warnings[0].Check)
	assert.Equal(t, WarningSeverityError, warnings[0].Severity)
}

func TestVerify_FalseAlarmExemptFromHaltRule(t *testing.T) {
	d := coherentDiagnosis()
	d.Archetype = archetype.Classification{
		Archetype: archetype.FalseAlarm,
		Key:       "false_alarm",
		Category:  archetype.CategoryPositive,
	}
	d.Severity = "normal"
	d.ActionItems = nil
	d.Decomposition.DominantDimension = ""
	d.Checks[1].Status = CheckHalt

	assert.Empty(t, Verify(d))
}

func TestVerify_FalseAlarmMustStayBenign(t *testing.T) {
	d := coherentDiagnosis()
	d.Archetype = archetype.Classification{
		Archetype: archetype.FalseAlarm,
		Key:       "false_alarm",
		Category:  archetype.CategoryRegression,
	}
	d.Severity = "normal"
	d.Confidence.Level = ConfidenceMedium
	d.Decomposition.DominantDimension = ""

	warnings := Verify(d)
	// Wrong category plus leftover action items plus normal severity
	// carrying actions.
	require.Len(t, warnings, 3)
	assert.Equal(t, CoherenceSeverityAction, warnings[0].Check)
	assert.Equal(t, CoherenceFalseAlarm, warnings[1].Check)
	assert.Equal(t, WarningSeverityError, warnings[1].Severity)
	assert.Equal(t, CoherenceFalseAlarm, warnings[2].Check)
}

func TestVerify_MultiCauseWithHighConfidence(t *testing.T) {
	d := coherentDiagnosis()
	d.MultiCause = &MultiCause{
		Detected: true,
		Competing: []Competitor{
			{Dimension: "browser", Segment: "safari", ContributionPct: 51.0},
		},
	}

	warnings := Verify(d)
	require.Len(t, warnings, 1)
	assert.Equal(t, CoherenceMultiCause, warnings[0].Check)
	assert.Equal(t, WarningSeverityWarning, warnings[0].Severity)
}
