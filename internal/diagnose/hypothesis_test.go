package diagnose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
)

func twoDimResult(primaryPct, secondaryPct float64, primaryDim, secondaryDim string) *decompose.Result {
	return &decompose.Result{
		Metric: "click_quality_value",
		Dimensions: []decompose.DimensionBreakdown{
			{
				Dimension: primaryDim,
				Segments:  []decompose.SegmentContribution{{Segment: "p", ContributionPct: primaryPct}},
			},
			{
				Dimension: secondaryDim,
				Segments:  []decompose.SegmentContribution{{Segment: "s", ContributionPct: secondaryPct}},
			},
		},
		DominantDimension: primaryDim,
	}
}

func TestDetectMultiCause_ComparableUnrelatedDimensions(t *testing.T) {
	cfg := config.Default()
	mc := detectMultiCause(twoDimResult(55, 51, "tenant_tier", "browser"), cfg)

	require.NotNil(t, mc)
	assert.True(t, mc.Detected)
	require.Len(t, mc.Competing, 1)
	assert.Equal(t, "browser", mc.Competing[0].Dimension)
	assert.Equal(t, "s", mc.Competing[0].Segment)
}

func TestDetectMultiCause_SecondaryBelowDominance(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, detectMultiCause(twoDimResult(80, 45, "tenant_tier", "browser"), cfg))
}

func TestDetectMultiCause_GapTooWide(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, detectMultiCause(twoDimResult(90, 55, "tenant_tier", "browser"), cfg))
}

func TestDetectMultiCause_CorrelatedPairSuppressed(t *testing.T) {
	cfg := config.Default()
	mc := detectMultiCause(twoDimResult(55, 51, "ai_enablement", "tenant_tier"), cfg)

	require.NotNil(t, mc)
	assert.False(t, mc.Detected)
	assert.Empty(t, mc.Competing)
	assert.Equal(t, []string{"tenant_tier"}, mc.Suppressed)
}

func TestDetectMultiCause_NegativeContributions(t *testing.T) {
	cfg := config.Default()
	mc := detectMultiCause(twoDimResult(-55, -51, "tenant_tier", "browser"), cfg)
	require.NotNil(t, mc)
	assert.True(t, mc.Detected)
}

func TestBuildHypothesis(t *testing.T) {
	dec := twoDimResult(55, 51, "tenant_tier", "browser")
	cls := archetype.Classification{
		Key:         "ranking_regression",
		Description: "Ranking relevance regression in click_quality_value, concentrated in tenant_tier=p",
	}

	h := buildHypothesis(cls, dec)
	assert.Equal(t, "tenant_tier", h.Dimension)
	assert.Equal(t, "p", h.Segment)
	assert.Equal(t, 55.0, h.ContributionPct)
	assert.Equal(t, cls.Description, h.Statement)
}

func TestBuildActionItems_FalseAlarmStaysEmpty(t *testing.T) {
	cls := archetype.Classification{Archetype: archetype.FalseAlarm}
	items := buildActionItems(cls, allPass(), Confidence{Level: ConfidenceLow}, &decompose.Result{})
	assert.Empty(t, items)
}

func TestBuildActionItems_CollectsFindings(t *testing.T) {
	cls := archetype.Classification{Archetype: archetype.RankingRegression}
	dec := strongResult()
	dec.Dimensions = []decompose.DimensionBreakdown{{
		Dimension: "region",
		Segments:  []decompose.SegmentContribution{{Segment: "amer", ContributionPct: 95.0}},
	}}
	checks := allPass()
	checks[1].Status = CheckHalt
	checks[1].Detail = "best dimension explains too little"
	checks[3].Status = CheckInvestigate
	checks[3].Detail = "composition dominates"

	items := buildActionItems(cls, checks, Confidence{Level: ConfidenceLow}, dec)

	assert.Contains(t, items, "Check ranking model deploys in the affected window")
	assertContainsSubstring(t, items, "Drill into region=amer")
	assertContainsSubstring(t, items, "Resolve the decomposition_completeness check")
	assertContainsSubstring(t, items, "Investigate the mix_shift finding")
	assertContainsSubstring(t, items, "confidence is Low")
}

func assertContainsSubstring(t *testing.T, items []string, substr string) {
	t.Helper()
	for _, item := range items {
		if strings.Contains(item, substr) {
			return
		}
	}
	t.Errorf("no item contains %q in %v", substr, items)
}
