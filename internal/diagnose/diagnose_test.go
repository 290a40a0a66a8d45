package diagnose

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/schema"
)

// block builds n rows sharing one metric/dimension profile.
func block(period string, n int, metrics map[string]float64, dims map[string]string) []schema.Row {
	rows := make([]schema.Row, 0, n)
	for i := 0; i < n; i++ {
		m := make(map[string]float64, len(metrics))
		for k, v := range metrics {
			m[k] = v
		}
		rows = append(rows, schema.Row{Period: period, Metrics: m, Dimensions: dims})
	}
	return rows
}

func healthy(metrics map[string]float64) map[string]float64 {
	out := map[string]float64{
		schema.FieldCompleteness: 0.99,
		schema.FieldFreshnessMin: 10,
	}
	for k, v := range metrics {
		out[k] = v
	}
	return out
}

// rankingScenario: click quality and search success drop, AI metrics hold,
// with the click drop concentrated in one regional segment.
func rankingScenario(completeness float64) []schema.Row {
	base := map[string]float64{
		schema.MetricClickQuality:  0.40,
		schema.MetricSearchSuccess: 0.80,
		schema.MetricAITrigger:     100,
		schema.MetricAISuccess:     50,
		schema.FieldCompleteness:   completeness,
		schema.FieldFreshnessMin:   10,
	}
	currFlat := map[string]float64{
		schema.MetricClickQuality:  0.40,
		schema.MetricSearchSuccess: 0.76,
		schema.MetricAITrigger:     100,
		schema.MetricAISuccess:     50,
		schema.FieldCompleteness:   completeness,
		schema.FieldFreshnessMin:   10,
	}
	currHit := map[string]float64{
		schema.MetricClickQuality:  0.10,
		schema.MetricSearchSuccess: 0.76,
		schema.MetricAITrigger:     100,
		schema.MetricAISuccess:     50,
		schema.FieldCompleteness:   completeness,
		schema.FieldFreshnessMin:   10,
	}

	var rows []schema.Row
	rows = append(rows, block("baseline", 8, base, map[string]string{"region": "emea"})...)
	rows = append(rows, block("baseline", 2, base, map[string]string{"region": "amer"})...)
	rows = append(rows, block("current", 8, currFlat, map[string]string{"region": "emea"})...)
	rows = append(rows, block("current", 2, currHit, map[string]string{"region": "amer"})...)
	return rows
}

func TestRun_RankingRegressionDiagnosedHigh(t *testing.T) {
	cfg := config.Default()
	d := Run(context.Background(), Input{
		Rows:       rankingScenario(0.99),
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"region"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusDiagnosed, d.DecisionStatus)
	assert.Equal(t, archetype.RankingRegression, d.Archetype.Archetype)
	assert.Equal(t, archetype.SourceSignature, d.Archetype.Source)
	assert.Equal(t, "P0", d.Severity)
	assert.Empty(t, d.OriginalSeverity)

	require.Len(t, d.Checks, 4)
	for _, c := range d.Checks {
		assert.Equal(t, CheckPass, c.Status, "check %s", c.Name)
	}
	assert.Equal(t, ConfidenceHigh, d.Confidence.Level)
	assert.Equal(t, 3, d.Confidence.EvidenceCount)

	require.NotNil(t, d.Hypothesis)
	assert.Equal(t, "region", d.Hypothesis.Dimension)
	assert.Equal(t, "amer", d.Hypothesis.Segment)
	assert.NotEmpty(t, d.ActionItems)
	assert.Empty(t, d.Warnings)
	assert.Nil(t, d.Investigation, "High confidence never consults the investigator")
}

func TestRun_TrustFailureBlocksEverything(t *testing.T) {
	// Same regression signal, but the inputs are untrustworthy. The gate
	// wins over every other finding.
	cfg := config.Default()
	d := Run(context.Background(), Input{
		Rows:       rankingScenario(0.90),
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"region"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusBlockedByDataQuality, d.DecisionStatus)
	assert.Equal(t, archetype.DataQuality, d.Archetype.Archetype)
	assert.Equal(t, SeverityBlocked, d.Severity)
	assert.Equal(t, "P0", d.OriginalSeverity)
	assert.NotEmpty(t, d.BlockedReasons)
	assert.NotEqual(t, ConfidenceHigh, d.Confidence.Level)
}

func TestRun_UnresolvedOverlapIsInsufficientEvidence(t *testing.T) {
	// The hit segment coincides across two unrelated dimensions, so both
	// explain the movement equally well.
	cfg := config.Default()
	hit := map[string]float64{schema.MetricClickQuality: 0.10}
	flat := map[string]float64{schema.MetricClickQuality: 0.40}

	var rows []schema.Row
	rows = append(rows, block("baseline", 8, healthy(flat), map[string]string{"region": "emea", "browser": "chrome"})...)
	rows = append(rows, block("baseline", 2, healthy(flat), map[string]string{"region": "amer", "browser": "safari"})...)
	rows = append(rows, block("current", 8, healthy(flat), map[string]string{"region": "emea", "browser": "chrome"})...)
	rows = append(rows, block("current", 2, healthy(hit), map[string]string{"region": "amer", "browser": "safari"})...)

	d := Run(context.Background(), Input{
		Rows:       rows,
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"region", "browser"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusInsufficientEvidence, d.DecisionStatus)
	require.NotNil(t, d.MultiCause)
	assert.True(t, d.MultiCause.Detected)
	assert.NotEqual(t, ConfidenceHigh, d.Confidence.Level)
}

func TestRun_CorrelatedDimensionsDoNotOverlap(t *testing.T) {
	// The same coincidence across a correlated pair is one cause seen
	// twice, not two causes.
	cfg := config.Default()
	hit := map[string]float64{schema.MetricClickQuality: 0.10}
	flat := map[string]float64{schema.MetricClickQuality: 0.40}

	var rows []schema.Row
	rows = append(rows, block("baseline", 8, healthy(flat), map[string]string{"ai_enablement": "off", "tenant_tier": "free"})...)
	rows = append(rows, block("baseline", 2, healthy(flat), map[string]string{"ai_enablement": "on", "tenant_tier": "enterprise"})...)
	rows = append(rows, block("current", 8, healthy(flat), map[string]string{"ai_enablement": "off", "tenant_tier": "free"})...)
	rows = append(rows, block("current", 2, healthy(hit), map[string]string{"ai_enablement": "on", "tenant_tier": "enterprise"})...)

	d := Run(context.Background(), Input{
		Rows:       rows,
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"ai_enablement", "tenant_tier"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusDiagnosed, d.DecisionStatus)
	require.NotNil(t, d.MultiCause)
	assert.False(t, d.MultiCause.Detected)
	assert.Contains(t, d.MultiCause.Suppressed, "tenant_tier")
}

func TestRun_QuietPeriodIsFalseAlarm(t *testing.T) {
	cfg := config.Default()
	flat := healthy(map[string]float64{
		schema.MetricClickQuality:  0.40,
		schema.MetricSearchSuccess: 0.80,
		schema.MetricAITrigger:     100,
		schema.MetricAISuccess:     50,
	})
	var rows []schema.Row
	rows = append(rows, block("baseline", 10, flat, map[string]string{"region": "emea"})...)
	rows = append(rows, block("current", 10, flat, map[string]string{"region": "emea"})...)

	d := Run(context.Background(), Input{
		Rows:       rows,
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"region"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusDiagnosed, d.DecisionStatus)
	assert.Equal(t, archetype.FalseAlarm, d.Archetype.Archetype)
	assert.Equal(t, "normal", d.Severity)
	assert.Empty(t, d.ActionItems)
	assert.Empty(t, d.Warnings)
}

func TestRun_PureShareShiftIsMixShift(t *testing.T) {
	cfg := config.Default()
	free := healthy(map[string]float64{schema.MetricClickQuality: 1.0})
	paid := healthy(map[string]float64{schema.MetricClickQuality: 0.5})

	var rows []schema.Row
	rows = append(rows, block("baseline", 5, free, map[string]string{"tenant_tier": "free"})...)
	rows = append(rows, block("baseline", 5, paid, map[string]string{"tenant_tier": "paid"})...)
	rows = append(rows, block("current", 7, free, map[string]string{"tenant_tier": "free"})...)
	rows = append(rows, block("current", 3, paid, map[string]string{"tenant_tier": "paid"})...)

	d := Run(context.Background(), Input{
		Rows:       rows,
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"tenant_tier"},
		CauseDay:   -1,
	}, cfg, nil)

	assert.Equal(t, StatusDiagnosed, d.DecisionStatus)
	assert.Equal(t, archetype.MixShift, d.Archetype.Archetype)

	mix := d.CheckByName(CheckMixShift)
	require.NotNil(t, mix)
	assert.Equal(t, CheckInvestigate, mix.Status)

	// The compositional floor holds the grade at Medium even though the
	// thin evidence would otherwise read Low.
	assert.Equal(t, ConfidenceMedium, d.Confidence.Level)
}

func TestRun_DetectedStepChangeHaltsLoggingArtifact(t *testing.T) {
	// The same regression fixture, but the daily series shows the whole
	// drop landing overnight. That pattern reads as an instrumentation
	// change and must keep the diagnosis from grading High, even with no
	// cause day to contradict.
	cfg := config.Default()

	d := Run(context.Background(), Input{
		Rows:        rankingScenario(0.99),
		Metric:      schema.MetricClickQuality,
		Dimensions:  []string{"region"},
		DailySeries: []float64{0.40, 0.40, 0.40, 0.34, 0.34, 0.34},
		CauseDay:    -1,
	}, cfg, nil)

	require.NotNil(t, d.StepChange)
	require.True(t, d.StepChange.Detected)

	la := d.CheckByName(CheckLoggingArtifact)
	require.NotNil(t, la)
	assert.Equal(t, CheckHalt, la.Status)
	assert.NotEqual(t, ConfidenceHigh, d.Confidence.Level)
}

func TestRun_StepChangeFeedsTemporalCheck(t *testing.T) {
	cfg := config.Default()
	series := []float64{0.40, 0.40, 0.40, 0.34, 0.34, 0.34}

	d := Run(context.Background(), Input{
		Rows:        rankingScenario(0.99),
		Metric:      schema.MetricClickQuality,
		Dimensions:  []string{"region"},
		DailySeries: series,
		CauseDay:    5,
	}, cfg, nil)

	require.NotNil(t, d.StepChange)
	assert.True(t, d.StepChange.Detected)
	assert.Equal(t, 3, d.StepChange.DayIndex)

	temporal := d.CheckByName(CheckTemporal)
	require.NotNil(t, temporal)
	assert.Equal(t, CheckHalt, temporal.Status, "a cause two days after the step cannot explain it")
	assert.NotEqual(t, ConfidenceHigh, d.Confidence.Level)
}

func TestRun_Idempotent(t *testing.T) {
	cfg := config.Default()
	in := Input{
		Rows:       rankingScenario(0.99),
		Metric:     schema.MetricClickQuality,
		Dimensions: []string{"region"},
		CauseDay:   -1,
	}

	a, err := json.Marshal(Run(context.Background(), in, cfg, nil))
	require.NoError(t, err)
	b, err := json.Marshal(Run(context.Background(), in, cfg, nil))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(string(a), string(b)))
}

type stubInvestigator struct {
	verdict Verdict
	err     error
	block   bool
}

func (s *stubInvestigator) Investigate(ctx context.Context, _ Hypothesis, _ *decompose.Result) (Verdict, error) {
	if s.block {
		<-ctx.Done()
		return Verdict{}, ctx.Err()
	}
	return s.verdict, s.err
}

// shakyInput yields a diagnosed outcome held with less than High
// confidence, the only state in which the investigator is consulted. The
// overnight step halts the logging-artifact check and, with the late
// cause day, the temporal check too.
func shakyInput() Input {
	return Input{
		Rows:        rankingScenario(0.99),
		Metric:      schema.MetricClickQuality,
		Dimensions:  []string{"region"},
		DailySeries: []float64{0.40, 0.40, 0.40, 0.34, 0.34, 0.34},
		CauseDay:    5,
	}
}

func TestRun_InvestigatorConfirmedKeepsDiagnosis(t *testing.T) {
	cfg := config.Default()
	inv := &stubInvestigator{verdict: Verdict{Outcome: VerdictConfirmed, SubQueriesUsed: 2}}

	d := Run(context.Background(), shakyInput(), cfg, inv)
	require.NotNil(t, d.Investigation)
	assert.True(t, d.Investigation.Consulted)
	assert.Equal(t, VerdictConfirmed, d.Investigation.Outcome)
	assert.Equal(t, StatusDiagnosed, d.DecisionStatus)
}

func TestRun_InvestigatorRejectionFailsClosed(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name string
		inv  *stubInvestigator
	}{
		{"explicit rejection", &stubInvestigator{verdict: Verdict{Outcome: VerdictRejected}}},
		{"error", &stubInvestigator{err: errors.New("backend unavailable")}},
		{"budget exceeded", &stubInvestigator{verdict: Verdict{Outcome: VerdictConfirmed, SubQueriesUsed: 50}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Run(context.Background(), shakyInput(), cfg, tt.inv)
			require.NotNil(t, d.Investigation)
			assert.Equal(t, VerdictRejected, d.Investigation.Outcome)
			assert.Equal(t, StatusInsufficientEvidence, d.DecisionStatus)
			assert.Equal(t, ConfidenceLow, d.Confidence.Level)
		})
	}
}

func TestRun_InvestigatorTimeoutFailsClosed(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds.InvestigatorTimeoutSec = 1

	d := Run(context.Background(), shakyInput(), cfg, &stubInvestigator{block: true})
	require.NotNil(t, d.Investigation)
	assert.Equal(t, VerdictRejected, d.Investigation.Outcome)
	assert.Equal(t, StatusInsufficientEvidence, d.DecisionStatus)
	assert.Equal(t, ConfidenceLow, d.Confidence.Level)
}
