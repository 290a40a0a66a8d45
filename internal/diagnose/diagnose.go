// Package diagnose runs the full movement diagnosis pipeline: trust gate,
// decomposition, signal matching, archetype classification, validation
// checks, confidence grading, decision arbitration and coherence
// verification.
//
// Run is a pure function of its inputs plus the optional investigator.
// Without an investigator, identical inputs produce identical output
// bytes.
package diagnose

import (
	"context"

	"github.com/moolen/driftdiag/internal/archetype"
	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/schema"
	"github.com/moolen/driftdiag/internal/signal"
	"github.com/moolen/driftdiag/internal/trustgate"
)

// Input is everything a diagnosis runs over. Rows carry period labels;
// optional series and day indexes enrich the temporal evidence. Negative
// day indexes mean unknown.
type Input struct {
	Rows       []schema.Row
	Metric     string
	Dimensions []string

	// DailySeries is the metric's day-ordered daily values spanning both
	// periods, for step-change detection.
	DailySeries []float64

	// CauseDay is the day index of the suspected cause event within
	// DailySeries.
	CauseDay int

	// BaselineHistory holds prior-period values of the metric for the
	// z-score check.
	BaselineHistory []float64
}

// CanonicalMetrics are the co-movement fields signatures are written
// against.
var CanonicalMetrics = []string{
	schema.MetricClickQuality,
	schema.MetricSearchSuccess,
	schema.MetricAITrigger,
	schema.MetricAISuccess,
}

// Run executes the pipeline and arbitrates the decision status.
//
// Precedence is strict: a failed trust gate blocks everything else; an
// unresolved multi-cause overlap declares insufficient evidence; only a
// clean path yields a diagnosis. The investigator is consulted only when
// the outcome would be a diagnosis held with Medium or Low confidence, and
// its rejection (or any failure to answer) downgrades rather than blocks.
func Run(ctx context.Context, in Input, cfg *config.Config, inv Investigator) Diagnosis {
	th := cfg.Thresholds
	baseline, current := schema.SplitPeriods(in.Rows)

	gate := trustgate.Check(in.Rows, th)
	dec := decompose.Run(baseline, current, in.Metric, in.Dimensions, cfg)

	observed := signal.Observe(baseline, current, CanonicalMetrics, th)
	match := signal.MatchSignatures(observed, cfg.Signatures, th.MatchAcceptScore)

	d := Diagnosis{
		Metric:        in.Metric,
		Decomposition: dec,
		TrustGate:     gate,
		Match:         match,
	}

	metricChangeDay := -1
	if len(in.DailySeries) > 0 {
		sc := signal.DetectStepChange(in.DailySeries, th.StepChangePct, th.StepJumpShare)
		d.StepChange = &sc
		if sc.Detected {
			metricChangeDay = sc.DayIndex
		}
	}
	if len(in.BaselineHistory) > 0 {
		bc := signal.CheckBaseline(dec.Aggregate.CurrentMean, in.BaselineHistory, th.ZScoreAnomalous)
		d.Baseline = &bc
	}

	cls := archetype.Classify(match, &dec, cfg)
	d.Checks = runChecks(checkInput{
		dec:             &dec,
		gate:            gate,
		baselineRows:    len(baseline),
		currentRows:     len(current),
		causeDay:        in.CauseDay,
		metricChangeDay: metricChangeDay,
		step:            d.StepChange,
	}, th)

	conf := computeConfidence(d.Checks, &dec, cls, th)
	d.MultiCause = detectMultiCause(&dec, cfg)

	switch {
	case gate.Failed():
		d.DecisionStatus = StatusBlockedByDataQuality
		d.BlockedReasons = gate.Reasons
		d.OriginalSeverity = cls.Severity
		d.Severity = SeverityBlocked
		cls = blockedClassification(&dec)
		conf = capConfidence(conf, ConfidenceMedium)

	case d.MultiCause != nil && d.MultiCause.Detected:
		d.DecisionStatus = StatusInsufficientEvidence
		d.Severity = cls.Severity
		conf = capConfidence(conf, ConfidenceMedium)

	default:
		d.DecisionStatus = StatusDiagnosed
		d.Severity = cls.Severity
		conf = applyCompositionalFloor(conf, cls, &dec, th)

		if inv != nil && conf.Level != ConfidenceHigh {
			investigation := consult(ctx, inv, *buildHypothesis(cls, &dec), &dec, th)
			d.Investigation = &investigation
			if investigation.Outcome != VerdictConfirmed {
				d.DecisionStatus = StatusInsufficientEvidence
				conf.Level = ConfidenceLow
			}
		}
	}

	d.Archetype = cls
	d.Hypothesis = buildHypothesis(cls, &dec)
	d.Confidence = conf
	d.ActionItems = buildActionItems(cls, d.Checks, conf, &dec)
	d.Warnings = Verify(&d)
	return d
}

// blockedClassification replaces the tentative classification when the
// trust gate fails: the only defensible statement is that the data cannot
// be trusted.
func blockedClassification(dec *decompose.Result) archetype.Classification {
	a := archetype.DataQuality
	return archetype.Classification{
		Archetype:   a,
		Key:         a.Key(),
		Category:    a.Category(),
		Source:      "trust_gate",
		Severity:    SeverityBlocked,
		Description: archetype.Describe(a, dec),
	}
}
