// Package trustgate decides whether the input rows are healthy enough for
// a diagnosis to be trusted. A failing gate blocks downstream conclusions;
// a warning annotates them.
package trustgate

import (
	"fmt"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/schema"
)

// Gate statuses, from healthy to blocking.
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Result reports the gate decision and the averaged health fields. The
// averages are exposed under both field spellings so legacy consumers keep
// working for one release.
type Result struct {
	Status  string   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`

	AvgCompleteness float64 `json:"data_completeness"`
	AvgFreshnessMin float64 `json:"data_freshness_min"`
	CompletenessPct float64 `json:"completeness_pct"`
	FreshnessLagMin float64 `json:"freshness_lag_min"`
}

// Failed reports whether the gate blocks diagnosis.
func (r Result) Failed() bool { return r.Status == StatusFail }

// Check averages the trust fields across all rows and grades them against
// the configured boundaries. No rows at all is a failure, not a pass:
// absent data must never read as healthy data.
func Check(rows []schema.Row, th config.Thresholds) Result {
	if len(rows) == 0 {
		return Result{
			Status:  StatusFail,
			Reasons: []string{"no rows to assess"},
		}
	}

	res := Result{Status: StatusPass}

	completeness, haveCompleteness := average(rows, schema.FieldCompleteness)
	freshness, haveFreshness := average(rows, schema.FieldFreshnessMin)

	if haveCompleteness {
		res.AvgCompleteness = completeness
		res.CompletenessPct = completeness * 100
		switch {
		case completeness < th.CompletenessFail:
			res.Status = StatusFail
			res.Reasons = append(res.Reasons, fmt.Sprintf(
				"avg completeness %.3f below fail threshold %.2f", completeness, th.CompletenessFail))
		case completeness < th.CompletenessWarn:
			res.Status = StatusWarn
			res.Reasons = append(res.Reasons, fmt.Sprintf(
				"avg completeness %.3f below warn threshold %.2f", completeness, th.CompletenessWarn))
		}
	}

	if haveFreshness {
		res.AvgFreshnessMin = freshness
		res.FreshnessLagMin = freshness
		switch {
		case freshness > th.FreshnessFailMin:
			res.Status = StatusFail
			res.Reasons = append(res.Reasons, fmt.Sprintf(
				"avg freshness lag %.1f min above fail threshold %.0f min", freshness, th.FreshnessFailMin))
		case freshness > th.FreshnessWarnMin:
			if res.Status != StatusFail {
				res.Status = StatusWarn
			}
			res.Reasons = append(res.Reasons, fmt.Sprintf(
				"avg freshness lag %.1f min above warn threshold %.0f min", freshness, th.FreshnessWarnMin))
		}
	}

	return res
}

// average computes the mean of a metric over the rows that carry it.
// Rows without the field don't drag the average toward zero.
func average(rows []schema.Row, field string) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rows {
		if r.HasMetric(field) {
			sum += r.Metric(field)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
