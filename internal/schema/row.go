// Package schema defines the observation row model and the input
// normalization boundary.
//
// All type coercion and field aliasing happens here: downstream analysis
// packages only ever see canonical field names and float64 metric values.
// Malformed values are coerced to zero at this boundary rather than deep
// inside decomposition math.
package schema

import (
	"strconv"
	"strings"
)

// Canonical metric field names. Input rows may carry the legacy spellings;
// NormalizeRecord bridges them for one release (see aliases.go).
const (
	MetricClickQuality  = "click_quality_value"
	MetricSearchSuccess = "search_quality_success_value"
	MetricAITrigger     = "ai_trigger"
	MetricAISuccess     = "ai_success"
)

// Canonical trust-gate field names.
const (
	FieldCompleteness    = "data_completeness"
	FieldFreshnessMin    = "data_freshness_min"
	FieldCompletenessPct = "completeness_pct"
	FieldFreshnessLag    = "freshness_lag_min"
)

// Period labels and the field that carries them.
const (
	FieldPeriod    = "period"
	PeriodBaseline = "baseline"
	PeriodCurrent  = "current"
)

// Row is one immutable observation: numeric metric fields, a period label,
// and an open set of categorical dimension values.
type Row struct {
	Period     string             `json:"period"`
	Metrics    map[string]float64 `json:"metrics"`
	Dimensions map[string]string  `json:"dimensions"`
}

// Metric returns the named metric value, or 0 when the row doesn't carry it.
func (r Row) Metric(name string) float64 {
	return r.Metrics[name]
}

// HasMetric reports whether the row carries the named metric field.
func (r Row) HasMetric(name string) bool {
	_, ok := r.Metrics[name]
	return ok
}

// Dimension returns the named dimension value, or "unknown" when absent.
// Grouping rows with missing dimension values under a single bucket keeps
// decomposition totals consistent.
func (r Row) Dimension(name string) string {
	if v, ok := r.Dimensions[name]; ok && v != "" {
		return v
	}
	return "unknown"
}

// HasDimension reports whether the row carries the named dimension column.
func (r Row) HasDimension(name string) bool {
	_, ok := r.Dimensions[name]
	return ok
}

// parseFloat converts a raw field value to float64. CSV readers hand us
// strings; anything unparsable becomes 0.
func parseFloat(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitPeriods partitions rows into baseline and current collections by
// their period label. Rows with any other label are dropped.
func SplitPeriods(rows []Row) (baseline, current []Row) {
	for _, r := range rows {
		switch r.Period {
		case PeriodBaseline:
			baseline = append(baseline, r)
		case PeriodCurrent:
			current = append(current, r)
		}
	}
	return baseline, current
}
