package schema

// Legacy metric spellings still emitted by older exporters. The alias
// bridge keeps one release of backward compatibility in both directions:
// inputs may use either spelling, outputs carry both.
var legacyMetricAliases = map[string]string{
	"dlctr":        MetricClickQuality,
	"dlctr_value":  MetricClickQuality,
	"qsr":          MetricSearchSuccess,
	"qsr_value":    MetricSearchSuccess,
	"sain_trigger": MetricAITrigger,
	"sain_success": MetricAISuccess,
}

// canonicalToLegacy is the reverse bridge for result payloads. Each
// canonical name maps to the single preferred legacy spelling.
var canonicalToLegacy = map[string]string{
	MetricClickQuality:  "dlctr_value",
	MetricSearchSuccess: "qsr_value",
	MetricAITrigger:     "sain_trigger",
	MetricAISuccess:     "sain_success",
}

// CanonicalMetricName resolves a possibly-legacy metric field name to its
// canonical spelling. Unknown names pass through unchanged so the schema
// stays open to new metrics.
func CanonicalMetricName(name string) string {
	if canonical, ok := legacyMetricAliases[name]; ok {
		return canonical
	}
	return name
}

// LegacyMetricName returns the legacy spelling for a canonical metric name,
// or "" when the metric never had one.
func LegacyMetricName(name string) string {
	return canonicalToLegacy[name]
}

// WithLegacyAliases returns a copy of metrics with the legacy spelling
// added back for every canonical key that has one. Used when emitting
// results for consumers that still read the old field names.
func WithLegacyAliases(metrics map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(metrics)*2)
	for k, v := range metrics {
		out[k] = v
		if legacy, ok := canonicalToLegacy[k]; ok {
			out[legacy] = v
		}
	}
	return out
}
