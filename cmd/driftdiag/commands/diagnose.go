package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/moolen/driftdiag/internal/diagnose"
	"github.com/moolen/driftdiag/internal/logging"
	"github.com/moolen/driftdiag/internal/metrics"
	"github.com/moolen/driftdiag/internal/schema"
)

var (
	diagnoseInput      string
	diagnoseMetric     string
	diagnoseDimensions string
	diagnoseSeries     string
	diagnoseCauseDay   int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the full movement diagnosis pipeline",
	Long: `Diagnose runs the trust gate, decomposition, signature matching,
archetype classification, validation checks and coherence verification over
the input rows and prints the full diagnosis record as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := logging.GetLogger("diagnose")

		cfg, err := loadPolicy()
		HandleError(err, "failed to load policy")

		rows, err := readRows(diagnoseInput)
		HandleError(err, "failed to read input")

		series, err := parseSeries(diagnoseSeries)
		HandleError(err, "failed to parse series")

		m := metrics.NewMetrics(prometheus.NewRegistry())
		start := time.Now()

		d := diagnose.Run(context.Background(), diagnose.Input{
			Rows:        rows,
			Metric:      diagnoseMetric,
			Dimensions:  splitDimensions(diagnoseDimensions),
			DailySeries: series,
			CauseDay:    diagnoseCauseDay,
		}, cfg, nil)

		// The pure pipeline leaves the ID empty; the runner owns it.
		d.DiagnosisID = uuid.NewString()
		m.ObserveDiagnosis(&d, time.Since(start).Seconds())

		logger.InfoWithFields("diagnosis complete",
			logging.Field("diagnosis_id", d.DiagnosisID),
			logging.Field("metric", d.Metric),
			logging.Field("decision_status", d.DecisionStatus),
			logging.Field("archetype", d.Archetype.Key),
			logging.Field("confidence", d.Confidence.Level),
		)
		HandleError(printJSON(d), "failed to write diagnosis")
	},
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseInput, "input", "", "Input rows (CSV or JSON file)")
	diagnoseCmd.Flags().StringVar(&diagnoseMetric, "metric", schema.MetricClickQuality, "Metric to diagnose")
	diagnoseCmd.Flags().StringVar(&diagnoseDimensions, "dimensions", "", "Comma-separated dimensions to decompose along")
	diagnoseCmd.Flags().StringVar(&diagnoseSeries, "series", "", "Optional comma-separated daily values for step-change detection")
	diagnoseCmd.Flags().IntVar(&diagnoseCauseDay, "cause-day", -1, "Day index of the suspected cause within the series (-1 when unknown)")
	_ = diagnoseCmd.MarkFlagRequired("input")
	_ = diagnoseCmd.MarkFlagRequired("dimensions")
}
