package commands

import (
	"github.com/spf13/cobra"

	"github.com/moolen/driftdiag/internal/decompose"
	"github.com/moolen/driftdiag/internal/logging"
	"github.com/moolen/driftdiag/internal/schema"
)

var (
	decomposeInput      string
	decomposeMetric     string
	decomposeDimensions string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Decompose a metric movement into segment contributions",
	Long: `Decompose reads rows labeled with baseline and current periods and
prints the aggregate delta, per-dimension segment contributions and the
behavioral/composition mix-shift split as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := logging.GetLogger("decompose")

		cfg, err := loadPolicy()
		HandleError(err, "failed to load policy")

		rows, err := readRows(decomposeInput)
		HandleError(err, "failed to read input")

		baseline, current := schema.SplitPeriods(rows)
		logger.InfoWithFields("decomposing",
			logging.Field("metric", decomposeMetric),
			logging.Field("baseline_rows", len(baseline)),
			logging.Field("current_rows", len(current)),
		)

		result := decompose.Run(baseline, current, decomposeMetric, splitDimensions(decomposeDimensions), cfg)
		HandleError(printJSON(result), "failed to write result")
	},
}

func init() {
	decomposeCmd.Flags().StringVar(&decomposeInput, "input", "", "Input rows (CSV or JSON file)")
	decomposeCmd.Flags().StringVar(&decomposeMetric, "metric", schema.MetricClickQuality, "Metric to decompose")
	decomposeCmd.Flags().StringVar(&decomposeDimensions, "dimensions", "", "Comma-separated dimensions to decompose along")
	_ = decomposeCmd.MarkFlagRequired("input")
	_ = decomposeCmd.MarkFlagRequired("dimensions")
}
