package commands

import (
	"github.com/spf13/cobra"

	"github.com/moolen/driftdiag/internal/logging"
	"github.com/moolen/driftdiag/internal/signal"
)

var (
	detectSeries   string
	detectBaseline string
	detectValue    float64
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run step-change and baseline anomaly detection on a series",
	Long: `Detect scans a day-ordered series for a sustained step change and,
when a baseline history is given, grades the latest value against it with a
z-score check. Results are printed as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := logging.GetLogger("detect")

		cfg, err := loadPolicy()
		HandleError(err, "failed to load policy")

		series, err := parseSeries(detectSeries)
		HandleError(err, "failed to parse series")
		history, err := parseSeries(detectBaseline)
		HandleError(err, "failed to parse baseline")

		out := struct {
			StepChange signal.StepChange     `json:"step_change"`
			Baseline   *signal.BaselineCheck `json:"baseline_check,omitempty"`
		}{
			StepChange: signal.DetectStepChange(series, cfg.Thresholds.StepChangePct, cfg.Thresholds.StepJumpShare),
		}

		if len(history) > 0 {
			value := detectValue
			if !cmd.Flags().Changed("value") && len(series) > 0 {
				value = series[len(series)-1]
			}
			bc := signal.CheckBaseline(value, history, cfg.Thresholds.ZScoreAnomalous)
			out.Baseline = &bc
		}

		logger.InfoWithFields("detection complete",
			logging.Field("points", len(series)),
			logging.Field("step_detected", out.StepChange.Detected),
		)
		HandleError(printJSON(out), "failed to write result")
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectSeries, "series", "", "Comma-separated day-ordered metric values")
	detectCmd.Flags().StringVar(&detectBaseline, "baseline", "", "Optional comma-separated baseline history for the z-score check")
	detectCmd.Flags().Float64Var(&detectValue, "value", 0, "Value to grade against the baseline (defaults to the last series point)")
	_ = detectCmd.MarkFlagRequired("series")
}
