package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moolen/driftdiag/internal/config"
	"github.com/moolen/driftdiag/internal/logging"
)

const Version = "0.1.0"

var (
	logLevelFlag string
	policyFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "driftdiag",
	Short: "driftdiag - metric movement diagnosis",
	Long: `driftdiag explains why a tracked metric moved between two periods:
segment decomposition, mix-shift attribution, signature matching, archetype
classification and a graded, verified diagnosis.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Initialize(logLevelFlag)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&policyFlag, "policy", "",
		"Path to a YAML policy file overriding the default thresholds and signature catalog")

	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(detectCmd)
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// loadPolicy resolves the effective policy: the --policy file when given,
// the built-in defaults otherwise.
func loadPolicy() (*config.Config, error) {
	if policyFlag == "" {
		return config.Default(), nil
	}
	return config.Load(policyFlag)
}

// splitDimensions parses the comma-separated --dimensions flag.
func splitDimensions(flag string) []string {
	var dims []string
	for _, d := range strings.Split(flag, ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			dims = append(dims, d)
		}
	}
	return dims
}
