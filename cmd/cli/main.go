package main

import (
	"fmt"
	"os"

	"goportfolio/internal"

	"github.com/spf13/cobra"
)

var (
	logger   = internal.DefaultLogger
	epsilon  float64
	logLevel string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio-cli",
		Short: "Translate stakeholder evaluations into constraints and explore the feasible region",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				logger = internal.NewLogger(internal.ParseLogLevel(logLevel))
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Float64Var(&epsilon, "epsilon", 0, "Override the strict-inequality separation (default from file, else 0.01)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE")

	rootCmd.AddCommand(
		newTranslateCmd(),
		newValidateCmd(),
		newVerticesCmd(),
		newProjectCmd(),
		newExportCmd(),
		newScenarioCmd(),
	)
	return rootCmd
}
