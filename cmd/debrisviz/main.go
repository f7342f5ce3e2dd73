// Command debrisviz plots simulated orbital-debris trajectories around Earth.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "debrisviz",
		Short: "Plot orbital debris trajectories",
		Long: `debrisviz reads one position time series per simulated particle,
keeps the samples inside a time window that land on the sampling period,
colors them by simulation time and draws them around Earth.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, opts, nil, false)
		},
	}
	opts.bind(rootCmd)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "scatter",
			Short: "Plot every entity as time-colored dots (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPlot(cmd, opts, nil, false)
			},
		},
		&cobra.Command{
			Use:   "path [entity...]",
			Short: "Plot the trajectories of selected entities as lines",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPlot(cmd, opts, args, true)
			},
		},
		&cobra.Command{
			Use:   "inspect",
			Short: "Summarize the data directory without drawing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runInspect(cmd, opts)
			},
		},
	)

	return rootCmd
}
