// Command mapfsat solves colored MAPF scenarios with the SAT planner.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath      string
	modeFlag        string
	timeoutFlag     string
	iterTimeoutFlag string
	maxDeltaFlag    int
	parallelismFlag int
	dumpPath        string
	metricsAddr     string
	quietFlag       bool

	rootCmd = &cobra.Command{
		Use:           "mapfsat",
		Short:         "Optimal colored multi-agent path finding via SAT",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog reads its flags from the Go flag set
			_ = flag.CommandLine.Parse(nil)
		},
	}
	solveCmd = &cobra.Command{
		Use:   "solve <scenario.yaml>",
		Short: "Solve a scenario and print the paths",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve, // Defined in solve.go
	}
	validateCmd = &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Check scenario files without solving them",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate, // Defined in validate.go
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mapfsat %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "solver config YAML")

	solveCmd.Flags().StringVar(&modeFlag, "mode", "", "goal matching: inmatch or prematch")
	solveCmd.Flags().StringVar(&timeoutFlag, "timeout", "", "whole solve budget, e.g. 30s")
	solveCmd.Flags().StringVar(&iterTimeoutFlag, "iteration-timeout", "", "budget of one SAT call")
	solveCmd.Flags().IntVar(&maxDeltaFlag, "max-delta", 0, "largest cost slack tried")
	solveCmd.Flags().IntVar(&parallelismFlag, "parallelism", 0, "parallel diagram builders (0 = unlimited)")
	solveCmd.Flags().StringVar(&dumpPath, "dump-opb", "", "write the last encoding in OPB format to this file")
	solveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")
	solveCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "print the summary only")

	rootCmd.AddCommand(solveCmd, validateCmd, versionCmd)
}

// exitCode maps solver errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, core.ErrTimedOut):
		return 3
	case errors.Is(err, core.ErrInfeasibleTeam), errors.Is(err, core.ErrUnreachableGoal):
		return 2
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		glog.Errorf("mapfsat: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
