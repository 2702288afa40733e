package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/config"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/scenario"
)

// loadConfig reads --config and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = modeFlag
	}
	if flags.Changed("timeout") {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return cfg, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if flags.Changed("iteration-timeout") {
		d, err := time.ParseDuration(iterTimeoutFlag)
		if err != nil {
			return cfg, fmt.Errorf("--iteration-timeout: %w", err)
		}
		cfg.IterationTimeout = d
	}
	if flags.Changed("max-delta") {
		cfg.MaxDelta = maxDeltaFlag
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = parallelismFlag
	}
	return cfg, cfg.Validate()
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("metrics server: %v", err)
		}
	}()
	glog.Infof("serving metrics on %s/metrics", addr)
	return srv
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	inst, err := f.ToInstance()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr)
		defer srv.Close()
	}

	opts := cfg.SolverOptions()
	var last *algo.Encoding
	if dumpPath != "" {
		opts.OnEncode = func(e *algo.Encoding) { last = e }
	}
	solver := algo.NewSATSolver(opts)

	runID := uuid.NewString()
	glog.Infof("run %s: solving %s with %s", runID, args[0], solver.Name())
	start := time.Now()
	sol, err := solver.Solve(context.Background(), inst)
	elapsed := time.Since(start)

	if last != nil {
		if derr := writeDump(dumpPath, last); derr != nil {
			glog.Errorf("run %s: %v", runID, derr)
		}
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	g, err := inst.Validate()
	if err != nil {
		return err
	}
	printSolution(cmd.OutOrStdout(), inst, g, solver, sol, elapsed)
	return nil
}

func writeDump(path string, enc *algo.Encoding) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump encoding: %w", err)
	}
	defer out.Close()
	if err := enc.WriteOPB(out); err != nil {
		return fmt.Errorf("dump encoding: %w", err)
	}
	return nil
}

func printSolution(w io.Writer, inst *core.Instance, g *core.Graph, solver *algo.SATSolver, sol *core.Solution, elapsed time.Duration) {
	name := inst.Name
	if name == "" {
		name = "scenario"
	}
	st := solver.Stats()
	fmt.Fprintf(w, "Instance: %s, %dx%d grid, %d agents, %d goals\n",
		name, g.Rows(), g.Cols(), len(inst.Starts), len(inst.Goals))
	fmt.Fprintf(w, "%s: cost=%d makespan=%d horizon=%d delta=%d iterations=%d vars=%d constraints=%d time=%v\n",
		solver.Name(), sol.Cost, sol.Makespan(), sol.Horizon, sol.Delta,
		st.Iterations, st.LastVars, st.LastConstraints, elapsed.Round(time.Millisecond))
	if quietFlag {
		return
	}
	for a, path := range sol.CoordPaths(g) {
		cells := make([]string, len(path))
		for t, c := range path {
			cells[t] = c.String()
		}
		fmt.Fprintf(w, "  agent %d (%v): %s\n", a, inst.Starts[a].Color, strings.Join(cells, " "))
	}
}
