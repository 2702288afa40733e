// Package main runs the SAT solver in both goal-matching modes over a
// directory of scenarios and collects metrics.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/config"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/scenario"
)

// BenchmarkResult stores results from a single solver run.
type BenchmarkResult struct {
	RunID       string
	Timestamp   string
	CommitHash  string
	GoVersion   string
	OS          string
	Arch        string
	Instance    string
	NumAgents   int
	NumTeams    int
	GridSize    string
	Solver      string
	RuntimeMs   float64
	Success     bool
	Horizon     int
	Delta       int
	Cost        int
	Makespan    int
	Iterations  int
	Variables   int
	Constraints int
	Error       string
}

// SolverMetrics holds per-solver aggregated metrics.
type SolverMetrics struct {
	Name           string
	TotalRuns      int
	Successes      int
	Timeouts       int
	TotalRuntimeMs float64
	TotalCost      int
	TotalDelta     int
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// runSolver solves one scenario in one mode.
func runSolver(ctx context.Context, name string, inst *core.Instance, opts algo.SATOptions, timeout time.Duration) *BenchmarkResult {
	teams := make(map[core.Color]bool)
	for _, m := range inst.Starts {
		teams[m.Color] = true
	}
	opts.Timeout = timeout
	solver := algo.NewSATSolver(opts)

	result := &BenchmarkResult{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Instance:  name,
		NumAgents: len(inst.Starts),
		NumTeams:  len(teams),
		GridSize:  fmt.Sprintf("%dx%d", len(inst.Grid), len(inst.Grid[0])),
		Solver:    solver.Name(),
	}

	startTime := time.Now()
	sol, err := solver.Solve(ctx, inst)
	result.RuntimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0

	st := solver.Stats()
	result.Iterations = st.Iterations
	result.Variables = st.LastVars
	result.Constraints = st.LastConstraints
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Horizon = sol.Horizon
	result.Delta = sol.Delta
	result.Cost = sol.Cost
	result.Makespan = sol.Makespan()
	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"run_id", "timestamp", "commit_hash", "go_version", "os", "arch",
		"instance", "num_agents", "num_teams", "grid_size", "solver",
		"runtime_ms", "success", "horizon", "delta", "cost", "makespan",
		"iterations", "variables", "constraints", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	itoa := strconv.Itoa
	for _, r := range results {
		row := []string{
			r.RunID, r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Instance, itoa(r.NumAgents), itoa(r.NumTeams), r.GridSize, r.Solver,
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.FormatBool(r.Success),
			itoa(r.Horizon), itoa(r.Delta), itoa(r.Cost), itoa(r.Makespan),
			itoa(r.Iterations), itoa(r.Variables), itoa(r.Constraints), r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*SolverMetrics)
	for _, r := range results {
		m, ok := metrics[r.Solver]
		if !ok {
			m = &SolverMetrics{Name: r.Solver}
			metrics[r.Solver] = m
		}
		m.TotalRuns++
		if r.Success {
			m.Successes++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalCost += r.Cost
			m.TotalDelta += r.Delta
		} else if strings.Contains(r.Error, core.ErrTimedOut.Error()) {
			m.Timeouts++
		}
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-20s %8s %8s %8s %12s %10s %10s\n",
		"Solver", "Runs", "Success", "Timeout", "Avg Time(ms)", "Avg Cost", "Avg Delta")
	fmt.Println(strings.Repeat("-", 82))

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		m := metrics[name]
		avgTime, avgCost, avgDelta := 0.0, 0.0, 0.0
		if m.Successes > 0 {
			avgTime = m.TotalRuntimeMs / float64(m.Successes)
			avgCost = float64(m.TotalCost) / float64(m.Successes)
			avgDelta = float64(m.TotalDelta) / float64(m.Successes)
		}
		fmt.Printf("%-20s %8d %8d %8d %12.2f %10.2f %10.2f\n",
			m.Name, m.TotalRuns, m.Successes, m.Timeouts, avgTime, avgCost, avgDelta)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario YAML files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	configPath := flag.String("config", "", "Solver config YAML")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per solver run")
	modeFilter := flag.String("mode", "", "Run only one mode: inmatch or prematch")
	agentFilter := flag.Int("agents", 0, "Run only scenarios with this many agents (0 = all)")
	jobs := flag.Int("jobs", 1, "Runs executed in parallel")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	modes := []core.MatchMode{core.InMatch, core.PreMatch}
	if *modeFilter != "" {
		m, err := core.ParseMatchMode(*modeFilter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		modes = []core.MatchMode{m}
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_instances first: go run ./tools/gen_instances -scaling -output testdata\n")
		os.Exit(1)
	}

	type job struct {
		name string
		inst *core.Instance
		mode core.MatchMode
	}
	var work []job
	for _, file := range files {
		f, err := scenario.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if *agentFilter > 0 && len(f.Agents) != *agentFilter {
			continue
		}
		name := f.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(file), ".yaml")
		}
		for _, mode := range modes {
			// Each run gets its own instance; the solver does not share them.
			inst, err := f.ToInstance()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error in %s: %v\n", file, err)
				break
			}
			work = append(work, job{name: name, inst: inst, mode: mode})
		}
	}

	fmt.Printf("Running benchmarks: %d runs over %d scenarios, %d in parallel\n", len(work), len(files), *jobs)
	fmt.Printf("Timeout per run: %v\n\n", *timeout)

	commit := getGitCommit()
	results := make([]*BenchmarkResult, len(work))
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*jobs, 1))
	for i, w := range work {
		g.Go(func() error {
			opts := cfg.SolverOptions()
			opts.Mode = w.mode
			r := runSolver(ctx, w.name, w.inst, opts, *timeout)
			r.CommitHash = commit
			results[i] = r

			mu.Lock()
			defer mu.Unlock()
			done++
			if *verbose {
				if r.Success {
					fmt.Printf("[%d/%d] %s / %s OK (%.2fms, cost=%d, delta=%d)\n",
						done, len(work), r.Instance, r.Solver, r.RuntimeMs, r.Cost, r.Delta)
				} else {
					fmt.Printf("[%d/%d] %s / %s FAILED: %s\n", done, len(work), r.Instance, r.Solver, r.Error)
				}
			} else {
				fmt.Printf("\r[%d/%d] Running...", done, len(work))
			}
			return nil
		})
	}
	// Runs report failures in their results, never through the group.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
