// Package main generates deterministic colored MAPF scenarios for benchmarks.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/mapfm-sat/internal/scenario"
)

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	rows := flag.Int("rows", 8, "Grid rows")
	cols := flag.Int("cols", 8, "Grid columns")
	density := flag.Float64("density", 0.15, "Obstacle density (0-1)")
	teams := flag.Int("teams", 2, "Number of teams")
	agents := flag.Int("agents", 3, "Agents per team")
	goals := flag.Int("goals", 0, "Goals per team (0 = one per agent)")
	count := flag.Int("count", 1, "Scenarios to generate, seeds counting up from -seed")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate a scaling suite (2, 4, 8, 16, 32 agents per team)")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var params []scenario.RandomParams
	if *scalingMode {
		for _, size := range []int{2, 4, 8, 16, 32} {
			// Grid side scales with sqrt of the agent count
			side := max(int(math.Ceil(math.Sqrt(float64(size*(*teams)))*3)), 6)
			params = append(params, scenario.RandomParams{
				Seed:          *seed,
				Rows:          side,
				Cols:          side,
				Density:       *density,
				Teams:         *teams,
				AgentsPerTeam: size,
				GoalsPerTeam:  *goals,
			})
		}
	} else {
		for i := 0; i < *count; i++ {
			params = append(params, scenario.RandomParams{
				Seed:          *seed + int64(i),
				Rows:          *rows,
				Cols:          *cols,
				Density:       *density,
				Teams:         *teams,
				AgentsPerTeam: *agents,
				GoalsPerTeam:  *goals,
			})
		}
	}

	failed := 0
	for _, p := range params {
		f, err := scenario.Random(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating seed %d: %v\n", p.Seed, err)
			failed++
			continue
		}
		filename := filepath.Join(*outputDir, f.Name+".yaml")
		if err := scenario.Save(filename, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
			failed++
			continue
		}
		fmt.Printf("Generated: %s (%d teams, %d agents, %dx%d grid)\n",
			filename, p.Teams, len(f.Agents), p.Rows, p.Cols)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
