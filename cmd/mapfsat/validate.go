package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/scenario"
)

// runValidate checks each scenario and its matching heuristic.
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		if err := validateOne(path, cfg.MaxCutoff, w); err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios invalid", failed, len(args))
	}
	return nil
}

func validateOne(path string, maxCutoff int, w io.Writer) error {
	f, err := scenario.Load(path)
	if err != nil {
		return err
	}
	inst, err := f.ToInstance()
	if err != nil {
		return err
	}
	g, err := inst.Validate()
	if err != nil {
		return err
	}
	teams, _ := core.BuildTeams(g, inst)
	h, err := algo.BuildHeuristic(teams, algo.NewDistanceTable(g), maxCutoff)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "ok   %s: %d agents, %d teams, lower bound %d, horizon %d\n",
		path, len(inst.Starts), len(teams), h.Sum, h.Horizon)
	return nil
}
