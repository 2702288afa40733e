// Command mapfsatvis shows and edits colored MAPF scenarios and plays back
// the plans of the SAT solver.
package main

import (
	"flag"
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/golang/glog"

	"github.com/elektrokombinacija/mapfm-sat/internal/config"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/scenario"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis"
)

var configPath = flag.String("config", "", "solver config YAML")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: mapfsatvis [flags] [scenario.yaml]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			glog.Exitf("mapfsatvis: %v", err)
		}
	}

	var inst *core.Instance
	title := "MAPFM-SAT Visualizer"
	if flag.NArg() > 0 {
		f, err := scenario.Load(flag.Arg(0))
		if err != nil {
			glog.Exitf("mapfsatvis: %v", err)
		}
		if inst, err = f.ToInstance(); err != nil {
			glog.Exitf("mapfsatvis: %s: %v", flag.Arg(0), err)
		}
		title += " - " + flag.Arg(0)
	}

	application, err := vis.NewApp(inst, cfg.SolverOptions())
	if err != nil {
		glog.Exitf("mapfsatvis: %v", err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title(title),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		if err := application.Run(window); err != nil {
			glog.Errorf("mapfsatvis: %v", err)
			glog.Flush()
			os.Exit(1)
		}
		glog.Flush()
		os.Exit(0)
	}()
	app.Main()
}
