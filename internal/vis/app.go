// Package vis implements a Gio-based viewer and editor for colored MAPF plans.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/golang/glog"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/interact"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/widgets"
)

// App is the main visualization application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	panel     *widgets.SolvePanel
	camera    *interact.Camera
	window    *app.Window
}

// NewApp creates the application for inst. A nil inst opens a built-in
// example. opts configure the solver started with S or the toolbar.
func NewApp(inst *core.Instance, opts algo.SATOptions) (*App, error) {
	if inst == nil {
		inst = DefaultInstance()
	}
	st, err := state.NewState(inst, nil)
	if err != nil {
		return nil, err
	}
	st.Solve.Options = opts
	st.Solve.Mode = opts.Mode

	camera := interact.NewCamera()
	a := &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		panel:     widgets.NewSolvePanel(st),
		camera:    camera,
	}
	a.workspace.OnEdit = a.edited
	a.toolbar.OnEdit = a.edited
	a.toolbar.OnSolve = a.solve
	return a, nil
}

// Run starts the application event loop. A solve is started right away.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	a.window = w
	a.solve()

	tag := new(int)
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			a.state.Solve.Stop()
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModCtrl | key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			if sol := a.state.Solve.TakeResult(); sol != nil {
				if err := a.state.SetSolution(sol); err != nil {
					glog.Errorf("vis: %v", err)
				}
			}

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) solve() {
	if err := a.state.Rebuild(); err != nil {
		glog.Errorf("vis: %v", err)
		return
	}
	a.state.Playback.Reset()
	a.state.Solve.Start(a.state.Instance, func() {
		if a.window != nil {
			a.window.Invalidate()
		}
	})
}

func (a *App) edited() {
	if err := a.state.Rebuild(); err != nil {
		glog.Errorf("vis: %v", err)
	}
	a.state.Playback.Reset()
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameLeftArrow:
		a.state.Playback.StepBack()
	case key.NameRightArrow:
		a.state.Playback.StepForward()
	case key.NameHome:
		a.state.Playback.Reset()
	case "+", "=":
		a.state.Playback.SetSpeed(a.state.Playback.Speed * 1.5)
	case "-":
		a.state.Playback.SetSpeed(a.state.Playback.Speed / 1.5)
	case "R":
		a.camera.Reset()
	case "S":
		if a.state.Solve.Running() {
			a.state.Solve.Stop()
		} else {
			a.solve()
		}
	case "M":
		a.state.Solve.ToggleMode()
	case "O":
		a.state.Edit.Mode = state.ModeObstacle
	case "V":
		a.state.Edit.Mode = state.ModeView
	case "Z":
		if e.Modifiers.Contain(key.ModCtrl) {
			if action := a.state.Edit.Undo(); action != nil {
				action.Undo(a.state.Instance)
				a.edited()
			}
		}
	case "Y":
		if e.Modifiers.Contain(key.ModCtrl) {
			if action := a.state.Edit.Redo(); action != nil {
				action.Do(a.state.Instance)
				a.edited()
			}
		}
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return a.panel.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}

// DefaultInstance builds the example opened when no scenario is given: two
// teams crossing a 7x7 room split by a wall with two doors.
func DefaultInstance() *core.Instance {
	inst := core.NewInstance(7, 7)
	inst.Name = "doors"
	for r := 0; r < 7; r++ {
		if r != 1 && r != 5 {
			inst.Block(r, 3)
		}
	}
	for r := 0; r < 3; r++ {
		inst.AddAgent(2+r, 0, 0)
		inst.AddGoal(2+r, 6, 0)
		inst.AddAgent(2+r, 6-1, 1)
		inst.AddGoal(2+r, 1, 1)
	}
	return inst
}
