// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/draw"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/interact"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
)

// Workspace is the main grid view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	hover  *core.Coord

	// OnEdit is called after the instance was changed.
	OnEdit func()
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	inst := w.state.Instance
	if !w.camera.Fitted() && len(inst.Grid) > 0 {
		w.camera.FitGrid(len(inst.Grid), len(inst.Grid[0]), float32(bounds.X), float32(bounds.Y))
	}

	w.handlePointerEvents(gtx)

	draw.DrawCells(gtx, inst.Grid, w.camera)
	draw.DrawGoals(gtx, inst.Goals, w.camera)
	if w.hover != nil && w.state.Edit.Mode == state.ModeObstacle {
		draw.DrawCellHighlight(gtx, *w.hover, w.camera)
	}

	// Trails and remaining paths
	for a, m := range inst.Starts {
		col := draw.TeamColor(m.Color)
		draw.DrawPathTrail(gtx, w.state.PathHistory(core.AgentID(a)), w.camera, col, 3)
		draw.DrawFuturePath(gtx, w.state.FuturePath(core.AgentID(a)), w.camera, col)
	}

	draw.DrawConflicts(gtx, w.state, w.camera)
	draw.DrawAgents(gtx, inst.Starts, w.state.CurrentPositions(), w.camera, w.state.Edit.SelectedAgents)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move,
			ScrollY: pointer.ScrollRange{Min: -1e6, Max: 1e6},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.handlePointerEvent(gtx, pe)
		}
	}
}

func (w *Workspace) handlePointerEvent(gtx layout.Context, ev pointer.Event) {
	// Camera handles pan and zoom
	w.camera.HandleEvent(gtx, ev)

	cell, onGrid := draw.CellAtScreen(ev.Position.X, ev.Position.Y, w.state.Instance.Grid, w.camera)
	w.hover = nil
	if onGrid {
		w.hover = &cell
	}

	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonPrimary) {
			w.handleClick(ev.Position.X, ev.Position.Y, ev.Modifiers.Contain(key.ModShift), cell, onGrid)
		}

	case pointer.Release:
		if w.state.Edit.Dragging {
			w.finalizeDrag(cell, onGrid)
		}
	}
}

func (w *Workspace) handleClick(screenX, screenY float32, multiSelect bool, cell core.Coord, onGrid bool) {
	inst := w.state.Instance
	if w.state.Edit.Mode == state.ModeObstacle {
		if onGrid && !state.Occupied(inst, cell) {
			w.apply(&state.ToggleObstacleAction{Cell: cell})
		}
		return
	}

	// Agents are picked at their start cells, where they are drawn when
	// there is no plan to play.
	positions := w.state.CurrentPositions()
	for a := range inst.Starts {
		if draw.HitTest(screenX, screenY, positions[a], w.camera, state.CellSize*0.4) {
			id := core.AgentID(a)
			w.state.Edit.SelectAgent(id, multiSelect)
			if w.state.Playback.CurrentTime == 0 {
				w.state.Edit.StartDrag(id, inst.Starts[a].Coord)
			}
			return
		}
	}

	if !multiSelect {
		w.state.Edit.ClearSelection()
	}
}

func (w *Workspace) finalizeDrag(cell core.Coord, onGrid bool) {
	defer w.state.Edit.EndDrag()

	inst := w.state.Instance
	from := w.state.Edit.DragFrom
	if !onGrid || cell == from || inst.Grid[cell.Row][cell.Col] || state.Occupied(inst, cell) {
		return
	}
	w.apply(&state.MoveStartAction{Agent: w.state.Edit.DragAgent, From: from, To: cell})
}

func (w *Workspace) apply(action state.EditAction) {
	w.state.Edit.Execute(action, w.state.Instance)
	if w.OnEdit != nil {
		w.OnEdit()
	}
}
