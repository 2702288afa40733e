package widgets

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
)

// SolvePanel lists the encodings tried by the last solve and its result.
type SolvePanel struct {
	state   *state.State
	scrollY float32
}

// NewSolvePanel creates a new solve panel.
func NewSolvePanel(st *state.State) *SolvePanel {
	return &SolvePanel{state: st}
}

// Panel colors
var (
	ColorPanelText  = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	ColorPanelDim   = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	ColorPanelError = color.NRGBA{R: 255, G: 110, B: 110, A: 255}
	ColorBarVars    = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
)

const (
	panelWidth = 300
	rowHeight  = 22
)

// Layout renders the panel.
func (p *SolvePanel) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := gtx.Constraints.Max.Y
	rect := image.Rect(0, 0, panelWidth, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())
	defer clip.Rect(rect).Push(gtx.Ops).Pop()

	p.handlePointerEvents(gtx, height)

	iters := p.state.Solve.Iterations()
	maxVars := 1
	for _, it := range iters {
		maxVars = max(maxVars, it.Variables)
	}

	gtx.Constraints.Max.X = panelWidth
	layout.Inset{Left: unit.Dp(10), Top: unit.Dp(8), Right: unit.Dp(10)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.label(gtx, th, 14, p.header(), ColorPanelText)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				col := ColorPanelDim
				if p.state.Solve.Err() != nil {
					col = ColorPanelError
				}
				return p.label(gtx, th, 11, p.summary(), col)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.layoutIterations(gtx, th, iters, maxVars)
			}),
		)
	})
	return layout.Dimensions{Size: image.Point{X: panelWidth, Y: height}}
}

func (p *SolvePanel) header() string {
	mode := p.state.Solve.Mode.String()
	if p.state.Solve.Running() {
		return "Solving (" + mode + ")..."
	}
	return "SAT solver (" + mode + ")"
}

func (p *SolvePanel) summary() string {
	if err := p.state.Solve.Err(); err != nil {
		return err.Error()
	}
	sol := p.state.Solution
	if sol == nil {
		return "No plan. Press S to solve."
	}
	stats, elapsed := p.state.Solve.Stats()
	s := fmt.Sprintf("cost %d, makespan %d, horizon %d, delta %d, %d calls, %v",
		sol.Cost, sol.Makespan(), sol.Horizon, sol.Delta, stats.OracleCalls, elapsed.Round(time.Millisecond))
	if p.state.Stale {
		s += " (stale)"
	}
	return s
}

func (p *SolvePanel) layoutIterations(gtx layout.Context, th *material.Theme, iters []state.IterationInfo, maxVars int) layout.Dimensions {
	offset := op.Offset(image.Pt(0, -int(p.scrollY))).Push(gtx.Ops)
	defer offset.Pop()

	barMax := gtx.Constraints.Max.X
	for i, it := range iters {
		y := i * rowHeight
		w := barMax * it.Variables / maxVars
		bar := image.Rect(0, y+2, w, y+rowHeight-2)
		paint.FillShape(gtx.Ops, ColorBarVars, clip.Rect(bar).Op())

		row := op.Offset(image.Pt(4, y+3)).Push(gtx.Ops)
		p.label(gtx, th, 11, fmt.Sprintf("h=%d d=%d  %d vars  %d cons", it.Horizon, it.Delta, it.Variables, it.Constraints), ColorPanelText)
		row.Pop()
	}
	return layout.Dimensions{Size: image.Point{X: barMax, Y: len(iters) * rowHeight}}
}

func (p *SolvePanel) label(gtx layout.Context, th *material.Theme, size unit.Sp, text string, col color.NRGBA) layout.Dimensions {
	l := material.Label(th, size, text)
	l.Color = col
	return l.Layout(gtx)
}

func (p *SolvePanel) handlePointerEvents(gtx layout.Context, height int) {
	area := clip.Rect(image.Rect(0, 0, panelWidth, height)).Push(gtx.Ops)
	event.Op(gtx.Ops, p)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  p,
			Kinds:   pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1e6, Max: 1e6},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok && pe.Kind == pointer.Scroll {
			p.scrollY = max(p.scrollY+pe.Scroll.Y, 0)
		}
	}
}
