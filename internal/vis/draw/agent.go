package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/interact"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
)

// Team palette, cycled by color index
var teamPalette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255}, // cyan
	{R: 255, G: 150, B: 100, A: 255}, // orange
	{R: 200, G: 100, B: 255, A: 255}, // purple
	{R: 120, G: 220, B: 120, A: 255}, // green
	{R: 255, G: 220, B: 90, A: 255},  // yellow
	{R: 255, G: 100, B: 150, A: 255}, // pink
	{R: 150, G: 160, B: 255, A: 255}, // lavender
	{R: 90, G: 200, B: 180, A: 255},  // teal
}

// ColorAgentSelected marks selected agents.
var ColorAgentSelected = color.NRGBA{R: 255, G: 255, B: 100, A: 255}

// TeamColor returns the display color of a team.
func TeamColor(c core.Color) color.NRGBA {
	if c < 0 {
		return color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	}
	return teamPalette[int(c)%len(teamPalette)]
}

// DrawAgent draws an agent at the given position.
func DrawAgent(gtx layout.Context, pos state.Pos, team core.Color, camera *interact.Camera, selected bool) {
	x, y := camera.WorldToScreen(pos.X, pos.Y)
	r := float32(state.CellSize) * 0.32 * camera.Zoom

	drawFilledCircle(gtx, x, y, r, TeamColor(team))
	if selected {
		DrawCircleOutline(gtx, x, y, r+3*camera.Zoom, ColorAgentSelected, 2*camera.Zoom)
	}
}

// DrawAgents draws all agents at their current positions.
func DrawAgents(gtx layout.Context, starts []core.Marker, positions []state.Pos, camera *interact.Camera, selected map[core.AgentID]bool) {
	for a, m := range starts {
		if a >= len(positions) {
			return
		}
		DrawAgent(gtx, positions[a], m.Color, camera, selected[core.AgentID(a)])
	}
}

func drawSquare(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	halfSize := size / 2
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx-halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy+halfSize))
	path.LineTo(f32.Pt(cx-halfSize, cy+halfSize))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
