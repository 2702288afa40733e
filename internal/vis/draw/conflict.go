package draw

import (
	"image/color"
	"math"
	"time"

	"gioui.org/layout"

	"github.com/elektrokombinacija/mapfm-sat/internal/algo"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/interact"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
)

// Conflict colors
var (
	ColorConflictVertex = color.NRGBA{R: 255, G: 80, B: 80, A: 200}
	ColorConflictEdge   = color.NRGBA{R: 255, G: 150, B: 80, A: 200}
)

// DrawConflict draws a pulsing indicator on a collision.
func DrawConflict(gtx layout.Context, conflict *algo.Conflict, st *state.State, camera *interact.Camera) {
	if conflict == nil {
		return
	}
	pulse := float32(math.Sin(float64(time.Now().UnixMilli())/200.0)*0.3 + 0.7)

	if conflict.IsEdge {
		drawSwapConflict(gtx, conflict, st, camera, pulse)
		return
	}
	p := st.VertexPos(conflict.Vertex)
	x, y := camera.WorldToScreen(p.X, p.Y)
	radius := float32(20) * camera.Zoom * pulse
	DrawCircleOutline(gtx, x, y, radius, ColorConflictVertex, 3*camera.Zoom)
	drawFilledCircle(gtx, x, y, radius*0.4*pulse, ColorConflictVertex)
}

func drawSwapConflict(gtx layout.Context, conflict *algo.Conflict, st *state.State, camera *interact.Camera, pulse float32) {
	p1, p2 := st.VertexPos(conflict.EdgeFrom), st.VertexPos(conflict.EdgeTo)
	x1, y1 := camera.WorldToScreen(p1.X, p1.Y)
	x2, y2 := camera.WorldToScreen(p2.X, p2.Y)
	midX, midY := (x1+x2)/2, (y1+y2)/2

	radius := float32(15) * camera.Zoom * pulse
	DrawCircleOutline(gtx, midX, midY, radius, ColorConflictEdge, 2*camera.Zoom)

	// Cross at the midpoint marks the swap
	size := radius * 0.7
	for _, angle := range []float64{45, 135} {
		rad := angle * math.Pi / 180
		dx := float32(math.Cos(rad)) * size
		dy := float32(math.Sin(rad)) * size
		drawLine(gtx, midX-dx, midY-dy, midX+dx, midY+dy, 3, ColorConflictEdge)
	}

	col := ColorConflictEdge
	col.A = uint8(float32(col.A) * pulse)
	drawLine(gtx, x1, y1, x2, y2, 4*camera.Zoom, col)
}

// DrawConflicts draws every conflict of the current step.
func DrawConflicts(gtx layout.Context, st *state.State, camera *interact.Camera) {
	for _, c := range st.ActiveConflicts() {
		DrawConflict(gtx, c, st, camera)
	}
}
