package draw

import (
	"image/color"

	"gioui.org/layout"

	"github.com/elektrokombinacija/mapfm-sat/internal/vis/interact"
	"github.com/elektrokombinacija/mapfm-sat/internal/vis/state"
)

// DrawPath draws a polyline through world positions.
func DrawPath(gtx layout.Context, path []state.Pos, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}
	w := width * camera.Zoom
	for i := 0; i < len(path)-1; i++ {
		x1, y1 := camera.WorldToScreen(path[i].X, path[i].Y)
		x2, y2 := camera.WorldToScreen(path[i+1].X, path[i+1].Y)
		drawLine(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawPathTrail draws a fading trail behind an agent.
func DrawPathTrail(gtx layout.Context, history []state.Pos, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	if len(history) < 2 {
		return
	}

	n := len(history)
	for i := 0; i < n-1; i++ {
		// Fade alpha and width from start to end
		col := baseColor
		col.A = uint8(50 + float64(i)/float64(n)*150)
		w := maxWidth * camera.Zoom * (0.3 + 0.7*float32(i)/float32(n))

		x1, y1 := camera.WorldToScreen(history[i].X, history[i].Y)
		x2, y2 := camera.WorldToScreen(history[i+1].X, history[i+1].Y)
		drawLine(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawFuturePath draws the remaining path in a dimmer color, with a dot on
// each vertex still to be visited.
func DrawFuturePath(gtx layout.Context, future []state.Pos, camera *interact.Camera, col color.NRGBA) {
	if len(future) < 2 {
		return
	}
	dim := col
	dim.A = 80
	DrawPath(gtx, future, camera, dim, 1.5)
	for _, p := range future[1:] {
		x, y := camera.WorldToScreen(p.X, p.Y)
		drawFilledCircle(gtx, x, y, 2.5*camera.Zoom, dim)
	}
}
