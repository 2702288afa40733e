// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
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

// Cell colors
var (
	ColorCellFree     = color.NRGBA{R: 48, G: 54, B: 60, A: 255}
	ColorCellBlocked  = color.NRGBA{R: 15, G: 16, B: 18, A: 255}
	ColorCellBorder   = color.NRGBA{R: 30, G: 33, B: 37, A: 255}
	ColorCellSelected = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
)

// DrawCells renders every cell of the grid, free or blocked.
func DrawCells(gtx layout.Context, grid [][]bool, camera *interact.Camera) {
	gap := float32(1)
	for r, row := range grid {
		for c, blocked := range row {
			col := ColorCellFree
			if blocked {
				col = ColorCellBlocked
			}
			x0, y0 := camera.WorldToScreen(float64(c)*state.CellSize, float64(r)*state.CellSize)
			x1, y1 := camera.WorldToScreen(float64(c+1)*state.CellSize, float64(r+1)*state.CellSize)
			rect := image.Rect(int(x0+gap), int(y0+gap), int(x1-gap), int(y1-gap))
			paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
		}
	}
}

// DrawGoals draws the goal cells as team-colored squares.
func DrawGoals(gtx layout.Context, goals []core.Marker, camera *interact.Camera) {
	for _, g := range goals {
		p := state.CellCenter(g.Coord)
		x, y := camera.WorldToScreen(p.X, p.Y)
		size := float32(state.CellSize) * 0.7 * camera.Zoom
		col := TeamColor(g.Color)
		col.A = 90
		drawSquare(gtx, x, y, size, col)
		DrawSquareOutline(gtx, x, y, size, TeamColor(g.Color), 2*camera.Zoom)
	}
}

// DrawCellHighlight outlines the cell under the pointer.
func DrawCellHighlight(gtx layout.Context, c core.Coord, camera *interact.Camera) {
	p := state.CellCenter(c)
	x, y := camera.WorldToScreen(p.X, p.Y)
	DrawSquareOutline(gtx, x, y, float32(state.CellSize)*camera.Zoom, ColorCellSelected, 2*camera.Zoom)
}

// DrawSquareOutline draws a square frame centered at (cx, cy).
func DrawSquareOutline(gtx layout.Context, cx, cy, size float32, col color.NRGBA, strokeWidth float32) {
	h := size / 2
	drawLine(gtx, cx-h, cy-h, cx+h, cy-h, strokeWidth, col)
	drawLine(gtx, cx+h, cy-h, cx+h, cy+h, strokeWidth, col)
	drawLine(gtx, cx+h, cy+h, cx-h, cy+h, strokeWidth, col)
	drawLine(gtx, cx-h, cy+h, cx-h, cy-h, strokeWidth, col)
}

// DrawCircleOutline draws a circle outline.
func DrawCircleOutline(gtx layout.Context, centerX, centerY float32, radius float32, col color.NRGBA, strokeWidth float32) {
	var outerPath clip.Path
	outerPath.Begin(gtx.Ops)
	outerPath.Move(f32.Pt(centerX+radius, centerY))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + radius*float32(math.Cos(angle))
		y := centerY + radius*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	// Inner circle (hole)
	innerR := max(radius-strokeWidth, 0)
	outerPath.Move(f32.Pt(centerX+innerR-outerPath.Pos().X, centerY-outerPath.Pos().Y))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := centerX + innerR*float32(math.Cos(angle))
		y := centerY + innerR*float32(math.Sin(angle))
		outerPath.Line(f32.Pt(x-outerPath.Pos().X, y-outerPath.Pos().Y))
	}
	outerPath.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: outerPath.End()}.Op())
}

// HitTest checks if a screen point lies within radius of a world position.
func HitTest(screenX, screenY float32, pos state.Pos, camera *interact.Camera, radius float32) bool {
	vx, vy := camera.WorldToScreen(pos.X, pos.Y)
	dx := screenX - vx
	dy := screenY - vy
	r := radius * camera.Zoom
	return dx*dx+dy*dy <= r*r
}

// CellAtScreen returns the grid cell under a screen point.
func CellAtScreen(screenX, screenY float32, grid [][]bool, camera *interact.Camera) (core.Coord, bool) {
	c, ok := state.CellAt(camera.ScreenToWorld(screenX, screenY))
	if !ok || c.Row >= len(grid) || c.Col >= len(grid[c.Row]) {
		return core.Coord{}, false
	}
	return c, true
}
