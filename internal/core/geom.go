// Package core provides the platform types shared by games and the
// terminal front end: screen buffer, input frames, runtime config.
// It has no Bubble Tea dependency so game logic stays testable.
package core

import "math"

// Rect is an axis-aligned area of screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Inset shrinks the rectangle by n cells on every side. The result never
// has a negative size.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
	out.W = Max(out.W, 0)
	out.H = Max(out.H, 0)
	return out
}

// Viewport maps a rectangle of the ground plane onto screen cells, looking
// down: X grows to the right and Z grows upwards (far is at the top).
type Viewport struct {
	Area       Rect
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Project converts plane coordinates to a cell. ok is false when the point
// falls outside the viewport or the viewport is degenerate.
func (v Viewport) Project(x, z float64) (col, row int, ok bool) {
	spanX := v.MaxX - v.MinX
	spanZ := v.MaxZ - v.MinZ
	if v.Area.W <= 0 || v.Area.H <= 0 || spanX <= 0 || spanZ <= 0 {
		return 0, 0, false
	}
	fx := (x - v.MinX) / spanX
	fz := (v.MaxZ - z) / spanZ
	if fx < 0 || fx > 1 || fz < 0 || fz > 1 {
		return 0, 0, false
	}
	col = v.Area.X + Clamp(int(math.Floor(fx*float64(v.Area.W))), 0, v.Area.W-1)
	row = v.Area.Y + Clamp(int(math.Floor(fz*float64(v.Area.H))), 0, v.Area.H-1)
	return col, row, true
}

// RowOf returns the screen row of plane depth z, clamped to the area.
func (v Viewport) RowOf(z float64) int {
	spanZ := v.MaxZ - v.MinZ
	if v.Area.H <= 0 || spanZ <= 0 {
		return v.Area.Y
	}
	f := (v.MaxZ - z) / spanZ
	return v.Area.Y + Clamp(int(math.Floor(f*float64(v.Area.H))), 0, v.Area.H-1)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
