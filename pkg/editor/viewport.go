package editor

import "github.com/dukex/operion-studio/pkg/models"

const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// Point is a position in screen coordinates.
type Point struct {
	X float64
	Y float64
}

// Viewport is the pan offset and zoom factor applied to the graph when it is
// drawn: screen = graph*Zoom + (X, Y).
type Viewport struct {
	X    float64
	Y    float64
	Zoom float64
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ToGraph converts a screen point to graph coordinates.
func (v Viewport) ToGraph(p Point) models.Position {
	z := v.zoom()

	return models.Position{X: (p.X - v.X) / z, Y: (p.Y - v.Y) / z}
}

// ToScreen converts a graph position to screen coordinates.
func (v Viewport) ToScreen(pos models.Position) Point {
	z := v.zoom()

	return Point{X: pos.X*z + v.X, Y: pos.Y*z + v.Y}
}

func (v Viewport) Pan(dx, dy float64) Viewport {
	v.X += dx
	v.Y += dy

	return v
}

// ZoomAt scales the zoom by factor keeping the graph point under p fixed.
// The result is clamped to [MinZoom, MaxZoom].
func (v Viewport) ZoomAt(p Point, factor float64) Viewport {
	if factor <= 0 {
		return v
	}

	anchor := v.ToGraph(p)
	zoom := min(max(v.zoom()*factor, MinZoom), MaxZoom)

	return Viewport{
		X:    p.X - anchor.X*zoom,
		Y:    p.Y - anchor.Y*zoom,
		Zoom: zoom,
	}
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}

	return v.Zoom
}
