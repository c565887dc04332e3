// Package layout places constellation items in symmetric geometric patterns.
//
// Positions depend only on the item count and the [Frame]. Counts of one to
// three are special-cased and are not limits of the circular formula: two
// items sit on a horizontal diameter line at half the radius, not on a
// two-point circle.
//
//	pts := layout.ComputePositions(5) // pentagon, first point at the top
package layout

import "math"

// Default frame constants, matching an 800x600 viewBox.
const (
	DefaultWidth   = 800
	DefaultHeight  = 600
	DefaultCenterX = 400
	DefaultCenterY = 300
	DefaultRadius  = 200
)

// startAngle puts the first point at the top of the circle (screen y grows down).
const startAngle = -math.Pi / 2

// Point is a 2-D position in frame coordinates.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Angle returns the angle of q as seen from p, in radians in (-π, π].
func (p Point) Angle(q Point) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X)
}

// Frame is the fixed bounding frame positions are computed in.
type Frame struct {
	Width, Height    float64
	CenterX, CenterY float64
	Radius           float64
}

// DefaultFrame returns the 800x600 frame centered at (400, 300) with radius 200.
func DefaultFrame() Frame {
	return Frame{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		CenterX: DefaultCenterX,
		CenterY: DefaultCenterY,
		Radius:  DefaultRadius,
	}
}

// Center returns the frame's center point.
func (f Frame) Center() Point {
	return Point{X: f.CenterX, Y: f.CenterY}
}

// ComputePositions places count items in the default frame.
func ComputePositions(count int) []Point {
	return DefaultFrame().Positions(count)
}

// Positions returns count points in render order:
//   - 0 (or negative): no points
//   - 1: the center
//   - 2: center ± radius/2 on the horizontal axis
//   - 3: an inscribed equilateral triangle starting at -90°, 120° apart
//   - otherwise: count points evenly spaced on the circle starting at -90°
func (f Frame) Positions(count int) []Point {
	switch {
	case count <= 0:
		return []Point{}
	case count == 1:
		return []Point{f.Center()}
	case count == 2:
		return []Point{
			{X: f.CenterX - f.Radius/2, Y: f.CenterY},
			{X: f.CenterX + f.Radius/2, Y: f.CenterY},
		}
	case count == 3:
		return f.ring(3)
	default:
		return f.ring(count)
	}
}

func (f Frame) ring(n int) []Point {
	step := 2 * math.Pi / float64(n)
	pts := make([]Point, n)
	for i := range pts {
		angle := float64(i)*step + startAngle
		pts[i] = Point{
			X: f.CenterX + f.Radius*math.Cos(angle),
			Y: f.CenterY + f.Radius*math.Sin(angle),
		}
	}
	return pts
}
