// Package geometry holds the box types layout measurement works with.
package geometry

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Rect is a bounding box using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Offset {
	return Offset{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Equal reports whether two rects match within floating-point tolerance.
func (r Rect) Equal(other Rect) bool {
	return floatEqual(r.Left, other.Left) &&
		floatEqual(r.Top, other.Top) &&
		floatEqual(r.Right, other.Right) &&
		floatEqual(r.Bottom, other.Bottom)
}

// Translate returns a new rect offset by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Delta describes how to project a layout box back onto a snapshot box:
// scale around the layout center, then translate.
type Delta struct {
	Translate Offset
	Scale     Offset
}

// IdentityDelta leaves a box where it is.
var IdentityDelta = Delta{Scale: Offset{X: 1, Y: 1}}

// DeltaBetween computes the delta that maps to onto from. Axes with zero
// extent on the target keep a scale of 1.
func DeltaBetween(from, to Rect) Delta {
	d := Delta{Scale: Offset{X: 1, Y: 1}}
	if to.Width() > epsilon {
		d.Scale.X = from.Width() / to.Width()
	}
	if to.Height() > epsilon {
		d.Scale.Y = from.Height() / to.Height()
	}
	fc, tc := from.Center(), to.Center()
	d.Translate = Offset{X: fc.X - tc.X, Y: fc.Y - tc.Y}
	return d
}

// IsIdentity reports whether the delta leaves a box unchanged.
func (d Delta) IsIdentity() bool {
	return floatEqual(d.Translate.X, 0) && floatEqual(d.Translate.Y, 0) &&
		floatEqual(d.Scale.X, 1) && floatEqual(d.Scale.Y, 1)
}

// Apply projects r through the delta.
func (d Delta) Apply(r Rect) Rect {
	c := r.Center()
	halfW := r.Width() * d.Scale.X * 0.5
	halfH := r.Height() * d.Scale.Y * 0.5
	cx, cy := c.X+d.Translate.X, c.Y+d.Translate.Y
	return Rect{Left: cx - halfW, Top: cy - halfH, Right: cx + halfW, Bottom: cy + halfH}
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
