package gpath

import "image"

// FillRule specifies how to determine which areas are inside a path.
type FillRule int

const (
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd
)

// Operator is the compositing operator of a drawing call.
type Operator int

const (
	// OperatorOver blends the source over the destination using source alpha.
	OperatorOver Operator = iota
	// OperatorDest leaves the destination untouched. Drawing with it is a
	// no-op.
	OperatorDest
)

// StrokeStyle describes how a path is stroked.
type StrokeStyle struct {
	// Width is the stroke width in user space. The pen is a circle of
	// diameter Width transformed by the stroke's matrix.
	Width float64
}

// Paint is the source of color for a drawing operation.
// It is implemented by SolidPaint, LinearGradient, RadialGradient and
// SurfacePattern.
type Paint interface {
	isPaint()
}

// SolidPaint paints a single color.
type SolidPaint struct {
	Color RGBA
}

func (SolidPaint) isPaint() {}

// LinearGradient interpolates colors along the line from P1 to P2.
type LinearGradient struct {
	P1, P2 Vec2
	Stops  []ColorStop
	Extend ExtendMode

	// Matrix maps device space to gradient space. The zero value is
	// treated as the identity.
	Matrix Matrix
}

func (LinearGradient) isPaint() {}

// RadialGradient interpolates colors between the circle (C1, R1) and the
// circle (C2, R2).
type RadialGradient struct {
	C1     Vec2
	R1     float64
	C2     Vec2
	R2     float64
	Stops  []ColorStop
	Extend ExtendMode

	// Matrix maps device space to gradient space. The zero value is
	// treated as the identity.
	Matrix Matrix
}

func (RadialGradient) isPaint() {}

// SurfacePattern paints an image. The GPU path does not support it; drawing
// with it fails with ErrUnsupportedPattern.
type SurfacePattern struct {
	Image image.Image
}

func (SurfacePattern) isPaint() {}

// Solid is a convenience function to create a SolidPaint.
func Solid(c RGBA) SolidPaint {
	return SolidPaint{Color: c}
}

// PatternMatrix returns m, or the identity for the zero matrix.
func PatternMatrix(m Matrix) Matrix {
	if m == (Matrix{}) {
		return Identity()
	}
	return m
}
