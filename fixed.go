package gpath

import "math"

// Fixed is a 24.8 fixed-point coordinate. Paths store their points in this
// form and convert to float64 vectors when they are interpreted.
type Fixed int32

const (
	fixedFracBits = 8
	fixedOne      = 1 << fixedFracBits
)

// FixedFromFloat rounds f to the nearest representable fixed-point value.
func FixedFromFloat(f float64) Fixed {
	return Fixed(math.Round(f * fixedOne))
}

// Float converts the fixed-point value back to float64.
func (x Fixed) Float() float64 {
	return float64(x) / fixedOne
}

// FixedPoint is a point in fixed-point coordinates.
type FixedPoint struct {
	X, Y Fixed
}

// FixedPt converts a float point into fixed-point coordinates.
func FixedPt(p Vec2) FixedPoint {
	return FixedPoint{X: FixedFromFloat(p.X), Y: FixedFromFloat(p.Y)}
}

// Vec2 converts the point to a floating vector.
func (p FixedPoint) Vec2() Vec2 {
	return Vec2{X: p.X.Float(), Y: p.Y.Float()}
}
