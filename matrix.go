package gpath

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Multiply multiplies two matrices (m * other).
// The result applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(v Vec2) Vec2 {
	return Vec2{
		X: m.A*v.X + m.B*v.Y,
		Y: m.D*v.X + m.E*v.Y,
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse matrix.
// Returns the identity matrix if the matrix is not invertible.
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// TransformedCircleMajorAxis returns the length of the major axis of the
// ellipse obtained by transforming a circle of the given radius by m.
//
// The singular values of the linear part are sqrt(f ± hypot(g, h)) with
// f = (i+j)/2, g = (i-j)/2, h = ac+bd where i = a²+b² and j = c²+d² are the
// squared column lengths.
func (m Matrix) TransformedCircleMajorAxis(radius float64) float64 {
	a, b := m.A, m.D
	c, d := m.B, m.E

	i := a*a + b*b
	j := c*c + d*d

	f := 0.5 * (i + j)
	g := 0.5 * (i - j)
	h := a*c + b*d

	return radius * math.Sqrt(f+math.Hypot(g, h))
}

// Matrix4 is a 4x4 single-precision matrix in row-major order, used for
// texture matrices and shader constants. m[4*r+c] is row r, column c.
type Matrix4 f32.Mat4

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate4 returns a 4x4 translation matrix.
func Translate4(x, y, z float32) Matrix4 {
	m := Identity4()
	m[3], m[7], m[11] = x, y, z
	return m
}

// Scale4 returns a 4x4 scaling matrix.
func Scale4(x, y, z float32) Matrix4 {
	m := Identity4()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Affine4 embeds a 2D affine transform into a 4x4 matrix acting on (x, y, z, 1)
// with z passed through.
func Affine4(a Matrix) Matrix4 {
	return Matrix4{
		float32(a.A), float32(a.B), 0, float32(a.C),
		float32(a.D), float32(a.E), 0, float32(a.F),
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n. Applied to a column vector, n acts first.
func (m Matrix4) Mul(n Matrix4) Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var s float32
			for k := 0; k < 4; k++ {
				s += m[4*row+k] * n[4*k+col]
			}
			r[4*row+col] = s
		}
	}
	return r
}

// Apply transforms the point (x, y, z, 1) and returns the full 4-vector.
func (m Matrix4) Apply(x, y, z float32) f32.Vec4 {
	return f32.Vec4{
		m[0]*x + m[1]*y + m[2]*z + m[3],
		m[4]*x + m[5]*y + m[6]*z + m[7],
		m[8]*x + m[9]*y + m[10]*z + m[11],
		m[12]*x + m[13]*y + m[14]*z + m[15],
	}
}

// Transpose returns the transpose of m. WGSL matrices are column-major, so
// uniforms are uploaded transposed.
func (m Matrix4) Transpose() Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[4*col+row] = m[4*row+col]
		}
	}
	return r
}
