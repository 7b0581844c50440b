// Package stroke builds stroke outlines by convolving a polygonal pen with
// the path.
//
// # Algorithm Overview
//
// The stroke pen is a circle of the stroke's half width in user space. The
// stroke matrix turns it into an ellipse in device space, which NewPen
// approximates with an even number of vertices chosen by VerticesNeeded so
// that the polygon never strays more than the tolerance from the ellipse.
//
// Walking the path, the stroker keeps two active pen vertices: the one
// furthest to the right of the current tangent (forward) and the one
// furthest to the left (backward). Every new path point contributes a quad
// between the previous forward/backward hull points and the new ones. When
// the tangent turns, the active vertices walk around the pen one step at a
// time, and each step emits another triangle, so corners receive a round
// join swept by the pen itself.
//
// The resulting triangles overlap freely. They are meant for a stencil mask
// drawn with an "equal 0, increment" test, which counts every pixel once.
//
// # Usage
//
//	pen := stroke.NewPen(width/2, tolerance, ctm)
//	s := stroke.NewStroker(pen, stroke.NewMesh(builder), tolerance)
//	if _, err := s.Stroke(path); err != nil {
//	    return err
//	}
//
// Open contours end flush with the pen at their end points; no caps are
// added. Closed contours are joined at their start point.
package stroke
