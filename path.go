package gpath

// kappa is the control point distance for approximating a quarter circle
// with a cubic Bezier curve.
const kappa = 0.5522847498307936

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo starts a new contour at Point.
type MoveTo struct {
	Point FixedPoint
}

func (MoveTo) isPathElement() {}

// LineTo draws a straight edge from the current point to Point.
type LineTo struct {
	Point FixedPoint
}

func (LineTo) isPathElement() {}

// CurveTo draws a cubic Bezier curve from the current point through the two
// control points to Point.
type CurveTo struct {
	Control1 FixedPoint
	Control2 FixedPoint
	Point    FixedPoint
}

func (CurveTo) isPathElement() {}

// Close ends the current contour. It is always preceded by a LineTo back to
// the contour start when the contour does not already end there.
type Close struct{}

func (Close) isPathElement() {}

// PathVisitor receives the events of a path in order. Coordinates are in
// device space. Returning an error stops the walk and is passed back to the
// caller of Interpret.
type PathVisitor interface {
	MoveTo(p Vec2) error
	LineTo(p Vec2) error
	CurveTo(p1, p2, p3 Vec2) error
	ClosePath() error
}

// PathSource is anything that can replay path events to a visitor.
//
// Interpret forwards every event. InterpretFlat replaces curves by line
// segments within tolerance and never calls CurveTo.
type PathSource interface {
	Interpret(v PathVisitor) error
	InterpretFlat(tolerance float64, v PathVisitor) error
}

// Path is a sequence of contours stored in 24.8 fixed-point coordinates.
type Path struct {
	elements  []PathElement
	start     FixedPoint
	current   FixedPoint
	hasPoint  bool
	needsMove bool
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo starts a new contour.
func (p *Path) MoveTo(x, y float64) {
	pt := FixedPt(V2(x, y))
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
	p.hasPoint = true
	p.needsMove = false
}

// LineTo adds a straight edge. Without a current point it behaves like
// MoveTo.
func (p *Path) LineTo(x, y float64) {
	if !p.hasPoint {
		p.MoveTo(x, y)
		return
	}
	p.ensureMove()
	pt := FixedPt(V2(x, y))
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// CurveTo adds a cubic Bezier curve.
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.hasPoint {
		p.MoveTo(x1, y1)
	}
	p.ensureMove()
	pt := FixedPt(V2(x3, y3))
	p.elements = append(p.elements, CurveTo{
		Control1: FixedPt(V2(x1, y1)),
		Control2: FixedPt(V2(x2, y2)),
		Point:    pt,
	})
	p.current = pt
}

// QuadTo adds a quadratic Bezier curve, stored as the equivalent cubic.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	if !p.hasPoint {
		p.MoveTo(cx, cy)
	}
	p0 := p.current.Vec2()
	c := V2(cx, cy)
	p3 := V2(x, y)
	c1 := p0.Lerp(c, 2.0/3.0)
	c2 := p3.Lerp(c, 2.0/3.0)
	p.CurveTo(c1.X, c1.Y, c2.X, c2.Y, x, y)
}

// Close closes the current contour with a straight edge back to its start.
func (p *Path) Close() {
	if !p.hasPoint || p.needsMove {
		return
	}
	if p.current != p.start {
		p.elements = append(p.elements, LineTo{Point: p.start})
		p.current = p.start
	}
	p.elements = append(p.elements, Close{})
	p.needsMove = true
}

// ensureMove re-opens a contour at the last start point after Close.
func (p *Path) ensureMove() {
	if p.needsMove {
		p.elements = append(p.elements, MoveTo{Point: p.start})
		p.needsMove = false
	}
}

// Rectangle adds a closed axis-aligned rectangle.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a closed circle made of four cubic arcs.
func (p *Path) Circle(cx, cy, r float64) {
	k := kappa * r
	p.MoveTo(cx+r, cy)
	p.CurveTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	p.CurveTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	p.CurveTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	p.CurveTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	p.Close()
}

// Elements returns the path elements. The slice must not be modified.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// Len returns the number of elements.
func (p *Path) Len() int {
	return len(p.elements)
}

// Reset removes all elements, keeping the allocated storage.
func (p *Path) Reset() {
	p.elements = p.elements[:0]
	p.hasPoint = false
	p.needsMove = false
}

// Transform returns a copy of the path with every point mapped by m.
func (p *Path) Transform(m Matrix) *Path {
	tp := func(pt FixedPoint) FixedPoint { return FixedPt(m.TransformPoint(pt.Vec2())) }
	out := &Path{
		elements:  make([]PathElement, 0, len(p.elements)),
		start:     tp(p.start),
		current:   tp(p.current),
		hasPoint:  p.hasPoint,
		needsMove: p.needsMove,
	}
	for _, e := range p.elements {
		switch e := e.(type) {
		case MoveTo:
			out.elements = append(out.elements, MoveTo{Point: tp(e.Point)})
		case LineTo:
			out.elements = append(out.elements, LineTo{Point: tp(e.Point)})
		case CurveTo:
			out.elements = append(out.elements, CurveTo{
				Control1: tp(e.Control1),
				Control2: tp(e.Control2),
				Point:    tp(e.Point),
			})
		case Close:
			out.elements = append(out.elements, e)
		}
	}
	return out
}

// Interpret replays the path to v.
func (p *Path) Interpret(v PathVisitor) error {
	for _, e := range p.elements {
		var err error
		switch e := e.(type) {
		case MoveTo:
			err = v.MoveTo(e.Point.Vec2())
		case LineTo:
			err = v.LineTo(e.Point.Vec2())
		case CurveTo:
			err = v.CurveTo(e.Control1.Vec2(), e.Control2.Vec2(), e.Point.Vec2())
		case Close:
			err = v.ClosePath()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// InterpretFlat replays the path to v with every curve replaced by line
// segments that stay within tolerance of it.
func (p *Path) InterpretFlat(tolerance float64, v PathVisitor) error {
	return p.Interpret(NewFlattener(v, tolerance))
}

// Flattener is a PathVisitor that forwards to another visitor, converting
// curves into line segments. Any event source can use it to implement
// InterpretFlat.
type Flattener struct {
	visitor   PathVisitor
	tolerance float64
	current   Vec2
}

// NewFlattener returns a Flattener forwarding to v.
func NewFlattener(v PathVisitor, tolerance float64) *Flattener {
	return &Flattener{visitor: v, tolerance: tolerance}
}

// MoveTo implements PathVisitor.
func (f *Flattener) MoveTo(p Vec2) error {
	f.current = p
	return f.visitor.MoveTo(p)
}

// LineTo implements PathVisitor.
func (f *Flattener) LineTo(p Vec2) error {
	f.current = p
	return f.visitor.LineTo(p)
}

// CurveTo implements PathVisitor.
func (f *Flattener) CurveTo(p1, p2, p3 Vec2) error {
	c := Cubic{f.current, p1, p2, p3}
	for q := range c.Flatten(f.tolerance) {
		if err := f.visitor.LineTo(q); err != nil {
			return err
		}
	}
	f.current = p3
	return nil
}

// ClosePath implements PathVisitor.
func (f *Flattener) ClosePath() error {
	return f.visitor.ClosePath()
}
