package curve

import "github.com/gogpu/gpath"

// SplitParams returns the parameters at which c must be cut so that no
// piece contains an inflection or a loop double point in its interior.
// The result has zero, one or two values in (0, 1), ascending.
func SplitParams(c gpath.Cubic) []float64 {
	d := Discriminate(c)
	if d.D1 == 0 && d.D2 == 0 {
		return nil
	}

	var t1, t2 float64
	if d.D1 == 0 {
		t1 = d.D3 / (3 * d.D2)
		t2 = t1
	} else {
		ls, lt, ms, mt := d.roots(3*d.D2*d.D2 - 4*d.D1*d.D3)
		t1 = ls / lt
		t2 = ms / mt
	}
	if t1 > t2 {
		t1, t2 = t2, t1
	}

	switch {
	case t1 >= 1 || t2 <= 0 || (t1 <= 0 && t2 >= 1):
		return nil
	case t1 <= 0:
		return []float64{t2}
	case t2 == t1 || t2 >= 1:
		return []float64{t1}
	default:
		return []float64{t1, t2}
	}
}

// SplitAtInflections calls emit with c, or with the two or three pieces of c
// cut at SplitParams, in curve order.
func SplitAtInflections(c gpath.Cubic, emit func(gpath.Cubic) error) error {
	ts := SplitParams(c)
	switch len(ts) {
	case 0:
		return emit(c)
	case 1:
		left, right := c.Subdivide(ts[0])
		if err := emit(left); err != nil {
			return err
		}
		return emit(right)
	default:
		t1, t2 := ts[0], ts[1]
		left, rest := c.Subdivide(t1)
		mid, right := rest.Subdivide((t2 - t1) / (1 - t1))
		for _, piece := range [...]gpath.Cubic{left, mid, right} {
			if err := emit(piece); err != nil {
				return err
			}
		}
		return nil
	}
}
