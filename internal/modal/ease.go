package modal

import "math"

// Bezier is a CSS cubic-bezier timing function with fixed end points (0,0) and (1,1).
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// DialogCurve is cubic-bezier(0.22, 1, 0.36, 1), the dialog's timing curve.
var DialogCurve = Bezier{X1: 0.22, Y1: 1, X2: 0.36, Y2: 1}

// Ease evaluates the dialog curve at linear progress t in [0,1].
func Ease(t float64) float64 { return DialogCurve.At(t) }

// At returns the eased value for linear progress x.
func (b Bezier) At(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return sample(b.Y1, b.Y2, b.solve(x))
}

// solve finds the curve parameter whose x equals x: Newton first, then bisection.
func (b Bezier) solve(x float64) float64 {
	t := x
	for i := 0; i < 8; i++ {
		dx := sample(b.X1, b.X2, t) - x
		if math.Abs(dx) < 1e-7 {
			return t
		}
		d := slope(b.X1, b.X2, t)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= dx / d
	}
	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 50; i++ {
		v := sample(b.X1, b.X2, t)
		if math.Abs(v-x) < 1e-7 {
			return t
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

func sample(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func slope(p1, p2, t float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}
