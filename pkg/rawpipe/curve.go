package rawpipe

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/interp"
)

// Control points of the radial sharpening curve: normalized distance from
// the image center to sharpening strength. Corners get more sharpening than
// the center to offset lens softness.
var radialCurvePoints = [11][2]float64{
	{0.0, 0.30},
	{0.1, 0.30},
	{0.2, 0.32},
	{0.3, 0.35},
	{0.4, 0.40},
	{0.5, 0.46},
	{0.6, 0.53},
	{0.7, 0.61},
	{0.8, 0.70},
	{0.9, 0.80},
	{1.0, 0.90},
}

// PiecewiseLinear builds a function that linearly interpolates between the
// given (x, y) points. At least two points with strictly increasing x are
// required. Outside the covered range it returns the value of the nearest
// end point.
func PiecewiseLinear(points [][2]float64) (func(float64) float64, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d points, need at least 2", ErrInvalidCurve, len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		// interp panics on unordered or NaN abscissae.
		if i > 0 && !(p[0] > xs[i-1]) {
			return nil, fmt.Errorf("%w: x[%d] = %v does not exceed x[%d] = %v", ErrInvalidCurve, i, p[0], i-1, xs[i-1])
		}
		xs[i], ys[i] = p[0], p[1]
	}
	if math.IsNaN(xs[0]) {
		return nil, fmt.Errorf("%w: x[0] is NaN", ErrInvalidCurve)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}
	lo, hi := xs[0], xs[len(xs)-1]
	return func(x float64) float64 {
		switch {
		case x <= lo:
			return ys[0]
		case x >= hi:
			return ys[len(ys)-1]
		}
		return pl.Predict(x)
	}, nil
}

var radialCurve = sync.OnceValue(func() func(float64) float64 {
	f, err := PiecewiseLinear(radialCurvePoints[:])
	if err != nil {
		// The control points are constant and sorted.
		panic(err)
	}
	return f
})

// RadialCurve returns the shared radial sharpening curve.
func RadialCurve() func(float64) float64 {
	return radialCurve()
}
