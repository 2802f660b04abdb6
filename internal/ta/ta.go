package ta

import "math"

// Rolling statistics over the trailing n observations of a series. All
// functions return NaN when the input is too short, so callers can guard
// once at the boundary.

func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// Returns computes simple period-over-period returns. Zero denominators
// yield a zero return rather than Inf.
func Returns(vals []float64) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, vals[i]/vals[i-1]-1)
	}
	return out
}

// AnnualizedVol is the rolling standard deviation of returns over the
// trailing n observations, scaled by sqrt(252) trading days.
func AnnualizedVol(returns []float64, n int) float64 {
	sd := StdDev(returns, n)
	if math.IsNaN(sd) {
		return math.NaN()
	}
	return sd * math.Sqrt(252)
}
