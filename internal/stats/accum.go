package stats

import "math"

// Accumulator collects running count, sum, and sum of squares so a
// group can be summarized in one pass without retaining its values.
type Accumulator struct {
	Count float64
	Sum   float64
	SumSq float64
}

func (a *Accumulator) Add(v float64) {
	a.Count++
	a.Sum += v
	a.SumSq += v * v
}

func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / a.Count
}

// Variance returns the sample variance (n-1 denominator).
// Fewer than two values yields zero. Rounding can push the
// sum-of-squares form slightly negative; that is clamped.
func (a *Accumulator) Variance() float64 {
	if a.Count < 2 {
		return 0
	}
	mean := a.Mean()
	variance := a.SumSq - a.Count*mean*mean
	if variance < 0 {
		return 0
	}
	return variance / (a.Count - 1)
}

func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}
