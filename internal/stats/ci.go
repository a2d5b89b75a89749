package stats

import "math"

// zCritical95 is the normal critical value for a 95% two-sided interval.
const zCritical95 = 1.96

// StdErr computes the standard error of the mean: sd / sqrt(n).
// Returns 0 for fewer than two samples or a zero standard deviation,
// matching the degenerate-group policy in Summarize.
func StdErr(stdDev float64, sampleCount int) float64 {
	if sampleCount < 2 || stdDev == 0 {
		return 0
	}
	return stdDev / math.Sqrt(float64(sampleCount))
}

// HalfWidth95 computes the approximate 95% confidence-interval
// half-width around a mean: 1.96 * (sd / sqrt(n)).
//
// The normal approximation is deliberate: the half-width stays a fixed
// linear multiple of the standard error regardless of sample size, so
// error bars across groups with different n remain directly comparable.
func HalfWidth95(stdDev float64, sampleCount int) float64 {
	return zCritical95 * StdErr(stdDev, sampleCount)
}

// Interval95 returns the symmetric 95% interval bounds around mean.
func Interval95(mean, stdDev float64, sampleCount int) (lower, upper float64) {
	margin := HalfWidth95(stdDev, sampleCount)
	return mean - margin, mean + margin
}
