package stats

import (
	"math"
	"sort"
)

// A sample is good when its mask entry is true (or the mask is nil) AND the
// value is finite. Non-finite values are excluded even when unmasked, so NaN
// and Inf pixels never poison a statistic.
func goodValues(v []float64, mask []bool) []float64 {
	if mask != nil && len(mask) != len(v) {
		panic("stats: mask length does not match data length")
	}
	good := make([]float64, 0, len(v))
	for i, x := range v {
		if mask != nil && !mask[i] {
			continue
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		good = append(good, x)
	}
	return good
}

// sortedMedian returns the median of a pre-sorted slice, averaging the two
// central values for even counts.
func sortedMedian(s []float64) float64 {
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

// MedStdDev computes the median of the good samples and the sample standard
// deviation about that median, sqrt(sum((x-med)^2)/(n-1)). The deviation is
// taken about the median rather than the mean, which makes the estimate
// robust against the asymmetric outliers cosmic rays leave in detector data.
//
// mask marks samples to include (true = good); nil means all. Degenerate
// inputs are signaled through the results, never an error: zero good samples
// yield (NaN, NaN), exactly one yields (0, value).
func MedStdDev(v []float64, mask []bool) (std, med float64) {
	good := goodValues(v, mask)
	switch len(good) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return 0, good[0]
	}
	sort.Float64s(good)
	med = sortedMedian(good)
	var sumsq float64
	for _, x := range good {
		d := x - med
		sumsq += d * d
	}
	std = math.Sqrt(sumsq / float64(len(good)-1))
	return std, med
}

// MedStdDevColumns applies MedStdDev down each column of a 2D array
// (rows = integrations, columns = wavelength/pixel), returning one
// (std, med) pair per column. mask may be nil.
func MedStdDevColumns(v [][]float64, mask [][]bool) (std, med []float64) {
	if len(v) == 0 {
		return nil, nil
	}
	ncol := len(v[0])
	std = make([]float64, ncol)
	med = make([]float64, ncol)
	col := make([]float64, len(v))
	var colMask []bool
	if mask != nil {
		colMask = make([]bool, len(v))
	}
	for j := 0; j < ncol; j++ {
		for i := range v {
			col[i] = v[i][j]
			if mask != nil {
				colMask[i] = mask[i][j]
			}
		}
		std[j], med[j] = MedStdDev(col, colMask)
	}
	return std, med
}

// MaskedMedian returns the median of the good samples, NaN when there are none.
func MaskedMedian(v []float64, mask []bool) float64 {
	good := goodValues(v, mask)
	sort.Float64s(good)
	return sortedMedian(good)
}

// MaskedMean returns the arithmetic mean of the good samples, NaN when there
// are none.
func MaskedMean(v []float64, mask []bool) float64 {
	good := goodValues(v, mask)
	if len(good) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range good {
		sum += x
	}
	return sum / float64(len(good))
}

// MaskedStd returns the population standard deviation about the mean of the
// good samples (denominator n), matching the conventional estimator used for
// background color-scale bounds. NaN when there are no good samples.
func MaskedStd(v []float64, mask []bool) float64 {
	good := goodValues(v, mask)
	if len(good) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range good {
		sum += x
	}
	mean := sum / float64(len(good))
	var sumsq float64
	for _, x := range good {
		d := x - mean
		sumsq += d * d
	}
	return math.Sqrt(sumsq / float64(len(good)))
}

// MaskedMinMax returns the smallest and largest good samples; both NaN when
// there are none.
func MaskedMinMax(v []float64, mask []bool) (min, max float64) {
	good := goodValues(v, mask)
	if len(good) == 0 {
		return math.NaN(), math.NaN()
	}
	min, max = good[0], good[0]
	for _, x := range good[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}
