package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentiles returns the requested quantiles (each in [0,1]) of the good
// values in v, using the empirical (nearest-rank) definition. Every entry
// is NaN when nothing survives the mask.
func Percentiles(v []float64, mask []bool, ps []float64) []float64 {
	out := make([]float64, len(ps))
	good := goodValues(v, mask)
	if len(good) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sort.Float64s(good)
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.Empirical, good, nil)
	}
	return out
}

// GoodFraction reports the share of samples that are both unmasked and
// finite, a quick data-quality number for run summaries.
func GoodFraction(v []float64, mask []bool) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return float64(len(goodValues(v, mask))) / float64(len(v))
}
