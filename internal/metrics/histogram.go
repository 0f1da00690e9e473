package metrics

import "math"

// Density bins values on [0, upper) into n equal bins and returns the
// empirical density of each bin. Values outside the range count toward the
// normalisation but land in no bin.
func Density(values []float64, n int, upper float64) []float64 {
	bins := make([]float64, n)
	if n == 0 || upper <= 0 || len(values) == 0 {
		return bins
	}
	width := upper / float64(n)
	for _, v := range values {
		if v < 0 || v >= upper {
			continue
		}
		i := int(v / width)
		if i >= n {
			i = n - 1
		}
		bins[i]++
	}
	norm := float64(len(values)) * width
	for i := range bins {
		bins[i] /= norm
	}
	return bins
}

// ExponentialDensity evaluates the Exp(rate) density at the midpoint of each
// of n bins on [0, upper), matching the layout of Density.
func ExponentialDensity(rate float64, n int, upper float64) []float64 {
	bins := make([]float64, n)
	if n == 0 {
		return bins
	}
	width := upper / float64(n)
	for i := range bins {
		mid := (float64(i) + 0.5) * width
		bins[i] = rate * math.Exp(-rate*mid)
	}
	return bins
}
