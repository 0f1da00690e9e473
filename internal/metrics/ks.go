package metrics

import (
	"math"
	"sort"

	"github.com/san-kum/gillespie/internal/ssa"
)

// KSExponentialStatistic returns the Kolmogorov-Smirnov distance between the
// empirical distribution of samples and Exp(rate). samples is not modified.
func KSExponentialStatistic(samples []float64, rate float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	d := 0.0
	fn := float64(n)
	for i, x := range sorted {
		cdf := 1 - math.Exp(-rate*x)
		d = math.Max(d, math.Max(float64(i+1)/fn-cdf, cdf-float64(i)/fn))
	}
	return d
}

// KSCritical is the asymptotic critical distance for n samples at
// significance level alpha.
func KSCritical(n int, alpha float64) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(-0.5*math.Log(alpha/2)) / math.Sqrt(float64(n))
}

// KSExponential keeps every observed waiting time and reports the KS distance
// to Exp(rate).
type KSExponential struct {
	name string
	rate float64
	dts  []float64
}

func NewKSExponential(rate float64) *KSExponential {
	return &KSExponential{name: "ks_dt", rate: rate}
}

func (k *KSExponential) Name() string { return k.name }

func (k *KSExponential) Observe(ev ssa.Event) {
	k.dts = append(k.dts, ev.Dt)
}

func (k *KSExponential) Value() float64 {
	return KSExponentialStatistic(k.dts, k.rate)
}

// Passes reports whether the waiting times are consistent with Exp(rate) at
// significance level alpha.
func (k *KSExponential) Passes(alpha float64) bool {
	return k.Value() < KSCritical(len(k.dts), alpha)
}

func (k *KSExponential) Reset() {
	k.dts = k.dts[:0]
}
