package metrics

import (
	"math"

	"github.com/san-kum/gillespie/internal/ssa"
)

// ChiSquareStatistic computes Pearson's statistic for observed key counts
// against expected selection probabilities. Keys with zero probability do not
// contribute degrees of freedom; a count on such a key makes the statistic
// infinite.
func ChiSquareStatistic(counts []int, probs []float64) (float64, int) {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0, 0
	}

	stat := 0.0
	categories := 0
	for k, p := range probs {
		observed := 0.0
		if k < len(counts) {
			observed = float64(counts[k])
		}
		if p <= 0 {
			if observed > 0 {
				stat = math.Inf(1)
			}
			continue
		}
		categories++
		expected := p * float64(total)
		d := observed - expected
		stat += d * d / expected
	}

	if categories == 0 {
		return stat, 0
	}
	return stat, categories - 1
}

// ChiSquarePValue is the probability that a chi-squared variate with df
// degrees of freedom is at least stat.
func ChiSquarePValue(stat float64, df int) float64 {
	if df <= 0 {
		return 1
	}
	if math.IsInf(stat, 1) {
		return 0
	}
	return upperGammaQ(float64(df)/2, stat/2)
}

// ChiSquare counts event keys and compares them to the probabilities
// implied by a propensity table.
type ChiSquare struct {
	name   string
	probs  []float64
	counts []int
}

// NewChiSquare takes the propensities the events were drawn from.
func NewChiSquare(propensities []float64) *ChiSquare {
	return &ChiSquare{
		name:   "chi2",
		probs:  Probabilities(propensities),
		counts: make([]int, len(propensities)),
	}
}

func (c *ChiSquare) Name() string { return c.name }

func (c *ChiSquare) Observe(ev ssa.Event) {
	if ev.Key >= 0 && ev.Key < len(c.counts) {
		c.counts[ev.Key]++
	}
}

func (c *ChiSquare) Value() float64 {
	stat, _ := ChiSquareStatistic(c.counts, c.probs)
	return stat
}

func (c *ChiSquare) PValue() float64 {
	return ChiSquarePValue(ChiSquareStatistic(c.counts, c.probs))
}

func (c *ChiSquare) Counts() []int {
	out := make([]int, len(c.counts))
	copy(out, c.counts)
	return out
}

func (c *ChiSquare) Reset() {
	clear(c.counts)
}

// Probabilities normalises propensities to selection probabilities. An
// all-zero table yields all zeros.
func Probabilities(propensities []float64) []float64 {
	total := 0.0
	for _, p := range propensities {
		total += p
	}
	probs := make([]float64, len(propensities))
	if total <= 0 {
		return probs
	}
	for k, p := range propensities {
		probs[k] = p / total
	}
	return probs
}
