package metrics

import "math"

const (
	gammaEpsilon = 1e-14
	gammaTiny    = 1e-300
	gammaMaxIter = 1000
)

// upperGammaQ is the regularised upper incomplete gamma function Q(a, x).
func upperGammaQ(a, x float64) float64 {
	switch {
	case x <= 0:
		return 1
	case x < a+1:
		return 1 - lowerSeries(a, x)
	default:
		return upperFraction(a, x)
	}
}

func gammaPrefix(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	return math.Exp(-x + a*math.Log(x) - lg)
}

// lowerSeries evaluates P(a, x) by its power series; converges fast for x < a+1.
func lowerSeries(a, x float64) float64 {
	ap := a
	sum := 1 / a
	del := sum
	for i := 0; i < gammaMaxIter; i++ {
		ap++
		del *= x / ap
		sum += del
		if math.Abs(del) < math.Abs(sum)*gammaEpsilon {
			break
		}
	}
	return sum * gammaPrefix(a, x)
}

// upperFraction evaluates Q(a, x) by a continued fraction (modified Lentz).
func upperFraction(a, x float64) float64 {
	b := x + 1 - a
	c := 1 / gammaTiny
	d := 1 / b
	h := d
	for i := 1; i <= gammaMaxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < gammaTiny {
			d = gammaTiny
		}
		c = b + an/c
		if math.Abs(c) < gammaTiny {
			c = gammaTiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < gammaEpsilon {
			break
		}
	}
	return gammaPrefix(a, x) * h
}
