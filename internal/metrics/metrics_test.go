package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/gillespie/internal/ssa"
)

func TestChiSquarePValue(t *testing.T) {
	tests := []struct {
		name string
		stat float64
		df   int
		want float64
	}{
		{"df2 closed form", 3.0, 2, math.Exp(-1.5)},
		{"df1 5%", 3.841, 1, 0.05},
		{"df2 5%", 5.991, 2, 0.05},
		{"df10 1%", 23.209, 10, 0.01},
		{"zero stat", 0, 4, 1},
		{"no df", 12, 0, 1},
		{"infinite", math.Inf(1), 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChiSquarePValue(tt.stat, tt.df)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Errorf("ChiSquarePValue(%v, %d) = %v, want %v", tt.stat, tt.df, got, tt.want)
			}
		})
	}
}

func TestChiSquareStatistic(t *testing.T) {
	stat, df := ChiSquareStatistic([]int{10, 0, 30}, []float64{0.25, 0, 0.75})
	if stat != 0 {
		t.Errorf("expected exact fit to give 0, got %f", stat)
	}
	if df != 1 {
		t.Errorf("expected 1 degree of freedom, got %d", df)
	}

	stat, _ = ChiSquareStatistic([]int{10, 1, 30}, []float64{0.25, 0, 0.75})
	if !math.IsInf(stat, 1) {
		t.Errorf("count on zero-probability key should be infinite, got %f", stat)
	}

	stat, df = ChiSquareStatistic(nil, []float64{1})
	if stat != 0 || df != 0 {
		t.Errorf("empty counts should give (0, 0), got (%f, %d)", stat, df)
	}
}

func TestChiSquareMetric(t *testing.T) {
	m := NewChiSquare([]float64{1, 3})
	for i := 0; i < 25; i++ {
		m.Observe(ssa.Event{Key: 0})
	}
	for i := 0; i < 75; i++ {
		m.Observe(ssa.Event{Key: 1})
	}
	m.Observe(ssa.Event{Key: 9})

	if m.Value() != 0 {
		t.Errorf("expected 0 statistic, got %f", m.Value())
	}
	if m.PValue() != 1 {
		t.Errorf("expected p-value 1, got %f", m.PValue())
	}
	if c := m.Counts(); c[0] != 25 || c[1] != 75 {
		t.Errorf("unexpected counts %v", c)
	}

	m.Reset()
	if c := m.Counts(); c[0] != 0 || c[1] != 0 {
		t.Errorf("Reset did not clear counts: %v", c)
	}
}

func TestProbabilities(t *testing.T) {
	p := Probabilities([]float64{1, 0, 3})
	if p[0] != 0.25 || p[1] != 0 || p[2] != 0.75 {
		t.Errorf("unexpected probabilities %v", p)
	}

	p = Probabilities([]float64{0, 0})
	if p[0] != 0 || p[1] != 0 {
		t.Errorf("all-zero table should give zeros, got %v", p)
	}
}

func TestKSExponential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewKSExponential(2.0)
	for i := 0; i < 20000; i++ {
		m.Observe(ssa.Event{Dt: rng.ExpFloat64() / 2.0})
	}
	if !m.Passes(0.001) {
		t.Errorf("Exp(2) samples rejected: D=%f", m.Value())
	}

	wrong := NewKSExponential(1.0)
	for i := 0; i < 20000; i++ {
		wrong.Observe(ssa.Event{Dt: rng.ExpFloat64() / 2.0})
	}
	if wrong.Passes(0.001) {
		t.Errorf("Exp(2) samples accepted as Exp(1): D=%f", wrong.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestKSCritical(t *testing.T) {
	got := KSCritical(100, 0.05)
	if math.Abs(got-0.1358) > 1e-3 {
		t.Errorf("KSCritical(100, 0.05) = %f, want ~0.1358", got)
	}
	if !math.IsInf(KSCritical(0, 0.05), 1) {
		t.Error("expected infinite critical value for no samples")
	}
}

func TestMeanDtAndRate(t *testing.T) {
	mean := NewMeanDt()
	rate := NewRate()

	if mean.Value() != 0 || rate.Value() != 0 {
		t.Error("expected zero values before any observation")
	}

	for _, dt := range []float64{0.5, 1.5, 1.0} {
		ev := ssa.Event{Dt: dt}
		mean.Observe(ev)
		rate.Observe(ev)
	}

	if mean.Value() != 1.0 {
		t.Errorf("expected mean 1.0, got %f", mean.Value())
	}
	if rate.Value() != 1.0 {
		t.Errorf("expected rate 1.0, got %f", rate.Value())
	}

	mean.Reset()
	rate.Reset()
	if mean.Value() != 0 || rate.Value() != 0 {
		t.Error("expected zero values after reset")
	}
}
