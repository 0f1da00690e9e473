package metrics

import "github.com/san-kum/gillespie/internal/ssa"

// MeanDt averages the waiting times of observed events. For a fixed table it
// converges to 1/total.
type MeanDt struct {
	name    string
	sum     float64
	samples int
}

func NewMeanDt() *MeanDt {
	return &MeanDt{name: "mean_dt"}
}

func (m *MeanDt) Name() string { return m.name }

func (m *MeanDt) Observe(ev ssa.Event) {
	m.sum += ev.Dt
	m.samples++
}

func (m *MeanDt) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDt) Reset() {
	m.sum = 0
	m.samples = 0
}

// Rate estimates the total propensity as events per unit of simulated time.
type Rate struct {
	name    string
	elapsed float64
	events  int
}

func NewRate() *Rate {
	return &Rate{name: "rate"}
}

func (r *Rate) Name() string { return r.name }

func (r *Rate) Observe(ev ssa.Event) {
	r.elapsed += ev.Dt
	r.events++
}

func (r *Rate) Value() float64 {
	if r.elapsed == 0 {
		return 0
	}
	return float64(r.events) / r.elapsed
}

func (r *Rate) Reset() {
	r.elapsed = 0
	r.events = 0
}
