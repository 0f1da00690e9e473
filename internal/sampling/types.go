package sampling

import (
	"errors"
	"fmt"

	"github.com/san-kum/gillespie/internal/ssa"
)

const (
	DefaultMaxRetries = 8
	// NoRetries makes a run fail on the first ErrLadderExhausted.
	NoRetries = -1
)

var (
	ErrNoSamples = errors.New("sampling: samples must be positive")
	ErrNoEvents  = errors.New("sampling: propensity table is empty")
)

type Metric interface {
	Name() string
	Observe(ev ssa.Event)
	Value() float64
	Reset()
}

// Observer sees every event together with the simulated time at which it
// fired.
type Observer interface {
	OnEvent(ev ssa.Event, t float64)
}

type Config struct {
	Sampler      string
	Propensities []float64
	Samples      int
	Seed         int64
	// MaxRetries bounds consecutive redraws after ErrLadderExhausted. Zero
	// means DefaultMaxRetries; a negative value disables redraws.
	MaxRetries int
	KeepEvents bool
}

type Result struct {
	Seed     int64
	Events   []ssa.Event
	Counts   []int
	Elapsed  float64
	Retries  int
	Metrics  map[string]float64
	Duration float64 // wall-clock seconds
}

// Total is the number of events drawn.
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// RunError wraps a sampler failure with the draw index it happened at.
type RunError struct {
	Draw    int
	Time    float64
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("draw %d (t=%.4f): %v", e.Draw, e.Time, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
