package ssa

import "math/bits"

// Indexed keeps propensities in a Fenwick tree so that both Update and Next
// run in O(log n). It selects the lowest key whose cumulative propensity
// exceeds the uniform draw, the same rule as the ladder in [Direct], so the
// two differ only in rounding of the partial sums.
type Indexed struct {
	values []float64
	tree   []float64 // 1-based Fenwick array, len(values)+1
	total  float64
	top    int // highest power of two <= len(values)
}

func NewIndexed(n int) *Indexed {
	s := &Indexed{}
	s.Reset(n)
	return s
}

func (s *Indexed) Reset(n int) {
	if n < 0 {
		n = 0
	}
	if cap(s.values) >= n && cap(s.tree) > n {
		s.values = s.values[:n]
		s.tree = s.tree[:n+1]
		clear(s.values)
		clear(s.tree)
	} else {
		s.values = make([]float64, n)
		s.tree = make([]float64, n+1)
	}
	s.total = 0
	s.top = 0
	if n > 0 {
		s.top = 1 << (bits.Len(uint(n)) - 1)
	}
}

func (s *Indexed) Size() int { return len(s.values) }

// Update replaces the propensity of key with rate. As with [Direct.Update],
// negative rates are the caller's bug and are not rejected.
func (s *Indexed) Update(key int, rate float64) error {
	if err := checkKey(key, len(s.values)); err != nil {
		return err
	}
	delta := rate - s.values[key]
	s.values[key] = rate
	s.total += delta
	for i := key + 1; i < len(s.tree); i += i & -i {
		s.tree[i] += delta
	}
	return nil
}

func (s *Indexed) Propensity(key int) (float64, error) {
	if err := checkKey(key, len(s.values)); err != nil {
		return 0, err
	}
	return s.values[key], nil
}

func (s *Indexed) TotalPropensity() float64 { return s.total }

func (s *Indexed) Next(src Source) (Event, error) {
	if !positive(s.total) {
		return Event{}, ErrNoPropensity
	}

	draw := s.total * src.Float64()

	// Descend the tree, skipping every block whose sum does not exceed what
	// is left of the draw. pos ends at the number of keys fully below it.
	pos, rem := 0, draw
	for step := s.top; step > 0; step >>= 1 {
		next := pos + step
		if next < len(s.tree) && s.tree[next] <= rem {
			pos = next
			rem -= s.tree[next]
		}
	}

	// Tree nodes accumulate deltas, so a key zeroed after several updates
	// can keep a rounding-sized interval. Such keys are never selected.
	for pos < len(s.values) && !(s.values[pos] > 0) {
		pos++
	}

	if pos >= len(s.values) {
		return Event{}, &LadderError{Draw: draw, Total: s.total}
	}
	return Event{Key: pos, Dt: src.ExpFloat64() / s.total}, nil
}
