package ssa

// Direct is the linear-scan ("ladder") implementation of the direct method.
// Update is O(1); Next is O(n) in the number of keys, which suits small and
// moderate key spaces. See [Indexed] for large ones.
type Direct struct {
	propensities []float64
	total        float64
}

func NewDirect(n int) *Direct {
	d := &Direct{}
	d.Reset(n)
	return d
}

// Reset discards all propensities and resizes the table to n keys, all zero.
func (d *Direct) Reset(n int) {
	if n < 0 {
		n = 0
	}
	if cap(d.propensities) >= n {
		d.propensities = d.propensities[:n]
		clear(d.propensities)
	} else {
		d.propensities = make([]float64, n)
	}
	d.total = 0
}

func (d *Direct) Size() int { return len(d.propensities) }

// Update replaces the propensity of key with rate and moves the total by the
// difference. Rates must be non-negative; a negative rate is not rejected and
// leaves the total and every later draw meaningless.
func (d *Direct) Update(key int, rate float64) error {
	if err := checkKey(key, len(d.propensities)); err != nil {
		return err
	}
	p := &d.propensities[key]
	d.total += rate - *p
	*p = rate
	return nil
}

func (d *Direct) Propensity(key int) (float64, error) {
	if err := checkKey(key, len(d.propensities)); err != nil {
		return 0, err
	}
	return d.propensities[key], nil
}

func (d *Direct) TotalPropensity() float64 { return d.total }

// Next samples the next event. x is drawn uniformly from [0, total) and the
// keys are walked in index order, subtracting each propensity, until x goes
// negative.
func (d *Direct) Next(src Source) (Event, error) {
	if !positive(d.total) {
		return Event{}, ErrNoPropensity
	}

	draw := d.total * src.Float64()
	x := draw
	for i, p := range d.propensities {
		x -= p
		if x < 0 {
			return Event{Key: i, Dt: src.ExpFloat64() / d.total}, nil
		}
	}

	return Event{}, &LadderError{Draw: draw, Total: d.total}
}
