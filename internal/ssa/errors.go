package ssa

import (
	"errors"
	"fmt"
)

var (
	// ErrLadderExhausted indicates the scan ran past the last key without
	// selecting one. This happens when rounding puts the uniform draw at or
	// past the table total. A retry with a fresh draw is the usual recovery.
	ErrLadderExhausted = errors.New("ssa: fell off propensity ladder (rounding?)")

	// ErrKeyOutOfRange indicates a key outside [0, Size()).
	ErrKeyOutOfRange = errors.New("ssa: key out of range")

	// ErrNoPropensity indicates Next was called while the total propensity
	// was not positive, so no event can fire.
	ErrNoPropensity = errors.New("ssa: total propensity is not positive")

	// ErrUnknownSampler indicates an unrecognised sampler kind.
	ErrUnknownSampler = errors.New("ssa: unknown sampler kind")
)

// KeyError reports the offending key and the table size.
type KeyError struct {
	Key  int
	Size int
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("ssa: key %d out of range [0, %d)", e.Key, e.Size)
}

func (e *KeyError) Unwrap() error {
	return ErrKeyOutOfRange
}

// LadderError carries the uniform draw that failed to land on a key.
type LadderError struct {
	Draw  float64
	Total float64
}

func (e *LadderError) Error() string {
	return fmt.Sprintf("%s: draw %g, total %g", ErrLadderExhausted.Error(), e.Draw, e.Total)
}

func (e *LadderError) Unwrap() error {
	return ErrLadderExhausted
}
