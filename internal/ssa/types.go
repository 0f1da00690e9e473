package ssa

import (
	"fmt"
	"sort"
)

// Event is the outcome of one sampling step: which key fired and the waiting
// time before it did.
type Event struct {
	Key int
	Dt  float64
}

// Source supplies the random variates consumed by Next. *math/rand.Rand
// satisfies it.
type Source interface {
	// Float64 returns a uniform variate in [0, 1).
	Float64() float64
	// ExpFloat64 returns an exponential variate with rate 1.
	ExpFloat64() float64
}

type Sampler interface {
	Reset(n int)
	Update(key int, rate float64) error
	Next(src Source) (Event, error)
	Propensity(key int) (float64, error)
	TotalPropensity() float64
	Size() int
}

const (
	KindDirect  = "direct"
	KindIndexed = "indexed"
)

var factories = map[string]func(n int) Sampler{
	KindDirect:  func(n int) Sampler { return NewDirect(n) },
	KindIndexed: func(n int) Sampler { return NewIndexed(n) },
}

// New builds a sampler of the named kind with n keys.
func New(kind string, n int) (Sampler, error) {
	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownSampler, kind, Kinds())
	}
	return f(n), nil
}

// Kinds lists the registered sampler kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func checkKey(key, n int) error {
	if key < 0 || key >= n {
		return &KeyError{Key: key, Size: n}
	}
	return nil
}

func positive(total float64) bool {
	// NaN compares false, so a poisoned total is rejected too.
	return total > 0
}
