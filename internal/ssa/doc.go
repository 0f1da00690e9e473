// Package ssa implements the direct method of Gillespie's stochastic
// simulation algorithm.
//
// A sampler holds one propensity (instantaneous rate) per event key and the
// running total of all of them. Each call to Next draws which event fires and
// how long until it fires:
//
//   - [Direct]: linear "ladder" scan, O(1) update, O(n) selection
//   - [Indexed]: Fenwick tree, O(log n) update and selection
//
// Both consume exactly one uniform and one exponential draw per event from the
// [Source] passed in by the caller, and both break ties toward the lowest key,
// so they produce the same distribution of events.
//
// # Example
//
//	s := ssa.NewDirect(3)
//	s.Update(0, 1.0)
//	s.Update(2, 3.0)
//	ev, err := s.Next(rand.New(rand.NewSource(42)))
//
// # Thread Safety
//
// Samplers are NOT safe for concurrent use. Update mutates the table that Next
// reads across several steps, so callers sharing an instance must guard the
// whole update/next cycle with a single lock. The same holds for the Source.
package ssa
