// Package viz provides a live terminal view of a sampler converging on its
// propensity table.
//
// The view is a Bubble Tea program: each tick draws a batch of events and
// redraws the observed share of every key next to its expected share, plus a
// history of the chi-squared p-value.
//
// # Key Bindings
//
//	Space  - Pause/Resume sampling
//	R      - Clear counts
//	Tab/J  - Select next event
//	K      - Select previous event
//	Up     - Raise selected rate (+25%)
//	Down   - Lower selected rate (-20%)
//	0      - Zero the selected rate
//	+/-    - Change draws per tick
//	Q      - Quit
//
// Changing a rate goes through the sampler's Update, so the table total is
// adjusted incrementally, and the counts are cleared since they were drawn
// from the old table.
package viz
