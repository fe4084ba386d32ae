package types

// Observation is the market state every agent sees at the start of a tick.
// It is rebuilt each tick and never persisted; all agents of the same tick
// receive the identical observation.
type Observation struct {
	// AMMPrice is the pool's spot price (reserveB / reserveA) before any
	// action of the current tick is applied.
	AMMPrice float64
	// ReferencePrice is the external market price at the current step.
	ReferencePrice float64
	// Step is the zero-based tick index.
	Step int
}
