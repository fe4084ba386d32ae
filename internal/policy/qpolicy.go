package policy

import (
	"math"
	"math/rand"
	"time"

	"github.com/ammlab/dexsim/internal/types"
)

const (
	// numActions is the fixed discrete action set: hold, add, remove.
	numActions = 3

	// bucketSize is the width of one price-difference bucket.
	bucketSize = 0.02

	// Fixed action magnitudes materialized by the policy.
	addLiquidityAmount      = 10.0
	removeLiquidityFraction = 0.3
)

// Discrete action ids.
const (
	actionHold = iota
	actionAdd
	actionRemove
)

// Config holds the Q-learning hyperparameters, fixed at construction.
type Config struct {
	PriceBuckets int
	TimeBuckets  int
	// Alpha is the learning rate.
	Alpha float64
	// Gamma is the discount factor.
	Gamma float64
	// Epsilon is the exploration rate.
	Epsilon float64
}

// DefaultConfig returns the stock hyperparameters.
func DefaultConfig() Config {
	return Config{
		PriceBuckets: 5,
		TimeBuckets:  10,
		Alpha:        0.1,
		Gamma:        0.95,
		Epsilon:      0.1,
	}
}

// stateAction is the single-slot memory linking a selection to its update.
type stateAction struct {
	priceBucket int
	timeBucket  int
	action      int
}

// QPolicy is a tabular one-step Q-learning policy over a discretized market
// observation. It is stateful and single-threaded: SelectAction and UpdateQ
// must alternate per instance. A second selection before an update silently
// discards the first pending entry; an update with no pending selection is a
// no-op.
//
// The Q-table is the only state retained between episodes, which is what lets
// a single policy instance accumulate training across independent runs.
type QPolicy struct {
	cfg     Config
	rng     *rand.Rand
	table   [][][]float64
	pending *stateAction
}

// New creates a policy with a zeroed Q-table. The policy owns rng for all of
// its exploration draws; passing nil falls back to a time-seeded source.
func New(cfg Config, rng *rand.Rand) *QPolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	table := make([][][]float64, cfg.PriceBuckets)
	for i := range table {
		table[i] = make([][]float64, cfg.TimeBuckets)
		for j := range table[i] {
			table[i][j] = make([]float64, numActions)
		}
	}

	return &QPolicy{
		cfg:   cfg,
		rng:   rng,
		table: table,
	}
}

// discretize maps a continuous observation to a (priceBucket, timeBucket)
// state key. The price dimension buckets referencePrice - ammPrice in
// bucketSize increments, shifted so the range straddles zero, and clamps to
// the table bounds.
func (p *QPolicy) discretize(obs types.Observation) (int, int) {
	priceDiff := obs.ReferencePrice - obs.AMMPrice
	bucket := int(math.Floor((priceDiff + float64(p.cfg.PriceBuckets)*bucketSize) / bucketSize))
	if bucket < 0 {
		bucket = 0
	}
	if bucket > p.cfg.PriceBuckets-1 {
		bucket = p.cfg.PriceBuckets - 1
	}
	return bucket, obs.Step % p.cfg.TimeBuckets
}

// SelectAction picks an action id epsilon-greedily for the observed state,
// remembers the (state, action) pair for the next UpdateQ call, and
// materializes the id as a concrete action.
func (p *QPolicy) SelectAction(obs types.Observation) types.Action {
	priceBucket, timeBucket := p.discretize(obs)

	var action int
	if p.rng.Float64() < p.cfg.Epsilon {
		action = p.rng.Intn(numActions)
	} else {
		action = argmax(p.table[priceBucket][timeBucket])
	}

	p.pending = &stateAction{
		priceBucket: priceBucket,
		timeBucket:  timeBucket,
		action:      action,
	}

	switch action {
	case actionAdd:
		return types.Action{
			Type:    types.ActionAddLiquidity,
			AmountA: addLiquidityAmount,
			AmountB: addLiquidityAmount,
		}
	case actionRemove:
		return types.Action{
			Type:    types.ActionRemoveLiquidity,
			AmountA: removeLiquidityFraction,
			AmountB: removeLiquidityFraction,
		}
	default:
		return types.NoAction()
	}
}

// UpdateQ applies the one-step Q-learning correction to the pending
// (state, action) entry. When done is true the target is the reward alone;
// otherwise it bootstraps from the best value of the discretized next
// observation. The pending slot is cleared afterward, so calling UpdateQ
// without a preceding SelectAction does nothing.
func (p *QPolicy) UpdateQ(reward float64, next types.Observation, done bool) {
	if p.pending == nil {
		return
	}

	target := reward
	if !done {
		nextPrice, nextTime := p.discretize(next)
		target += p.cfg.Gamma * maxValue(p.table[nextPrice][nextTime])
	}

	entry := &p.table[p.pending.priceBucket][p.pending.timeBucket][p.pending.action]
	*entry += p.cfg.Alpha * (target - *entry)

	p.pending = nil
}

// HasPending reports whether a selection is awaiting its update.
func (p *QPolicy) HasPending() bool {
	return p.pending != nil
}

// Value returns one action-value estimate, or 0 for out-of-range indices.
func (p *QPolicy) Value(priceBucket, timeBucket, action int) float64 {
	if priceBucket < 0 || priceBucket >= p.cfg.PriceBuckets ||
		timeBucket < 0 || timeBucket >= p.cfg.TimeBuckets ||
		action < 0 || action >= numActions {
		return 0
	}
	return p.table[priceBucket][timeBucket][action]
}

// Config returns the hyperparameters the policy was built with.
func (p *QPolicy) Config() Config {
	return p.cfg
}

// ExportTable returns a deep copy of the Q-table for persistence.
func (p *QPolicy) ExportTable() [][][]float64 {
	out := make([][][]float64, len(p.table))
	for i := range p.table {
		out[i] = make([][]float64, len(p.table[i]))
		for j := range p.table[i] {
			out[i][j] = make([]float64, len(p.table[i][j]))
			copy(out[i][j], p.table[i][j])
		}
	}
	return out
}

// ImportTable replaces the Q-table with a previously exported one. Tables
// whose shape does not match the policy's configuration are ignored.
func (p *QPolicy) ImportTable(table [][][]float64) {
	if len(table) != p.cfg.PriceBuckets {
		return
	}
	for i := range table {
		if len(table[i]) != p.cfg.TimeBuckets {
			return
		}
		for j := range table[i] {
			if len(table[i][j]) != numActions {
				return
			}
		}
	}
	for i := range table {
		for j := range table[i] {
			copy(p.table[i][j], table[i][j])
		}
	}
}

// argmax returns the index of the largest value, taking the first on ties.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func maxValue(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
