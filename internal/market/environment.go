package market

import (
	"github.com/ammlab/dexsim/internal/agent"
	"github.com/ammlab/dexsim/internal/amm"
	"github.com/ammlab/dexsim/internal/types"
)

// Environment sequences agent decisions against a single AMM pool and an
// external reference price series. Each tick every agent observes the same
// pre-tick state, then the collected actions are applied strictly in agent
// registration order, so later agents act on pool state already mutated by
// earlier ones within the tick. That ordering is part of the contract:
// reruns with the same inputs are bit-identical.
//
// Every operation is total. Malformed or zero-amount actions degrade to
// no-ops instead of failing.
type Environment struct {
	pool      amm.AMM
	agents    []agent.Agent
	refPrices []float64

	step    int
	rewards map[string]float64

	volumeTokenA float64
	volumeTokenB float64
}

// New creates an environment over the given pool, agent roster, and
// reference price series. The series length fixes the number of steps per
// episode.
func New(pool amm.AMM, agents []agent.Agent, refPrices []float64) *Environment {
	env := &Environment{
		pool:      pool,
		agents:    agents,
		refPrices: refPrices,
		rewards:   make(map[string]float64, len(agents)),
	}
	for _, a := range agents {
		env.rewards[a.Name()] = 0
	}
	return env
}

// Reset rewinds the episode: step to zero, all rewards and aggregate volumes
// cleared. The pool is left untouched.
func (e *Environment) Reset() {
	e.step = 0
	for _, a := range e.agents {
		e.rewards[a.Name()] = 0
	}
	e.volumeTokenA = 0
	e.volumeTokenB = 0
}

// Step advances the simulation by one tick. It returns false once the
// reference price series is exhausted, leaving all state unchanged.
func (e *Environment) Step() bool {
	if e.step >= len(e.refPrices) {
		return false
	}

	refPrice := e.refPrices[e.step]
	obs := types.Observation{
		AMMPrice:       e.pool.Price(),
		ReferencePrice: refPrice,
		Step:           e.step,
	}

	// All agents observe the same pre-tick state before any action applies.
	actions := make([]types.Action, len(e.agents))
	for i, a := range e.agents {
		actions[i] = a.Act(obs)
	}

	for i, a := range e.agents {
		e.apply(a.Name(), actions[i], refPrice)
	}

	e.step++
	return true
}

// apply executes one agent's action against the pool and accrues the agent's
// reward in reference-price terms.
func (e *Environment) apply(name string, action types.Action, refPrice float64) {
	switch action.Type {
	case types.ActionTrade:
		if action.Amount <= 0 {
			return
		}
		received := e.pool.Swap(action.Amount, action.Direction)
		if action.Direction == types.DirectionBuy {
			// Token B is the reference-denominated side: cost is the
			// amount spent, value is the token A received marked at the
			// reference price.
			e.rewards[name] += received*refPrice - action.Amount
			e.volumeTokenB += action.Amount
		} else {
			e.rewards[name] += received - action.Amount*refPrice
			e.volumeTokenA += action.Amount
		}

	case types.ActionAddLiquidity:
		if action.AmountA > 0 && action.AmountB > 0 {
			e.pool.AddLiquidity(action.AmountA, action.AmountB)
		}

	case types.ActionRemoveLiquidity:
		fraction := action.AmountA
		if action.AmountB < fraction {
			fraction = action.AmountB
		}
		outA, outB, ok := e.pool.RemoveLiquidity(fraction)
		if ok {
			e.rewards[name] += outA*refPrice + outB
		}
	}
}

// RunSimulation resets the environment and steps until the episode ends.
func (e *Environment) RunSimulation() {
	e.Reset()
	for e.Step() {
	}
}

// Rewards returns a copy of the cumulative reward ledger keyed by agent name.
func (e *Environment) Rewards() map[string]float64 {
	out := make(map[string]float64, len(e.rewards))
	for name, reward := range e.rewards {
		out[name] = reward
	}
	return out
}

// Reward returns one agent's cumulative reward.
func (e *Environment) Reward(name string) float64 {
	return e.rewards[name]
}

// CurrentStep returns the index of the next tick to execute.
func (e *Environment) CurrentStep() int {
	return e.step
}

// NumSteps returns the episode length.
func (e *Environment) NumSteps() int {
	return len(e.refPrices)
}

// VolumeTokenA returns the aggregate token A sell volume.
func (e *Environment) VolumeTokenA() float64 {
	return e.volumeTokenA
}

// VolumeTokenB returns the aggregate token B buy volume.
func (e *Environment) VolumeTokenB() float64 {
	return e.volumeTokenB
}
