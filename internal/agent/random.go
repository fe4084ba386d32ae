package agent

import (
	"math/rand"
	"time"

	"github.com/ammlab/dexsim/internal/types"
)

// RandomTrader executes trades of random size and direction with a fixed
// probability per tick. It adds background order flow to the simulation.
type RandomTrader struct {
	name         string
	maxTradeSize float64
	tradeProb    float64
	rng          *rand.Rand
}

// NewRandomTrader creates a noise trader. The trader owns rng for all of its
// draws; passing nil falls back to a time-seeded source.
func NewRandomTrader(name string, maxTradeSize, tradeProb float64, rng *rand.Rand) *RandomTrader {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomTrader{
		name:         name,
		maxTradeSize: maxTradeSize,
		tradeProb:    tradeProb,
		rng:          rng,
	}
}

// Name implements Agent.
func (r *RandomTrader) Name() string {
	return r.name
}

// Act trades with probability tradeProb, spending a uniform amount up to
// maxTradeSize in a uniformly chosen direction.
func (r *RandomTrader) Act(obs types.Observation) types.Action {
	if r.rng.Float64() >= r.tradeProb {
		return types.NoAction()
	}

	direction := types.DirectionBuy
	if r.rng.Float64() < 0.5 {
		direction = types.DirectionSell
	}
	return types.Action{
		Type:      types.ActionTrade,
		Direction: direction,
		Amount:    r.rng.Float64() * r.maxTradeSize,
	}
}
