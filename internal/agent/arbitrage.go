package agent

import (
	"math"

	"github.com/ammlab/dexsim/internal/types"
)

// ammPriceEpsilon guards the relative-difference division when the pool
// price has collapsed to zero.
const ammPriceEpsilon = 1e-12

// ArbitrageBot trades against the pool whenever the AMM price diverges from
// the reference price by more than a relative threshold, pushing the pool
// back toward the reference.
type ArbitrageBot struct {
	name         string
	threshold    float64
	maxTradeSize float64
}

// NewArbitrageBot creates an arbitrageur. threshold is the minimum relative
// price divergence that triggers a trade (e.g. 0.001 for 0.1%), and
// maxTradeSize caps the amount spent per tick.
func NewArbitrageBot(name string, threshold, maxTradeSize float64) *ArbitrageBot {
	return &ArbitrageBot{
		name:         name,
		threshold:    threshold,
		maxTradeSize: maxTradeSize,
	}
}

// Name implements Agent.
func (a *ArbitrageBot) Name() string {
	return a.name
}

// Act buys token A when the reference price exceeds the AMM price by the
// threshold (the pool sells A too cheaply) and sells token A in the mirrored
// case. The trade size scales with the absolute divergence up to the cap.
func (a *ArbitrageBot) Act(obs types.Observation) types.Action {
	if obs.AMMPrice < ammPriceEpsilon {
		return types.NoAction()
	}

	priceDiff := obs.ReferencePrice - obs.AMMPrice
	relativeDiff := priceDiff / obs.AMMPrice
	amount := math.Min(a.maxTradeSize, math.Abs(priceDiff)*10)

	if relativeDiff > a.threshold {
		return types.Action{
			Type:      types.ActionTrade,
			Direction: types.DirectionBuy,
			Amount:    amount,
		}
	}
	if -relativeDiff > a.threshold {
		return types.Action{
			Type:      types.ActionTrade,
			Direction: types.DirectionSell,
			Amount:    amount,
		}
	}
	return types.NoAction()
}
