package agent

import (
	"math"

	"github.com/ammlab/dexsim/internal/types"
)

// refPriceEpsilon guards the divergence division when the reference price is
// effectively zero.
const refPriceEpsilon = 1e-12

// BasicLiquidityProvider deposits a fixed amount of liquidity on its first
// tick, priced at the reference, and afterwards only reacts to extreme
// divergence by pulling half of its position.
type BasicLiquidityProvider struct {
	name             string
	initialLiquidity float64
	removeThreshold  float64
	hasProvided      bool
}

// NewBasicLiquidityProvider creates a passive LP. initialLiquidity is the
// token A amount of the one-shot deposit (token B follows the reference
// price); removeThreshold is the relative AMM/reference divergence beyond
// which half of the liquidity is withdrawn.
func NewBasicLiquidityProvider(name string, initialLiquidity, removeThreshold float64) *BasicLiquidityProvider {
	return &BasicLiquidityProvider{
		name:             name,
		initialLiquidity: initialLiquidity,
		removeThreshold:  removeThreshold,
	}
}

// Name implements Agent.
func (b *BasicLiquidityProvider) Name() string {
	return b.name
}

// Act provides the initial deposit exactly once, then watches for price
// divergence.
func (b *BasicLiquidityProvider) Act(obs types.Observation) types.Action {
	if !b.hasProvided {
		b.hasProvided = true
		return types.Action{
			Type:    types.ActionAddLiquidity,
			AmountA: b.initialLiquidity,
			AmountB: b.initialLiquidity * obs.ReferencePrice,
		}
	}

	if obs.ReferencePrice > refPriceEpsilon {
		divergence := math.Abs(obs.AMMPrice-obs.ReferencePrice) / obs.ReferencePrice
		if divergence > b.removeThreshold {
			return types.Action{
				Type:    types.ActionRemoveLiquidity,
				AmountA: 0.5,
				AmountB: 0.5,
			}
		}
	}
	return types.NoAction()
}
