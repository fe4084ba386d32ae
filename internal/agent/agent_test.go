package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ammlab/dexsim/internal/policy"
	"github.com/ammlab/dexsim/internal/types"
)

func TestArbitrageBotBuysWhenAMMIsCheap(t *testing.T) {
	bot := NewArbitrageBot("arb", 0.001, 10.0)

	action := bot.Act(types.Observation{AMMPrice: 1.0, ReferencePrice: 1.1})

	require.Equal(t, types.ActionTrade, action.Type)
	require.Equal(t, types.DirectionBuy, action.Direction)
	// min(maxTradeSize, |diff| * 10)
	require.InDelta(t, 1.0, action.Amount, 1e-9)
}

func TestArbitrageBotSellsWhenAMMIsExpensive(t *testing.T) {
	bot := NewArbitrageBot("arb", 0.001, 10.0)

	action := bot.Act(types.Observation{AMMPrice: 1.2, ReferencePrice: 1.0})

	require.Equal(t, types.ActionTrade, action.Type)
	require.Equal(t, types.DirectionSell, action.Direction)
	require.InDelta(t, 2.0, action.Amount, 1e-9)
}

func TestArbitrageBotCapsTradeSize(t *testing.T) {
	bot := NewArbitrageBot("arb", 0.001, 3.0)

	action := bot.Act(types.Observation{AMMPrice: 1.0, ReferencePrice: 3.0})

	require.Equal(t, 3.0, action.Amount)
}

func TestArbitrageBotHoldsWithinThreshold(t *testing.T) {
	bot := NewArbitrageBot("arb", 0.01, 10.0)

	action := bot.Act(types.Observation{AMMPrice: 1.0, ReferencePrice: 1.005})

	require.Equal(t, types.ActionNone, action.Type)
}

func TestArbitrageBotSkipsDegeneratePool(t *testing.T) {
	bot := NewArbitrageBot("arb", 0.001, 10.0)

	action := bot.Act(types.Observation{AMMPrice: 0, ReferencePrice: 1.0})

	require.Equal(t, types.ActionNone, action.Type)
}

func TestRandomTraderProducesValidActions(t *testing.T) {
	trader := NewRandomTrader("noise", 5.0, 0.5, rand.New(rand.NewSource(7)))
	obs := types.Observation{AMMPrice: 1.0, ReferencePrice: 1.0}

	traded := false
	for i := 0; i < 200; i++ {
		action := trader.Act(obs)
		switch action.Type {
		case types.ActionNone:
		case types.ActionTrade:
			traded = true
			require.GreaterOrEqual(t, action.Amount, 0.0)
			require.Less(t, action.Amount, 5.0)
			require.Contains(t,
				[]types.TradeDirection{types.DirectionBuy, types.DirectionSell},
				action.Direction)
		default:
			t.Fatalf("unexpected action type %s", action.Type)
		}
	}
	require.True(t, traded)
}

func TestRandomTraderSeededIsReproducible(t *testing.T) {
	obs := types.Observation{AMMPrice: 1.0, ReferencePrice: 1.0}
	t1 := NewRandomTrader("noise", 5.0, 0.5, rand.New(rand.NewSource(99)))
	t2 := NewRandomTrader("noise", 5.0, 0.5, rand.New(rand.NewSource(99)))

	for i := 0; i < 100; i++ {
		require.Equal(t, t1.Act(obs), t2.Act(obs))
	}
}

func TestBasicLiquidityProviderDepositsOnce(t *testing.T) {
	lp := NewBasicLiquidityProvider("lp", 500.0, 0.2)

	first := lp.Act(types.Observation{AMMPrice: 0, ReferencePrice: 1.2})

	require.Equal(t, types.ActionAddLiquidity, first.Type)
	require.Equal(t, 500.0, first.AmountA)
	require.InDelta(t, 600.0, first.AmountB, 1e-9)

	second := lp.Act(types.Observation{AMMPrice: 1.2, ReferencePrice: 1.2})
	require.Equal(t, types.ActionNone, second.Type)
}

func TestBasicLiquidityProviderExitsOnDivergence(t *testing.T) {
	lp := NewBasicLiquidityProvider("lp", 500.0, 0.2)
	lp.Act(types.Observation{AMMPrice: 0, ReferencePrice: 1.0})

	action := lp.Act(types.Observation{AMMPrice: 1.5, ReferencePrice: 1.0})

	require.Equal(t, types.ActionRemoveLiquidity, action.Type)
	require.Equal(t, 0.5, action.AmountA)
	require.Equal(t, 0.5, action.AmountB)
}

func TestBasicLiquidityProviderIgnoresZeroReferencePrice(t *testing.T) {
	lp := NewBasicLiquidityProvider("lp", 500.0, 0.2)
	lp.Act(types.Observation{AMMPrice: 0, ReferencePrice: 1.0})

	action := lp.Act(types.Observation{AMMPrice: 1.5, ReferencePrice: 0})

	require.Equal(t, types.ActionNone, action.Type)
}

func TestRLProviderDelegatesToPolicy(t *testing.T) {
	cfg := policy.DefaultConfig()
	cfg.Epsilon = 0
	p := policy.New(cfg, rand.New(rand.NewSource(1)))
	provider := NewRLProvider("rl", p)

	action := provider.Act(types.Observation{AMMPrice: 1.0, ReferencePrice: 1.0})

	require.Equal(t, types.ActionNone, action.Type)
	require.True(t, p.HasPending())
	require.Same(t, p, provider.Policy())
}
