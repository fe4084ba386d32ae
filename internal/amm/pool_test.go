package amm

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"

	"github.com/ammlab/dexsim/internal/types"
)

func TestAddLiquidityInitializesEmptyPool(t *testing.T) {
	pool := NewConstantProductPool(0.003)

	pool.AddLiquidity(1000, 1200)

	require.Equal(t, 1000.0, pool.ReserveA())
	require.Equal(t, 1200.0, pool.ReserveB())
	require.Equal(t, 1000.0*1200.0, pool.K())
	require.Equal(t, 2200.0, pool.TotalShares())
}

func TestPriceAfterInitialDeposit(t *testing.T) {
	pool := NewConstantProductPool(0.003)

	pool.AddLiquidity(1000, 1200)

	require.Equal(t, 1200.0/1000.0, pool.Price())
}

func TestPriceOnEmptyPool(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	require.Equal(t, 0.0, pool.Price())
}

func TestAddLiquidityMintsProportionalShares(t *testing.T) {
	pool := NewConstantProductPool(0)
	pool.AddLiquidity(100, 200)
	require.Equal(t, 300.0, pool.TotalShares())

	// minted = shares * amountA / preDepositReserveA = 300 * 50 / 100
	pool.AddLiquidity(50, 100)

	require.Equal(t, 150.0, pool.ReserveA())
	require.Equal(t, 300.0, pool.ReserveB())
	require.InDelta(t, 450.0, pool.TotalShares(), 1e-9)
	require.Equal(t, 150.0*300.0, pool.K())
}

func TestAddLiquiditySkewedRatioAccepted(t *testing.T) {
	// Deposits are not validated against the reserve ratio; a skewed
	// deposit just moves the price.
	pool := NewConstantProductPool(0)
	pool.AddLiquidity(100, 100)

	pool.AddLiquidity(100, 0.001)

	require.Equal(t, 200.0, pool.ReserveA())
	require.InDelta(t, 100.001, pool.ReserveB(), 1e-9)
}

func TestRemoveLiquidityNeverEmptiesPool(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1000, 1200)

	outA, outB, ok := pool.RemoveLiquidity(1.0)

	require.True(t, ok)
	require.InDelta(t, 999.0, outA, 1e-9)
	require.InDelta(t, 1198.8, outB, 1e-9)
	require.InDelta(t, 0.001*1000, pool.ReserveA(), 1e-9)
	require.InDelta(t, 0.001*1200, pool.ReserveB(), 1e-9)
	require.Greater(t, pool.ReserveA(), 0.0)
	require.Greater(t, pool.ReserveB(), 0.0)
}

func TestRemoveLiquidityNegativeFractionIsNoOp(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1000, 1200)

	outA, outB, ok := pool.RemoveLiquidity(-0.5)

	require.False(t, ok)
	require.Equal(t, 0.0, outA)
	require.Equal(t, 0.0, outB)
	require.Equal(t, 1000.0, pool.ReserveA())
	require.Equal(t, 1200.0, pool.ReserveB())
	require.Equal(t, 2200.0, pool.TotalShares())
}

func TestRemoveLiquidityBurnsShares(t *testing.T) {
	pool := NewConstantProductPool(0)
	pool.AddLiquidity(1000, 1000)

	_, _, ok := pool.RemoveLiquidity(0.25)

	require.True(t, ok)
	require.InDelta(t, 1500.0, pool.TotalShares(), 1e-9)
	require.Equal(t, 750.0*750.0, pool.K())
}

func TestSwapBuyExactScenario(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1000, 1200)

	out := pool.Swap(100, types.DirectionBuy)

	expected := 1000.0 - (1000.0*1200.0)/(1200.0+100.0*0.997)
	require.InDelta(t, expected, out, 1e-9)
	require.InDelta(t, 76.71, out, 0.01)
	require.InDelta(t, 1200.0+100.0*0.997, pool.ReserveB(), 1e-9)
	require.InDelta(t, 1000.0-expected, pool.ReserveA(), 1e-9)
}

func TestSwapSellMirrorsBuy(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1200, 1000)

	out := pool.Swap(100, types.DirectionSell)

	expected := 1000.0 - (1200.0*1000.0)/(1200.0+100.0*0.997)
	require.InDelta(t, expected, out, 1e-9)
}

func TestSwapNonPositiveAmountIsNoOp(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1000, 1200)

	require.Equal(t, 0.0, pool.Swap(0, types.DirectionBuy))
	require.Equal(t, 0.0, pool.Swap(-5, types.DirectionSell))
	require.Equal(t, 1000.0, pool.ReserveA())
	require.Equal(t, 1200.0, pool.ReserveB())
}

func TestSwapOnDegeneratePoolIsNoOp(t *testing.T) {
	pool := NewConstantProductPool(0.003)

	require.Equal(t, 0.0, pool.Swap(100, types.DirectionBuy))
	require.Equal(t, 0.0, pool.ReserveA())
	require.Equal(t, 0.0, pool.ReserveB())
}

func TestSwapFeeRetentionDriftsKUpward(t *testing.T) {
	pool := NewConstantProductPool(0.003)
	pool.AddLiquidity(1000, 1200)
	kBefore := pool.K()

	pool.Swap(100, types.DirectionBuy)

	require.Greater(t, pool.K(), kBefore)
}

// Property: with a zero fee rate, swapping preserves the constant-product
// invariant up to floating tolerance.
func TestPropertyZeroFeeSwapPreservesK(t *testing.T) {
	property := func(reserveA, reserveB, amountIn float64, buy bool) bool {
		// Constrain to well-conditioned positive values.
		reserveA = 1 + mod(reserveA, 1e6)
		reserveB = 1 + mod(reserveB, 1e6)
		amountIn = 0.001 + mod(amountIn, 1e4)

		pool := NewConstantProductPool(0)
		pool.AddLiquidity(reserveA, reserveB)
		kBefore := pool.K()

		direction := types.DirectionSell
		if buy {
			direction = types.DirectionBuy
		}
		pool.Swap(amountIn, direction)

		diff := pool.K() - kBefore
		if diff < 0 {
			diff = -diff
		}
		return diff <= 1e-6*kBefore
	}

	err := quick.Check(property, &quick.Config{MaxCount: 1000})
	require.NoError(t, err)
}

// Property: removals keep reserves non-negative and proportional.
func TestPropertyRemoveLiquidityBounded(t *testing.T) {
	property := func(reserveA, reserveB, fraction float64) bool {
		reserveA = 1 + mod(reserveA, 1e6)
		reserveB = 1 + mod(reserveB, 1e6)
		fraction = mod(fraction, 2) // exercise the clamp too

		pool := NewConstantProductPool(0)
		pool.AddLiquidity(reserveA, reserveB)

		_, _, ok := pool.RemoveLiquidity(fraction)
		if !ok {
			return false
		}
		return pool.ReserveA() >= (1-0.999)*reserveA-1e-9 &&
			pool.ReserveB() >= (1-0.999)*reserveB-1e-9
	}

	err := quick.Check(property, &quick.Config{MaxCount: 1000})
	require.NoError(t, err)
}

// mod maps an arbitrary float (including NaN/Inf) into [0, bound).
func mod(v, bound float64) float64 {
	if v != v || v > 1e300 || v < -1e300 {
		return 0
	}
	if v < 0 {
		v = -v
	}
	for v >= bound {
		v /= bound
	}
	return v
}
