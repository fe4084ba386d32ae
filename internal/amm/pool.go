package amm

import (
	"github.com/ammlab/dexsim/internal/types"
)

const (
	// reserveEpsilon is the threshold below which a reserve is treated as
	// empty: deposits reinitialize the pool and swaps are disabled.
	reserveEpsilon = 1e-12

	// maxRemoveFraction caps a single withdrawal so the pool can never be
	// fully drained.
	maxRemoveFraction = 0.999
)

// AMM is the pool capability the market environment operates against:
// liquidity management, swaps, and a spot price query. Implementations never
// return errors; degenerate inputs yield zero-effect results.
type AMM interface {
	// AddLiquidity deposits the given token amounts and mints shares.
	AddLiquidity(amountA, amountB float64)
	// RemoveLiquidity withdraws a fraction of both reserves and burns the
	// matching fraction of shares. ok is false when the fraction is
	// negative, in which case nothing changes.
	RemoveLiquidity(fraction float64) (outA, outB float64, ok bool)
	// Swap trades amountIn of the spent token for the other token and
	// returns the amount received.
	Swap(amountIn float64, direction types.TradeDirection) float64
	// Price returns the spot price as reserveB / reserveA.
	Price() float64
	// TotalShares returns the outstanding liquidity shares.
	TotalShares() float64
}

// ConstantProductPool is a Uniswap-v2 style pool holding two token reserves
// under the invariant K = reserveA * reserveB. K is a cache recomputed from
// the reserves after every mutation, never an independent source of truth.
//
// Two simplifications are load-bearing and deliberate: deposits are not
// required to match the existing reserve ratio, and the swap fee is folded
// into the reserves asymmetrically so K drifts slightly upward on every
// fee-bearing swap.
type ConstantProductPool struct {
	reserveA float64
	reserveB float64
	k        float64
	shares   float64
	feeRate  float64
}

// NewConstantProductPool creates an empty pool. feeRate is the swap fee in
// [0,1) and is fixed for the pool's lifetime.
func NewConstantProductPool(feeRate float64) *ConstantProductPool {
	return &ConstantProductPool{feeRate: feeRate}
}

// AddLiquidity deposits amountA of token A and amountB of token B.
//
// If either reserve is effectively empty the deposit initializes the pool:
// reserves are set directly and amountA+amountB shares are minted. Otherwise
// shares are minted proportionally to the pre-deposit reserve of token A,
// with a sum-of-amounts fallback when that denominator vanishes. The deposit
// ratio is not validated against the reserve ratio.
func (p *ConstantProductPool) AddLiquidity(amountA, amountB float64) {
	if p.reserveA < reserveEpsilon || p.reserveB < reserveEpsilon {
		p.reserveA = amountA
		p.reserveB = amountB
		p.k = p.reserveA * p.reserveB
		p.shares += amountA + amountB
		return
	}

	p.reserveA += amountA
	p.reserveB += amountB
	p.k = p.reserveA * p.reserveB

	denominator := p.reserveA - amountA
	var minted float64
	if denominator < reserveEpsilon && denominator > -reserveEpsilon {
		minted = amountA + amountB
	} else {
		minted = p.shares * amountA / denominator
	}
	p.shares += minted
}

// RemoveLiquidity withdraws fraction of both reserves. The fraction is capped
// at 0.999 so a withdrawal can never empty the pool; a negative fraction is a
// no-op with ok=false.
func (p *ConstantProductPool) RemoveLiquidity(fraction float64) (float64, float64, bool) {
	if fraction > maxRemoveFraction {
		fraction = maxRemoveFraction
	}
	if fraction < 0 {
		return 0, 0, false
	}

	outA := p.reserveA * fraction
	outB := p.reserveB * fraction
	p.reserveA -= outA
	p.reserveB -= outB
	p.shares -= p.shares * fraction
	p.k = p.reserveA * p.reserveB
	return outA, outB, true
}

// Swap trades amountIn for the opposite token along the constant-product
// curve, discounting the input by the fee first. Returns 0 and leaves the
// pool untouched for non-positive input or a degenerate pool.
func (p *ConstantProductPool) Swap(amountIn float64, direction types.TradeDirection) float64 {
	if amountIn <= 0 {
		return 0
	}
	if p.reserveA < reserveEpsilon || p.reserveB < reserveEpsilon {
		return 0
	}

	inAfterFee := amountIn * (1 - p.feeRate)
	var out float64

	if direction == types.DirectionBuy {
		// Caller spends token B, receives token A.
		newReserveB := p.reserveB + inAfterFee
		var newReserveA float64
		if newReserveB != 0 {
			newReserveA = p.k / newReserveB
		}
		out = p.reserveA - newReserveA
		if out < 0 {
			out = 0
		}
		p.reserveB = newReserveB
		p.reserveA = newReserveA
	} else {
		// Caller spends token A, receives token B.
		newReserveA := p.reserveA + inAfterFee
		var newReserveB float64
		if newReserveA != 0 {
			newReserveB = p.k / newReserveA
		}
		out = p.reserveB - newReserveB
		if out < 0 {
			out = 0
		}
		p.reserveA = newReserveA
		p.reserveB = newReserveB
	}

	// The fee-retained portion stays in the reserves, so this recomputation
	// nudges K upward on every fee-bearing swap.
	p.k = p.reserveA * p.reserveB
	return out
}

// Price returns reserveB / reserveA, or 0 when reserve A is effectively empty.
func (p *ConstantProductPool) Price() float64 {
	if p.reserveA < reserveEpsilon {
		return 0
	}
	return p.reserveB / p.reserveA
}

// TotalShares returns the outstanding liquidity shares.
func (p *ConstantProductPool) TotalShares() float64 {
	return p.shares
}

// ReserveA returns the current reserve of token A.
func (p *ConstantProductPool) ReserveA() float64 {
	return p.reserveA
}

// ReserveB returns the current reserve of token B.
func (p *ConstantProductPool) ReserveB() float64 {
	return p.reserveB
}

// K returns the cached invariant, recomputed after the last mutation.
func (p *ConstantProductPool) K() float64 {
	return p.k
}

// FeeRate returns the pool's swap fee.
func (p *ConstantProductPool) FeeRate() float64 {
	return p.feeRate
}
