package pricefeed

import (
	"math"
	"math/rand"
	"time"
)

// Series generates a synthetic reference price path of numSteps positive
// prices using geometric Brownian motion. The generator owns no state; all
// randomness comes from rng, so a caller-seeded source makes the path
// reproducible. Passing nil rng falls back to a time-seeded source.
func Series(numSteps int, startPrice, drift, volatility float64, rng *rand.Rand) []float64 {
	if numSteps <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	prices := make([]float64, numSteps)
	prices[0] = startPrice
	for t := 1; t < numSteps; t++ {
		shock := rng.NormFloat64()
		prices[t] = prices[t-1] * math.Exp((drift-0.5*volatility*volatility)+volatility*shock)
	}
	return prices
}
