package pricefeed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeriesLengthAndStartPrice(t *testing.T) {
	prices := Series(100, 1.2, 0, 0.02, rand.New(rand.NewSource(1)))

	require.Len(t, prices, 100)
	require.Equal(t, 1.2, prices[0])
}

func TestSeriesIsPositive(t *testing.T) {
	prices := Series(1000, 1.0, 0, 0.05, rand.New(rand.NewSource(2)))

	for i, p := range prices {
		require.Greater(t, p, 0.0, "price at step %d", i)
	}
}

func TestSeriesSeededIsReproducible(t *testing.T) {
	a := Series(500, 1.0, 0.001, 0.02, rand.New(rand.NewSource(42)))
	b := Series(500, 1.0, 0.001, 0.02, rand.New(rand.NewSource(42)))

	require.Equal(t, a, b)
}

func TestSeriesZeroVolatilityFollowsDrift(t *testing.T) {
	prices := Series(10, 1.0, 0, 0, rand.New(rand.NewSource(1)))

	for _, p := range prices {
		require.InDelta(t, 1.0, p, 1e-12)
	}
}

func TestSeriesNonPositiveLength(t *testing.T) {
	require.Nil(t, Series(0, 1.0, 0, 0.02, nil))
	require.Nil(t, Series(-5, 1.0, 0, 0.02, nil))
}
