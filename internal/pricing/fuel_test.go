package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFuelEconomics(t *testing.T) {
	optimum := Candidate{Price: 600, Probability: 0.5, ExpectedValue: 300}

	t.Run("fifteen kilometers", func(t *testing.T) {
		fe := computeFuelEconomics(15000, optimum, DefaultFuelParams)

		assert.Equal(t, 15.0, fe.DistanceKm)
		assert.Equal(t, 1.35, fe.FuelLiters)
		assert.Equal(t, 74.25, fe.FuelCost)
		assert.Equal(t, 96.53, fe.MinProfitablePrice)
		assert.Equal(t, 55.0, fe.FuelPricePerLiter)
		assert.Equal(t, 9.0, fe.ConsumptionPer100Km)
		assert.Equal(t, 225.75, fe.NetProfitFromOptimal)
	})

	t.Run("short trip", func(t *testing.T) {
		fe := computeFuelEconomics(1500, optimum, DefaultFuelParams)

		assert.Equal(t, 1.5, fe.DistanceKm)
		assert.Equal(t, 7.43, fe.FuelCost)
		assert.Equal(t, 9.65, fe.MinProfitablePrice)
	})

	t.Run("zero distance", func(t *testing.T) {
		fe := computeFuelEconomics(0, optimum, DefaultFuelParams)

		assert.Equal(t, 0.0, fe.FuelCost)
		assert.Equal(t, 0.0, fe.MinProfitablePrice)
		assert.Equal(t, 300.0, fe.NetProfitFromOptimal)
	})

	t.Run("custom fuel parameters", func(t *testing.T) {
		params := FuelParams{ConsumptionPer100Km: 12, PricePerLiter: 60}
		fe := computeFuelEconomics(10000, optimum, params)

		assert.Equal(t, 1.2, fe.FuelLiters)
		assert.Equal(t, 72.0, fe.FuelCost)
		assert.Equal(t, 93.6, fe.MinProfitablePrice)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 5.68, round2(5.678))
	assert.Equal(t, 100.0, round2(99.999))
	assert.Equal(t, -5.68, round2(-5.678))
	assert.Equal(t, 0.0, round2(0))
}
