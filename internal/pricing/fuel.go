package pricing

import "math"

// minProfitableMargin is the markup over fuel cost below which a bid loses
// money once wear and idle time are accounted for.
const minProfitableMargin = 1.3

// computeFuelEconomics derives the trip's fuel cost, the minimum profitable
// price, and the net profit of the chosen optimum.
func computeFuelEconomics(distanceMeters int64, optimum Candidate, fuel FuelParams) FuelEconomics {
	distanceKm := float64(distanceMeters) / 1000
	liters := distanceKm * fuel.ConsumptionPer100Km / 100
	cost := liters * fuel.PricePerLiter

	return FuelEconomics{
		FuelCost:             round2(cost),
		FuelLiters:           round2(liters),
		DistanceKm:           round2(distanceKm),
		FuelPricePerLiter:    round2(fuel.PricePerLiter),
		ConsumptionPer100Km:  round2(fuel.ConsumptionPer100Km),
		MinProfitablePrice:   round2(minProfitableMargin * cost),
		NetProfitFromOptimal: round2(optimum.ExpectedValue - cost),
	}
}

// round2 rounds to two decimal places, the precision of every float in the
// response payload.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
