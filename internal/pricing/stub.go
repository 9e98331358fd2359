package pricing

import "math"

// Canned recommendation served when the model artefact is unavailable and
// stub fallback is enabled. The numbers are fixed; only the timestamp, the
// start price, the scan-range floor, and the fuel economics reflect the
// request, so clients exercising the contract see a schema-complete payload.
func (s *Service) stubResponse(order *OrderRequest) *ModelResponse {
	const (
		stubOptimalPrice = 378.36
		stubOptimalProb  = 0.453
		stubScanMax      = 450.0
	)

	optimum := Candidate{
		Price:         stubOptimalPrice,
		Probability:   stubOptimalProb,
		ExpectedValue: stubOptimalPrice * stubOptimalProb,
	}
	fuelEcon := computeFuelEconomics(order.DistanceInMeters, optimum, s.fuel)

	return &ModelResponse{
		Zones: []Zone{
			{
				ZoneID:     zoneRedLowID,
				ZoneName:   zoneRedLowName,
				PriceRange: PriceRange{Min: 54.00, Max: 225.14},
				Metrics: ZoneMetrics{
					AvgProbabilityPercent:           41.15,
					AvgNormalizedProbabilityPercent: 73.72,
					AvgExpectedValue:                55.96,
				},
			},
			{
				ZoneID:     zoneYellowLowID,
				ZoneName:   zoneYellowLowName,
				PriceRange: PriceRange{Min: 227.13, Max: 320.65},
				Metrics: ZoneMetrics{
					AvgProbabilityPercent:           44.59,
					AvgNormalizedProbabilityPercent: 79.89,
					AvgExpectedValue:                122.15,
				},
			},
			{
				ZoneID:     zoneGreenID,
				ZoneName:   zoneGreenName,
				PriceRange: PriceRange{Min: 322.64, Max: 434.08},
				Metrics: ZoneMetrics{
					AvgProbabilityPercent:           41.25,
					AvgNormalizedProbabilityPercent: 73.90,
					AvgExpectedValue:                155.02,
				},
			},
			{
				ZoneID:     zoneYellowHighID,
				ZoneName:   zoneYellowHighName,
				PriceRange: PriceRange{Min: 436.07, Max: stubScanMax},
				Metrics: ZoneMetrics{
					AvgProbabilityPercent:           34.06,
					AvgNormalizedProbabilityPercent: 61.02,
					AvgExpectedValue:                150.89,
				},
			},
		},
		OptimalPrice: OptimalPrice{
			Price:                        stubOptimalPrice,
			ProbabilityPercent:           round2(100 * stubOptimalProb),
			NormalizedProbabilityPercent: 81.16,
			ExpectedValue:                round2(optimum.ExpectedValue),
			ZoneID:                       zoneGreenID,
			NetProfit:                    round2(stubOptimalPrice - fuelEcon.FuelCost),
		},
		ZoneThresholds: zoneThresholds(),
		FuelEconomics:  fuelEcon,
		Analysis: Analysis{
			StartPrice:            round2(order.PriceStartLocal),
			MaxProbabilityPercent: 55.82,
			MaxProbabilityPrice:   54.00,
			ScanRange: PriceRange{
				Min: round2(math.Min(order.PriceStartLocal, stubScanMax)),
				Max: stubScanMax,
			},
			Timestamp:      s.now().UTC().Format(responseTimestampLayout),
			PriceIncrement: 5.0,
		},
	}
}
