package pricing

import "sort"

// Probability bands, inclusive lower bound, exclusive upper bound (the green
// band is closed at 1.0). Zone ids are stable identifiers consumed by the web
// UI, not an ordering.
const (
	zoneRedLowID     = 1
	zoneYellowLowID  = 2
	zoneGreenID      = 3
	zoneYellowHighID = 4

	zoneRedLowName     = "zone_1_red_low"
	zoneYellowLowName  = "zone_2_yellow_low"
	zoneGreenName      = "zone_3_green"
	zoneYellowHighName = "zone_4_yellow_high"

	greenThreshold      = 0.70
	yellowLowThreshold  = 0.50
	yellowHighThreshold = 0.30
)

// zoneBand identifies the probability band a candidate falls in
func zoneBand(probability float64) (int, string) {
	switch {
	case probability >= greenThreshold:
		return zoneGreenID, zoneGreenName
	case probability >= yellowLowThreshold:
		return zoneYellowLowID, zoneYellowLowName
	case probability >= yellowHighThreshold:
		return zoneYellowHighID, zoneYellowHighName
	default:
		return zoneRedLowID, zoneRedLowName
	}
}

// assignZones partitions scored candidates into the four probability bands,
// emitting one zone per non-empty band, sorted ascending by price_range.min.
// maxProbability is the scan-wide maximum used for normalisation.
func assignZones(candidates []Candidate, maxProbability float64) []Zone {
	type bucket struct {
		id, count               int
		name                    string
		minPrice, maxPrice      float64
		sumProb, sumNorm, sumEV float64
	}

	buckets := make(map[int]*bucket, 4)
	norm := maxProbability
	if norm < normGuard {
		norm = normGuard
	}

	for _, c := range candidates {
		id, name := zoneBand(c.Probability)
		b, ok := buckets[id]
		if !ok {
			b = &bucket{id: id, name: name, minPrice: c.Price, maxPrice: c.Price}
			buckets[id] = b
		}
		if c.Price < b.minPrice {
			b.minPrice = c.Price
		}
		if c.Price > b.maxPrice {
			b.maxPrice = c.Price
		}
		b.count++
		b.sumProb += c.Probability
		b.sumNorm += c.Probability / norm
		b.sumEV += c.ExpectedValue
	}

	zones := make([]Zone, 0, len(buckets))
	for _, b := range buckets {
		n := float64(b.count)
		zones = append(zones, Zone{
			ZoneID:     b.id,
			ZoneName:   b.name,
			PriceRange: PriceRange{Min: round2(b.minPrice), Max: round2(b.maxPrice)},
			Metrics: ZoneMetrics{
				AvgProbabilityPercent:           round2(100 * b.sumProb / n),
				AvgNormalizedProbabilityPercent: round2(100 * b.sumNorm / n),
				AvgExpectedValue:                round2(b.sumEV / n),
			},
		})
	}

	sort.Slice(zones, func(i, j int) bool {
		return zones[i].PriceRange.Min < zones[j].PriceRange.Min
	})
	return zones
}

// placeOptimum resolves the zone id for the optimum candidate. If its band
// produced no zone, fall back to the emitted zone with the highest average
// probability, then to green.
func placeOptimum(optimum Candidate, zones []Zone) int {
	bandID, _ := zoneBand(optimum.Probability)
	for _, z := range zones {
		if z.ZoneID == bandID {
			return bandID
		}
	}

	bestID := 0
	bestProb := -1.0
	for _, z := range zones {
		if z.Metrics.AvgProbabilityPercent > bestProb {
			bestProb = z.Metrics.AvgProbabilityPercent
			bestID = z.ZoneID
		}
	}
	if bestID != 0 {
		return bestID
	}
	return zoneGreenID
}

// zoneThresholds documents the four bands for the response payload
func zoneThresholds() ZoneThresholds {
	return ZoneThresholds{
		GreenZone:      "acceptance probability 70% and above",
		YellowLowZone:  "acceptance probability 50-70%",
		YellowHighZone: "acceptance probability 30-50%",
		RedZone:        "acceptance probability below 30%",
	}
}
