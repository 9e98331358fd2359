package pricing

import (
	"sync"
	"time"

	"github.com/richxcame/bid-pricing/pkg/logger"
	"go.uber.org/zap"
)

const responseTimestampLayout = "2006-01-02 15:04:05"

// Service runs the pricing pipeline: scan, zone assignment, fuel economics,
// response assembly. It holds only read-only state and is safe for
// concurrent use.
type Service struct {
	load      func() (Predictor, error)
	builder   *FeatureBuilder
	points    int
	fuel      FuelParams
	allowStub bool
	now       func() time.Time

	warnOnce sync.Once
}

// NewService creates a pricing service. load is invoked per request and is
// expected to memoise the underlying artefact; now is injectable for
// deterministic tests.
func NewService(load func() (Predictor, error), builder *FeatureBuilder, points int, fuel FuelParams, allowStub bool, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if fuel.ConsumptionPer100Km <= 0 {
		fuel.ConsumptionPer100Km = DefaultFuelParams.ConsumptionPer100Km
	}
	if fuel.PricePerLiter <= 0 {
		fuel.PricePerLiter = DefaultFuelParams.PricePerLiter
	}
	return &Service{
		load:      load,
		builder:   builder,
		points:    points,
		fuel:      fuel,
		allowStub: allowStub,
		now:       now,
	}
}

// Recommend runs the full pipeline for one validated order
func (s *Service) Recommend(order *OrderRequest) (*ModelResponse, error) {
	predictor, err := s.load()
	if err != nil {
		if s.allowStub {
			s.warnOnce.Do(func() {
				logger.Warn("Model artefact unavailable, serving stub recommendation", zap.Error(err))
			})
			return s.stubResponse(order), nil
		}
		return nil, err
	}

	scanner := NewScanner(s.builder, predictor, s.points)
	result, err := scanner.Scan(order)
	if err != nil {
		return nil, err
	}

	return s.assemble(order, result), nil
}

// assemble builds the stable response payload from the scan outcome
func (s *Service) assemble(order *OrderRequest, result *ScanResult) *ModelResponse {
	zones := assignZones(result.Candidates, result.MaxProbability)
	optimum := result.Best()
	zoneID := placeOptimum(optimum, zones)

	norm := result.MaxProbability
	if norm < normGuard {
		norm = normGuard
	}

	fuelEcon := computeFuelEconomics(order.DistanceInMeters, optimum, s.fuel)

	return &ModelResponse{
		Zones: zones,
		OptimalPrice: OptimalPrice{
			Price:                        round2(optimum.Price),
			ProbabilityPercent:           round2(100 * optimum.Probability),
			NormalizedProbabilityPercent: round2(100 * optimum.Probability / norm),
			ExpectedValue:                round2(optimum.ExpectedValue),
			ZoneID:                       zoneID,
			NetProfit:                    round2(optimum.Price - fuelEcon.FuelCost),
		},
		ZoneThresholds: zoneThresholds(),
		FuelEconomics:  fuelEcon,
		Analysis: Analysis{
			StartPrice:            round2(order.PriceStartLocal),
			MaxProbabilityPercent: round2(100 * result.MaxProbability),
			MaxProbabilityPrice:   round2(result.MaxProbabilityPrice),
			ScanRange: PriceRange{
				Min: round2(result.MinScan),
				Max: round2(result.MaxScan),
			},
			Timestamp:      s.now().UTC().Format(responseTimestampLayout),
			PriceIncrement: round2(result.PriceIncrement),
		},
	}
}
