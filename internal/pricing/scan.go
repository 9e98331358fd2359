package pricing

import (
	"errors"
	"fmt"
	"time"
)

// Predictor is the scoring surface of the loaded model artefact
type Predictor interface {
	FeatureNames() []string
	ColumnIndex() map[string]int
	PredictProba(rows [][]float64) ([]float64, error)
}

// ErrModelInference wraps predictor failures; the HTTP layer maps it to 502.
var ErrModelInference = errors.New("model inference failed")

// Scan-range multipliers over the rider's starting price
const (
	multiplierNight       = 2.00
	multiplierWeekdayPeak = 2.20
	multiplierWeekend     = 1.80
	multiplierDefault     = 1.60
)

const (
	// Weight of expected value versus raw probability when selecting the
	// optimum. Pure EV pushes the recommendation into the probability tail.
	optimumWeight = 0.7

	normGuard = 1e-9

	// Edge extension: when the optimum lands within 5% of the scan ceiling,
	// extend the grid by up to 50 points.
	edgeProximity  = 0.95
	edgeMaxPoints  = 50
	edgeOptimumCap = 1.20
	edgeRangeCap   = 1.15
)

// Scanner enumerates candidate prices, scores them in one model batch, and
// selects the optimum under the weighted objective.
type Scanner struct {
	builder   *FeatureBuilder
	predictor Predictor
	points    int
}

// NewScanner creates a scanner. points below the hard minimum of 20 are
// raised to it.
func NewScanner(builder *FeatureBuilder, predictor Predictor, points int) *Scanner {
	if points < 20 {
		points = 20
	}
	return &Scanner{builder: builder, predictor: predictor, points: points}
}

// scanBounds derives the candidate price interval from the starting price and
// the order's hour/weekday.
func scanBounds(startPrice float64, ts time.Time) (float64, float64) {
	hour := ts.Hour()
	wday := (int(ts.Weekday()) + 6) % 7

	isNight := hour < 6 || hour >= 22
	isPeak := (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 20)
	isWeekend := wday >= 5

	multiplier := multiplierDefault
	switch {
	case isNight:
		multiplier = multiplierNight
	case isPeak && !isWeekend:
		multiplier = multiplierWeekdayPeak
	case isWeekend:
		multiplier = multiplierWeekend
	}

	minScan := startPrice * 0.6
	if minScan < 1.0 {
		minScan = 1.0
	}
	maxScan := startPrice * multiplier
	if maxScan < minScan+1.0 {
		maxScan = minScan + 1.0
	}
	return minScan, maxScan
}

// linspace produces n evenly spaced values over [lo, hi] inclusive
func linspace(lo, hi float64, n int) []float64 {
	points := make([]float64, n)
	if n == 1 {
		points[0] = lo
		return points
	}
	step := (hi - lo) / float64(n-1)
	for i := range points {
		points[i] = lo + float64(i)*step
	}
	points[n-1] = hi
	return points
}

// Scan runs the full candidate enumeration for one order
func (s *Scanner) Scan(order *OrderRequest) (*ScanResult, error) {
	ts := time.Unix(order.OrderTimestamp, 0).UTC()
	minScan, maxScan := scanBounds(order.PriceStartLocal, ts)

	prices := linspace(minScan, maxScan, s.points)
	candidates, err := s.score(order, prices)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Candidates:     candidates,
		MinScan:        minScan,
		MaxScan:        maxScan,
		PriceIncrement: prices[1] - prices[0],
	}

	result.BestIndex = selectOptimum(candidates, order.PriceStartLocal)

	// Edge extension: a single deterministic pass when the optimum hugs the
	// scan ceiling.
	if extended, err := s.extendEdge(order, result); err != nil {
		return nil, err
	} else if extended {
		result.BestIndex = selectOptimum(result.Candidates, order.PriceStartLocal)
	}

	maxProbIdx := 0
	for i, c := range result.Candidates {
		if c.Probability > result.Candidates[maxProbIdx].Probability {
			maxProbIdx = i
		}
	}
	result.MaxProbability = result.Candidates[maxProbIdx].Probability
	result.MaxProbabilityPrice = result.Candidates[maxProbIdx].Price

	return result, nil
}

func (s *Scanner) score(order *OrderRequest, prices []float64) ([]Candidate, error) {
	names := s.predictor.FeatureNames()
	matrix := s.builder.BuildMatrix(order, prices, len(names), s.predictor.ColumnIndex())

	probs, err := s.predictor.PredictProba(matrix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInference, err)
	}
	if len(probs) != len(prices) {
		return nil, fmt.Errorf("%w: predictor returned %d probabilities for %d candidates",
			ErrModelInference, len(probs), len(prices))
	}

	candidates := make([]Candidate, len(prices))
	for i, price := range prices {
		candidates[i] = Candidate{
			Price:         price,
			Probability:   probs[i],
			ExpectedValue: price * probs[i],
		}
	}
	return candidates, nil
}

// extendEdge appends up to edgeMaxPoints candidates above the scan ceiling
// when the current optimum lies within 5% of it. Returns whether the grid
// grew.
func (s *Scanner) extendEdge(order *OrderRequest, result *ScanResult) (bool, error) {
	best := result.Best()
	if best.Price < edgeProximity*result.MaxScan {
		return false, nil
	}

	upper := best.Price * edgeOptimumCap
	if ceiling := result.MaxScan * edgeRangeCap; upper > ceiling {
		upper = ceiling
	}
	if upper <= result.MaxScan || result.PriceIncrement <= 0 {
		return false, nil
	}

	var extra []float64
	for i := 1; i <= edgeMaxPoints; i++ {
		price := result.MaxScan + float64(i)*result.PriceIncrement
		if price > upper {
			break
		}
		extra = append(extra, price)
	}
	if len(extra) == 0 {
		return false, nil
	}

	scored, err := s.score(order, extra)
	if err != nil {
		return false, err
	}

	result.Candidates = append(result.Candidates, scored...)
	result.MaxScan = extra[len(extra)-1]
	return true, nil
}

// selectOptimum picks argmax of the weighted objective
// w*(ev/maxEV) + (1-w)*(p/maxP) over the valid set (candidates at or above
// the starting price; all candidates when that set is empty). Ties break to
// higher probability, then lower price.
func selectOptimum(candidates []Candidate, startPrice float64) int {
	maxEV, maxProb := normGuard, normGuard
	for _, c := range candidates {
		if c.ExpectedValue > maxEV {
			maxEV = c.ExpectedValue
		}
		if c.Probability > maxProb {
			maxProb = c.Probability
		}
	}

	anyValid := false
	for _, c := range candidates {
		if c.Price >= startPrice {
			anyValid = true
			break
		}
	}

	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		if anyValid && c.Price < startPrice {
			continue
		}
		score := optimumWeight*(c.ExpectedValue/maxEV) + (1-optimumWeight)*(c.Probability/maxProb)
		switch {
		case best < 0 || score > bestScore:
			best, bestScore = i, score
		case score == bestScore:
			if c.Probability > candidates[best].Probability ||
				(c.Probability == candidates[best].Probability && c.Price < candidates[best].Price) {
				best = i
			}
		}
	}
	return best
}
