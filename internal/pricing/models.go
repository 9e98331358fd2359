package pricing

// Platform constants accepted in OrderRequest
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformWeb     = "web"
)

// OrderRequest is the inbound order context submitted by a driver client
type OrderRequest struct {
	OrderTimestamp    int64   `json:"order_timestamp" binding:"required,gt=0"`
	DistanceInMeters  int64   `json:"distance_in_meters" binding:"gte=0"`
	DurationInSeconds int64   `json:"duration_in_seconds" binding:"gte=0"`
	PickupInMeters    int64   `json:"pickup_in_meters" binding:"gte=0"`
	PickupInSeconds   int64   `json:"pickup_in_seconds" binding:"gte=0"`
	DriverRating      float64 `json:"driver_rating" binding:"required,gte=1.0,lte=5.0"`
	Platform          string  `json:"platform" binding:"required,oneof=android ios web"`
	PriceStartLocal   float64 `json:"price_start_local" binding:"gte=0"`

	// Optional attributes; the feature builder substitutes documented
	// defaults when absent.
	CarName       string `json:"carname,omitempty"`
	CarModel      string `json:"carmodel,omitempty"`
	DriverRegDate string `json:"driver_reg_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	UserID        string `json:"user_id,omitempty"`
	DriverID      string `json:"driver_id,omitempty"`
}

// Candidate is one scanned price with its scored acceptance probability.
// expected value = price * probability.
type Candidate struct {
	Price         float64
	Probability   float64
	ExpectedValue float64
}

// ScanResult carries the scored grid and the chosen optimum
type ScanResult struct {
	Candidates     []Candidate
	BestIndex      int
	MinScan        float64
	MaxScan        float64
	PriceIncrement float64

	MaxProbability      float64
	MaxProbabilityPrice float64
}

// Best returns the optimum candidate
func (r *ScanResult) Best() Candidate {
	return r.Candidates[r.BestIndex]
}

// PriceRange bounds a zone or the scan interval
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ZoneMetrics are per-zone aggregates over the candidates in the band
type ZoneMetrics struct {
	AvgProbabilityPercent           float64 `json:"avg_probability_percent"`
	AvgNormalizedProbabilityPercent float64 `json:"avg_normalized_probability_percent"`
	AvgExpectedValue                float64 `json:"avg_expected_value"`
}

// Zone is a contiguous candidate-price band grouped by acceptance probability
type Zone struct {
	ZoneID     int         `json:"zone_id"`
	ZoneName   string      `json:"zone_name"`
	PriceRange PriceRange  `json:"price_range"`
	Metrics    ZoneMetrics `json:"metrics"`
}

// OptimalPrice is the recommendation the driver should bid
type OptimalPrice struct {
	Price                        float64 `json:"price"`
	ProbabilityPercent           float64 `json:"probability_percent"`
	NormalizedProbabilityPercent float64 `json:"normalized_probability_percent"`
	ExpectedValue                float64 `json:"expected_value"`
	ZoneID                       int     `json:"zone_id"`
	NetProfit                    float64 `json:"net_profit"`
}

// ZoneThresholds documents the four probability bands. Clients may display
// the strings verbatim; they are opaque descriptions, not parseable data.
type ZoneThresholds struct {
	GreenZone      string `json:"green_zone"`
	YellowLowZone  string `json:"yellow_low_zone"`
	YellowHighZone string `json:"yellow_high_zone"`
	RedZone        string `json:"red_zone"`
}

// FuelEconomics bounds the minimum profitable price for the trip
type FuelEconomics struct {
	FuelCost             float64 `json:"fuel_cost"`
	FuelLiters           float64 `json:"fuel_liters"`
	DistanceKm           float64 `json:"distance_km"`
	FuelPricePerLiter    float64 `json:"fuel_price_per_liter"`
	ConsumptionPer100Km  float64 `json:"consumption_per_100km"`
	MinProfitablePrice   float64 `json:"min_profitable_price"`
	NetProfitFromOptimal float64 `json:"net_profit_from_optimal"`
}

// Analysis carries scan metadata for the web UI
type Analysis struct {
	StartPrice            float64    `json:"start_price"`
	MaxProbabilityPercent float64    `json:"max_probability_percent"`
	MaxProbabilityPrice   float64    `json:"max_probability_price"`
	ScanRange             PriceRange `json:"scan_range"`
	Timestamp             string     `json:"timestamp"`
	PriceIncrement        float64    `json:"price_increment"`
}

// ModelResponse is the stable response contract. Field order is significant:
// the web UI consumes the payload positionally after JSON decoding, so the
// struct layout must not change.
type ModelResponse struct {
	Zones          []Zone         `json:"zones"`
	OptimalPrice   OptimalPrice   `json:"optimal_price"`
	ZoneThresholds ZoneThresholds `json:"zone_thresholds"`
	FuelEconomics  FuelEconomics  `json:"fuel_economics"`
	Analysis       Analysis       `json:"analysis"`
}
