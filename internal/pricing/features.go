package pricing

import (
	"math"
	"time"

	"github.com/richxcame/bid-pricing/internal/history"
)

// Documented defaults substituted for missing optional order fields
const (
	defaultCarName       = "Renault"
	defaultCarModel      = "Logan"
	defaultPlatform      = PlatformAndroid
	defaultDriverRating  = 5.0
	defaultDriverRegDate = "2020-01-01"

	// No tender timestamp is available at inference, so response time is
	// pinned to the training-set average.
	defaultResponseTimeSeconds = 30.0

	fallbackExperienceDays = 365.0
)

// epsilon guards every ratio denominator against division by zero
const epsilon = 0.1

// valueClip bounds every feature after non-finite replacement
const valueClip = 1e10

// FuelParams are the constants of the fuel-economics derivation
type FuelParams struct {
	ConsumptionPer100Km float64
	PricePerLiter       float64
}

// DefaultFuelParams match the documented constants (9 L/100km, 55/L)
var DefaultFuelParams = FuelParams{ConsumptionPer100Km: 9.0, PricePerLiter: 55.0}

// FeatureBuilder derives the model's feature vector for one
// (order, candidate price) pair. It is pure: the same inputs always produce
// the same output, and nothing is mutated.
type FeatureBuilder struct {
	history *history.Cache
	fuel    FuelParams
}

// NewFeatureBuilder creates a feature builder. The history cache may be nil;
// history features are then omitted and zero-filled during column alignment.
func NewFeatureBuilder(cache *history.Cache, fuel FuelParams) *FeatureBuilder {
	if fuel.ConsumptionPer100Km <= 0 {
		fuel.ConsumptionPer100Km = DefaultFuelParams.ConsumptionPer100Km
	}
	if fuel.PricePerLiter <= 0 {
		fuel.PricePerLiter = DefaultFuelParams.PricePerLiter
	}
	return &FeatureBuilder{history: cache, fuel: fuel}
}

// BuildRow writes the feature vector for (order, priceBid) into row, aligned
// to the model's column order via index. Columns the builder does not produce
// stay 0.0; builder outputs absent from index are dropped.
func (b *FeatureBuilder) BuildRow(order *OrderRequest, priceBid float64, index map[string]int, row []float64) {
	for i := range row {
		row[i] = 0
	}

	features := b.featureMap(order, priceBid)
	for name, value := range features {
		if col, ok := index[name]; ok && col < len(row) {
			row[col] = sanitize(value)
		}
	}
}

// BuildMatrix stacks one row per candidate price into an N x K matrix in
// model column order.
func (b *FeatureBuilder) BuildMatrix(order *OrderRequest, prices []float64, width int, index map[string]int) [][]float64 {
	rows := make([][]float64, len(prices))
	backing := make([]float64, len(prices)*width)
	for i, price := range prices {
		row := backing[i*width : (i+1)*width]
		b.BuildRow(order, price, index, row)
		rows[i] = row
	}
	return rows
}

// featureMap computes every derived feature family for one candidate price.
func (b *FeatureBuilder) featureMap(order *OrderRequest, priceBid float64) map[string]float64 {
	f := make(map[string]float64, 112)

	startPrice := order.PriceStartLocal
	distM := float64(order.DistanceInMeters)
	durS := float64(order.DurationInSeconds)
	pickupM := float64(order.PickupInMeters)
	pickupS := float64(order.PickupInSeconds)
	distKm := distM / 1000
	durMin := durS / 60

	ts := time.Unix(order.OrderTimestamp, 0).UTC()
	hour := float64(ts.Hour())
	// Monday=0 .. Sunday=6, matching the training pipeline
	wday := float64((int(ts.Weekday()) + 6) % 7)

	// Price family
	f["price_bid_local"] = priceBid
	f["price_start_local"] = startPrice
	f["price_increase_abs"] = priceBid - startPrice
	increasePct := (priceBid - startPrice) / (startPrice + epsilon) * 100
	f["price_increase_pct"] = increasePct
	f["is_price_increased"] = boolFeature(increasePct > 0)
	f["price_per_km"] = priceBid / (distKm + epsilon)
	f["price_per_minute"] = priceBid / (durMin + epsilon)

	// Time family
	f["hour_sin"] = math.Sin(2 * math.Pi * hour / 24)
	f["hour_cos"] = math.Cos(2 * math.Pi * hour / 24)
	f["day_of_week"] = wday
	f["day_sin"] = math.Sin(2 * math.Pi * wday / 7)
	f["day_cos"] = math.Cos(2 * math.Pi * wday / 7)
	isWeekend := wday >= 5
	f["is_weekend"] = boolFeature(isWeekend)

	isMorningPeak := hour >= 7 && hour <= 9
	isEveningPeak := hour >= 17 && hour <= 20
	isPeak := isMorningPeak || isEveningPeak
	isNight := hour < 6 || hour >= 22
	f["is_morning_peak"] = boolFeature(isMorningPeak)
	f["is_evening_peak"] = boolFeature(isEveningPeak)
	f["is_peak_hour"] = boolFeature(isPeak)
	f["is_night"] = boolFeature(isNight)
	f["is_lunch_time"] = boolFeature(hour >= 12 && hour <= 14)

	// Trip family
	f["distance_in_meters"] = distM
	f["duration_in_seconds"] = durS
	f["distance_km"] = distKm
	f["duration_min"] = durMin

	avgSpeed := clip(distM/(durS+epsilon)*3.6, 0, 150)
	f["avg_speed_kmh"] = avgSpeed
	f["is_traffic_jam"] = boolFeature(avgSpeed < 15)
	f["is_highway"] = boolFeature(avgSpeed > 50)
	f["is_short_trip"] = boolFeature(distKm < 2)
	f["is_medium_trip"] = boolFeature(distKm >= 2 && distKm < 10)
	f["is_long_trip"] = boolFeature(distKm >= 10)

	// Pickup family
	f["pickup_in_meters"] = pickupM
	f["pickup_in_seconds"] = pickupS
	f["pickup_km"] = pickupM / 1000
	f["pickup_speed_kmh"] = clip(pickupM/(pickupS+epsilon)*3.6, 0, 150)
	f["pickup_to_trip_ratio"] = clip(pickupM/(distM+1), 0, 10)
	f["pickup_time_ratio"] = clip(pickupS/(durS+1), 0, 10)
	f["total_distance"] = pickupM + distM
	f["total_time"] = pickupS + durS

	// Driver family
	rating := order.DriverRating
	if rating == 0 {
		rating = defaultDriverRating
	}
	f["driver_rating"] = rating

	expDays := driverExperienceDays(order.DriverRegDate, ts)
	expYears := expDays / 365.25
	f["driver_experience_days"] = expDays
	f["driver_experience_years"] = expYears
	f["is_new_driver"] = boolFeature(expDays < 30)
	f["is_experienced_driver"] = boolFeature(expDays > 365)
	f["has_perfect_rating"] = boolFeature(rating == 5.0)
	f["rating_deviation"] = 5.0 - rating

	responseTime := clip(defaultResponseTimeSeconds, 0, 600)
	f["response_time_seconds"] = responseTime
	f["response_time_log"] = math.Log1p(responseTime)
	f["is_fast_response"] = boolFeature(responseTime < 10)
	f["is_slow_response"] = boolFeature(responseTime > 60)

	// Vehicle family
	carname := order.CarName
	if carname == "" {
		carname = defaultCarName
	}
	carmodel := order.CarModel
	if carmodel == "" {
		carmodel = defaultCarModel
	}
	taxiType := DetectTaxiType(carname, carmodel)
	f["taxi_type_economy"] = boolFeature(taxiType == TaxiTypeEconomy)
	f["taxi_type_comfort"] = boolFeature(taxiType == TaxiTypeComfort)
	f["taxi_type_business"] = boolFeature(taxiType == TaxiTypeBusiness)

	platform := order.Platform
	if platform == "" {
		platform = defaultPlatform
	}
	f["platform_android"] = boolFeature(platform == PlatformAndroid)
	f["platform_ios"] = boolFeature(platform == PlatformIOS)

	// Fuel family
	fuelLiters := distKm * b.fuel.ConsumptionPer100Km / 100
	fuelCost := fuelLiters * b.fuel.PricePerLiter
	minProfitable := 1.3 * fuelCost
	priceAboveMin := priceBid - minProfitable
	netProfit := priceBid - fuelCost
	fuelRatio := priceBid / (fuelCost + epsilon)

	f["fuel_cost"] = fuelCost
	f["fuel_liters"] = fuelLiters
	f["price_to_fuel_ratio"] = fuelRatio
	f["min_profitable_price"] = minProfitable
	f["price_above_min"] = priceAboveMin
	f["price_above_min_pct"] = priceAboveMin / (minProfitable + epsilon) * 100
	f["is_highly_profitable"] = boolFeature(priceBid >= 2*minProfitable)
	f["is_profitable"] = boolFeature(priceBid >= minProfitable)
	f["is_unprofitable"] = boolFeature(priceBid < minProfitable)
	f["net_profit"] = netProfit
	f["net_profit_per_km"] = netProfit / (distKm + epsilon)
	f["net_profit_per_minute"] = netProfit / (durMin + epsilon)

	// History family
	if b.history != nil {
		user := b.history.User(order.UserID)
		driver := b.history.Driver(order.DriverID)

		f["user_order_count"] = user.OrderCount
		f["user_acceptance_rate"] = user.AcceptanceRate
		f["user_avg_price_ratio"] = user.AvgPriceRatio
		f["user_is_new"] = boolFeature(user.OrderCount <= 5)
		f["user_is_vip"] = boolFeature(user.OrderCount >= 20)
		f["user_is_price_sensitive"] = boolFeature(user.AvgPriceRatio < 1.1)

		f["driver_bid_count"] = driver.BidCount
		f["driver_acceptance_rate"] = driver.AcceptanceRate
		f["driver_avg_bid_ratio"] = driver.AvgBidRatio
		f["driver_is_active"] = boolFeature(driver.BidCount >= 20)
		f["driver_is_aggressive"] = boolFeature(driver.AvgBidRatio > 1.2)
		f["driver_is_flexible"] = boolFeature(driver.AvgBidRatio < 1.1)

		f["user_driver_match_score"] = user.AcceptanceRate * driver.AcceptanceRate
	}

	// Route-quality family
	f["route_efficiency"] = distKm / (durMin + epsilon)
	f["is_very_short_route"] = boolFeature(distKm < 1)
	f["is_very_long_route"] = boolFeature(distKm > 20)
	f["pickup_burden"] = (pickupM / 1000) / (distKm + epsilon)

	// Calendar family
	day := float64(ts.Day())
	f["day_of_month"] = day
	f["is_month_start"] = boolFeature(day <= 5)
	f["is_month_end"] = boolFeature(day >= 25)
	f["hour_quartile"] = math.Floor(hour / 6)

	// Interactions
	f["price_inc_x_distance"] = increasePct * distKm
	f["price_inc_x_night"] = increasePct * f["is_night"]
	f["price_inc_x_peak"] = increasePct * f["is_peak_hour"]
	f["price_inc_x_weekend"] = increasePct * f["is_weekend"]
	f["distance_x_night"] = distKm * f["is_night"]
	f["distance_x_weekend"] = distKm * f["is_weekend"]
	f["distance_x_peak"] = distKm * f["is_peak_hour"]
	f["speed_x_peak"] = avgSpeed * f["is_peak_hour"]
	f["rating_x_price_inc"] = rating * increasePct
	f["experience_x_price_inc"] = expYears * increasePct
	f["fuel_ratio_x_distance"] = fuelRatio * distKm
	f["fuel_ratio_x_peak"] = fuelRatio * f["is_peak_hour"]
	f["net_profit_x_rating"] = netProfit * rating

	return f
}

// driverExperienceDays derives tenure from the registration date. Unparseable
// or future dates fall back to one year, matching the training pipeline.
func driverExperienceDays(regDate string, orderTime time.Time) float64 {
	if regDate == "" {
		regDate = defaultDriverRegDate
	}
	reg, err := time.Parse("2006-01-02", regDate)
	if err != nil {
		return fallbackExperienceDays
	}
	days := math.Floor(orderTime.Sub(reg).Hours() / 24)
	if days < 0 {
		return fallbackExperienceDays
	}
	return clip(days, 0, 3650)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sanitize replaces non-finite values with 0 and bounds the rest, so one
// degenerate input cannot poison the whole score batch.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return clip(v, -valueClip, valueClip)
}
