package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/richxcame/bid-pricing/pkg/logger"
	"go.uber.org/zap"
)

// UserStats holds the per-rider aggregates produced by the offline history
// builder.
type UserStats struct {
	OrderCount     float64
	AcceptanceRate float64
	AvgPriceRatio  float64
}

// DriverStats holds the per-driver aggregates produced by the offline history
// builder.
type DriverStats struct {
	BidCount       float64
	AcceptanceRate float64
	AvgBidRatio    float64
}

// Default means substituted when a history table is absent entirely.
var (
	DefaultUserMeans   = UserStats{OrderCount: 5, AcceptanceRate: 0.5, AvgPriceRatio: 1.1}
	DefaultDriverMeans = DriverStats{BidCount: 10, AcceptanceRate: 0.5, AvgBidRatio: 1.15}
)

// Cache is the read-only rider/driver history lookup. Lookups never fail:
// an unknown id yields the global means computed at load time.
type Cache struct {
	users   map[string]UserStats
	drivers map[string]DriverStats

	userMeans   UserStats
	driverMeans DriverStats
}

// Load reads both history tables. Missing or unreadable artefacts are not
// fatal; the cache substitutes default means and logs a warning once.
func Load(userPath, driverPath string) *Cache {
	c := &Cache{
		users:       make(map[string]UserStats),
		drivers:     make(map[string]DriverStats),
		userMeans:   DefaultUserMeans,
		driverMeans: DefaultDriverMeans,
	}

	if rows, err := readTable(userPath); err != nil {
		logger.Warn("User history table unavailable, using default means",
			zap.String("path", userPath), zap.Error(err))
	} else {
		c.loadUsers(rows)
	}

	if rows, err := readTable(driverPath); err != nil {
		logger.Warn("Driver history table unavailable, using default means",
			zap.String("path", driverPath), zap.Error(err))
	} else {
		c.loadDrivers(rows)
	}

	return c
}

// User returns the stats for a rider id, or the global means when absent.
func (c *Cache) User(id string) UserStats {
	if id != "" {
		if stats, ok := c.users[id]; ok {
			return stats
		}
	}
	return c.userMeans
}

// Driver returns the stats for a driver id, or the global means when absent.
func (c *Cache) Driver(id string) DriverStats {
	if id != "" {
		if stats, ok := c.drivers[id]; ok {
			return stats
		}
	}
	return c.driverMeans
}

// UserCount reports how many rider rows were loaded.
func (c *Cache) UserCount() int { return len(c.users) }

// DriverCount reports how many driver rows were loaded.
func (c *Cache) DriverCount() int { return len(c.drivers) }

// table is a header-indexed CSV: one map per data row.
type table []map[string]string

func readTable(path string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}

	header := records[0]
	rows := make(table, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Cache) loadUsers(rows table) {
	var sumCount, sumRate, sumRatio float64

	for _, row := range rows {
		id := row["user_id"]
		if id == "" {
			continue
		}
		stats := UserStats{
			OrderCount:     parseFloat(row["user_order_count"]),
			AcceptanceRate: parseFloat(row["user_acceptance_rate"]),
			AvgPriceRatio:  parseFloat(row["user_avg_price_ratio"]),
		}
		c.users[id] = stats
		sumCount += stats.OrderCount
		sumRate += stats.AcceptanceRate
		sumRatio += stats.AvgPriceRatio
	}

	if n := float64(len(c.users)); n > 0 {
		c.userMeans = UserStats{
			OrderCount:     sumCount / n,
			AcceptanceRate: sumRate / n,
			AvgPriceRatio:  sumRatio / n,
		}
	}
}

func (c *Cache) loadDrivers(rows table) {
	var sumCount, sumRate, sumRatio float64

	for _, row := range rows {
		id := row["driver_id"]
		if id == "" {
			continue
		}
		stats := DriverStats{
			BidCount:       parseFloat(row["driver_bid_count"]),
			AcceptanceRate: parseFloat(row["driver_acceptance_rate"]),
			AvgBidRatio:    parseFloat(row["driver_avg_bid_ratio"]),
		}
		c.drivers[id] = stats
		sumCount += stats.BidCount
		sumRate += stats.AcceptanceRate
		sumRatio += stats.AvgBidRatio
	}

	if n := float64(len(c.drivers)); n > 0 {
		c.driverMeans = DriverStats{
			BidCount:       sumCount / n,
			AcceptanceRate: sumRate / n,
			AvgBidRatio:    sumRatio / n,
		}
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
