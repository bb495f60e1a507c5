package market

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// Band maps a draw r in [0, Threshold) that missed every earlier band to a
// variation percentage in [Min, Max).
type Band struct {
	Threshold float64
	Min       float64
	Max       float64
}

// Config holds the price-walk policy constants. Rand and Now are injectable
// so tests can pin the banding behavior.
type Config struct {
	Bands           []Band
	FloorPrice      decimal.Decimal
	DaysPerYear     int
	InflationFactor decimal.Decimal // daily factor applied to pos-fixed assets
	Rand            func() float64
	Now             func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Bands: []Band{
			{Threshold: 0.40, Min: 0.001, Max: 0.02}, // 40% of draws: 0.1% to 2%
			{Threshold: 0.70, Min: 0.02, Max: 0.03},  // 30% of draws: 2% to 3%
			{Threshold: 0.90, Min: 0.03, Max: 0.04},  // 20% of draws: 3% to 4%
			{Threshold: 1.00, Min: 0.04, Max: 0.05},  // 10% of draws: 4% to 5%
		},
		FloorPrice:      decimal.RequireFromString("0.01"),
		DaysPerYear:     365,
		InflationFactor: decimal.RequireFromString("1.0001"),
		Rand:            rand.Float64,
		Now:             time.Now,
	}
}
