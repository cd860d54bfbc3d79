package chart

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Range selects how many days of history a report chart covers.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
)

// ParseRange validates a range key. Empty means 30d.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case "":
		return Range30d, nil
	case Range7d, Range30d, Range90d:
		return Range(s), nil
	}
	return "", fmt.Errorf("chart: unknown range %q (want 7d, 30d or 90d)", s)
}

// Days returns the number of daily points in the range.
func (r Range) Days() int {
	switch r {
	case Range7d:
		return 7
	case Range90d:
		return 90
	default:
		return 30
	}
}

// HistoryPoint is one day of simulated execution history.
type HistoryPoint struct {
	Date        string  `json:"date"`
	PassRate    float64 `json:"passRate"`
	TotalTests  int     `json:"totalTests"`
	PassedTests int     `json:"passedTests"`
	FailedTests int     `json:"failedTests"`
	Defects     int     `json:"defects"`
}

// HistoricalTrend simulates a report's execution history ending today.
// There is no history store behind it; rng makes the output reproducible.
func HistoricalTrend(rng *rand.Rand, now time.Time, r Range) []HistoryPoint {
	days := r.Days()
	out := make([]HistoryPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		rate := rng.Float64()*30 + 60
		total := rng.IntN(20) + 10
		passed := int(math.Floor(float64(total) * rate / 100))
		out = append(out, HistoryPoint{
			Date:        now.AddDate(0, 0, -i).Format("01-02"),
			PassRate:    math.Round(rate*10) / 10,
			TotalTests:  total,
			PassedTests: passed,
			FailedTests: total - passed,
			Defects:     rng.IntN(5) + 1,
		})
	}
	return out
}

// Last returns at most n trailing points.
func Last(points []HistoryPoint, n int) []HistoryPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
