// Package chart derives the series behind the dashboard's charts: plan
// burndown curves, report history and the fixed demo analyses.
package chart

import (
	"math"
	"time"

	"github.com/zulandar/qadesk/internal/models"
)

const day = 24 * time.Hour

// BurndownDays returns the number of whole days spanned by [start, end],
// rounded up. It never returns less than one.
func BurndownDays(start, end time.Time) int {
	days := int(math.Ceil(float64(end.Sub(start)) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

// Burndown generates one point per day from start through end inclusive.
// The curve is synthetic: completed work runs 10% ahead of a linear plan,
// actual work trails completed by 5%, and everything is done on the last day.
// It is computed once and is not reconciled with execution data.
func Burndown(start, end time.Time, total float64) []models.BurndownPoint {
	days := BurndownDays(start, end)
	points := make([]models.BurndownPoint, 0, days+1)
	for i := 0; i <= days; i++ {
		frac := float64(i) / float64(days)
		completed := total
		if i < days {
			completed = total*0.1 + total*0.8*frac
		}
		actual := completed * 0.95
		points = append(points, models.BurndownPoint{
			Date:              start.AddDate(0, 0, i),
			PlannedWorkload:   total * (1 - frac),
			ActualWorkload:    actual,
			CompletedWorkload: completed,
			RemainingWorkload: total - actual,
		})
	}
	return points
}
