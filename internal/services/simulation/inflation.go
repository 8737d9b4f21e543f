package simulation

import (
	"time"

	"github.com/mbarros/simvest/internal/models"
)

// AdjustInflation deflates a nominal amount by the cumulative inflation
// observed between periodStart and periodEnd (inclusive on both ends).
// The factor is the product of (1 + v/100) over every index point whose
// date falls inside the window, so the result expresses the amount in
// periodStart purchasing power.
func AdjustInflation(series []models.IndexPoint, periodStart time.Time, nominal float64, periodEnd time.Time) (float64, error) {
	factor := 1.0
	matched := false
	for _, point := range series {
		if point.Date.Before(periodStart) || point.Date.After(periodEnd) {
			continue
		}
		factor *= 1 + point.Value/100
		matched = true
	}
	if !matched {
		return 0, models.NewFault(models.FaultUpstreamUnavailable, "no inflation data in range")
	}
	return nominal / factor, nil
}

// monthsIn returns the index dates that fall inside [start, end], in
// series order. These drive the contribution schedule of the automatic
// engine: one contribution per published index month.
func monthsIn(series []models.IndexPoint, start, end time.Time) []time.Time {
	var months []time.Time
	for _, point := range series {
		if point.Date.Before(start) || point.Date.After(end) {
			continue
		}
		months = append(months, point.Date)
	}
	return months
}
