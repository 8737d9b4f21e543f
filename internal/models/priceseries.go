package models

import (
	"sort"
	"time"
)

// PriceSeries is an ordered date-keyed collection of OHLC points.
// Points are kept sorted ascending by date with at most one point per
// calendar date; shape is validated at ingestion, not at every read.
type PriceSeries struct {
	Points []PricePoint `json:"points"`
}

// Upsert merges or overwrites a single date's OHLC point.
func (s *PriceSeries) Upsert(p PricePoint) {
	p.Date = DateOnly(p.Date)
	i := sort.Search(len(s.Points), func(i int) bool {
		return !s.Points[i].Date.Before(p.Date)
	})
	if i < len(s.Points) && s.Points[i].Date.Equal(p.Date) {
		s.Points[i] = p
		return
	}
	s.Points = append(s.Points, PricePoint{})
	copy(s.Points[i+1:], s.Points[i:])
	s.Points[i] = p
}

// Extend upserts many points at once.
func (s *PriceSeries) Extend(points []PricePoint) {
	for _, p := range points {
		s.Upsert(p)
	}
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// First returns the earliest point, or false when the series is empty.
func (s *PriceSeries) First() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[0], true
}

// Last returns the latest point, or false when the series is empty.
func (s *PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// CloseOnOrBefore returns the close of the latest entry dated on or before
// the query date. Ties between equal candidates resolve to the later date.
func (s *PriceSeries) CloseOnOrBefore(date time.Time) (float64, bool) {
	date = DateOnly(date)
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Date.After(date)
	})
	if i == 0 {
		return 0, false
	}
	return s.Points[i-1].Close, true
}

// CloseBetween returns the mean close and the last available close within
// [start, end] inclusive. The last close is the canonical valuation policy;
// the mean is retained for callers that report averages.
func (s *PriceSeries) CloseBetween(start, end time.Time) (mean, last float64, ok bool) {
	start, end = DateOnly(start), DateOnly(end)
	sum, n := 0.0, 0
	for _, p := range s.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		sum += p.Close
		last = p.Close
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return sum / float64(n), last, true
}

// Between returns all points within [start, end] inclusive, in order.
func (s *PriceSeries) Between(start, end time.Time) []PricePoint {
	start, end = DateOnly(start), DateOnly(end)
	var out []PricePoint
	for _, p := range s.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
