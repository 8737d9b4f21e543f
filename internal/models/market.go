// Package models defines data structures for Simvest
package models

import "time"

// PricePoint represents a single period's OHLC price data
type PricePoint struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Dividend represents a single dividend event
type Dividend struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"` // per-unit, in the asset's native currency
}

// TickerInfo holds descriptive data for a ticker
type TickerInfo struct {
	Ticker   string `json:"ticker"`
	LongName string `json:"long_name"`
	Currency string `json:"currency"`
}

// IndexPoint represents one period of a price index series.
// Value is in percentage points (e.g. 0.5 means +0.5% for the period),
// not yet converted to a multiplicative factor.
type IndexPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateOnly truncates a timestamp to a calendar date at midnight UTC.
// All series keys and month cursors are normalized through this.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart truncates a timestamp to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the whole (year, month) delta from one date to
// another, ignoring day-of-month.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}
