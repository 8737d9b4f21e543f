// Package common provides shared utilities for Simvest
package common

import "github.com/shopspring/decimal"

// FloorRound truncates a monetary value to 2 decimal places by flooring.
// This is the uniform precision policy for cash, contributions, converted
// prices, and asset valuations. It is never applied to intermediate unit
// prices used only for division.
func FloorRound(x float64) float64 {
	return decimal.NewFromFloat(x).RoundFloor(2).InexactFloat64()
}

// Round2 rounds half-up to 2 decimal places. Used for display percentages,
// not for money.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
