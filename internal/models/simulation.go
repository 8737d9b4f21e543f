package models

import "time"

// SimulationKind discriminates the two simulation variants.
type SimulationKind string

const (
	SimulationAutomatic SimulationKind = "automatic"
	SimulationManual    SimulationKind = "manual"
)

// Simulation is a stored portfolio simulation, either a one-shot
// dollar-cost-average projection (automatic) or an interactively advanced
// month-by-month simulation (manual). The inflation series is fetched once
// at creation and frozen for the simulation's lifetime.
type Simulation struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Kind SimulationKind `json:"kind"`

	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date,omitempty"`      // automatic only
	CurrentMonth time.Time `json:"current_month,omitempty"` // manual only: the simulation's "now"

	InitialContribution float64 `json:"initial_contribution,omitempty"` // automatic only
	MonthlyContribution float64 `json:"monthly_contribution,omitempty"` // automatic only

	Portfolio        Portfolio        `json:"portfolio"`
	InflationSeries  []IndexPoint     `json:"inflation_series"`
	ValuationHistory []ValuationPoint `json:"valuation_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Asset returns the portfolio asset with the given ticker, or nil.
func (s *Simulation) Asset(ticker string) *Asset {
	for _, a := range s.Portfolio.Assets {
		if a.Ticker == ticker {
			return a
		}
	}
	return nil
}

// Portfolio holds cash and assets in a single base currency.
// Cash is never persisted negative; mutations clamp at zero.
type Portfolio struct {
	BaseCurrency string   `json:"base_currency"`
	Cash         float64  `json:"cash"`
	Assets       []*Asset `json:"assets"`
}

// Asset is a position within a portfolio, unique by ticker.
type Asset struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Currency string `json:"currency"` // native currency of the asset's prices

	Weight   float64 `json:"weight"`   // target allocation fraction, automatic mode only
	Holdings float64 `json:"holdings"` // quantity held, never negative

	// Prices is the date-keyed OHLC history used by manual simulations.
	Prices PriceSeries `json:"prices"`

	// MonthlyCloses is the automatic engine's pre-loaded monthly close list,
	// already converted to the portfolio base currency. Entry i is the close
	// i months after ListingDate.
	MonthlyCloses []float64 `json:"monthly_closes,omitempty"`

	// LastConvertedPrice is the most recent base-currency unit price.
	LastConvertedPrice float64 `json:"last_converted_price"`

	// ListingDate is the first date the asset has any price data.
	// Nil until the first price fetch.
	ListingDate *time.Time `json:"listing_date,omitempty"`
}

// ValuationPoint is one entry of a simulation's valuation history.
type ValuationPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SimulationSummary is the listing view of a stored simulation.
type SimulationSummary struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      SimulationKind `json:"kind"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date,omitempty"`
	CurrentMonth time.Time `json:"current_month,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	InitialContribution float64 `json:"initial_contribution,omitempty"`
	MonthlyContribution float64 `json:"monthly_contribution,omitempty"`
	TotalValue          float64 `json:"total_value,omitempty"` // manual: cash + last known asset value
}

// AssetWeight pairs a ticker with its target allocation when populating an
// automatic portfolio.
type AssetWeight struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// ValuationReport is the point-in-time view of a manual simulation.
type ValuationReport struct {
	SimulationID string            `json:"simulation_id"`
	Name         string            `json:"name"`
	CurrentMonth time.Time         `json:"current_month"`
	Cash         float64           `json:"cash"`
	TotalValue   float64           `json:"total_value"` // assets + cash
	Allocations  []AssetAllocation `json:"allocations"`
	ValueHistory []ValuationPoint  `json:"value_history"`
}

// AssetAllocation is one asset's share of the portfolio in a valuation report.
type AssetAllocation struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	Holdings   float64 `json:"holdings"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"` // of total asset value, 2dp
}

// TradeSide is the direction of a manual trade.
type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// TradeResult reports portfolio state after a buy or sell.
type TradeResult struct {
	Ticker       string  `json:"ticker"`
	Cash         float64 `json:"cash"`
	Holdings     float64 `json:"holdings"`
}

// QuoteView is the trading view for one ticker within a manual simulation.
type QuoteView struct {
	Ticker         string       `json:"ticker"`
	SimulationName string       `json:"simulation_name"`
	History        []PricePoint `json:"history"`
	Cash           float64      `json:"cash"`
	LastPrice      float64      `json:"last_price"`      // native currency
	ConvertedPrice float64      `json:"converted_price"` // base currency, floor-rounded
	AssetCurrency  string       `json:"asset_currency"`
	BaseCurrency   string       `json:"base_currency"`
	Holdings       float64      `json:"holdings"`
	HoldingsValue  float64      `json:"holdings_value"`
}

// TickerCheck reports whether a ticker has price data, and from when.
type TickerCheck struct {
	Ticker      string     `json:"ticker"`
	Exists      bool       `json:"exists"`
	Name        string     `json:"name,omitempty"`
	ListingDate *time.Time `json:"listing_date,omitempty"`
}

// AutomaticResult is the response payload of a computed automatic simulation.
type AutomaticResult struct {
	SimulationID        string           `json:"simulation_id"`
	Name                string           `json:"name"`
	StartDate           time.Time        `json:"start_date"`
	EndDate             time.Time        `json:"end_date"`
	InitialContribution float64          `json:"initial_contribution"`
	MonthlyContribution float64          `json:"monthly_contribution"`
	Assets              []AssetPosition  `json:"assets"`
	Series              []ValuationPoint `json:"series"`
}

// AssetPosition summarizes one asset's weight and final holdings.
type AssetPosition struct {
	Ticker   string  `json:"ticker"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Holdings float64 `json:"holdings"`
}
