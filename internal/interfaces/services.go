package interfaces

import (
	"context"
	"time"

	"github.com/mbarros/simvest/internal/models"
)

// SimulationService is the engine's external surface. Mutations to a given
// simulation are serialized internally; each call runs to completion as a
// synchronous pipeline.
type SimulationService interface {
	// CreateAutomatic creates an automatic simulation, fetching and freezing
	// the inflation series. Fails without persisting anything when the
	// series is unavailable or the date range is invalid.
	CreateAutomatic(ctx context.Context, name string, start, end time.Time, initial, monthly float64, baseCurrency string) (*models.Simulation, error)

	// PopulateAutomatic onboards the given tickers and weights into an
	// automatic simulation's portfolio, pre-loading base-currency monthly
	// prices for the whole simulation range.
	PopulateAutomatic(ctx context.Context, id string, assets []models.AssetWeight) (*models.Simulation, error)

	// ComputeAutomatic runs the month-by-month projection, persists final
	// holdings and the valuation series, and returns the result.
	ComputeAutomatic(ctx context.Context, id string) (*models.AutomaticResult, error)

	// OpenAutomatic returns a previously computed automatic result.
	OpenAutomatic(ctx context.Context, id string) (*models.AutomaticResult, error)

	// CreateManual creates a manual simulation starting at the given month
	// with zero cash.
	CreateManual(ctx context.Context, name string, start time.Time, baseCurrency string) (*models.Simulation, error)

	// AdvanceMonth moves a manual simulation forward one month: refreshes
	// price history, accrues dividends, revalues holdings.
	AdvanceMonth(ctx context.Context, id string) (*models.Simulation, error)

	// Trade executes a validated buy or sell against a manual simulation.
	Trade(ctx context.Context, id string, side models.TradeSide, ticker string, amount, convertedPrice float64) (*models.TradeResult, error)

	// AdjustCash deposits (positive) or withdraws (negative) cash,
	// optionally deflating the nominal amount to the simulation's current
	// month. The balance clamps at zero.
	AdjustCash(ctx context.Context, id string, amount float64, adjustInflation bool) (float64, error)

	// Report produces the point-in-time valuation snapshot of a manual
	// simulation.
	Report(ctx context.Context, id string) (*models.ValuationReport, error)

	// Quote builds the trading view for one ticker within a manual
	// simulation.
	Quote(ctx context.Context, id, ticker string) (*models.QuoteView, error)

	// CheckTicker reports whether a ticker was listed on or before the
	// manual simulation's current month.
	CheckTicker(ctx context.Context, id, ticker string) (*models.TickerCheck, error)

	// SearchTicker reports whether a ticker exists at the provider at all.
	SearchTicker(ctx context.Context, ticker string) (*models.TickerCheck, error)

	// History lists all stored simulations.
	History(ctx context.Context) ([]models.SimulationSummary, error)

	// Delete removes a simulation and, cascading, its portfolio and assets.
	Delete(ctx context.Context, id string) error

	// RenderChart renders the simulation's valuation history as a PNG.
	RenderChart(ctx context.Context, id string) ([]byte, error)
}
