// Package interfaces defines service contracts for Simvest
package interfaces

import (
	"context"
	"time"

	"github.com/mbarros/simvest/internal/models"
)

// MarketDataClient retrieves historical prices, dividends, and descriptive
// data for a ticker. An empty result means no data for the range, not an
// error; errors indicate transport or provider failure.
type MarketDataClient interface {
	// GetHistory returns OHLC points for [start, endExclusive) at the given
	// interval ("1d" or "1mo"), in ascending date order.
	GetHistory(ctx context.Context, ticker string, start, endExclusive time.Time, interval string) ([]models.PricePoint, error)

	// GetDividends returns dividend events within [start, endExclusive).
	GetDividends(ctx context.Context, ticker string, start, endExclusive time.Time) ([]models.Dividend, error)

	// GetInfo returns currency and long name for a ticker.
	GetInfo(ctx context.Context, ticker string) (*models.TickerInfo, error)
}

// InflationClient retrieves a monthly price-index series.
type InflationClient interface {
	// GetIndex returns index points for [start, end] inclusive, ascending.
	// Values are percentage points per period.
	GetIndex(ctx context.Context, start, end time.Time) ([]models.IndexPoint, error)
}
