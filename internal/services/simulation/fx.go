package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/models"
)

// Converter resolves currency conversion rates from provider FX pair
// series. It caches fetched series per pair for the lifetime of one
// engine run, and it never fails: when no conversion data can be found
// for a window the rate degrades to 1.0 and the skip is recorded.
type Converter struct {
	market  interfaces.MarketDataClient
	logger  *common.Logger
	series  map[string]*models.PriceSeries
	fetched map[string]bool
	skipped []string
}

func NewConverter(market interfaces.MarketDataClient, logger *common.Logger) *Converter {
	return &Converter{
		market:  market,
		logger:  logger,
		series:  make(map[string]*models.PriceSeries),
		fetched: make(map[string]bool),
	}
}

// PairTicker builds the provider symbol for a currency pair, e.g.
// USD/BRL becomes "USDBRL=X".
func PairTicker(from, to string) string {
	return from + to + "=X"
}

// Load primes the cache with the pair series covering [start, endExclusive).
// Used by onboarding to fetch one monthly series per pair up front before
// converting every month of a multi-year range.
func (c *Converter) Load(ctx context.Context, from, to string, start, endExclusive time.Time, interval string) {
	if from == to {
		return
	}
	c.ensure(ctx, from, to, start, endExclusive, interval)
}

// RateOn returns the conversion rate effective on date, using the most
// recent cached close on or before it. The cache must have been primed
// with Load for a window covering date.
func (c *Converter) RateOn(from, to string, date time.Time) float64 {
	if from == to {
		return 1.0
	}
	pair := PairTicker(from, to)
	if series, ok := c.series[pair]; ok {
		if close, ok := series.CloseOnOrBefore(date); ok {
			return close
		}
	}
	c.skip(pair, date)
	return 1.0
}

// Rate fetches the pair series for [start, endExclusive) and returns the
// last close inside the window.
func (c *Converter) Rate(ctx context.Context, from, to string, start, endExclusive time.Time) float64 {
	if from == to {
		return 1.0
	}
	pair := c.ensure(ctx, from, to, start, endExclusive, "1d")
	if series, ok := c.series[pair]; ok {
		if _, last, ok := series.CloseBetween(start, endExclusive.AddDate(0, 0, -1)); ok {
			return last
		}
	}
	c.skip(pair, start)
	return 1.0
}

// Skipped lists the pair/date combinations that fell back to 1.0 during
// this run, formatted as "PAIR@YYYY-MM".
func (c *Converter) Skipped() []string {
	return c.skipped
}

func (c *Converter) ensure(ctx context.Context, from, to string, start, endExclusive time.Time, interval string) string {
	pair := PairTicker(from, to)
	window := fmt.Sprintf("%s|%s|%s", pair, start.Format("2006-01-02"), endExclusive.Format("2006-01-02"))
	if c.fetched[window] {
		return pair
	}
	c.fetched[window] = true

	points, err := c.market.GetHistory(ctx, pair, start, endExclusive, interval)
	if err != nil {
		c.logger.Warn().Err(err).Str("pair", pair).Msg("FX history fetch failed, conversions in window fall back to 1.0")
		return pair
	}
	series, ok := c.series[pair]
	if !ok {
		series = &models.PriceSeries{}
		c.series[pair] = series
	}
	series.Extend(points)
	return pair
}

func (c *Converter) skip(pair string, date time.Time) {
	entry := fmt.Sprintf("%s@%s", pair, date.Format("2006-01"))
	c.skipped = append(c.skipped, entry)
	c.logger.Warn().Str("pair", pair).Str("month", date.Format("2006-01")).Msg("no conversion data, using rate 1.0")
}
