package simulation

import (
	"context"
	"strings"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// Report builds the point-in-time valuation snapshot of a manual
// simulation and writes a provisional history entry for the current
// month. The entry is replaced with the definitive close when the month
// is advanced, so calling Report repeatedly is idempotent.
func (s *Service) Report(ctx context.Context, id string) (*models.ValuationReport, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getManual(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &models.ValuationReport{
		SimulationID: sim.ID,
		Name:         sim.Name,
		CurrentMonth: sim.CurrentMonth,
		Cash:         sim.Portfolio.Cash,
	}

	assetValue := 0.0
	for _, asset := range sim.Portfolio.Assets {
		if asset.Holdings <= 0 {
			continue
		}
		price := asset.LastConvertedPrice
		if price <= 0 {
			if close, ok := asset.Prices.CloseOnOrBefore(sim.CurrentMonth); ok {
				price = close
			}
		}
		value := common.FloorRound(asset.Holdings * price)
		assetValue += value
		report.Allocations = append(report.Allocations, models.AssetAllocation{
			Ticker:   asset.Ticker,
			Name:     asset.Name,
			Holdings: asset.Holdings,
			Value:    value,
		})
	}
	for i := range report.Allocations {
		if assetValue > 0 {
			report.Allocations[i].Percentage = common.Round2(report.Allocations[i].Value / assetValue * 100)
		}
	}
	report.TotalValue = common.FloorRound(assetValue + sim.Portfolio.Cash)

	recordValuation(sim, sim.CurrentMonth, report.TotalValue)
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	report.ValueHistory = sim.ValuationHistory
	return report, nil
}

// Quote builds the trading view for a ticker inside a manual simulation:
// a trailing year of price history relative to the simulation clock, the
// latest native close, and its base-currency conversion.
func (s *Service) Quote(ctx context.Context, id, ticker string) (*models.QuoteView, error) {
	sim, err := s.getManual(ctx, id)
	if err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, models.NewFault(models.FaultInvalidInput, "ticker is required")
	}

	windowStart := sim.CurrentMonth.AddDate(-1, 0, 0)
	windowEnd := sim.CurrentMonth

	view := &models.QuoteView{
		Ticker:         ticker,
		SimulationName: sim.Name,
		Cash:           sim.Portfolio.Cash,
		BaseCurrency:   sim.Portfolio.BaseCurrency,
		AssetCurrency:  sim.Portfolio.BaseCurrency,
	}

	var history []models.PricePoint
	var lastClose float64
	if asset := sim.Asset(ticker); asset != nil && asset.Prices.Len() > 0 {
		history = asset.Prices.Between(windowStart, windowEnd)
		if last, ok := asset.Prices.Last(); ok {
			lastClose = last.Close
		}
		view.Holdings = asset.Holdings
		if asset.Currency != "" {
			view.AssetCurrency = asset.Currency
		}
	} else {
		points, err := s.market.GetHistory(ctx, ticker, windowStart, windowEnd.AddDate(0, 0, 1), "1d")
		if err != nil {
			return nil, models.WrapFault(models.FaultUpstreamTransport, err, "price history fetch failed for %s", ticker)
		}
		if len(points) == 0 {
			return nil, models.NewFault(models.FaultUpstreamUnavailable, "no market data for %s", ticker)
		}
		history = points
		lastClose = points[len(points)-1].Close
		if info, err := s.market.GetInfo(ctx, ticker); err == nil && info.Currency != "" {
			view.AssetCurrency = info.Currency
		}
	}

	view.History = history
	view.LastPrice = lastClose

	conv := NewConverter(s.market, s.logger)
	rate := conv.Rate(ctx, view.AssetCurrency, view.BaseCurrency, windowStart, windowEnd.AddDate(0, 0, 1))
	view.ConvertedPrice = common.FloorRound(lastClose * rate)
	if view.Holdings > 0 {
		view.HoldingsValue = common.FloorRound(view.Holdings * view.ConvertedPrice)
	}
	return view, nil
}

// CheckTicker reports whether a ticker was already listed on or before
// the manual simulation's current month.
func (s *Service) CheckTicker(ctx context.Context, id, ticker string) (*models.TickerCheck, error) {
	sim, err := s.getManual(ctx, id)
	if err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	check := &models.TickerCheck{Ticker: ticker}
	points, err := s.market.GetHistory(ctx, ticker, time.Unix(0, 0), sim.CurrentMonth.AddDate(0, 0, 1), "1mo")
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Listing check fetch failed")
		return check, nil
	}
	if len(points) == 0 {
		return check, nil
	}
	listing := models.DateOnly(points[0].Date)
	check.ListingDate = &listing
	check.Exists = !listing.After(sim.CurrentMonth)
	if info, err := s.market.GetInfo(ctx, ticker); err == nil {
		check.Name = info.LongName
	}
	return check, nil
}

// SearchTicker reports whether a ticker exists at the provider at all,
// independent of any simulation.
func (s *Service) SearchTicker(ctx context.Context, ticker string) (*models.TickerCheck, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, models.NewFault(models.FaultInvalidInput, "ticker is required")
	}

	check := &models.TickerCheck{Ticker: ticker}
	now := time.Now()
	points, err := s.market.GetHistory(ctx, ticker, now.AddDate(0, -1, 0), now, "1d")
	if err != nil || len(points) == 0 {
		return check, nil
	}
	check.Exists = true
	if info, err := s.market.GetInfo(ctx, ticker); err == nil {
		check.Name = info.LongName
	}
	return check, nil
}
