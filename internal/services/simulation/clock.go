package simulation

import (
	"context"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// AdvanceMonth moves a manual simulation's clock forward one month.
// For every asset it fetches the elapsed month's daily prices, credits
// dividends into cash, and refreshes the base-currency valuation price.
// A fetch failure for one asset never blocks the others or the clock:
// the asset simply keeps its previous data for this step.
func (s *Service) AdvanceMonth(ctx context.Context, id string) (*models.Simulation, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getManual(ctx, id)
	if err != nil {
		return nil, err
	}

	current := sim.CurrentMonth
	next := current.AddDate(0, 1, 0)
	conv := NewConverter(s.market, s.logger)
	base := sim.Portfolio.BaseCurrency

	for _, asset := range sim.Portfolio.Assets {
		points, err := s.market.GetHistory(ctx, asset.Ticker, current, next, "1d")
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", asset.Ticker).Msg("Price refresh failed, keeping previous data for this month")
		} else if len(points) > 0 {
			asset.Prices.Extend(points)
			if asset.ListingDate == nil {
				listing := models.DateOnly(points[0].Date)
				asset.ListingDate = &listing
			}
		}

		if asset.Holdings > 0 {
			s.accrueDividends(ctx, sim, conv, asset, current, next)
		}

		// Valuation price: last close on or before the new month, converted.
		if native, ok := asset.Prices.CloseOnOrBefore(next); ok {
			rate := conv.Rate(ctx, asset.Currency, base, current, next)
			asset.LastConvertedPrice = common.FloorRound(native * rate)
		}
	}

	assetValue := 0.0
	for _, asset := range sim.Portfolio.Assets {
		if asset.Holdings > 0 && asset.LastConvertedPrice > 0 {
			assetValue += common.FloorRound(asset.Holdings * asset.LastConvertedPrice)
		}
	}
	recordValuation(sim, current, common.FloorRound(assetValue+sim.Portfolio.Cash))
	sim.CurrentMonth = next

	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().Str("simulation_id", id).Time("current_month", next).Msg("Manual simulation advanced")
	return sim, nil
}

// accrueDividends credits the month's per-unit dividends times holdings
// into cash, converted to the base currency. Failures are logged and the
// month's dividends are skipped for that asset.
func (s *Service) accrueDividends(ctx context.Context, sim *models.Simulation, conv *Converter, asset *models.Asset, start, end time.Time) {
	dividends, err := s.market.GetDividends(ctx, asset.Ticker, start, end)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", asset.Ticker).Msg("Dividend fetch failed, skipping accrual for this month")
		return
	}
	perUnit := 0.0
	for _, d := range dividends {
		perUnit += d.Amount
	}
	if perUnit <= 0 {
		return
	}
	rate := conv.Rate(ctx, asset.Currency, sim.Portfolio.BaseCurrency, start, end)
	credited := common.FloorRound(perUnit * asset.Holdings * rate)
	sim.Portfolio.Cash = common.FloorRound(sim.Portfolio.Cash + credited)
	s.logger.Info().Str("ticker", asset.Ticker).Float64("credited", credited).Msg("Dividends credited")
}

// recordValuation appends a history entry for the month being closed, or
// replaces a provisional entry a valuation report already wrote for it.
func recordValuation(sim *models.Simulation, month time.Time, value float64) {
	for i := range sim.ValuationHistory {
		if sim.ValuationHistory[i].Date.Equal(month) {
			sim.ValuationHistory[i].Value = value
			return
		}
	}
	sim.ValuationHistory = append(sim.ValuationHistory, models.ValuationPoint{Date: month, Value: value})
}
