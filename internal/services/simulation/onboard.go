package simulation

import (
	"context"
	"strings"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// PopulateAutomatic onboards tickers and target weights into an automatic
// simulation. Each asset's monthly close history over the simulation range
// is fetched, forward-filled into a month-aligned list, converted to the
// portfolio base currency and floor-rounded, so the projection never has
// to call the provider again.
func (s *Service) PopulateAutomatic(ctx context.Context, id string, assets []models.AssetWeight) (*models.Simulation, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getKind(ctx, id, models.SimulationAutomatic)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, models.NewFault(models.FaultInvalidInput, "at least one asset is required")
	}
	weights := make(map[string]float64, len(assets))
	for _, aw := range assets {
		ticker := strings.ToUpper(strings.TrimSpace(aw.Ticker))
		if ticker == "" {
			return nil, models.NewFault(models.FaultInvalidInput, "asset ticker is required")
		}
		if aw.Weight < 0 || aw.Weight > 1 {
			return nil, models.NewFault(models.FaultInvalidInput, "asset weight must be between 0 and 1")
		}
		weights[ticker] = aw.Weight
	}
	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	for _, existing := range sim.Portfolio.Assets {
		if _, replaced := weights[existing.Ticker]; !replaced {
			totalWeight += existing.Weight
		}
	}
	if totalWeight > 1+1e-9 {
		return nil, models.NewFault(models.FaultInvalidInput, "asset weights must not sum to more than 1")
	}

	conv := NewConverter(s.market, s.logger)
	// One month past the end date so the final month's close is included.
	fetchEnd := sim.EndDate.AddDate(0, 1, 0)

	for _, aw := range assets {
		ticker := strings.ToUpper(strings.TrimSpace(aw.Ticker))
		asset, err := s.onboardAsset(ctx, sim, conv, ticker, aw.Weight, fetchEnd)
		if err != nil {
			return nil, err
		}
		upsertAsset(&sim.Portfolio, asset)
	}

	if skipped := conv.Skipped(); len(skipped) > 0 {
		s.logger.Warn().Str("simulation_id", id).Strs("skipped", skipped).Msg("Some conversions fell back to 1.0 during onboarding")
	}
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().Str("simulation_id", id).Int("assets", len(assets)).Msg("Automatic portfolio populated")
	return sim, nil
}

func (s *Service) onboardAsset(ctx context.Context, sim *models.Simulation, conv *Converter, ticker string, weight float64, fetchEnd time.Time) (*models.Asset, error) {
	info, err := s.market.GetInfo(ctx, ticker)
	if err != nil {
		return nil, models.WrapFault(models.FaultUpstreamTransport, err, "ticker info fetch failed for %s", ticker)
	}
	currency := info.Currency
	if currency == "" {
		currency = sim.Portfolio.BaseCurrency
	}

	points, err := s.market.GetHistory(ctx, ticker, sim.StartDate, fetchEnd, "1mo")
	if err != nil {
		return nil, models.WrapFault(models.FaultUpstreamTransport, err, "price history fetch failed for %s", ticker)
	}

	asset := &models.Asset{
		Ticker:   ticker,
		Name:     info.LongName,
		Currency: currency,
		Weight:   weight,
	}
	if len(points) == 0 {
		// Not listed within the range. The projection skips it entirely.
		s.logger.Warn().Str("ticker", ticker).Msg("No price data in simulation range, asset will not be traded")
		return asset, nil
	}

	asset.Prices.Extend(points)
	listing := models.DateOnly(points[0].Date)
	asset.ListingDate = &listing

	base := sim.Portfolio.BaseCurrency
	conv.Load(ctx, currency, base, sim.StartDate, fetchEnd, "1mo")
	asset.MonthlyCloses = monthlyCloses(&asset.Prices, conv, currency, base, listing, sim.EndDate)
	if n := len(asset.MonthlyCloses); n > 0 {
		asset.LastConvertedPrice = asset.MonthlyCloses[n-1]
	}
	return asset, nil
}

// monthlyCloses builds the month-aligned close list from listing through
// endDate: entry i is the base-currency close i months after listing.
// Months with no data carry the previous close forward; months before any
// data exists are zero.
func monthlyCloses(prices *models.PriceSeries, conv *Converter, currency, base string, listing, endDate time.Time) []float64 {
	total := models.MonthsBetween(listing, endDate) + 1
	if total < 1 {
		return nil
	}
	closes := make([]float64, 0, total)
	prev := 0.0
	for i := 0; i < total; i++ {
		month := listing.AddDate(0, i, 0)
		monthEnd := models.MonthStart(month).AddDate(0, 1, -1)
		native := prev
		if _, last, ok := prices.CloseBetween(models.MonthStart(month), monthEnd); ok {
			native = last
		}
		prev = native
		rate := conv.RateOn(currency, base, monthEnd)
		closes = append(closes, common.FloorRound(native*rate))
	}
	return closes
}

func upsertAsset(portfolio *models.Portfolio, asset *models.Asset) {
	for i, existing := range portfolio.Assets {
		if existing.Ticker == asset.Ticker {
			portfolio.Assets[i] = asset
			return
		}
	}
	portfolio.Assets = append(portfolio.Assets, asset)
}
