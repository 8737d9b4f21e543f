package simulation

import (
	"context"
	"strings"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// Trade executes a buy or sell against a manual simulation. Amounts are
// base-currency notionals; convertedPrice is the base-currency unit price
// the caller traded at (a quote's converted price), defaulting to 1.0
// when zero. Validation happens before any mutation, so a failed trade
// leaves the simulation untouched.
func (s *Service) Trade(ctx context.Context, id string, side models.TradeSide, ticker string, amount, convertedPrice float64) (*models.TradeResult, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getManual(ctx, id)
	if err != nil {
		return nil, err
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, models.NewFault(models.FaultInvalidInput, "ticker is required")
	}
	if amount <= 0 {
		return nil, models.NewFault(models.FaultInvalidInput, "amount must be positive")
	}
	if convertedPrice < 0 {
		return nil, models.NewFault(models.FaultInvalidInput, "price cannot be negative")
	}
	if convertedPrice == 0 {
		convertedPrice = 1.0
	}

	var asset *models.Asset
	switch side {
	case models.TradeBuy:
		asset, err = s.buy(ctx, sim, ticker, amount, convertedPrice)
	case models.TradeSell:
		asset, err = s.sell(sim, ticker, amount, convertedPrice)
	default:
		return nil, models.NewFault(models.FaultInvalidInput, "unknown trade side %q", side)
	}
	if err != nil {
		return nil, err
	}

	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("simulation_id", id).
		Str("side", string(side)).
		Str("ticker", ticker).
		Float64("amount", amount).
		Float64("holdings", asset.Holdings).
		Msg("Trade executed")
	return &models.TradeResult{Ticker: ticker, Cash: sim.Portfolio.Cash, Holdings: asset.Holdings}, nil
}

// buy debits the floor-rounded notional from cash and credits
// amount/price units. An asset not yet in the portfolio is created from
// a year of provider history first.
func (s *Service) buy(ctx context.Context, sim *models.Simulation, ticker string, amount, price float64) (*models.Asset, error) {
	cost := common.FloorRound(amount)
	if cost > sim.Portfolio.Cash {
		return nil, &models.Fault{
			Kind:      models.FaultInsufficientFunds,
			Message:   "insufficient cash for buy",
			Available: sim.Portfolio.Cash,
			Requested: cost,
		}
	}

	asset := sim.Asset(ticker)
	if asset == nil {
		created, err := s.introduceAsset(ctx, sim, ticker)
		if err != nil {
			return nil, err
		}
		asset = created
		sim.Portfolio.Assets = append(sim.Portfolio.Assets, asset)
	}

	asset.Holdings += amount / price
	asset.LastConvertedPrice = price
	balance := sim.Portfolio.Cash - cost
	if balance < 0 {
		balance = 0
	}
	sim.Portfolio.Cash = common.FloorRound(balance)
	return asset, nil
}

// sell credits the full notional back to cash, without flooring, so a
// round-trip at a constant price is lossless on the cash side.
func (s *Service) sell(sim *models.Simulation, ticker string, amount, price float64) (*models.Asset, error) {
	asset := sim.Asset(ticker)
	if asset == nil {
		return nil, models.NewFault(models.FaultNotFound, "asset %s not held", ticker)
	}
	quantity := amount / price
	if quantity > asset.Holdings {
		return nil, &models.Fault{
			Kind:      models.FaultInsufficientHoldings,
			Message:   "insufficient holdings for sell",
			Available: asset.Holdings,
			Requested: quantity,
		}
	}
	asset.Holdings -= quantity
	asset.LastConvertedPrice = price
	sim.Portfolio.Cash += amount
	return asset, nil
}

// introduceAsset creates a portfolio asset for a first-time buy, seeded
// with the trailing year of daily history up to the simulation's clock.
func (s *Service) introduceAsset(ctx context.Context, sim *models.Simulation, ticker string) (*models.Asset, error) {
	start := sim.CurrentMonth.AddDate(-1, 0, 0)
	end := sim.CurrentMonth.AddDate(0, 0, 1)
	points, err := s.market.GetHistory(ctx, ticker, start, end, "1d")
	if err != nil {
		return nil, models.WrapFault(models.FaultUpstreamTransport, err, "price history fetch failed for %s", ticker)
	}
	if len(points) == 0 {
		return nil, models.NewFault(models.FaultUpstreamUnavailable, "no market data for %s", ticker)
	}

	asset := &models.Asset{Ticker: ticker, Currency: sim.Portfolio.BaseCurrency}
	asset.Prices.Extend(points)
	listing := models.DateOnly(points[0].Date)
	asset.ListingDate = &listing

	if info, err := s.market.GetInfo(ctx, ticker); err == nil {
		asset.Name = info.LongName
		if info.Currency != "" {
			asset.Currency = info.Currency
		}
	} else {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Ticker info unavailable, assuming base currency")
	}
	return asset, nil
}
