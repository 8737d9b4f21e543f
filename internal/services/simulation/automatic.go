package simulation

import (
	"context"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/models"
)

// ComputeAutomatic runs the dollar-cost-average projection over the
// simulation's date range. Contributions are deflated to end-of-range
// purchasing power, each index month buys into every listed asset
// proportionally to its weight, and the resulting valuation series is
// persisted on the simulation. Re-running replaces prior results.
func (s *Service) ComputeAutomatic(ctx context.Context, id string) (*models.AutomaticResult, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getKind(ctx, id, models.SimulationAutomatic)
	if err != nil {
		return nil, err
	}
	if sim.EndDate.Before(sim.StartDate) {
		return nil, models.NewFault(models.FaultInvalidInput, "end date precedes start date")
	}
	if len(sim.InflationSeries) == 0 {
		return nil, models.NewFault(models.FaultUpstreamUnavailable, "simulation has no inflation series")
	}

	months := monthsIn(sim.InflationSeries, sim.StartDate, sim.EndDate)
	if len(months) == 0 {
		return nil, models.NewFault(models.FaultUpstreamUnavailable, "no inflation data in range")
	}

	initial, err := AdjustInflation(sim.InflationSeries, sim.StartDate, sim.InitialContribution, sim.EndDate)
	if err != nil {
		return nil, err
	}
	cash := common.FloorRound(initial)

	// Re-runs start from a clean slate.
	for _, asset := range sim.Portfolio.Assets {
		asset.Holdings = 0
	}
	history := make([]models.ValuationPoint, 0, len(months))

	for _, month := range months {
		contribution, err := AdjustInflation(sim.InflationSeries, month, sim.MonthlyContribution, sim.EndDate)
		if err != nil {
			contribution = 0
		}
		cash += common.FloorRound(contribution)

		// Each asset's buy is sized off the cash available at the top of
		// the month, so ordering between assets does not matter.
		monthOpen := cash
		assetValue := 0.0
		for _, asset := range sim.Portfolio.Assets {
			price, ok := monthlyClose(asset, month)
			if !ok {
				continue
			}
			if price > 0 {
				invested := monthOpen * asset.Weight
				asset.Holdings += invested / price
				cash -= invested
			}
			assetValue += common.FloorRound(asset.Holdings * price)
		}
		// Overweight portfolios can spend more than the month opened with.
		// Cash never goes negative: the overdraft is absorbed here.
		cash = common.FloorRound(cash)
		if cash < 0 {
			cash = 0
		}
		history = append(history, models.ValuationPoint{Date: month, Value: common.FloorRound(assetValue + cash)})
	}

	sim.Portfolio.Cash = cash
	sim.ValuationHistory = history
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().Str("simulation_id", id).Int("months", len(months)).Float64("final_value", history[len(history)-1].Value).Msg("Automatic projection computed")
	return buildAutomaticResult(sim), nil
}

// monthlyClose looks up an asset's pre-converted close for the given
// month. Returns false when the asset was not yet listed or the month
// falls outside the pre-loaded list.
func monthlyClose(asset *models.Asset, month time.Time) (float64, bool) {
	if asset.ListingDate == nil || month.Before(*asset.ListingDate) {
		return 0, false
	}
	offset := models.MonthsBetween(*asset.ListingDate, month)
	if offset < 0 || offset >= len(asset.MonthlyCloses) {
		return 0, false
	}
	return asset.MonthlyCloses[offset], true
}

func buildAutomaticResult(sim *models.Simulation) *models.AutomaticResult {
	result := &models.AutomaticResult{
		SimulationID:        sim.ID,
		Name:                sim.Name,
		StartDate:           sim.StartDate,
		EndDate:             sim.EndDate,
		InitialContribution: sim.InitialContribution,
		MonthlyContribution: sim.MonthlyContribution,
		Series:              sim.ValuationHistory,
	}
	for _, asset := range sim.Portfolio.Assets {
		result.Assets = append(result.Assets, models.AssetPosition{
			Ticker:   asset.Ticker,
			Name:     asset.Name,
			Weight:   asset.Weight,
			Holdings: asset.Holdings,
		})
	}
	return result
}
