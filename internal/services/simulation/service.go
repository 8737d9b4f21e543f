package simulation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/models"
)

// Service implements the portfolio simulation engine: automatic DCA
// projections and manual month-stepped simulations. All monetary state
// lives in the simulation document; mutating operations serialize per
// simulation ID so concurrent requests cannot interleave partial state.
type Service struct {
	storage   interfaces.StorageManager
	market    interfaces.MarketDataClient
	inflation interfaces.InflationClient
	logger    *common.Logger
	baseCur   string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ interfaces.SimulationService = (*Service)(nil)

func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, inflation interfaces.InflationClient, baseCurrency string, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		market:    market,
		inflation: inflation,
		logger:    logger,
		baseCur:   baseCurrency,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-simulation mutex and returns its release func.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
}

// CreateAutomatic registers a new automatic simulation. The inflation
// series covering the full date range is fetched once at creation and
// stored on the document; every later deflation reads from that copy.
func (s *Service) CreateAutomatic(ctx context.Context, name string, start, end time.Time, initial, monthly float64, baseCurrency string) (*models.Simulation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewFault(models.FaultInvalidInput, "simulation name is required")
	}
	if end.Before(start) {
		return nil, models.NewFault(models.FaultInvalidInput, "end date precedes start date")
	}
	if initial < 0 || monthly < 0 {
		return nil, models.NewFault(models.FaultInvalidInput, "contributions cannot be negative")
	}

	series, err := s.fetchInflation(ctx, start)
	if err != nil {
		return nil, err
	}

	sim := &models.Simulation{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(name),
		Kind:                models.SimulationAutomatic,
		StartDate:           models.DateOnly(start),
		EndDate:             models.DateOnly(end),
		InitialContribution: common.FloorRound(initial),
		MonthlyContribution: common.FloorRound(monthly),
		InflationSeries:     series,
		Portfolio: models.Portfolio{
			BaseCurrency: s.resolveCurrency(baseCurrency),
			Cash:         common.FloorRound(initial),
		},
	}
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().Str("simulation_id", sim.ID).Str("name", sim.Name).Msg("Automatic simulation created")
	return sim, nil
}

// CreateManual registers a new manual simulation with its clock parked
// at the start date and an empty portfolio.
func (s *Service) CreateManual(ctx context.Context, name string, start time.Time, baseCurrency string) (*models.Simulation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, models.NewFault(models.FaultInvalidInput, "simulation name is required")
	}

	series, err := s.fetchInflation(ctx, start)
	if err != nil {
		return nil, err
	}

	sim := &models.Simulation{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(name),
		Kind:            models.SimulationManual,
		StartDate:       models.DateOnly(start),
		CurrentMonth:    models.DateOnly(start),
		InflationSeries: series,
		Portfolio: models.Portfolio{
			BaseCurrency: s.resolveCurrency(baseCurrency),
		},
	}
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return nil, err
	}
	s.logger.Info().Str("simulation_id", sim.ID).Str("name", sim.Name).Msg("Manual simulation created")
	return sim, nil
}

// AdjustCash deposits into or withdraws from a manual simulation's cash
// balance. With adjustInflation set the amount is deflated from today's
// purchasing power to the simulation's current month before applying.
// The balance never goes below zero. Returns the new balance.
func (s *Service) AdjustCash(ctx context.Context, id string, amount float64, adjustInflation bool) (float64, error) {
	unlock := s.lock(id)
	defer unlock()

	sim, err := s.getManual(ctx, id)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return sim.Portfolio.Cash, models.NewFault(models.FaultInvalidInput, "amount cannot be zero")
	}

	applied := amount
	if adjustInflation {
		end := sim.CurrentMonth
		if n := len(sim.InflationSeries); n > 0 && sim.InflationSeries[n-1].Date.After(end) {
			end = sim.InflationSeries[n-1].Date
		}
		adjusted, err := AdjustInflation(sim.InflationSeries, sim.CurrentMonth, amount, end)
		if err != nil {
			return sim.Portfolio.Cash, err
		}
		applied = common.FloorRound(adjusted)
	}

	balance := sim.Portfolio.Cash + applied
	if balance < 0 {
		balance = 0
	}
	sim.Portfolio.Cash = common.FloorRound(balance)
	if err := s.storage.Simulations().Save(ctx, sim); err != nil {
		return 0, err
	}
	s.logger.Info().Str("simulation_id", id).Float64("applied", applied).Float64("balance", sim.Portfolio.Cash).Msg("Cash balance adjusted")
	return sim.Portfolio.Cash, nil
}

// OpenAutomatic returns the stored state of an automatic simulation as
// a result view, without recomputing the projection.
func (s *Service) OpenAutomatic(ctx context.Context, id string) (*models.AutomaticResult, error) {
	sim, err := s.getKind(ctx, id, models.SimulationAutomatic)
	if err != nil {
		return nil, err
	}
	return buildAutomaticResult(sim), nil
}

// History lists every stored simulation as a summary, newest first.
func (s *Service) History(ctx context.Context) ([]models.SimulationSummary, error) {
	sims, err := s.storage.Simulations().List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.SimulationSummary, 0, len(sims))
	for _, sim := range sims {
		summaries = append(summaries, summarize(sim))
	}
	return summaries, nil
}

// Delete removes a simulation and its lock entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.storage.Simulations().Delete(ctx, id); err != nil {
		return err
	}
	s.forget(id)
	s.logger.Info().Str("simulation_id", id).Msg("Simulation deleted")
	return nil
}

func (s *Service) fetchInflation(ctx context.Context, start time.Time) ([]models.IndexPoint, error) {
	series, err := s.inflation.GetIndex(ctx, start, time.Now())
	if err != nil {
		return nil, models.WrapFault(models.FaultUpstreamTransport, err, "inflation index fetch failed")
	}
	if len(series) == 0 {
		return nil, models.NewFault(models.FaultUpstreamUnavailable, "no inflation data published for the requested range")
	}
	return series, nil
}

func (s *Service) resolveCurrency(requested string) string {
	requested = strings.ToUpper(strings.TrimSpace(requested))
	if len(requested) == 3 {
		return requested
	}
	return s.baseCur
}

func (s *Service) get(ctx context.Context, id string) (*models.Simulation, error) {
	return s.storage.Simulations().Get(ctx, id)
}

func (s *Service) getKind(ctx context.Context, id string, kind models.SimulationKind) (*models.Simulation, error) {
	sim, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sim.Kind != kind {
		return nil, models.NewFault(models.FaultInvalidInput, "operation not supported for %s simulations", sim.Kind)
	}
	return sim, nil
}

func (s *Service) getManual(ctx context.Context, id string) (*models.Simulation, error) {
	return s.getKind(ctx, id, models.SimulationManual)
}

func summarize(sim *models.Simulation) models.SimulationSummary {
	summary := models.SimulationSummary{
		ID:        sim.ID,
		Name:      sim.Name,
		Kind:      sim.Kind,
		StartDate: sim.StartDate,
		CreatedAt: sim.CreatedAt,
	}
	switch sim.Kind {
	case models.SimulationAutomatic:
		summary.EndDate = sim.EndDate
		summary.InitialContribution = sim.InitialContribution
		summary.MonthlyContribution = sim.MonthlyContribution
		if n := len(sim.ValuationHistory); n > 0 {
			summary.TotalValue = sim.ValuationHistory[n-1].Value
		}
	case models.SimulationManual:
		summary.CurrentMonth = sim.CurrentMonth
		total := sim.Portfolio.Cash
		for _, asset := range sim.Portfolio.Assets {
			if asset.Holdings > 0 && asset.LastConvertedPrice > 0 {
				total += common.FloorRound(asset.Holdings * asset.LastConvertedPrice)
			}
		}
		summary.TotalValue = common.FloorRound(total)
	}
	return summary
}
