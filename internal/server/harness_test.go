package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/mbarros/simvest/internal/app"
	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/models"
)

// stubService satisfies interfaces.SimulationService with per-call hooks;
// unset hooks report not found.
type stubService struct {
	createAutomatic   func(name string, start, end time.Time, initial, monthly float64, base string) (*models.Simulation, error)
	populateAutomatic func(id string, assets []models.AssetWeight) (*models.Simulation, error)
	computeAutomatic  func(id string) (*models.AutomaticResult, error)
	openAutomatic     func(id string) (*models.AutomaticResult, error)
	createManual      func(name string, start time.Time, base string) (*models.Simulation, error)
	advanceMonth      func(id string) (*models.Simulation, error)
	trade             func(id string, side models.TradeSide, ticker string, amount, price float64) (*models.TradeResult, error)
	adjustCash        func(id string, amount float64, adjust bool) (float64, error)
	report            func(id string) (*models.ValuationReport, error)
	quote             func(id, ticker string) (*models.QuoteView, error)
	checkTicker       func(id, ticker string) (*models.TickerCheck, error)
	searchTicker      func(ticker string) (*models.TickerCheck, error)
	history           func() ([]models.SimulationSummary, error)
	deleteSim         func(id string) error
	renderChart       func(id string) ([]byte, error)
}

func notFound() error {
	return models.NewFault(models.FaultNotFound, "simulation not found")
}

func (s *stubService) CreateAutomatic(_ context.Context, name string, start, end time.Time, initial, monthly float64, base string) (*models.Simulation, error) {
	if s.createAutomatic == nil {
		return nil, notFound()
	}
	return s.createAutomatic(name, start, end, initial, monthly, base)
}

func (s *stubService) PopulateAutomatic(_ context.Context, id string, assets []models.AssetWeight) (*models.Simulation, error) {
	if s.populateAutomatic == nil {
		return nil, notFound()
	}
	return s.populateAutomatic(id, assets)
}

func (s *stubService) ComputeAutomatic(_ context.Context, id string) (*models.AutomaticResult, error) {
	if s.computeAutomatic == nil {
		return nil, notFound()
	}
	return s.computeAutomatic(id)
}

func (s *stubService) OpenAutomatic(_ context.Context, id string) (*models.AutomaticResult, error) {
	if s.openAutomatic == nil {
		return nil, notFound()
	}
	return s.openAutomatic(id)
}

func (s *stubService) CreateManual(_ context.Context, name string, start time.Time, base string) (*models.Simulation, error) {
	if s.createManual == nil {
		return nil, notFound()
	}
	return s.createManual(name, start, base)
}

func (s *stubService) AdvanceMonth(_ context.Context, id string) (*models.Simulation, error) {
	if s.advanceMonth == nil {
		return nil, notFound()
	}
	return s.advanceMonth(id)
}

func (s *stubService) Trade(_ context.Context, id string, side models.TradeSide, ticker string, amount, price float64) (*models.TradeResult, error) {
	if s.trade == nil {
		return nil, notFound()
	}
	return s.trade(id, side, ticker, amount, price)
}

func (s *stubService) AdjustCash(_ context.Context, id string, amount float64, adjust bool) (float64, error) {
	if s.adjustCash == nil {
		return 0, notFound()
	}
	return s.adjustCash(id, amount, adjust)
}

func (s *stubService) Report(_ context.Context, id string) (*models.ValuationReport, error) {
	if s.report == nil {
		return nil, notFound()
	}
	return s.report(id)
}

func (s *stubService) Quote(_ context.Context, id, ticker string) (*models.QuoteView, error) {
	if s.quote == nil {
		return nil, notFound()
	}
	return s.quote(id, ticker)
}

func (s *stubService) CheckTicker(_ context.Context, id, ticker string) (*models.TickerCheck, error) {
	if s.checkTicker == nil {
		return nil, notFound()
	}
	return s.checkTicker(id, ticker)
}

func (s *stubService) SearchTicker(_ context.Context, ticker string) (*models.TickerCheck, error) {
	if s.searchTicker == nil {
		return nil, notFound()
	}
	return s.searchTicker(ticker)
}

func (s *stubService) History(context.Context) ([]models.SimulationSummary, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history()
}

func (s *stubService) Delete(_ context.Context, id string) error {
	if s.deleteSim == nil {
		return notFound()
	}
	return s.deleteSim(id)
}

func (s *stubService) RenderChart(_ context.Context, id string) ([]byte, error) {
	if s.renderChart == nil {
		return nil, notFound()
	}
	return s.renderChart(id)
}

var _ interfaces.SimulationService = (*stubService)(nil)

func newTestServer(svc interfaces.SimulationService) *Server {
	cfg := common.NewDefaultConfig()
	a := &app.App{
		Config:      cfg,
		Logger:      common.NewSilentLogger(),
		Simulations: svc,
		StartupTime: time.Now(),
	}
	return NewServer(a)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
