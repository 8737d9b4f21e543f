package simulation

import (
	"context"
	"sort"
	"time"

	"github.com/mbarros/simvest/internal/common"
	"github.com/mbarros/simvest/internal/interfaces"
	"github.com/mbarros/simvest/internal/models"
)

// stubMarket satisfies interfaces.MarketDataClient with per-call hooks.
// Unset hooks return empty results.
type stubMarket struct {
	history   func(ticker string, start, end time.Time, interval string) ([]models.PricePoint, error)
	dividends func(ticker string, start, end time.Time) ([]models.Dividend, error)
	info      func(ticker string) (*models.TickerInfo, error)

	historyCalls int
}

func (m *stubMarket) GetHistory(_ context.Context, ticker string, start, end time.Time, interval string) ([]models.PricePoint, error) {
	m.historyCalls++
	if m.history == nil {
		return nil, nil
	}
	return m.history(ticker, start, end, interval)
}

func (m *stubMarket) GetDividends(_ context.Context, ticker string, start, end time.Time) ([]models.Dividend, error) {
	if m.dividends == nil {
		return nil, nil
	}
	return m.dividends(ticker, start, end)
}

func (m *stubMarket) GetInfo(_ context.Context, ticker string) (*models.TickerInfo, error) {
	if m.info == nil {
		return &models.TickerInfo{Ticker: ticker, LongName: ticker + " Inc", Currency: "BRL"}, nil
	}
	return m.info(ticker)
}

// stubInflation satisfies interfaces.InflationClient with a fixed series.
type stubInflation struct {
	series []models.IndexPoint
	err    error
}

func (i *stubInflation) GetIndex(context.Context, time.Time, time.Time) ([]models.IndexPoint, error) {
	return i.series, i.err
}

// memStore is an in-memory SimulationStore.
type memStore struct {
	sims map[string]*models.Simulation
}

func newMemStore() *memStore {
	return &memStore{sims: make(map[string]*models.Simulation)}
}

func (s *memStore) Get(_ context.Context, id string) (*models.Simulation, error) {
	sim, ok := s.sims[id]
	if !ok {
		return nil, models.NewFault(models.FaultNotFound, "simulation %s not found", id)
	}
	return sim, nil
}

func (s *memStore) Save(_ context.Context, sim *models.Simulation) error {
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now()
	}
	sim.UpdatedAt = time.Now()
	s.sims[sim.ID] = sim
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	if _, ok := s.sims[id]; !ok {
		return models.NewFault(models.FaultNotFound, "simulation %s not found", id)
	}
	delete(s.sims, id)
	return nil
}

func (s *memStore) List(context.Context) ([]*models.Simulation, error) {
	out := make([]*models.Simulation, 0, len(s.sims))
	for _, sim := range s.sims {
		out = append(out, sim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Close() error { return nil }

// memStorage is an in-memory StorageManager capturing raw writes.
type memStorage struct {
	store *memStore
	raw   map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{store: newMemStore(), raw: make(map[string][]byte)}
}

func (m *memStorage) Simulations() interfaces.SimulationStore { return m.store }

func (m *memStorage) WriteRaw(subdir, key string, data []byte) error {
	m.raw[subdir+"/"+key] = data
	return nil
}

func (m *memStorage) DataPath() string { return "" }
func (m *memStorage) Close() error     { return nil }

func newTestService(market *stubMarket, inflation *stubInflation) (*Service, *memStorage) {
	storage := newMemStorage()
	if market == nil {
		market = &stubMarket{}
	}
	if inflation == nil {
		inflation = &stubInflation{}
	}
	svc := NewService(storage, market, inflation, "BRL", common.NewSilentLogger())
	return svc, storage
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
