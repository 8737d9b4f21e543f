package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarros/simvest/internal/models"
)

func ipcaStub() *stubInflation {
	return &stubInflation{series: []models.IndexPoint{
		{Date: date(2024, time.January, 1), Value: 0.42},
		{Date: date(2024, time.February, 1), Value: 0.83},
	}}
}

func TestCreateAutomaticFreezesInflationSeries(t *testing.T) {
	svc, storage := newTestService(nil, ipcaStub())

	sim, err := svc.CreateAutomatic(context.Background(), "My DCA", date(2024, time.January, 1), date(2024, time.December, 1), 1000, 100, "")
	require.NoError(t, err)

	assert.NotEmpty(t, sim.ID)
	assert.Equal(t, models.SimulationAutomatic, sim.Kind)
	assert.Equal(t, "BRL", sim.Portfolio.BaseCurrency)
	assert.Equal(t, 1000.0, sim.Portfolio.Cash)
	assert.Len(t, sim.InflationSeries, 2)

	stored, err := storage.store.Get(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.Name, stored.Name)
}

func TestCreateAutomaticValidation(t *testing.T) {
	svc, _ := newTestService(nil, ipcaStub())
	ctx := context.Background()

	_, err := svc.CreateAutomatic(ctx, "  ", date(2024, time.January, 1), date(2024, time.December, 1), 0, 0, "")
	assert.Equal(t, models.FaultInvalidInput, models.KindOf(err))

	_, err = svc.CreateAutomatic(ctx, "x", date(2024, time.December, 1), date(2024, time.January, 1), 0, 0, "")
	assert.Equal(t, models.FaultInvalidInput, models.KindOf(err))

	_, err = svc.CreateAutomatic(ctx, "x", date(2024, time.January, 1), date(2024, time.December, 1), -1, 0, "")
	assert.Equal(t, models.FaultInvalidInput, models.KindOf(err))
}

func TestCreateFailsWhenInflationUnavailable(t *testing.T) {
	svc, _ := newTestService(nil, &stubInflation{err: errors.New("bcb down")})
	_, err := svc.CreateAutomatic(context.Background(), "x", date(2024, time.January, 1), date(2024, time.December, 1), 0, 0, "")
	assert.Equal(t, models.FaultUpstreamTransport, models.KindOf(err))

	svc, _ = newTestService(nil, &stubInflation{})
	_, err = svc.CreateManual(context.Background(), "x", date(2024, time.January, 1), "")
	assert.Equal(t, models.FaultUpstreamUnavailable, models.KindOf(err))
}

func TestCreateManualStartsWithEmptyPortfolio(t *testing.T) {
	svc, _ := newTestService(nil, ipcaStub())

	sim, err := svc.CreateManual(context.Background(), "Sandbox", date(2024, time.March, 15), "usd")
	require.NoError(t, err)

	assert.Equal(t, models.SimulationManual, sim.Kind)
	assert.Equal(t, date(2024, time.March, 15), sim.CurrentMonth)
	assert.Equal(t, "USD", sim.Portfolio.BaseCurrency)
	assert.Zero(t, sim.Portfolio.Cash)
	assert.Empty(t, sim.Portfolio.Assets)
}

func TestAdjustCashDepositAndWithdraw(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-cash",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 100},
	})
	ctx := context.Background()

	balance, err := svc.AdjustCash(ctx, "sim-cash", 250.509, false)
	require.NoError(t, err)
	assert.Equal(t, 350.5, balance)

	balance, err = svc.AdjustCash(ctx, "sim-cash", -50, false)
	require.NoError(t, err)
	assert.Equal(t, 300.5, balance)
}

func TestAdjustCashClampsAtZero(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-clamp",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 100},
	})

	balance, err := svc.AdjustCash(context.Background(), "sim-clamp", -500, false)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestAdjustCashRejectsZeroAmount(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-zero",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL"},
	})

	_, err := svc.AdjustCash(context.Background(), "sim-zero", 0, false)
	assert.Equal(t, models.FaultInvalidInput, models.KindOf(err))
}

func TestAdjustCashDeflatesDeposit(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-defl",
		CurrentMonth: date(2024, time.January, 1),
		InflationSeries: []models.IndexPoint{
			{Date: date(2024, time.January, 1), Value: 0.5},
			{Date: date(2024, time.February, 1), Value: 0.3},
		},
		Portfolio: models.Portfolio{BaseCurrency: "BRL"},
	})

	balance, err := svc.AdjustCash(context.Background(), "sim-defl", 1000, true)
	require.NoError(t, err)
	assert.Equal(t, 991.95, balance)
}

func TestHistorySummaries(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	a := heldAsset("AAA", 2)
	a.LastConvertedPrice = 30
	seedManual(storage, &models.Simulation{
		ID:           "sim-m",
		Name:         "Manual",
		CurrentMonth: date(2024, time.March, 1),
		CreatedAt:    date(2024, time.January, 2),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 40, Assets: []*models.Asset{a}},
	})
	seedAutomatic(storage, &models.Simulation{
		ID:        "sim-a",
		Name:      "Auto",
		CreatedAt: date(2024, time.January, 1),
		ValuationHistory: []models.ValuationPoint{
			{Date: date(2024, time.June, 1), Value: 1234.56},
		},
		Portfolio: models.Portfolio{BaseCurrency: "BRL"},
	})

	summaries, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first.
	assert.Equal(t, "sim-m", summaries[0].ID)
	assert.Equal(t, 100.0, summaries[0].TotalValue) // 2*30 + 40
	assert.Equal(t, "sim-a", summaries[1].ID)
	assert.Equal(t, 1234.56, summaries[1].TotalValue)
}

func TestHistoryFloorsManualTotal(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	a := heldAsset("AAA", 2)
	a.LastConvertedPrice = 30
	// Sell credits are not rounded, so cash can carry sub-cent residue.
	seedManual(storage, &models.Simulation{
		ID:           "sim-residue",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 40.005, Assets: []*models.Asset{a}},
	})

	summaries, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 100.0, summaries[0].TotalValue) // floor(2*30 + 40.005)
}

func TestDeleteSimulation(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{ID: "sim-del", Portfolio: models.Portfolio{BaseCurrency: "BRL"}})

	require.NoError(t, svc.Delete(context.Background(), "sim-del"))

	_, err := storage.store.Get(context.Background(), "sim-del")
	assert.Equal(t, models.FaultNotFound, models.KindOf(err))

	err = svc.Delete(context.Background(), "sim-del")
	assert.Equal(t, models.FaultNotFound, models.KindOf(err))
}

func TestOpenAutomaticReturnsStoredResult(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	listing := date(2024, time.January, 1)
	seedAutomatic(storage, &models.Simulation{
		ID:        "sim-open",
		Name:      "Auto",
		StartDate: date(2024, time.January, 1),
		EndDate:   date(2024, time.June, 1),
		ValuationHistory: []models.ValuationPoint{
			{Date: date(2024, time.January, 1), Value: 100},
		},
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Assets: []*models.Asset{{
				Ticker:      "AAA",
				Weight:      1,
				Holdings:    3.5,
				ListingDate: &listing,
			}},
		},
	})

	result, err := svc.OpenAutomatic(context.Background(), "sim-open")
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, 3.5, result.Assets[0].Holdings)
	assert.Len(t, result.Series, 1)
}
