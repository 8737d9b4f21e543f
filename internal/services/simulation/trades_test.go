package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarros/simvest/internal/models"
)

func seedManual(storage *memStorage, sim *models.Simulation) {
	sim.Kind = models.SimulationManual
	storage.store.sims[sim.ID] = sim
}

func heldAsset(ticker string, holdings float64) *models.Asset {
	listing := date(2023, time.January, 2)
	asset := &models.Asset{Ticker: ticker, Holdings: holdings, Currency: "BRL", ListingDate: &listing}
	asset.Prices.Extend([]models.PricePoint{{Date: listing, Close: 10}})
	return asset
}

func TestBuyDebitsCashAndCreditsHoldings(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-buy",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Cash:         1500,
			Assets:       []*models.Asset{heldAsset("AAA", 0)},
		},
	})

	result, err := svc.Trade(context.Background(), "sim-buy", models.TradeBuy, "AAA", 1000, 50)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, result.Holdings, 1e-9)
	assert.Equal(t, 500.0, result.Cash)
}

func TestBuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-poor",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Cash:         100,
			Assets:       []*models.Asset{heldAsset("AAA", 2)},
		},
	})

	_, err := svc.Trade(context.Background(), "sim-poor", models.TradeBuy, "AAA", 1000, 50)
	require.Error(t, err)
	assert.Equal(t, models.FaultInsufficientFunds, models.KindOf(err))

	var fault *models.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 100.0, fault.Available)
	assert.Equal(t, 1000.0, fault.Requested)

	stored, _ := storage.store.Get(context.Background(), "sim-poor")
	assert.Equal(t, 100.0, stored.Portfolio.Cash)
	assert.Equal(t, 2.0, stored.Asset("AAA").Holdings)
}

func TestBuyUnknownTickerCreatesAssetFromHistory(t *testing.T) {
	market := &stubMarket{
		history: func(ticker string, _, _ time.Time, interval string) ([]models.PricePoint, error) {
			require.Equal(t, "NEW", ticker)
			require.Equal(t, "1d", interval)
			return []models.PricePoint{
				{Date: date(2023, time.June, 1), Close: 95},
				{Date: date(2024, time.February, 28), Close: 100},
			}, nil
		},
		info: func(string) (*models.TickerInfo, error) {
			return &models.TickerInfo{Ticker: "NEW", LongName: "New Corp", Currency: "USD"}, nil
		},
	}
	svc, storage := newTestService(market, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-new",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 1000},
	})

	result, err := svc.Trade(context.Background(), "sim-new", models.TradeBuy, "new", 500, 100)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, result.Holdings, 1e-9)
	stored, _ := storage.store.Get(context.Background(), "sim-new")
	asset := stored.Asset("NEW")
	require.NotNil(t, asset)
	assert.Equal(t, "New Corp", asset.Name)
	assert.Equal(t, "USD", asset.Currency)
	require.NotNil(t, asset.ListingDate)
	assert.Equal(t, date(2023, time.June, 1), *asset.ListingDate)
}

func TestBuyUnknownTickerWithoutDataFails(t *testing.T) {
	svc, storage := newTestService(&stubMarket{}, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-nodata",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 1000},
	})

	_, err := svc.Trade(context.Background(), "sim-nodata", models.TradeBuy, "GHOST", 100, 10)
	require.Error(t, err)
	assert.Equal(t, models.FaultUpstreamUnavailable, models.KindOf(err))
}

func TestSellCreditsFullNotional(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-sell",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Cash:         0,
			Assets:       []*models.Asset{heldAsset("AAA", 8)},
		},
	})

	result, err := svc.Trade(context.Background(), "sim-sell", models.TradeSell, "AAA", 500, 100)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, result.Holdings, 1e-9)
	assert.Equal(t, 500.0, result.Cash)
}

func TestBuyThenSellRoundTripRestoresState(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-roundtrip",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Cash:         2000,
			Assets:       []*models.Asset{heldAsset("AAA", 5)},
		},
	})
	ctx := context.Background()

	bought, err := svc.Trade(ctx, "sim-roundtrip", models.TradeBuy, "AAA", 1000, 50)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, bought.Holdings, 1e-9)
	assert.Equal(t, 1000.0, bought.Cash)

	sold, err := svc.Trade(ctx, "sim-roundtrip", models.TradeSell, "AAA", 1000, 50)
	require.NoError(t, err)

	// Selling the bought amount at the same price restores holdings and
	// cash to their pre-trade values, up to cent rounding on the debit.
	assert.InDelta(t, 5.0, sold.Holdings, 1e-9)
	assert.InDelta(t, 2000.0, sold.Cash, 0.01)

	stored, _ := storage.store.Get(ctx, "sim-roundtrip")
	assert.InDelta(t, 5.0, stored.Asset("AAA").Holdings, 1e-9)
	assert.InDelta(t, 2000.0, stored.Portfolio.Cash, 0.01)
}

func TestSellOverdrawFailsWithoutMutation(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-overdraw",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio: models.Portfolio{
			BaseCurrency: "BRL",
			Assets:       []*models.Asset{heldAsset("AAA", 2)},
		},
	})

	_, err := svc.Trade(context.Background(), "sim-overdraw", models.TradeSell, "AAA", 500, 100)
	require.Error(t, err)
	assert.Equal(t, models.FaultInsufficientHoldings, models.KindOf(err))

	var fault *models.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 2.0, fault.Available)
	assert.Equal(t, 5.0, fault.Requested)

	stored, _ := storage.store.Get(context.Background(), "sim-overdraw")
	assert.Equal(t, 2.0, stored.Asset("AAA").Holdings)
	assert.Zero(t, stored.Portfolio.Cash)
}

func TestSellUnknownAssetFails(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-nosell",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL"},
	})

	_, err := svc.Trade(context.Background(), "sim-nosell", models.TradeSell, "AAA", 100, 10)
	require.Error(t, err)
	assert.Equal(t, models.FaultNotFound, models.KindOf(err))
}

func TestTradeValidation(t *testing.T) {
	svc, storage := newTestService(nil, nil)
	seedManual(storage, &models.Simulation{
		ID:           "sim-valid",
		CurrentMonth: date(2024, time.March, 1),
		Portfolio:    models.Portfolio{BaseCurrency: "BRL", Cash: 100},
	})
	ctx := context.Background()

	cases := []struct {
		name   string
		side   models.TradeSide
		ticker string
		amount float64
		price  float64
	}{
		{"zero amount", models.TradeBuy, "AAA", 0, 10},
		{"negative amount", models.TradeBuy, "AAA", -5, 10},
		{"negative price", models.TradeBuy, "AAA", 100, -1},
		{"empty ticker", models.TradeBuy, "", 100, 10},
		{"bad side", models.TradeSide("short"), "AAA", 100, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Trade(ctx, "sim-valid", tc.side, tc.ticker, tc.amount, tc.price)
			require.Error(t, err)
			assert.Equal(t, models.FaultInvalidInput, models.KindOf(err))
		})
	}
}
