package enricher

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/aura/internal/models"
)

type fakeRevenue struct {
	chain      map[string]*float64
	ecosystem  map[string]*float64
	app        map[string]float64
	appFees    map[string]*float64
	hlProtocol float64
	hlEco      float64
	prices     map[string]float64

	appFeesCalls []string
}

func (f *fakeRevenue) ChainRevenue(_ context.Context, slug string) *float64 {
	return f.chain[slug]
}

func (f *fakeRevenue) EcosystemRevenue(_ context.Context, slug string) *float64 {
	return f.ecosystem[slug]
}

func (f *fakeRevenue) AppRevenue(_ context.Context, name string) float64 {
	return f.app[name]
}

func (f *fakeRevenue) AppFees(_ context.Context, p models.Project) *float64 {
	f.appFeesCalls = append(f.appFeesCalls, p.Name)
	return f.appFees[p.Name]
}

func (f *fakeRevenue) HyperliquidRevenue(_ context.Context) (float64, float64) {
	return f.hlProtocol, f.hlEco
}

func (f *fakeRevenue) Prices(_ context.Context, _ []models.Project) map[string]float64 {
	return f.prices
}

type fakeBuilder struct {
	revenue map[string]float64
}

func (f *fakeBuilder) BuilderRevenue(_ context.Context, addr string) float64 {
	return f.revenue[addr]
}

type fakeQuotes struct {
	enabled bool
	fdv     map[string]float64
	prices  map[string]float64
}

func (f *fakeQuotes) Enabled() bool { return f.enabled }

func (f *fakeQuotes) Quotes(_ context.Context, _ []models.Project) (map[string]float64, map[string]float64) {
	return f.fdv, f.prices
}

type fakeTokens struct {
	fdv    map[string]*float64
	price  map[string]*float64
	called []string
}

func (f *fakeTokens) TokenData(_ context.Context, name string) (*float64, *float64) {
	f.called = append(f.called, name)
	return f.fdv[name], f.price[name]
}

func newTestEnricher(rev *fakeRevenue, b *fakeBuilder, q *fakeQuotes, t *fakeTokens) *Enricher {
	if rev == nil {
		rev = &fakeRevenue{}
	}
	if b == nil {
		b = &fakeBuilder{}
	}
	if q == nil {
		q = &fakeQuotes{}
	}
	if t == nil {
		t = &fakeTokens{}
	}
	e := New(rev, b, q, t, 4, 25*time.Second, slog.Default())
	e.spacing = 0
	return e
}

func TestEnrichRouting(t *testing.T) {
	rev := &fakeRevenue{
		chain:     map[string]*float64{"ethereum": models.Float64(1_000_000)},
		ecosystem: map[string]*float64{"Ethereum": models.Float64(500_000)},
		app:       map[string]float64{"Tether": 4_000_000_000},
	}
	builder := &fakeBuilder{revenue: map[string]float64{"0xabc": 42_000_000}}

	tests := []struct {
		name    string
		project models.Project
		check   func(t *testing.T, ep models.EnrichedProject)
	}{
		{
			name:    "infrastructure chain with ecosystem",
			project: models.Project{Name: "Ethereum", Category: models.CategoryL1, UseDefillama: true},
			check: func(t *testing.T, ep models.EnrichedProject) {
				assert.Equal(t, float64(1_000_000), ep.AnnualizedRevenue)
				require.NotNil(t, ep.EcosystemRevenue)
				assert.Equal(t, float64(500_000), *ep.EcosystemRevenue)
				require.NotNil(t, ep.AppFees)
				assert.Equal(t, float64(500_000), *ep.AppFees)
			},
		},
		{
			name:    "application summary path",
			project: models.Project{Name: "Tether", Category: models.CategoryStablecoins, UseDefillama: true},
			check: func(t *testing.T, ep models.EnrichedProject) {
				assert.Equal(t, float64(4_000_000_000), ep.AnnualizedRevenue)
				assert.Nil(t, ep.EcosystemRevenue)
			},
		},
		{
			name:    "builder attributed",
			project: models.Project{Name: "Moonshot", Category: models.CategoryApplication, HyperliquidBuilder: "0xabc"},
			check: func(t *testing.T, ep models.EnrichedProject) {
				assert.Equal(t, float64(42_000_000), ep.AnnualizedRevenue)
			},
		},
		{
			name:    "builder attributed without address",
			project: models.Project{Name: "Mystery", Category: models.CategoryApplication},
			check: func(t *testing.T, ep models.EnrichedProject) {
				assert.Zero(t, ep.AnnualizedRevenue)
			},
		},
		{
			name:    "infrastructure without chain mapping",
			project: models.Project{Name: "Unknown Chain", Category: models.CategoryL1, UseDefillama: true},
			check: func(t *testing.T, ep models.EnrichedProject) {
				assert.Zero(t, ep.AnnualizedRevenue)
				require.NotNil(t, ep.EcosystemRevenue)
				assert.Zero(t, *ep.EcosystemRevenue)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnricher(rev, builder, nil, nil)
			got := e.Enrich(context.Background(), []models.Project{tt.project})
			require.Len(t, got, 1)
			tt.check(t, got[0])
		})
	}
}

func TestEnrichHyperliquidDualRevenue(t *testing.T) {
	rev := &fakeRevenue{hlProtocol: 800_000_000, hlEco: 120_000_000}
	e := newTestEnricher(rev, nil, nil, nil)

	got := e.Enrich(context.Background(), []models.Project{
		{Name: "Hyperliquid", Category: models.CategoryL1, UseDefillama: true},
	})
	require.Len(t, got, 1)
	assert.Equal(t, float64(800_000_000), got[0].AnnualizedRevenue)
	require.NotNil(t, got[0].EcosystemRevenue)
	assert.Equal(t, float64(120_000_000), *got[0].EcosystemRevenue)
	require.NotNil(t, got[0].AppFees)
	assert.Equal(t, float64(120_000_000), *got[0].AppFees)
}

func TestEnrichFeeDetailFallback(t *testing.T) {
	rev := &fakeRevenue{
		chain:   map[string]*float64{"ethereum": models.Float64(1_000_000)},
		appFees: map[string]*float64{"Ethereum": models.Float64(777)},
	}
	e := newTestEnricher(rev, nil, nil, nil)

	got := e.Enrich(context.Background(), []models.Project{
		{Name: "Ethereum", Category: models.CategoryL1, UseDefillama: true},
	})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].AppFees)
	assert.Equal(t, float64(777), *got[0].AppFees)
	assert.Equal(t, []string{"Ethereum"}, rev.appFeesCalls)

	// A non-zero ecosystem figure skips the fallback entirely.
	rev2 := &fakeRevenue{
		chain:     map[string]*float64{"ethereum": models.Float64(1_000_000)},
		ecosystem: map[string]*float64{"Ethereum": models.Float64(5)},
		appFees:   map[string]*float64{"Ethereum": models.Float64(777)},
	}
	e2 := newTestEnricher(rev2, nil, nil, nil)
	got = e2.Enrich(context.Background(), []models.Project{
		{Name: "Ethereum", Category: models.CategoryL1, UseDefillama: true},
	})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].AppFees)
	assert.Equal(t, float64(5), *got[0].AppFees)
	assert.Empty(t, rev2.appFeesCalls)
}

func TestEnrichPreservesOrder(t *testing.T) {
	rev := &fakeRevenue{app: map[string]float64{
		"Tether": 1, "Circle": 2, "Pump.fun": 3,
	}}
	e := newTestEnricher(rev, nil, nil, nil)

	base := []models.Project{
		{Name: "Tether", Category: models.CategoryStablecoins, UseDefillama: true},
		{Name: "Circle", Category: models.CategoryStablecoins, UseDefillama: true},
		{Name: "Pump.fun", Category: models.CategoryApplication, UseDefillama: true},
	}
	got := e.Enrich(context.Background(), base)
	require.Len(t, got, 3)
	for i, p := range base {
		assert.Equal(t, p.Name, got[i].Name)
		assert.Equal(t, float64(i+1), got[i].AnnualizedRevenue)
	}
}

func TestMarketDataFoldPriority(t *testing.T) {
	rev := &fakeRevenue{
		app:    map[string]float64{"Tether": 1},
		prices: map[string]float64{"Tether": 0.99, "Circle": 1.01},
	}
	quotes := &fakeQuotes{
		enabled: true,
		fdv:     map[string]float64{"Tether": 120_000_000_000},
		prices:  map[string]float64{"Tether": 1.0},
	}
	e := newTestEnricher(rev, nil, quotes, nil)

	got := e.Enrich(context.Background(), []models.Project{
		{Name: "Tether", Category: models.CategoryStablecoins, UseDefillama: true},
		{Name: "Circle", Category: models.CategoryStablecoins, UseDefillama: true},
	})
	require.Len(t, got, 2)

	// CoinMarketCap wins where it reported; DeFiLlama only fills gaps.
	require.NotNil(t, got[0].CurrentPrice)
	assert.Equal(t, 1.0, *got[0].CurrentPrice)
	require.NotNil(t, got[0].FDV)
	assert.Equal(t, float64(120_000_000_000), *got[0].FDV)
	require.NotNil(t, got[1].CurrentPrice)
	assert.Equal(t, 1.01, *got[1].CurrentPrice)
	assert.Nil(t, got[1].FDV)
}

func TestMarketDataReturns(t *testing.T) {
	lastRound := models.Float64(10_000_000_000)
	tge := models.Float64(2.0)
	rev := &fakeRevenue{app: map[string]float64{"Tether": 1}}
	quotes := &fakeQuotes{
		enabled: true,
		fdv:     map[string]float64{"Tether": 15_000_000_000},
		prices:  map[string]float64{"Tether": 3.0},
	}
	e := newTestEnricher(rev, nil, quotes, nil)

	got := e.Enrich(context.Background(), []models.Project{
		{
			Name:                      "Tether",
			Category:                  models.CategoryStablecoins,
			UseDefillama:              true,
			LastFundingRoundValuation: lastRound,
			TGEPrice:                  tge,
		},
	})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].ReturnVsFunding)
	assert.Equal(t, 50.0, *got[0].ReturnVsFunding)
	require.NotNil(t, got[0].ReturnSinceTGE)
	assert.Equal(t, 50.0, *got[0].ReturnSinceTGE)
}

func TestMarketDataCoinGeckoOnlyForCriticalMissingFDV(t *testing.T) {
	rev := &fakeRevenue{
		chain: map[string]*float64{"ethereum": models.Float64(1), "solana": models.Float64(1)},
	}
	quotes := &fakeQuotes{
		enabled: true,
		fdv: map[string]float64{
			"Hyperliquid": 1, "Solana": 1, "Arbitrum": 1, "Optimism": 1,
		},
	}
	tokens := &fakeTokens{
		fdv:   map[string]*float64{"Ethereum": models.Float64(400_000_000_000)},
		price: map[string]*float64{"Ethereum": models.Float64(3200)},
	}
	e := newTestEnricher(rev, nil, quotes, tokens)

	got := e.Enrich(context.Background(), []models.Project{
		{Name: "Ethereum", Category: models.CategoryL1, UseDefillama: true},
		{Name: "Solana", Category: models.CategoryL1, UseDefillama: true},
	})
	require.Len(t, got, 2)

	assert.Equal(t, []string{"Ethereum"}, tokens.called)
	require.NotNil(t, got[0].FDV)
	assert.Equal(t, float64(400_000_000_000), *got[0].FDV)
	require.NotNil(t, got[0].CurrentPrice)
	assert.Equal(t, float64(3200), *got[0].CurrentPrice)
}

func TestMarketDataTimeoutDiscardsPass(t *testing.T) {
	rev := &fakeRevenue{app: map[string]float64{"Tether": 9}}
	quotes := &fakeQuotes{
		enabled: true,
		fdv:     map[string]float64{"Tether": 120_000_000_000},
	}
	e := newTestEnricher(rev, nil, quotes, nil)
	e.marketTimeout = time.Nanosecond

	got := e.Enrich(context.Background(), []models.Project{
		{Name: "Tether", Category: models.CategoryStablecoins, UseDefillama: true},
	})
	require.Len(t, got, 1)
	assert.Equal(t, float64(9), got[0].AnnualizedRevenue)
	assert.Nil(t, got[0].FDV)
	assert.Nil(t, got[0].CurrentPrice)
}
