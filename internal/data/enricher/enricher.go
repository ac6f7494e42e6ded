// Package enricher fans adapter calls out over the static project list
// and merges the results into enriched records.
package enricher

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/auralabs/aura/internal/data/sources/coingecko"
	"github.com/auralabs/aura/internal/data/sources/defillama"
	"github.com/auralabs/aura/internal/models"
)

// RevenueSource is the provider-aggregated adapter family (DeFiLlama).
type RevenueSource interface {
	ChainRevenue(ctx context.Context, chainSlug string) *float64
	EcosystemRevenue(ctx context.Context, ecosystemSlug string) *float64
	AppRevenue(ctx context.Context, projectName string) float64
	AppFees(ctx context.Context, project models.Project) *float64
	HyperliquidRevenue(ctx context.Context) (protocol, ecosystem float64)
	Prices(ctx context.Context, projects []models.Project) map[string]float64
}

// BuilderSource is the builder-attributed adapter family.
type BuilderSource interface {
	BuilderRevenue(ctx context.Context, builderAddress string) float64
}

// QuoteSource is the primary market-data provider (CoinMarketCap).
type QuoteSource interface {
	Enabled() bool
	Quotes(ctx context.Context, projects []models.Project) (fdv, prices map[string]float64)
}

// TokenSource is the per-token fallback provider (CoinGecko).
type TokenSource interface {
	TokenData(ctx context.Context, projectName string) (fdv, price *float64)
}

// Critical projects whose FDV is worth the rate-limited fallback fetch.
var criticalProjects = []string{"Hyperliquid", "Ethereum", "Solana", "Arbitrum", "Optimism"}

type Enricher struct {
	revenue RevenueSource
	builder BuilderSource
	quotes  QuoteSource
	tokens  TokenSource

	workers       int
	marketTimeout time.Duration
	// spacing is the fixed delay between CoinGecko fallback calls.
	spacing time.Duration
	log     *slog.Logger
}

func New(revenue RevenueSource, builder BuilderSource, quotes QuoteSource, tokens TokenSource, workers int, marketTimeout time.Duration, log *slog.Logger) *Enricher {
	if workers <= 0 {
		workers = 8
	}
	if marketTimeout <= 0 {
		marketTimeout = 25 * time.Second
	}
	return &Enricher{
		revenue:       revenue,
		builder:       builder,
		quotes:        quotes,
		tokens:        tokens,
		workers:       workers,
		marketTimeout: marketTimeout,
		spacing:       1200 * time.Millisecond,
		log:           log,
	}
}

// Enrich runs the primary revenue pass over every project and then a
// best-effort market-data pass. The result preserves input order and
// cardinality; results are assembled by index, never by completion order.
func (e *Enricher) Enrich(ctx context.Context, base []models.Project) []models.EnrichedProject {
	enriched := make([]models.EnrichedProject, len(base))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, p := range base {
		wg.Add(1)
		go func(i int, p models.Project) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			enriched[i] = e.enrichOne(ctx, p)
		}(i, p)
	}
	wg.Wait()

	e.applyMarketData(ctx, base, enriched)
	return enriched
}

func (e *Enricher) enrichOne(ctx context.Context, p models.Project) models.EnrichedProject {
	ep := models.EnrichedProject{Project: p}

	if !p.UseDefillama {
		if p.HyperliquidBuilder == "" {
			e.log.Info("builder-attributed project without builder address", "project", p.Name)
			return ep
		}
		ep.AnnualizedRevenue = e.builder.BuilderRevenue(ctx, p.HyperliquidBuilder)
		return ep
	}

	if !p.IsInfrastructure() {
		ep.AnnualizedRevenue = e.revenue.AppRevenue(ctx, p.Name)
		return ep
	}

	if p.Name == "Hyperliquid" {
		protocol, ecosystem := e.revenue.HyperliquidRevenue(ctx)
		ep.AnnualizedRevenue = protocol
		ep.EcosystemRevenue = models.Float64(ecosystem)
		ep.AppFees = models.Float64(ecosystem)
		return ep
	}

	chainSlug, ok := defillama.ChainSlug(p.Name)
	if !ok {
		// Missing mapping is a data gap, not an error.
		e.log.Info("no chain mapping for project", "project", p.Name)
		ep.EcosystemRevenue = models.Float64(0)
		return ep
	}

	if r := e.revenue.ChainRevenue(ctx, chainSlug); r != nil {
		ep.AnnualizedRevenue = *r
	}

	var ecosystem float64
	if ecosystemSlug, ok := defillama.EcosystemSlug(p.Name); ok {
		if r := e.revenue.EcosystemRevenue(ctx, ecosystemSlug); r != nil {
			ecosystem = *r
		}
	}
	ep.EcosystemRevenue = models.Float64(ecosystem)
	ep.AppFees = models.Float64(ecosystem)

	if ecosystem == 0 {
		// Fee-detail fallback; the adapter's key-project gate keeps
		// this from fanning out to every chain.
		if fees := e.revenue.AppFees(ctx, p); fees != nil {
			ep.AppFees = fees
		}
	}
	return ep
}

// applyMarketData attaches FDV, price and derived returns from the
// provider fallback chain. The pass is all-or-nothing: on timeout the
// primary-pass records are left untouched.
func (e *Enricher) applyMarketData(ctx context.Context, base []models.Project, enriched []models.EnrichedProject) {
	mctx, cancel := context.WithTimeout(ctx, e.marketTimeout)
	defer cancel()

	fdv, prices := e.fetchMarketData(mctx, base)
	if mctx.Err() != nil {
		e.log.Error("market data pass timed out, proceeding without it", "err", mctx.Err())
		return
	}

	for i := range enriched {
		name := enriched[i].Name
		f, hasFDV := fdv[name]
		p, hasPrice := prices[name]
		if !hasFDV && !hasPrice {
			continue
		}
		if hasFDV {
			enriched[i].FDV = models.Float64(f)
			if lrv := enriched[i].LastFundingRoundValuation; lrv != nil && *lrv > 0 {
				enriched[i].ReturnVsFunding = models.Float64(round2((f - *lrv) / *lrv * 100))
			}
		}
		if hasPrice {
			enriched[i].CurrentPrice = models.Float64(p)
			if tge := enriched[i].TGEPrice; tge != nil && *tge > 0 {
				enriched[i].ReturnSinceTGE = models.Float64(round2((p - *tge) / *tge * 100))
			}
		}
	}
	e.log.Info("applied market data", "fdv", len(fdv), "prices", len(prices))
}

// fetchMarketData folds over the providers in priority order, filling
// only fields still absent: CoinMarketCap first, DeFiLlama prices next,
// CoinGecko last for critical projects missing FDV.
func (e *Enricher) fetchMarketData(ctx context.Context, base []models.Project) (map[string]float64, map[string]float64) {
	fdv := make(map[string]float64)
	prices := make(map[string]float64)

	if e.quotes != nil && e.quotes.Enabled() {
		qFDV, qPrices := e.quotes.Quotes(ctx, base)
		for name, v := range qFDV {
			fdv[name] = v
		}
		for name, v := range qPrices {
			prices[name] = v
		}
	}

	for name, v := range e.revenue.Prices(ctx, base) {
		if _, ok := prices[name]; !ok {
			prices[name] = v
		}
	}

	for _, name := range criticalProjects {
		if _, ok := fdv[name]; ok {
			continue
		}
		if _, ok := coingecko.TokenID(name); !ok {
			continue
		}
		f, p := e.tokens.TokenData(ctx, name)
		if f != nil {
			fdv[name] = *f
		}
		if p != nil {
			if _, ok := prices[name]; !ok {
				prices[name] = *p
			}
		}
		select {
		case <-ctx.Done():
			return fdv, prices
		case <-time.After(e.spacing):
		}
	}
	return fdv, prices
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
