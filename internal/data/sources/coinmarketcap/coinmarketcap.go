// Package coinmarketcap batches FDV and price quotes for every project
// with a listing. It is the primary market-data source when an API key is
// configured and a no-op otherwise.
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/auralabs/aura/internal/models"
	"github.com/auralabs/aura/internal/utils/request"
)

// CoinMarketCap ids from the spreadsheet. Several app tokens reuse the
// Hyperliquid id as a placeholder until they list.
var tokenIDs = map[string]int{
	"Hyperliquid":    32196,
	"Berachain":      24647,
	"Blast":          28480,
	"Sonic":          32684,
	"Celestia":       22861,
	"Optimism":       11840,
	"Arbitrum":       11841,
	"Solana":         5426,
	"Ethereum":       1027,
	"Story Protocol": 35626,
	"Movement":       32452,
	"Sui Network":    20947,
	"Initia":         33120,
	"Tron":           1958,
	"Polygon":        28321,
	"Ton":            11419,
	"Moonshot":       32196,
	"Tether":         825,
	"Circle":         3408,
	"Pump.fun":       32196,
	"Phantom":        32196,
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resty.Client
	log        *slog.Logger
}

func NewClient(apiKey string, log *slog.Logger) *Client {
	return &Client{
		baseURL:    "https://pro-api.coinmarketcap.com",
		apiKey:     apiKey,
		httpClient: request.Request,
		log:        log,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type quote struct {
	TotalSupply *float64 `json:"total_supply"`
	MaxSupply   *float64 `json:"max_supply"`
	Quote       struct {
		USD struct {
			Price                 *float64 `json:"price"`
			MarketCap             *float64 `json:"market_cap"`
			FullyDilutedMarketCap *float64 `json:"fully_diluted_market_cap"`
		} `json:"USD"`
	} `json:"quote"`
}

// Quotes batch-fetches FDV and price for every project with a listing.
// Both maps are keyed by project name; failures yield empty maps. FDV is
// taken from the provider when present, otherwise derived from market cap
// and supply.
func (c *Client) Quotes(ctx context.Context, proj []models.Project) (fdv, prices map[string]float64) {
	fdv = make(map[string]float64)
	prices = make(map[string]float64)
	if !c.Enabled() {
		return fdv, prices
	}

	nameByID := make(map[string]string)
	var ids []string
	for _, p := range proj {
		id, ok := tokenIDs[p.Name]
		if !ok {
			continue
		}
		key := strconv.Itoa(id)
		if _, seen := nameByID[key]; seen {
			// Placeholder ids collide; first project wins, the
			// rest fall through to the other sources.
			continue
		}
		nameByID[key] = p.Name
		ids = append(ids, key)
	}
	if len(ids) == 0 {
		return fdv, prices
	}

	url := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?id=%s", c.baseURL, strings.Join(ids, ","))
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-CMC_PRO_API_KEY", c.apiKey).
		Get(url)
	if err != nil {
		c.log.Error("failed to fetch quotes", "err", err)
		return fdv, prices
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error("failed to fetch quotes", "status", resp.StatusCode())
		return fdv, prices
	}

	var result struct {
		Data map[string]quote `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.log.Error("failed to decode quotes", "err", err)
		return fdv, prices
	}

	for id, token := range result.Data {
		name, ok := nameByID[id]
		if !ok {
			continue
		}
		usd := token.Quote.USD
		if usd.Price != nil && *usd.Price > 0 {
			prices[name] = *usd.Price
		}
		switch {
		case usd.FullyDilutedMarketCap != nil && *usd.FullyDilutedMarketCap > 0:
			fdv[name] = *usd.FullyDilutedMarketCap
		case usd.MarketCap != nil && token.TotalSupply != nil && *token.TotalSupply > 0 && token.MaxSupply != nil:
			fdv[name] = *usd.MarketCap / *token.TotalSupply * *token.MaxSupply
		}
	}
	c.log.Info("fetched quotes", "fdv", len(fdv), "prices", len(prices))
	return fdv, prices
}
