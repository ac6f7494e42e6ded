// Package defillama adapts the DeFiLlama fee and price APIs to plain
// annualized-revenue numbers.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/auralabs/aura/internal/models"
	"github.com/auralabs/aura/internal/utils/request"
)

// ChainSlug maps a project name to its DeFiLlama chain slug for protocol
// revenue. Missing entries degrade to zero revenue upstream.
var chainSlugs = map[string]string{
	"Hyperliquid":    "hyperliquid",
	"Berachain":      "berachain",
	"Blast":          "blast",
	"Sonic":          "sonic",
	"Celestia":       "celestia",
	"Optimism":       "op-mainnet",
	"Arbitrum":       "arbitrum",
	"Solana":         "solana",
	"Ethereum":       "ethereum",
	"Story Protocol": "story",
	"Movement":       "movement",
	"Sui Network":    "sui",
	"Initia":         "initia",
	"Tron":           "tron",
	"Polygon":        "polygon",
	"Ton":            "ton",
}

// Ecosystem slugs exist only for chains with real app revenue; chains
// marked "-" in the spreadsheet are listed in noEcosystem instead.
var ecosystemSlugs = map[string]string{
	"Hyperliquid": "hyperliquid-l1",
	"Berachain":   "berachain",
	"Blast":       "blast",
	"Sonic":       "sonic",
	"Optimism":    "op-mainnet",
	"Arbitrum":    "arbitrum",
	"Solana":      "solana",
	"Ethereum":    "ethereum",
	"Movement":    "movement",
	"Sui Network": "sui",
	"Initia":      "initia",
	"Tron":        "tron",
	"Polygon":     "polygon",
	"Ton":         "ton",
}

var noEcosystem = map[string]bool{
	"Celestia":       true,
	"Story Protocol": true,
}

// Protocol slugs for application projects.
var appSlugs = map[string]string{
	"Axiom":    "axiom",
	"Moonshot": "moonshot.money",
	"Tether":   "tether",
	"Circle":   "circle",
	"Pump.fun": "pump.fun",
	"Phantom":  "phantom",
}

// Coin ids for the coins.llama.fi price API.
var coinIDs = map[string]string{
	"Hyperliquid":    "coingecko:hyperliquid",
	"Berachain":      "coingecko:berachain-bera",
	"Blast":          "coingecko:blast",
	"Sonic":          "coingecko:sonic-3",
	"Celestia":       "coingecko:celestia",
	"Optimism":       "coingecko:optimism",
	"Arbitrum":       "coingecko:arbitrum",
	"Solana":         "coingecko:solana",
	"Ethereum":       "coingecko:ethereum",
	"Story Protocol": "coingecko:story-2",
	"Movement":       "coingecko:movement",
	"Sui Network":    "coingecko:sui",
	"Initia":         "coingecko:initia",
	"Tron":           "coingecko:tron",
	"Polygon":        "coingecko:matic-network",
	"Ton":            "coingecko:the-open-network",
	"Moonshot":       "coingecko:moonshot-2",
	"Tether":         "coingecko:tether",
	"Circle":         "coingecko:usd-coin",
	"Pump.fun":       "coingecko:pump-fun",
	"Phantom":        "coingecko:phantom-token-2",
}

// Only these projects get the costly per-app fee-detail fetch; everyone
// else skips it to cap request volume.
var keyFeeProjects = map[string]bool{
	"ethereum": true,
	"solana":   true,
	"arbitrum": true,
	"optimism": true,
	"polygon":  true,
}

// ChainSlug resolves a project name to its protocol-revenue chain slug.
func ChainSlug(name string) (string, bool) {
	s, ok := chainSlugs[name]
	return s, ok
}

// EcosystemSlug resolves a project name to its app-revenue overview slug.
// The second return is false for chains without ecosystem revenue.
func EcosystemSlug(name string) (string, bool) {
	if noEcosystem[name] {
		return "", false
	}
	s, ok := ecosystemSlugs[name]
	return s, ok
}

// Client fetches fee summaries and token prices from DeFiLlama.
type Client struct {
	baseURL      string
	coinsBaseURL string
	httpClient   *resty.Client
	limiter      *rate.Limiter
	log          *slog.Logger

	strategies map[string]appRevenueStrategy
}

func NewClient(log *slog.Logger) *Client {
	c := &Client{
		baseURL:      "https://api.llama.fi",
		coinsBaseURL: "https://coins.llama.fi",
		httpClient:   request.Request,
		// Minimum-interval gate for the fee endpoints; concurrent
		// callers queue behind the single token.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     log,
	}
	c.strategies = map[string]appRevenueStrategy{
		"Pump.fun": c.pumpFunRevenue,
		"Phantom":  c.phantomRevenue,
	}
	return c
}

// feeSummary is the subset of /summary/fees/{slug} the annualization
// policy needs. Pointers preserve the upstream absent-vs-zero distinction.
type feeSummary struct {
	Total24h *float64 `json:"total24h"`
	Total7d  *float64 `json:"total7d"`
	Total30d *float64 `json:"total30d"`
}

func has(v *float64) bool { return v != nil && *v != 0 }

// annualize applies the standard windowing policy: 30d total x12, else 7d
// total x52, else 24h x365. Wider windows smooth single-day spikes.
func annualize(s feeSummary) (float64, string, bool) {
	switch {
	case has(s.Total30d):
		return *s.Total30d * 12, "30d total x 12", true
	case has(s.Total7d):
		return *s.Total7d * 52, "7d total x 52", true
	case has(s.Total24h):
		return *s.Total24h * 365, "24h x 365", true
	}
	return 0, "", false
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := c.httpClient.R().SetContext(ctx).SetHeader("Accept", "application/json").Get(url)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ChainRevenue returns annualized protocol revenue for a chain slug, or
// nil when the provider request fails. Calls are serialized through the
// 1 rps gate.
func (c *Client) ChainRevenue(ctx context.Context, chainSlug string) *float64 {
	if err := c.limiter.Wait(ctx); err != nil {
		c.log.Error("chain revenue throttle wait canceled", "slug", chainSlug, "err", err)
		return nil
	}

	var summary feeSummary
	url := fmt.Sprintf("%s/summary/fees/%s", c.baseURL, chainSlug)
	if err := c.getJSON(ctx, url, &summary); err != nil {
		c.log.Error("failed to fetch chain revenue", "slug", chainSlug, "err", err)
		return nil
	}

	annualized, window, ok := annualize(summary)
	if !ok {
		// Last resort mirrors the upstream policy: missing 24h
		// counts as zero rather than unknown.
		annualized, window = 0, "24h x 365"
	}
	c.log.Info("chain revenue", "slug", chainSlug, "annualized", annualized, "window", window)
	return &annualized
}

// EcosystemRevenue returns annualized app-fee revenue for an ecosystem
// slug. The overview endpoint only exposes a trustworthy 24h figure, so
// that is the sole window used; nil means no usable data.
func (c *Client) EcosystemRevenue(ctx context.Context, ecosystemSlug string) *float64 {
	var overview struct {
		Total24h *float64 `json:"total24h"`
	}
	url := fmt.Sprintf("%s/overview/fees/%s", c.baseURL, ecosystemSlug)
	if err := c.getJSON(ctx, url, &overview); err != nil {
		c.log.Error("failed to fetch ecosystem revenue", "slug", ecosystemSlug, "err", err)
		return nil
	}
	if overview.Total24h == nil || *overview.Total24h <= 0 {
		c.log.Info("no valid 24h ecosystem revenue", "slug", ecosystemSlug)
		return nil
	}
	annualized := *overview.Total24h * 365
	c.log.Info("ecosystem revenue", "slug", ecosystemSlug, "annualized", annualized)
	return &annualized
}

// AppRevenue returns annualized protocol revenue for an application
// project. Projects with provider idiosyncrasies route through their
// registered strategy; everything else takes the plain summary path.
// Failures degrade to zero.
func (c *Client) AppRevenue(ctx context.Context, projectName string) float64 {
	if strategy, ok := c.strategies[projectName]; ok {
		return strategy(ctx)
	}

	slug, ok := appSlugs[projectName]
	if !ok {
		slug = strings.ToLower(projectName)
	}

	var summary feeSummary
	url := fmt.Sprintf("%s/summary/fees/%s", c.baseURL, slug)
	if err := c.getJSON(ctx, url, &summary); err != nil {
		c.log.Error("failed to fetch app revenue", "project", projectName, "err", err)
		return 0
	}

	annualized, window, ok := annualize(summary)
	if !ok {
		c.log.Info("no revenue data for app", "project", projectName)
		return 0
	}
	c.log.Info("app revenue", "project", projectName, "annualized", annualized, "window", window)
	return annualized
}

// AppFees returns the 30-day fee-detail figure for key projects, nil for
// everyone else or on failure. The key list caps total request volume.
func (c *Client) AppFees(ctx context.Context, project models.Project) *float64 {
	if !project.UseDefillama {
		return nil
	}
	key := strings.ReplaceAll(strings.ToLower(project.Name), " ", "-")
	if !keyFeeProjects[key] {
		c.log.Info("skipping fee detail for non-key project", "project", project.Name)
		return nil
	}

	var overview struct {
		TotalDataChart [][2]float64 `json:"totalDataChart"`
	}
	url := fmt.Sprintf("%s/overview/fees/%s", c.baseURL, key)
	if err := c.getJSON(ctx, url, &overview); err != nil {
		c.log.Error("failed to fetch fee detail", "project", project.Name, "err", err)
		return nil
	}
	if len(overview.TotalDataChart) == 0 {
		return nil
	}

	chart := overview.TotalDataChart
	if len(chart) > 30 {
		chart = chart[len(chart)-30:]
	}
	var total30d float64
	for _, entry := range chart {
		total30d += entry[1]
	}
	annualized := total30d / 30 * 365
	c.log.Info("app fee detail", "project", project.Name, "annualized", annualized)
	return &annualized
}

// Prices fetches current token prices for every project with a coin id.
// The map is keyed by project name and omits coins the provider did not
// return; failures yield an empty map.
func (c *Client) Prices(ctx context.Context, projects []models.Project) map[string]float64 {
	prices := make(map[string]float64)

	type mapping struct{ project, coinID string }
	var wanted []mapping
	for _, p := range projects {
		if id, ok := coinIDs[p.Name]; ok {
			wanted = append(wanted, mapping{p.Name, id})
		}
	}
	if len(wanted) == 0 {
		return prices
	}

	ids := make([]string, len(wanted))
	for i, w := range wanted {
		ids[i] = w.coinID
	}

	var result struct {
		Coins map[string]struct {
			Price float64 `json:"price"`
		} `json:"coins"`
	}
	url := fmt.Sprintf("%s/prices/current/%s", c.coinsBaseURL, strings.Join(ids, ","))
	if err := c.getJSON(ctx, url, &result); err != nil {
		c.log.Error("failed to fetch prices", "err", err)
		return prices
	}

	for _, w := range wanted {
		if coin, ok := result.Coins[w.coinID]; ok && coin.Price > 0 {
			prices[w.project] = coin.Price
		}
	}
	c.log.Info("fetched prices", "count", len(prices))
	return prices
}
