// Package coingecko fetches FDV and spot price for individual tokens. It
// is the last leg of the market-data fallback chain and is called
// sparingly because of the provider's aggressive rate limits.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/auralabs/aura/internal/utils/request"
)

// Token ids per project; projects without a listed token are absent.
var tokenIDs = map[string]string{
	"Hyperliquid":    "hyperliquid",
	"Berachain":      "berachain-bera",
	"Blast":          "blast",
	"Sonic":          "sonic-3",
	"Celestia":       "celestia",
	"Optimism":       "optimism",
	"Arbitrum":       "arbitrum",
	"Solana":         "solana",
	"Ethereum":       "ethereum",
	"Story Protocol": "story-2",
	"Movement":       "movement",
	"Sui Network":    "sui",
	"Initia":         "initia",
	"Tron":           "tron",
	"Polygon":        "matic-network",
	"Ton":            "the-open-network",
	"Moonshot":       "moonshot-2",
	"Tether":         "tether",
	"Circle":         "usd-coin",
	"Pump.fun":       "pump-fun",
	"Phantom":        "phantom-token-2",
}

// TokenID resolves a project name to its CoinGecko id.
func TokenID(projectName string) (string, bool) {
	id, ok := tokenIDs[projectName]
	return id, ok
}

type Client struct {
	baseURL    string
	httpClient *resty.Client
	log        *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	return &Client{
		baseURL:    "https://api.coingecko.com",
		httpClient: request.Request,
		log:        log,
	}
}

// TokenData returns the fully-diluted valuation and current price for a
// project, either of which may be nil when the provider has no figure or
// the fetch fails.
func (c *Client) TokenData(ctx context.Context, projectName string) (fdv, price *float64) {
	id, ok := tokenIDs[projectName]
	if !ok {
		return nil, nil
	}

	url := fmt.Sprintf(
		"%s/api/v3/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false&sparkline=false",
		c.baseURL, id,
	)
	resp, err := c.httpClient.R().SetContext(ctx).SetHeader("Accept", "application/json").Get(url)
	if err != nil {
		c.log.Error("failed to fetch token data", "project", projectName, "err", err)
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error("failed to fetch token data", "project", projectName, "status", resp.StatusCode())
		return nil, nil
	}

	var result struct {
		MarketData struct {
			FullyDilutedValuation struct {
				USD *float64 `json:"usd"`
			} `json:"fully_diluted_valuation"`
			CurrentPrice struct {
				USD *float64 `json:"usd"`
			} `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.log.Error("failed to decode token data", "project", projectName, "err", err)
		return nil, nil
	}

	if v := result.MarketData.FullyDilutedValuation.USD; v != nil && *v > 0 {
		fdv = v
		c.log.Info("token fdv", "project", projectName, "fdv", *v)
	} else {
		c.log.Info("no fdv available", "project", projectName)
	}
	if v := result.MarketData.CurrentPrice.USD; v != nil && *v > 0 {
		price = v
	}
	return fdv, price
}
