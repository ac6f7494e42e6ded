// Package hyperliquid fetches builder-attributed fee revenue: fees earned
// by a specific builder address through the platform's fee-sharing
// mechanism, as opposed to protocol-wide revenue.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/auralabs/aura/internal/utils/request"
)

type Client struct {
	baseURL    string
	httpClient *resty.Client
	log        *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	return &Client{
		baseURL:    "https://api.hypurrscan.io",
		httpClient: request.Request,
		log:        log,
	}
}

// builderFees carries windowed fee totals for one builder address.
type builderFees struct {
	Total24h        *float64 `json:"total24h"`
	Total7d         *float64 `json:"total7d"`
	Total30d        *float64 `json:"total30d"`
	TotalCumulative float64  `json:"totalCumulative"`
}

// BuilderRevenue returns annualized builder revenue for an address using
// the standard windowing policy (30d x12, 7d x52, 24h x365). Failures
// degrade to zero.
func (c *Client) BuilderRevenue(ctx context.Context, builderAddress string) float64 {
	url := fmt.Sprintf("%s/builder/%s/fees", c.baseURL, builderAddress)
	resp, err := c.httpClient.R().SetContext(ctx).SetHeader("Accept", "application/json").Get(url)
	if err != nil {
		c.log.Error("failed to fetch builder revenue", "builder", builderAddress, "err", err)
		return 0
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error("failed to fetch builder revenue", "builder", builderAddress, "status", resp.StatusCode())
		return 0
	}

	var fees builderFees
	if err := json.Unmarshal(resp.Body(), &fees); err != nil {
		c.log.Error("failed to decode builder revenue", "builder", builderAddress, "err", err)
		return 0
	}

	var annualized float64
	var window string
	switch {
	case fees.Total30d != nil && *fees.Total30d > 0:
		annualized = *fees.Total30d * 12
		window = "30d total x 12"
	case fees.Total7d != nil && *fees.Total7d > 0:
		annualized = *fees.Total7d * 52
		window = "7d total x 52"
	case fees.Total24h != nil && *fees.Total24h > 0:
		annualized = *fees.Total24h * 365
		window = "24h x 365"
	default:
		c.log.Info("no builder fee data", "builder", builderAddress)
		return 0
	}

	c.log.Info("builder revenue",
		"builder", builderAddress,
		"annualized", annualized,
		"cumulative", fees.TotalCumulative,
		"window", window)
	return annualized
}
