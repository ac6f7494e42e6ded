package defillama

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"
)

// appRevenueStrategy handles one project whose provider data needs more
// than the plain summary path.
type appRevenueStrategy func(ctx context.Context) float64

// hyperliquidAdjustment corrects a known discrepancy between the
// provider's 7d and 30d windows; applied only on the 7d fallback.
const hyperliquidAdjustment = 1.303

func (c *Client) getBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.httpClient.R().SetContext(ctx).SetHeader("Accept", "application/json").Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// pumpFunRevenue aggregates the pump.fun and pumpswap venues. Both venues
// must report the same window; the totals are summed before annualizing so
// the venues stay consistent.
func (c *Client) pumpFunRevenue(ctx context.Context) float64 {
	var (
		wg       sync.WaitGroup
		pump     feeSummary
		pumpswap feeSummary
		pumpErr  error
		swapErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pumpErr = c.getJSON(ctx, fmt.Sprintf("%s/summary/fees/pump.fun", c.baseURL), &pump)
	}()
	go func() {
		defer wg.Done()
		swapErr = c.getJSON(ctx, fmt.Sprintf("%s/summary/fees/pumpswap", c.baseURL), &pumpswap)
	}()
	wg.Wait()

	if pumpErr != nil || swapErr != nil {
		c.log.Error("failed to fetch pump.fun venues", "pumpErr", pumpErr, "swapErr", swapErr)
		return 0
	}

	var total float64
	var window string
	switch {
	case has(pump.Total30d) && has(pumpswap.Total30d):
		total = (*pump.Total30d + *pumpswap.Total30d) * 12
		window = "30d total x 12"
	case has(pump.Total7d) && has(pumpswap.Total7d):
		total = (*pump.Total7d + *pumpswap.Total7d) * 52
		window = "7d total x 52"
	case has(pump.Total24h) && has(pumpswap.Total24h):
		total = (*pump.Total24h + *pumpswap.Total24h) * 365
		window = "24h x 365"
	default:
		c.log.Info("no paired revenue window for pump.fun venues")
		return 0
	}
	c.log.Info("pump.fun combined revenue", "annualized", total, "window", window)
	return total
}

// phantomRevenue sums the per-chain, per-asset daily breakdown over the
// most recent 30 entries, falling back to the summary totals when the
// breakdown is absent.
func (c *Client) phantomRevenue(ctx context.Context) float64 {
	body, err := c.getBody(ctx, fmt.Sprintf("%s/summary/fees/phantom", c.baseURL))
	if err != nil {
		c.log.Error("failed to fetch phantom revenue", "err", err)
		return 0
	}

	breakdown := gjson.GetBytes(body, "totalDataChartBreakdown")
	if breakdown.IsArray() {
		entries := breakdown.Array()
		if len(entries) > 30 {
			entries = entries[len(entries)-30:]
		}

		var total float64
		var days int
		for _, entry := range entries {
			parts := entry.Array()
			if len(parts) < 2 || !parts[1].IsObject() {
				continue
			}
			var dayTotal float64
			parts[1].ForEach(func(_, chain gjson.Result) bool {
				chain.ForEach(func(_, value gjson.Result) bool {
					dayTotal += value.Float()
					return true
				})
				return true
			})
			total += dayTotal
			days++
		}
		if days > 0 {
			annualized := total * 12
			c.log.Info("phantom multi-chain revenue", "annualized", annualized, "days", days)
			return annualized
		}
	}

	var summary feeSummary
	summary.Total24h = floatField(body, "total24h")
	summary.Total7d = floatField(body, "total7d")
	summary.Total30d = floatField(body, "total30d")
	annualized, window, ok := annualize(summary)
	if !ok {
		c.log.Info("no revenue data for phantom")
		return 0
	}
	c.log.Info("phantom fallback revenue", "annualized", annualized, "window", window)
	return annualized
}

// HyperliquidRevenue returns the dual revenue streams from the single
// provider response: annualized protocol fees, and the ecosystem stream
// computed as a 30-day daily average of the L1 app breakdown.
func (c *Client) HyperliquidRevenue(ctx context.Context) (protocol float64, ecosystem float64) {
	body, err := c.getBody(ctx, fmt.Sprintf("%s/summary/fees/hyperliquid", c.baseURL))
	if err != nil {
		c.log.Error("failed to fetch hyperliquid revenue", "err", err)
		return 0, 0
	}

	switch {
	case floatOK(body, "total30d"):
		protocol = gjson.GetBytes(body, "total30d").Float() * 12
		c.log.Info("hyperliquid protocol revenue", "annualized", protocol, "window", "30d total x 12")
	case floatOK(body, "total7d"):
		protocol = gjson.GetBytes(body, "total7d").Float() * 52 * hyperliquidAdjustment
		c.log.Info("hyperliquid protocol revenue", "annualized", protocol, "window", "7d total x 52, adjusted")
	}

	entries := gjson.GetBytes(body, "totalDataChartBreakdown").Array()
	if len(entries) > 30 {
		entries = entries[len(entries)-30:]
	}

	var total float64
	var validDays int
	for _, entry := range entries {
		parts := entry.Array()
		if len(parts) < 2 {
			continue
		}
		apps := parts[1].Get("Hyperliquid L1")
		if !apps.IsObject() {
			continue
		}
		var daily float64
		apps.ForEach(func(_, value gjson.Result) bool {
			daily += value.Float()
			return true
		})
		total += daily
		validDays++
	}
	if validDays > 0 {
		ecosystem = total / float64(validDays) * 365
		c.log.Info("hyperliquid ecosystem revenue", "annualized", ecosystem, "days", validDays)
	}
	return protocol, ecosystem
}

func floatOK(body []byte, path string) bool {
	v := gjson.GetBytes(body, path)
	return v.Exists() && v.Float() != 0
}

func floatField(body []byte, path string) *float64 {
	v := gjson.GetBytes(body, path)
	if !v.Exists() {
		return nil
	}
	f := v.Float()
	return &f
}
