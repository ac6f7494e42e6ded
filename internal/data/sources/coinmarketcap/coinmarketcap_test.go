package coinmarketcap

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/aura/internal/models"
)

func newTestClient(apiKey string, handler http.Handler) (*httptest.Server, *Client) {
	server := httptest.NewServer(handler)

	c := NewClient(apiKey, slog.Default())
	c.baseURL = server.URL
	c.httpClient = resty.NewWithClient(server.Client())

	return server, c
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("", slog.Default()).Enabled())
	assert.True(t, NewClient("key", slog.Default()).Enabled())
}

func TestQuotesDisabledWithoutKey(t *testing.T) {
	server, c := newTestClient("", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("unexpected request without api key")
	}))
	defer server.Close()

	fdv, prices := c.Quotes(context.Background(), []models.Project{{Name: "Ethereum"}})
	assert.Empty(t, fdv)
	assert.Empty(t, prices)
}

func TestQuotes(t *testing.T) {
	server, c := newTestClient("test-key", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		assert.Contains(t, strings.Split(r.URL.Query().Get("id"), ","), "1027")

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"1027": map[string]interface{}{
					"quote": map[string]interface{}{
						"USD": map[string]float64{
							"price":                    3200,
							"fully_diluted_market_cap": 400_000_000_000,
						},
					},
				},
				"5426": map[string]interface{}{
					"total_supply": 500_000_000,
					"max_supply":   600_000_000,
					"quote": map[string]interface{}{
						"USD": map[string]float64{
							"price":      150,
							"market_cap": 75_000_000_000,
						},
					},
				},
			},
		}))
	}))
	defer server.Close()

	fdv, prices := c.Quotes(context.Background(), []models.Project{
		{Name: "Ethereum"},
		{Name: "Solana"},
	})

	assert.Equal(t, float64(3200), prices["Ethereum"])
	assert.Equal(t, float64(400_000_000_000), fdv["Ethereum"])
	assert.Equal(t, float64(150), prices["Solana"])
	// FDV derived from market cap scaled to max supply.
	assert.InDelta(t, 90_000_000_000, fdv["Solana"], 1)
}

func TestQuotesPlaceholderIDCollision(t *testing.T) {
	server, c := newTestClient("test-key", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		counts := map[string]int{}
		for _, id := range ids {
			counts[id]++
			assert.Equal(t, 1, counts[id], "duplicate id %s in request", id)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{}}))
	}))
	defer server.Close()

	// Moonshot, Pump.fun and Phantom all share the placeholder id.
	fdv, prices := c.Quotes(context.Background(), []models.Project{
		{Name: "Moonshot"},
		{Name: "Pump.fun"},
		{Name: "Phantom"},
	})
	assert.Empty(t, fdv)
	assert.Empty(t, prices)
}

func TestQuotesHTTPError(t *testing.T) {
	server, c := newTestClient("test-key", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fdv, prices := c.Quotes(context.Background(), []models.Project{{Name: "Ethereum"}})
	assert.Empty(t, fdv)
	assert.Empty(t, prices)
}
