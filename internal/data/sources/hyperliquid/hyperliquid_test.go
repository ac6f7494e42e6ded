package hyperliquid

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuilder = "0x0cbf655b0d22ae71fba3a674b0e1c0c7e7f975af"

func newTestClient(t *testing.T, response interface{}) (*httptest.Server, *Client) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/builder/"+testBuilder+"/fees", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))

	c := NewClient(slog.Default())
	c.baseURL = server.URL
	c.httpClient = resty.NewWithClient(server.Client())

	return server, c
}

func TestBuilderRevenue(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]float64
		want     float64
	}{
		{name: "30d window", response: map[string]float64{"total30d": 100, "total7d": 30, "total24h": 5}, want: 1200},
		{name: "7d fallback", response: map[string]float64{"total7d": 30, "total24h": 5}, want: 1560},
		{name: "24h fallback", response: map[string]float64{"total24h": 5}, want: 1825},
		{name: "no windows", response: map[string]float64{"totalCumulative": 9999}, want: 0},
		{name: "zero 30d falls through", response: map[string]float64{"total30d": 0, "total7d": 30}, want: 1560},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, c := newTestClient(t, tt.response)
			defer server.Close()

			assert.Equal(t, tt.want, c.BuilderRevenue(context.Background(), testBuilder))
		})
	}
}

func TestBuilderRevenueHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(slog.Default())
	c.baseURL = server.URL
	c.httpClient = resty.NewWithClient(server.Client())

	assert.Zero(t, c.BuilderRevenue(context.Background(), testBuilder))
}
