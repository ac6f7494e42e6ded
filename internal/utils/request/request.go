package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request is the shared HTTP client for all provider adapters. No retries:
// a failed fetch is final for the current request cycle.
var Request = resty.New().SetTransport(&http.Transport{
	Proxy: http.ProxyFromEnvironment,
}).SetTimeout(15 * time.Second)
