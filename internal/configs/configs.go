package configs

type Config struct {
	Addr           string `json:"addr" yaml:"addr"`                       // listen address, default :8080
	CacheTTL       string `json:"cache_ttl" yaml:"cache_ttl"`             // response cache lifetime
	EnrichWorkers  int    `json:"enrich_workers" yaml:"enrich_workers"`   // concurrent project fetches
	MarketTimeout  string `json:"market_timeout" yaml:"market_timeout"`   // market data pass budget
	RequestTimeout string `json:"request_timeout" yaml:"request_timeout"` // per-request HTTP timeout
	Proxy          string `json:"proxy" yaml:"proxy"`

	Database Database `json:"database" yaml:"database"`

	CoinMarketCap CoinMarketCap `json:"coinmarketcap" yaml:"coinmarketcap"`
}

type Database struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"` // empty disables snapshot storage
}

type CoinMarketCap struct {
	APIKey string `json:"api_key" yaml:"api_key"` // COINMARKETCAP_API_KEY env takes precedence
}
