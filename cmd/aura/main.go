package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/auralabs/aura/internal/cache"
	"github.com/auralabs/aura/internal/configs"
	"github.com/auralabs/aura/internal/data/enricher"
	"github.com/auralabs/aura/internal/data/sources/coingecko"
	"github.com/auralabs/aura/internal/data/sources/coinmarketcap"
	"github.com/auralabs/aura/internal/data/sources/defillama"
	"github.com/auralabs/aura/internal/data/sources/hyperliquid"
	"github.com/auralabs/aura/internal/data/storage"
	"github.com/auralabs/aura/internal/projects"
	"github.com/auralabs/aura/internal/server"
	"github.com/auralabs/aura/internal/utils/request"
)

var (
	flagconf string

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.json", "config path, eg: -conf config.json")
}

func main() {
	flag.Parse()

	// Local .env files hold secrets that never go into the config file.
	_ = godotenv.Load()

	config := &configs.Config{}
	configFile, err := os.ReadFile(flagconf)
	if err != nil {
		log.Error("Error reading config file", "err", err)
	} else if err := json.Unmarshal(configFile, config); err != nil {
		log.Error("Error parsing config file", "err", err)
		return
	}

	if key := os.Getenv("COINMARKETCAP_API_KEY"); key != "" {
		config.CoinMarketCap.APIKey = key
	}

	if config.RequestTimeout != "" {
		request.Request.SetTimeout(parseDuration(config.RequestTimeout, 15*time.Second))
	}

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		log.Debug("set proxy ok", "proxy", config.Proxy)
	}

	addr := config.Addr
	if addr == "" {
		addr = ":8080"
	}
	cacheTTL := parseDuration(config.CacheTTL, cache.DefaultTTL)
	marketTimeout := parseDuration(config.MarketTimeout, 25*time.Second)

	enr := enricher.New(
		defillama.NewClient(log),
		hyperliquid.NewClient(log),
		coinmarketcap.NewClient(config.CoinMarketCap.APIKey, log),
		coingecko.NewClient(log),
		config.EnrichWorkers,
		marketTimeout,
		log,
	)

	log.Debug("init enricher", "cmcEnabled", config.CoinMarketCap.APIKey != "")

	var store server.SnapshotStore
	if config.Database.ConnStr != "" {
		pg, err := storage.NewPostgresStorage(config.Database.ConnStr)
		if err != nil {
			log.Error("Error creating storage", "err", err)
			return
		}
		defer pg.Close()
		store = pg
		log.Debug("init storage")
	}

	srv := server.New(projects.All(), enr, cache.New(cacheTTL), store, log)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
