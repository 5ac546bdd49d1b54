package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finfeed/internal/config"
	"finfeed/internal/feed"
	"finfeed/internal/httpx"
	"finfeed/internal/logging"
	"finfeed/internal/provider/feargreed"
	"finfeed/internal/provider/frankfurter"
	"finfeed/internal/provider/stooq"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	svc := feed.New(feedConfig(cfg, logger), buildProviders(cfg, httpClient, logger))
	if err := svc.Initialize(); err != nil {
		log.Fatalf("initialize: %v", err)
	}
	defer svc.Destroy()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/cached", handleCached(svc))
	mux.HandleFunc("/api/status", handleStatus(svc))
	mux.HandleFunc("/api/refresh", handleRefresh(svc))
	mux.HandleFunc("/api/events", handleEvents(svc, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           recoverPanic(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func feedConfig(cfg config.Config, logger *slog.Logger) feed.Config {
	src := func(s config.Source) feed.SourceConfig {
		return feed.SourceConfig{
			Name:            s.Name,
			RateLimit:       s.RateLimit,
			Timeout:         s.Timeout(),
			TTL:             s.TTL(),
			RefreshInterval: s.RefreshInterval(),
		}
	}
	return feed.Config{
		InterestRates: src(cfg.InterestRates),
		ExchangeRates: src(cfg.ExchangeRates),
		Stocks:        src(cfg.Stocks),
		Indicators:    src(cfg.Indicators),
		Sentiment:     src(cfg.Sentiment),
		StockSymbols:  cfg.StockSymbols,
		Logger:        logger,
	}
}

func buildProviders(cfg config.Config, hc *httpx.Client, logger *slog.Logger) feed.Providers {
	var p feed.Providers
	if cfg.ExchangeRates.Enabled {
		fx := frankfurter.New(frankfurter.Config{
			Name:     cfg.ExchangeRates.Name,
			Endpoint: cfg.ExchangeRates.Endpoint,
		}, hc)
		p.ExchangeRates = fx.Rates
	}
	if cfg.Stocks.Enabled {
		st := stooq.New(stooq.Config{
			Name:     cfg.Stocks.Name,
			Endpoint: cfg.Stocks.Endpoint,
		}, hc)
		p.Stock = st.Quote
	}
	if cfg.Sentiment.Enabled {
		fg := feargreed.New(feargreed.Config{
			Name:     cfg.Sentiment.Name,
			Endpoint: cfg.Sentiment.Endpoint,
		}, hc)
		p.MarketSentiment = fg.Sentiment
	}
	// interest rates and economic indicators have no keyless bundled
	// upstream; they stay disabled unless a provider is injected
	if cfg.InterestRates.Enabled {
		logger.Warn("interest_rates enabled but no bundled provider; category disabled")
	}
	if cfg.Indicators.Enabled {
		logger.Warn("economic_indicators enabled but no bundled provider; category disabled")
	}
	return p
}
