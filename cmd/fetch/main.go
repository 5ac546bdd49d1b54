package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
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

// one-shot fetch of selected categories, printed as JSON. Useful for
// poking upstreams without running the server.
func main() {
	var categoriesCSV string
	var symbolsCSV string
	var timeout int
	var configPath string

	flag.StringVar(&categoriesCSV, "categories", "exchange-rates,stocks,market-sentiment", "comma-separated categories to fetch")
	flag.StringVar(&symbolsCSV, "symbols", os.Getenv("STOCK_SYMBOLS"), "comma-separated stock symbols")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	if symbolsCSV != "" {
		cfg.StockSymbols = splitCSV(symbolsCSV)
	}

	logger := logging.New(cfg.LogLevel)
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	var providers feed.Providers
	if cfg.ExchangeRates.Enabled {
		providers.ExchangeRates = frankfurter.New(frankfurter.Config{Name: cfg.ExchangeRates.Name, Endpoint: cfg.ExchangeRates.Endpoint}, httpClient).Rates
	}
	if cfg.Stocks.Enabled {
		providers.Stock = stooq.New(stooq.Config{Name: cfg.Stocks.Name, Endpoint: cfg.Stocks.Endpoint}, httpClient).Quote
	}
	if cfg.Sentiment.Enabled {
		providers.MarketSentiment = feargreed.New(feargreed.Config{Name: cfg.Sentiment.Name, Endpoint: cfg.Sentiment.Endpoint}, httpClient).Sentiment
	}

	src := func(s config.Source) feed.SourceConfig {
		return feed.SourceConfig{Name: s.Name, RateLimit: s.RateLimit, Timeout: s.Timeout(), TTL: s.TTL(), RefreshInterval: s.RefreshInterval()}
	}
	svc := feed.New(feed.Config{
		InterestRates: src(cfg.InterestRates),
		ExchangeRates: src(cfg.ExchangeRates),
		Stocks:        src(cfg.Stocks),
		Indicators:    src(cfg.Indicators),
		Sentiment:     src(cfg.Sentiment),
		StockSymbols:  cfg.StockSymbols,
		Logger:        logger,
	}, providers)
	defer svc.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	out := make(map[string]any)
	for _, category := range splitCSV(categoriesCSV) {
		var v any
		var err error
		switch category {
		case feed.CategoryInterestRates:
			v, err = svc.FetchInterestRates(ctx)
		case feed.CategoryExchangeRates:
			v, err = svc.FetchExchangeRates(ctx)
		case feed.CategoryStocks:
			v, err = svc.FetchStockData(ctx, cfg.StockSymbols)
		case feed.CategoryEconomicIndicators:
			v, err = svc.FetchEconomicIndicators(ctx)
		case feed.CategoryMarketSentiment:
			v, err = svc.FetchMarketSentiment(ctx)
		default:
			log.Fatalf("unknown category %q", category)
		}
		if err != nil {
			out[category] = map[string]string{"error": err.Error()}
			continue
		}
		out[category] = v
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
