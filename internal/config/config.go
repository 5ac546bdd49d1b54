package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

// Source configures one data category's upstream: its request budget
// per 60s rate window, per-call timeout, cache TTL and re-fetch cadence.
type Source struct {
	Enabled           bool   `json:"enabled"`
	Name              string `json:"name"`
	Endpoint          string `json:"endpoint"`
	APIKey            string `json:"api_key"`
	RateLimit         int    `json:"rate_limit"`
	TimeoutMS         int    `json:"timeout_ms"`
	TTLMS             int    `json:"ttl_ms"`
	RefreshIntervalMS int    `json:"refresh_interval_ms"`
}

func (s Source) Timeout() time.Duration { return time.Duration(s.TimeoutMS) * time.Millisecond }

func (s Source) TTL() time.Duration { return time.Duration(s.TTLMS) * time.Millisecond }

func (s Source) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMS) * time.Millisecond
}

type Config struct {
	Server       Server   `json:"server"`
	LogLevel     string   `json:"log_level"`
	StockSymbols []string `json:"stock_symbols"`

	InterestRates Source `json:"interest_rates"`
	ExchangeRates Source `json:"exchange_rates"`
	Stocks        Source `json:"stocks"`
	Indicators    Source `json:"economic_indicators"`
	Sentiment     Source `json:"market_sentiment"`
}

func Default() Config {
	return Config{
		Server:       Server{Port: "8080", RequestTimeoutSec: 10},
		LogLevel:     "info",
		StockSymbols: []string{"AAPL.US", "MSFT.US", "SPY.US"},
		InterestRates: Source{
			Enabled:           false,
			Name:              "ecb",
			RateLimit:         10,
			TimeoutMS:         8000,
			TTLMS:             int(time.Hour / time.Millisecond),
			RefreshIntervalMS: int(time.Hour / time.Millisecond),
		},
		ExchangeRates: Source{
			Enabled:           true,
			Name:              "frankfurter",
			RateLimit:         10,
			TimeoutMS:         8000,
			TTLMS:             int(15 * time.Minute / time.Millisecond),
			RefreshIntervalMS: int(15 * time.Minute / time.Millisecond),
		},
		Stocks: Source{
			Enabled:           true,
			Name:              "stooq",
			RateLimit:         30,
			TimeoutMS:         8000,
			TTLMS:             int(5 * time.Minute / time.Millisecond),
			RefreshIntervalMS: int(5 * time.Minute / time.Millisecond),
		},
		Indicators: Source{
			Enabled:           false,
			Name:              "stats",
			RateLimit:         5,
			TimeoutMS:         8000,
			TTLMS:             int(24 * time.Hour / time.Millisecond),
			RefreshIntervalMS: int(6 * time.Hour / time.Millisecond),
		},
		Sentiment: Source{
			Enabled:           true,
			Name:              "feargreed",
			RateLimit:         10,
			TimeoutMS:         8000,
			TTLMS:             int(30 * time.Minute / time.Millisecond),
			RefreshIntervalMS: int(30 * time.Minute / time.Millisecond),
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does
// not exist, it returns defaults. Environment variables override select
// fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("STOCK_SYMBOLS"); v != "" {
		cfg.StockSymbols = splitCSV(v)
	}

	// API keys and endpoints stay out of config files
	if v := os.Getenv("INTEREST_RATES_API_KEY"); v != "" {
		cfg.InterestRates.APIKey = v
	}
	if v := os.Getenv("INTEREST_RATES_ENDPOINT"); v != "" {
		cfg.InterestRates.Endpoint = v
	}
	if v := os.Getenv("INDICATORS_API_KEY"); v != "" {
		cfg.Indicators.APIKey = v
	}
	if v := os.Getenv("INDICATORS_ENDPOINT"); v != "" {
		cfg.Indicators.Endpoint = v
	}
	if v := os.Getenv("EXCHANGE_RATES_ENDPOINT"); v != "" {
		cfg.ExchangeRates.Endpoint = v
	}
	if v := os.Getenv("STOCKS_ENDPOINT"); v != "" {
		cfg.Stocks.Endpoint = v
	}
	if v := os.Getenv("SENTIMENT_ENDPOINT"); v != "" {
		cfg.Sentiment.Endpoint = v
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
