// Package stooq fetches delayed equity quotes from stooq.com's keyless
// CSV endpoint.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finfeed/internal/httpx"
	"finfeed/internal/provider"
)

type Config struct {
	Name     string
	Endpoint string
	Currency string
}

type Client struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "stooq"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://stooq.com/q/l/"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Client{cfg: cfg, client: hc}
}

// Quote fetches the latest quote for one symbol, e.g. "AAPL.US".
func (c *Client) Quote(ctx context.Context, symbol string) (*provider.StockQuote, error) {
	u := c.cfg.Endpoint + "?s=" + url.QueryEscape(strings.ToLower(symbol)) + "&f=sd2t2ohlcv&h&e=csv"
	body, err := c.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("stooq: %w", err)
	}
	q, err := parseQuoteCSV(body, symbol)
	if err != nil {
		return nil, fmt.Errorf("stooq: %w", err)
	}
	q.Currency = c.cfg.Currency
	q.Source = c.cfg.Name
	q.ReceivedAt = time.Now().UTC()
	return q, nil
}

// parseQuoteCSV decodes stooq's single-row CSV answer:
//
//	Symbol,Date,Time,Open,High,Low,Close,Volume
//	AAPL.US,2026-08-28,22:00:11,230.2,233.4,229.9,232.1,51234567
//
// Unknown symbols come back with "N/D" fields.
func parseQuoteCSV(body []byte, symbol string) (*provider.StockQuote, error) {
	r := csv.NewReader(strings.NewReader(string(body)))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 || len(rows[1]) < 8 {
		return nil, fmt.Errorf("unexpected csv shape for %s", symbol)
	}
	row := rows[1]
	if row[6] == "N/D" {
		return nil, fmt.Errorf("no data for symbol %s", symbol)
	}

	price, err := decimal.NewFromString(row[6])
	if err != nil {
		return nil, fmt.Errorf("close price %q: %w", row[6], err)
	}
	q := &provider.StockQuote{Symbol: strings.ToUpper(row[0]), Price: price}

	// open/high/low/volume are best effort; a quote is usable with just
	// the close
	if v, err := decimal.NewFromString(row[3]); err == nil {
		q.Open = v
	}
	if v, err := decimal.NewFromString(row[4]); err == nil {
		q.High = v
	}
	if v, err := decimal.NewFromString(row[5]); err == nil {
		q.Low = v
	}
	if v, err := strconv.ParseInt(row[7], 10, 64); err == nil {
		q.Volume = v
	}
	return q, nil
}
