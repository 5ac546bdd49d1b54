// Package frankfurter fetches reference exchange rates from the
// Frankfurter API (https://frankfurter.dev), a keyless mirror of the
// ECB daily fixing.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finfeed/internal/httpx"
	"finfeed/internal/provider"
)

type Config struct {
	Name     string
	Endpoint string
	// Base currency of the returned table.
	Base string
	// Symbols restricts the table to these currencies. Empty means all.
	Symbols []string
}

type Client struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "frankfurter"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.frankfurter.dev/v1/latest"
	}
	if cfg.Base == "" {
		cfg.Base = "EUR"
	}
	return &Client{cfg: cfg, client: hc}
}

type apiResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rates fetches the latest rate table for the configured base.
func (c *Client) Rates(ctx context.Context) (*provider.ExchangeRates, error) {
	u := c.cfg.Endpoint + "?base=" + url.QueryEscape(c.cfg.Base)
	if len(c.cfg.Symbols) > 0 {
		u += "&symbols=" + url.QueryEscape(strings.Join(c.cfg.Symbols, ","))
	}

	body, err := c.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("frankfurter: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("frankfurter: decode: %w", err)
	}
	if len(api.Rates) == 0 {
		return nil, fmt.Errorf("frankfurter: empty rate table for base %s", c.cfg.Base)
	}

	return &provider.ExchangeRates{
		Base:       api.Base,
		Date:       api.Date,
		Rates:      api.Rates,
		Source:     c.cfg.Name,
		ReceivedAt: time.Now().UTC(),
	}, nil
}
