// Package feargreed fetches the alternative.me Fear & Greed index as a
// market-sentiment score (0 = extreme fear, 100 = extreme greed).
package feargreed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finfeed/internal/httpx"
	"finfeed/internal/provider"
)

type Config struct {
	Name     string
	Endpoint string
}

type Client struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "feargreed"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.alternative.me/fng/"
	}
	return &Client{cfg: cfg, client: hc}
}

type apiResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
	} `json:"data"`
	Metadata struct {
		Error any `json:"error"`
	} `json:"metadata"`
}

// Sentiment fetches the current index reading.
func (c *Client) Sentiment(ctx context.Context) (*provider.MarketSentiment, error) {
	body, err := c.client.Get(ctx, c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("feargreed: %w", err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("feargreed: decode: %w", err)
	}
	if api.Metadata.Error != nil {
		return nil, fmt.Errorf("feargreed: upstream error: %v", api.Metadata.Error)
	}
	if len(api.Data) == 0 {
		return nil, fmt.Errorf("feargreed: empty data")
	}

	score, err := decimal.NewFromString(api.Data[0].Value)
	if err != nil {
		return nil, fmt.Errorf("feargreed: score %q: %w", api.Data[0].Value, err)
	}
	return &provider.MarketSentiment{
		Score:      score,
		Label:      api.Data[0].Classification,
		Source:     c.cfg.Name,
		ReceivedAt: time.Now().UTC(),
	}, nil
}
