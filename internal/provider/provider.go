package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Call fetches one category of data from an upstream. Implementations
// must honor ctx cancellation; the coordinator runs every call under a
// deadline.
type Call func(ctx context.Context) (any, error)

// InterestRate is a single reference rate published by a central bank
// or money-market source.
type InterestRate struct {
	Name       string          `json:"name"`
	Rate       decimal.Decimal `json:"rate"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}

// ExchangeRates holds one base currency's quoted rates.
type ExchangeRates struct {
	Base       string                     `json:"base"`
	Date       string                     `json:"date,omitempty"`
	Rates      map[string]decimal.Decimal `json:"rates"`
	Source     string                     `json:"source"`
	ReceivedAt time.Time                  `json:"received_at"`
}

// StockQuote is a normalized equity quote. Prices are decimals, not
// floats; financial values must not pick up binary rounding.
type StockQuote struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Open       decimal.Decimal `json:"open,omitempty"`
	High       decimal.Decimal `json:"high,omitempty"`
	Low        decimal.Decimal `json:"low,omitempty"`
	Volume     int64           `json:"volume,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}

// EconomicIndicator is one macro series observation (CPI, unemployment,
// GDP growth and the like).
type EconomicIndicator struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit,omitempty"`
	Period     string          `json:"period,omitempty"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}

// MarketSentiment is an aggregate market-mood score.
type MarketSentiment struct {
	Score      decimal.Decimal `json:"score"`
	Label      string          `json:"label,omitempty"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}
