package feed

import "finfeed/internal/netmon"

// Data categories. Each category maps to one scheduled job and one
// data:<category> event.
const (
	CategoryInterestRates      = "interest-rates"
	CategoryExchangeRates      = "exchange-rates"
	CategoryStocks             = "stocks"
	CategoryEconomicIndicators = "economic-indicators"
	CategoryMarketSentiment    = "market-sentiment"
)

// EventError carries a *feed.Error payload.
const EventError = "error"

// Connectivity transition events, re-exported from the monitor so
// consumers only need this package's names.
const (
	EventNetworkOnline  = netmon.EventOnline
	EventNetworkOffline = netmon.EventOffline
)

// DataEvent returns the event name announcing fresh data for category.
func DataEvent(category string) string {
	return "data:" + category
}

// Categories lists every data category in a stable order.
func Categories() []string {
	return []string{
		CategoryInterestRates,
		CategoryExchangeRates,
		CategoryStocks,
		CategoryEconomicIndicators,
		CategoryMarketSentiment,
	}
}
