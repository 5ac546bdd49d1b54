package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"finfeed/internal/feed"
)

func handleCached(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, svc.AllCachedData())
	}
}

func handleStatus(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, svc.SourceStatus())
	}
}

// handleRefresh triggers one manual fetch for ?category=, bypassing the
// schedule. Stale cache still applies: a fresh cached value is returned
// without a provider call.
func handleRefresh(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()

		var result any
		var err error
		switch category := r.URL.Query().Get("category"); category {
		case feed.CategoryInterestRates:
			result, err = svc.FetchInterestRates(ctx)
		case feed.CategoryExchangeRates:
			result, err = svc.FetchExchangeRates(ctx)
		case feed.CategoryStocks:
			symbols := splitCSV(r.URL.Query().Get("symbols"))
			if len(symbols) == 0 {
				http.Error(w, "missing symbols query param", http.StatusBadRequest)
				return
			}
			result, err = svc.FetchStockData(ctx, symbols)
		case feed.CategoryEconomicIndicators:
			result, err = svc.FetchEconomicIndicators(ctx)
		case feed.CategoryMarketSentiment:
			result, err = svc.FetchMarketSentiment(ctx)
		default:
			http.Error(w, "unknown category "+category, http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func statusFor(err error) int {
	switch {
	case err == feed.ErrNotConfigured:
		return http.StatusNotFound
	case feed.IsType(err, feed.ErrTypeRateLimitExceeded):
		return http.StatusTooManyRequests
	case feed.IsType(err, feed.ErrTypeNetworkUnavailable):
		return http.StatusServiceUnavailable
	case feed.IsType(err, feed.ErrTypeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
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
