package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"finfeed/internal/cache"
	"finfeed/internal/event"
	"finfeed/internal/netmon"
	"finfeed/internal/provider"
	"finfeed/internal/ratelimit"
	"finfeed/internal/sched"
)

// ErrNotConfigured is returned when a category has no provider wired.
var ErrNotConfigured = errors.New("no provider configured for category")

// ErrDestroyed is returned by fetch methods after Destroy.
var ErrDestroyed = errors.New("data service destroyed")

// SourceConfig describes one upstream's budget: how many requests per
// rate window, how long a call may take, how long results stay fresh,
// and how often the scheduler re-fetches.
type SourceConfig struct {
	Name            string
	RateLimit       int
	Timeout         time.Duration
	TTL             time.Duration
	RefreshInterval time.Duration
}

// Config wires the per-category sources into a Service.
type Config struct {
	InterestRates SourceConfig
	ExchangeRates SourceConfig
	Stocks        SourceConfig
	Indicators    SourceConfig
	Sentiment     SourceConfig

	// StockSymbols are refreshed by the scheduled stocks job.
	StockSymbols []string

	Clock  clock.Clock
	Logger *slog.Logger
}

// Providers bundles the injected per-category provider calls. Nil
// entries disable that category: no job is scheduled for it and manual
// fetches return ErrNotConfigured.
type Providers struct {
	InterestRates      func(ctx context.Context) ([]provider.InterestRate, error)
	ExchangeRates      func(ctx context.Context) (*provider.ExchangeRates, error)
	Stock              func(ctx context.Context, symbol string) (*provider.StockQuote, error)
	EconomicIndicators func(ctx context.Context) ([]provider.EconomicIndicator, error)
	MarketSentiment    func(ctx context.Context) (*provider.MarketSentiment, error)
}

// SourceStatus reports the outcome of a source's most recent attempt.
type SourceStatus struct {
	Source      string    `json:"source"`
	LastAttempt time.Time `json:"last_attempt"`
	LastSuccess time.Time `json:"last_success"`
	Healthy     bool      `json:"healthy"`
	ErrorCount  int       `json:"error_count"`
	LastError   string    `json:"last_error,omitempty"`
}

// Service is the facade owning one cache, one rate limiter and one
// scheduler. All category fetches funnel through the coordinator, so a
// slow or failing source can never block the others.
type Service struct {
	cfg       Config
	providers Providers

	clk     clock.Clock
	logger  *slog.Logger
	bus     *event.Bus
	cache   *cache.Store
	limiter *ratelimit.Limiter
	sched   *sched.Scheduler
	mon     *netmon.Monitor
	coord   *Coordinator

	mu        sync.Mutex
	status    map[string]*SourceStatus
	destroyed bool
}

func New(cfg Config, providers Providers) *Service {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limits := make(map[string]int)
	for _, sc := range []SourceConfig{cfg.InterestRates, cfg.ExchangeRates, cfg.Stocks, cfg.Indicators, cfg.Sentiment} {
		if sc.Name != "" {
			limits[sc.Name] = sc.RateLimit
		}
	}

	s := &Service{
		cfg:       cfg,
		providers: providers,
		clk:       clk,
		logger:    logger,
		bus:       event.NewBus(logger),
		cache:     cache.New(clk),
		limiter:   ratelimit.New(clk, limits),
		sched:     sched.New(clk, logger),
		status:    make(map[string]*SourceStatus),
	}
	s.mon = netmon.New(s.bus, s.sched, logger)
	s.coord = NewCoordinator(s.cache, s.limiter, s.mon, s.bus, clk, logger)
	return s
}

// Events exposes the bus consumers subscribe on.
func (s *Service) Events() *event.Bus { return s.bus }

// Monitor exposes the network monitor so the environment can feed it
// connectivity observations.
func (s *Service) Monitor() *netmon.Monitor { return s.mon }

// Initialize registers one recurring job per configured category. Each
// job fires immediately, so the cache warms on startup.
func (s *Service) Initialize() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	s.mu.Unlock()

	type catJob struct {
		category string
		cfg      SourceConfig
		enabled  bool
		run      func(ctx context.Context)
	}
	jobs := []catJob{
		{CategoryInterestRates, s.cfg.InterestRates, s.providers.InterestRates != nil,
			func(ctx context.Context) { _, _ = s.FetchInterestRates(ctx) }},
		{CategoryExchangeRates, s.cfg.ExchangeRates, s.providers.ExchangeRates != nil,
			func(ctx context.Context) { _, _ = s.FetchExchangeRates(ctx) }},
		{CategoryStocks, s.cfg.Stocks, s.providers.Stock != nil && len(s.cfg.StockSymbols) > 0,
			func(ctx context.Context) { _, _ = s.FetchStockData(ctx, s.cfg.StockSymbols) }},
		{CategoryEconomicIndicators, s.cfg.Indicators, s.providers.EconomicIndicators != nil,
			func(ctx context.Context) { _, _ = s.FetchEconomicIndicators(ctx) }},
		{CategoryMarketSentiment, s.cfg.Sentiment, s.providers.MarketSentiment != nil,
			func(ctx context.Context) { _, _ = s.FetchMarketSentiment(ctx) }},
	}

	for _, j := range jobs {
		if !j.enabled {
			continue
		}
		// scheduled ticks swallow the returned error: the coordinator
		// has already published it, and a failing job must keep its
		// place on the schedule
		if err := s.sched.Register(j.category, j.cfg.RefreshInterval, j.run); err != nil {
			return fmt.Errorf("register %s job: %w", j.category, err)
		}
		s.logger.Info("scheduled category refresh", "category", j.category,
			"source", j.cfg.Name, "interval", j.cfg.RefreshInterval)
	}
	return nil
}

// FetchInterestRates returns current reference interest rates.
func (s *Service) FetchInterestRates(ctx context.Context) ([]provider.InterestRate, error) {
	if s.providers.InterestRates == nil {
		return nil, ErrNotConfigured
	}
	v, err := s.fetchCategory(ctx, CategoryInterestRates, s.cfg.InterestRates, func(ctx context.Context) (any, error) {
		return s.providers.InterestRates(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]provider.InterestRate), nil
}

// FetchExchangeRates returns the current exchange-rate table.
func (s *Service) FetchExchangeRates(ctx context.Context) (*provider.ExchangeRates, error) {
	if s.providers.ExchangeRates == nil {
		return nil, ErrNotConfigured
	}
	v, err := s.fetchCategory(ctx, CategoryExchangeRates, s.cfg.ExchangeRates, func(ctx context.Context) (any, error) {
		return s.providers.ExchangeRates(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.ExchangeRates), nil
}

// FetchStockData fetches each symbol independently and returns the ones
// that succeeded. One symbol failing does not fail the rest; its error
// has already been published on the bus.
func (s *Service) FetchStockData(ctx context.Context, symbols []string) (map[string]*provider.StockQuote, error) {
	if s.providers.Stock == nil {
		return nil, ErrNotConfigured
	}
	if s.isDestroyed() {
		return nil, ErrDestroyed
	}

	sc := s.cfg.Stocks
	out := make(map[string]*provider.StockQuote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sym := range symbols {
		sym := sym
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := Request{
				Key:      sc.Name + ":" + CategoryStocks + ":" + sym,
				Source:   sc.Name,
				Category: CategoryStocks,
				TTL:      sc.TTL,
				Timeout:  sc.Timeout,
				Call: func(ctx context.Context) (any, error) {
					return s.providers.Stock(ctx, sym)
				},
			}
			v, err := s.coord.Fetch(ctx, req)
			s.recordAttempt(sc.Name, err)
			if err != nil {
				return
			}
			mu.Lock()
			out[sym] = v.(*provider.StockQuote)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out, nil
}

// FetchEconomicIndicators returns current macro indicator readings.
func (s *Service) FetchEconomicIndicators(ctx context.Context) ([]provider.EconomicIndicator, error) {
	if s.providers.EconomicIndicators == nil {
		return nil, ErrNotConfigured
	}
	v, err := s.fetchCategory(ctx, CategoryEconomicIndicators, s.cfg.Indicators, func(ctx context.Context) (any, error) {
		return s.providers.EconomicIndicators(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]provider.EconomicIndicator), nil
}

// FetchMarketSentiment returns the current market-sentiment score.
func (s *Service) FetchMarketSentiment(ctx context.Context) (*provider.MarketSentiment, error) {
	if s.providers.MarketSentiment == nil {
		return nil, ErrNotConfigured
	}
	v, err := s.fetchCategory(ctx, CategoryMarketSentiment, s.cfg.Sentiment, func(ctx context.Context) (any, error) {
		return s.providers.MarketSentiment(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.MarketSentiment), nil
}

func (s *Service) fetchCategory(ctx context.Context, category string, sc SourceConfig, call provider.Call) (any, error) {
	if s.isDestroyed() {
		return nil, ErrDestroyed
	}
	v, err := s.coord.Fetch(ctx, Request{
		Key:      sc.Name + ":" + category,
		Source:   sc.Name,
		Category: category,
		TTL:      sc.TTL,
		Timeout:  sc.Timeout,
		Call:     call,
	})
	s.recordAttempt(sc.Name, err)
	return v, err
}

// AllCachedData returns every currently fresh cache entry keyed by
// fetch key.
func (s *Service) AllCachedData() map[string]any {
	return s.cache.Snapshot()
}

// ClearCache evicts the given keys, or everything when none are given.
func (s *Service) ClearCache(keys ...string) {
	if len(keys) == 0 {
		s.cache.EvictAll()
		return
	}
	for _, k := range keys {
		s.cache.Evict(k)
	}
}

// SourceStatus reports, per source, whether its last attempt succeeded
// and when.
func (s *Service) SourceStatus() map[string]SourceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]SourceStatus, len(s.status))
	for name, st := range s.status {
		out[name] = *st
	}
	return out
}

// Destroy tears the service down: scheduler destroyed, cache and
// rate-limit state cleared, all event listeners removed. Idempotent and
// irreversible. In-flight fetches are not aborted; their results are
// simply discarded with the cache.
func (s *Service) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.mu.Unlock()

	s.mon.Stop()
	s.sched.Destroy()
	s.cache.EvictAll()
	s.limiter.Reset()
	s.bus.RemoveAll()
	s.logger.Info("data service destroyed")
}

func (s *Service) isDestroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Service) recordAttempt(source string, err error) {
	now := s.clk.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[source]
	if !ok {
		st = &SourceStatus{Source: source}
		s.status[source] = st
	}
	st.LastAttempt = now
	if err != nil {
		st.Healthy = false
		st.ErrorCount++
		st.LastError = err.Error()
		return
	}
	st.Healthy = true
	st.LastSuccess = now
	st.LastError = ""
}
