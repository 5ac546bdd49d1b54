package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"finfeed/internal/cache"
	"finfeed/internal/event"
	"finfeed/internal/provider"
	"finfeed/internal/ratelimit"
)

// Connectivity answers whether the network is currently usable. An
// offline answer fails a fetch before any rate-limit slot is consumed.
//
//go:generate mockgen -package=feed_test -destination=mock_connectivity_test.go -source=coordinator.go Connectivity
type Connectivity interface {
	Online() bool
}

// Request describes one coordinated fetch.
type Request struct {
	// Key identifies the cache slot, e.g. "ecb:interest-rates" or
	// "stooq:stocks:AAPL.US".
	Key string
	// Source is the upstream name used for rate limiting and errors.
	Source string
	// Category names the data event emitted on success.
	Category string
	// TTL is how long a successful result stays fresh.
	TTL time.Duration
	// Timeout bounds the provider call.
	Timeout time.Duration
	// Call performs the actual provider request.
	Call provider.Call
}

// Coordinator wraps provider calls with cache-first reads, in-flight
// de-duplication, rate limiting, an offline pre-check and a deadline.
// Failures are published on the bus and never disturb a previously
// cached value: stale-but-present beats absent.
type Coordinator struct {
	cache   *cache.Store
	limiter *ratelimit.Limiter
	conn    Connectivity
	bus     *event.Bus
	clk     clock.Clock
	logger  *slog.Logger

	group singleflight.Group
}

func NewCoordinator(store *cache.Store, limiter *ratelimit.Limiter, conn Connectivity, bus *event.Bus, clk clock.Clock, logger *slog.Logger) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cache:   store,
		limiter: limiter,
		conn:    conn,
		bus:     bus,
		clk:     clk,
		logger:  logger,
	}
}

// Fetch returns a fresh cached value when one exists, otherwise joins
// or starts the single in-flight call for req.Key. Concurrent callers
// for the same key share one provider call and one outcome.
func (c *Coordinator) Fetch(ctx context.Context, req Request) (any, error) {
	if v, ok := c.cache.Get(req.Key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(req.Key, func() (any, error) {
		// a concurrent caller may have populated the cache between our
		// miss and joining the flight
		if v, ok := c.cache.Get(req.Key); ok {
			return v, nil
		}
		return c.doFetch(ctx, req)
	})
	return v, err
}

func (c *Coordinator) doFetch(ctx context.Context, req Request) (any, error) {
	startedAt := c.clk.Now()

	if !c.conn.Online() {
		return nil, c.fail(newError(ErrTypeNetworkUnavailable, req.Source, req.Key, nil))
	}
	if !c.limiter.TryAcquire(req.Source) {
		return nil, c.fail(newError(ErrTypeRateLimitExceeded, req.Source, req.Key, nil))
	}

	callCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	value, err := req.Call(callCtx)
	if err != nil {
		t := ErrTypeProvider
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			t = ErrTypeTimeout
		}
		return nil, c.fail(newError(t, req.Source, req.Key, err))
	}

	// stamp the write with the call start time so a slower fetch that
	// settles late cannot clobber fresher data
	if !c.cache.SetIfNewer(req.Key, value, req.TTL, startedAt) {
		c.logger.Debug("discarding out-of-order fetch result", "key", req.Key)
		if v, ok := c.cache.Get(req.Key); ok {
			return v, nil
		}
		return value, nil
	}

	c.bus.Emit(DataEvent(req.Category), value)
	return value, nil
}

func (c *Coordinator) fail(fe *Error) error {
	c.logger.Debug("fetch failed", "key", fe.Key, "source", fe.Source, "type", string(fe.Type), "cause", fe.Cause)
	c.bus.Emit(EventError, fe)
	return fe
}
