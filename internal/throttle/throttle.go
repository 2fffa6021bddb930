package throttle

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/teamthreads/storefront/order/internal/metric"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed      bool
	Limit        int
	Remaining    int
	ResetInMs    int64
	CurrentCount int
}

type entry struct {
	windowStart time.Time
	count       int
}

// Limiter is a fixed-window per-key admission controller. Counters live in
// process memory, so the guarantee is best-effort per instance; a shared
// counter store would be needed for a strict multi-instance limit.
type Limiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	limit    int
	window   time.Duration
	sweepGap time.Duration
	now      func() time.Time
}

// option is a function that configures the Limiter.
type option func(*Limiter)

// NewLimiter creates a limiter allowing limit admissions per window.
func NewLimiter(limit int, window time.Duration, opts ...option) *Limiter {
	l := &Limiter{
		entries:  make(map[string]*entry),
		limit:    limit,
		window:   window,
		sweepGap: window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// WithClock overrides the limiter's clock.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithSweepInterval overrides how often expired windows are evicted.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSweepInterval(gap time.Duration) option {
	return func(l *Limiter) {
		l.sweepGap = gap
	}
}

// Admit checks whether a request from the given client key may proceed.
// The count keeps incrementing on repeated denials; only window expiry
// resets it.
func (l *Limiter) Admit(clientKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[clientKey]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[clientKey] = &entry{windowStart: now, count: 1}
		metric.ThrottleKeys.Set(float64(len(l.entries)))
		metric.ThrottleDecisions.WithLabelValues("allowed").Inc()

		return Decision{
			Allowed:      true,
			Limit:        l.limit,
			Remaining:    l.limit - 1,
			ResetInMs:    l.window.Milliseconds(),
			CurrentCount: 1,
		}
	}

	e.count++
	resetIn := l.window - now.Sub(e.windowStart)
	remaining := l.limit - e.count
	if remaining < 0 {
		remaining = 0
	}

	allowed := e.count <= l.limit
	if allowed {
		metric.ThrottleDecisions.WithLabelValues("allowed").Inc()
	} else {
		metric.ThrottleDecisions.WithLabelValues("denied").Inc()
	}

	return Decision{
		Allowed:      allowed,
		Limit:        l.limit,
		Remaining:    remaining,
		ResetInMs:    resetIn.Milliseconds(),
		CurrentCount: e.count,
	}
}

// Sweep removes entries whose window has expired and returns how many were
// evicted.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
			evicted++
		}
	}
	metric.ThrottleKeys.Set(float64(len(l.entries)))

	return evicted
}

// Run sweeps expired entries on a fixed cadence until the context is done.
// The cadence is time-based rather than request-based so memory stays
// bounded under bursty traffic with few distinct keys.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.sweepGap)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Throttle sweeper shutting down")

			return
		case <-ticker.C:
			if evicted := l.Sweep(); evicted > 0 {
				slog.Debug("Throttle sweep evicted expired windows", "evicted", evicted)
			}
		}
	}
}

// clientKeyHeaders are checked in order: platform-trusted forwarding headers
// first, generic ones after.
var clientKeyHeaders = []string{
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// ClientKey derives the rate-limit key from the request's network identity.
// It never fails: when no IP-like value is found it returns "unknown".
func ClientKey(r *http.Request) string {
	for _, header := range clientKeyHeaders {
		value := strings.TrimSpace(r.Header.Get(header))
		if value == "" {
			continue
		}
		// X-Forwarded-For may carry a hop list; the first hop is the client.
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		if value != "" {
			return value
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
