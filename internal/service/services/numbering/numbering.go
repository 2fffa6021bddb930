package numbering

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamthreads/storefront/order/internal/metric"
	"github.com/teamthreads/storefront/order/internal/service/models/environment"
	"github.com/teamthreads/storefront/order/internal/service/models/ordernumber"
	"github.com/teamthreads/storefront/order/pkg/logger/sl"
)

// ledgerRepository is the subset of the ledger store the allocator needs.
type ledgerRepository interface {
	AppendPlaceholder(ctx context.Context, env string) (int64, error)
	SetSequenceValue(ctx context.Context, position int64, value string) error
}

// Allocator mints globally unique order numbers. Uniqueness derives from the
// ledger store's atomic append, not from read-then-write. The ledger is one
// global sequence shared by all environments; the environment tag on the row
// is metadata only.
type Allocator struct {
	ledgerRepo    ledgerRepository
	env           environment.Environment
	appendTimeout time.Duration
	now           func() time.Time
}

// option is a function that configures the Allocator.
type option func(*Allocator)

// MustNewAllocator creates a new Allocator.
func MustNewAllocator(opts ...option) *Allocator {
	a := &Allocator{
		env:           environment.Current(),
		appendTimeout: 3 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ledgerRepo == nil {
		panic("numbering: ledger repository is required")
	}

	return a
}

// WithLedgerRepository sets the ledger store for the Allocator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLedgerRepository(repo ledgerRepository) option {
	return func(a *Allocator) {
		a.ledgerRepo = repo
	}
}

// WithEnvironment overrides the environment tag.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEnvironment(env environment.Environment) option {
	return func(a *Allocator) {
		a.env = env
	}
}

// WithAppendTimeout bounds the ledger append call.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAppendTimeout(d time.Duration) option {
	return func(a *Allocator) {
		a.appendTimeout = d
	}
}

// WithClock overrides the allocator's clock.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(a *Allocator) {
		a.now = now
	}
}

// Allocate mints an order number for the store. It never fails: when the
// ledger append cannot complete, the sequence degrades to a timestamp-derived
// value and the allocation is reported as degraded. Collisions on the
// fallback path are acceptable; it only runs outside normal production
// operation.
func (a *Allocator) Allocate(ctx context.Context, storeSlug, prefix string) (ordernumber.OrderNumber, bool) {
	now := a.now()

	appendCtx, cancel := context.WithTimeout(ctx, a.appendTimeout)
	defer cancel()

	position, err := a.ledgerRepo.AppendPlaceholder(appendCtx, a.env.String())
	if err != nil {
		sequence := now.UnixMilli() % 1_000_000
		number := ordernumber.Format(prefix, a.env, storeSlug, now, sequence)

		metric.AllocationFallbacks.Inc()
		slog.Warn("Order numbering degraded to timestamp-derived sequence",
			"store", storeSlug,
			"sequence", sequence,
			"error", err,
			sl.Traced(ctx),
		)

		return number, true
	}

	number := ordernumber.Format(prefix, a.env, storeSlug, now, position)

	// The sequence is already fixed by the row position; filling in the
	// display value is best-effort.
	if err := a.ledgerRepo.SetSequenceValue(ctx, position, number.Short); err != nil {
		slog.Warn("Failed to backfill sequence display value",
			"position", position,
			"error", err,
			sl.Traced(ctx),
		)
	}

	return number, false
}
