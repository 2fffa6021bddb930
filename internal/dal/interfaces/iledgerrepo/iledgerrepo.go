package iledgerrepo

import (
	"context"

	"github.com/teamthreads/storefront/order/internal/service/models/ledger"
)

// ILedgerRepository is the append-only ledger store interface.
//
// AppendPlaceholder must be atomic: the position it returns is assigned by
// the backing store on append and is the single source of sequence
// uniqueness across concurrent allocations.
type ILedgerRepository interface {
	// AppendPlaceholder appends a sequence row and returns its assigned position.
	AppendPlaceholder(ctx context.Context, env string) (int64, error)

	// SetSequenceValue fills the human-readable value of an allocated row.
	// Best-effort: the sequence is already determined by the row position.
	SetSequenceValue(ctx context.Context, position int64, value string) error

	// InsertOrderRows appends the flattened order-history rows.
	InsertOrderRows(ctx context.Context, rows []ledger.OrderRow) error
}
