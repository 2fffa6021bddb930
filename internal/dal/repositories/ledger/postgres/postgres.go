package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/teamthreads/storefront/order/internal/dal/postgres"
	"github.com/teamthreads/storefront/order/internal/metric"
	"github.com/teamthreads/storefront/order/internal/service/models/ledger"
)

// LedgerRepository implements the append-only ledger store on PostgreSQL.
//
// The bigserial primary key of sequence_ledger provides the atomic
// "append returns row position" contract the allocator depends on: the
// database assigns the position, never the application.
type LedgerRepository struct {
	client *postgres.Client
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(client *postgres.Client) *LedgerRepository {
	return &LedgerRepository{
		client: client,
	}
}

// AppendPlaceholder appends a sequence row and returns its assigned position.
func (r *LedgerRepository) AppendPlaceholder(ctx context.Context, env string) (int64, error) {
	query, args, err := sq.Insert("sequence_ledger").
		Columns("allocated_at", "environment", "sequence_value").
		Values(time.Now(), env, "").
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sequence append query: %w", err)
	}

	var position int64
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(&position); err != nil {
		metric.LedgerOperations.WithLabelValues("append_sequence", "error").Inc()

		return 0, fmt.Errorf("failed to append sequence row: %w", err)
	}
	metric.LedgerOperations.WithLabelValues("append_sequence", "ok").Inc()

	return position, nil
}

// SetSequenceValue fills the human-readable value of an allocated row.
func (r *LedgerRepository) SetSequenceValue(ctx context.Context, position int64, value string) error {
	query, args, err := sq.Update("sequence_ledger").
		Set("sequence_value", value).
		Where(sq.Eq{"id": position}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sequence update query: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update sequence row %d: %w", position, err)
	}

	return nil
}

// InsertOrderRows appends the flattened order-history rows in one statement.
func (r *LedgerRepository) InsertOrderRows(ctx context.Context, rows []ledger.OrderRow) error {
	if len(rows) == 0 {
		return nil
	}

	builder := sq.Insert("order_rows").
		Columns(
			"order_number",
			"order_date",
			"environment",
			"store_slug",
			"customer_email",
			"customer_name",
			"customer_phone",
			"product_id",
			"product_name",
			"size",
			"item_price",
			"design_options",
			"custom_options",
			"item_total",
			"order_total",
			"document_filename",
		).
		PlaceholderFormat(sq.Dollar)

	for _, row := range rows {
		builder = builder.Values(
			row.OrderNumber,
			row.OrderDate,
			row.Environment,
			row.StoreSlug,
			row.CustomerEmail,
			row.CustomerName,
			row.CustomerPhone,
			row.ProductID,
			row.ProductName,
			row.Size,
			row.ItemPrice,
			row.DesignOptions,
			row.CustomOptions,
			row.ItemTotal,
			row.OrderTotal,
			row.DocumentFilename,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order rows insert: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		metric.LedgerOperations.WithLabelValues("insert_order_rows", "error").Inc()

		return fmt.Errorf("failed to insert order rows: %w", err)
	}
	metric.LedgerOperations.WithLabelValues("insert_order_rows", "ok").Inc()

	return nil
}
