package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/teamthreads/storefront/order/internal/dal/postgres"
	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
)

// CatalogRepository implements the read-only catalog store on PostgreSQL.
type CatalogRepository struct {
	client *postgres.Client
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(client *postgres.Client) *CatalogRepository {
	return &CatalogRepository{
		client: client,
	}
}

// Products returns the products of a store with their size tables.
// An empty storeSlug selects the default catalog partition.
func (r *CatalogRepository) Products(ctx context.Context, storeSlug string) ([]catalog.Product, error) {
	query, args, err := sq.Select("id", "name", "base_price", "store_slug").
		From("products").
		Where(sq.Eq{"store_slug": storeSlug}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.BasePrice, &p.StoreSlug); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	for i := range products {
		sizes, err := r.productSizes(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].AvailableSizes = sizes
	}

	return products, nil
}

func (r *CatalogRepository) productSizes(ctx context.Context, productID string) ([]catalog.SizeOption, error) {
	query, args, err := sq.Select("size", "upcharge").
		From("product_sizes").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("position").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sizes query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product sizes: %w", err)
	}
	defer rows.Close()

	var sizes []catalog.SizeOption
	for rows.Next() {
		var s catalog.SizeOption
		if err := rows.Scan(&s.Size, &s.Upcharge); err != nil {
			return nil, fmt.Errorf("failed to scan product size: %w", err)
		}
		sizes = append(sizes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sizes: %w", err)
	}

	return sizes, nil
}

// DesignOptions returns all selectable design options.
func (r *CatalogRepository) DesignOptions(ctx context.Context) ([]catalog.DesignOption, error) {
	query, args, err := sq.Select("number", "title", "price").
		From("design_options").
		OrderBy("number").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build design options query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query design options: %w", err)
	}
	defer rows.Close()

	var options []catalog.DesignOption
	for rows.Next() {
		var o catalog.DesignOption
		if err := rows.Scan(&o.Number, &o.Title, &o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan design option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating design options: %w", err)
	}

	return options, nil
}

// CustomizationOptions returns all selectable customization options.
func (r *CatalogRepository) CustomizationOptions(ctx context.Context) ([]catalog.CustomizationOption, error) {
	query, args, err := sq.Select("number", "title", "price").
		From("customization_options").
		OrderBy("number").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build customization options query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customization options: %w", err)
	}
	defer rows.Close()

	var options []catalog.CustomizationOption
	for rows.Next() {
		var o catalog.CustomizationOption
		if err := rows.Scan(&o.Number, &o.Title, &o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan customization option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customization options: %w", err)
	}

	return options, nil
}

// Config returns the normalized store configuration. Raw rows are key/value
// pairs; historical key aliases are resolved once here.
func (r *CatalogRepository) Config(ctx context.Context, storeSlug string) (catalog.StoreConfig, error) {
	query, args, err := sq.Select("key", "value").
		From("store_config").
		Where(sq.Eq{"store_slug": storeSlug}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return catalog.StoreConfig{}, fmt.Errorf("failed to build config query: %w", err)
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return catalog.StoreConfig{}, fmt.Errorf("failed to query store config: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return catalog.StoreConfig{}, fmt.Errorf("failed to scan config row: %w", err)
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return catalog.StoreConfig{}, fmt.Errorf("error iterating config rows: %w", err)
	}

	return catalog.NormalizeConfig(storeSlug, raw), nil
}
