package icatalogrepo

import (
	"context"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
)

// ICatalogRepository is the read-only catalog store interface.
type ICatalogRepository interface {
	Products(ctx context.Context, storeSlug string) ([]catalog.Product, error)
	DesignOptions(ctx context.Context) ([]catalog.DesignOption, error)
	CustomizationOptions(ctx context.Context) ([]catalog.CustomizationOption, error)
	Config(ctx context.Context, storeSlug string) (catalog.StoreConfig, error)
}
