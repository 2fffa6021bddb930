package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/teamthreads/storefront/order/internal/dal/cache"
	"github.com/teamthreads/storefront/order/internal/dal/interfaces/icatalogrepo"
	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/environment"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/ordernumber"
	"github.com/teamthreads/storefront/order/internal/service/services/pricingsvc"
	"github.com/teamthreads/storefront/order/pkg/logger/sl"
)

// ErrPriceTamper is returned when the submission's declared prices deviate
// from the catalog. The client only ever sees a generic rejection; the
// discrepancy detail stays in the audit log.
var ErrPriceTamper = errors.New("order verification failed")

// allocator mints order numbers; the bool reports a degraded allocation.
type allocator interface {
	Allocate(ctx context.Context, storeSlug, prefix string) (ordernumber.OrderNumber, bool)
}

// orchestrator runs the post-acceptance fulfillment pipeline.
type orchestrator interface {
	Fulfill(ctx context.Context, o *order.Order, cfg catalog.StoreConfig) error
}

// escalator records pipeline failures for a human operator.
type escalator interface {
	Record(ctx context.Context, failureContext string, cause error, o *order.Order)
}

// OrderService is the order submission pipeline: catalog-backed price
// verification, total recomputation, order-number allocation and tolerant
// fulfillment. Read-side catalog lookups are served through a TTL cache;
// the submission path always fetches fresh.
type OrderService struct {
	catalogRepo  icatalogrepo.ICatalogRepository
	pricing      *pricingsvc.PricingService
	allocator    allocator
	orchestrator orchestrator
	escalator    escalator
	readCache    *cache.Cache
	env          environment.Environment
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		pricing: pricingsvc.NewPricingService(),
		env:     environment.Current(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalogRepo == nil || s.allocator == nil || s.orchestrator == nil {
		panic("ordersvc: catalog repository, allocator and orchestrator are required")
	}

	return s
}

// WithCatalogRepository sets the catalog store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo icatalogrepo.ICatalogRepository) option {
	return func(s *OrderService) {
		s.catalogRepo = repo
	}
}

// WithAllocator sets the order-number allocator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAllocator(a allocator) option {
	return func(s *OrderService) {
		s.allocator = a
	}
}

// WithOrchestrator sets the fulfillment pipeline.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrchestrator(o orchestrator) option {
	return func(s *OrderService) {
		s.orchestrator = o
	}
}

// WithEscalator sets the failure escalation path.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEscalator(e escalator) option {
	return func(s *OrderService) {
		s.escalator = e
	}
}

// WithReadCache sets the cache for read-side catalog endpoints.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReadCache(c *cache.Cache) option {
	return func(s *OrderService) {
		s.readCache = c
	}
}

// WithEnvironment overrides the environment tag.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEnvironment(env environment.Environment) option {
	return func(s *OrderService) {
		s.env = env
	}
}

// fetchSnapshot fetches the catalog fresh; the verifier never trusts a
// request-scoped cache, to defeat staleness-based tampering.
func (s *OrderService) fetchSnapshot(ctx context.Context, storeSlug string) (*catalog.Snapshot, error) {
	products, err := s.catalogRepo.Products(ctx, storeSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	designOptions, err := s.catalogRepo.DesignOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch design options: %w", err)
	}
	customizationOptions, err := s.catalogRepo.CustomizationOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customization options: %w", err)
	}

	return &catalog.Snapshot{
		Products:             products,
		DesignOptions:        designOptions,
		CustomizationOptions: customizationOptions,
	}, nil
}

// Submit runs the full pipeline for one validated submission. On success
// the returned order carries its number and the recomputed totals. The
// order-number allocation plus the order-rows write is the durability
// point; later fulfillment failures do not fail the submission.
func (s *OrderService) Submit(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("order-pipeline").Start(ctx, "ordersvc.Submit")
	defer span.End()

	snapshot, err := s.fetchSnapshot(ctx, o.StoreSlug)
	if err != nil {
		return order.Order{}, err
	}

	result := s.pricing.Verify(o.Items, snapshot)
	if !result.Valid {
		// Security-relevant event, distinct from ordinary validation
		// failure. The detail stays server-side.
		slog.Warn("Price verification rejected submission",
			"store", o.StoreSlug,
			"email", o.ContactInfo.Email,
			"discrepancies", result.Discrepancies,
			sl.Traced(ctx),
		)

		return order.Order{}, ErrPriceTamper
	}

	items, total, err := s.pricing.RecomputeTotals(o.Items, snapshot)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to recompute totals: %w", err)
	}
	o.Items = items
	o.TotalAmount = total
	o.OrderDate = time.Now()
	o.Environment = s.env

	cfg, err := s.catalogRepo.Config(ctx, o.StoreSlug)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to fetch store config: %w", err)
	}

	number, degraded := s.allocator.Allocate(ctx, o.StoreSlug, cfg.OrderNumberPrefix)
	o.OrderNumber = number.Full
	o.ShortOrderNumber = number.Short
	if degraded {
		slog.Warn("Order accepted with degraded numbering",
			"order_number", o.OrderNumber, sl.Traced(ctx))
	}

	if err := s.orchestrator.Fulfill(ctx, &o, cfg); err != nil {
		if s.escalator != nil {
			s.escalator.Record(ctx, "fulfillment", err, &o)
		}

		return order.Order{}, err
	}

	return o, nil
}

// GetProducts serves the read-side product list through the TTL cache.
func (s *OrderService) GetProducts(ctx context.Context, storeSlug string) ([]catalog.Product, error) {
	key := "products:" + storeSlug
	if s.readCache != nil {
		if cached, ok := s.readCache.Get(key); ok {
			return cached.([]catalog.Product), nil
		}
	}

	products, err := s.catalogRepo.Products(ctx, storeSlug)
	if err != nil {
		return nil, err
	}
	if s.readCache != nil {
		s.readCache.Set(key, products)
	}

	return products, nil
}

// GetConfig serves the read-side store configuration through the TTL cache.
func (s *OrderService) GetConfig(ctx context.Context, storeSlug string) (catalog.StoreConfig, error) {
	key := "config:" + storeSlug
	if s.readCache != nil {
		if cached, ok := s.readCache.Get(key); ok {
			return cached.(catalog.StoreConfig), nil
		}
	}

	cfg, err := s.catalogRepo.Config(ctx, storeSlug)
	if err != nil {
		return catalog.StoreConfig{}, err
	}
	if s.readCache != nil {
		s.readCache.Set(key, cfg)
	}

	return cfg, nil
}
