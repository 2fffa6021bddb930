package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamthreads/storefront/order/internal/dal/cache"
	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/environment"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/ordernumber"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
)

type fakeCatalog struct {
	productCalls int
	configErr    error
}

func (f *fakeCatalog) Products(_ context.Context, _ string) ([]catalog.Product, error) {
	f.productCalls++

	return []catalog.Product{{
		ID:        "tee",
		Name:      "Team Tee",
		BasePrice: 15.00,
		AvailableSizes: []catalog.SizeOption{
			{Size: "M", Upcharge: 0},
		},
	}}, nil
}

func (f *fakeCatalog) DesignOptions(context.Context) ([]catalog.DesignOption, error) {
	return []catalog.DesignOption{{Number: 1, Title: "Front crest", Price: 5.00}}, nil
}

func (f *fakeCatalog) CustomizationOptions(context.Context) ([]catalog.CustomizationOption, error) {
	return []catalog.CustomizationOption{{Number: 1, Title: "Name and number", Price: 3.00}}, nil
}

func (f *fakeCatalog) Config(context.Context, string) (catalog.StoreConfig, error) {
	if f.configErr != nil {
		return catalog.StoreConfig{}, f.configErr
	}

	return catalog.StoreConfig{
		StoreSlug:         "phenoms",
		OrderNumberPrefix: "ORD",
		AdminEmail:        "admin@example.com",
	}, nil
}

type fakeAllocator struct {
	degraded bool
	prefix   string
}

func (f *fakeAllocator) Allocate(_ context.Context, storeSlug, prefix string) (ordernumber.OrderNumber, bool) {
	f.prefix = prefix

	return ordernumber.Format(
		prefix,
		environment.EnvironmentProduction,
		storeSlug,
		time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC),
		42,
	), f.degraded
}

type fakeOrchestrator struct {
	fulfilled *order.Order
	err       error
}

func (f *fakeOrchestrator) Fulfill(_ context.Context, o *order.Order, _ catalog.StoreConfig) error {
	f.fulfilled = o

	return f.err
}

type fakeEscalator struct {
	contexts []string
	causes   []error
}

func (f *fakeEscalator) Record(_ context.Context, failureContext string, cause error, _ *order.Order) {
	f.contexts = append(f.contexts, failureContext)
	f.causes = append(f.causes, cause)
}

func submission() order.Order {
	return order.Order{
		ContactInfo: order.ContactInfo{
			Email:     "jordan@example.com",
			FirstName: "Jordan",
			LastName:  "Smith",
			Phone:     "+1 555 0100",
		},
		Items: []orderitem.OrderItem{{
			ProductID: "tee",
			Size:      "M",
			ItemPrice: 15.00,
			Quantity:  2,
			DesignOptions: []orderitem.OptionSelection{
				{OptionNumber: 1, Price: 5.00},
			},
			CustomizationOptions: []orderitem.OptionSelection{
				{OptionNumber: 1, Price: 3.00, CustomName: "Jordan", CustomNumber: "23"},
			},
			TotalPrice: 23.00,
		}},
		TotalAmount: 46.00,
		StoreSlug:   "phenoms",
	}
}

func newService(
	cat *fakeCatalog,
	alloc *fakeAllocator,
	orch *fakeOrchestrator,
	esc *fakeEscalator,
) *OrderService {
	return MustNewOrderService(
		WithCatalogRepository(cat),
		WithAllocator(alloc),
		WithOrchestrator(orch),
		WithEscalator(esc),
		WithEnvironment(environment.EnvironmentProduction),
	)
}

func TestSubmitHappyPath(t *testing.T) {
	orch := &fakeOrchestrator{}
	esc := &fakeEscalator{}
	svc := newService(&fakeCatalog{}, &fakeAllocator{}, orch, esc)

	submitted, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, "ORD-PROD-PHENOMS-20250810-000042", submitted.OrderNumber)
	assert.Equal(t, "000042", submitted.ShortOrderNumber)
	assert.InDelta(t, 46.00, submitted.TotalAmount, 0.001)
	assert.Equal(t, environment.EnvironmentProduction, submitted.Environment)
	assert.False(t, submitted.OrderDate.IsZero())
	assert.Equal(t, "Team Tee", submitted.Items[0].ProductName)

	require.NotNil(t, orch.fulfilled)
	assert.Equal(t, submitted.OrderNumber, orch.fulfilled.OrderNumber)
	assert.Empty(t, esc.contexts)
}

func TestSubmitUsesConfiguredPrefix(t *testing.T) {
	alloc := &fakeAllocator{}
	svc := newService(&fakeCatalog{}, alloc, &fakeOrchestrator{}, &fakeEscalator{})

	_, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, "ORD", alloc.prefix)
}

func TestSubmitRejectsTamperedPrices(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc := newService(&fakeCatalog{}, &fakeAllocator{}, orch, &fakeEscalator{})

	o := submission()
	o.Items[0].ItemPrice = 10.00

	_, err := svc.Submit(context.Background(), o)

	assert.ErrorIs(t, err, ErrPriceTamper)
	assert.Nil(t, orch.fulfilled, "tampered orders never reach fulfillment")
}

func TestSubmitDiscardsClientTotal(t *testing.T) {
	svc := newService(&fakeCatalog{}, &fakeAllocator{}, &fakeOrchestrator{}, &fakeEscalator{})

	o := submission()
	o.TotalAmount = 9999.00

	submitted, err := svc.Submit(context.Background(), o)
	require.NoError(t, err)

	assert.InDelta(t, 46.00, submitted.TotalAmount, 0.001)
}

func TestSubmitEscalatesFulfillmentFailure(t *testing.T) {
	cause := errors.New("order record write failed")
	esc := &fakeEscalator{}
	svc := newService(&fakeCatalog{}, &fakeAllocator{}, &fakeOrchestrator{err: cause}, esc)

	_, err := svc.Submit(context.Background(), submission())

	assert.ErrorIs(t, err, cause)
	require.Len(t, esc.contexts, 1)
	assert.Equal(t, "fulfillment", esc.contexts[0])
	assert.ErrorIs(t, esc.causes[0], cause)
}

func TestSubmitDegradedAllocationStillAccepts(t *testing.T) {
	svc := newService(&fakeCatalog{}, &fakeAllocator{degraded: true}, &fakeOrchestrator{}, &fakeEscalator{})

	submitted, err := svc.Submit(context.Background(), submission())

	require.NoError(t, err)
	assert.NotEmpty(t, submitted.OrderNumber)
}

func TestSubmitConfigFailure(t *testing.T) {
	orch := &fakeOrchestrator{}
	svc := newService(&fakeCatalog{configErr: errors.New("relation does not exist")}, &fakeAllocator{}, orch, &fakeEscalator{})

	_, err := svc.Submit(context.Background(), submission())

	assert.Error(t, err)
	assert.Nil(t, orch.fulfilled)
}

func TestGetProductsUsesReadCache(t *testing.T) {
	cat := &fakeCatalog{}
	readCache := cache.New(time.Minute, time.Minute)
	defer readCache.Stop()

	svc := MustNewOrderService(
		WithCatalogRepository(cat),
		WithAllocator(&fakeAllocator{}),
		WithOrchestrator(&fakeOrchestrator{}),
		WithReadCache(readCache),
	)

	first, err := svc.GetProducts(context.Background(), "phenoms")
	require.NoError(t, err)
	second, err := svc.GetProducts(context.Background(), "phenoms")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cat.productCalls)
}

func TestSubmitNeverUsesReadCache(t *testing.T) {
	cat := &fakeCatalog{}
	readCache := cache.New(time.Minute, time.Minute)
	defer readCache.Stop()

	svc := MustNewOrderService(
		WithCatalogRepository(cat),
		WithAllocator(&fakeAllocator{}),
		WithOrchestrator(&fakeOrchestrator{}),
		WithReadCache(readCache),
		WithEnvironment(environment.EnvironmentProduction),
	)

	_, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, 2, cat.productCalls, "the verifier always fetches fresh catalog data")
}
