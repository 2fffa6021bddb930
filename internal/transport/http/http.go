package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/teamthreads/storefront/order/internal/metric"
	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/throttle"
	getconfig "github.com/teamthreads/storefront/order/internal/transport/http/get_config"
	listproducts "github.com/teamthreads/storefront/order/internal/transport/http/list_products"
	submitorder "github.com/teamthreads/storefront/order/internal/transport/http/submit_order"
	"github.com/teamthreads/storefront/order/pkg/http/middleware/ratelimit"
	"github.com/teamthreads/storefront/order/pkg/http/middleware/trace"
	"github.com/teamthreads/storefront/order/pkg/logger"
)

type service interface {
	Submit(ctx context.Context, o order.Order) (order.Order, error)
	GetConfig(ctx context.Context, storeSlug string) (catalog.StoreConfig, error)
	GetProducts(ctx context.Context, storeSlug string) ([]catalog.Product, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
	limiter *throttle.Limiter
}

func NewHTTPTransport(service service, limiter *throttle.Limiter) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		limiter: limiter,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
// The throttle guards only the submission endpoint.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/config", h.getConfig)
		r.Get("/products", h.listProducts)

		r.Route("/orders", func(r chi.Router) {
			r.Use(ratelimit.NewRateLimitMiddleware(h.limiter))
			r.Post("/submit", h.submitOrder)
		})
	})
	h.router.Handle("/metrics", promhttp.Handler())
}

func (h *HTTPTransport) submitOrder(w http.ResponseWriter, r *http.Request) {
	submitorder.SubmitOrder(w, r, h.service)
}

func (h *HTTPTransport) getConfig(w http.ResponseWriter, r *http.Request) {
	getconfig.GetConfig(w, r, h.service)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	listproducts.ListProducts(w, r, h.service)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(metricsMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		metric.ObserveRequest(time.Since(start), ww.Status())
	})
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
