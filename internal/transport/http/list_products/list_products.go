package listproducts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
)

type service interface {
	GetProducts(ctx context.Context, storeSlug string) ([]catalog.Product, error)
}

type listProductsRequest struct {
	Store string `schema:"store,omitempty"`
}

// ListProducts serves the cached product catalog.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &listProductsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding products request", "error", err)

		return
	}

	products, err := service.GetProducts(r.Context(), query.Store)
	if err != nil {
		http.Error(w, "failed to load products", http.StatusInternalServerError)
		slog.Error("Error getting products", "error", err)

		return
	}

	if products == nil {
		products = []catalog.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		slog.Error("Error sending products response", "error", err)
	}
}
