package getconfig

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
)

type service interface {
	GetConfig(ctx context.Context, storeSlug string) (catalog.StoreConfig, error)
}

type getConfigRequest struct {
	Store string `schema:"store,omitempty"`
}

// configResponse exposes only customer-facing configuration fields.
type configResponse struct {
	StoreSlug           string `json:"storeSlug"`
	BusinessName        string `json:"businessName"`
	PaymentInstructions string `json:"paymentInstructions,omitempty"`
}

// GetConfig serves the cached store configuration.
func GetConfig(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &getConfigRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding config request", "error", err)

		return
	}

	cfg, err := service.GetConfig(r.Context(), query.Store)
	if err != nil {
		http.Error(w, "failed to load config", http.StatusInternalServerError)
		slog.Error("Error getting store config", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(configResponse{
		StoreSlug:           cfg.StoreSlug,
		BusinessName:        cfg.BusinessName,
		PaymentInstructions: cfg.PaymentInstructions,
	}); err != nil {
		slog.Error("Error sending config response", "error", err)
	}
}
