package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/googleapi"
)

type DistanceQuoter interface {
	Quote(ctx context.Context, origins, destinations string) (*googleapi.Quote, error)
}

type DeliveryHandler struct {
	Distance DistanceQuoter
	Log      *zap.Logger
}

func (h *DeliveryHandler) Register(r *chi.Mux, authn func(http.Handler) http.Handler) {
	r.With(authn).Get("/delivery/quote", h.quote)
}

func (h *DeliveryHandler) quote(w http.ResponseWriter, r *http.Request) {
	origins := r.URL.Query().Get("origins")
	destinations := r.URL.Query().Get("destinations")
	if origins == "" || destinations == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "origins and destinations are required"})
		return
	}
	q, err := h.Distance.Quote(r.Context(), origins, destinations)
	if err != nil {
		h.Log.Warn("distance quote failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "unable to calculate distance"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}
