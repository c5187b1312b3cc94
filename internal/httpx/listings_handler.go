package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
)

type ListingStore interface {
	CreateListing(ctx context.Context, farmerID, farmerName string, in market.ListingInput) (*market.Listing, error)
	UpdateListing(ctx context.Context, listingID, farmerID string, in market.ListingInput) (*market.Listing, error)
	DeleteListing(ctx context.Context, listingID, farmerID string) error
	GetListing(ctx context.Context, listingID string) (*market.Listing, error)
	ListAvailable(ctx context.Context) ([]market.Listing, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]market.Listing, error)
}

type ListingsHandler struct {
	Store ListingStore
	Log   *zap.Logger
}

func (h *ListingsHandler) Register(r *chi.Mux, authn func(http.Handler) http.Handler) {
	r.Route("/listings", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", h.catalog)
		r.Get("/{id}", h.get)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleFarmer))
			r.Get("/mine", h.mine)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *ListingsHandler) catalog(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingsHandler) mine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	out, err := h.Store.ListByFarmer(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ListingsHandler) get(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *ListingsHandler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in market.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	l, err := h.Store.CreateListing(r.Context(), id.UserID, id.Name, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *ListingsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var in market.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	l, err := h.Store.UpdateListing(r.Context(), chi.URLParam(r, "id"), id.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *ListingsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if err := h.Store.DeleteListing(r.Context(), chi.URLParam(r, "id"), id.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
