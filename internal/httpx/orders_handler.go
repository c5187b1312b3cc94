package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
	"github.com/samkrish13/AgriBulkMarket/internal/redisx"
)

// OrderLister covers the read paths that bypass the lifecycle service.
type OrderLister interface {
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]market.Order, error)
	ListOrders(ctx context.Context) ([]market.Order, error)
}

type OrdersHandler struct {
	Service *market.Service
	Lister  OrderLister
	Redis   *redis.Client // nil disables the status cache
	Log     *zap.Logger
}

type placeOrderReq struct {
	Items []market.ItemInput `json:"items"`
}

type declineReq struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) Register(r *chi.Mux, authn func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authn)
		r.With(auth.RequireRole(auth.RoleBuyer)).Post("/", h.placeOrder)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.getOrder)
		r.Get("/{id}/status", h.getStatus)
	})
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authn, auth.RequireRole(auth.RoleAdmin))
		r.Get("/", h.listAll)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/decline", h.decline)
		r.Post("/{id}/place", h.markPlaced)
		r.Post("/{id}/deliver", h.markDelivered)
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	o, err := h.Service.PlaceOrder(r.Context(), id.UserID, id.Name, id.Email, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	out, err := h.Lister.ListOrdersByBuyer(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.Lister.ListOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	o, err := h.Service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// buyers only see their own orders
	if id.Role != auth.RoleAdmin && o.BuyerID != id.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus serves the cached status when present; cache misses fall back to
// the database and repopulate.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(s))
			return
		}
	}
	o, err := h.Service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusOK, map[string]market.Status{"status": o.Status})
}

func (h *OrdersHandler) approve(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) decline(w http.ResponseWriter, r *http.Request) {
	var req declineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}
	o, err := h.Service.Decline(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) markPlaced(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.MarkPlaced(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) markDelivered(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.MarkDelivered(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status market.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]market.Status{"status": status})
	if err := h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		h.Log.Warn("status cache set failed", zap.String("order_id", orderID), zap.Error(err))
	}
}
