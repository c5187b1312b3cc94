package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/payments"
)

type SubscriptionStore interface {
	ApplySubscription(ctx context.Context, userID, userName, userEmail string, plan payments.Plan, paymentID string) error
}

type PaymentsHandler struct {
	KeyID  string
	Secret string
	Store  SubscriptionStore
	Log    *zap.Logger
}

type verifyReq struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type subscribeReq struct {
	PlanID string `json:"plan_id"`
	verifyReq
}

func (h *PaymentsHandler) Register(r *chi.Mux, authn func(http.Handler) http.Handler) {
	r.Route("/payments", func(r chi.Router) {
		r.Use(authn, auth.RequireRole(auth.RoleBuyer))
		r.Get("/plans", h.plans)
		r.Post("/checkout", h.checkout)
		r.Post("/verify", h.verify)
		r.Post("/subscription", h.subscribe)
	})
}

func (h *PaymentsHandler) plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, payments.Plans)
}

// checkout returns the client-side widget options for the chosen plan; the
// key secret stays on the server.
func (h *PaymentsHandler) checkout(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	plan, ok := payments.PlanByID(req.PlanID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown plan"})
		return
	}
	writeJSON(w, http.StatusOK, payments.BuildCheckout(h.KeyID, plan, id.Email, id.Name))
}

func (h *PaymentsHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !payments.VerifySignature(h.Secret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		writeJSON(w, http.StatusBadRequest, map[string]bool{"verified": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// subscribe verifies the payment and writes the plan onto the buyer profile.
func (h *PaymentsHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var req subscribeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	plan, ok := payments.PlanByID(req.PlanID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown plan"})
		return
	}
	if !payments.VerifySignature(h.Secret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		writeJSON(w, http.StatusBadRequest, map[string]bool{"verified": false})
		return
	}
	if err := h.Store.ApplySubscription(r.Context(), id.UserID, id.Name, id.Email, plan, req.RazorpayPaymentID); err != nil {
		h.Log.Error("subscription update failed", zap.String("user_id", id.UserID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": true, "plan": plan.ID})
}
