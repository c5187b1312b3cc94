package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/notify"
)

type NotificationStore interface {
	ListForUser(ctx context.Context, userID string, after time.Time) ([]notify.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationsHandler struct {
	Store   NotificationStore
	Service *notify.Service // nil disables the SSE stream
	Log     *zap.Logger
}

func (h *NotificationsHandler) Register(r *chi.Mux, authn func(http.Handler) http.Handler) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authn)
		r.Get("/", h.list)
		r.Get("/stream", h.stream)
		r.Post("/{id}/read", h.markRead)
	})
}

// list returns the user's notifications newest-first. ?after=<RFC3339> turns
// it into a poll for changes since the cursor.
func (h *NotificationsHandler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	var after time.Time
	if s := r.URL.Query().Get("after"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "after must be RFC3339"})
			return
		}
		after = t
	}
	out, err := h.Store.ListForUser(r.Context(), id.UserID, after)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationsHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	if err := h.Store.MarkRead(r.Context(), chi.URLParam(r, "id"), id.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stream pushes notifications to the client as server-sent events until the
// client disconnects.
func (h *NotificationsHandler) stream(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "streaming disabled"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}
	id, _ := auth.FromContext(r.Context())

	ch, cancel := h.Service.Subscribe(r.Context(), id.UserID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			b, err := json.Marshal(n)
			if err != nil {
				h.Log.Warn("notification marshal failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}
