package httpx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/notify"
)

type memNotificationStore struct {
	rows []notify.Notification
}

func (s *memNotificationStore) ListForUser(_ context.Context, userID string, after time.Time) ([]notify.Notification, error) {
	var out []notify.Notification
	for i := len(s.rows) - 1; i >= 0; i-- {
		n := s.rows[i]
		if n.UserID == userID && n.CreatedAt.After(after) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id, userID string) error {
	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].UserID == userID {
			s.rows[i].Read = true
			return nil
		}
	}
	return notify.ErrNotFound
}

func notificationsRouter(store *memNotificationStore, id auth.Identity) http.Handler {
	h := &NotificationsHandler{Store: store, Log: zap.NewNop()}
	r := newTestRouter()
	h.Register(r, asUser(id))
	return r
}

func TestListNotificationsNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memNotificationStore{rows: []notify.Notification{
		{ID: "n1", UserID: "b1", Title: "Order Approved", CreatedAt: base},
		{ID: "n2", UserID: "b1", Title: "Order Placed", CreatedAt: base.Add(time.Minute)},
		{ID: "n3", UserID: "other", Title: "Order Approved", CreatedAt: base},
	}}

	rec := doJSON(t, notificationsRouter(store, buyer), http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[[]notify.Notification](t, rec)
	require.Len(t, out, 2)
	assert.Equal(t, "n2", out[0].ID)
	assert.Equal(t, "n1", out[1].ID)
}

func TestListNotificationsAfterCursor(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memNotificationStore{rows: []notify.Notification{
		{ID: "n1", UserID: "b1", CreatedAt: base},
		{ID: "n2", UserID: "b1", CreatedAt: base.Add(time.Minute)},
	}}

	r := notificationsRouter(store, buyer)
	rec := doJSON(t, r, http.MethodGet, "/notifications?after="+base.Format(time.RFC3339), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[[]notify.Notification](t, rec)
	require.Len(t, out, 1)
	assert.Equal(t, "n2", out[0].ID)

	rec = doJSON(t, r, http.MethodGet, "/notifications?after=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	store := &memNotificationStore{rows: []notify.Notification{
		{ID: "n1", UserID: "other", CreatedAt: time.Now().UTC()},
	}}

	rec := doJSON(t, notificationsRouter(store, buyer), http.MethodPost, "/notifications/n1/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, store.rows[0].Read)
}

func TestMarkRead(t *testing.T) {
	store := &memNotificationStore{rows: []notify.Notification{
		{ID: "n1", UserID: "b1", CreatedAt: time.Now().UTC()},
	}}

	rec := doJSON(t, notificationsRouter(store, buyer), http.MethodPost, "/notifications/n1/read", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, store.rows[0].Read)
}

func TestStreamDisabledWithoutService(t *testing.T) {
	store := &memNotificationStore{}
	rec := doJSON(t, notificationsRouter(store, buyer), http.MethodGet, "/notifications/stream", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
