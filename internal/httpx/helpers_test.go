package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
)

// asUser injects a fixed identity the way the bearer-token middleware would.
func asUser(id auth.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

var (
	buyer  = auth.Identity{UserID: "b1", Name: "Asha", Email: "asha@example.com", Role: auth.RoleBuyer}
	farmer = auth.Identity{UserID: "f1", Name: "Ravi", Email: "ravi@example.com", Role: auth.RoleFarmer}
	admin  = auth.Identity{UserID: "a1", Name: "Admin", Email: "admin@example.com", Role: auth.RoleAdmin}
)

// memOrderStore keeps orders in memory with the same transition rules the
// database layer enforces.
type memOrderStore struct {
	listings map[string]*market.Listing
	orders   map[string]*market.Order
	seq      int
}

func newMemOrderStore(listings ...market.Listing) *memOrderStore {
	s := &memOrderStore{
		listings: map[string]*market.Listing{},
		orders:   map[string]*market.Order{},
	}
	for i := range listings {
		l := listings[i]
		s.listings[l.ID] = &l
	}
	return s
}

func (s *memOrderStore) CreateOrder(_ context.Context, buyerID, buyerName, buyerEmail string, items []market.ItemInput) (*market.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", market.ErrValidation)
	}
	s.seq++
	o := &market.Order{
		ID:         fmt.Sprintf("order-%d", s.seq),
		BuyerID:    buyerID,
		BuyerName:  buyerName,
		BuyerEmail: buyerEmail,
		Status:     market.StatusPendingApproval,
		CreatedAt:  time.Now().UTC(),
	}
	for _, in := range items {
		l, ok := s.listings[in.ListingID]
		if !ok {
			return nil, market.ErrNotFound
		}
		if in.Qty < 1 || in.Qty > l.Quantity {
			return nil, fmt.Errorf("%w: qty out of range", market.ErrValidation)
		}
		o.Items = append(o.Items, market.NewOrderItem(*l, in.Qty))
	}
	o.Total = market.OrderTotal(o.Items)
	s.orders[o.ID] = o
	return o, nil
}

func (s *memOrderStore) GetOrder(_ context.Context, orderID string) (*market.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, market.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) transition(orderID string, to market.Status) (*market.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, market.ErrNotFound
	}
	if !market.CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", market.ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) Approve(_ context.Context, orderID string, meetLink *string) (*market.Order, error) {
	o, err := s.transition(orderID, market.StatusApproved)
	if err != nil {
		return nil, err
	}
	s.orders[orderID].MeetLink = meetLink
	o.MeetLink = meetLink
	return o, nil
}

func (s *memOrderStore) Decline(_ context.Context, orderID, reason string) (*market.Order, error) {
	o, err := s.transition(orderID, market.StatusDeclined)
	if err != nil {
		return nil, err
	}
	s.orders[orderID].DeclineReason = &reason
	o.DeclineReason = &reason
	return o, nil
}

func (s *memOrderStore) MarkPlaced(_ context.Context, orderID string) (*market.Order, error) {
	o, err := s.transition(orderID, market.StatusPlaced)
	if err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		s.listings[it.ListingID].ApplyPlacement(it.Quantity)
	}
	return o, nil
}

func (s *memOrderStore) MarkDelivered(_ context.Context, orderID string) (*market.Order, error) {
	return s.transition(orderID, market.StatusDelivered)
}

func (s *memOrderStore) ListOrdersByBuyer(_ context.Context, buyerID string) ([]market.Order, error) {
	var out []market.Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *memOrderStore) ListOrders(_ context.Context) ([]market.Order, error) {
	var out []market.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func newOrderService(store *memOrderStore) *market.Service {
	return &market.Service{
		Store:       store,
		Log:         zap.NewNop(),
		ServiceName: "market-api-test",
		AdminEmail:  "admin@example.com",
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func newTestRouter() *chi.Mux {
	return chi.NewRouter()
}
