package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/auth"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
)

func tomatoListing() market.Listing {
	return market.Listing{
		ID: "la", FarmerID: "f1", FarmerName: "Ravi", Name: "Tomatoes",
		Quantity: 10, Unit: "kg", PricePerUnit: 2500, Status: market.ListingAvailable,
	}
}

func ordersRouter(store *memOrderStore, id auth.Identity) http.Handler {
	h := &OrdersHandler{Service: newOrderService(store), Lister: store, Log: zap.NewNop()}
	r := newTestRouter()
	h.Register(r, asUser(id))
	return r
}

func TestPlaceOrderComputesTotalServerSide(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	r := ordersRouter(store, buyer)

	rec := doJSON(t, r, http.MethodPost, "/orders", placeOrderReq{
		Items: []market.ItemInput{{ListingID: "la", Qty: 4}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	o := decodeBody[market.Order](t, rec)
	assert.Equal(t, "b1", o.BuyerID)
	assert.Equal(t, market.StatusPendingApproval, o.Status)
	assert.Equal(t, int64(10000), o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Ravi", o.Items[0].FarmerName)
}

func TestPlaceOrderRejectsOverbooking(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	r := ordersRouter(store, buyer)

	rec := doJSON(t, r, http.MethodPost, "/orders", placeOrderReq{
		Items: []market.ItemInput{{ListingID: "la", Qty: 11}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderRequiresBuyerRole(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	r := ordersRouter(store, farmer)

	rec := doJSON(t, r, http.MethodPost, "/orders", placeOrderReq{
		Items: []market.ItemInput{{ListingID: "la", Qty: 1}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOrderHidesOtherBuyersOrders(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	o, err := svc.PlaceOrder(context.Background(), "someone-else", "Other", "other@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)

	r := ordersRouter(store, buyer)
	rec := doJSON(t, r, http.MethodGet, "/orders/"+o.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the admin router still sees it through the shared /orders read path
	rec = doJSON(t, ordersRouter(store, admin), http.MethodGet, "/orders/"+o.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMineFiltersByBuyer(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	_, err := svc.PlaceOrder(context.Background(), "b1", "Asha", "asha@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), "b2", "Meera", "meera@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)

	rec := doJSON(t, ordersRouter(store, buyer), http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody[[]market.Order](t, rec)
	require.Len(t, out, 1)
	assert.Equal(t, "b1", out[0].BuyerID)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	rec := doJSON(t, ordersRouter(store, buyer), http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminLifecycleEndpoints(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	o, err := svc.PlaceOrder(context.Background(), "b1", "Asha", "asha@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 4}})
	require.NoError(t, err)

	r := ordersRouter(store, admin)

	rec := doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, market.StatusApproved, decodeBody[market.Order](t, rec).Status)

	rec = doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/place", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, market.StatusPlaced, decodeBody[market.Order](t, rec).Status)
	assert.Equal(t, 6, store.listings["la"].Quantity)

	rec = doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/deliver", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, market.StatusDelivered, decodeBody[market.Order](t, rec).Status)
}

func TestApproveOutOfOrderConflicts(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	o, err := svc.PlaceOrder(context.Background(), "b1", "Asha", "asha@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)

	r := ordersRouter(store, admin)
	rec := doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/deliver", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeclineRequiresReason(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	o, err := svc.PlaceOrder(context.Background(), "b1", "Asha", "asha@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)

	r := ordersRouter(store, admin)

	rec := doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/decline", declineReq{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/admin/orders/"+o.ID+"/decline", declineReq{Reason: "out of stock"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[market.Order](t, rec)
	require.NotNil(t, got.DeclineReason)
	assert.Equal(t, "out of stock", *got.DeclineReason)
}

func TestGetStatusFallsBackToStoreWithoutCache(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	svc := newOrderService(store)
	o, err := svc.PlaceOrder(context.Background(), "b1", "Asha", "asha@example.com",
		[]market.ItemInput{{ListingID: "la", Qty: 1}})
	require.NoError(t, err)

	rec := doJSON(t, ordersRouter(store, buyer), http.MethodGet, "/orders/"+o.ID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]market.Status](t, rec)
	assert.Equal(t, market.StatusPendingApproval, body["status"])
}

func TestGetOrderUnknownIDIs404(t *testing.T) {
	store := newMemOrderStore(tomatoListing())
	rec := doJSON(t, ordersRouter(store, buyer), http.MethodGet, "/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
