package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPlacementExactQuantitySellsOut(t *testing.T) {
	l := Listing{Quantity: 10, Status: ListingAvailable}
	l.ApplyPlacement(10)

	assert.Equal(t, 0, l.Quantity)
	assert.Equal(t, ListingSold, l.Status)
	assert.Equal(t, 10, l.SoldQuantity)
	assert.Equal(t, 0, l.ReservedQuantity)
}

func TestApplyPlacementPartialQuantityReserves(t *testing.T) {
	l := Listing{Quantity: 10, Status: ListingAvailable}
	l.ApplyPlacement(4)

	assert.Equal(t, 6, l.Quantity)
	assert.Equal(t, ListingReserved, l.Status)
	assert.Equal(t, 4, l.ReservedQuantity)
	assert.Equal(t, 0, l.SoldQuantity)
}

func TestApplyPlacementOverCommitNeverGoesNegative(t *testing.T) {
	l := Listing{Quantity: 3, Status: ListingAvailable}
	l.ApplyPlacement(5)

	assert.Equal(t, 0, l.Quantity)
	assert.Equal(t, ListingSold, l.Status)
	assert.Equal(t, 5, l.SoldQuantity)
}

func TestOrderTotalSumsLineItems(t *testing.T) {
	a := Listing{ID: "a", PricePerUnit: 10}
	b := Listing{ID: "b", PricePerUnit: 50}

	items := []OrderItem{NewOrderItem(a, 5), NewOrderItem(b, 2)}

	assert.Equal(t, int64(50), items[0].Total)
	assert.Equal(t, int64(100), items[1].Total)
	assert.Equal(t, int64(150), OrderTotal(items))
}

func TestNewOrderItemSnapshotsListingFields(t *testing.T) {
	l := Listing{
		ID: "l1", FarmerID: "f1", FarmerName: "Ravi", Name: "Tomatoes",
		Unit: "kg", PricePerUnit: 25,
	}
	it := NewOrderItem(l, 3)

	assert.Equal(t, "l1", it.ListingID)
	assert.Equal(t, "f1", it.FarmerID)
	assert.Equal(t, "Ravi", it.FarmerName)
	assert.Equal(t, "Tomatoes", it.Name)
	assert.Equal(t, "kg", it.Unit)
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, int64(75), it.Total)
}

func TestFarmerIDsDeduplicatesInOrder(t *testing.T) {
	o := Order{Items: []OrderItem{
		{FarmerID: "f1"},
		{FarmerID: "f2"},
		{FarmerID: "f1"},
		{FarmerID: "f3"},
	}}
	assert.Equal(t, []string{"f1", "f2", "f3"}, o.FarmerIDs())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", ShortID("123456789abc"))
	assert.Equal(t, "abc", ShortID("abc"))
}
