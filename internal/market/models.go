package market

import "time"

// Prices are held in minor currency units (paise).

type Listing struct {
	ID               string        `json:"id"`
	FarmerID         string        `json:"farmer_id"`
	FarmerName       string        `json:"farmer_name"`
	Name             string        `json:"name"`
	Quantity         int           `json:"quantity"`
	Unit             string        `json:"unit"`
	PricePerUnit     int64         `json:"price_per_unit"`
	Photo            string        `json:"photo,omitempty"`
	Status           ListingStatus `json:"status"`
	ReservedQuantity int           `json:"reserved_quantity,omitempty"`
	SoldQuantity     int           `json:"sold_quantity,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ApplyPlacement commits qty units of this listing to an order. A request that
// meets or exceeds the remaining quantity sells the listing out; quantity never
// goes negative.
func (l *Listing) ApplyPlacement(qty int) {
	remaining := l.Quantity - qty
	if remaining <= 0 {
		l.Quantity = 0
		l.Status = ListingSold
		l.SoldQuantity = qty
		return
	}
	l.Quantity = remaining
	l.Status = ListingReserved
	l.ReservedQuantity = qty
}

// OrderItem is a snapshot of the listing at order time; later price or name
// edits on the listing do not reach into existing orders.
type OrderItem struct {
	ListingID    string `json:"listing_id"`
	FarmerID     string `json:"farmer_id"`
	FarmerName   string `json:"farmer_name"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	PricePerUnit int64  `json:"price_per_unit"`
	Total        int64  `json:"total"`
}

// NewOrderItem snapshots a listing into an order line at the listing's
// current price.
func NewOrderItem(l Listing, qty int) OrderItem {
	return OrderItem{
		ListingID:    l.ID,
		FarmerID:     l.FarmerID,
		FarmerName:   l.FarmerName,
		Name:         l.Name,
		Quantity:     qty,
		Unit:         l.Unit,
		PricePerUnit: l.PricePerUnit,
		Total:        int64(qty) * l.PricePerUnit,
	}
}

// OrderTotal sums line totals; the aggregate order price is always derived
// from the items, never stored independently of them.
func OrderTotal(items []OrderItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Total
	}
	return sum
}

type Order struct {
	ID            string      `json:"id"`
	BuyerID       string      `json:"buyer_id"`
	BuyerName     string      `json:"buyer_name"`
	BuyerEmail    string      `json:"buyer_email"`
	Items         []OrderItem `json:"items"`
	Total         int64       `json:"total"`
	Status        Status      `json:"status"`
	MeetLink      *string     `json:"meet_link,omitempty"`
	DeclineReason *string     `json:"decline_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	ApprovedAt    *time.Time  `json:"approved_at,omitempty"`
	PlacedAt      *time.Time  `json:"placed_at,omitempty"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
}

// FarmerIDs returns the distinct farmers represented in the order, in first
// appearance order.
func (o *Order) FarmerIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range o.Items {
		if !seen[it.FarmerID] {
			seen[it.FarmerID] = true
			out = append(out, it.FarmerID)
		}
	}
	return out
}

// ShortID is the truncated order id used in notification texts and meeting
// titles.
func ShortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
