package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderApproved  = "OrderApproved"
	EventOrderDeclined  = "OrderDeclined"
	EventOrderPlaced    = "OrderPlaced"
	EventOrderDelivered = "OrderDelivered"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type OrderCreatedPayload struct {
	OrderID   string `json:"order_id"`
	BuyerID   string `json:"buyer_id"`
	BuyerName string `json:"buyer_name"`
	Total     int64  `json:"total"`
	ItemCount int    `json:"item_count"`
}

type OrderApprovedPayload struct {
	OrderID  string `json:"order_id"`
	BuyerID  string `json:"buyer_id"`
	MeetLink string `json:"meet_link,omitempty"`
}

type OrderDeclinedPayload struct {
	OrderID string `json:"order_id"`
	BuyerID string `json:"buyer_id"`
	Reason  string `json:"reason"`
}

type OrderPlacedPayload struct {
	OrderID   string   `json:"order_id"`
	BuyerID   string   `json:"buyer_id"`
	FarmerIDs []string `json:"farmer_ids"`
}

type OrderDeliveredPayload struct {
	OrderID   string   `json:"order_id"`
	BuyerID   string   `json:"buyer_id"`
	FarmerIDs []string `json:"farmer_ids"`
}
