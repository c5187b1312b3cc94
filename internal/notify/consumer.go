package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/samkrish13/AgriBulkMarket/internal/kafka"
	"github.com/samkrish13/AgriBulkMarket/internal/market"
	"github.com/samkrish13/AgriBulkMarket/internal/redisx"
)

// Consumer turns order lifecycle events into notifications. Events are
// deduped by event id so a redelivered message does not produce a second
// notification.
type Consumer struct {
	Notify      *Service
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

func (c *Consumer) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	if c.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, c.ServiceName, env.EventID)
		if seen, _ := redisx.Exists(ctx, c.Redis, dkey); seen {
			return nil
		}
		_ = c.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	switch env.EventType {
	case market.EventOrderApproved:
		p, err := kafkax.UnwrapPayload[market.OrderApprovedPayload](env.Payload)
		if err != nil {
			return err
		}
		c.Notify.Emit(ctx, p.BuyerID, TypeOrderApproved, "Order Approved",
			"Your order has been approved. Join the meeting to verify details.", p.OrderID)

	case market.EventOrderDeclined:
		p, err := kafkax.UnwrapPayload[market.OrderDeclinedPayload](env.Payload)
		if err != nil {
			return err
		}
		c.Notify.Emit(ctx, p.BuyerID, TypeOrderDeclined, "Order Declined",
			fmt.Sprintf("Your order has been declined. Reason: %s", p.Reason), p.OrderID)

	case market.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[market.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		for _, farmerID := range p.FarmerIDs {
			c.Notify.Emit(ctx, farmerID, TypeListingSold, "Order Placed",
				fmt.Sprintf("Your produce has been included in order %s", market.ShortID(p.OrderID)), p.OrderID)
		}
		c.Notify.Emit(ctx, p.BuyerID, TypeOrderPlaced, "Order Placed",
			"Your order has been placed and is being prepared for delivery", p.OrderID)

	case market.EventOrderDelivered:
		p, err := kafkax.UnwrapPayload[market.OrderDeliveredPayload](env.Payload)
		if err != nil {
			return err
		}
		for _, farmerID := range p.FarmerIDs {
			c.Notify.Emit(ctx, farmerID, TypeListingSold, "Order Delivered",
				fmt.Sprintf("Order %s has been delivered", market.ShortID(p.OrderID)), p.OrderID)
		}
		c.Notify.Emit(ctx, p.BuyerID, TypeOrderDelivered, "Order Delivered",
			"Your order has been successfully delivered", p.OrderID)

	default:
		// OrderCreated has no notification recipient yet; admins watch the
		// pending queue directly.
	}
	return nil
}
