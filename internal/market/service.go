package market

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/samkrish13/AgriBulkMarket/internal/kafka"
)

// Store is the persistence surface the lifecycle service drives.
type Store interface {
	CreateOrder(ctx context.Context, buyerID, buyerName, buyerEmail string, items []ItemInput) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	Approve(ctx context.Context, orderID string, meetLink *string) (*Order, error)
	Decline(ctx context.Context, orderID, reason string) (*Order, error)
	MarkPlaced(ctx context.Context, orderID string) (*Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*Order, error)
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// MeetCreator returns a joinable meeting link for the order verification call.
type MeetCreator interface {
	CreateOrderMeet(ctx context.Context, orderID, buyerEmail, adminEmail string) (string, error)
}

// Service runs the order lifecycle: state transitions through Store, meeting
// invites through Meet, and an event per transition through Producer. Event
// publication is async and never gates a transition.
type Service struct {
	Store       Store
	Producer    EventPublisher
	Meet        MeetCreator // nil disables invite creation
	Log         *zap.Logger
	ServiceName string
	AdminEmail  string
}

func (s *Service) PlaceOrder(ctx context.Context, buyerID, buyerName, buyerEmail string, items []ItemInput) (*Order, error) {
	o, err := s.Store.CreateOrder(ctx, buyerID, buyerName, buyerEmail, items)
	if err != nil {
		return nil, err
	}
	s.publish(EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		BuyerName: o.BuyerName,
		Total:     o.Total,
		ItemCount: len(o.Items),
	})
	s.Log.Info("order created",
		zap.String("order_id", o.ID), zap.String("buyer_id", o.BuyerID), zap.Int64("total", o.Total))
	return o, nil
}

// Approve transitions Pending Approval -> Approved. The meet invite is
// best-effort: a provider failure leaves the link empty and the approval goes
// through.
func (s *Service) Approve(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusApproved)
	}

	var meetLink *string
	if s.Meet != nil {
		link, err := s.Meet.CreateOrderMeet(ctx, o.ID, o.BuyerEmail, s.AdminEmail)
		if err != nil {
			s.Log.Warn("meet invite failed, approving without link",
				zap.String("order_id", o.ID), zap.Error(err))
		} else if link != "" {
			meetLink = &link
		}
	}

	o, err = s.Store.Approve(ctx, orderID, meetLink)
	if err != nil {
		return nil, err
	}
	p := OrderApprovedPayload{OrderID: o.ID, BuyerID: o.BuyerID}
	if o.MeetLink != nil {
		p.MeetLink = *o.MeetLink
	}
	s.publish(EventOrderApproved, o.ID, p)
	s.Log.Info("order approved", zap.String("order_id", o.ID), zap.Bool("meet_link", meetLink != nil))
	return o, nil
}

func (s *Service) Decline(ctx context.Context, orderID, reason string) (*Order, error) {
	o, err := s.Store.Decline(ctx, orderID, reason)
	if err != nil {
		return nil, err
	}
	s.publish(EventOrderDeclined, o.ID, OrderDeclinedPayload{OrderID: o.ID, BuyerID: o.BuyerID, Reason: reason})
	s.Log.Info("order declined", zap.String("order_id", o.ID), zap.String("reason", reason))
	return o, nil
}

func (s *Service) MarkPlaced(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.MarkPlaced(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(EventOrderPlaced, o.ID, OrderPlacedPayload{OrderID: o.ID, BuyerID: o.BuyerID, FarmerIDs: o.FarmerIDs()})
	s.Log.Info("order placed", zap.String("order_id", o.ID), zap.Int("items", len(o.Items)))
	return o, nil
}

func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Store.MarkDelivered(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(EventOrderDelivered, o.ID, OrderDeliveredPayload{OrderID: o.ID, BuyerID: o.BuyerID, FarmerIDs: o.FarmerIDs()})
	s.Log.Info("order delivered", zap.String("order_id", o.ID))
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.Store.GetOrder(ctx, orderID)
}

func (s *Service) publish(eventType, orderID string, payload any) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Producer.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
