package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/samkrish13/AgriBulkMarket/internal/redisx"
)

// Store is the persistence surface Emit writes through.
type Store interface {
	Append(ctx context.Context, n *Notification) error
}

// Service appends notifications and fans them out to live subscribers over
// redis pub/sub. Emit is fire-and-forget: storage or fan-out failures are
// logged and swallowed so they never fail the operation that triggered them.
type Service struct {
	Store Store
	Redis *redis.Client // nil disables live fan-out
	Log   *zap.Logger
}

func (s *Service) Emit(ctx context.Context, userID string, typ Type, title, message, relatedID string) {
	n := Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Append(ctx, &n); err != nil {
		s.Log.Error("notification append failed",
			zap.String("user_id", userID), zap.String("type", string(typ)), zap.Error(err))
		return
	}
	if s.Redis == nil {
		return
	}
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	ch := fmt.Sprintf(redisx.ChanUserNotifications, userID)
	if err := s.Redis.Publish(ctx, ch, b).Err(); err != nil {
		s.Log.Warn("notification publish failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// Subscribe delivers notifications for one user as they are emitted, in
// publish order. The returned cancel func releases the underlying pub/sub
// connection; the channel closes afterwards.
func (s *Service) Subscribe(ctx context.Context, userID string) (<-chan Notification, func()) {
	sub := s.Redis.Subscribe(ctx, fmt.Sprintf(redisx.ChanUserNotifications, userID))
	out := make(chan Notification, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				s.Log.Warn("bad notification payload", zap.Error(err))
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}
