package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Type string

const (
	TypeOrderPlaced    Type = "order_placed"
	TypeOrderApproved  Type = "order_approved"
	TypeOrderDeclined  Type = "order_declined"
	TypeOrderDelivered Type = "order_delivered"
	TypeListingSold    Type = "listing_sold"
)

// Notification is append-only; the read flag is the only field that ever
// changes after insert.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	RelatedID string    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("notification not found")

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Append(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO notifications(id, user_id, type, title, message, read, related_id, created_at)
		VALUES ($1,$2,$3,$4,$5,FALSE,$6,$7)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, nullable(n.RelatedID), n.CreatedAt)
	return err
}

// ListForUser returns notifications newest-first. A non-zero after acts as a
// polling cursor: only notifications created strictly later are returned.
func (r *Repo) ListForUser(ctx context.Context, userID string, after time.Time) ([]Notification, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, type, title, message, read, COALESCE(related_id, ''), created_at
		FROM notifications
		WHERE user_id=$1 AND created_at > $2
		ORDER BY created_at DESC`, userID, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag; the user id guard keeps one user from
// touching another's notifications.
func (r *Repo) MarkRead(ctx context.Context, id, userID string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
