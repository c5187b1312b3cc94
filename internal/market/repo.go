package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemInput struct {
	ListingID string `json:"listing_id"`
	Qty       int    `json:"qty"`
}

type Repo struct{ DB *pgxpool.Pool }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so order loading can
// run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateOrder builds a Pending Approval order from cart items. Listing name,
// farmer and price are snapshotted into order_items; the total is computed from
// listing prices, never trusted from the client. Requested quantities are
// checked against the live listing rows in the same transaction, so an order
// can never be created for more than is currently available.
func (r *Repo) CreateOrder(ctx context.Context, buyerID, buyerName, buyerEmail string, items []ItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", ErrValidation)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := &Order{
		ID:         uuid.NewString(),
		BuyerID:    buyerID,
		BuyerName:  buyerName,
		BuyerEmail: buyerEmail,
		Status:     StatusPendingApproval,
		CreatedAt:  time.Now().UTC(),
	}

	for _, it := range items {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: invalid qty for listing %s", ErrValidation, it.ListingID)
		}
		var l Listing
		err := tx.QueryRow(ctx, `
			SELECT id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, status
			FROM listings WHERE id=$1`, it.ListingID).
			Scan(&l.ID, &l.FarmerID, &l.FarmerName, &l.Name, &l.Quantity, &l.Unit, &l.PricePerUnit, &l.Status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", it.ListingID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if l.Status != ListingAvailable {
			return nil, fmt.Errorf("%w: listing %s is %s", ErrValidation, l.ID, l.Status)
		}
		if it.Qty > l.Quantity {
			return nil, fmt.Errorf("%w: listing %s has %d available, requested %d", ErrValidation, l.ID, l.Quantity, it.Qty)
		}
		o.Items = append(o.Items, NewOrderItem(l, it.Qty))
	}
	o.Total = OrderTotal(o.Items)

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, buyer_name, buyer_email, total, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.BuyerID, o.BuyerName, o.BuyerEmail, o.Total, o.Status, o.CreatedAt); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, listing_id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, it.ListingID, it.FarmerID, it.FarmerName, it.Name, it.Quantity, it.Unit, it.PricePerUnit, it.Total); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return loadOrder(ctx, r.DB, orderID)
}

func loadOrder(ctx context.Context, q querier, orderID string) (*Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, buyer_id, buyer_name, buyer_email, total, status, meet_link, decline_reason,
		       created_at, approved_at, placed_at, delivered_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.BuyerID, &o.BuyerName, &o.BuyerEmail, &o.Total, &o.Status, &o.MeetLink,
			&o.DeclineReason, &o.CreatedAt, &o.ApprovedAt, &o.PlacedAt, &o.DeliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func loadItems(ctx context.Context, q querier, orderID string) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT listing_id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, total
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ListingID, &it.FarmerID, &it.FarmerName, &it.Name,
			&it.Quantity, &it.Unit, &it.PricePerUnit, &it.Total); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return r.listOrders(ctx, `WHERE buyer_id=$1`, buyerID)
}

func (r *Repo) ListOrdersByStatus(ctx context.Context, status Status) ([]Order, error) {
	return r.listOrders(ctx, `WHERE status=$1`, string(status))
}

func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	return r.listOrders(ctx, ``)
}

func (r *Repo) listOrders(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, buyer_name, buyer_email, total, status, meet_link, decline_reason,
		       created_at, approved_at, placed_at, delivered_at
		FROM orders `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.BuyerName, &o.BuyerEmail, &o.Total, &o.Status,
			&o.MeetLink, &o.DeclineReason, &o.CreatedAt, &o.ApprovedAt, &o.PlacedAt, &o.DeliveredAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := loadItems(ctx, r.DB, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}
