package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Lifecycle transitions. Each runs in a single transaction that locks the
// order row, checks the legal-transition table and applies every side effect,
// so a partial failure never leaves the order and the inventory disagreeing
// and a repeated call fails the precondition instead of double-applying.

// lockOrderStatus fetches the current status with the row locked for the rest
// of the transaction.
func lockOrderStatus(ctx context.Context, tx pgx.Tx, orderID string) (Status, error) {
	var s Status
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return s, err
}

// Approve moves a Pending Approval order to Approved. meetLink may be nil when
// invite creation failed; approval proceeds regardless.
func (r *Repo) Approve(ctx context.Context, orderID string, meetLink *string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur, StatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, StatusApproved)
	}
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, meet_link=$3, approved_at=$4 WHERE id=$1`,
		orderID, StatusApproved, meetLink, now); err != nil {
		return nil, err
	}
	o, err := loadOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit(ctx)
}

// Decline moves a Pending Approval order to Declined and records the reason.
func (r *Repo) Decline(ctx context.Context, orderID, reason string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur, StatusDeclined) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, StatusDeclined)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, decline_reason=$3 WHERE id=$1`,
		orderID, StatusDeclined, reason); err != nil {
		return nil, err
	}
	o, err := loadOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit(ctx)
}

// MarkPlaced moves an Approved order to Placed and commits inventory: each
// referenced listing is locked (FOR UPDATE serializes concurrent orders on the
// same listing), decremented, and flipped to Reserved or Sold.
func (r *Repo) MarkPlaced(ctx context.Context, orderID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur, StatusPlaced) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, StatusPlaced)
	}
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, placed_at=$3 WHERE id=$1`,
		orderID, StatusPlaced, now); err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		var l Listing
		err := tx.QueryRow(ctx, `
			SELECT id, quantity, status, reserved_quantity, sold_quantity
			FROM listings WHERE id=$1 FOR UPDATE`, it.ListingID).
			Scan(&l.ID, &l.Quantity, &l.Status, &l.ReservedQuantity, &l.SoldQuantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", it.ListingID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		l.ApplyPlacement(it.Quantity)
		if _, err := tx.Exec(ctx, `
			UPDATE listings SET quantity=$2, status=$3, reserved_quantity=$4, sold_quantity=$5, updated_at=$6
			WHERE id=$1`,
			l.ID, l.Quantity, l.Status, l.ReservedQuantity, l.SoldQuantity, now); err != nil {
			return nil, err
		}
	}

	o, err := loadOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit(ctx)
}

// MarkDelivered moves a Placed order to Delivered and finalizes every
// referenced listing as Sold, whatever quantity the placement left behind.
func (r *Repo) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur, StatusDelivered) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, StatusDelivered)
	}
	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, delivered_at=$3 WHERE id=$1`,
		orderID, StatusDelivered, now); err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			UPDATE listings SET status=$2, updated_at=$3 WHERE id=$1`,
			it.ListingID, ListingSold, now); err != nil {
			return nil, err
		}
	}

	o, err := loadOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit(ctx)
}
