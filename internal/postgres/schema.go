package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                       TEXT PRIMARY KEY,
		name                     TEXT NOT NULL,
		email                    TEXT NOT NULL,
		role                     TEXT NOT NULL,
		subscription_plan        TEXT,
		subscription_price       BIGINT,
		subscription_discount    INT,
		subscription_order_limit INT,
		subscription_start_date  TIMESTAMPTZ,
		razorpay_payment_id      TEXT,
		created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                TEXT PRIMARY KEY,
		farmer_id         TEXT NOT NULL,
		farmer_name       TEXT NOT NULL,
		name              TEXT NOT NULL,
		quantity          INT NOT NULL CHECK (quantity >= 0),
		unit              TEXT NOT NULL,
		price_per_unit    BIGINT NOT NULL,
		photo             TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		reserved_quantity INT NOT NULL DEFAULT 0,
		sold_quantity     INT NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_farmer ON listings(farmer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             TEXT PRIMARY KEY,
		buyer_id       TEXT NOT NULL,
		buyer_name     TEXT NOT NULL,
		buyer_email    TEXT NOT NULL,
		total          BIGINT NOT NULL,
		status         TEXT NOT NULL,
		meet_link      TEXT,
		decline_reason TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		approved_at    TIMESTAMPTZ,
		placed_at      TIMESTAMPTZ,
		delivered_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id             BIGSERIAL PRIMARY KEY,
		order_id       TEXT NOT NULL REFERENCES orders(id),
		listing_id     TEXT NOT NULL,
		farmer_id      TEXT NOT NULL,
		farmer_name    TEXT NOT NULL,
		name           TEXT NOT NULL,
		quantity       INT NOT NULL,
		unit           TEXT NOT NULL,
		price_per_unit BIGINT NOT NULL,
		total          BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT FALSE,
		related_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
}

// Migrate applies the schema on startup. Statements are idempotent so both
// binaries can run it safely.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
