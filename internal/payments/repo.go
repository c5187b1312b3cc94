package payments

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// ApplySubscription writes the purchased plan onto the buyer's profile after a
// verified payment. The row is created on first subscription.
func (r *Repo) ApplySubscription(ctx context.Context, userID, userName, userEmail string, plan Plan, paymentID string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, name, email, role, subscription_plan, subscription_price,
		                  subscription_discount, subscription_order_limit, subscription_start_date,
		                  razorpay_payment_id)
		VALUES ($1,$2,$3,'buyer',$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			subscription_plan=$4, subscription_price=$5, subscription_discount=$6,
			subscription_order_limit=$7, subscription_start_date=$8, razorpay_payment_id=$9`,
		userID, userName, userEmail, plan.ID, plan.Price, plan.Discount, plan.OrderLimit,
		time.Now().UTC(), paymentID)
	return err
}
