package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks a razorpay checkout callback. The expected signature
// is HMAC-SHA256 over "orderID|paymentID" under the key secret, hex-encoded;
// comparison is constant-time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Plan is a buyer subscription tier. Prices are in rupees as displayed;
// CheckoutOptions converts to paise for the gateway.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Discount   int    `json:"discount"`
	OrderLimit int    `json:"order_limit"`
}

var Plans = []Plan{
	{ID: "basic", Name: "Basic", Price: 999, Discount: 0, OrderLimit: 5},
	{ID: "standard", Name: "Standard", Price: 2999, Discount: 5, OrderLimit: 20},
	{ID: "premium", Name: "Premium", Price: 5999, Discount: 15, OrderLimit: 100},
}

func PlanByID(id string) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// CheckoutOptions is what the client hands to the razorpay widget. The key
// secret never leaves the server.
type CheckoutOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"` // paise
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
}

type Prefill struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func BuildCheckout(keyID string, plan Plan, userEmail, userName string) CheckoutOptions {
	return CheckoutOptions{
		Key:         keyID,
		Amount:      plan.Price * 100,
		Currency:    "INR",
		Name:        "AgriBulkMarket",
		Description: plan.Name + " Plan Subscription",
		Prefill:     Prefill{Email: userEmail, Name: userName},
	}
}
