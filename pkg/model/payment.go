package model

import "time"

// DeliveryToken authorizes delivery of a paid service.
type DeliveryToken struct {
	Key            string
	Issued         time.Time
	Expiry         time.Time
	Signature      []byte
	RefundOnExpiry bool
}

// Expired reports whether the token has passed its expiry at now.
// A token without expiry never expires.
func (t DeliveryToken) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && now.After(t.Expiry)
}

// PriceQuote is a producer's total price for a selected service.
type PriceQuote struct {
	ServerID         string
	ClientID         string
	PriceID          Optional[int32]
	Units            int32
	Total            int32
	PaymentReference string
	MerchantKey      string
	Currency         string
}

// PaymentResult is the outcome of a completed payment.
type PaymentResult struct {
	ServerID  string
	ClientID  string
	TotalPaid int32
	Token     DeliveryToken
}
