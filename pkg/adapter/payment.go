package adapter

import (
	"time"

	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/wire"
)

// TokenToWire converts a delivery token. Zero times are left empty.
func TokenToWire(t model.DeliveryToken) wire.ServiceDeliveryToken {
	return wire.ServiceDeliveryToken{
		Key:            t.Key,
		Issued:         formatTime(t.Issued),
		Expiry:         formatTime(t.Expiry),
		RefundOnExpiry: t.RefundOnExpiry,
		Signature:      append([]byte(nil), t.Signature...),
	}
}

// TokenFromWire converts a delivery token record.
func TokenFromWire(t *wire.ServiceDeliveryToken) (model.DeliveryToken, error) {
	if t == nil {
		return model.DeliveryToken{}, malformed("delivery token is missing")
	}
	issued, err := parseTime(t.Issued)
	if err != nil {
		return model.DeliveryToken{}, malformed("token issued time %q: %v", t.Issued, err)
	}
	expiry, err := parseTime(t.Expiry)
	if err != nil {
		return model.DeliveryToken{}, malformed("token expiry time %q: %v", t.Expiry, err)
	}
	return model.DeliveryToken{
		Key:            t.Key,
		Issued:         issued,
		Expiry:         expiry,
		Signature:      append([]byte(nil), t.Signature...),
		RefundOnExpiry: t.RefundOnExpiry,
	}, nil
}

// QuoteToWire converts a price quote.
func QuoteToWire(q model.PriceQuote) wire.TotalPriceResponse {
	return wire.TotalPriceResponse{
		ServerID:           q.ServerID,
		ClientID:           q.ClientID,
		PriceID:            q.PriceID.Ptr(),
		UnitsToSupply:      wire.Int32(q.Units),
		TotalPrice:         wire.Int32(q.Total),
		PaymentReferenceID: q.PaymentReference,
		MerchantClientKey:  q.MerchantKey,
		CurrencyCode:       q.Currency,
	}
}

// QuoteFromWire converts a total price record. Absent unit and total
// counts read as zero.
func QuoteFromWire(r *wire.TotalPriceResponse) (model.PriceQuote, error) {
	if r == nil {
		return model.PriceQuote{}, malformed("total price response is missing")
	}
	return model.PriceQuote{
		ServerID:         r.ServerID,
		ClientID:         r.ClientID,
		PriceID:          optional(r.PriceID),
		Units:            orZero(r.UnitsToSupply),
		Total:            orZero(r.TotalPrice),
		PaymentReference: r.PaymentReferenceID,
		MerchantKey:      r.MerchantClientKey,
		Currency:         r.CurrencyCode,
	}, nil
}

// PaymentToWire converts a payment result.
func PaymentToWire(p model.PaymentResult) wire.PaymentResponse {
	token := TokenToWire(p.Token)
	return wire.PaymentResponse{
		ServerID:             p.ServerID,
		ClientID:             p.ClientID,
		TotalPaid:            wire.Int32(p.TotalPaid),
		ServiceDeliveryToken: &token,
	}
}

// PaymentFromWire converts a payment response. The delivery token is
// required.
func PaymentFromWire(r *wire.PaymentResponse) (model.PaymentResult, error) {
	if r == nil {
		return model.PaymentResult{}, malformed("payment response is missing")
	}
	token, err := TokenFromWire(r.ServiceDeliveryToken)
	if err != nil {
		return model.PaymentResult{}, err
	}
	return model.PaymentResult{
		ServerID:  r.ServerID,
		ClientID:  r.ClientID,
		TotalPaid: orZero(r.TotalPaid),
		Token:     token,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
