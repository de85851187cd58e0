package session

import (
	"github.com/within-protocol/within-go/pkg/callback"
)

// Subscribe registers h for events of kind. Without an event listener
// (CallbackPort 0) it does nothing and returns the zero SubscriptionID; h is
// never invoked.
func (s *Session) Subscribe(kind callback.Kind, h callback.Handler) callback.SubscriptionID {
	if s.bridge == nil {
		s.debugLog("session: no listener, subscription ignored", "session_id", s.id, "kind", kind.String())
		return 0
	}
	return s.bridge.Subscribe(kind, h)
}

// Unsubscribe removes a registration. It reports whether one was removed.
func (s *Session) Unsubscribe(kind callback.Kind, id callback.SubscriptionID) bool {
	if s.bridge == nil {
		return false
	}
	return s.bridge.Unsubscribe(kind, id)
}

func on[E callback.Event](s *Session, kind callback.Kind, fn func(E)) callback.SubscriptionID {
	return s.Subscribe(kind, func(ev callback.Event) error {
		fn(ev.(E))
		return nil
	})
}

// OnServiceDeliveryBegun subscribes fn to delivery starts.
func (s *Session) OnServiceDeliveryBegun(fn func(callback.ServiceDeliveryBegun)) callback.SubscriptionID {
	return on(s, callback.KindServiceDeliveryBegun, fn)
}

// OnServiceDeliveryEnded subscribes fn to delivery ends.
func (s *Session) OnServiceDeliveryEnded(fn func(callback.ServiceDeliveryEnded)) callback.SubscriptionID {
	return on(s, callback.KindServiceDeliveryEnded, fn)
}

// OnPaymentMade subscribes fn to completed payments.
func (s *Session) OnPaymentMade(fn func(callback.PaymentMade)) callback.SubscriptionID {
	return on(s, callback.KindPaymentMade, fn)
}

// OnDeviceDiscovered subscribes fn to consumers discovering this device.
func (s *Session) OnDeviceDiscovered(fn func(callback.DeviceDiscovered)) callback.SubscriptionID {
	return on(s, callback.KindDeviceDiscovered, fn)
}

// OnPricesRequested subscribes fn to price requests.
func (s *Session) OnPricesRequested(fn func(callback.PricesRequested)) callback.SubscriptionID {
	return on(s, callback.KindPricesRequested, fn)
}

// OnTotalPriceComputed subscribes fn to computed quotes.
func (s *Session) OnTotalPriceComputed(fn func(callback.TotalPriceComputed)) callback.SubscriptionID {
	return on(s, callback.KindTotalPriceComputed, fn)
}

// OnErrorRaised subscribes fn to agent-reported errors.
func (s *Session) OnErrorRaised(fn func(callback.ErrorRaised)) callback.SubscriptionID {
	return on(s, callback.KindErrorRaised, fn)
}
