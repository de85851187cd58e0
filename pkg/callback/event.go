package callback

import (
	"github.com/within-protocol/within-go/pkg/adapter"
	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Kind identifies an event variant.
type Kind uint8

// Event kinds.
const (
	KindServiceDeliveryBegun Kind = iota + 1
	KindServiceDeliveryEnded
	KindPaymentMade
	KindDeviceDiscovered
	KindPricesRequested
	KindTotalPriceComputed
	KindErrorRaised
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindServiceDeliveryBegun,
	KindServiceDeliveryEnded,
	KindPaymentMade,
	KindDeviceDiscovered,
	KindPricesRequested,
	KindTotalPriceComputed,
	KindErrorRaised,
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindServiceDeliveryBegun:
		return "ServiceDeliveryBegun"
	case KindServiceDeliveryEnded:
		return "ServiceDeliveryEnded"
	case KindPaymentMade:
		return "PaymentMade"
	case KindDeviceDiscovered:
		return "DeviceDiscovered"
	case KindPricesRequested:
		return "PricesRequested"
	case KindTotalPriceComputed:
		return "TotalPriceComputed"
	case KindErrorRaised:
		return "ErrorRaised"
	default:
		return "Unknown"
	}
}

// Method returns the callback opcode that carries events of kind k.
func (k Kind) Method() wire.Method {
	for m, kind := range methodKinds {
		if kind == k {
			return m
		}
	}
	return 0
}

var methodKinds = map[wire.Method]Kind{
	wire.CallbackBeginServiceDelivery:   KindServiceDeliveryBegun,
	wire.CallbackEndServiceDelivery:     KindServiceDeliveryEnded,
	wire.CallbackMakePaymentEvent:       KindPaymentMade,
	wire.CallbackServiceDiscoveryEvent:  KindDeviceDiscovered,
	wire.CallbackServicePricesEvent:     KindPricesRequested,
	wire.CallbackServiceTotalPriceEvent: KindTotalPriceComputed,
	wire.CallbackErrorEvent:             KindErrorRaised,
}

// Event is one decoded agent event.
type Event interface {
	Kind() Kind
}

// ServiceDeliveryBegun reports that a consumer asked the producer to start
// delivering.
type ServiceDeliveryBegun struct {
	ServiceID     int32
	PriceID       int32
	Token         model.DeliveryToken
	UnitsToSupply int32
}

// ServiceDeliveryEnded reports that a consumer finished receiving.
type ServiceDeliveryEnded struct {
	ServiceID     int32
	Token         model.DeliveryToken
	UnitsReceived int32
}

// PaymentMade reports a completed payment on the producer side.
type PaymentMade struct {
	TotalPrice    int32
	Currency      string
	ClientToken   string
	Description   string
	CorrelationID string
}

// DeviceDiscovered reports that a consumer discovered this producer.
type DeviceDiscovered struct {
	RemoteAddr string
}

// PricesRequested reports that a consumer asked for a service's prices.
type PricesRequested struct {
	RemoteAddr string
	ServiceID  int32
}

// TotalPriceComputed reports a quote issued to a consumer.
type TotalPriceComputed struct {
	RemoteAddr string
	ServiceID  int32
	Quote      model.PriceQuote
}

// ErrorRaised reports an error inside the agent.
type ErrorRaised struct {
	Message string
}

func (ServiceDeliveryBegun) Kind() Kind { return KindServiceDeliveryBegun }
func (ServiceDeliveryEnded) Kind() Kind { return KindServiceDeliveryEnded }
func (PaymentMade) Kind() Kind          { return KindPaymentMade }
func (DeviceDiscovered) Kind() Kind     { return KindDeviceDiscovered }
func (PricesRequested) Kind() Kind      { return KindPricesRequested }
func (TotalPriceComputed) Kind() Kind   { return KindTotalPriceComputed }
func (ErrorRaised) Kind() Kind          { return KindErrorRaised }

// decoder turns an inbound call into an Event.
type decoder func(req *interaction.Request) (Event, error)

// decodeWith decodes the call's arguments into A and converts them. A
// conversion failure is answered as InvalidArgument.
func decodeWith[A any](convert func(*A) (Event, error)) decoder {
	return func(req *interaction.Request) (Event, error) {
		var args A
		if err := req.Decode(&args); err != nil {
			return nil, err
		}
		ev, err := convert(&args)
		if err != nil {
			return nil, interaction.Errorf(wire.StatusInvalidArgument, "%s: %v", req.Method(), err)
		}
		return ev, nil
	}
}

var decoders = map[wire.Method]decoder{
	wire.CallbackBeginServiceDelivery: decodeWith(func(a *wire.BeginDeliveryEvent) (Event, error) {
		token, err := adapter.TokenFromWire(a.Token)
		if err != nil {
			return nil, err
		}
		return ServiceDeliveryBegun{
			ServiceID:     a.ServiceID,
			PriceID:       a.ServicePriceID,
			Token:         token,
			UnitsToSupply: a.UnitsToSupply,
		}, nil
	}),
	wire.CallbackEndServiceDelivery: decodeWith(func(a *wire.EndDeliveryEvent) (Event, error) {
		token, err := adapter.TokenFromWire(a.Token)
		if err != nil {
			return nil, err
		}
		return ServiceDeliveryEnded{
			ServiceID:     a.ServiceID,
			Token:         token,
			UnitsReceived: a.UnitsReceived,
		}, nil
	}),
	wire.CallbackMakePaymentEvent: decodeWith(func(a *wire.MakePaymentEvent) (Event, error) {
		return PaymentMade{
			TotalPrice:    a.TotalPrice,
			Currency:      a.OrderCurrency,
			ClientToken:   a.ClientToken,
			Description:   a.OrderDescription,
			CorrelationID: a.UUID,
		}, nil
	}),
	wire.CallbackServiceDiscoveryEvent: decodeWith(func(a *wire.ServiceDiscoveryEvent) (Event, error) {
		return DeviceDiscovered{RemoteAddr: a.RemoteAddr}, nil
	}),
	wire.CallbackServicePricesEvent: decodeWith(func(a *wire.ServicePricesEvent) (Event, error) {
		return PricesRequested{RemoteAddr: a.RemoteAddr, ServiceID: a.ServiceID}, nil
	}),
	wire.CallbackServiceTotalPriceEvent: decodeWith(func(a *wire.ServiceTotalPriceEvent) (Event, error) {
		quote, err := adapter.QuoteFromWire(a.TotalPrice)
		if err != nil {
			return nil, err
		}
		return TotalPriceComputed{RemoteAddr: a.RemoteAddr, ServiceID: a.ServiceID, Quote: quote}, nil
	}),
	wire.CallbackErrorEvent: decodeWith(func(a *wire.ErrorEvent) (Event, error) {
		return ErrorRaised{Message: a.Message}, nil
	}),
}
