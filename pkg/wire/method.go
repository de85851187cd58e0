package wire

import (
	"fmt"
	"strings"
)

// Method identifies the operation a Call performs.
type Method uint8

// Command methods, sent by the client to the agent.
const (
	MethodSetup                 Method = 0x01
	MethodAddService            Method = 0x02
	MethodRemoveService         Method = 0x03
	MethodInitConsumer          Method = 0x04
	MethodInitProducer          Method = 0x05
	MethodGetDevice             Method = 0x06
	MethodStartServiceBroadcast Method = 0x07
	MethodStopServiceBroadcast  Method = 0x08
	MethodDeviceDiscovery       Method = 0x09
	MethodSearchForDevice       Method = 0x0A
	MethodRequestServices       Method = 0x0B
	MethodGetServicePrices      Method = 0x0C
	MethodSelectService         Method = 0x0D
	MethodMakePayment           Method = 0x0E
	MethodBeginServiceDelivery  Method = 0x0F
	MethodEndServiceDelivery    Method = 0x10
	MethodCloseAgent            Method = 0x11
)

// Callback methods, sent by the agent to the client's callback listener.
const (
	CallbackBeginServiceDelivery   Method = 0x40
	CallbackEndServiceDelivery     Method = 0x41
	CallbackMakePaymentEvent       Method = 0x42
	CallbackServiceDiscoveryEvent  Method = 0x43
	CallbackServicePricesEvent     Method = 0x44
	CallbackServiceTotalPriceEvent Method = 0x45
	CallbackErrorEvent             Method = 0x46
)

// callbackBase is the first callback method value.
const callbackBase Method = 0x40

var methodNames = map[Method]string{
	MethodSetup:                 "setup",
	MethodAddService:            "addService",
	MethodRemoveService:         "removeService",
	MethodInitConsumer:          "initConsumer",
	MethodInitProducer:          "initProducer",
	MethodGetDevice:             "getDevice",
	MethodStartServiceBroadcast: "startServiceBroadcast",
	MethodStopServiceBroadcast:  "stopServiceBroadcast",
	MethodDeviceDiscovery:       "deviceDiscovery",
	MethodSearchForDevice:       "searchForDevice",
	MethodRequestServices:       "requestServices",
	MethodGetServicePrices:      "getServicePrices",
	MethodSelectService:         "selectService",
	MethodMakePayment:           "makePayment",
	MethodBeginServiceDelivery:  "beginServiceDelivery",
	MethodEndServiceDelivery:    "endServiceDelivery",
	MethodCloseAgent:            "closeAgent",

	CallbackBeginServiceDelivery:   "beginServiceDeliveryEvent",
	CallbackEndServiceDelivery:     "endServiceDeliveryEvent",
	CallbackMakePaymentEvent:       "makePaymentEvent",
	CallbackServiceDiscoveryEvent:  "serviceDiscoveryEvent",
	CallbackServicePricesEvent:     "servicePricesEvent",
	CallbackServiceTotalPriceEvent: "serviceTotalPriceEvent",
	CallbackErrorEvent:             "errorEvent",
}

// String returns the method name.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if m is a known command or callback method.
func (m Method) IsValid() bool {
	_, ok := methodNames[m]
	return ok
}

// IsCallback returns true if m is sent by the agent to the client.
func (m Method) IsCallback() bool {
	return m >= callbackBase
}

// ParseMethod returns the method with the given name, ignoring case.
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if strings.EqualFold(n, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown method: %s", name)
}
