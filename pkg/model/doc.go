// Package model defines the domain entities exchanged with a Within agent.
//
// # Entities
//
// The commerce flow between a consumer and a producer device works on a
// small set of records:
//
//	Device
//	└── Service (id, name, description)
//	    └── Price (id, unit, per-unit money)
//
//	DeviceDescriptor   a producer found during discovery
//	PriceQuote         the producer's answer to selectService
//	PaymentResult      the outcome of makePayment, carrying a DeliveryToken
//
// # Absent vs Zero
//
// Identifiers that may be missing on the wire use Optional. An absent value
// has Present == false and Value == 0, so OrZero gives the zero default while
// callers that care can still tell the two apart:
//
//	id := svc.ID.OrZero()          // 0 when absent
//	if v, ok := svc.ID.Get(); ok { // only when present
//		...
//	}
//
// Collections that the agent treats as sets are returned as slices. Their
// order carries no meaning.
package model
