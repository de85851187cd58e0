package log

import (
	"time"

	"github.com/within-protocol/within-go/pkg/wire"
)

// Event is one captured protocol event.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the transport connection (UUID).
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// SessionID identifies the owning session (UUID), when known.
	SessionID string `cbor:"3,keyasint,omitempty"`

	Direction Direction `cbor:"4,keyasint"`
	Layer     Layer     `cbor:"5,keyasint"`
	Category  Category  `cbor:"6,keyasint"`

	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Exactly one of these is set.
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates message flow relative to the local process.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer is the protocol layer that captured an event.
type Layer uint8

const (
	LayerTransport Layer = 0
	LayerWire      Layer = 1
	LayerSession   Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies an event.
type Category uint8

const (
	CategoryMessage Category = 0
	CategoryState   Category = 1
	CategoryError   Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw frame.
type FrameEvent struct {
	// Size includes the length prefix.
	Size      int    `cbor:"1,keyasint"`
	Data      []byte `cbor:"2,keyasint,omitempty"`
	Truncated bool   `cbor:"3,keyasint,omitempty"`
}

// MessageKind distinguishes calls from replies.
type MessageKind uint8

const (
	MessageCall  MessageKind = 0
	MessageReply MessageKind = 1
)

// String returns the message kind name.
func (k MessageKind) String() string {
	switch k {
	case MessageCall:
		return "CALL"
	case MessageReply:
		return "REPLY"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a decoded call or reply.
type MessageEvent struct {
	Kind      MessageKind  `cbor:"1,keyasint"`
	MessageID uint32       `cbor:"2,keyasint"`
	Method    *wire.Method `cbor:"3,keyasint,omitempty"`
	Status    *wire.Status `cbor:"4,keyasint,omitempty"`

	// PayloadSize is the size of the encoded args or result.
	PayloadSize int `cbor:"5,keyasint,omitempty"`

	// ErrorMessage is the peer's error text on failed replies.
	ErrorMessage string `cbor:"6,keyasint,omitempty"`

	// Elapsed is the round-trip time, set on replies to calls this side made.
	Elapsed *time.Duration `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures a lifecycle transition.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	OldState string      `cbor:"2,keyasint,omitempty"`
	NewState string      `cbor:"3,keyasint"`
	Reason   string      `cbor:"4,keyasint,omitempty"`
}

// StateEntity is the thing whose state changed.
type StateEntity uint8

const (
	StateEntityConnection StateEntity = 0
	StateEntitySession    StateEntity = 1
	StateEntityListener   StateEntity = 2
	StateEntityAgent      StateEntity = 3
)

// String returns the entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	case StateEntityListener:
		return "LISTENER"
	case StateEntityAgent:
		return "AGENT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an error.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Context names the operation in progress, e.g. "dispatch beginServiceDeliveryEvent".
	Context string `cbor:"3,keyasint,omitempty"`
}
