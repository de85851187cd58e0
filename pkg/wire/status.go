package wire

// Status is the outcome code carried in a Reply.
type Status uint8

const (
	// StatusOK indicates the call completed.
	StatusOK Status = 0

	// StatusInvalidArgument indicates malformed or out-of-range arguments.
	StatusInvalidArgument Status = 1

	// StatusNotFound indicates a referenced service, price or device is unknown.
	StatusNotFound Status = 2

	// StatusInvalidState indicates the call is not allowed in the agent's
	// current state, e.g. makePayment before selectService.
	StatusInvalidState Status = 3

	// StatusInternal indicates an agent-side failure.
	StatusInternal Status = 4

	// StatusUnsupported indicates the method is not implemented.
	StatusUnsupported Status = 5
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusInvalidState:
		return "INVALID_STATE"
	case StatusInternal:
		return "INTERNAL"
	case StatusUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusOK
}
