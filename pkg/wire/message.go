package wire

import (
	"errors"
	"fmt"
)

// Message errors.
var (
	ErrInvalidMessageID = errors.New("messageId 0 is reserved")
	ErrInvalidMethod    = errors.New("invalid method")
	ErrNoArgs           = errors.New("call carries no arguments")
	ErrNoResult         = errors.New("reply carries no result")
)

// Call is a request from one side to the other.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, never 0
//	  2: method,     // uint8
//	  3: args        // bytes, method-specific record encoded with the same codec
//	}
type Call struct {
	MessageID uint32 `cbor:"1,keyasint" json:"messageId"`
	Method    Method `cbor:"2,keyasint" json:"method"`
	Args      []byte `cbor:"3,keyasint,omitempty" json:"args,omitempty"`
}

// Validate checks the envelope fields.
func (c *Call) Validate() error {
	if c.MessageID == 0 {
		return ErrInvalidMessageID
	}
	if !c.Method.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidMethod, c.Method)
	}
	return nil
}

// Reply answers a Call with the same message ID.
//
// CBOR encoding:
//
//	{
//	  1: messageId,  // uint32, matches the call
//	  2: status,     // uint8
//	  3: result,     // bytes, present on success when the method returns data
//	  4: error       // ErrorPayload, present when status != OK
//	}
type Reply struct {
	MessageID uint32        `cbor:"1,keyasint" json:"messageId"`
	Status    Status        `cbor:"2,keyasint" json:"status"`
	Result    []byte        `cbor:"3,keyasint,omitempty" json:"result,omitempty"`
	Error     *ErrorPayload `cbor:"4,keyasint,omitempty" json:"error,omitempty"`
}

// ErrorPayload describes an application failure reported by the peer.
type ErrorPayload struct {
	Message string `cbor:"1,keyasint" json:"message"`
	Detail  string `cbor:"2,keyasint,omitempty" json:"detail,omitempty"`
}

// NewCall builds a Call, encoding args with codec. A nil args leaves the
// Args field empty.
func NewCall(codec Codec, id uint32, method Method, args any) (*Call, error) {
	call := &Call{MessageID: id, Method: method}
	if args != nil {
		data, err := codec.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s args: %w", method, err)
		}
		call.Args = data
	}
	return call, nil
}

// DecodeArgs decodes the call's arguments into v.
func (c *Call) DecodeArgs(codec Codec, v any) error {
	if len(c.Args) == 0 {
		return ErrNoArgs
	}
	if err := codec.Unmarshal(c.Args, v); err != nil {
		return fmt.Errorf("failed to decode %s args: %w", c.Method, err)
	}
	return nil
}

// NewReply builds a successful Reply, encoding result with codec. A nil
// result leaves the Result field empty.
func NewReply(codec Codec, id uint32, result any) (*Reply, error) {
	reply := &Reply{MessageID: id, Status: StatusOK}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		reply.Result = data
	}
	return reply, nil
}

// NewErrorReply builds a failed Reply.
func NewErrorReply(id uint32, status Status, message string) *Reply {
	return &Reply{
		MessageID: id,
		Status:    status,
		Error:     &ErrorPayload{Message: message},
	}
}

// DecodeResult decodes the reply's result into v.
func (r *Reply) DecodeResult(codec Codec, v any) error {
	if len(r.Result) == 0 {
		return ErrNoResult
	}
	if err := codec.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// ErrorMessage returns the peer's error message, or the status name when
// the peer sent none.
func (r *Reply) ErrorMessage() string {
	if r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	return r.Status.String()
}

// EncodeCall encodes a call after validating it.
func EncodeCall(codec Codec, call *Call) ([]byte, error) {
	if err := call.Validate(); err != nil {
		return nil, fmt.Errorf("invalid call: %w", err)
	}
	return codec.Marshal(call)
}

// DecodeCall decodes and validates a call.
func DecodeCall(codec Codec, data []byte) (*Call, error) {
	var call Call
	if err := codec.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("failed to decode call: %w", err)
	}
	if err := call.Validate(); err != nil {
		return nil, fmt.Errorf("invalid call: %w", err)
	}
	return &call, nil
}

// EncodeReply encodes a reply.
func EncodeReply(codec Codec, reply *Reply) ([]byte, error) {
	return codec.Marshal(reply)
}

// DecodeReply decodes a reply.
func DecodeReply(codec Codec, data []byte) (*Reply, error) {
	var reply Reply
	if err := codec.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	if reply.MessageID == 0 {
		return nil, fmt.Errorf("invalid reply: %w", ErrInvalidMessageID)
	}
	return &reply, nil
}
