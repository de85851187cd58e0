package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/within-protocol/within-go/pkg/wire"
)

// Request is an incoming call handed to a HandlerFunc.
type Request struct {
	Call  *wire.Call
	codec wire.Codec
}

// Method returns the called method.
func (r *Request) Method() wire.Method { return r.Call.Method }

// Decode decodes the call's arguments into v. A failure is reported as an
// InvalidArgument StatusError so handlers can return it unchanged.
func (r *Request) Decode(v any) error {
	if err := r.Call.DecodeArgs(r.codec, v); err != nil {
		return &StatusError{Method: r.Call.Method, Status: wire.StatusInvalidArgument, Message: err.Error()}
	}
	return nil
}

// HandlerFunc handles one method. A nil result produces an OK reply without
// a result. Returning a *StatusError selects the reply status; any other
// error is reported as Internal.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// Dispatcher routes calls to handlers by method.
type Dispatcher struct {
	codec    wire.Codec
	mu       sync.RWMutex
	handlers map[wire.Method]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher for codec.
func NewDispatcher(codec wire.Codec) *Dispatcher {
	return &Dispatcher{
		codec:    codec,
		handlers: make(map[wire.Method]HandlerFunc),
	}
}

// SetLogger sets the operational logger.
func (d *Dispatcher) SetLogger(logger *slog.Logger) {
	d.mu.Lock()
	d.logger = logger
	d.mu.Unlock()
}

// Handle registers h for method, replacing any previous handler.
func (d *Dispatcher) Handle(method wire.Method, h HandlerFunc) {
	d.mu.Lock()
	d.handlers[method] = h
	d.mu.Unlock()
}

// Dispatch runs the handler for call and builds its reply. Unknown methods
// get an Unsupported reply; a panicking handler gets an Internal reply.
func (d *Dispatcher) Dispatch(ctx context.Context, call *wire.Call) (reply *wire.Reply) {
	d.mu.RLock()
	h, ok := d.handlers[call.Method]
	logger := d.logger
	d.mu.RUnlock()

	if !ok {
		return wire.NewErrorReply(call.MessageID, wire.StatusUnsupported, "unsupported method "+call.Method.String())
	}

	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("handler panicked", "method", call.Method.String(), "panic", r)
			}
			reply = wire.NewErrorReply(call.MessageID, wire.StatusInternal, fmt.Sprintf("handler panicked: %v", r))
		}
	}()

	result, err := h(ctx, &Request{Call: call, codec: d.codec})
	if err != nil {
		var serr *StatusError
		if errors.As(err, &serr) {
			return wire.NewErrorReply(call.MessageID, serr.Status, serr.Message)
		}
		return wire.NewErrorReply(call.MessageID, wire.StatusInternal, err.Error())
	}

	reply, err = wire.NewReply(d.codec, call.MessageID, result)
	if err != nil {
		return wire.NewErrorReply(call.MessageID, wire.StatusInternal, err.Error())
	}
	return reply
}

// HandleMessage decodes a call, dispatches it and encodes the reply. A
// message that does not decode as a call returns an error and no reply.
func (d *Dispatcher) HandleMessage(ctx context.Context, data []byte) ([]byte, *wire.Call, error) {
	call, err := wire.DecodeCall(d.codec, data)
	if err != nil {
		return nil, nil, err
	}
	out, err := wire.EncodeReply(d.codec, d.Dispatch(ctx, call))
	if err != nil {
		return nil, call, err
	}
	return out, call, nil
}

// Errorf returns a StatusError for handlers.
func Errorf(status wire.Status, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}
