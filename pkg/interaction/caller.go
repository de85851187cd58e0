package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Caller errors.
var (
	ErrCallerClosed = errors.New("caller is closed")
)

// Conn is the connection a Caller talks over.
type Conn interface {
	Send(data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// StatusError is a non-OK reply from the peer.
type StatusError struct {
	Method  wire.Method
	Status  wire.Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed: %s", e.Method, e.Status)
	}
	return fmt.Sprintf("%s failed: %s: %s", e.Method, e.Status, e.Message)
}

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithProtocolLogger captures Call and Reply envelopes.
func WithProtocolLogger(logger log.Logger, connID, sessionID string) CallerOption {
	return func(c *Caller) {
		c.protoLog = logger
		c.connID = connID
		c.sessionID = sessionID
	}
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) CallerOption {
	return func(c *Caller) { c.logger = logger }
}

// Caller performs synchronous calls over a Conn.
type Caller struct {
	// mu keeps one call in flight.
	mu    sync.Mutex
	conn  Conn
	codec wire.Codec

	nextMsgID atomic.Uint32
	closed    atomic.Bool

	logger    *slog.Logger
	protoLog  log.Logger
	connID    string
	sessionID string
}

// NewCaller creates a caller over conn.
func NewCaller(conn Conn, codec wire.Codec, opts ...CallerOption) *Caller {
	c := &Caller{conn: conn, codec: codec}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Codec returns the codec used for envelopes and records.
func (c *Caller) Codec() wire.Codec { return c.codec }

// Call sends method with args and waits for the matching reply. If result is
// non-nil the reply's result is decoded into it. Replies carrying another
// message ID are discarded.
func (c *Caller) Call(ctx context.Context, method wire.Method, args, result any) error {
	if c.closed.Load() {
		return ErrCallerClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrCallerClosed
	}

	id := c.messageID()
	call, err := wire.NewCall(c.codec, id, method, args)
	if err != nil {
		return err
	}
	data, err := wire.EncodeCall(c.codec, call)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := c.conn.Send(data); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	c.logCall(call, len(data))

	for {
		raw, err := c.conn.Receive(ctx)
		if err != nil {
			// The stream is out of step after a failed read.
			_ = c.Close()
			return fmt.Errorf("failed to receive %s reply: %w", method, err)
		}
		reply, err := wire.DecodeReply(c.codec, raw)
		if err != nil {
			return err
		}
		if reply.MessageID != id {
			c.debugLog("discarding stale reply", "method", method.String(), "want", id, "got", reply.MessageID)
			continue
		}
		c.logReply(method, reply, len(raw), time.Since(start))

		if !reply.Status.IsSuccess() {
			return &StatusError{Method: method, Status: reply.Status, Message: reply.ErrorMessage()}
		}
		if result == nil {
			return nil
		}
		return reply.DecodeResult(c.codec, result)
	}
}

// Close closes the connection. Calls made afterwards fail with
// ErrCallerClosed.
func (c *Caller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

// messageID returns the next non-zero message ID.
func (c *Caller) messageID() uint32 {
	for {
		if id := c.nextMsgID.Add(1); id != 0 {
			return id
		}
	}
}

func (c *Caller) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Caller) logCall(call *wire.Call, size int) {
	if c.protoLog == nil {
		return
	}
	method := call.Method
	c.protoLog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		SessionID:    c.sessionID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Kind:        log.MessageCall,
			MessageID:   call.MessageID,
			Method:      &method,
			PayloadSize: size,
		},
	})
}

func (c *Caller) logReply(method wire.Method, reply *wire.Reply, size int, elapsed time.Duration) {
	if c.protoLog == nil {
		return
	}
	status := reply.Status
	ev := &log.MessageEvent{
		Kind:        log.MessageReply,
		MessageID:   reply.MessageID,
		Method:      &method,
		Status:      &status,
		PayloadSize: size,
		Elapsed:     &elapsed,
	}
	if !status.IsSuccess() {
		ev.ErrorMessage = reply.ErrorMessage()
	}
	c.protoLog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		SessionID:    c.sessionID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message:      ev,
	})
}
