package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/subscription"
	"github.com/within-protocol/within-go/pkg/transport"
	"github.com/within-protocol/within-go/pkg/wire"
)

// DefaultStopTimeout bounds how long Stop waits for connections to drain.
const DefaultStopTimeout = 5 * time.Second

// DefaultHost is the listen host when Config.Host is empty.
const DefaultHost = "127.0.0.1"

// State is the listener's lifecycle state.
type State uint8

const (
	StateNotStarted State = iota
	StateStarted
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateStarted:
		return "Started"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Handler receives one event. A returned error is logged.
type Handler func(Event) error

// SubscriptionID names one Subscribe registration.
type SubscriptionID = subscription.ID

// Config configures the listener.
type Config struct {
	// Host to listen on (default: 127.0.0.1).
	Host string

	// Port to listen on. 0 picks a free port; see Addr.
	Port int

	// StopTimeout bounds Stop's drain (default: 5s).
	StopTimeout time.Duration

	// Codec must match the agent's (default: CBOR).
	Codec wire.Codec

	// MaxMessageSize bounds a single message (default: 1 MiB).
	MaxMessageSize uint32

	// SessionID tags captured protocol events.
	SessionID string

	// Logger is the operational logger (optional).
	Logger *slog.Logger

	// ProtocolLogger captures frames and faults (optional).
	ProtocolLogger log.Logger
}

// DefaultConfig returns a config listening on DefaultHost with an
// ephemeral port.
func DefaultConfig() Config {
	return Config{
		Host:        DefaultHost,
		StopTimeout: DefaultStopTimeout,
		Codec:       wire.CBOR(),
	}
}

// Bridge is the inbound event listener.
type Bridge struct {
	config     Config
	dispatcher *interaction.Dispatcher
	subs       *subscription.Registry[Kind, Handler]

	mu     sync.Mutex
	state  State
	server *transport.Server
}

// New creates a bridge. It does not listen until Start.
func New(config Config) *Bridge {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = DefaultStopTimeout
	}
	if config.Codec == nil {
		config.Codec = wire.CBOR()
	}

	b := &Bridge{
		config:     config,
		dispatcher: interaction.NewDispatcher(config.Codec),
		subs:       subscription.NewRegistry[Kind, Handler](),
	}
	b.dispatcher.SetLogger(config.Logger)
	for method, decode := range decoders {
		b.dispatcher.Handle(method, b.handlerFor(decode))
	}
	return b
}

// Subscribe appends h to the handlers for kind and returns its ID.
// Subscribing is allowed in every state.
func (b *Bridge) Subscribe(kind Kind, h Handler) SubscriptionID {
	return b.subs.Add(kind, h)
}

// Unsubscribe removes the registration id for kind. A dispatch already in
// progress still calls the handler.
func (b *Bridge) Unsubscribe(kind Kind, id SubscriptionID) bool {
	return b.subs.Remove(kind, id)
}

// SubscriberCount returns the number of handlers for kind.
func (b *Bridge) SubscriberCount(kind Kind) int {
	return b.subs.Count(kind)
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Addr returns the listen address while started, else nil.
func (b *Bridge) Addr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.server == nil {
		return nil
	}
	return b.server.Addr()
}

// Start begins listening. It fails with *errs.StateError unless the bridge
// is NotStarted.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateNotStarted {
		return &errs.StateError{Component: "callback listener", State: b.state.String(), Op: "start"}
	}

	server, err := transport.NewServer(transport.ServerConfig{
		Address:        net.JoinHostPort(b.config.Host, strconv.Itoa(b.config.Port)),
		MaxMessageSize: b.config.MaxMessageSize,
		Logger:         b.config.ProtocolLogger,
		OnMessage:      b.onMessage,
		OnError: func(conn *transport.ServerConn, err error) {
			b.debugLog("callback: connection error", "error", err)
		},
	})
	if err != nil {
		return errs.Config("callback.address", "%v", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("callback listener: %w", err)
	}

	b.server = server
	b.state = StateStarted
	b.logState(StateNotStarted, StateStarted, "")
	b.debugLog("callback: listening", "address", server.Addr().String())
	return nil
}

// Stop closes the listener and its connections and waits for in-flight
// dispatches to finish, bounded by Config.StopTimeout. Past the bound it
// returns *errs.TimeoutError; the bridge is Stopped either way. Stop fails
// with *errs.StateError unless the bridge is Started. Registered handlers
// are released; a dispatch still running keeps its own snapshot.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	if b.state != StateStarted {
		state := b.state
		b.mu.Unlock()
		return &errs.StateError{Component: "callback listener", State: state.String(), Op: "stop"}
	}
	b.state = StateStopped
	server := b.server
	b.mu.Unlock()

	err := server.Stop(b.config.StopTimeout)
	b.debugLog("callback: releasing subscriptions", "count", b.subs.Len())
	b.subs.Clear()
	if errors.Is(err, transport.ErrStopTimeout) {
		b.logState(StateStarted, StateStopped, "drain timed out")
		return &errs.TimeoutError{Op: "callback listener stop", Timeout: b.config.StopTimeout}
	}
	if err != nil {
		b.warnLog("callback: stop", "error", err)
	}
	b.logState(StateStarted, StateStopped, "")
	return nil
}

func (b *Bridge) onMessage(conn *transport.ServerConn, msg []byte) {
	out, call, err := b.dispatcher.HandleMessage(context.Background(), msg)
	if err != nil {
		b.warnLog("callback: dropping undecodable message", "conn_id", conn.ConnID(), "error", err)
		b.logError(conn.ConnID(), "decode call", err)
		return
	}
	if err := conn.Send(out); err != nil {
		b.debugLog("callback: failed to acknowledge", "method", call.Method.String(), "error", err)
	}
}

func (b *Bridge) handlerFor(decode decoder) interaction.HandlerFunc {
	return func(_ context.Context, req *interaction.Request) (any, error) {
		ev, err := decode(req)
		if err != nil {
			b.warnLog("callback: rejecting event", "method", req.Method().String(), "error", err)
			return nil, err
		}
		b.dispatch(ev)
		return nil, nil
	}
}

// dispatch calls every handler for ev's kind in registration order.
func (b *Bridge) dispatch(ev Event) {
	kind := ev.Kind()
	for i, h := range b.subs.Snapshot(kind) {
		b.invoke(kind, i, h, ev)
	}
}

func (b *Bridge) invoke(kind Kind, index int, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panicked: %v", r)
			b.warnLog("callback: handler fault", "kind", kind.String(), "handler", index, "error", err)
			b.logError("", "dispatch "+kind.String(), err)
		}
	}()
	if err := h(ev); err != nil {
		b.warnLog("callback: handler failed", "kind", kind.String(), "handler", index, "error", err)
		b.logError("", "dispatch "+kind.String(), err)
	}
}

func (b *Bridge) debugLog(msg string, args ...any) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, args...)
	}
}

func (b *Bridge) warnLog(msg string, args ...any) {
	logger := b.config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(msg, args...)
}

func (b *Bridge) logState(from, to State, reason string) {
	if b.config.ProtocolLogger == nil {
		return
	}
	b.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: b.config.SessionID,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityListener,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (b *Bridge) logError(connID, context string, err error) {
	if b.config.ProtocolLogger == nil {
		return
	}
	b.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		SessionID:    b.config.SessionID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerSession,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: err.Error(),
			Context: context,
		},
	})
}
