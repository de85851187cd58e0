package session

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/within-protocol/within-go/pkg/callback"
	"github.com/within-protocol/within-go/pkg/client"
	"github.com/within-protocol/within-go/pkg/connection"
	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/supervisor"
	"github.com/within-protocol/within-go/pkg/wire"
)

// supervisorStopTimeout bounds the supervisor's Stop during Close.
const supervisorStopTimeout = 10 * time.Second

// State is the command connection's lifecycle state.
type State uint8

const (
	StateCreated State = iota
	StateConnected
	StateClosing
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateConnected:
		return "Connected"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Option configures Open.
type Option func(*options)

type options struct {
	supervisor     supervisor.Supervisor
	hooks          *ShutdownHooks
	logger         *slog.Logger
	protocolLogger log.Logger
}

// WithSupervisor starts sup before connecting and stops it on Close.
func WithSupervisor(sup supervisor.Supervisor) Option {
	return func(o *options) { o.supervisor = sup }
}

// WithShutdownHooks registers the session's Close with hooks.
func WithShutdownHooks(hooks *ShutdownHooks) Option {
	return func(o *options) { o.hooks = hooks }
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithProtocolLogger captures both channels' traffic and the session's
// state changes.
func WithProtocolLogger(logger log.Logger) Option {
	return func(o *options) { o.protocolLogger = logger }
}

// Session owns one command connection, an optional event listener and an
// optional agent supervisor.
type Session struct {
	id     string
	config Config
	opts   options

	client *client.Client
	bridge *callback.Bridge

	mu    sync.Mutex
	state State
}

// Open validates cfg, starts the supervisor if one was given, connects to
// the agent and, if cfg.CallbackPort > 0, starts the event listener. On
// failure everything acquired so far is released.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errs.Config("", "config is required")
	}
	config := *cfg
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:     uuid.New().String(),
		config: config,
		state:  StateCreated,
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	s.logState(StateCreated, StateCreated, "")

	if sup := s.opts.supervisor; sup != nil {
		if err := sup.Start(ctx); err != nil {
			return nil, err
		}
	}

	c, err := s.connect(ctx)
	if err != nil {
		s.stopSupervisor()
		return nil, err
	}
	s.client = c

	if config.CallbackPort > 0 {
		codec, _ := wire.CodecFor(config.Protocol)
		b := callback.New(callback.Config{
			Host:           config.CallbackHost,
			Port:           config.CallbackPort,
			StopTimeout:    config.StopTimeout,
			Codec:          codec,
			MaxMessageSize: config.MaxMessageSize,
			SessionID:      s.id,
			Logger:         s.opts.logger,
			ProtocolLogger: s.opts.protocolLogger,
		})
		if err := b.Start(ctx); err != nil {
			_ = c.Close()
			s.stopSupervisor()
			return nil, err
		}
		s.bridge = b
	}

	s.setState(StateConnected, "")
	if s.opts.hooks != nil {
		s.opts.hooks.Register("session "+s.id, s.Close)
	}
	s.debugLog("session: open", "session_id", s.id, "agent", s.agentAddress(), "listener", s.bridge != nil)
	return s, nil
}

func (s *Session) agentAddress() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

func (s *Session) connect(ctx context.Context) (*client.Client, error) {
	codec, _ := wire.CodecFor(s.config.Protocol)
	clientConfig := client.Config{
		Address:        s.agentAddress(),
		Codec:          codec,
		DialTimeout:    s.config.DialTimeout,
		MaxMessageSize: s.config.MaxMessageSize,
		SessionID:      s.id,
		Logger:         s.opts.logger,
		ProtocolLogger: s.opts.protocolLogger,
	}
	dial := func(ctx context.Context) (*client.Client, error) {
		return client.Dial(ctx, clientConfig)
	}
	if s.config.ReadyTimeout <= 0 {
		return dial(ctx)
	}
	return connection.WaitReady(ctx, connection.ProbeConfig{
		Timeout: s.config.ReadyTimeout,
		Op:      "connect",
		Logger:  s.opts.logger,
	}, dial)
}

// ID returns the session's identifier, as recorded in protocol logs.
func (s *Session) ID() string { return s.id }

// Config returns the session's connection parameters.
func (s *Session) Config() Config { return s.config }

// State returns the command connection's state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ListenerState returns the event listener's state. A session without a
// listener reports callback.StateNotStarted.
func (s *Session) ListenerState() callback.State {
	if s.bridge == nil {
		return callback.StateNotStarted
	}
	return s.bridge.State()
}

// CallbackAddr returns the event listener's address, or nil without one.
func (s *Session) CallbackAddr() net.Addr {
	if s.bridge == nil {
		return nil
	}
	return s.bridge.Addr()
}

// Close stops the listener, closes the command connection and stops the
// supervisor, in that order. Failures are logged; the only error returned
// is a *errs.TimeoutError when the listener did not drain in time. Calling
// Close again returns nil.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosing || s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	old := s.state
	s.state = StateClosing
	s.mu.Unlock()
	s.logState(old, StateClosing, "")

	var result error
	if s.bridge != nil {
		if err := s.bridge.Stop(); err != nil {
			var terr *errs.TimeoutError
			if errors.As(err, &terr) {
				result = terr
			}
			s.warnLog("session: listener stop failed", "session_id", s.id, "error", err)
		}
	}

	if err := s.client.Close(); err != nil {
		s.warnLog("session: connection close failed", "session_id", s.id, "error", err)
	}

	s.stopSupervisor()

	s.setState(StateClosed, "")
	return result
}

func (s *Session) stopSupervisor() {
	sup := s.opts.supervisor
	if sup == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), supervisorStopTimeout)
	defer cancel()
	if err := sup.Stop(ctx); err != nil {
		s.warnLog("session: supervisor stop failed", "session_id", s.id, "error", err)
	}
}

// active returns the client if commands may be issued. Otherwise the error
// is a *errs.ProtocolError for op wrapping a *errs.StateError.
func (s *Session) active(op string) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return nil, errs.Protocol(op, &errs.StateError{Component: "session", State: s.state.String(), Op: op})
	}
	return s.client, nil
}

func (s *Session) setState(to State, reason string) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	s.logState(from, to, reason)
}

func (s *Session) logState(from, to State, reason string) {
	if s.opts.protocolLogger == nil {
		return
	}
	old := from.String()
	if from == to {
		old = ""
	}
	s.opts.protocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: old,
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (s *Session) debugLog(msg string, args ...any) {
	if s.opts.logger != nil {
		s.opts.logger.Debug(msg, args...)
	}
}

func (s *Session) warnLog(msg string, args ...any) {
	logger := s.opts.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(msg, args...)
}
