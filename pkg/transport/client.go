package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/within-protocol/within-go/pkg/log"
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInterrupted      = errors.New("receive interrupted, connection is no longer usable")
)

// DialConfig configures an outbound connection.
type DialConfig struct {
	// MaxMessageSize bounds a single payload (default: 1 MiB).
	MaxMessageSize uint32

	// ConnectTimeout applies when ctx carries no deadline (default: 10s).
	ConnectTimeout time.Duration

	// WriteTimeout bounds each Send (0 = none).
	WriteTimeout time.Duration

	// Logger captures frames (optional).
	Logger log.Logger
}

// Dial connects to address over TCP.
func Dial(ctx context.Context, address string, config DialConfig) (*ClientConn, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return NewClientConn(conn, config), nil
}

// ClientConn is an outbound connection. Send and Receive may be used from
// different goroutines, but each is serialized.
type ClientConn struct {
	conn         net.Conn
	framer       *Framer
	connID       string
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex
}

// NewClientConn wraps an established connection.
func NewClientConn(conn net.Conn, config DialConfig) *ClientConn {
	connID := uuid.New().String()
	framer := NewFramerWithMaxSize(conn, config.MaxMessageSize)
	if config.Logger != nil {
		framer.SetLogger(config.Logger, connID, conn.RemoteAddr().String())
	}
	return &ClientConn{
		conn:         conn,
		framer:       framer,
		connID:       connID,
		writeTimeout: config.WriteTimeout,
		closeCh:      make(chan struct{}),
	}
}

// ConnID returns the connection's unique identifier.
func (c *ClientConn) ConnID() string { return c.connID }

// LocalAddr returns the local network address.
func (c *ClientConn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr returns the remote network address.
func (c *ClientConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Send writes one message.
func (c *ClientConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.isClosed() {
		return ErrConnectionClosed
	}
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}
	return c.framer.WriteFrame(data)
}

// Receive reads one message, giving up at ctx's deadline or cancellation.
// Any failed read may leave part of a frame unread, so the connection is
// closed. A receive cut short by ctx returns ErrInterrupted alongside
// ctx.Err().
func (c *ClientConn) Receive(ctx context.Context) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if c.isClosed() {
		return nil, ErrConnectionClosed
	}

	deadline, _ := ctx.Deadline()
	_ = c.conn.SetReadDeadline(deadline)

	// finished keeps a late cancellation from touching the next receive's
	// deadline.
	var deadlineMu sync.Mutex
	finished := false
	stop := context.AfterFunc(ctx, func() {
		deadlineMu.Lock()
		defer deadlineMu.Unlock()
		if !finished {
			_ = c.conn.SetReadDeadline(time.Unix(1, 0))
		}
	})
	data, err := c.framer.ReadFrame()
	deadlineMu.Lock()
	finished = true
	deadlineMu.Unlock()
	stop()

	if err != nil {
		wasClosed := c.isClosed()
		_ = c.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ctxErr, ErrInterrupted)
		}
		if wasClosed {
			return nil, ErrConnectionClosed
		}
		return nil, err
	}
	return data, nil
}

// Close closes the connection. Repeated calls return nil.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection is closed.
func (c *ClientConn) Done() <-chan struct{} { return c.closeCh }

func (c *ClientConn) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}
