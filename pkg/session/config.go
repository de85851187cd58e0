package session

import (
	"time"

	"github.com/within-protocol/within-go/pkg/callback"
	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Defaults.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 9500
)

// Config holds the connection parameters of a session. Open copies it, so
// later changes have no effect on an open session.
type Config struct {
	// Host is the agent's command host.
	Host string

	// Port is the agent's command port (1..65535).
	Port int

	// CallbackHost is the host the event listener binds (default: 127.0.0.1).
	CallbackHost string

	// CallbackPort is the event listener's port. 0 disables the listener.
	CallbackPort int

	// Protocol selects the message encoding (default: cbor).
	Protocol wire.Protocol

	// DialTimeout bounds a single connect attempt (default: 10s).
	DialTimeout time.Duration

	// ReadyTimeout, when positive, retries the connect with backoff until
	// the agent accepts or the timeout expires.
	ReadyTimeout time.Duration

	// StopTimeout bounds the listener's drain on Close (default: 5s).
	StopTimeout time.Duration

	// MaxMessageSize bounds a single message on either channel (default: 1 MiB).
	MaxMessageSize uint32
}

// DefaultConfig returns a config for an agent on the local host with the
// event listener disabled.
func DefaultConfig() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		CallbackHost: callback.DefaultHost,
		Protocol:     wire.DefaultProtocol,
		StopTimeout:  callback.DefaultStopTimeout,
	}
}

// Validate checks the connection parameters. Failures are
// *errs.ConfigurationError.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errs.Config("host", "is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errs.Config("port", "%d is outside 1..65535", c.Port)
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return errs.Config("callbackPort", "%d is outside 0..65535", c.CallbackPort)
	}
	if _, err := wire.CodecFor(c.Protocol); err != nil {
		return errs.Config("protocol", "%v", err)
	}
	if c.ReadyTimeout < 0 {
		return errs.Config("readyTimeout", "must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.CallbackHost == "" {
		c.CallbackHost = callback.DefaultHost
	}
	if c.Protocol == "" {
		c.Protocol = wire.DefaultProtocol
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = callback.DefaultStopTimeout
	}
}
