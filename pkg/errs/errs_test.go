package errs

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"configuration", Config("port", "must be positive"), ErrConfiguration},
		{"protocol", Protocol("setup", io.EOF), ErrProtocol},
		{"state", &StateError{Component: "bridge", State: "Started", Op: "start"}, ErrState},
		{"timeout", &TimeoutError{Op: "stop", Timeout: time.Second}, ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			for _, other := range []error{ErrConfiguration, ErrProtocol, ErrState, ErrTimeout} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestProtocolWrapsCause(t *testing.T) {
	err := Protocol("requestServices", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "requestServices: unexpected EOF", err.Error())

	var perr *ProtocolError
	require.True(t, errors.As(error(err), &perr))
	assert.Equal(t, "requestServices", perr.Op)
}

func TestProtocolDoesNotDoubleWrap(t *testing.T) {
	inner := Malformed("", "missing service")
	outer := Protocol("addService", inner)
	assert.Equal(t, "addService", outer.Op)
	assert.Equal(t, "missing service", outer.Message)
	assert.Empty(t, inner.Op, "the wrapped error must not be modified")
	assert.NotSame(t, inner, outer)

	named := Malformed("adapter", "bad")
	kept := Protocol("other", named)
	assert.Same(t, named, kept)
	assert.Equal(t, "adapter", kept.Op)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid configuration: config is nil",
		(&ConfigurationError{Reason: "config is nil"}).Error())
	assert.Equal(t, "invalid configuration: host: must not be empty",
		Config("host", "must not be empty").Error())
	assert.Equal(t, "callback bridge: cannot stop in state NotStarted",
		(&StateError{Component: "callback bridge", State: "NotStarted", Op: "stop"}).Error())
	assert.Equal(t, "stop: timed out after 2s",
		(&TimeoutError{Op: "stop", Timeout: 2 * time.Second}).Error())
	assert.Equal(t, "protocol error: boom", (&ProtocolError{Message: "boom"}).Error())
}
