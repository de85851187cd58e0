package connection

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/within-protocol/within-go/pkg/errs"
)

func TestBackoffSequence(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{Initial: 10 * time.Millisecond, Max: 80 * time.Millisecond, Jitter: -1})

	want := []time.Duration{10, 20, 40, 80, 80}
	for i, w := range want {
		if got := b.Next(); got != w*time.Millisecond {
			t.Errorf("attempt %d: got %v, want %v", i, got, w*time.Millisecond)
		}
	}
	if b.Attempts() != len(want) {
		t.Errorf("Attempts() = %d, want %d", b.Attempts(), len(want))
	}

	b.Reset()
	if b.Current() != 10*time.Millisecond || b.Attempts() != 0 {
		t.Errorf("after Reset: current=%v attempts=%d", b.Current(), b.Attempts())
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoff()
	for i := 0; i < 20; i++ {
		base := b.Current()
		d := b.Next()
		maxDelay := base + time.Duration(float64(base)*JitterFactor)
		if d < base || d > maxDelay {
			t.Fatalf("delay %v outside [%v, %v]", d, base, maxDelay)
		}
	}
	if b.Current() != MaxBackoff {
		t.Errorf("Current() = %v, want cap %v", b.Current(), MaxBackoff)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{Multiplier: 0.5})
	assert.Equal(t, InitialBackoff, b.Current())
	b.Next()
	assert.Equal(t, time.Duration(float64(InitialBackoff)*BackoffMultiplier), b.Current())
}

func TestWaitReadySucceedsAfterRetries(t *testing.T) {
	var calls atomic.Int32
	v, err := WaitReady(context.Background(), ProbeConfig{
		Timeout: time.Second,
		Backoff: BackoffConfig{Initial: time.Millisecond, Jitter: -1},
	}, func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("refused")
		}
		return "ready", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitReadyTimesOut(t *testing.T) {
	start := time.Now()
	_, err := WaitReady(context.Background(), ProbeConfig{
		Timeout: 60 * time.Millisecond,
		Op:      "agent readiness",
		Backoff: BackoffConfig{Initial: 5 * time.Millisecond},
	}, func(context.Context) (int, error) {
		return 0, errors.New("refused")
	})

	var terr *errs.TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "agent readiness", terr.Op)
	assert.Equal(t, 60*time.Millisecond, terr.Timeout)
	assert.True(t, IsTimeout(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitReadyHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := WaitReady(ctx, ProbeConfig{Timeout: 5 * time.Second}, func(context.Context) (int, error) {
		return 0, errors.New("refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestWaitReadyTCPListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	// Bring the listener up after a few failed attempts.
	go func() {
		time.Sleep(30 * time.Millisecond)
		l2, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		defer l2.Close()
		conn, err := l2.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := WaitReady(context.Background(), ProbeConfig{
		Timeout: 2 * time.Second,
		Backoff: BackoffConfig{Initial: 5 * time.Millisecond},
	}, func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	})
	require.NoError(t, err)
	conn.Close()
}

func TestWaitReadyPermanentStops(t *testing.T) {
	exited := errors.New("process exited")
	var calls atomic.Int32

	_, err := WaitReady(context.Background(), ProbeConfig{Timeout: 5 * time.Second}, func(context.Context) (int, error) {
		calls.Add(1)
		return 0, Permanent(exited)
	})
	assert.Same(t, exited, err)
	assert.Equal(t, int32(1), calls.Load())
}
