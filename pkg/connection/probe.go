package connection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/within-protocol/within-go/pkg/errs"
)

// DefaultProbeTimeout bounds WaitReady when ProbeConfig.Timeout is zero.
const DefaultProbeTimeout = 10 * time.Second

// ProbeConfig configures WaitReady.
type ProbeConfig struct {
	// Timeout bounds the whole probe (default: 10s).
	Timeout time.Duration

	// Backoff paces the attempts.
	Backoff BackoffConfig

	// Op names the probe in a TimeoutError (default: "wait ready").
	Op string

	// Logger is the operational logger (optional).
	Logger *slog.Logger
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final: WaitReady returns it without retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// WaitReady calls attempt until it succeeds, ctx ends or cfg.Timeout
// expires. Each attempt gets a context bounded by the remaining time. An
// expired timeout returns *errs.TimeoutError and the last attempt's error is
// logged at debug level. Cancellation of ctx returns ctx.Err().
func WaitReady[T any](ctx context.Context, cfg ProbeConfig, attempt func(context.Context) (T, error)) (T, error) {
	var zero T

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	if cfg.Op == "" {
		cfg.Op = "wait ready"
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	backoff := NewBackoffWithConfig(cfg.Backoff)
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	var lastErr error
	for {
		v, err := attempt(probeCtx)
		if err == nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("probe: ready", "op", cfg.Op, "attempts", backoff.Attempts()+1)
			}
			return v, nil
		}
		var perr *permanentError
		if errors.As(err, &perr) {
			return zero, perr.err
		}
		lastErr = err
		if cfg.Logger != nil {
			cfg.Logger.Debug("probe: not ready", "op", cfg.Op, "attempt", backoff.Attempts()+1, "error", err)
		}

		timer.Reset(backoff.Next())
		select {
		case <-timer.C:
		case <-probeCtx.Done():
		}

		if probeCtx.Err() != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			if cfg.Logger != nil {
				cfg.Logger.Debug("probe: gave up", "op", cfg.Op, "timeout", cfg.Timeout, "error", lastErr)
			}
			return zero, &errs.TimeoutError{Op: cfg.Op, Timeout: cfg.Timeout}
		}
	}
}

// IsTimeout reports whether err is a probe timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, errs.ErrTimeout)
}
