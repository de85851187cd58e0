package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/within-protocol/within-go/pkg/connection"
	"github.com/within-protocol/within-go/pkg/log"
)

// Defaults.
const (
	DefaultReadyTimeout = 10 * time.Second
	DefaultGracePeriod  = 3 * time.Second
)

// Supervisor errors.
var (
	ErrAlreadyStarted = errors.New("agent process already started")
	ErrExited         = errors.New("agent process exited")
	ErrNoBinary       = errors.New("agent binary is required")
)

// Supervisor owns the agent's lifetime.
type Supervisor interface {
	// Start returns once the agent accepts connections.
	Start(ctx context.Context) error

	// Stop terminates the agent.
	Stop(ctx context.Context) error
}

// Config configures a Process.
type Config struct {
	// Binary is the agent executable.
	Binary string

	// Args are passed to Binary.
	Args []string

	// Env entries are added to the inherited environment ("KEY=value").
	Env []string

	// Dir is the working directory (default: current).
	Dir string

	// ReadyAddress is probed until it accepts a TCP connection. Empty skips
	// the probe.
	ReadyAddress string

	// ReadyTimeout bounds the probe (default: 10s).
	ReadyTimeout time.Duration

	// GracePeriod is the wait between interrupt and kill (default: 3s).
	GracePeriod time.Duration

	// Stdout and Stderr receive the agent's output (default: discarded).
	Stdout io.Writer
	Stderr io.Writer

	// Logger is the operational logger (optional).
	Logger *slog.Logger

	// ProtocolLogger records agent state changes (optional).
	ProtocolLogger log.Logger
}

// Process supervises one agent process. It is started at most once.
type Process struct {
	config Config

	mu       sync.Mutex
	cmd      *exec.Cmd
	started  bool
	stopping bool

	done    chan struct{}
	waitErr error
}

var _ Supervisor = (*Process)(nil)

// New creates a process supervisor. Nothing runs until Start.
func New(config Config) *Process {
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = DefaultReadyTimeout
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	return &Process{config: config, done: make(chan struct{})}
}

// Start spawns the agent and waits for ReadyAddress to accept connections.
// If the probe fails the process is killed and the probe's error returned:
// *errs.TimeoutError on timeout, ErrExited if the agent died first.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	if p.config.Binary == "" {
		p.mu.Unlock()
		return ErrNoBinary
	}

	cmd := exec.Command(p.config.Binary, p.config.Args...)
	setProcAttr(cmd)
	cmd.Dir = p.config.Dir
	cmd.Stdout = p.config.Stdout
	cmd.Stderr = p.config.Stderr
	if len(p.config.Env) > 0 {
		cmd.Env = append(os.Environ(), p.config.Env...)
	}

	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to start agent %s: %w", p.config.Binary, err)
	}
	p.cmd = cmd
	p.started = true
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.waitErr = err
		p.mu.Unlock()
		close(p.done)
		p.debugLog("supervisor: agent exited", "pid", cmd.Process.Pid, "error", err)
		p.logState("Running", "Exited")
	}()

	p.debugLog("supervisor: agent started", "pid", cmd.Process.Pid, "binary", p.config.Binary)
	p.logState("", "Running")

	if p.config.ReadyAddress == "" {
		return nil
	}

	_, err := connection.WaitReady(ctx, connection.ProbeConfig{
		Timeout: p.config.ReadyTimeout,
		Op:      "agent readiness",
		Logger:  p.config.Logger,
	}, p.probe)
	if err != nil {
		p.kill()
		return err
	}
	p.logState("Running", "Ready")
	return nil
}

func (p *Process) probe(ctx context.Context) (struct{}, error) {
	select {
	case <-p.done:
		return struct{}{}, connection.Permanent(ErrExited)
	default:
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.config.ReadyAddress)
	if err != nil {
		return struct{}{}, err
	}
	_ = conn.Close()
	return struct{}{}, nil
}

// Stop interrupts the agent, waits up to GracePeriod for it to exit and
// then kills it. ctx cuts the wait short. Stopping a process that was never
// started, or already exited, returns nil.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started || p.stopping {
		p.mu.Unlock()
		return nil
	}
	p.stopping = true
	cmd := p.cmd
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	default:
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		p.debugLog("supervisor: interrupt failed, killing", "error", err)
		p.kill()
		return nil
	}

	timer := time.NewTimer(p.config.GracePeriod)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
		p.debugLog("supervisor: grace period elapsed, killing", "pid", cmd.Process.Pid)
	case <-ctx.Done():
	}

	p.kill()
	return nil
}

// kill kills the process and waits briefly for the exit to be reaped.
func (p *Process) kill() {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
	select {
	case <-p.done:
	case <-time.After(time.Second):
	}
}

// PID returns the agent's process ID, or 0 before Start.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed when the agent exits.
func (p *Process) Done() <-chan struct{} { return p.done }

// ExitErr returns cmd.Wait's result once Done is closed.
func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

func (p *Process) debugLog(msg string, args ...any) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, args...)
	}
}

func (p *Process) logState(from, to string) {
	if p.config.ProtocolLogger == nil {
		return
	}
	p.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAgent,
			OldState: from,
			NewState: to,
			Reason:   p.config.Binary,
		},
	})
}
