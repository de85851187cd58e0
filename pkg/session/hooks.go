package session

import (
	"context"
	"log/slog"
	"sync"
)

type hook struct {
	name string
	fn   func() error
}

// ShutdownHooks runs registered teardown functions once, in reverse
// registration order, when its context is cancelled or Run is called.
//
// Create it at the composition root from a signal context:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	hooks := session.NewShutdownHooks(ctx, logger)
//	s, err := session.Open(ctx, &cfg, session.WithShutdownHooks(hooks))
type ShutdownHooks struct {
	logger *slog.Logger

	mu    sync.Mutex
	hooks []hook
	ran   bool

	once sync.Once
	done chan struct{}
}

// NewShutdownHooks creates hooks that run when ctx is done.
func NewShutdownHooks(ctx context.Context, logger *slog.Logger) *ShutdownHooks {
	h := &ShutdownHooks{logger: logger, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			h.Run()
		case <-h.done:
		}
	}()
	return h
}

// Register adds fn. A hook registered after the hooks ran is run at once.
func (h *ShutdownHooks) Register(name string, fn func() error) {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		h.call(hook{name: name, fn: fn})
		return
	}
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
	h.mu.Unlock()
}

// Run runs the hooks, last registered first. Only the first call has an
// effect; later calls wait for it to finish.
func (h *ShutdownHooks) Run() {
	h.once.Do(func() {
		h.mu.Lock()
		h.ran = true
		hooks := h.hooks
		h.hooks = nil
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			h.call(hooks[i])
		}
		close(h.done)
	})
	<-h.done
}

// Done is closed once the hooks have run.
func (h *ShutdownHooks) Done() <-chan struct{} { return h.done }

func (h *ShutdownHooks) call(k hook) {
	if h.logger != nil {
		h.logger.Debug("shutdown: running hook", "hook", k.name)
	}
	if err := k.fn(); err != nil {
		logger := h.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("shutdown: hook failed", "hook", k.name, "error", err)
	}
}
