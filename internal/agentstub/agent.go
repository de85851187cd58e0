// Package agentstub is an in-memory Within agent for tests and demos.
//
// It serves the command contract on a TCP port and, when given a callback
// address, pushes the matching events to it the way a real agent does. Its
// behavior is a deterministic simulation: payments always succeed, prices
// are multiplied out and tokens are random UUIDs valid for an hour.
package agentstub

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/transport"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Config configures the stub.
type Config struct {
	// Address to serve commands on (default: 127.0.0.1:0).
	Address string

	// Codec must match the client's (default: CBOR).
	Codec wire.Codec

	// CallbackAddress receives pushed events. Empty disables pushing.
	CallbackAddress string

	// Devices are reported by deviceDiscovery and searchForDevice, in
	// addition to the stub itself while it broadcasts.
	Devices []wire.ServiceMessage

	// PushTimeout bounds each event push (default: 5s).
	PushTimeout time.Duration

	// Logger is the operational logger (optional).
	Logger *slog.Logger

	// ProtocolLogger captures the stub's traffic (optional).
	ProtocolLogger log.Logger
}

type pushedEvent struct {
	method wire.Method
	args   any
}

// Agent is a running stub.
type Agent struct {
	config     Config
	server     *transport.Server
	dispatcher *interaction.Dispatcher

	mu           sync.Mutex
	device       wire.Device
	producer     bool
	consumer     *wire.InitConsumerArgs
	broadcasting bool
	quotes       map[string]wire.TotalPriceResponse
	tokens       map[string]string // token key -> payment reference
	calls        []wire.Method
	stopped      bool

	events    chan pushedEvent
	pushWG    sync.WaitGroup
	pushConn  *transport.ClientConn
	nextPush  uint32
	closeOnce sync.Once
	closed    chan struct{}
}

// New creates a stub. It does not listen until Start.
func New(config Config) *Agent {
	if config.Address == "" {
		config.Address = "127.0.0.1:0"
	}
	if config.Codec == nil {
		config.Codec = wire.CBOR()
	}
	if config.PushTimeout <= 0 {
		config.PushTimeout = 5 * time.Second
	}

	a := &Agent{
		config:     config,
		dispatcher: interaction.NewDispatcher(config.Codec),
		device: wire.Device{
			UID:          uuid.New().String(),
			Services:     make(map[int32]wire.Service),
			IPv4Address:  "127.0.0.1",
			CurrencyCode: "GBP",
		},
		quotes: make(map[string]wire.TotalPriceResponse),
		tokens: make(map[string]string),
		events: make(chan pushedEvent, 64),
		closed: make(chan struct{}),
	}
	a.dispatcher.SetLogger(config.Logger)
	a.registerHandlers()
	return a
}

// Start begins serving commands.
func (a *Agent) Start(ctx context.Context) error {
	server, err := transport.NewServer(transport.ServerConfig{
		Address: a.config.Address,
		Logger:  a.config.ProtocolLogger,
		OnMessage: func(conn *transport.ServerConn, msg []byte) {
			out, _, err := a.dispatcher.HandleMessage(ctx, msg)
			if err != nil {
				a.debugLog("agentstub: bad call", "error", err)
				return
			}
			_ = conn.Send(out)
		},
	})
	if err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.pushWG.Add(1)
	go a.pushLoop()

	a.debugLog("agentstub: listening", "address", server.Addr().String())
	return nil
}

// Stop stops serving and flushes pending events. Repeated calls return nil.
func (a *Agent) Stop() error {
	a.mu.Lock()
	if a.server == nil || a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	close(a.events)
	a.mu.Unlock()

	err := a.server.Stop(2 * time.Second)
	a.pushWG.Wait()
	if a.pushConn != nil {
		_ = a.pushConn.Close()
	}
	return err
}

// Addr returns the command address.
func (a *Agent) Addr() string {
	return a.server.Addr().String()
}

// Port returns the command port.
func (a *Agent) Port() int {
	_, port, _ := net.SplitHostPort(a.Addr())
	n, _ := strconv.Atoi(port)
	return n
}

// Calls returns the methods received so far, in order.
func (a *Agent) Calls() []wire.Method {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]wire.Method(nil), a.calls...)
}

// Device returns a copy of the stub's device record.
func (a *Agent) Device() wire.Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.device
	d.Services = make(map[int32]wire.Service, len(a.device.Services))
	for id, svc := range a.device.Services {
		prices := make(map[int32]wire.Price, len(svc.Prices))
		for pid, p := range svc.Prices {
			prices[pid] = p
		}
		svc.Prices = prices
		d.Services[id] = svc
	}
	return d
}

// Closed is closed once closeAgent was received.
func (a *Agent) Closed() <-chan struct{} { return a.closed }

// SetCallbackAddress changes where events are pushed.
func (a *Agent) SetCallbackAddress(addr string) {
	a.mu.Lock()
	a.config.CallbackAddress = addr
	a.mu.Unlock()
}

// Push queues an event for the callback listener. Events are delivered in
// queue order; failures are logged and dropped.
func (a *Agent) Push(method wire.Method, args any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.config.CallbackAddress == "" || a.stopped {
		return
	}
	select {
	case a.events <- pushedEvent{method: method, args: args}:
	default:
		a.debugLog("agentstub: event queue full, dropping", "method", method.String())
	}
}

func (a *Agent) pushLoop() {
	defer a.pushWG.Done()
	for ev := range a.events {
		if err := a.deliver(ev); err != nil {
			a.debugLog("agentstub: push failed", "method", ev.method.String(), "error", err)
			if a.pushConn != nil {
				_ = a.pushConn.Close()
				a.pushConn = nil
			}
		}
	}
}

func (a *Agent) deliver(ev pushedEvent) error {
	a.mu.Lock()
	addr := a.config.CallbackAddress
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.PushTimeout)
	defer cancel()

	if a.pushConn == nil {
		conn, err := transport.Dial(ctx, addr, transport.DialConfig{Logger: a.config.ProtocolLogger})
		if err != nil {
			return err
		}
		a.pushConn = conn
	}

	a.nextPush++
	call, err := wire.NewCall(a.config.Codec, a.nextPush, ev.method, ev.args)
	if err != nil {
		return err
	}
	data, err := wire.EncodeCall(a.config.Codec, call)
	if err != nil {
		return err
	}
	if err := a.pushConn.Send(data); err != nil {
		return err
	}
	raw, err := a.pushConn.Receive(ctx)
	if err != nil {
		return err
	}
	reply, err := wire.DecodeReply(a.config.Codec, raw)
	if err != nil {
		return err
	}
	if !reply.Status.IsSuccess() {
		return fmt.Errorf("%s rejected: %s", ev.method, reply.ErrorMessage())
	}
	return nil
}

func (a *Agent) debugLog(msg string, args ...any) {
	if a.config.Logger != nil {
		a.config.Logger.Debug(msg, args...)
	}
}
