package interactive

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/within-protocol/within-go/internal/agentstub"
	"github.com/within-protocol/within-go/pkg/config"
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/session"
)

// syncBuffer is written by event handlers and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// newTestShell opens a session to a fresh stub agent. With events, the stub
// pushes its callbacks to the session's listener.
func newTestShell(t *testing.T, events bool) (*Shell, *syncBuffer, *agentstub.Agent) {
	t.Helper()

	var stubCfg agentstub.Config
	callbackPort := 0
	if events {
		callbackPort = freePort(t)
		stubCfg.CallbackAddress = net.JoinHostPort("127.0.0.1", strconv.Itoa(callbackPort))
	}
	a := agentstub.New(stubCfg)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })

	file := config.Default()
	file.Agent.Port = a.Port()
	file.Agent.CallbackPort = callbackPort
	require.NoError(t, file.Validate())

	cfg := file.SessionConfig()
	s, err := session.Open(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	out := &syncBuffer{}
	sh := newShell(s, file, out)
	sh.DeliveryPause = 0
	return sh, out, a
}

func run(t *testing.T, sh *Shell, line string) bool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return sh.Execute(ctx, line)
}

func TestSetupAndServices(t *testing.T) {
	sh, out, a := newTestShell(t, false)

	assert.False(t, run(t, sh, "setup kiosk one"))
	assert.Contains(t, out.String(), `Device "kiosk one" configured`)
	assert.Equal(t, "kiosk one", a.Device().Name)

	assert.False(t, run(t, sh, "services"))
	assert.Contains(t, out.String(), "Device: kiosk one")
	assert.Contains(t, out.String(), "No services")
}

func TestProduceAndConsume(t *testing.T) {
	sh, out, a := newTestShell(t, true)

	run(t, sh, "produce start")
	require.Contains(t, out.String(), `Producing "Car charger" as "car-park-charger"`)
	assert.NotContains(t, out.String(), "Error:")

	run(t, sh, "services")
	assert.Contains(t, out.String(), "Service 1: Car charger [car-charger]")
	assert.Contains(t, out.String(), "Kilowatt-hour")

	run(t, sh, "find 100")
	assert.Contains(t, out.String(), "Found 1 device(s)")
	assert.Contains(t, out.String(), "Service types: car-charger")

	run(t, sh, "consume")
	got := out.String()
	assert.NotContains(t, got, "Error:")
	assert.Contains(t, got, "Discovered device: car-park-charger")
	assert.Contains(t, got, "Total price:         0.25 GBP")
	assert.Contains(t, got, "Payment accepted:")
	assert.Contains(t, got, "Received 1 unit(s) of service 1")

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("[EVENT] Delivery ended: service 1, 1 unit(s) received"))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "[EVENT] Payment made: 0.25 GBP")

	assert.True(t, run(t, sh, "quit"))
	assert.Contains(t, out.String(), "Producer stopped")

	var seen []string
	for _, c := range a.Calls() {
		seen = append(seen, c.String())
	}
	assert.Contains(t, seen, "stopServiceBroadcast")
}

func TestProduceTwice(t *testing.T) {
	sh, out, _ := newTestShell(t, false)

	run(t, sh, "produce start")
	run(t, sh, "produce start")
	assert.Contains(t, out.String(), "Producer already started")

	run(t, sh, "produce stop")
	run(t, sh, "produce stop")
	assert.Contains(t, out.String(), "Producer is not running")
}

func TestConsumeUnknownDevice(t *testing.T) {
	sh, out, _ := newTestShell(t, false)

	run(t, sh, "consume nowhere")
	assert.Contains(t, out.String(), `Error: no producer "nowhere" found`)
}

func TestFindNothing(t *testing.T) {
	sh, out, a := newTestShell(t, false)

	run(t, sh, "find 5000")
	assert.Contains(t, out.String(), "No devices found.")
	// find configures a consumer device first.
	assert.Equal(t, ConsumerDeviceName, a.Device().Name)
}

func TestUsageErrors(t *testing.T) {
	sh, out, _ := newTestShell(t, false)

	tests := []struct {
		line string
		want string
	}{
		{"produce", "Error: usage: produce start|stop"},
		{"produce pause", "Error: usage: produce start|stop"},
		{"find soon", `Error: usage: invalid timeout "soon"`},
		{"find -5", "Error: usage: timeout must not be negative"},
		{"frobnicate", "Unknown command: frobnicate"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.False(t, run(t, sh, tt.line))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestStatus(t *testing.T) {
	sh, out, _ := newTestShell(t, true)

	run(t, sh, "status")
	got := out.String()
	assert.Contains(t, got, "State:      Connected")
	assert.Contains(t, got, "Events:     127.0.0.1:")
	assert.Contains(t, got, "Producing:  false")
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("1500")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseTimeout("2s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	_, err = parseTimeout("-1s")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0.25 GBP", formatMoney(25, "GBP"))
	assert.Equal(t, "12.05", formatMoney(1205, ""))
	assert.Equal(t, "-1.50 EUR", formatMoney(-150, "EUR"))

	p := model.Price{Description: "Wash", PerUnit: model.Money{Amount: 450, Currency: "GBP"}}
	assert.Equal(t, "Wash, 4.50 GBP per unit", formatPrice(p))
}
