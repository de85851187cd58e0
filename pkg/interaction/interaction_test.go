package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/wire"
)

// loopConn feeds every sent message through respond and queues the replies.
type loopConn struct {
	respond func(data []byte) [][]byte
	replies chan []byte
	closed  bool
	mu      sync.Mutex
}

func newLoopConn(respond func([]byte) [][]byte) *loopConn {
	return &loopConn{respond: respond, replies: make(chan []byte, 16)}
}

func (l *loopConn) Send(data []byte) error {
	for _, r := range l.respond(data) {
		l.replies <- r
	}
	return nil
}

func (l *loopConn) Receive(ctx context.Context) ([]byte, error) {
	select {
	case r := <-l.replies:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *loopConn) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

func dispatcherConn(t *testing.T, d *Dispatcher) *loopConn {
	return newLoopConn(func(data []byte) [][]byte {
		out, _, err := d.HandleMessage(context.Background(), data)
		require.NoError(t, err)
		return [][]byte{out}
	})
}

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func TestCallerRoundTrip(t *testing.T) {
	for _, codec := range []wire.Codec{wire.CBOR(), wire.JSON()} {
		t.Run(string(codec.Protocol()), func(t *testing.T) {
			d := NewDispatcher(codec)
			d.Handle(wire.MethodGetServicePrices, func(_ context.Context, req *Request) (any, error) {
				var args wire.ServiceIDArgs
				if err := req.Decode(&args); err != nil {
					return nil, err
				}
				return []wire.Price{{ID: wire.Int32(args.ServiceID), Description: "per kWh"}}, nil
			})

			caller := NewCaller(dispatcherConn(t, d), codec)
			var prices []wire.Price
			err := caller.Call(context.Background(), wire.MethodGetServicePrices, &wire.ServiceIDArgs{ServiceID: 7}, &prices)
			require.NoError(t, err)
			require.Len(t, prices, 1)
			require.NotNil(t, prices[0].ID)
			assert.Equal(t, int32(7), *prices[0].ID)
			assert.Equal(t, "per kWh", prices[0].Description)
		})
	}
}

func TestCallerNoResult(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodStopServiceBroadcast, func(context.Context, *Request) (any, error) {
		return nil, nil
	})

	caller := NewCaller(dispatcherConn(t, d), wire.CBOR())
	assert.NoError(t, caller.Call(context.Background(), wire.MethodStopServiceBroadcast, nil, nil))
}

func TestCallerStatusError(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodSelectService, func(context.Context, *Request) (any, error) {
		return nil, Errorf(wire.StatusNotFound, "no price %d", 3)
	})

	caller := NewCaller(dispatcherConn(t, d), wire.CBOR())
	err := caller.Call(context.Background(), wire.MethodSelectService, &wire.SelectServiceArgs{ServiceID: 1, NumberOfUnits: 2, PriceID: 3}, nil)

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, wire.MethodSelectService, serr.Method)
	assert.Equal(t, wire.StatusNotFound, serr.Status)
	assert.Equal(t, "no price 3", serr.Message)
}

func TestCallerDiscardsStaleReplies(t *testing.T) {
	codec := wire.CBOR()
	conn := newLoopConn(func(data []byte) [][]byte {
		call, err := wire.DecodeCall(codec, data)
		require.NoError(t, err)

		stale, err := wire.NewReply(codec, call.MessageID+100, "stale")
		require.NoError(t, err)
		fresh, err := wire.NewReply(codec, call.MessageID, "fresh")
		require.NoError(t, err)

		a, _ := wire.EncodeReply(codec, stale)
		b, _ := wire.EncodeReply(codec, fresh)
		return [][]byte{a, b}
	})

	caller := NewCaller(conn, codec)
	var got string
	require.NoError(t, caller.Call(context.Background(), wire.MethodGetDevice, nil, &got))
	assert.Equal(t, "fresh", got)
}

func TestCallerContextDeadline(t *testing.T) {
	conn := newLoopConn(func([]byte) [][]byte { return nil })
	caller := NewCaller(conn, wire.CBOR())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := caller.Call(ctx, wire.MethodSetup, &wire.SetupArgs{Name: "n"}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallerClosed(t *testing.T) {
	conn := newLoopConn(func([]byte) [][]byte { return nil })
	caller := NewCaller(conn, wire.CBOR())

	require.NoError(t, caller.Close())
	require.NoError(t, caller.Close())
	assert.True(t, conn.closed)
	assert.ErrorIs(t, caller.Call(context.Background(), wire.MethodSetup, nil, nil), ErrCallerClosed)
}

func TestCallerSerializesCalls(t *testing.T) {
	var inFlight, maxInFlight int
	var mu sync.Mutex

	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodGetDevice, func(context.Context, *Request) (any, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil, nil
	})

	caller := NewCaller(dispatcherConn(t, d), wire.CBOR())
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, caller.Call(context.Background(), wire.MethodGetDevice, nil, nil))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInFlight)
}

func TestCallerLogsEnvelopes(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodCloseAgent, func(context.Context, *Request) (any, error) { return nil, nil })

	logger := &recordingLogger{}
	caller := NewCaller(dispatcherConn(t, d), wire.CBOR(), WithProtocolLogger(logger, "conn-1", "sess-1"))
	require.NoError(t, caller.Call(context.Background(), wire.MethodCloseAgent, nil, nil))

	require.Len(t, logger.events, 2)
	call, reply := logger.events[0], logger.events[1]
	assert.Equal(t, log.MessageCall, call.Message.Kind)
	assert.Equal(t, log.DirectionOut, call.Direction)
	assert.Equal(t, "sess-1", call.SessionID)
	assert.Equal(t, log.MessageReply, reply.Message.Kind)
	assert.Equal(t, wire.StatusOK, *reply.Message.Status)
	assert.NotNil(t, reply.Message.Elapsed)
}

func TestDispatcherUnsupported(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	reply := d.Dispatch(context.Background(), &wire.Call{MessageID: 4, Method: wire.MethodMakePayment})

	assert.Equal(t, uint32(4), reply.MessageID)
	assert.Equal(t, wire.StatusUnsupported, reply.Status)
}

func TestDispatcherPanicBecomesInternal(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.CallbackErrorEvent, func(context.Context, *Request) (any, error) {
		panic("boom")
	})

	reply := d.Dispatch(context.Background(), &wire.Call{MessageID: 1, Method: wire.CallbackErrorEvent})
	assert.Equal(t, wire.StatusInternal, reply.Status)
	assert.Contains(t, reply.ErrorMessage(), "boom")
}

func TestDispatcherPlainErrorIsInternal(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodSetup, func(context.Context, *Request) (any, error) {
		return nil, errors.New("disk full")
	})

	reply := d.Dispatch(context.Background(), &wire.Call{MessageID: 1, Method: wire.MethodSetup})
	assert.Equal(t, wire.StatusInternal, reply.Status)
	assert.Equal(t, "disk full", reply.ErrorMessage())
}

func TestRequestDecodeMissingArgs(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	d.Handle(wire.MethodAddService, func(_ context.Context, req *Request) (any, error) {
		var args wire.ServiceArgs
		return nil, req.Decode(&args)
	})

	reply := d.Dispatch(context.Background(), &wire.Call{MessageID: 2, Method: wire.MethodAddService})
	assert.Equal(t, wire.StatusInvalidArgument, reply.Status)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	d := NewDispatcher(wire.CBOR())
	_, _, err := d.HandleMessage(context.Background(), []byte{0xff, 0x00})
	assert.Error(t, err)
}
