package agentstub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/within-protocol/within-go/pkg/callback"
	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/transport"
	"github.com/within-protocol/within-go/pkg/wire"
)

func startAgent(t *testing.T, cfg Config) *Agent {
	t.Helper()
	a := New(cfg)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })
	return a
}

func dialCaller(t *testing.T, a *Agent) *interaction.Caller {
	t.Helper()
	conn, err := transport.Dial(context.Background(), a.Addr(), transport.DialConfig{})
	require.NoError(t, err)
	c := interaction.NewCaller(conn, wire.CBOR())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func call(t *testing.T, c *interaction.Caller, method wire.Method, args, result any) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Call(ctx, method, args, result)
}

func statusOf(t *testing.T, err error) wire.Status {
	t.Helper()
	var serr *interaction.StatusError
	require.ErrorAs(t, err, &serr)
	return serr.Status
}

func chargerService() *wire.Service {
	return &wire.Service{
		ID:          wire.Int32(1),
		Name:        "Charging",
		ServiceType: "car-charger",
		Prices: map[int32]wire.Price{
			2: {ID: wire.Int32(2), PricePerUnit: &wire.PricePerUnit{Amount: wire.Int32(25), CurrencyCode: "GBP"}},
		},
	}
}

func TestDeviceSetupAndServices(t *testing.T) {
	a := startAgent(t, Config{})
	c := dialCaller(t, a)

	require.NoError(t, call(t, c, wire.MethodSetup, &wire.SetupArgs{Name: "kiosk", Description: "car park"}, nil))
	require.NoError(t, call(t, c, wire.MethodAddService, &wire.ServiceArgs{Service: chargerService()}, nil))

	var dev wire.Device
	require.NoError(t, call(t, c, wire.MethodGetDevice, nil, &dev))
	assert.Equal(t, "kiosk", dev.Name)
	assert.NotEmpty(t, dev.UID)
	require.Contains(t, dev.Services, int32(1))

	var details []wire.ServiceDetails
	require.NoError(t, call(t, c, wire.MethodRequestServices, nil, &details))
	require.Len(t, details, 1)
	assert.Equal(t, int32(1), *details[0].ServiceID)

	require.NoError(t, call(t, c, wire.MethodRemoveService, &wire.ServiceArgs{Service: chargerService()}, nil))
	require.NoError(t, call(t, c, wire.MethodRequestServices, nil, &details))
	assert.Empty(t, details)

	err := call(t, c, wire.MethodAddService, &wire.ServiceArgs{Service: &wire.Service{Name: "no id"}}, nil)
	assert.Equal(t, wire.StatusInvalidArgument, statusOf(t, err))

	assert.Equal(t, []wire.Method{
		wire.MethodSetup, wire.MethodAddService, wire.MethodGetDevice, wire.MethodRequestServices,
		wire.MethodRemoveService, wire.MethodRequestServices, wire.MethodAddService,
	}, a.Calls())
}

func TestDiscovery(t *testing.T) {
	a := startAgent(t, Config{Devices: []wire.ServiceMessage{{DeviceName: "pump-3", Hostname: "10.0.0.3"}}})
	c := dialCaller(t, a)

	var found wire.ServiceMessage
	require.NoError(t, call(t, c, wire.MethodSearchForDevice, &wire.SearchArgs{TimeoutMillis: 100, DeviceName: "pump-3"}, &found))
	assert.Equal(t, "10.0.0.3", found.Hostname)

	err := call(t, c, wire.MethodSearchForDevice, &wire.SearchArgs{DeviceName: "missing"}, &found)
	assert.Equal(t, wire.StatusNotFound, statusOf(t, err))

	err = call(t, c, wire.MethodStartServiceBroadcast, &wire.TimeoutArgs{TimeoutMillis: 1000}, nil)
	assert.Equal(t, wire.StatusInvalidState, statusOf(t, err))

	require.NoError(t, call(t, c, wire.MethodSetup, &wire.SetupArgs{Name: "kiosk"}, nil))
	require.NoError(t, call(t, c, wire.MethodInitProducer, &wire.InitProducerArgs{}, nil))
	require.NoError(t, call(t, c, wire.MethodStartServiceBroadcast, &wire.TimeoutArgs{TimeoutMillis: 1000}, nil))

	var devices []wire.ServiceMessage
	require.NoError(t, call(t, c, wire.MethodDeviceDiscovery, &wire.TimeoutArgs{TimeoutMillis: 100}, &devices))
	require.Len(t, devices, 2)
	assert.Equal(t, "kiosk", devices[1].DeviceName)

	require.NoError(t, call(t, c, wire.MethodStopServiceBroadcast, nil, nil))
	require.NoError(t, call(t, c, wire.MethodDeviceDiscovery, &wire.TimeoutArgs{TimeoutMillis: 100}, &devices))
	assert.Len(t, devices, 1)
}

func TestPurchaseFlowPushesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	bridge := callback.New(callback.Config{})
	require.NoError(t, bridge.Start(context.Background()))
	defer bridge.Stop()

	events := make(chan callback.Event, 16)
	for _, k := range callback.Kinds {
		bridge.Subscribe(k, func(ev callback.Event) error { events <- ev; return nil })
	}

	a := New(Config{CallbackAddress: bridge.Addr().String()})
	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	conn, err := transport.Dial(context.Background(), a.Addr(), transport.DialConfig{})
	require.NoError(t, err)
	c := interaction.NewCaller(conn, wire.CBOR())
	defer c.Close()

	require.NoError(t, call(t, c, wire.MethodAddService, &wire.ServiceArgs{Service: chargerService()}, nil))

	var quote wire.TotalPriceResponse
	require.NoError(t, call(t, c, wire.MethodSelectService, &wire.SelectServiceArgs{ServiceID: 1, NumberOfUnits: 4, PriceID: 2}, &quote))
	assert.Equal(t, int32(100), *quote.TotalPrice)
	assert.Equal(t, "GBP", quote.CurrencyCode)
	assert.NotEmpty(t, quote.PaymentReferenceID)

	var payment wire.PaymentResponse
	require.NoError(t, call(t, c, wire.MethodMakePayment, &wire.MakePaymentArgs{Request: &quote}, &payment))
	require.NotNil(t, payment.ServiceDeliveryToken)
	assert.Equal(t, int32(100), *payment.TotalPaid)

	token := payment.ServiceDeliveryToken
	require.NoError(t, call(t, c, wire.MethodBeginServiceDelivery, &wire.DeliveryArgs{ServiceID: 1, Token: token, Units: 4}, nil))
	require.NoError(t, call(t, c, wire.MethodEndServiceDelivery, &wire.DeliveryArgs{ServiceID: 1, Token: token, Units: 4}, nil))

	want := []callback.Kind{
		callback.KindTotalPriceComputed,
		callback.KindPaymentMade,
		callback.KindServiceDeliveryBegun,
		callback.KindServiceDeliveryEnded,
	}
	for _, kind := range want {
		select {
		case ev := <-events:
			assert.Equal(t, kind, ev.Kind())
		case <-time.After(2 * time.Second):
			t.Fatalf("no %s event", kind)
		}
	}
}

func TestRejectsBadPurchases(t *testing.T) {
	a := startAgent(t, Config{})
	c := dialCaller(t, a)
	require.NoError(t, call(t, c, wire.MethodAddService, &wire.ServiceArgs{Service: chargerService()}, nil))

	var quote wire.TotalPriceResponse
	err := call(t, c, wire.MethodSelectService, &wire.SelectServiceArgs{ServiceID: 9, NumberOfUnits: 1, PriceID: 2}, &quote)
	assert.Equal(t, wire.StatusNotFound, statusOf(t, err))

	err = call(t, c, wire.MethodSelectService, &wire.SelectServiceArgs{ServiceID: 1, NumberOfUnits: 1, PriceID: 7}, &quote)
	assert.Equal(t, wire.StatusNotFound, statusOf(t, err))

	err = call(t, c, wire.MethodSelectService, &wire.SelectServiceArgs{ServiceID: 1, NumberOfUnits: 0, PriceID: 2}, &quote)
	assert.Equal(t, wire.StatusInvalidArgument, statusOf(t, err))

	err = call(t, c, wire.MethodBeginServiceDelivery, &wire.DeliveryArgs{ServiceID: 1, Token: &wire.ServiceDeliveryToken{Key: "forged"}, Units: 1}, nil)
	assert.Equal(t, wire.StatusInvalidState, statusOf(t, err))
}

func TestGetServicePricesForUnknownService(t *testing.T) {
	a := startAgent(t, Config{})
	c := dialCaller(t, a)

	var prices []wire.Price
	require.NoError(t, call(t, c, wire.MethodGetServicePrices, &wire.ServiceIDArgs{ServiceID: 7}, &prices))
	assert.Empty(t, prices)
}

func TestCloseAgentSignalsClosed(t *testing.T) {
	a := startAgent(t, Config{})
	c := dialCaller(t, a)

	require.NoError(t, call(t, c, wire.MethodCloseAgent, nil, nil))
	select {
	case <-a.Closed():
	case <-time.After(time.Second):
		t.Fatal("Closed not signalled")
	}
	require.NoError(t, call(t, c, wire.MethodCloseAgent, nil, nil))
}

func TestStopTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := New(Config{})
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Stop())
	assert.NotPanics(t, func() { assert.NoError(t, a.Stop()) })
}

func TestDeviceIsCopy(t *testing.T) {
	a := startAgent(t, Config{})
	c := dialCaller(t, a)
	require.NoError(t, call(t, c, wire.MethodAddService, &wire.ServiceArgs{Service: chargerService()}, nil))

	dev := a.Device()
	delete(dev.Services, 1)
	dev.Services[9] = wire.Service{ID: wire.Int32(9)}

	again := a.Device()
	assert.Contains(t, again.Services, int32(1))
	assert.NotContains(t, again.Services, int32(9))

	// Reads race writes from other connections under -race.
	other := dialCaller(t, a)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := int32(10); i < 30; i++ {
			svc := chargerService()
			svc.ID = wire.Int32(i)
			assert.NoError(t, call(t, other, wire.MethodAddService, &wire.ServiceArgs{Service: svc}, nil))
		}
	}()
	for i := 0; i < 20; i++ {
		var got wire.Device
		require.NoError(t, call(t, c, wire.MethodGetDevice, nil, &got))
	}
	<-done
	assert.Len(t, a.Device().Services, 21)
}
