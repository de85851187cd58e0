package agentstub

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/wire"
)

// TokenLifetime is how long an issued delivery token stays valid.
const TokenLifetime = time.Hour

func (a *Agent) registerHandlers() {
	handlers := map[wire.Method]interaction.HandlerFunc{
		wire.MethodSetup:                 a.handleSetup,
		wire.MethodAddService:            a.handleAddService,
		wire.MethodRemoveService:         a.handleRemoveService,
		wire.MethodInitConsumer:          a.handleInitConsumer,
		wire.MethodInitProducer:          a.handleInitProducer,
		wire.MethodGetDevice:             a.handleGetDevice,
		wire.MethodStartServiceBroadcast: a.handleStartBroadcast,
		wire.MethodStopServiceBroadcast:  a.handleStopBroadcast,
		wire.MethodDeviceDiscovery:       a.handleDeviceDiscovery,
		wire.MethodSearchForDevice:       a.handleSearchForDevice,
		wire.MethodRequestServices:       a.handleRequestServices,
		wire.MethodGetServicePrices:      a.handleGetServicePrices,
		wire.MethodSelectService:         a.handleSelectService,
		wire.MethodMakePayment:           a.handleMakePayment,
		wire.MethodBeginServiceDelivery:  a.handleBeginDelivery,
		wire.MethodEndServiceDelivery:    a.handleEndDelivery,
		wire.MethodCloseAgent:            a.handleCloseAgent,
	}
	for method, h := range handlers {
		a.dispatcher.Handle(method, a.recordCall(h))
	}
}

func (a *Agent) recordCall(h interaction.HandlerFunc) interaction.HandlerFunc {
	return func(ctx context.Context, req *interaction.Request) (any, error) {
		a.mu.Lock()
		a.calls = append(a.calls, req.Method())
		a.mu.Unlock()
		return h(ctx, req)
	}
}

func (a *Agent) handleSetup(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.SetupArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	if args.Name == "" {
		return nil, interaction.Errorf(wire.StatusInvalidArgument, "device name is required")
	}
	a.mu.Lock()
	a.device.Name = args.Name
	a.device.Description = args.Description
	a.mu.Unlock()
	return nil, nil
}

func (a *Agent) decodeService(req *interaction.Request) (wire.Service, error) {
	var args wire.ServiceArgs
	if err := req.Decode(&args); err != nil {
		return wire.Service{}, err
	}
	if args.Service == nil || args.Service.ID == nil {
		return wire.Service{}, interaction.Errorf(wire.StatusInvalidArgument, "service id is required")
	}
	return *args.Service, nil
}

func (a *Agent) handleAddService(_ context.Context, req *interaction.Request) (any, error) {
	svc, err := a.decodeService(req)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.device.Services[*svc.ID] = svc
	a.mu.Unlock()
	return nil, nil
}

func (a *Agent) handleRemoveService(_ context.Context, req *interaction.Request) (any, error) {
	svc, err := a.decodeService(req)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	delete(a.device.Services, *svc.ID)
	a.mu.Unlock()
	return nil, nil
}

func (a *Agent) handleInitConsumer(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.InitConsumerArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	if args.Hostname == "" {
		return nil, interaction.Errorf(wire.StatusInvalidArgument, "producer hostname is required")
	}
	a.mu.Lock()
	a.consumer = &args
	a.mu.Unlock()
	return nil, nil
}

func (a *Agent) handleInitProducer(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.InitProducerArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.producer = true
	a.mu.Unlock()
	return nil, nil
}

func (a *Agent) handleGetDevice(context.Context, *interaction.Request) (any, error) {
	d := a.Device()
	return &d, nil
}

func (a *Agent) handleStartBroadcast(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.TimeoutArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.producer {
		return nil, interaction.Errorf(wire.StatusInvalidState, "producer not initialized")
	}
	a.broadcasting = true
	return nil, nil
}

func (a *Agent) handleStopBroadcast(context.Context, *interaction.Request) (any, error) {
	a.mu.Lock()
	a.broadcasting = false
	a.mu.Unlock()
	return nil, nil
}

// visibleDevices returns the configured devices plus the stub itself while
// it broadcasts.
func (a *Agent) visibleDevices() []wire.ServiceMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := append([]wire.ServiceMessage(nil), a.config.Devices...)
	if a.broadcasting {
		var types []string
		for _, svc := range a.device.Services {
			if svc.ServiceType != "" {
				types = append(types, svc.ServiceType)
			}
		}
		out = append(out, wire.ServiceMessage{
			DeviceName:        a.device.Name,
			DeviceDescription: a.device.Description,
			Hostname:          a.device.IPv4Address,
			ServerID:          a.device.UID,
			Scheme:            "http",
			ServiceTypes:      types,
		})
	}
	return out
}

func (a *Agent) handleDeviceDiscovery(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.TimeoutArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	devices := a.visibleDevices()
	if len(devices) == 0 {
		return nil, nil
	}
	return devices, nil
}

func (a *Agent) handleSearchForDevice(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.SearchArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	for _, d := range a.visibleDevices() {
		if d.DeviceName == args.DeviceName {
			return &d, nil
		}
	}
	return nil, interaction.Errorf(wire.StatusNotFound, "device %q not found", args.DeviceName)
}

func (a *Agent) handleRequestServices(context.Context, *interaction.Request) (any, error) {
	a.mu.Lock()
	details := make([]wire.ServiceDetails, 0, len(a.device.Services))
	for _, svc := range a.device.Services {
		details = append(details, wire.ServiceDetails{
			ServiceID:          svc.ID,
			ServiceName:        svc.Name,
			ServiceDescription: svc.Description,
		})
	}
	remote := a.device.IPv4Address
	a.mu.Unlock()

	a.Push(wire.CallbackServiceDiscoveryEvent, &wire.ServiceDiscoveryEvent{RemoteAddr: remote})
	return details, nil
}

func (a *Agent) handleGetServicePrices(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.ServiceIDArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	a.mu.Lock()
	svc := a.device.Services[args.ServiceID]
	prices := make([]wire.Price, 0, len(svc.Prices))
	for _, p := range svc.Prices {
		prices = append(prices, p)
	}
	remote := a.device.IPv4Address
	a.mu.Unlock()

	a.Push(wire.CallbackServicePricesEvent, &wire.ServicePricesEvent{RemoteAddr: remote, ServiceID: args.ServiceID})
	return prices, nil
}

func (a *Agent) handleSelectService(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.SelectServiceArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	if args.NumberOfUnits <= 0 {
		return nil, interaction.Errorf(wire.StatusInvalidArgument, "number of units must be positive")
	}

	a.mu.Lock()
	svc, ok := a.device.Services[args.ServiceID]
	if !ok {
		a.mu.Unlock()
		return nil, interaction.Errorf(wire.StatusNotFound, "service %d not found", args.ServiceID)
	}
	price, ok := svc.Prices[args.PriceID]
	if !ok || price.PricePerUnit == nil || price.PricePerUnit.Amount == nil {
		a.mu.Unlock()
		return nil, interaction.Errorf(wire.StatusNotFound, "price %d of service %d not found", args.PriceID, args.ServiceID)
	}
	currency := price.PricePerUnit.CurrencyCode
	if currency == "" {
		currency = a.device.CurrencyCode
	}
	quote := wire.TotalPriceResponse{
		ServerID:           a.device.UID,
		PriceID:            wire.Int32(args.PriceID),
		UnitsToSupply:      wire.Int32(args.NumberOfUnits),
		TotalPrice:         wire.Int32(args.NumberOfUnits * *price.PricePerUnit.Amount),
		PaymentReferenceID: uuid.New().String(),
		CurrencyCode:       currency,
	}
	if a.consumer != nil {
		quote.ClientID = a.consumer.ServerID
	}
	a.quotes[quote.PaymentReferenceID] = quote
	remote := a.device.IPv4Address
	a.mu.Unlock()

	a.Push(wire.CallbackServiceTotalPriceEvent, &wire.ServiceTotalPriceEvent{
		RemoteAddr: remote,
		ServiceID:  args.ServiceID,
		TotalPrice: &quote,
	})
	return &quote, nil
}

func (a *Agent) handleMakePayment(_ context.Context, req *interaction.Request) (any, error) {
	var args wire.MakePaymentArgs
	if err := req.Decode(&args); err != nil {
		return nil, err
	}
	if args.Request == nil || args.Request.TotalPrice == nil {
		return nil, interaction.Errorf(wire.StatusInvalidArgument, "quote with total price is required")
	}
	quote := *args.Request

	now := time.Now().UTC()
	token := &wire.ServiceDeliveryToken{
		Key:    uuid.New().String(),
		Issued: now.Format(time.RFC3339Nano),
		Expiry: now.Add(TokenLifetime).Format(time.RFC3339Nano),
	}

	a.mu.Lock()
	a.tokens[token.Key] = quote.PaymentReferenceID
	delete(a.quotes, quote.PaymentReferenceID)
	a.mu.Unlock()

	a.Push(wire.CallbackMakePaymentEvent, &wire.MakePaymentEvent{
		TotalPrice:    *quote.TotalPrice,
		OrderCurrency: quote.CurrencyCode,
		UUID:          quote.PaymentReferenceID,
	})
	return &wire.PaymentResponse{
		ServerID:             quote.ServerID,
		ClientID:             quote.ClientID,
		TotalPaid:            wire.Int32(*quote.TotalPrice),
		ServiceDeliveryToken: token,
	}, nil
}

func (a *Agent) decodeDelivery(req *interaction.Request) (wire.DeliveryArgs, error) {
	var args wire.DeliveryArgs
	if err := req.Decode(&args); err != nil {
		return args, err
	}
	if args.Token == nil || args.Token.Key == "" {
		return args, interaction.Errorf(wire.StatusInvalidArgument, "delivery token is required")
	}
	a.mu.Lock()
	_, ok := a.tokens[args.Token.Key]
	a.mu.Unlock()
	if !ok {
		return args, interaction.Errorf(wire.StatusInvalidState, "unknown delivery token")
	}
	return args, nil
}

func (a *Agent) handleBeginDelivery(_ context.Context, req *interaction.Request) (any, error) {
	args, err := a.decodeDelivery(req)
	if err != nil {
		return nil, err
	}
	a.Push(wire.CallbackBeginServiceDelivery, &wire.BeginDeliveryEvent{
		ServiceID:     args.ServiceID,
		Token:         args.Token,
		UnitsToSupply: args.Units,
	})
	return nil, nil
}

func (a *Agent) handleEndDelivery(_ context.Context, req *interaction.Request) (any, error) {
	args, err := a.decodeDelivery(req)
	if err != nil {
		return nil, err
	}
	a.Push(wire.CallbackEndServiceDelivery, &wire.EndDeliveryEvent{
		ServiceID:     args.ServiceID,
		Token:         args.Token,
		UnitsReceived: args.Units,
	})
	return nil, nil
}

func (a *Agent) handleCloseAgent(context.Context, *interaction.Request) (any, error) {
	a.closeOnce.Do(func() { close(a.closed) })
	return nil, nil
}
