package interactive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/within-protocol/within-go/pkg/callback"
	"github.com/within-protocol/within-go/pkg/model"
)

func (sh *Shell) cmdSetup(ctx context.Context, args []string) error {
	name := ConsumerDeviceName
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}
	if err := sh.setup(ctx, name, "Within shell running on "+hostname()); err != nil {
		return err
	}
	sh.printf("Device %q configured\n", name)
	return nil
}

func (sh *Shell) setup(ctx context.Context, name, description string) error {
	if err := sh.s.SetupDevice(ctx, name, description); err != nil {
		return err
	}
	sh.mu.Lock()
	sh.configured = true
	sh.mu.Unlock()
	return nil
}

func (sh *Shell) cmdServices(ctx context.Context) error {
	dev, err := sh.s.GetDevice(ctx)
	if err != nil {
		return err
	}

	sh.printf("Device: %s (%s)\n", dev.Name, dev.UID)
	if dev.Description != "" {
		sh.printf("  Description: %s\n", dev.Description)
	}
	if len(dev.Services) == 0 {
		sh.println("  No services")
		return nil
	}
	for _, id := range sortedIDs(dev.Services) {
		svc := dev.Services[id]
		sh.printf("  Service %d: %s", id, svc.Name)
		if svc.ServiceType != "" {
			sh.printf(" [%s]", svc.ServiceType)
		}
		sh.println()
		for _, p := range svc.PriceList() {
			sh.printf("    Price %s: %s\n", p.ID, formatPrice(p))
		}
	}
	return nil
}

func (sh *Shell) cmdStatus() {
	cfg := sh.s.Config()

	sh.mu.Lock()
	configured, producing := sh.configured, sh.producing
	sh.mu.Unlock()

	sh.println("Session Status:")
	sh.printf("  ID:         %s\n", sh.s.ID())
	sh.printf("  State:      %s\n", sh.s.State())
	sh.printf("  Agent:      %s:%d (%s)\n", cfg.Host, cfg.Port, cfg.Protocol)
	if addr := sh.s.CallbackAddr(); addr != nil {
		sh.printf("  Events:     %s (%s)\n", addr, sh.s.ListenerState())
	} else {
		sh.println("  Events:     disabled")
	}
	sh.printf("  Configured: %v\n", configured)
	sh.printf("  Producing:  %v\n", producing)
}

func (sh *Shell) cmdFind(ctx context.Context, args []string) error {
	timeout := DefaultSearchTimeout
	if len(args) > 0 {
		var err error
		if timeout, err = parseTimeout(args[0]); err != nil {
			return err
		}
	}

	if err := sh.ensureSetup(ctx); err != nil {
		return err
	}

	sh.printf("Discovering devices for %s...\n", timeout)
	devices, err := sh.s.DeviceDiscovery(ctx, millis(timeout))
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		sh.println("No devices found.")
		return nil
	}

	sh.printf("Found %d device(s):\n", len(devices))
	for i, d := range devices {
		sh.printf("  %d) %s running on %s\n", i, d.ServerID, d.Address())
		sh.printf("     Name: %s\n", d.Name)
		if d.Description != "" {
			sh.printf("     Description: %s\n", d.Description)
		}
		if d.URLPrefix != "" {
			sh.printf("     URL Prefix: %s\n", d.URLPrefix)
		}
		if len(d.ServiceTypes) > 0 {
			sh.printf("     Service types: %s\n", strings.Join(d.ServiceTypes, ", "))
		}
	}
	return nil
}

// cmdConsume buys one unit of the first price of the first service offered
// by the named producer and takes delivery of it.
func (sh *Shell) cmdConsume(ctx context.Context, args []string) error {
	name := sh.file.DeviceNameForSearch
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}

	if err := sh.ensureSetup(ctx); err != nil {
		return err
	}

	device, err := sh.s.SearchForDevice(ctx, millis(DefaultSearchTimeout), name)
	if err != nil {
		return fmt.Errorf("no producer %q found: %w", name, err)
	}
	sh.printf("Discovered device: %s (%s) at %s\n", device.Name, device.ServerID, device.Address())

	port := device.Port.OrZero()
	if port == 0 {
		port = 80
	}
	err = sh.s.InitConsumer(ctx, "http://", device.Hostname, port, device.URLPrefix, device.ServerID,
		sh.file.Card(), sh.file.PSP())
	if err != nil {
		return err
	}

	services, err := sh.s.RequestServices(ctx)
	if err != nil {
		return err
	}
	sh.printf("%d service(s) found\n", len(services))
	if len(services) == 0 {
		return fmt.Errorf("%s offers no services", device.Name)
	}
	svc := services[0]
	serviceID := svc.ID.OrZero()
	sh.printf("Using service %d: %s\n", serviceID, svc.Name)

	prices, err := sh.s.GetServicePrices(ctx, serviceID)
	if err != nil {
		return err
	}
	sh.printf("%d price(s) found for service %d\n", len(prices), serviceID)
	if len(prices) == 0 {
		return fmt.Errorf("service %d has no prices", serviceID)
	}
	price := prices[0]
	sh.printf("Using price %s: %s\n", price.ID, formatPrice(price))

	quote, err := sh.s.SelectService(ctx, serviceID, DefaultUnits, price.ID.OrZero())
	if err != nil {
		return err
	}
	sh.println("Received price quote:")
	sh.printf("  Merchant client key: %s\n", quote.MerchantKey)
	sh.printf("  Payment reference:   %s\n", quote.PaymentReference)
	sh.printf("  Units to supply:     %d\n", quote.Units)
	sh.printf("  Total price:         %s\n", formatMoney(quote.Total, quote.Currency))

	result, err := sh.s.MakePayment(ctx, quote)
	if err != nil {
		return err
	}
	token := result.Token
	sh.println("Payment accepted:")
	sh.printf("  Server ID:  %s\n", result.ServerID)
	sh.printf("  Total paid: %s\n", formatMoney(result.TotalPaid, quote.Currency))
	sh.printf("  Token:      %s (expires %s)\n", token.Key, token.Expiry.Format(time.RFC3339))

	return sh.takeDelivery(ctx, serviceID, token, quote.Units)
}

func (sh *Shell) takeDelivery(ctx context.Context, serviceID int32, token model.DeliveryToken, units int32) error {
	sh.println("Beginning service delivery")
	if err := sh.s.BeginServiceDelivery(ctx, serviceID, token, units); err != nil {
		return err
	}

	if sh.DeliveryPause > 0 {
		sh.printf("Receiving service for %s...\n", sh.DeliveryPause)
		select {
		case <-time.After(sh.DeliveryPause):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	sh.println("Ending service delivery")
	if err := sh.s.EndServiceDelivery(ctx, serviceID, token, units); err != nil {
		return err
	}
	sh.printf("Received %d unit(s) of service %d\n", units, serviceID)
	return nil
}

func (sh *Shell) cmdProduce(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: produce start|stop", ErrUsage)
	}
	switch strings.ToLower(args[0]) {
	case "start":
		return sh.startProducing(ctx)
	case "stop":
		if !sh.stopProducing(ctx) {
			sh.println("Producer is not running")
		}
		return nil
	default:
		return fmt.Errorf("%w: produce start|stop", ErrUsage)
	}
}

// startProducing offers the configured service under the search name, so a
// consumer using the same configuration finds it.
func (sh *Shell) startProducing(ctx context.Context) error {
	sh.mu.Lock()
	running := sh.producing
	sh.mu.Unlock()
	if running {
		sh.println("Producer already started, stop it before starting it again.")
		return nil
	}

	name := sh.file.DeviceNameForSearch
	if err := sh.setup(ctx, name, "Within producer running on "+hostname()); err != nil {
		return err
	}
	svc := sh.file.ProducerService()
	if err := sh.s.AddService(ctx, svc); err != nil {
		return err
	}
	if err := sh.s.InitProducer(ctx, sh.file.PSP()); err != nil {
		return err
	}

	subs := sh.subscribeProducerEvents()
	if err := sh.s.StartServiceBroadcast(ctx, 0); err != nil {
		sh.unsubscribe(subs)
		return err
	}

	sh.mu.Lock()
	sh.producing = true
	sh.subs = subs
	sh.mu.Unlock()
	sh.printf("Producing %q as %q\n", svc.Name, name)
	return nil
}

// stopProducing stops the broadcast and reports whether a producer was
// running.
func (sh *Shell) stopProducing(ctx context.Context) bool {
	sh.mu.Lock()
	running := sh.producing
	subs := sh.subs
	sh.producing = false
	sh.subs = nil
	sh.mu.Unlock()
	if !running {
		return false
	}

	sh.unsubscribe(subs)
	if err := sh.s.StopServiceBroadcast(ctx); err != nil {
		sh.printf("Error: stop broadcast: %v\n", err)
	}
	sh.println("Producer stopped")
	return true
}

func (sh *Shell) subscribeProducerEvents() []subscription {
	var subs []subscription
	add := func(kind callback.Kind, id callback.SubscriptionID) {
		if id != 0 {
			subs = append(subs, subscription{kind: kind, id: id})
		}
	}

	add(callback.KindServiceDeliveryBegun, sh.s.OnServiceDeliveryBegun(func(e callback.ServiceDeliveryBegun) {
		sh.printf("[EVENT] Delivery begun: service %d, price %d, %d unit(s)\n", e.ServiceID, e.PriceID, e.UnitsToSupply)
	}))
	add(callback.KindServiceDeliveryEnded, sh.s.OnServiceDeliveryEnded(func(e callback.ServiceDeliveryEnded) {
		sh.printf("[EVENT] Delivery ended: service %d, %d unit(s) received\n", e.ServiceID, e.UnitsReceived)
	}))
	add(callback.KindPaymentMade, sh.s.OnPaymentMade(func(e callback.PaymentMade) {
		sh.printf("[EVENT] Payment made: %s (%s)\n", formatMoney(e.TotalPrice, e.Currency), e.CorrelationID)
	}))
	add(callback.KindPricesRequested, sh.s.OnPricesRequested(func(e callback.PricesRequested) {
		sh.printf("[EVENT] Prices requested by %s for service %d\n", e.RemoteAddr, e.ServiceID)
	}))
	add(callback.KindTotalPriceComputed, sh.s.OnTotalPriceComputed(func(e callback.TotalPriceComputed) {
		sh.printf("[EVENT] Quote for %s: service %d, %s\n", e.RemoteAddr, e.ServiceID, formatMoney(e.Quote.Total, e.Quote.Currency))
	}))
	add(callback.KindErrorRaised, sh.s.OnErrorRaised(func(e callback.ErrorRaised) {
		sh.printf("[EVENT] Agent error: %s\n", e.Message)
	}))
	return subs
}

func (sh *Shell) unsubscribe(subs []subscription) {
	for _, sub := range subs {
		sh.s.Unsubscribe(sub.kind, sub.id)
	}
}

// ensureSetup gives the agent a device before consumer commands.
func (sh *Shell) ensureSetup(ctx context.Context) error {
	sh.mu.Lock()
	configured := sh.configured
	sh.mu.Unlock()
	if configured {
		return nil
	}
	return sh.setup(ctx, ConsumerDeviceName, "Within consumer running on "+hostname())
}
