package session

import (
	"context"

	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Commands delegate to the command client once the session is Connected.
// After Close they fail with a *errs.ProtocolError.

// SetupDevice names the local device.
func (s *Session) SetupDevice(ctx context.Context, name, description string) error {
	c, err := s.active(wire.MethodSetup.String())
	if err != nil {
		return err
	}
	return c.SetupDevice(ctx, name, description)
}

// AddService registers a service offered by the local device.
func (s *Session) AddService(ctx context.Context, service model.Service) error {
	c, err := s.active(wire.MethodAddService.String())
	if err != nil {
		return err
	}
	return c.AddService(ctx, service)
}

// RemoveService withdraws a service.
func (s *Session) RemoveService(ctx context.Context, service model.Service) error {
	c, err := s.active(wire.MethodRemoveService.String())
	if err != nil {
		return err
	}
	return c.RemoveService(ctx, service)
}

// InitConsumer prepares the agent to buy from a producer.
func (s *Session) InitConsumer(ctx context.Context, scheme, hostname string, port int32, urlPrefix, serverID string, card model.Card, psp model.PSPConfig) error {
	c, err := s.active(wire.MethodInitConsumer.String())
	if err != nil {
		return err
	}
	return c.InitConsumer(ctx, scheme, hostname, port, urlPrefix, serverID, card, psp)
}

// InitProducer prepares the agent to sell.
func (s *Session) InitProducer(ctx context.Context, psp model.PSPConfig) error {
	c, err := s.active(wire.MethodInitProducer.String())
	if err != nil {
		return err
	}
	return c.InitProducer(ctx, psp)
}

// GetDevice returns the agent's local device.
func (s *Session) GetDevice(ctx context.Context) (model.Device, error) {
	c, err := s.active(wire.MethodGetDevice.String())
	if err != nil {
		return model.Device{}, err
	}
	return c.GetDevice(ctx)
}

// StartServiceBroadcast advertises the local services.
func (s *Session) StartServiceBroadcast(ctx context.Context, timeoutMillis int32) error {
	c, err := s.active(wire.MethodStartServiceBroadcast.String())
	if err != nil {
		return err
	}
	return c.StartServiceBroadcast(ctx, timeoutMillis)
}

// StopServiceBroadcast stops advertising.
func (s *Session) StopServiceBroadcast(ctx context.Context) error {
	c, err := s.active(wire.MethodStopServiceBroadcast.String())
	if err != nil {
		return err
	}
	return c.StopServiceBroadcast(ctx)
}

// DeviceDiscovery lists the producers seen within timeoutMillis.
func (s *Session) DeviceDiscovery(ctx context.Context, timeoutMillis int32) ([]model.DeviceDescriptor, error) {
	c, err := s.active(wire.MethodDeviceDiscovery.String())
	if err != nil {
		return nil, err
	}
	return c.DeviceDiscovery(ctx, timeoutMillis)
}

// SearchForDevice finds a producer by name.
func (s *Session) SearchForDevice(ctx context.Context, timeoutMillis int32, name string) (model.DeviceDescriptor, error) {
	c, err := s.active(wire.MethodSearchForDevice.String())
	if err != nil {
		return model.DeviceDescriptor{}, err
	}
	return c.SearchForDevice(ctx, timeoutMillis, name)
}

// RequestServices lists the producer's services.
func (s *Session) RequestServices(ctx context.Context) ([]model.Service, error) {
	c, err := s.active(wire.MethodRequestServices.String())
	if err != nil {
		return nil, err
	}
	return c.RequestServices(ctx)
}

// GetServicePrices lists the prices of a service.
func (s *Session) GetServicePrices(ctx context.Context, serviceID int32) ([]model.Price, error) {
	c, err := s.active(wire.MethodGetServicePrices.String())
	if err != nil {
		return nil, err
	}
	return c.GetServicePrices(ctx, serviceID)
}

// SelectService asks the producer for a quote.
func (s *Session) SelectService(ctx context.Context, serviceID, units, priceID int32) (model.PriceQuote, error) {
	c, err := s.active(wire.MethodSelectService.String())
	if err != nil {
		return model.PriceQuote{}, err
	}
	return c.SelectService(ctx, serviceID, units, priceID)
}

// MakePayment pays a quote.
func (s *Session) MakePayment(ctx context.Context, quote model.PriceQuote) (model.PaymentResult, error) {
	c, err := s.active(wire.MethodMakePayment.String())
	if err != nil {
		return model.PaymentResult{}, err
	}
	return c.MakePayment(ctx, quote)
}

// BeginServiceDelivery starts delivery against a token.
func (s *Session) BeginServiceDelivery(ctx context.Context, serviceID int32, token model.DeliveryToken, units int32) error {
	c, err := s.active(wire.MethodBeginServiceDelivery.String())
	if err != nil {
		return err
	}
	return c.BeginServiceDelivery(ctx, serviceID, token, units)
}

// EndServiceDelivery reports the units received against a token.
func (s *Session) EndServiceDelivery(ctx context.Context, serviceID int32, token model.DeliveryToken, units int32) error {
	c, err := s.active(wire.MethodEndServiceDelivery.String())
	if err != nil {
		return err
	}
	return c.EndServiceDelivery(ctx, serviceID, token, units)
}

// CloseAgent asks the agent to shut down. The session stays open; call
// Close to release it.
func (s *Session) CloseAgent(ctx context.Context) error {
	c, err := s.active(wire.MethodCloseAgent.String())
	if err != nil {
		return err
	}
	return c.CloseAgent(ctx)
}
