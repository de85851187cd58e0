package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/within-protocol/within-go/pkg/adapter"
	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/interaction"
	"github.com/within-protocol/within-go/pkg/log"
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/transport"
	"github.com/within-protocol/within-go/pkg/wire"
)

// Config configures the command connection.
type Config struct {
	// Address is the agent's command endpoint, "host:port".
	Address string

	// Codec encodes envelopes and records (default: CBOR).
	Codec wire.Codec

	// DialTimeout bounds the connect (default: 10s).
	DialTimeout time.Duration

	// MaxMessageSize bounds a single message (default: 1 MiB).
	MaxMessageSize uint32

	// SessionID tags captured protocol events.
	SessionID string

	// Logger is the operational logger (optional).
	Logger *slog.Logger

	// ProtocolLogger captures frames and envelopes (optional).
	ProtocolLogger log.Logger
}

// Client is a connected command client.
type Client struct {
	conn   *transport.ClientConn
	caller *interaction.Caller
	logger *slog.Logger
}

// Dial connects to the agent. A connect failure is a *errs.ProtocolError
// with Op "connect".
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Codec == nil {
		cfg.Codec = wire.CBOR()
	}

	conn, err := transport.Dial(ctx, cfg.Address, transport.DialConfig{
		MaxMessageSize: cfg.MaxMessageSize,
		ConnectTimeout: cfg.DialTimeout,
		Logger:         cfg.ProtocolLogger,
	})
	if err != nil {
		return nil, errs.Protocol("connect", err)
	}

	opts := []interaction.CallerOption{interaction.WithLogger(cfg.Logger)}
	if cfg.ProtocolLogger != nil {
		opts = append(opts, interaction.WithProtocolLogger(cfg.ProtocolLogger, conn.ConnID(), cfg.SessionID))
	}

	c := &Client{
		conn:   conn,
		caller: interaction.NewCaller(conn, cfg.Codec, opts...),
		logger: cfg.Logger,
	}
	c.debugLog("client: connected", "address", cfg.Address, "conn_id", conn.ConnID(), "protocol", cfg.Codec.Protocol())
	return c, nil
}

// ConnID returns the command connection's identifier.
func (c *Client) ConnID() string { return c.conn.ConnID() }

// Close closes the command connection. Later calls fail with a
// *errs.ProtocolError.
func (c *Client) Close() error {
	return c.caller.Close()
}

// SetupDevice names the local device.
func (c *Client) SetupDevice(ctx context.Context, name, description string) error {
	return c.call(ctx, wire.MethodSetup, &wire.SetupArgs{Name: name, Description: description}, nil)
}

// AddService registers a service offered by the local device.
func (c *Client) AddService(ctx context.Context, service model.Service) error {
	ws := adapter.ServiceToWire(service)
	return c.call(ctx, wire.MethodAddService, &wire.ServiceArgs{Service: &ws}, nil)
}

// RemoveService withdraws a service.
func (c *Client) RemoveService(ctx context.Context, service model.Service) error {
	ws := adapter.ServiceToWire(service)
	return c.call(ctx, wire.MethodRemoveService, &wire.ServiceArgs{Service: &ws}, nil)
}

// InitConsumer prepares the agent to buy from the producer at the given
// endpoint.
func (c *Client) InitConsumer(ctx context.Context, scheme, hostname string, port int32, urlPrefix, serverID string, card model.Card, psp model.PSPConfig) error {
	wc := adapter.CardToWire(card)
	args := &wire.InitConsumerArgs{
		Scheme:    scheme,
		Hostname:  hostname,
		Port:      port,
		URLPrefix: urlPrefix,
		ServerID:  serverID,
		Card:      &wc,
		PSPConfig: psp.Clone(),
	}
	return c.call(ctx, wire.MethodInitConsumer, args, nil)
}

// InitProducer prepares the agent to sell.
func (c *Client) InitProducer(ctx context.Context, psp model.PSPConfig) error {
	return c.call(ctx, wire.MethodInitProducer, &wire.InitProducerArgs{PSPConfig: psp.Clone()}, nil)
}

// GetDevice returns the agent's local device.
func (c *Client) GetDevice(ctx context.Context) (model.Device, error) {
	var wd wire.Device
	if err := c.call(ctx, wire.MethodGetDevice, nil, &wd); err != nil {
		return model.Device{}, err
	}
	d, err := adapter.DeviceFromWire(&wd)
	if err != nil {
		return model.Device{}, errs.Protocol(wire.MethodGetDevice.String(), err)
	}
	return d, nil
}

// StartServiceBroadcast advertises the local services for timeoutMillis.
func (c *Client) StartServiceBroadcast(ctx context.Context, timeoutMillis int32) error {
	return c.call(ctx, wire.MethodStartServiceBroadcast, &wire.TimeoutArgs{TimeoutMillis: timeoutMillis}, nil)
}

// StopServiceBroadcast stops advertising.
func (c *Client) StopServiceBroadcast(ctx context.Context) error {
	return c.call(ctx, wire.MethodStopServiceBroadcast, nil, nil)
}

// DeviceDiscovery lists the producers seen within timeoutMillis.
func (c *Client) DeviceDiscovery(ctx context.Context, timeoutMillis int32) ([]model.DeviceDescriptor, error) {
	var msgs []wire.ServiceMessage
	if err := c.callOptional(ctx, wire.MethodDeviceDiscovery, &wire.TimeoutArgs{TimeoutMillis: timeoutMillis}, &msgs); err != nil {
		return nil, err
	}
	return adapter.DeviceDescriptorsFromWire(msgs), nil
}

// SearchForDevice finds the producer named name.
func (c *Client) SearchForDevice(ctx context.Context, timeoutMillis int32, name string) (model.DeviceDescriptor, error) {
	var msg wire.ServiceMessage
	if err := c.call(ctx, wire.MethodSearchForDevice, &wire.SearchArgs{TimeoutMillis: timeoutMillis, DeviceName: name}, &msg); err != nil {
		return model.DeviceDescriptor{}, err
	}
	d, err := adapter.DeviceDescriptorFromWire(&msg)
	if err != nil {
		return model.DeviceDescriptor{}, errs.Protocol(wire.MethodSearchForDevice.String(), err)
	}
	return d, nil
}

// RequestServices lists the services of the producer the consumer was
// initialized for.
func (c *Client) RequestServices(ctx context.Context) ([]model.Service, error) {
	var details []wire.ServiceDetails
	if err := c.callOptional(ctx, wire.MethodRequestServices, nil, &details); err != nil {
		return nil, err
	}
	return adapter.ServicesFromDetails(details), nil
}

// GetServicePrices lists the prices of a service.
func (c *Client) GetServicePrices(ctx context.Context, serviceID int32) ([]model.Price, error) {
	var prices []wire.Price
	if err := c.callOptional(ctx, wire.MethodGetServicePrices, &wire.ServiceIDArgs{ServiceID: serviceID}, &prices); err != nil {
		return nil, err
	}
	return adapter.PricesFromWire(prices), nil
}

// SelectService asks the producer for a quote.
func (c *Client) SelectService(ctx context.Context, serviceID, units, priceID int32) (model.PriceQuote, error) {
	var resp wire.TotalPriceResponse
	args := &wire.SelectServiceArgs{ServiceID: serviceID, NumberOfUnits: units, PriceID: priceID}
	if err := c.call(ctx, wire.MethodSelectService, args, &resp); err != nil {
		return model.PriceQuote{}, err
	}
	q, err := adapter.QuoteFromWire(&resp)
	if err != nil {
		return model.PriceQuote{}, errs.Protocol(wire.MethodSelectService.String(), err)
	}
	return q, nil
}

// MakePayment pays a quote and returns the delivery token.
func (c *Client) MakePayment(ctx context.Context, quote model.PriceQuote) (model.PaymentResult, error) {
	req := adapter.QuoteToWire(quote)
	var resp wire.PaymentResponse
	if err := c.call(ctx, wire.MethodMakePayment, &wire.MakePaymentArgs{Request: &req}, &resp); err != nil {
		return model.PaymentResult{}, err
	}
	p, err := adapter.PaymentFromWire(&resp)
	if err != nil {
		return model.PaymentResult{}, errs.Protocol(wire.MethodMakePayment.String(), err)
	}
	return p, nil
}

// BeginServiceDelivery starts delivery of units against token.
func (c *Client) BeginServiceDelivery(ctx context.Context, serviceID int32, token model.DeliveryToken, units int32) error {
	return c.delivery(ctx, wire.MethodBeginServiceDelivery, serviceID, token, units)
}

// EndServiceDelivery reports the units received against token.
func (c *Client) EndServiceDelivery(ctx context.Context, serviceID int32, token model.DeliveryToken, units int32) error {
	return c.delivery(ctx, wire.MethodEndServiceDelivery, serviceID, token, units)
}

// CloseAgent asks the agent to shut down.
func (c *Client) CloseAgent(ctx context.Context) error {
	return c.call(ctx, wire.MethodCloseAgent, nil, nil)
}

func (c *Client) delivery(ctx context.Context, method wire.Method, serviceID int32, token model.DeliveryToken, units int32) error {
	wt := adapter.TokenToWire(token)
	return c.call(ctx, method, &wire.DeliveryArgs{ServiceID: serviceID, Token: &wt, Units: units}, nil)
}

// call performs one exchange and attributes any failure to method.
func (c *Client) call(ctx context.Context, method wire.Method, args, result any) error {
	if err := c.caller.Call(ctx, method, args, result); err != nil {
		c.debugLog("client: call failed", "method", method.String(), "error", err)
		return errs.Protocol(method.String(), err)
	}
	return nil
}

// callOptional is call for methods whose empty result is an empty list.
func (c *Client) callOptional(ctx context.Context, method wire.Method, args, result any) error {
	err := c.caller.Call(ctx, method, args, result)
	if err == nil || isNoResult(err) {
		return nil
	}
	c.debugLog("client: call failed", "method", method.String(), "error", err)
	return errs.Protocol(method.String(), err)
}

func isNoResult(err error) bool {
	return errors.Is(err, wire.ErrNoResult)
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
