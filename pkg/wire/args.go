package wire

// Command argument records, one per method that takes arguments.

// SetupArgs are the arguments of MethodSetup.
type SetupArgs struct {
	Name        string `cbor:"1,keyasint" json:"name"`
	Description string `cbor:"2,keyasint,omitempty" json:"description,omitempty"`
}

// ServiceArgs are the arguments of MethodAddService and MethodRemoveService.
type ServiceArgs struct {
	Service *Service `cbor:"1,keyasint" json:"service"`
}

// InitConsumerArgs are the arguments of MethodInitConsumer.
type InitConsumerArgs struct {
	Scheme    string            `cbor:"1,keyasint,omitempty" json:"scheme,omitempty"`
	Hostname  string            `cbor:"2,keyasint" json:"hostname"`
	Port      int32             `cbor:"3,keyasint" json:"port"`
	URLPrefix string            `cbor:"4,keyasint,omitempty" json:"urlPrefix,omitempty"`
	ServerID  string            `cbor:"5,keyasint" json:"serverId"`
	Card      *HCECard          `cbor:"6,keyasint,omitempty" json:"hceCard,omitempty"`
	PSPConfig map[string]string `cbor:"7,keyasint,omitempty" json:"pspConfig,omitempty"`
}

// InitProducerArgs are the arguments of MethodInitProducer.
type InitProducerArgs struct {
	PSPConfig map[string]string `cbor:"1,keyasint,omitempty" json:"pspConfig,omitempty"`
}

// TimeoutArgs are the arguments of MethodStartServiceBroadcast and
// MethodDeviceDiscovery.
type TimeoutArgs struct {
	TimeoutMillis int32 `cbor:"1,keyasint" json:"timeoutMillis"`
}

// SearchArgs are the arguments of MethodSearchForDevice.
type SearchArgs struct {
	TimeoutMillis int32  `cbor:"1,keyasint" json:"timeoutMillis"`
	DeviceName    string `cbor:"2,keyasint" json:"deviceName"`
}

// ServiceIDArgs are the arguments of MethodGetServicePrices.
type ServiceIDArgs struct {
	ServiceID int32 `cbor:"1,keyasint" json:"serviceId"`
}

// SelectServiceArgs are the arguments of MethodSelectService.
type SelectServiceArgs struct {
	ServiceID     int32 `cbor:"1,keyasint" json:"serviceId"`
	NumberOfUnits int32 `cbor:"2,keyasint" json:"numberOfUnits"`
	PriceID       int32 `cbor:"3,keyasint" json:"priceId"`
}

// MakePaymentArgs are the arguments of MethodMakePayment.
type MakePaymentArgs struct {
	Request *TotalPriceResponse `cbor:"1,keyasint" json:"request"`
}

// DeliveryArgs are the arguments of MethodBeginServiceDelivery and
// MethodEndServiceDelivery.
type DeliveryArgs struct {
	ServiceID int32                 `cbor:"1,keyasint" json:"serviceId"`
	Token     *ServiceDeliveryToken `cbor:"2,keyasint" json:"serviceDeliveryToken"`
	Units     int32                 `cbor:"3,keyasint" json:"units"`
}

// Callback argument records, one per callback method.

// BeginDeliveryEvent are the arguments of CallbackBeginServiceDelivery.
type BeginDeliveryEvent struct {
	ServiceID      int32                 `cbor:"1,keyasint" json:"serviceId"`
	ServicePriceID int32                 `cbor:"2,keyasint" json:"servicePriceId"`
	Token          *ServiceDeliveryToken `cbor:"3,keyasint" json:"serviceDeliveryToken"`
	UnitsToSupply  int32                 `cbor:"4,keyasint" json:"unitsToSupply"`
}

// EndDeliveryEvent are the arguments of CallbackEndServiceDelivery.
type EndDeliveryEvent struct {
	ServiceID     int32                 `cbor:"1,keyasint" json:"serviceId"`
	Token         *ServiceDeliveryToken `cbor:"2,keyasint" json:"serviceDeliveryToken"`
	UnitsReceived int32                 `cbor:"3,keyasint" json:"unitsReceived"`
}

// MakePaymentEvent are the arguments of CallbackMakePaymentEvent.
type MakePaymentEvent struct {
	TotalPrice       int32  `cbor:"1,keyasint" json:"totalPrice"`
	OrderCurrency    string `cbor:"2,keyasint,omitempty" json:"orderCurrency,omitempty"`
	ClientToken      string `cbor:"3,keyasint,omitempty" json:"clientToken,omitempty"`
	OrderDescription string `cbor:"4,keyasint,omitempty" json:"orderDescription,omitempty"`
	UUID             string `cbor:"5,keyasint,omitempty" json:"uuid,omitempty"`
}

// ServiceDiscoveryEvent are the arguments of CallbackServiceDiscoveryEvent.
type ServiceDiscoveryEvent struct {
	RemoteAddr string `cbor:"1,keyasint" json:"remoteAddr"`
}

// ServicePricesEvent are the arguments of CallbackServicePricesEvent.
type ServicePricesEvent struct {
	RemoteAddr string `cbor:"1,keyasint" json:"remoteAddr"`
	ServiceID  int32  `cbor:"2,keyasint" json:"serviceId"`
}

// ServiceTotalPriceEvent are the arguments of CallbackServiceTotalPriceEvent.
type ServiceTotalPriceEvent struct {
	RemoteAddr string              `cbor:"1,keyasint" json:"remoteAddr"`
	ServiceID  int32               `cbor:"2,keyasint" json:"serviceId"`
	TotalPrice *TotalPriceResponse `cbor:"3,keyasint" json:"totalPrice"`
}

// ErrorEvent are the arguments of CallbackErrorEvent.
type ErrorEvent struct {
	Message string `cbor:"1,keyasint" json:"message"`
}
