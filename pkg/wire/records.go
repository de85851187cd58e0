package wire

// Service is the wire record for a producer's service.
type Service struct {
	ID          *int32          `cbor:"1,keyasint,omitempty" json:"id,omitempty"`
	Name        string          `cbor:"2,keyasint,omitempty" json:"name,omitempty"`
	Description string          `cbor:"3,keyasint,omitempty" json:"description,omitempty"`
	Prices      map[int32]Price `cbor:"4,keyasint,omitempty" json:"prices,omitempty"`
	ServiceType string          `cbor:"5,keyasint,omitempty" json:"serviceType,omitempty"`
}

// Price is the wire record for one price of a service.
type Price struct {
	ID              *int32        `cbor:"1,keyasint,omitempty" json:"id,omitempty"`
	Description     string        `cbor:"2,keyasint,omitempty" json:"description,omitempty"`
	PricePerUnit    *PricePerUnit `cbor:"3,keyasint,omitempty" json:"pricePerUnit,omitempty"`
	UnitID          *int32        `cbor:"4,keyasint,omitempty" json:"unitId,omitempty"`
	UnitDescription string        `cbor:"5,keyasint,omitempty" json:"unitDescription,omitempty"`
}

// PricePerUnit is an amount in minor units of a currency.
type PricePerUnit struct {
	Amount       *int32 `cbor:"1,keyasint,omitempty" json:"amount,omitempty"`
	CurrencyCode string `cbor:"2,keyasint,omitempty" json:"currencyCode,omitempty"`
}

// ServiceDetails is the summary of a service returned by requestServices.
type ServiceDetails struct {
	ServiceID          *int32 `cbor:"1,keyasint,omitempty" json:"serviceId,omitempty"`
	ServiceDescription string `cbor:"2,keyasint,omitempty" json:"serviceDescription,omitempty"`
	ServiceName        string `cbor:"3,keyasint,omitempty" json:"serviceName,omitempty"`
}

// ServiceMessage describes a producer device seen during discovery.
type ServiceMessage struct {
	DeviceName        string   `cbor:"1,keyasint,omitempty" json:"deviceName,omitempty"`
	DeviceDescription string   `cbor:"2,keyasint,omitempty" json:"deviceDescription,omitempty"`
	Hostname          string   `cbor:"3,keyasint,omitempty" json:"hostname,omitempty"`
	PortNumber        *int32   `cbor:"4,keyasint,omitempty" json:"portNumber,omitempty"`
	ServerID          string   `cbor:"5,keyasint,omitempty" json:"serverId,omitempty"`
	URLPrefix         string   `cbor:"6,keyasint,omitempty" json:"urlPrefix,omitempty"`
	Scheme            string   `cbor:"7,keyasint,omitempty" json:"scheme,omitempty"`
	ServiceTypes      []string `cbor:"8,keyasint,omitempty" json:"serviceTypes,omitempty"`
}

// ServiceDeliveryToken authorizes delivery. Timestamps are RFC 3339 strings.
type ServiceDeliveryToken struct {
	Key            string `cbor:"1,keyasint,omitempty" json:"key,omitempty"`
	Issued         string `cbor:"2,keyasint,omitempty" json:"issued,omitempty"`
	Expiry         string `cbor:"3,keyasint,omitempty" json:"expiry,omitempty"`
	RefundOnExpiry bool   `cbor:"4,keyasint,omitempty" json:"refundOnExpiry,omitempty"`
	Signature      []byte `cbor:"5,keyasint,omitempty" json:"signature,omitempty"`
}

// TotalPriceResponse is the producer's quote for a selected service.
type TotalPriceResponse struct {
	ServerID           string `cbor:"1,keyasint,omitempty" json:"serverId,omitempty"`
	ClientID           string `cbor:"2,keyasint,omitempty" json:"clientId,omitempty"`
	PriceID            *int32 `cbor:"3,keyasint,omitempty" json:"priceId,omitempty"`
	UnitsToSupply      *int32 `cbor:"4,keyasint,omitempty" json:"unitsToSupply,omitempty"`
	TotalPrice         *int32 `cbor:"5,keyasint,omitempty" json:"totalPrice,omitempty"`
	PaymentReferenceID string `cbor:"6,keyasint,omitempty" json:"paymentReferenceId,omitempty"`
	MerchantClientKey  string `cbor:"7,keyasint,omitempty" json:"merchantClientKey,omitempty"`
	CurrencyCode       string `cbor:"8,keyasint,omitempty" json:"currencyCode,omitempty"`
}

// PaymentResponse is the outcome of makePayment.
type PaymentResponse struct {
	ServerID             string                `cbor:"1,keyasint,omitempty" json:"serverId,omitempty"`
	ClientID             string                `cbor:"2,keyasint,omitempty" json:"clientId,omitempty"`
	TotalPaid            *int32                `cbor:"3,keyasint,omitempty" json:"totalPaid,omitempty"`
	ServiceDeliveryToken *ServiceDeliveryToken `cbor:"4,keyasint,omitempty" json:"serviceDeliveryToken,omitempty"`
}

// HCECard is the consumer's payment card.
type HCECard struct {
	FirstName  string `cbor:"1,keyasint,omitempty" json:"firstName,omitempty"`
	LastName   string `cbor:"2,keyasint,omitempty" json:"lastName,omitempty"`
	ExpMonth   *int32 `cbor:"3,keyasint,omitempty" json:"expMonth,omitempty"`
	ExpYear    *int32 `cbor:"4,keyasint,omitempty" json:"expYear,omitempty"`
	CardNumber string `cbor:"5,keyasint,omitempty" json:"cardNumber,omitempty"`
	Type       string `cbor:"6,keyasint,omitempty" json:"type,omitempty"`
	CVC        string `cbor:"7,keyasint,omitempty" json:"cvc,omitempty"`
}

// Device is the agent's local device.
type Device struct {
	UID          string            `cbor:"1,keyasint,omitempty" json:"uid,omitempty"`
	Name         string            `cbor:"2,keyasint,omitempty" json:"name,omitempty"`
	Description  string            `cbor:"3,keyasint,omitempty" json:"description,omitempty"`
	Services     map[int32]Service `cbor:"4,keyasint,omitempty" json:"services,omitempty"`
	IPv4Address  string            `cbor:"5,keyasint,omitempty" json:"ipv4Address,omitempty"`
	CurrencyCode string            `cbor:"6,keyasint,omitempty" json:"currencyCode,omitempty"`
}

// Int32 returns a pointer to v, for populating optional fields.
func Int32(v int32) *int32 {
	return &v
}
