package model

// Well-known payment service provider configuration keys.
const (
	PSPName            = "psp_name"
	PSPAPIEndpoint     = "api_endpoint"
	PSPHTEPublicKey    = "hte_public_key"
	PSPHTEPrivateKey   = "hte_private_key"
	PSPMerchantClient  = "merchant_client_key"
	PSPMerchantService = "merchant_service_key"
)

// Defaults applied by NewPSPConfig.
const (
	DefaultPSPName        = "worldpayonlinepayments"
	DefaultPSPAPIEndpoint = "https://api.worldpay.com/v1"
)

// PSPConfig is the string map handed to the agent when initializing a
// consumer or producer. Unknown keys are passed through unchanged.
type PSPConfig map[string]string

// NewPSPConfig returns a config holding the default PSP name and endpoint.
func NewPSPConfig() PSPConfig {
	return PSPConfig{
		PSPName:        DefaultPSPName,
		PSPAPIEndpoint: DefaultPSPAPIEndpoint,
	}
}

// ProducerPSPConfig returns a default config with merchant keys set. The
// HTE key pair mirrors the merchant keys, as the hosted service expects.
func ProducerPSPConfig(clientKey, serviceKey string) PSPConfig {
	c := NewPSPConfig()
	c[PSPMerchantClient] = clientKey
	c[PSPMerchantService] = serviceKey
	c[PSPHTEPublicKey] = clientKey
	c[PSPHTEPrivateKey] = serviceKey
	return c
}

// Get returns the value for key, or "" when unset.
func (c PSPConfig) Get(key string) string {
	return c[key]
}

// Name returns the PSP name.
func (c PSPConfig) Name() string { return c[PSPName] }

// APIEndpoint returns the PSP API endpoint.
func (c PSPConfig) APIEndpoint() string { return c[PSPAPIEndpoint] }

// MerchantClientKey returns the merchant client key.
func (c PSPConfig) MerchantClientKey() string { return c[PSPMerchantClient] }

// MerchantServiceKey returns the merchant service key.
func (c PSPConfig) MerchantServiceKey() string { return c[PSPMerchantService] }

// Clone returns a copy of c. The copy of a nil config is empty, not nil.
func (c PSPConfig) Clone() PSPConfig {
	out := make(PSPConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a copy of c with every key of other applied on top.
func (c PSPConfig) Merge(other PSPConfig) PSPConfig {
	out := c.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
