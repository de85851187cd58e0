package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/within-protocol/within-go/pkg/errs"
	"github.com/within-protocol/within-go/pkg/model"
	"github.com/within-protocol/within-go/pkg/session"
	"github.com/within-protocol/within-go/pkg/wire"
)

const sample = `
agent:
  host: 10.0.0.5
  port: 9600
  callbackPort: 9601
  protocol: JSON
  binary: /opt/within/agent
  readyTimeout: 3s
deviceNameForSearch: pump-3
hceCard:
  firstName: Bilbo
  lastName: Baggins
  expMonth: 11
  expYear: 2028
  cardNumber: "5555555555554444"
  type: Card
  cvc: "113"
pspConfig:
  merchant_client_key: client-key
  psp_name: other
producer:
  name: Jet wash
  price:
    id: 3
    amount: 450
    unitId: 2
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "within.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	cfg := f.SessionConfig()
	assert.Equal(t, "10.0.0.5", cfg.Host)
	assert.Equal(t, 9600, cfg.Port)
	assert.Equal(t, 9601, cfg.CallbackPort)
	assert.Equal(t, wire.ProtocolJSON, cfg.Protocol)
	assert.Equal(t, 3*time.Second, cfg.ReadyTimeout)
	assert.Equal(t, "/opt/within/agent", f.Agent.Binary)
	assert.Equal(t, "pump-3", f.DeviceNameForSearch)

	card := f.Card()
	assert.Equal(t, "Bilbo", card.FirstName)
	assert.Equal(t, model.Some[int32](11), card.ExpMonth)
	assert.Equal(t, "************4444", card.Masked())

	psp := f.PSP()
	assert.Equal(t, "other", psp.Name())
	assert.Equal(t, "client-key", psp.MerchantClientKey())
	assert.Equal(t, model.DefaultPSPAPIEndpoint, psp.APIEndpoint())

	svc := f.ProducerService()
	assert.Equal(t, "Jet wash", svc.Name)
	assert.Equal(t, DefaultServiceType, svc.ServiceType)
	require.Contains(t, svc.Prices, int32(3))
	assert.Equal(t, int32(450), svc.Prices[3].PerUnit.Amount)
	assert.Equal(t, DefaultCurrency, svc.Prices[3].PerUnit.Currency)
	assert.Equal(t, model.Some[int32](2), svc.Prices[3].UnitID)
}

func TestDefaults(t *testing.T) {
	f := Default()
	require.NoError(t, f.Validate())

	cfg := f.SessionConfig()
	assert.Equal(t, session.DefaultHost, cfg.Host)
	assert.Equal(t, session.DefaultPort, cfg.Port)
	assert.Zero(t, cfg.CallbackPort)
	assert.Equal(t, wire.ProtocolCBOR, cfg.Protocol)
	assert.Zero(t, cfg.ReadyTimeout)
	assert.Equal(t, DefaultDeviceName, f.DeviceNameForSearch)

	assert.False(t, f.Card().ExpMonth.Present)

	svc := f.ProducerService()
	assert.Equal(t, int32(1), svc.ID.OrZero())
	require.Contains(t, svc.Prices, int32(1))
	assert.Equal(t, int32(DefaultPriceAmount), svc.Prices[1].PerUnit.Amount)
}

func TestBinaryImpliesReadyTimeout(t *testing.T) {
	f, err := Parse([]byte("agent:\n  binary: agent\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultReadyTimeout, f.Agent.ReadyTimeout)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"bad protocol", "agent:\n  protocol: xml\n", "agent.protocol"},
		{"bad port", "agent:\n  port: 70000\n", "port"},
		{"bad callback port", "agent:\n  callbackPort: -2\n", "callbackPort"},
		{"bad month", "hceCard:\n  expMonth: 13\n", "hceCard.expMonth"},
		{"negative ready timeout", "agent:\n  readyTimeout: -1s\n", "agent.readyTimeout"},
		{"negative price", "producer:\n  price:\n    amount: -5\n", "producer.price.amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var cerr *errs.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("agent: [unterminated"))
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
