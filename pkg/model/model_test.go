package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	t.Run("absent is zero", func(t *testing.T) {
		var o Optional[int32]
		v, ok := o.Get()
		assert.False(t, ok)
		assert.Equal(t, int32(0), v)
		assert.Equal(t, int32(0), o.OrZero())
		assert.Nil(t, o.Ptr())
		assert.Equal(t, "<absent>", o.String())
	})

	t.Run("present zero differs from absent", func(t *testing.T) {
		o := Some[int32](0)
		assert.True(t, o.Present)
		assert.NotEqual(t, None[int32](), o)
		assert.Equal(t, "0", o.String())
	})

	t.Run("pointer round trip", func(t *testing.T) {
		v := int32(42)
		o := FromPtr(&v)
		assert.Equal(t, Some[int32](42), o)

		p := o.Ptr()
		*p = 7
		assert.Equal(t, int32(42), o.Value, "Ptr must return a copy")

		assert.Equal(t, None[int32](), FromPtr[int32](nil))
	})
}

func TestServicePrices(t *testing.T) {
	var svc Service
	svc.AddPrice(Price{ID: Some[int32](3), Description: "fast"})
	svc.AddPrice(Price{ID: Some[int32](1), Description: "slow"})
	svc.AddPrice(Price{Description: "no id"})

	list := svc.PriceList()
	if assert.Len(t, list, 3) {
		assert.Equal(t, "no id", list[0].Description)
		assert.Equal(t, "slow", list[1].Description)
		assert.Equal(t, "fast", list[2].Description)
	}
}

func TestPSPConfig(t *testing.T) {
	c := NewPSPConfig()
	assert.Equal(t, DefaultPSPName, c.Name())
	assert.Equal(t, DefaultPSPAPIEndpoint, c.APIEndpoint())
	assert.Empty(t, c.MerchantClientKey())

	p := ProducerPSPConfig("client", "service")
	assert.Equal(t, "client", p.MerchantClientKey())
	assert.Equal(t, "service", p.MerchantServiceKey())
	assert.Equal(t, "client", p.Get(PSPHTEPublicKey))
	assert.Equal(t, DefaultPSPName, p.Name())

	merged := c.Merge(PSPConfig{PSPName: "securenet", "extra": "x"})
	assert.Equal(t, "securenet", merged.Name())
	assert.Equal(t, "x", merged.Get("extra"))
	assert.Equal(t, DefaultPSPName, c.Name(), "Merge must not modify the receiver")

	var nilConfig PSPConfig
	assert.NotNil(t, nilConfig.Clone())
}

func TestCardMasked(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"5555555555554444", "************4444"},
		{"1234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, Card{CardNumber: tt.number}.Masked())
		})
	}
}

func TestDeliveryTokenExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, DeliveryToken{}.Expired(now))
	assert.False(t, DeliveryToken{Expiry: now.Add(time.Minute)}.Expired(now))
	assert.True(t, DeliveryToken{Expiry: now.Add(-time.Minute)}.Expired(now))
}

func TestDeviceDescriptorAddress(t *testing.T) {
	d := DeviceDescriptor{Hostname: "10.0.0.2", Port: Some[int32](8778)}
	assert.Equal(t, "10.0.0.2:8778", d.Address())
}
