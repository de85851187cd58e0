package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/within-protocol/within-go/pkg/wire"
)

func TestAgentTXTRoundTrip(t *testing.T) {
	info := &AgentInfo{Protocol: wire.ProtocolJSON, Version: "1.2.0", DeviceName: "kiosk", UID: "abc"}

	strs := TXTRecordsToStrings(EncodeAgentTXT(info))
	assert.Equal(t, []string{"dn=kiosk", "proto=json", "uid=abc", "ver=1.2.0"}, strs)

	got, err := DecodeAgentTXT(StringsToTXTRecords(strs))
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestAgentTXTDefaults(t *testing.T) {
	txt := EncodeAgentTXT(&AgentInfo{})
	assert.Equal(t, TXTRecordMap{TXTKeyProtocol: "cbor"}, txt)
}

func TestDecodeAgentTXTErrors(t *testing.T) {
	tests := []struct {
		name string
		txt  TXTRecordMap
		want error
	}{
		{"missing protocol", TXTRecordMap{TXTKeyDeviceName: "x"}, ErrMissingRequired},
		{"unknown protocol", TXTRecordMap{TXTKeyProtocol: "xml"}, ErrInvalidTXTRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAgentTXT(tt.txt)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"a=1", "flag", "", "b=x=y"})
	assert.Equal(t, TXTRecordMap{"a": "1", "flag": "", "b": "x=y"}, txt)
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "within-agent", instanceName(&AgentInfo{}))
	assert.Equal(t, "within-abc", instanceName(&AgentInfo{UID: "abc"}))
	assert.Equal(t, "shop", instanceName(&AgentInfo{InstanceName: "shop", UID: "abc"}))

	long := instanceName(&AgentInfo{UID: string(make([]byte, 100))})
	assert.Len(t, long, MaxInstanceNameLen)
	assert.NoError(t, ValidateInstanceName(long))
	assert.Error(t, ValidateInstanceName(""))
}

func TestEntryToAgent(t *testing.T) {
	entry := &zeroconf.ServiceEntry{ServiceRecord: zeroconf.ServiceRecord{Instance: "within-abc", Service: ServiceTypeAgent, Domain: Domain}}
	entry.HostName = "kiosk.local."
	entry.Port = 9500
	entry.Text = []string{"proto=cbor", "dn=kiosk"}
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}

	svc, err := entryToAgent(entry)
	require.NoError(t, err)
	assert.Equal(t, "within-abc", svc.InstanceName)
	assert.Equal(t, "kiosk", svc.DeviceName)
	assert.Equal(t, wire.ProtocolCBOR, svc.Protocol)
	assert.Equal(t, []string{"192.168.1.20", "fe80::1"}, svc.Addresses)
	assert.Equal(t, "192.168.1.20:9500", svc.Address())

	svc.Addresses = nil
	assert.Equal(t, "kiosk.local.:9500", svc.Address())

	entry.Text = nil
	_, err = entryToAgent(entry)
	assert.ErrorIs(t, err, ErrMissingRequired)
}

func TestAdvertiseRejectsBadPort(t *testing.T) {
	adv := NewAdvertiser(AdvertiserConfig{})
	assert.ErrorIs(t, adv.Advertise(&AgentInfo{Port: 0}), ErrInvalidPort)
	adv.Stop()
}

func TestAdvertiseAndLocate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mDNS test in short mode")
	}

	adv := NewAdvertiser(AdvertiserConfig{})
	require.NoError(t, adv.Advertise(&AgentInfo{Port: 9599, DeviceName: "locate-test", UID: "locate-test-uid"}))
	defer adv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc, err := NewBrowser(BrowserConfig{}, nil).Locate(ctx, "locate-test")
	if err != nil {
		t.Skipf("mDNS unavailable on this host: %v", err)
	}
	assert.Equal(t, 9599, svc.Port)
	assert.Equal(t, "locate-test-uid", svc.UID)
}

func TestLocateNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mDNS test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := NewBrowser(BrowserConfig{}, nil).Locate(ctx, "no-such-agent")
	assert.ErrorIs(t, err, ErrNotFound)
}
