package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codecs() []Codec {
	return []Codec{CBOR(), JSON()}
}

func TestCallEnvelope(t *testing.T) {
	for _, codec := range codecs() {
		t.Run(string(codec.Protocol()), func(t *testing.T) {
			args := SelectServiceArgs{ServiceID: 1, NumberOfUnits: 10, PriceID: 2}
			call, err := NewCall(codec, 7, MethodSelectService, args)
			require.NoError(t, err)

			data, err := EncodeCall(codec, call)
			require.NoError(t, err)

			decoded, err := DecodeCall(codec, data)
			require.NoError(t, err)
			assert.Equal(t, uint32(7), decoded.MessageID)
			assert.Equal(t, MethodSelectService, decoded.Method)

			var got SelectServiceArgs
			require.NoError(t, decoded.DecodeArgs(codec, &got))
			assert.Equal(t, args, got)
		})
	}
}

func TestCallWithoutArgs(t *testing.T) {
	call, err := NewCall(CBOR(), 1, MethodRequestServices, nil)
	require.NoError(t, err)
	assert.Empty(t, call.Args)

	var v ServiceIDArgs
	assert.ErrorIs(t, call.DecodeArgs(CBOR(), &v), ErrNoArgs)
}

func TestCallValidate(t *testing.T) {
	tests := []struct {
		name string
		call Call
		want error
	}{
		{"zero id", Call{MessageID: 0, Method: MethodSetup}, ErrInvalidMessageID},
		{"unknown method", Call{MessageID: 1, Method: 0x3F}, ErrInvalidMethod},
		{"valid", Call{MessageID: 1, Method: CallbackErrorEvent}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := EncodeCall(CBOR(), &Call{})
	assert.ErrorIs(t, err, ErrInvalidMessageID)
}

func TestReplyEnvelope(t *testing.T) {
	for _, codec := range codecs() {
		t.Run(string(codec.Protocol()), func(t *testing.T) {
			result := []ServiceDetails{{ServiceID: Int32(1), ServiceName: "charge"}}
			reply, err := NewReply(codec, 3, result)
			require.NoError(t, err)

			data, err := EncodeReply(codec, reply)
			require.NoError(t, err)

			decoded, err := DecodeReply(codec, data)
			require.NoError(t, err)
			assert.True(t, decoded.Status.IsSuccess())

			var got []ServiceDetails
			require.NoError(t, decoded.DecodeResult(codec, &got))
			require.Len(t, got, 1)
			require.NotNil(t, got[0].ServiceID)
			assert.Equal(t, int32(1), *got[0].ServiceID)
		})
	}
}

func TestErrorReply(t *testing.T) {
	reply := NewErrorReply(4, StatusNotFound, "no such service")
	assert.Equal(t, "no such service", reply.ErrorMessage())

	data, err := EncodeReply(CBOR(), reply)
	require.NoError(t, err)
	decoded, err := DecodeReply(CBOR(), data)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, decoded.Status)
	assert.Equal(t, "no such service", decoded.ErrorMessage())

	bare := &Reply{MessageID: 1, Status: StatusInternal}
	assert.Equal(t, "INTERNAL", bare.ErrorMessage())

	var v Price
	assert.ErrorIs(t, bare.DecodeResult(CBOR(), &v), ErrNoResult)
}

func TestDecodeReplyRejectsZeroID(t *testing.T) {
	data, err := CBOR().Marshal(&Reply{Status: StatusOK})
	require.NoError(t, err)
	_, err = DecodeReply(CBOR(), data)
	assert.ErrorIs(t, err, ErrInvalidMessageID)
}

func TestOptionalFieldsSurviveEncoding(t *testing.T) {
	for _, codec := range codecs() {
		t.Run(string(codec.Protocol()), func(t *testing.T) {
			in := Price{ID: Int32(0), Description: "zero id"}
			data, err := codec.Marshal(in)
			require.NoError(t, err)

			var out Price
			require.NoError(t, codec.Unmarshal(data, &out))
			require.NotNil(t, out.ID, "present zero must stay present")
			assert.Equal(t, int32(0), *out.ID)
			assert.Nil(t, out.UnitID)
			assert.Nil(t, out.PricePerUnit)
		})
	}
}

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		in      string
		want    Protocol
		wantErr bool
	}{
		{"", ProtocolCBOR, false},
		{"cbor", ProtocolCBOR, false},
		{" JSON ", ProtocolJSON, false},
		{"thrift", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProtocol(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			codec, err := CodecFor(got)
			require.NoError(t, err)
			assert.Equal(t, got, codec.Protocol())
		})
	}

	_, err := CodecFor("xml")
	assert.Error(t, err)
}

func TestMethod(t *testing.T) {
	assert.Equal(t, "getServicePrices", MethodGetServicePrices.String())
	assert.Equal(t, "errorEvent", CallbackErrorEvent.String())
	assert.Equal(t, "unknown", Method(0).String())

	assert.False(t, MethodCloseAgent.IsCallback())
	assert.True(t, CallbackBeginServiceDelivery.IsCallback())

	for m := MethodSetup; m <= MethodCloseAgent; m++ {
		assert.True(t, m.IsValid(), "command %d", m)
	}
	for m := CallbackBeginServiceDelivery; m <= CallbackErrorEvent; m++ {
		assert.True(t, m.IsValid(), "callback %d", m)
	}

	m, err := ParseMethod("SELECTSERVICE")
	require.NoError(t, err)
	assert.Equal(t, MethodSelectService, m)
	_, err = ParseMethod("transfer")
	assert.Error(t, err)
}
