package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Protocol names a message encoding.
type Protocol string

const (
	// ProtocolCBOR encodes messages as CBOR with integer keys.
	ProtocolCBOR Protocol = "cbor"

	// ProtocolJSON encodes messages as JSON with field names.
	ProtocolJSON Protocol = "json"
)

// DefaultProtocol is used when no protocol is configured.
const DefaultProtocol = ProtocolCBOR

// ParseProtocol parses a protocol name, case-insensitively.
// The empty string selects DefaultProtocol.
func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultProtocol, nil
	case ProtocolCBOR:
		return ProtocolCBOR, nil
	case ProtocolJSON:
		return ProtocolJSON, nil
	default:
		return "", fmt.Errorf("unknown protocol %q", s)
	}
}

// Codec encodes and decodes wire values.
type Codec interface {
	Protocol() Protocol
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CodecFor returns the codec for p.
func CodecFor(p Protocol) (Codec, error) {
	switch p {
	case ProtocolCBOR, "":
		return CBOR(), nil
	case ProtocolJSON:
		return JSON(), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", p)
	}
}

// encMode is the CBOR encoder mode for agent messages.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for agent messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient on decode so newer agents can add keys.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

type cborCodec struct{}

// CBOR returns the CBOR codec.
func CBOR() Codec { return cborCodec{} }

func (cborCodec) Protocol() Protocol { return ProtocolCBOR }

func (cborCodec) Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

func (cborCodec) Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }

type jsonCodec struct{}

// JSON returns the JSON codec.
func JSON() Codec { return jsonCodec{} }

func (jsonCodec) Protocol() Protocol { return ProtocolJSON }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
