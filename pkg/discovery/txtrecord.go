package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/within-protocol/within-go/pkg/wire"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeAgentTXT creates the TXT records for an agent.
func EncodeAgentTXT(info *AgentInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	proto := info.Protocol
	if proto == "" {
		proto = wire.DefaultProtocol
	}
	txt[TXTKeyProtocol] = string(proto)

	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	if info.DeviceName != "" {
		txt[TXTKeyDeviceName] = info.DeviceName
	}
	if info.UID != "" {
		txt[TXTKeyUID] = info.UID
	}
	return txt
}

// DecodeAgentTXT parses an agent's TXT records. The protocol is required
// and must be one this package can speak.
func DecodeAgentTXT(txt TXTRecordMap) (*AgentInfo, error) {
	raw, ok := txt[TXTKeyProtocol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyProtocol)
	}
	proto, err := wire.ParseProtocol(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}
	return &AgentInfo{
		Protocol:   proto,
		Version:    txt[TXTKeyVersion],
		DeviceName: txt[TXTKeyDeviceName],
		UID:        txt[TXTKeyUID],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

func instanceName(info *AgentInfo) string {
	name := info.InstanceName
	if name == "" {
		name = "within-agent"
		if info.UID != "" {
			name = "within-" + info.UID
		}
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}
