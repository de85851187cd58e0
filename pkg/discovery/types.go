package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/within-protocol/within-go/pkg/wire"
)

// Service type constants for mDNS.
const (
	// ServiceTypeAgent is the service type of an agent's command endpoint.
	ServiceTypeAgent = "_within-agent._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// DefaultBrowseTimeout bounds Locate when the context has no deadline.
	DefaultBrowseTimeout = 5 * time.Second
)

// TXT record keys.
const (
	TXTKeyProtocol   = "proto"
	TXTKeyVersion    = "ver"
	TXTKeyDeviceName = "dn"
	TXTKeyUID        = "uid"
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("agent not found")
	ErrInvalidPort         = errors.New("port must be in 1..65535")
)

// AgentInfo is what an agent advertises.
type AgentInfo struct {
	// InstanceName defaults to "within-<UID>", or "within-agent" without one.
	InstanceName string

	// Port is the command port.
	Port int

	// Protocol is the agent's message encoding.
	Protocol wire.Protocol

	Version    string
	DeviceName string
	UID        string
}

// AgentService is an agent found by browsing.
type AgentService struct {
	InstanceName string
	Host         string
	Port         int

	// Addresses are the resolved IPs, IPv4 first.
	Addresses []string

	Protocol   wire.Protocol
	Version    string
	DeviceName string
	UID        string
}

// Address returns "ip:port" for the first resolved address, or the host
// name when none resolved.
func (s *AgentService) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

// AdvertiserConfig configures an Advertiser.
type AdvertiserConfig struct {
	// Interface restricts advertising to one network interface (default: all).
	Interface string

	// TTL of the records (default: the zeroconf default).
	TTL time.Duration
}

// BrowserConfig configures a Browser.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface (default: all).
	Interface string
}
