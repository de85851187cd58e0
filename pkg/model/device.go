package model

import "fmt"

// DeviceDescriptor identifies a producer device found by discovery.
type DeviceDescriptor struct {
	ServerID     string
	Hostname     string
	Port         Optional[int32]
	URLPrefix    string
	Description  string
	Scheme       string
	Name         string
	ServiceTypes []string
}

// Address returns "hostname:port" for the descriptor.
func (d DeviceDescriptor) Address() string {
	return fmt.Sprintf("%s:%d", d.Hostname, d.Port.OrZero())
}

// Device is the local device as configured on the agent.
type Device struct {
	UID         string
	Name        string
	Description string

	// Services is keyed by service ID.
	Services map[int32]Service

	IPv4Address string
	Currency    string
}
