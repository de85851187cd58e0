// Package discovery locates Within agents on the local network with
// mDNS/DNS-SD.
//
// An agent advertises its command endpoint as a _within-agent._tcp service.
// The instance name defaults to "within-<uid>"; TXT records carry:
//
//	proto  message encoding ("cbor" or "json"), required
//	ver    agent version, optional
//	dn     device name, optional
//	uid    device UID, optional
//
// Discovery is how a shell finds an agent it did not start. It has no part
// in producer/consumer discovery, which the agent performs itself.
package discovery
