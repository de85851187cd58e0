// Package transport carries length-prefixed messages between a Within client
// and its agent over TCP.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Call / Reply (CBOR or JSON)  │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│             TCP                │
//	└────────────────────────────────┘
//
// The agent runs next to the application, so connections are plain TCP,
// normally on the loopback interface.
//
// Two roles exist. The client dials the agent's command port (Dial,
// ClientConn). The callback listener accepts the agent's connections to
// deliver events (Server, ServerConn); every accepted connection is served
// by its own goroutine and messages on one connection are handled in order.
package transport
