// Package wire defines the message format spoken between a Within client
// and its agent.
//
// Messages are length-prefixed (see package transport) and encoded with one
// of two codecs: CBOR with integer keys (the default) or JSON with field
// names. Both sides of a connection must agree on the codec.
//
// # Calls and Replies
//
// Every exchange is a Call answered by exactly one Reply:
//
//	Call  { 1: messageId, 2: method, 3: args }
//	Reply { 1: messageId, 2: status, 3: result, 4: error }
//
// Args and Result are themselves encoded with the same codec, so the
// envelope can be decoded before the method-specific record is known.
//
// Commands (client to agent) use methods 0x01-0x3F. Callbacks (agent to
// client) use methods 0x40 and above.
//
// # Optional Fields
//
// Numeric fields the agent may leave out are pointers with omitempty. A nil
// pointer means the field was absent on the wire.
package wire
