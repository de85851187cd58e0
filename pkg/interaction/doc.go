// Package interaction exchanges Call and Reply envelopes over a transport
// connection.
//
// # Caller
//
// A Caller issues synchronous commands. Exactly one call is in flight per
// Caller; concurrent callers queue on an internal lock:
//
//	caller := interaction.NewCaller(conn, wire.CBOR())
//	var devices []wire.ServiceMessage
//	err := caller.Call(ctx, wire.MethodDeviceDiscovery, &wire.TimeoutArgs{TimeoutMillis: 5000}, &devices)
//
// A reply whose status is not OK surfaces as a *StatusError.
//
// # Dispatcher
//
// A Dispatcher routes incoming calls to handlers by method and builds the
// reply:
//
//	d := interaction.NewDispatcher(wire.CBOR())
//	d.Handle(wire.CallbackErrorEvent, func(ctx context.Context, req *interaction.Request) (any, error) {
//	    var ev wire.ErrorEvent
//	    if err := req.Decode(&ev); err != nil {
//	        return nil, err
//	    }
//	    return nil, nil
//	})
//	replyBytes, _, err := d.HandleMessage(ctx, callBytes)
package interaction
