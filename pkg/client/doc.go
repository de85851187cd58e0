// Package client issues commands to a Within agent.
//
// Each method is one synchronous call on the agent's command port. Domain
// arguments are translated to wire records before sending and replies are
// translated back before returning. Every failure, whether I/O, a malformed
// reply, an adapter error or an error reported by the agent, is returned as
// a single *errs.ProtocolError naming the operation:
//
//	c, err := client.Dial(ctx, client.Config{Address: "127.0.0.1:9091"})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	quote, err := c.SelectService(ctx, serviceID, 10, priceID)
//	var perr *errs.ProtocolError
//	if errors.As(err, &perr) {
//	    // perr.Op == "selectService"
//	}
//
// Calls are serialized: the agent connection carries one request at a time.
package client
