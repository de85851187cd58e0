// Package session is the entry point for applications talking to a Within
// agent.
//
// A Session owns the outbound command connection, the optional inbound event
// listener and, optionally, the supervisor of the agent process:
//
//	cfg := session.DefaultConfig()
//	cfg.Port = 9500
//	cfg.CallbackPort = 9501
//
//	s, err := session.Open(ctx, &cfg, session.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.OnPaymentMade(func(p callback.PaymentMade) {
//	    logger.Info("paid", "total", p.TotalPrice)
//	})
//
// Events are delivered on the listener's connection goroutine, never on the
// goroutine that issued a command.
package session
